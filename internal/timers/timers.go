// Copyright 2025 EURECOM
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package timers implements the named, scoped timer service RRC
// procedures arm T300/T301/T304/T310/T311 and their own internal
// (SI-acquire retry, SI-acquire timeout) timers against.
package timers

import (
	"sync"
	"time"
)

// ID uniquely identifies a timer within a Registry, stable across
// SetDuration/Run/Stop cycles.
type ID uint32

// Timer is a named, reconfigurable, millisecond-resolution timer. It is
// created once by the Registry and may be armed and disarmed many times.
// Expiry never calls back directly into procedure state (design note
// "timer-owned callbacks"): it calls the Registry's sink function with
// only the timer's ID, and whoever is listening resolves that ID
// against timers it still cares about. This means a timer firing after
// its owning procedure has already completed is harmless.
type Timer struct {
	id       ID
	mu       sync.Mutex
	duration time.Duration
	running  bool
	expired  bool
	timer    *time.Timer
	registry *Registry
}

// ID returns the timer's stable identifier.
func (t *Timer) ID() ID { return t.id }

// IsRunning reports whether the timer is currently armed.
func (t *Timer) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// IsExpired reports whether the timer's most recent run expired (as
// opposed to being stopped before expiry). Reset to false on the next Run.
func (t *Timer) IsExpired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

// Duration returns the timer's currently configured duration.
func (t *Timer) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

// SetDuration reconfigures the timer for its next Run. Has no effect on
// an already-running timer.
func (t *Timer) SetDuration(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.duration = d
}

// Run (re)arms the timer for its configured duration. Safe to call while
// already running: the previous countdown is discarded.
func (t *Timer) Run() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.running = true
	t.expired = false
	d := t.duration
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if !t.running {
			t.mu.Unlock()
			return
		}
		t.running = false
		t.expired = true
		t.mu.Unlock()
		t.registry.postExpiry(t.id)
	})
}

// Stop disarms the timer. A stop after expiry, or on an idle timer, is a
// harmless no-op.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	if t.timer != nil {
		t.timer.Stop()
	}
}

// Registry owns a namespace of Timer instances and fans their expiries
// out as Trigger events on an owner-supplied sink, matching spec §5's
// requirement that timer expiry is delivered through the same
// mutex-guarded event path as everything else the task loop reacts to.
type Registry struct {
	mu     sync.Mutex
	nextID ID
	sink   func(ID)
}

// NewRegistry creates a Registry that reports every expiry to sink. sink
// is called from the goroutine running the underlying time.AfterFunc,
// never from Registry method calls directly — callers are expected to
// hand sink a thread-safe posting function such as procman.Engine.Trigger
// wrapped to carry the ID.
func NewRegistry(sink func(id ID)) *Registry {
	return &Registry{sink: sink}
}

// New creates a fresh, unarmed Timer with the given duration.
func (r *Registry) New(d time.Duration) *Timer {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.mu.Unlock()

	return &Timer{
		id:       id,
		duration: d,
		registry: r,
	}
}

func (r *Registry) postExpiry(id ID) {
	if r.sink != nil {
		r.sink(id)
	}
}
