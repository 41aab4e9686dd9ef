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

package rrc

import (
	"testing"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/models"
)

func TestCellReselectionSameCellDoesNotStartPcch(t *testing.T) {
	e, d := newTestEngine()
	d.phy.inSync = true
	d.phy.camping = true
	e.State = models.RrcIdle

	fut, ok := e.cellReselection.Launch(nil)
	if !ok {
		t.Fatalf("launch should succeed")
	}
	e.Tick()
	if !fut.IsComplete() || fut.IsError() {
		t.Fatalf("expected success from the same-cell fast path")
	}
	if d.mac.pcchCalls != 0 {
		t.Fatalf("PCCH should not be armed when the serving cell hasn't changed")
	}
	if !e.reselTimer.IsRunning() {
		t.Fatalf("expected the idle-mode reselection timer rescheduled after completion")
	}
}

func TestCellReselectionRescheduleSkippedWhenNotAttached(t *testing.T) {
	e, d := newTestEngine()
	d.phy.inSync = true
	d.phy.camping = true
	d.nas.attached = false
	e.State = models.RrcIdle

	e.cellReselection.Launch(nil)
	e.Tick()

	if e.reselTimer.IsRunning() {
		t.Fatalf("should not reschedule reselection once NAS reports detached")
	}
}
