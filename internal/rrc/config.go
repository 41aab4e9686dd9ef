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

import "time"

// Config holds the durations spec §6 leaves to configuration: the
// standardised timers default to SIB2-broadcast values once a cell is
// configured, but need a sane default before that, plus the three
// non-standard durations spec §6/§4.M/§4.I' calls out explicitly.
type Config struct {
	T300Default time.Duration
	T301Default time.Duration
	T302Default time.Duration
	T304Default time.Duration
	T310Default time.Duration
	T311Default time.Duration

	// SIBSearchTimeout bounds a single si_acquire_proc invocation.
	// Non-standard (spec §6: "SIB_SEARCH_TIMEOUT_MS is non-standard").
	SIBSearchTimeout time.Duration

	// CellReselectionPeriod paces the self-rescheduling idle-mode
	// reselection loop (spec §4.I').
	CellReselectionPeriod time.Duration

	// RlcFlushTimeout bounds how long go-idle waits for
	// rlc.SrbsFlushed() before forcing the IDLE transition anyway
	// (spec §4.M).
	RlcFlushTimeout time.Duration

	// MaxFoundPlmns caps the PLMN-search procedure's result list
	// (spec §4.J).
	MaxFoundPlmns int

	// SIB1PeriodicityTTI is the fixed 20ms/2-frame SIB1 broadcast period
	// used as SI-acquire's retry period when reacquiring SIB1 itself.
	SIB1PeriodicityTTI uint32

	// RequiredSibs is the ordered list of 0-based SIB indices the
	// serving-cell-config procedure walks (spec §4.H, ue_required_sibs).
	RequiredSibs []uint32
}

// DefaultConfig returns sane defaults: standard 3GPP timer ranges and the
// three non-standard durations documented in spec §6.
func DefaultConfig() Config {
	return Config{
		T300Default:           1000 * time.Millisecond,
		T301Default:           1000 * time.Millisecond,
		T302Default:           4000 * time.Millisecond,
		T304Default:           1000 * time.Millisecond,
		T310Default:           1000 * time.Millisecond,
		T311Default:           10000 * time.Millisecond,
		SIBSearchTimeout:      2000 * time.Millisecond,
		CellReselectionPeriod: 1000 * time.Millisecond,
		RlcFlushTimeout:       2000 * time.Millisecond,
		MaxFoundPlmns:         6,
		SIB1PeriodicityTTI:    20,
		RequiredSibs:          []uint32{0, 1, 2}, // SIB1, SIB2, SIB3
	}
}
