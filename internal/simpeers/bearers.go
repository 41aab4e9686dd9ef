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

package simpeers

import (
	"sync"
	"time"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/models"
)

// RlcSim implements collab.Rlc with a flush flag that clears shortly
// after suspension, standing in for the real SRB drain the go-idle
// procedure waits on.
type RlcSim struct {
	mu      sync.Mutex
	flushed bool
}

func newRlcSim() *RlcSim {
	return &RlcSim{flushed: true}
}

func (r *RlcSim) SrbsFlushed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushed
}

func (r *RlcSim) SuspendAllExceptSrb0() {
	r.mu.Lock()
	r.flushed = false
	r.mu.Unlock()
	time.AfterFunc(50*time.Millisecond, func() {
		r.mu.Lock()
		r.flushed = true
		r.mu.Unlock()
	})
}

func (r *RlcSim) ReestablishAll() {}

// PdcpSim implements collab.Pdcp; it only records the last security
// config applied so tests can assert on it.
type PdcpSim struct {
	mu  sync.Mutex
	sec models.SecurityConfig
}

func newPdcpSim() *PdcpSim { return &PdcpSim{} }

func (p *PdcpSim) ReestablishForHandover() {}

func (p *PdcpSim) ReconfigureSecurity(cfg models.SecurityConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sec = cfg
}

// UsimSim implements collab.Usim with a deterministic key derivation
// keyed off NCC, standing in for the real AKA-derived key hierarchy.
type UsimSim struct{}

func newUsimSim() *UsimSim { return &UsimSim{} }

func (u *UsimSim) DeriveKeysHandover(ncc uint8) models.SecurityConfig {
	return models.SecurityConfig{
		CipherAlgo: "128-EEA2",
		IntegAlgo:  "128-EIA2",
		KRrcEnc:    []byte{ncc, ncc + 1},
		KRrcInt:    []byte{ncc + 2, ncc + 3},
		KUpEnc:     []byte{ncc + 4, ncc + 5},
		Ncc:        ncc,
	}
}
