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
	"log"
	"sync"
	"time"

	"github.com/giuliocarot0/gitc"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/procman"
)

// sibDeliveryOrder is the fixed order simulated BCCH reads deliver SIBs
// in. The real BcchStartRx(winStartTTI, winLenSubframes) signature does
// not name which SIB a window belongs to (that mapping lives in the
// scheduling arithmetic the RRC side already ran); this simulator infers
// it from delivery order instead of re-deriving the schedule, which is
// an acceptable simplification for a simulated peer.
var sibDeliveryOrder = []uint32{1, 2, 12}

// MacSim implements collab.Mac against a Topology's serving cell,
// delivering SIBs and RA completions as gitc results on the peer's
// RRC-side task.
type MacSim struct {
	imsi string
	topo *Topology
	eng  *procman.Engine

	mu        sync.Mutex
	delivered map[uint32]bool
}

func newMacSim(imsi string, topo *Topology) *MacSim {
	return &MacSim{imsi: imsi, topo: topo, delivered: make(map[uint32]bool)}
}

func (m *MacSim) BcchStartRx(winStartTTI uint32, winLenSubframes uint32) {
	if err := gitc.Send(rrcTaskName(m.imsi), lowerTaskName(m.imsi), BcchStartRxCmdType, bcchStartRxCmd{winStartTTI: winStartTTI, winLenSubframes: winLenSubframes}); err != nil {
		log.Printf("[%s] mac: could not post bcch start rx command: %v", m.imsi, err)
	}
}

func (m *MacSim) handleBcchStartRx(_ bcchStartRxCmd) {
	time.AfterFunc(30*time.Millisecond, func() {
		m.mu.Lock()
		var next uint32
		found := false
		for _, idx := range sibDeliveryOrder {
			if !m.delivered[idx] {
				next = idx
				found = true
				break
			}
		}
		if found {
			m.delivered[next] = true
		}
		m.mu.Unlock()
		if !found {
			return
		}
		if err := gitc.Send(lowerTaskName(m.imsi), rrcTaskName(m.imsi), SibReceivedType, collab.SibReceivedEvent{SibIndex: next}); err != nil {
			log.Printf("[%s] mac: could not post sib received: %v", m.imsi, err)
		}
	})
}

func (m *MacSim) PcchStartRx() {}

func (m *MacSim) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivered = make(map[uint32]bool)
}

func (m *MacSim) WaitUplink()      {}
func (m *MacSim) ClearRntis()      {}
func (m *MacSim) GetRntis() uint16 { return 0 }

func (m *MacSim) StartContHo()                                      { m.completeRa(true) }
func (m *MacSim) StartNonContHo(preambleIdx uint32, maskIdx uint32) { m.completeRa(true) }
func (m *MacSim) SetHoRnti(newRnti uint16, targetPci uint16)        {}

func (m *MacSim) completeRa(success bool) {
	time.AfterFunc(15*time.Millisecond, func() {
		outcome := collab.RaSuccess
		if !success {
			outcome = collab.RaFailure
		}
		if err := gitc.Send(lowerTaskName(m.imsi), rrcTaskName(m.imsi), RaCompletedType, collab.RaCompletedEvent{Outcome: outcome}); err != nil {
			log.Printf("[%s] mac: could not post ra completed: %v", m.imsi, err)
		}
	})
}
