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
	"math"
	"sync"
	"time"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/measure"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/models"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/sched"
)

// SimCell is one simulated eNB cell: its broadcast SIBs and a jittered
// RSRP the RSRP walker in Topology mutates over time.
type SimCell struct {
	Phy  measure.PhyCell
	Sib1 *models.Sib1
	Sib2 *models.Sib2
	Sib3 *models.Sib3

	mu       sync.Mutex
	baseRsrp float64
	rsrp     float64
	camped   bool
	gen      MeasurementGenerator
}

// Rsrp reads the cell's current jittered RSRP.
func (c *SimCell) Rsrp() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rsrp
}

// Topology is a small fixed set of simulated cells plus a background
// walker that jitters RSRP the way a moving UE would observe it, adapted
// from the traffic generators' periodic-tick idiom (ue.go's
// inactivityMonitor/userplaneReport goroutines).
type Topology struct {
	Cells []*SimCell

	stopCh chan struct{}
}

// NewTopology builds a small default scenario: a serving cell with SIB1
// (PLMN "00101"), SIB2 and SIB3 immediately available, plus one weaker
// neighbour a UE can reselect or hand over to.
func NewTopology() *Topology {
	plmn := models.PlmnId{Mcc: "001", Mnc: "01"}
	serving := &SimCell{
		Phy: measure.PhyCell{Pci: 100, Earfcn: 1850},
		Sib1: &models.Sib1{
			PlmnList: []models.PlmnId{plmn},
			Tac:      "0001",
			SchedInfoList: []sched.SchedInfo{
				{SIPeriodicity: 16, SibMapping: []uint32{2}},
				{SIPeriodicity: 32, SibMapping: []uint32{3}},
			},
			SIWindowLength: 10,
		},
		Sib2:     &models.Sib2{T300Ms: 1000, T301Ms: 1000, T310Ms: 1000, T311Ms: 10000},
		Sib3:     &models.Sib3{ReselCfg: models.CellReselectionConfig{QRxLevMin: -120, QRxLevMinOffset: 0}},
		baseRsrp: -80,
		rsrp:     -80,
		gen:      NewIoTTraffic(2, time.Second),
	}
	neighbour := &SimCell{
		Phy: measure.PhyCell{Pci: 200, Earfcn: 1850},
		Sib1: &models.Sib1{
			PlmnList: []models.PlmnId{plmn},
			Tac:      "0001",
			SchedInfoList: []sched.SchedInfo{
				{SIPeriodicity: 16, SibMapping: []uint32{2}},
				{SIPeriodicity: 32, SibMapping: []uint32{3}},
			},
			SIWindowLength: 10,
		},
		Sib2:     &models.Sib2{T300Ms: 1000, T301Ms: 1000, T310Ms: 1000, T311Ms: 10000},
		Sib3:     &models.Sib3{ReselCfg: models.CellReselectionConfig{QRxLevMin: -120, QRxLevMinOffset: 0}},
		baseRsrp: -95,
		rsrp:     -95,
		gen:      NewWebTraffic(6, 3, 8*time.Second, 20*time.Second),
	}
	return &Topology{Cells: []*SimCell{serving, neighbour}, stopCh: make(chan struct{})}
}

// Find looks up a simulated cell by PHY identity.
func (t *Topology) Find(phy collab.PhyCellRef) *SimCell {
	for _, c := range t.Cells {
		if c.Phy.Pci == phy.Pci && c.Phy.Earfcn == phy.Earfcn {
			return c
		}
	}
	return nil
}

// StartRsrpWalk starts the background RSRP jitter goroutine and returns a
// stop function. Each cell's MeasurementGenerator decides whether this
// tick moves its RSRP at all; a nil sample leaves the last offset in
// place, matching how trafficgen's NextPacket(now) return of nil means
// "nothing to do this tick" rather than "reset to zero".
func (t *Topology) StartRsrpWalk() func() {
	ticker := time.NewTicker(1 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.stopCh:
				return
			case <-ticker.C:
				now := time.Now()
				for _, c := range t.Cells {
					if c.gen == nil {
						continue
					}
					sample := c.gen.NextSample(now)
					if sample == nil {
						continue
					}
					c.mu.Lock()
					c.rsrp = c.baseRsrp + sample.OffsetDb
					c.mu.Unlock()
				}
			}
		}
	}()
	return func() { close(t.stopCh) }
}

// BestOtherThan returns the strongest cell other than exclude, or nil.
func (t *Topology) BestOtherThan(exclude collab.PhyCellRef) *SimCell {
	var best *SimCell
	bestRsrp := math.Inf(-1)
	for _, c := range t.Cells {
		if c.Phy.Pci == exclude.Pci && c.Phy.Earfcn == exclude.Earfcn {
			continue
		}
		if r := c.Rsrp(); r > bestRsrp {
			bestRsrp = r
			best = c
		}
	}
	return best
}
