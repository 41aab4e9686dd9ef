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

// searchThresholdRsrp is the RSRP a simulated search/select considers
// "found"; below it PHY reports CellNotFound.
const searchThresholdRsrp = -110.0

// PhySim implements collab.Phy against a Topology, standing in for the
// PHY layer's cell search/select and sync status. Commands accepted on
// its exported methods are handed to the peer's lower-layer gitc task,
// which replies asynchronously on the RRC-side task exactly the way the
// spec's PHY collaborator is defined to behave (component E facade).
type PhySim struct {
	imsi string
	topo *Topology
	eng  *procman.Engine

	mu        sync.Mutex
	camping   bool
	inSync    bool
	searchIdx int
}

func newPhySim(imsi string, topo *Topology) *PhySim {
	return &PhySim{imsi: imsi, topo: topo}
}

func (p *PhySim) StartCellSearch(subscriber string) bool {
	err := gitc.Send(rrcTaskName(p.imsi), lowerTaskName(p.imsi), CellSearchCmdType, cellSearchCmd{subscriber: subscriber})
	if err != nil {
		log.Printf("[%s] phy: could not post cell search command: %v", p.imsi, err)
		return false
	}
	return true
}

func (p *PhySim) StartCellSelect(cell collab.PhyCellRef, subscriber string) bool {
	err := gitc.Send(rrcTaskName(p.imsi), lowerTaskName(p.imsi), CellSelectCmdType, cellSelectCmd{target: cell, subscriber: subscriber})
	if err != nil {
		log.Printf("[%s] phy: could not post cell select command: %v", p.imsi, err)
		return false
	}
	return true
}

func (p *PhySim) CellIsCamping() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.camping
}

func (p *PhySim) IsInSync() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inSync
}

func (p *PhySim) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.camping = false
	p.inSync = false
}

// handleCellSearch runs on the lower-layer task's goroutine: each call
// reports the next cell of the topology in cyclic order, as found if its
// RSRP is at or above threshold and as not found otherwise, with
// NoMoreFreqs when that cell is the last one in the list.
func (p *PhySim) handleCellSearch(cmd cellSearchCmd) {
	time.AfterFunc(40*time.Millisecond, func() {
		if len(p.topo.Cells) == 0 {
			p.postSearchResult(collab.CellSearchResultEvent{Result: collab.CellSearchError, LastFreq: collab.NoMoreFreqs})
			return
		}
		p.mu.Lock()
		idx := p.searchIdx
		p.searchIdx = (p.searchIdx + 1) % len(p.topo.Cells)
		p.mu.Unlock()

		cell := p.topo.Cells[idx]
		last := collab.MoreFreqs
		if idx == len(p.topo.Cells)-1 {
			last = collab.NoMoreFreqs
		}
		if cell.Rsrp() < searchThresholdRsrp {
			p.postSearchResult(collab.CellSearchResultEvent{Result: collab.CellNotFound, LastFreq: last})
			return
		}
		p.postSearchResult(collab.CellSearchResultEvent{
			Result:    collab.CellFound,
			FoundCell: collab.PhyCellRef{Pci: cell.Phy.Pci, Earfcn: cell.Phy.Earfcn},
			LastFreq:  last,
		})
	})
}

func (p *PhySim) handleCellSelect(cmd cellSelectCmd) {
	time.AfterFunc(20*time.Millisecond, func() {
		cell := p.topo.Find(cmd.target)
		ok := cell != nil && cell.Rsrp() >= searchThresholdRsrp
		p.mu.Lock()
		p.camping = ok
		p.inSync = ok
		p.mu.Unlock()
		gitc.Send(lowerTaskName(p.imsi), rrcTaskName(p.imsi), CellSelectResultType, collab.CellSelectResultEvent{Ok: ok})
	})
}

func (p *PhySim) postSearchResult(ev collab.CellSearchResultEvent) {
	if err := gitc.Send(lowerTaskName(p.imsi), rrcTaskName(p.imsi), CellSearchResultType, ev); err != nil {
		log.Printf("[%s] phy: could not post cell search result: %v", p.imsi, err)
	}
}
