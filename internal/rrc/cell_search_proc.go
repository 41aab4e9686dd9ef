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
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/measure"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/procman"
)

type cellSearchState int

const (
	csSearching cellSearchState = iota
	csSelecting
	csWaitMeasurement
	csSiAcquire
)

// cellSearchProc drives cell_search: PHY cell search, PHY cell select,
// wait for a first RSRP sample, then SIB1 acquisition (component F).
type cellSearchProc struct {
	e     *Engine
	state cellSearchState
	found collab.PhyCellRef
	fut   *procman.Future[struct{}]
}

func (p *cellSearchProc) Init(args any) procman.Outcome {
	p.state = csSearching
	p.fut = nil
	p.e.Phy.StartCellSearch("cell_search")
	return procman.Yield
}

func (p *cellSearchProc) Step() procman.Outcome {
	switch p.state {
	case csWaitMeasurement:
		cell := p.e.Store.ServingCell()
		if cell == nil || !cell.HasNormalRsrp() {
			return procman.Yield
		}
		if cell.HasSib1() {
			return procman.Success
		}
		f, ok := p.e.siAcquire.Launch(uint32(0))
		if !ok {
			return procman.Yield
		}
		p.fut = f
		p.state = csSiAcquire
		return procman.Yield
	case csSiAcquire:
		if p.fut == nil || !p.fut.IsComplete() {
			return procman.Yield
		}
		if p.fut.IsError() {
			return procman.Error
		}
		return procman.Success
	default:
		return procman.Yield
	}
}

func (p *cellSearchProc) React(ev any) procman.Outcome {
	switch e := ev.(type) {
	case collab.CellSearchResultEvent:
		if p.state != csSearching {
			return procman.Yield
		}
		switch e.Result {
		case collab.CellFound:
			p.found = e.FoundCell
			p.e.Store.AddCell(measure.PhyCell{Pci: p.found.Pci, Earfcn: p.found.Earfcn})
			p.e.Store.SetServingCell(measure.PhyCell{Pci: p.found.Pci, Earfcn: p.found.Earfcn}, false)
			p.e.Phy.StartCellSelect(p.found, "cell_search")
			p.state = csSelecting
			return procman.Yield
		case collab.CellNotFound:
			return procman.Success
		default:
			return procman.Error
		}
	case collab.CellSelectResultEvent:
		if p.state != csSelecting {
			return procman.Yield
		}
		if !e.Ok {
			return procman.Error
		}
		if !p.e.Phy.CellIsCamping() {
			return procman.Error
		}
		p.state = csWaitMeasurement
		return procman.Yield
	default:
		return procman.Yield
	}
}
