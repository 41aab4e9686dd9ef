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
	"math"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/measure"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/procman"
)

type cellSelectionInternalState int

const (
	selEvaluate cellSelectionInternalState = iota
	selWaitPhy
	selWaitConfig
	selWaitSearch
)

// cellSelectionProc implements TS 36.304 §5.2's selection loop over
// known neighbours plus the serving cell, falling back to cell-search
// once every candidate has been tried (component I).
type cellSelectionProc struct {
	e      *Engine
	state  cellSelectionInternalState
	cands  []*measure.Cell
	idx    int
	result CsResult

	configFut *procman.Future[struct{}]
	searchFut *procman.Future[struct{}]
	prevServ  measure.PhyCell
}

func criterionS(cfg *Engine, cell *measure.Cell) bool {
	if cell.Sib3 == nil {
		return true
	}
	return cell.Rsrp >= cfg.CellReselCfg.QRxLevMin+cfg.CellReselCfg.QRxLevMinOffset
}

func (p *cellSelectionProc) Init(args any) procman.Outcome {
	p.result = NoCell
	p.idx = 0

	if len(p.e.Store.Neighbours()) == 0 && p.e.Phy.IsInSync() && p.e.Phy.CellIsCamping() {
		p.result = SameCell
		return procman.Success
	}

	p.cands = p.e.Store.Candidates()
	p.state = selEvaluate
	return p.evaluate()
}

// evaluate walks forward from idx, launching a PHY cell select for the
// first candidate that meets criterion S, or falls back to cell-search
// once the candidate list is exhausted.
func (p *cellSelectionProc) evaluate() procman.Outcome {
	for p.idx < len(p.cands) {
		cand := p.cands[p.idx]
		if !criterionS(p.e, cand) {
			p.idx++
			continue
		}
		prev := p.e.Store.ServingCell()
		discard := prev != nil && math.IsInf(prev.Rsrp, -1)
		p.e.Store.SetServingCell(cand.Phy, discard)
		p.e.Phy.StartCellSelect(collab.PhyCellRef{Pci: cand.Phy.Pci, Earfcn: cand.Phy.Earfcn}, "cell_selection")
		p.state = selWaitPhy
		return procman.Yield
	}

	if serving := p.e.Store.ServingCell(); serving != nil {
		p.prevServ = serving.Phy
	}
	p.e.infof("cell_selection", "candidate list exhausted, falling back to cell_search")
	f, ok := p.e.cellSearch.Launch(nil)
	if !ok {
		return procman.Yield
	}
	p.searchFut = f
	p.state = selWaitSearch
	return procman.Yield
}

func (p *cellSelectionProc) Step() procman.Outcome {
	switch p.state {
	case selWaitConfig:
		if p.configFut == nil || !p.configFut.IsComplete() {
			return procman.Yield
		}
		cell := p.e.Store.ServingCell()
		if !p.configFut.IsError() && cell != nil && criterionS(p.e, cell) {
			p.result = ChangedCell
			return procman.Success
		}
		if cell != nil {
			cell.MarkBad()
		}
		p.idx++
		p.configFut = nil
		return p.evaluate()
	case selWaitSearch:
		if p.searchFut == nil || !p.searchFut.IsComplete() {
			return procman.Yield
		}
		if p.searchFut.IsError() {
			p.e.errorf("cell_selection", "fallback cell_search failed")
			return procman.Error
		}
		serving := p.e.Store.ServingCell()
		if serving != nil && serving.Phy != p.prevServ {
			p.result = ChangedCell
		} else {
			p.result = NoCell
		}
		return procman.Success
	default:
		return procman.Yield
	}
}

func (p *cellSelectionProc) React(ev any) procman.Outcome {
	e, ok := ev.(collab.CellSelectResultEvent)
	if !ok || p.state != selWaitPhy {
		return procman.Yield
	}
	if !e.Ok {
		p.e.warnf("cell_selection", "cell select failed, marking candidate bad")
		if cell := p.e.Store.ServingCell(); cell != nil {
			cell.MarkBad()
		}
		p.idx++
		return p.evaluate()
	}
	f, ok := p.e.servingCellConfig.Launch(p.e.Cfg.RequiredSibs)
	if !ok {
		return procman.Yield
	}
	p.configFut = f
	p.state = selWaitConfig
	return procman.Yield
}
