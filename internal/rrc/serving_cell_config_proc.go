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
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/measure"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/procman"
)

// servingCellConfigProc walks a caller-supplied list of required SIB
// indices against the serving cell, launching si_acquire for whatever is
// missing and scheduled (component H). Callers pass the list explicitly
// via Launch's args ([]uint32); a nil args falls back to Cfg.RequiredSibs,
// the UE's general required-SIB set.
type servingCellConfigProc struct {
	e            *Engine
	requiredSibs []uint32
	idx          int
	waiting      *procman.Future[struct{}]
}

func (p *servingCellConfigProc) Init(args any) procman.Outcome {
	sibs, _ := args.([]uint32)
	if sibs == nil {
		sibs = p.e.Cfg.RequiredSibs
	}
	p.requiredSibs = sibs
	p.idx = 0
	p.waiting = nil
	return p.advance()
}

func (p *servingCellConfigProc) Step() procman.Outcome {
	if p.waiting == nil {
		return p.advance()
	}
	if !p.waiting.IsComplete() {
		return procman.Yield
	}
	sibIndex := p.requiredSibs[p.idx]
	if p.waiting.IsError() {
		if sibIndex < 2 {
			p.e.errorf("serving_cell_config", "sib %d acquisition failed", sibIndex+1)
			return procman.Error
		}
		// SIB3+ acquisition failures are skipped, not fatal.
		p.e.warnf("serving_cell_config", "sib %d acquisition failed, skipping", sibIndex+1)
	} else {
		p.dispatch(sibIndex)
	}
	p.idx++
	p.waiting = nil
	return p.advance()
}

func (p *servingCellConfigProc) React(ev any) procman.Outcome { return procman.Yield }

// advance walks forward through RequiredSibs, handling already-acquired
// or unscheduled SIBs inline and only yielding once it has launched an
// si_acquire that must be waited on.
func (p *servingCellConfigProc) advance() procman.Outcome {
	cell := p.e.Store.ServingCell()
	if cell == nil {
		p.e.errorf("serving_cell_config", "no serving cell")
		return procman.Error
	}
	for p.idx < len(p.requiredSibs) {
		sibIndex := p.requiredSibs[p.idx]
		if cell.HasSib(sibIndex) {
			p.dispatch(sibIndex)
			p.idx++
			continue
		}
		if sibIndex < 2 || cell.IsSibScheduled(sibIndex) {
			f, ok := p.e.siAcquire.Launch(sibIndex)
			if !ok {
				return procman.Yield
			}
			p.waiting = f
			return procman.Yield
		}
		// Not scheduled in schedInfoList: silently skipped.
		p.idx++
	}
	return procman.Success
}

// dispatch runs the per-SIB handler once a required SIB is confirmed
// present, mirroring the teacher's handle_sib2/handle_sib3/... dispatch.
func (p *servingCellConfigProc) dispatch(sibIndex uint32) {
	cell := p.e.Store.ServingCell()
	switch sibIndex {
	case 1:
		p.handleSib2(cell)
	case 2:
		p.handleSib3(cell)
	case 12:
		p.handleSib13(cell)
	}
}

func (p *servingCellConfigProc) handleSib2(cell *measure.Cell) {
	if cell.Sib2 == nil {
		return
	}
	p.e.T300.SetDuration(msDuration(cell.Sib2.T300Ms))
	p.e.T301.SetDuration(msDuration(cell.Sib2.T301Ms))
	p.e.T310.SetDuration(msDuration(cell.Sib2.T310Ms))
	p.e.T311.SetDuration(msDuration(cell.Sib2.T311Ms))
}

func (p *servingCellConfigProc) handleSib3(cell *measure.Cell) {
	if cell.Sib3 == nil {
		return
	}
	p.e.CellReselCfg = cell.Sib3.ReselCfg
}

func (p *servingCellConfigProc) handleSib13(cell *measure.Cell) {
	if cell.Sib13 == nil {
		return
	}
	cell.HasMcch = cell.Sib13.HasMcch
}
