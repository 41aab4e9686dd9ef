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
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/procman"
)

// plmnSearchProc repeatedly launches cell-search across frequencies,
// collecting (PLMN, TAC) tuples from every cell that yields a SIB1,
// until PHY reports NO_MORE_FREQS or the collected list hits
// Cfg.MaxFoundPlmns (component J).
type plmnSearchProc struct {
	e        *Engine
	fut      *procman.Future[struct{}]
	lastFreq collab.LastFreq
	plmns    []collab.PlmnTac
}

func (p *plmnSearchProc) Init(args any) procman.Outcome {
	p.plmns = nil
	p.lastFreq = collab.MoreFreqs
	return p.launchNext()
}

func (p *plmnSearchProc) launchNext() procman.Outcome {
	f, ok := p.e.cellSearch.Launch(nil)
	if !ok {
		return procman.Yield
	}
	p.fut = f
	return procman.Yield
}

func (p *plmnSearchProc) Step() procman.Outcome {
	if p.fut == nil || !p.fut.IsComplete() {
		return procman.Yield
	}
	if p.fut.IsError() {
		p.e.errorf("plmn_search", "cell_search failed")
		return procman.Error
	}
	if cell := p.e.Store.ServingCell(); cell != nil && cell.HasSib1() {
		for _, plmn := range cell.Sib1.PlmnList {
			if len(p.plmns) >= p.e.Cfg.MaxFoundPlmns {
				break
			}
			p.plmns = append(p.plmns, collab.PlmnTac{Plmn: plmn, Tac: cell.Sib1.Tac})
		}
	}
	if p.lastFreq == collab.NoMoreFreqs || len(p.plmns) >= p.e.Cfg.MaxFoundPlmns {
		return procman.Success
	}
	p.fut = nil
	return p.launchNext()
}

func (p *plmnSearchProc) React(ev any) procman.Outcome {
	if e, ok := ev.(collab.CellSearchResultEvent); ok {
		p.lastFreq = e.LastFreq
	}
	return procman.Yield
}

func (p *plmnSearchProc) Then(outcome procman.Outcome) {
	if outcome == procman.Success {
		p.e.infof("plmn_search", "completed, found %d plmns", len(p.plmns))
		p.e.Nas.PlmnSearchCompleted(p.plmns, true)
	} else {
		p.e.Nas.PlmnSearchCompleted(nil, false)
	}
}
