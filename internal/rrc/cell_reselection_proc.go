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
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/models"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/procman"
)

// cellReselectionProc runs cell-selection and, on changed_cell while
// idle, starts PCCH reception; then hands scheduling of the next run to
// Engine.reselTimer as long as the UE stays idle and NAS remains
// attached (component I′).
type cellReselectionProc struct {
	e   *Engine
	fut *procman.Future[CsResult]
}

func (p *cellReselectionProc) Init(args any) procman.Outcome {
	f, ok := p.e.cellSelection.Launch(nil)
	if !ok {
		return procman.Yield
	}
	p.fut = f
	return procman.Yield
}

func (p *cellReselectionProc) Step() procman.Outcome {
	if p.fut == nil || !p.fut.IsComplete() {
		return procman.Yield
	}
	if p.fut.IsError() {
		p.e.errorf("cell_reselection", "cell_selection failed")
		return procman.Error
	}
	if p.fut.Value() == ChangedCell && p.e.State == models.RrcIdle {
		p.e.infof("cell_reselection", "reselected to a new cell, restarting pcch")
		p.e.Mac.PcchStartRx()
	}
	return procman.Success
}

func (p *cellReselectionProc) React(ev any) procman.Outcome { return procman.Yield }

func (p *cellReselectionProc) Then(o procman.Outcome) {
	if p.e.State == models.RrcIdle && p.e.Nas.IsAttached() {
		p.e.reselTimer.SetDuration(p.e.Cfg.CellReselectionPeriod)
		p.e.reselTimer.Run()
	}
}
