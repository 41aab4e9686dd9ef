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
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/models"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/procman"
)

type pagingState int

const (
	pgWalking pagingState = iota
	pgWaitNas
	pgWaitConfig
)

// pagingProc walks a received Paging message's record list, dispatching
// matches to NAS one at a time, then re-runs serving-cell-config if the
// message carried sysInfoModPresent (component L).
type pagingProc struct {
	e         *Engine
	state     pagingState
	records   []collab.PagingRecord
	idx       int
	sysInfoMd bool
	configFut *procman.Future[struct{}]
}

func (p *pagingProc) Init(args any) procman.Outcome {
	ev, ok := args.(collab.PagingMessageEvent)
	if !ok {
		p.e.errorf("paging", "launched without a PagingMessageEvent")
		return procman.Error
	}
	p.records = ev.Records
	p.sysInfoMd = ev.SysInfoModPresent
	p.idx = 0
	return p.advance()
}

func (p *pagingProc) advance() procman.Outcome {
	for p.idx < len(p.records) {
		rec := p.records[p.idx]
		if p.e.State == models.RrcIdle && p.e.UeIdentity.Valid && rec.STmsi == p.e.UeIdentity {
			p.e.infof("paging", "matched own s-tmsi, dispatching to nas")
			p.e.Nas.Paging(rec.STmsi)
			p.state = pgWaitNas
			return procman.Yield
		}
		p.idx++
	}
	if p.sysInfoMd {
		p.e.infof("paging", "sysInfoModification present, reacquiring serving cell sibs")
		cell := p.e.Store.ServingCell()
		if cell != nil {
			cell.Sib1, cell.Sib2, cell.Sib3, cell.Sib13 = nil, nil, nil, nil
		}
		f, ok := p.e.servingCellConfig.Launch(p.e.Cfg.RequiredSibs)
		if !ok {
			return procman.Yield
		}
		p.configFut = f
		p.state = pgWaitConfig
		return procman.Yield
	}
	return procman.Success
}

func (p *pagingProc) Step() procman.Outcome {
	switch p.state {
	case pgWaitConfig:
		if p.configFut == nil || !p.configFut.IsComplete() {
			return procman.Yield
		}
		return procman.Success
	default:
		return procman.Yield
	}
}

func (p *pagingProc) React(ev any) procman.Outcome {
	if p.state != pgWaitNas {
		return procman.Yield
	}
	if _, ok := ev.(collab.NasPagingCompleteEvent); !ok {
		return procman.Yield
	}
	p.idx++
	return p.advance()
}
