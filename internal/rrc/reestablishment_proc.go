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

type reestabState int

const (
	reCellResel reestabState = iota
	reCellConfig
)

// reestablishmentProc implements TS 36.331 §5.3.7's post-failure
// recovery: suspend bearers, reselect a cell meeting criterion S, and
// send RRCConnectionReestablishmentRequest before T311 expires
// (component N).
type reestablishmentProc struct {
	e   *Engine
	cau string

	state     reestabState
	savedRnti uint16
	srcPci    uint16
	srcEarfcn uint32

	selFut    *procman.Future[struct{}]
	configFut *procman.Future[struct{}]
}

func (p *reestablishmentProc) Init(args any) procman.Outcome {
	if cause, ok := args.(string); ok {
		p.cau = cause
	}
	if !p.e.SecurityActivated || p.e.State != models.RrcConnected || p.e.CRnti == 0 {
		p.e.warnf("reestablishment", "not eligible (cause=%q), going idle", p.cau)
		p.e.goIdle.Launch(nil)
		return procman.Success
	}

	p.e.infof("reestablishment", "starting recovery, cause=%q", p.cau)
	p.savedRnti = p.e.CRnti
	if serving := p.e.Store.ServingCell(); serving != nil {
		p.srcPci = serving.Phy.Pci
		p.srcEarfcn = serving.Phy.Earfcn
	}
	p.e.reestabCause = p.cau

	p.e.T310.Stop()
	p.e.T311.Run()
	p.e.Rlc.SuspendAllExceptSrb0()
	p.e.Mac.Reset()
	// Beyond the MAC reset above, no PUCCH/SRS or MAC main config is
	// reverted or applied here; RR config application is out of scope
	// (ASN.1 message content).

	return p.launchReselection()
}

func (p *reestablishmentProc) launchReselection() procman.Outcome {
	f, ok := p.e.cellReselection.Launch(nil)
	if !ok {
		f, ok = p.e.cellReselection.CurrentFuture()
		if !ok {
			return procman.Yield
		}
	}
	p.selFut = f
	p.state = reCellResel
	return procman.Yield
}

func (p *reestablishmentProc) Step() procman.Outcome {
	if p.e.T311.IsExpired() {
		p.e.warnf("reestablishment", "t311 expired before recovery completed, going idle")
		p.e.goIdle.Launch(nil)
		return procman.Success
	}

	switch p.state {
	case reCellResel:
		if p.selFut == nil || !p.selFut.IsComplete() {
			return procman.Yield
		}
		return p.evaluate()
	case reCellConfig:
		if p.configFut == nil || !p.configFut.IsComplete() {
			return procman.Yield
		}
		return p.evaluate()
	default:
		return procman.Yield
	}
}

// evaluate re-checks sync and SIB availability after a reselection or
// configuration round completes, applying cell_criteria once SIBs
// 1/2/3 are all present.
func (p *reestablishmentProc) evaluate() procman.Outcome {
	if !p.e.Phy.IsInSync() {
		return p.launchReselection()
	}
	cell := p.e.Store.ServingCell()
	if cell == nil {
		return p.launchReselection()
	}
	if !cell.HasSib(0) || !cell.HasSib(1) || !cell.HasSib(2) {
		f, ok := p.e.servingCellConfig.Launch([]uint32{0, 1, 2})
		if !ok {
			return procman.Yield
		}
		p.configFut = f
		p.state = reCellConfig
		return procman.Yield
	}
	if criterionS(p.e, cell) {
		p.e.infof("reestablishment", "found suitable cell, sending reestablishment request")
		p.e.T311.Stop()
		p.e.T301.Run()
		p.e.Tx.SendReestablishmentRequest()
		return procman.Success
	}
	return p.launchReselection()
}

func (p *reestablishmentProc) React(ev any) procman.Outcome {
	if _, ok := ev.(collab.TimerExpiredEvent); ok {
		return procman.Yield
	}
	return procman.Yield
}
