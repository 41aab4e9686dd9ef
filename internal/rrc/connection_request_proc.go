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

type connRequestState int

const (
	crCellSelection connRequestState = iota
	crConfigServingCell
	crWaitT300
)

// connRequestProc drives IDLE → CONNECTED: cell-selection, then
// serving-cell-config, then RRCConnectionRequest under T300 (component
// K).
type connRequestProc struct {
	e         *Engine
	state     connRequestState
	selFut    *procman.Future[CsResult]
	configFut *procman.Future[struct{}]
	nasSdu    []byte
}

func (p *connRequestProc) Init(args any) procman.Outcome {
	if sdu, ok := args.([]byte); ok {
		p.nasSdu = sdu
	}
	if !p.e.PlmnIsSelected {
		p.e.errorf("connection_request", "no plmn selected")
		return procman.Error
	}
	if p.e.State != models.RrcIdle {
		p.e.errorf("connection_request", "not in rrc_idle")
		return procman.Error
	}
	if p.e.T302.IsRunning() {
		p.e.warnf("connection_request", "barred by t302, rejecting mo data")
		p.e.Nas.SetBarring(models.BarringMoData)
		return procman.Error
	}

	f, ok := p.e.cellSelection.Launch(nil)
	if !ok {
		f, ok = p.e.cellSelection.CurrentFuture()
		if !ok {
			return procman.Error
		}
	}
	p.selFut = f
	p.state = crCellSelection
	return procman.Yield
}

func (p *connRequestProc) Step() procman.Outcome {
	switch p.state {
	case crCellSelection:
		if p.selFut == nil || !p.selFut.IsComplete() {
			return procman.Yield
		}
		if p.selFut.IsError() {
			p.e.errorf("connection_request", "cell_selection failed")
			return procman.Error
		}
		if !p.e.Phy.CellIsCamping() {
			p.e.errorf("connection_request", "not camping after cell_selection")
			return procman.Error
		}
		p.e.Phy.Reset()
		p.e.Mac.Reset()
		f, ok := p.e.servingCellConfig.Launch(p.e.Cfg.RequiredSibs)
		if !ok {
			return procman.Yield
		}
		p.configFut = f
		p.state = crConfigServingCell
		return procman.Yield
	case crConfigServingCell:
		if p.configFut == nil || !p.configFut.IsComplete() {
			return procman.Yield
		}
		if p.configFut.IsError() {
			p.e.errorf("connection_request", "serving_cell_config failed")
			return procman.Error
		}
		p.e.T300.Run()
		p.e.infof("connection_request", "sending rrcConnectionRequest, t300 running")
		p.e.Tx.SendConnectionRequest()
		p.e.dedicatedNasSdu = p.nasSdu
		p.state = crWaitT300
		return procman.Yield
	case crWaitT300:
		if p.e.T300.IsRunning() {
			return procman.Yield
		}
		if p.e.State == models.RrcConnected {
			return procman.Success
		}
		if p.e.T300.IsExpired() {
			p.e.warnf("connection_request", "t300 expired without rrcConnectionSetup")
			p.e.Mac.Reset()
			p.e.Rlc.ReestablishAll()
		} else {
			// Stopped by a received RRCConnectionReject, not by expiry.
			p.e.warnf("connection_request", "rrcConnectionRequest rejected")
			p.e.Mac.Reset()
		}
		return procman.Error
	default:
		return procman.Yield
	}
}

func (p *connRequestProc) React(ev any) procman.Outcome {
	if p.state != crWaitT300 {
		return procman.Yield
	}
	switch ev.(type) {
	case collab.RrcConnectionSetupEvent:
		p.e.T300.Stop()
		p.e.State = models.RrcConnected
		return procman.Yield
	case collab.RrcConnectionRejectEvent:
		p.e.T300.Stop()
		return procman.Yield
	default:
		return procman.Yield
	}
}

func (p *connRequestProc) Then(outcome procman.Outcome) {
	if outcome == procman.Success {
		p.e.Nas.ConnectionRequestCompleted(true)
		return
	}
	p.e.dedicatedNasSdu = nil
	p.e.Nas.ConnectionRequestCompleted(false)
}
