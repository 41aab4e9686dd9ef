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
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/models"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/procman"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/timers"
)

type handoverState int

const (
	hoWaitPhySelect handoverState = iota
	hoWaitRa
)

// handoverProc drives a target-cell handover commanded by a received
// RRCConnectionReconfiguration carrying mobilityControlInfo: PHY
// resync, random access, AS key derivation, and reconfig-complete
// (component O).
type handoverProc struct {
	e     *Engine
	state handoverState

	mobInfo *models.MobilityControlInfo
	measCfg models.MeasurementConfig
	target  measure.PhyCell
}

func (p *handoverProc) Init(args any) procman.Outcome {
	ev, ok := args.(collab.RrcConnectionReconfigurationEvent)
	if !ok || ev.MobilityInfo == nil {
		p.e.errorf("handover", "launched without mobilityControlInfo")
		return procman.Error
	}
	p.mobInfo = ev.MobilityInfo
	p.measCfg = ev.MeasCfg
	p.target = measure.PhyCell{Pci: p.mobInfo.TargetPci, Earfcn: p.mobInfo.TargetEarfcn}

	serving := p.e.Store.ServingCell()
	if serving != nil && serving.Phy.Pci == p.target.Pci {
		p.e.errorf("handover", "target cell %d is already serving", p.target.Pci)
		return procman.Error
	}
	if p.e.Store.Find(p.target) == nil {
		p.e.errorf("handover", "target cell %d unknown to measured-cells store", p.target.Pci)
		return procman.Error
	}
	p.e.infof("handover", "starting handover to pci=%d earfcn=%d", p.target.Pci, p.target.Earfcn)

	p.e.hoSrcCell = p.e.Store.CloneServing()
	if serving != nil {
		p.e.hoSrcPci = serving.Phy.Pci
		p.e.hoSrcEarfcn = serving.Phy.Earfcn
	}

	p.e.T310.Stop()
	p.e.T304.SetDuration(msDuration(p.mobInfo.T304Ms))
	p.e.T304.Run()

	p.e.Pdcp.ReestablishForHandover()
	p.e.Rlc.ReestablishAll()
	p.e.Mac.WaitUplink()
	p.e.Mac.ClearRntis()
	p.e.Mac.Reset()
	p.e.Phy.Reset()
	p.e.Mac.SetHoRnti(p.mobInfo.NewCRnti, p.target.Pci)
	// RrCommonCfg / RrDedicatedCfg application is out of scope (ASN.1
	// message content); the RA mode is chosen from RachCfgDedPresent.

	p.e.Phy.StartCellSelect(collab.PhyCellRef{Pci: p.target.Pci, Earfcn: p.target.Earfcn}, "handover")
	p.state = hoWaitPhySelect
	return procman.Yield
}

func (p *handoverProc) Step() procman.Outcome { return procman.Yield }

func (p *handoverProc) React(ev any) procman.Outcome {
	switch e := ev.(type) {
	case collab.CellSelectResultEvent:
		if p.state != hoWaitPhySelect {
			return procman.Yield
		}
		if !e.Ok {
			p.e.errorf("handover", "cell select toward target failed")
			if target := p.e.Store.Find(p.target); target != nil {
				target.MarkBad()
			}
			return procman.Error
		}
		p.e.Store.SetServingCell(p.target, false)
		p.e.CRnti = p.mobInfo.NewCRnti

		if p.mobInfo.RachCfgDedPresent {
			p.e.Mac.StartNonContHo(p.mobInfo.PreambleIndex, p.mobInfo.MaskIndex)
		} else {
			p.e.Mac.StartContHo()
		}

		if p.mobInfo.SecurityCfgHo.KeyChangeInd {
			p.e.errorf("handover", "inter-rat key change requested, unsupported")
			return procman.Error // inter-RAT key change unsupported (Non-goal)
		}
		newSec := p.e.Usim.DeriveKeysHandover(p.mobInfo.SecurityCfgHo.Ncc)
		p.e.SecCfg = newSec
		p.e.Pdcp.ReconfigureSecurity(newSec)

		p.e.Tx.SendReconfigurationComplete()
		p.state = hoWaitRa
		return procman.Yield
	case collab.TimerExpiredEvent:
		if timers.ID(e.TimerID) == p.e.T304.ID() {
			p.e.errorf("handover", "t304 expired")
			return procman.Error
		}
		return procman.Yield
	case collab.RaCompletedEvent:
		if p.state != hoWaitRa {
			return procman.Yield
		}
		if e.Outcome == collab.RaSuccess {
			p.e.infof("handover", "random access succeeded, handover complete")
			return procman.Success
		}
		p.e.warnf("handover", "random access failed")
		return procman.Error
	default:
		return procman.Yield
	}
}

func (p *handoverProc) Then(outcome procman.Outcome) {
	if outcome == procman.Success {
		p.e.T304.Stop()
		p.e.hoAwaitingT304 = false
		return
	}
	if p.e.T304.IsExpired() {
		p.e.T304.Stop()
		p.e.hoAwaitingT304 = false
		p.e.reestablishment.Launch("ho_fail")
		return
	}
	if p.e.T304.IsRunning() {
		p.e.warnf("handover", "failed while t304 still running, waiting for it to expire")
		p.e.hoAwaitingT304 = true
	}
}
