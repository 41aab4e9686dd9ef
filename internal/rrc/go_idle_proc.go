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
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/timers"
)

// goIdleProc waits for RLC to flush SRBs, or a flush timeout, and drops
// to RRC_IDLE either way (component M).
type goIdleProc struct {
	e     *Engine
	timer *timers.Timer
}

func newGoIdleProc(e *Engine) *goIdleProc {
	return &goIdleProc{e: e, timer: e.timerRegistry.New(e.Cfg.RlcFlushTimeout)}
}

func (p *goIdleProc) Init(args any) procman.Outcome {
	if p.e.State == models.RrcIdle {
		return procman.Success
	}
	p.timer.SetDuration(p.e.Cfg.RlcFlushTimeout)
	p.timer.Run()
	return procman.Yield
}

func (p *goIdleProc) Step() procman.Outcome {
	if p.e.State == models.RrcIdle {
		return procman.Success
	}
	if p.e.Rlc.SrbsFlushed() {
		p.e.infof("go_idle", "srbs flushed, leaving connected")
		p.e.leaveConnected()
		return procman.Success
	}
	return procman.Yield
}

func (p *goIdleProc) React(ev any) procman.Outcome {
	e, ok := ev.(collab.TimerExpiredEvent)
	if !ok || timers.ID(e.TimerID) != p.timer.ID() {
		return procman.Yield
	}
	p.e.warnf("go_idle", "rlc flush timed out, forcing idle")
	p.e.leaveConnected()
	return procman.Success
}

func (p *goIdleProc) Then(outcome procman.Outcome) {
	p.timer.Stop()
	if p.e.Nas.IsAttached() {
		p.e.cellReselection.Launch(nil)
	}
}
