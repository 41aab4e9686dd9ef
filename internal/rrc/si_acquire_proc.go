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
	"strconv"
	"time"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/monitoring"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/procman"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/sched"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/timers"
)

// siAcquireProc drives si_acquire: schedule a BCCH listen window for one
// SIB, retry across HARQ-spaced windows, and time out overall (component
// G). One instance is shared by every caller (cell-search and
// serving-cell-config, the latter also on behalf of reestablishment):
// concurrent SI acquisitions are
// disallowed by procman.Runner.Launch.
type siAcquireProc struct {
	e            *Engine
	sibIndex     uint32
	tFrames      uint32
	schedIndex   int
	overallTimer *timers.Timer
	retryTimer   *timers.Timer
}

func newSiAcquireProc(e *Engine) *siAcquireProc {
	p := &siAcquireProc{e: e}
	p.overallTimer = e.timerRegistry.New(e.Cfg.SIBSearchTimeout)
	p.retryTimer = e.timerRegistry.New(0)
	return p
}

func (p *siAcquireProc) Init(args any) procman.Outcome {
	sibIndex := args.(uint32)
	cell := p.e.Store.ServingCell()
	if cell == nil {
		return procman.Error
	}
	if cell.HasSib(sibIndex) {
		return procman.Success
	}
	if sibIndex > 0 && !cell.HasSib1() {
		return procman.Error
	}
	t, n := sched.PeriodicityAndIndex(sibIndex, cell.Sib1.ToSchedSib1())
	if n < 0 {
		p.e.warnf("si_acquire", "sib %d not scheduled in schedInfoList", sibIndex+1)
		return procman.Error
	}
	p.sibIndex = sibIndex
	p.tFrames = t
	p.schedIndex = n
	p.startSiAcquire()
	p.overallTimer.SetDuration(p.e.Cfg.SIBSearchTimeout)
	p.overallTimer.Run()
	return procman.Yield
}

// startSiAcquire arms the BCCH listen window and the per-window retry
// timer. win_start is always the next opportunity strictly after the
// current TTI (sib_start_tti guarantees this); the retry timer fires
// T*5 frames after the window start, 5 being the HARQ retransmission
// budget, or SIB1's own periodicity for sib_index==0.
func (p *siAcquireProc) startSiAcquire() {
	monitoring.SiAcquireAttempts.WithLabelValues(p.e.Imsi, strconv.Itoa(int(p.sibIndex))).Inc()
	cell := p.e.Store.ServingCell()
	tti := uint64(p.e.CurrentTTI())
	win := sched.WindowWithIndex(tti, p.sibIndex, p.schedIndex, p.tFrames, cell.Sib1.ToSchedSib1())
	if !sched.TTIAfter(win.Start, p.e.CurrentTTI()) {
		// sib_start_tti always returns the *next* opportunity; a window
		// that is not strictly after "now" only happens if the resolved
		// TTI aliases the current one across the modulus. Recompute one
		// subframe later rather than hang until the overall timeout.
		win = sched.WindowWithIndex(tti+1, p.sibIndex, p.schedIndex, p.tFrames, cell.Sib1.ToSchedSib1())
	}
	p.e.Mac.BcchStartRx(win.Start, win.Length)

	var retryFrames uint32
	if p.sibIndex == 0 {
		retryFrames = p.e.Cfg.SIB1PeriodicityTTI / 10
	} else {
		retryFrames = p.tFrames * 5
	}
	delay := sched.TTIDelta(win.Start, p.e.CurrentTTI()) + int32(retryFrames)*10
	if delay < 1 {
		delay = 1
	}
	p.retryTimer.SetDuration(time.Duration(delay) * time.Millisecond)
	p.retryTimer.Run()
}

func (p *siAcquireProc) Step() procman.Outcome { return procman.Yield }

func (p *siAcquireProc) React(ev any) procman.Outcome {
	switch e := ev.(type) {
	case collab.SibReceivedEvent:
		if e.SibIndex != p.sibIndex {
			return procman.Yield
		}
		return p.checkComplete()
	case collab.TimerExpiredEvent:
		switch timers.ID(e.TimerID) {
		case p.overallTimer.ID():
			if p.e.Store.ServingCell() != nil && p.e.Store.ServingCell().HasSib(p.sibIndex) {
				return procman.Success
			}
			return procman.Error
		case p.retryTimer.ID():
			if out := p.checkComplete(); out != procman.Yield {
				return out
			}
			p.startSiAcquire()
			return procman.Yield
		default:
			return procman.Yield
		}
	default:
		return procman.Yield
	}
}

func (p *siAcquireProc) checkComplete() procman.Outcome {
	cell := p.e.Store.ServingCell()
	if cell != nil && cell.HasSib(p.sibIndex) {
		return procman.Success
	}
	return procman.Yield
}

func (p *siAcquireProc) Then(o procman.Outcome) {
	p.overallTimer.Stop()
	p.retryTimer.Stop()
}
