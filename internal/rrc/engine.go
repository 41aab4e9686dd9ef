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

// Package rrc implements the ten RRC procedures (spec components F–O)
// wired together on top of the procman engine, the measured-cells store,
// and the timer service.
package rrc

import (
	"log"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/measure"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/models"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/monitoring"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/phyctrl"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/procman"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/timers"
)

// Collaborators bundles the external interfaces the engine consumes,
// matching spec §6's PHY/MAC/RLC/PDCP/NAS/USIM collaborator set.
type Collaborators struct {
	Phy  collab.Phy
	Mac  collab.Mac
	Rlc  collab.Rlc
	Pdcp collab.Pdcp
	Nas  collab.Nas
	Usim collab.Usim
	Tx   collab.RrcTx
}

// Engine is the RRC UE-level state (spec §3) plus the procedure runners
// that drive it. One Engine models one UE's RRC layer.
type Engine struct {
	Imsi string
	Cfg  Config

	Eng   *procman.Engine
	Store *measure.Store
	Phy   *phyctrl.Controller
	Mac   collab.Mac
	Rlc   collab.Rlc
	Pdcp  collab.Pdcp
	Nas   collab.Nas
	Usim  collab.Usim
	Tx    collab.RrcTx

	// UE-level state (spec §3 "RRC UE-level state")
	State             models.RrcState
	PlmnIsSelected    bool
	SecurityActivated bool
	UeIdentity        models.STmsi
	SecCfg            models.SecurityConfig
	CellReselCfg      models.CellReselectionConfig
	CRnti             uint16

	timerRegistry *timers.Registry
	T300          *timers.Timer
	T301          *timers.Timer
	T302          *timers.Timer
	T304          *timers.Timer
	T310          *timers.Timer
	T311          *timers.Timer

	// reselRegistry owns the idle-mode reselection self-scheduling timer.
	// Its expiry directly relaunches the cell-reselection runner rather
	// than round-tripping through a trigger event: unlike a
	// procedure-owned timer, nothing here targets a specific running
	// invocation, so there is no dangling-reference concern to guard
	// against by going through the event queue.
	reselRegistry *timers.Registry
	reselTimer    *timers.Timer

	// Buffered state carried across a connection-request attempt.
	dedicatedNasSdu []byte

	// Saved context for reestablishment / handover recovery.
	hoSrcCell    *measure.Cell
	hoSrcPci     uint16
	hoSrcEarfcn  uint32
	reestabCause string

	// hoAwaitingT304 is armed by handoverProc.Then when handover fails
	// (RA failure, cell-select failure) while T304 is still running: the
	// handover Runner itself goes idle right away, but 36.331 §5.3.5.6
	// leaves T304 armed so its own expiry is what triggers
	// reestablishment. Since procman.Runner.deliver is a no-op once its
	// Runner is idle, nothing routed through handoverProc's own React
	// would ever see that expiry — Tick checks this flag directly instead,
	// playing the role the original's top-level rrc::timer_expired plays
	// for a timer that outlives the procedure that armed it.
	hoAwaitingT304 bool

	// Singleton procedure runners. Reused across launches — "disallow
	// concurrent invocation" is enforced by procman.Runner.Launch.
	cellSearchProc        *cellSearchProc
	cellSearch            *procman.Runner[struct{}]
	siAcquireProc         *siAcquireProc
	siAcquire             *procman.Runner[struct{}]
	servingCellConfigProc *servingCellConfigProc
	servingCellConfig     *procman.Runner[struct{}]
	cellSelectionProc     *cellSelectionProc
	cellSelection         *procman.Runner[CsResult]
	cellReselectionProc   *cellReselectionProc
	cellReselection       *procman.Runner[struct{}]
	plmnSearchProc        *plmnSearchProc
	plmnSearch            *procman.Runner[struct{}]
	connRequestProc       *connRequestProc
	connRequest           *procman.Runner[struct{}]
	pagingProc            *pagingProc
	paging                *procman.Runner[struct{}]
	goIdleProc            *goIdleProc
	goIdle                *procman.Runner[struct{}]
	reestablishmentProc   *reestablishmentProc
	reestablishment       *procman.Runner[struct{}]
	handoverProc          *handoverProc
	handover              *procman.Runner[struct{}]

	// currentTTI is advanced once per Tick by the owning task loop
	// (spec §6 "TTI arithmetic"). Exposed via CurrentTTI().
	currentTTI uint32
}

// New wires a fresh Engine around collaborators, starting in RRC_IDLE
// with no PLMN selected.
func New(imsi string, cfg Config, c Collaborators) *Engine {
	e := &Engine{
		Imsi:  imsi,
		Cfg:   cfg,
		Eng:   procman.New(),
		Store: measure.NewStore(),
		Mac:   c.Mac,
		Rlc:   c.Rlc,
		Pdcp:  c.Pdcp,
		Nas:   c.Nas,
		Usim:  c.Usim,
		Tx:    c.Tx,
		State: models.RrcIdle,
	}
	e.Phy = phyctrl.New(c.Phy, e.Eng)
	e.timerRegistry = timers.NewRegistry(func(id timers.ID) {
		monitoring.TimerExpiries.WithLabelValues(imsi, e.timerName(id)).Inc()
		e.Eng.Trigger(collab.TimerExpiredEvent{TimerID: uint32(id)})
	})
	e.T300 = e.timerRegistry.New(cfg.T300Default)
	e.T301 = e.timerRegistry.New(cfg.T301Default)
	e.T302 = e.timerRegistry.New(cfg.T302Default)
	e.T304 = e.timerRegistry.New(cfg.T304Default)
	e.T310 = e.timerRegistry.New(cfg.T310Default)
	e.T311 = e.timerRegistry.New(cfg.T311Default)

	e.cellSearchProc = &cellSearchProc{e: e}
	e.cellSearch = procman.NewRunner(e.Eng, "cell_search", e.cellSearchProc, func() struct{} { return struct{}{} }).WithImsi(imsi)

	e.siAcquireProc = newSiAcquireProc(e)
	e.siAcquire = procman.NewRunner(e.Eng, "si_acquire", e.siAcquireProc, func() struct{} { return struct{}{} }).WithImsi(imsi)

	e.servingCellConfigProc = &servingCellConfigProc{e: e}
	e.servingCellConfig = procman.NewRunner(e.Eng, "serving_cell_config", e.servingCellConfigProc, func() struct{} { return struct{}{} }).WithImsi(imsi)

	e.cellSelectionProc = &cellSelectionProc{e: e}
	e.cellSelection = procman.NewRunner(e.Eng, "cell_selection", e.cellSelectionProc, func() CsResult { return e.cellSelectionProc.result }).WithImsi(imsi)

	e.cellReselectionProc = &cellReselectionProc{e: e}
	e.cellReselection = procman.NewRunner(e.Eng, "cell_reselection", e.cellReselectionProc, func() struct{} { return struct{}{} }).WithImsi(imsi)
	e.reselRegistry = timers.NewRegistry(func(timers.ID) {
		e.cellReselection.Launch(nil)
	})
	e.reselTimer = e.reselRegistry.New(cfg.CellReselectionPeriod)

	e.plmnSearchProc = &plmnSearchProc{e: e}
	e.plmnSearch = procman.NewRunner(e.Eng, "plmn_search", e.plmnSearchProc, func() struct{} { return struct{}{} }).WithImsi(imsi)

	e.connRequestProc = &connRequestProc{e: e}
	e.connRequest = procman.NewRunner(e.Eng, "connection_request", e.connRequestProc, func() struct{} { return struct{}{} }).WithImsi(imsi)

	e.pagingProc = &pagingProc{e: e}
	e.paging = procman.NewRunner(e.Eng, "paging", e.pagingProc, func() struct{} { return struct{}{} }).WithImsi(imsi)

	e.goIdleProc = newGoIdleProc(e)
	e.goIdle = procman.NewRunner(e.Eng, "go_idle", e.goIdleProc, func() struct{} { return struct{}{} }).WithImsi(imsi)

	e.reestablishmentProc = &reestablishmentProc{e: e}
	e.reestablishment = procman.NewRunner(e.Eng, "reestablishment", e.reestablishmentProc, func() struct{} { return struct{}{} }).WithImsi(imsi)

	e.handoverProc = &handoverProc{e: e}
	e.handover = procman.NewRunner(e.Eng, "handover", e.handoverProc, func() struct{} { return struct{}{} }).WithImsi(imsi)

	return e
}

// Tick advances the current TTI by one subframe and steps the procedure
// engine. Called once per subframe by the owning task loop.
func (e *Engine) Tick() {
	e.currentTTI = (e.currentTTI + 1) % 10240
	e.Eng.Tick()
	if e.hoAwaitingT304 && e.T304.IsExpired() {
		e.hoAwaitingT304 = false
		e.warnf("handover", "t304 expired after handover already failed, triggering reestablishment")
		e.reestablishment.Launch("ho_fail")
	}
}

// CurrentTTI returns the engine's current subframe counter
// (SFN*10+subframe, modulo 10240 per spec §6).
func (e *Engine) CurrentTTI() uint32 { return e.currentTTI }

// timerName resolves a Registry ID back to the RRC timer name it belongs
// to, for labelling monitoring.TimerExpiries. Falls back to "unknown"
// rather than panicking, since a stray ID (e.g. from reselRegistry, which
// self-relaunches rather than routing through this sink) should never
// take down the expiry path.
func (e *Engine) timerName(id timers.ID) string {
	switch id {
	case e.T300.ID():
		return "t300"
	case e.T301.ID():
		return "t301"
	case e.T302.ID():
		return "t302"
	case e.T304.ID():
		return "t304"
	case e.T310.ID():
		return "t310"
	case e.T311.ID():
		return "t311"
	default:
		return "unknown"
	}
}

// leaveConnected drops the UE back to RRC_IDLE and disarms every
// CONNECTED-scoped timer, per the round-trip law in spec §8: IDLE →
// CONNECTED → IDLE returns rrc_state to its initial value and leaves no
// running RRC timers.
func (e *Engine) leaveConnected() {
	e.State = models.RrcIdle
	e.T300.Stop()
	e.T301.Stop()
	e.T304.Stop()
	e.T310.Stop()
	e.T311.Stop()
	e.CRnti = 0
}

// LaunchCellSearch starts a cold cell search (spec §4.F), the entry point
// a driver uses to bring a powered-on UE onto its first cell.
func (e *Engine) LaunchCellSearch() bool {
	_, ok := e.cellSearch.Launch(nil)
	return ok
}

// LaunchPlmnSearch starts a manual PLMN search (spec §4.J).
func (e *Engine) LaunchPlmnSearch() bool {
	_, ok := e.plmnSearch.Launch(nil)
	return ok
}

// LaunchConnectionRequest starts an RRC connection establishment attempt
// (spec §4.K) carrying the given dedicated NAS SDU.
func (e *Engine) LaunchConnectionRequest(nasSdu []byte) bool {
	_, ok := e.connRequest.Launch(nasSdu)
	return ok
}

func (e *Engine) logf(proc, format string, args ...any) {
	log.Printf("[%s] proc=%q "+format, append([]any{e.Imsi, proc}, args...)...)
}

func (e *Engine) infof(proc, format string, args ...any)  { e.logf(proc, format, args...) }
func (e *Engine) warnf(proc, format string, args ...any)  { e.logf(proc, "WARNING: "+format, args...) }
func (e *Engine) errorf(proc, format string, args ...any) { e.logf(proc, "ERROR: "+format, args...) }
