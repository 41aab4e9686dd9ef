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
	"time"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/measure"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/models"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/sched"
)

// fakePhy is a hand-written PHY double: StartCellSearch/StartCellSelect
// only record the call, since completion is delivered by the test driving
// collab.CellSearchResultEvent/CellSelectResultEvent through the engine.
type fakePhy struct {
	camping     bool
	inSync      bool
	searchCalls []string
	selectCalls []collab.PhyCellRef
	resetCalls  int
}

func (f *fakePhy) StartCellSearch(subscriber string) bool {
	f.searchCalls = append(f.searchCalls, subscriber)
	return true
}
func (f *fakePhy) StartCellSelect(cell collab.PhyCellRef, subscriber string) bool {
	f.selectCalls = append(f.selectCalls, cell)
	return true
}
func (f *fakePhy) CellIsCamping() bool { return f.camping }
func (f *fakePhy) IsInSync() bool      { return f.inSync }
func (f *fakePhy) Reset()              { f.resetCalls++ }

type nonContHoCall struct{ preambleIdx, maskIdx uint32 }
type hoRntiCall struct {
	newRnti   uint16
	targetPci uint16
}

type bcchWindow struct{ start, length uint32 }

type fakeMac struct {
	bcchWindows []bcchWindow
	pcchCalls   int
	resetCalls  int
	waitUplink  int
	clearRntis  int
	rntis       uint16
	contHoCalls int
	nonContHo   []nonContHoCall
	hoRntiCalls []hoRntiCall
}

func (f *fakeMac) BcchStartRx(winStartTTI uint32, winLenSubframes uint32) {
	f.bcchWindows = append(f.bcchWindows, bcchWindow{start: winStartTTI, length: winLenSubframes})
}
func (f *fakeMac) PcchStartRx()              { f.pcchCalls++ }
func (f *fakeMac) Reset()                    { f.resetCalls++ }
func (f *fakeMac) WaitUplink()               { f.waitUplink++ }
func (f *fakeMac) ClearRntis()               { f.clearRntis++ }
func (f *fakeMac) GetRntis() (ueRnti uint16) { return f.rntis }
func (f *fakeMac) StartContHo()              { f.contHoCalls++ }
func (f *fakeMac) StartNonContHo(preambleIdx uint32, maskIdx uint32) {
	f.nonContHo = append(f.nonContHo, nonContHoCall{preambleIdx, maskIdx})
}
func (f *fakeMac) SetHoRnti(newRnti uint16, targetPci uint16) {
	f.hoRntiCalls = append(f.hoRntiCalls, hoRntiCall{newRnti, targetPci})
}

type fakeRlc struct {
	flushed          bool
	suspendCalls     int
	reestablishCalls int
}

func (f *fakeRlc) SrbsFlushed() bool     { return f.flushed }
func (f *fakeRlc) SuspendAllExceptSrb0() { f.suspendCalls++ }
func (f *fakeRlc) ReestablishAll()       { f.reestablishCalls++ }

type fakePdcp struct {
	reestablishCalls int
	lastSecCfg       models.SecurityConfig
	reconfigureCalls int
}

func (f *fakePdcp) ReestablishForHandover() { f.reestablishCalls++ }
func (f *fakePdcp) ReconfigureSecurity(cfg models.SecurityConfig) {
	f.lastSecCfg = cfg
	f.reconfigureCalls++
}

type fakeNas struct {
	plmnFound   []collab.PlmnTac
	plmnSuccess bool
	plmnCalled  bool

	pagingCalls  []models.STmsi
	pagingReturn bool

	connReqCompleted *bool
	barring          models.BarringKind
	attached         bool
}

func (f *fakeNas) PlmnSearchCompleted(found []collab.PlmnTac, success bool) {
	f.plmnFound = found
	f.plmnSuccess = success
	f.plmnCalled = true
}
func (f *fakeNas) Paging(sTmsi models.STmsi) bool {
	f.pagingCalls = append(f.pagingCalls, sTmsi)
	return f.pagingReturn
}
func (f *fakeNas) ConnectionRequestCompleted(ok bool) { f.connReqCompleted = &ok }
func (f *fakeNas) SetBarring(kind models.BarringKind) { f.barring = kind }
func (f *fakeNas) IsAttached() bool                   { return f.attached }

type fakeUsim struct{}

func (f *fakeUsim) DeriveKeysHandover(ncc uint8) models.SecurityConfig {
	return models.SecurityConfig{CipherAlgo: "eea2", IntegAlgo: "eia2", Ncc: ncc}
}

type fakeTx struct {
	connReqCalls          int
	reestabReqCalls       int
	reconfigCompleteCalls int
}

func (f *fakeTx) SendConnectionRequest()       { f.connReqCalls++ }
func (f *fakeTx) SendReestablishmentRequest()  { f.reestabReqCalls++ }
func (f *fakeTx) SendReconfigurationComplete() { f.reconfigCompleteCalls++ }

// testDoubles bundles every fake collaborator for a test engine so
// assertions can reach into them directly.
type testDoubles struct {
	phy  *fakePhy
	mac  *fakeMac
	rlc  *fakeRlc
	pdcp *fakePdcp
	nas  *fakeNas
	usim *fakeUsim
	tx   *fakeTx
}

// newTestEngine builds an Engine wired to fresh fakes and a short-timer
// config suitable for tests that need real expiry (a few milliseconds
// rather than 3GPP-realistic seconds).
func newTestEngine() (*Engine, *testDoubles) {
	d := &testDoubles{
		phy:  &fakePhy{},
		mac:  &fakeMac{},
		rlc:  &fakeRlc{},
		pdcp: &fakePdcp{},
		nas:  &fakeNas{attached: true},
		usim: &fakeUsim{},
		tx:   &fakeTx{},
	}
	cfg := Config{
		T300Default:           20 * time.Millisecond,
		T301Default:           20 * time.Millisecond,
		T302Default:           20 * time.Millisecond,
		T304Default:           20 * time.Millisecond,
		T310Default:           20 * time.Millisecond,
		T311Default:           20 * time.Millisecond,
		SIBSearchTimeout:      20 * time.Millisecond,
		CellReselectionPeriod: 20 * time.Millisecond,
		RlcFlushTimeout:       20 * time.Millisecond,
		MaxFoundPlmns:         6,
		SIB1PeriodicityTTI:    20,
		RequiredSibs:          []uint32{0, 1, 2},
	}
	e := New("001010000000001", cfg, Collaborators{
		Phy: d.phy, Mac: d.mac, Rlc: d.rlc, Pdcp: d.pdcp, Nas: d.nas, Usim: d.usim, Tx: d.tx,
	})
	return e, d
}

// waitUntil polls cond, ticking the engine each pass, until cond is true or
// timeout elapses (used to observe real-timer expiries deterministically
// without a fixed sleep race).
func waitUntil(e *Engine, timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		e.Tick()
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return cond()
		}
		time.Sleep(time.Millisecond)
	}
}

// fullCell builds a cell with SIB1/2/3 already acquired, scheduling SIB2 in
// schedInfoList[0] and SIB3 in schedInfoList[1] as a typical cell would.
func fullCell(phy measure.PhyCell) *measure.Cell {
	c := measure.NewCell(phy)
	c.Rsrp = -80
	c.Sib1 = &models.Sib1{
		PlmnList:       []models.PlmnId{{Mcc: "001", Mnc: "01"}},
		Tac:            "0001",
		SIWindowLength: 10,
		SchedInfoList: []sched.SchedInfo{
			{SIPeriodicity: 16, SibMapping: []uint32{2}},
			{SIPeriodicity: 32, SibMapping: []uint32{3}},
		},
	}
	c.Sib2 = &models.Sib2{T300Ms: 1000, T301Ms: 1000, T310Ms: 1000, T311Ms: 10000}
	c.Sib3 = &models.Sib3{ReselCfg: models.CellReselectionConfig{QRxLevMin: -110, QRxLevMinOffset: 0}}
	return c
}
