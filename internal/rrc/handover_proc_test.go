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
	"math"
	"testing"
	"time"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/measure"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/models"
)

func TestHandoverErrorsWithoutMobilityInfo(t *testing.T) {
	e, _ := newTestEngine()

	fut, ok := e.handover.Launch(collab.RrcConnectionReconfigurationEvent{})
	if !ok {
		t.Fatalf("launch should succeed")
	}
	if !fut.IsComplete() || !fut.IsError() {
		t.Fatalf("expected immediate error: no mobilityControlInfo")
	}
}

func TestHandoverErrorsOnUnknownTargetCell(t *testing.T) {
	e, _ := newTestEngine()
	srcPhy := measure.PhyCell{Pci: 100, Earfcn: 1850}
	cell := e.Store.SetServingCell(srcPhy, true)
	*cell = *fullCell(srcPhy)

	fut, ok := e.handover.Launch(collab.RrcConnectionReconfigurationEvent{
		MobilityInfo: &models.MobilityControlInfo{TargetPci: 200, TargetEarfcn: 1850, NewCRnti: 0x9001, T304Ms: 20},
	})
	if !ok {
		t.Fatalf("launch should succeed")
	}
	if !fut.IsComplete() || !fut.IsError() {
		t.Fatalf("expected immediate error: target cell never measured")
	}
}

func TestHandoverErrorsOnSamePciTarget(t *testing.T) {
	e, _ := newTestEngine()
	srcPhy := measure.PhyCell{Pci: 100, Earfcn: 1850}
	cell := e.Store.SetServingCell(srcPhy, true)
	*cell = *fullCell(srcPhy)

	fut, ok := e.handover.Launch(collab.RrcConnectionReconfigurationEvent{
		MobilityInfo: &models.MobilityControlInfo{TargetPci: 100, TargetEarfcn: 1850, NewCRnti: 0x9001, T304Ms: 20},
	})
	if !ok {
		t.Fatalf("launch should succeed")
	}
	if !fut.IsComplete() || !fut.IsError() {
		t.Fatalf("expected immediate error: target PCI equals the serving cell's")
	}
}

func TestHandoverHappyPathContentionFree(t *testing.T) {
	e, d := newTestEngine()
	e.State = models.RrcConnected
	e.SecurityActivated = true
	e.CRnti = 0x4601
	srcPhy := measure.PhyCell{Pci: 100, Earfcn: 1850}
	src := e.Store.SetServingCell(srcPhy, true)
	*src = *fullCell(srcPhy)
	targetPhy := measure.PhyCell{Pci: 200, Earfcn: 1850}
	e.Store.AddCell(targetPhy)
	e.T310.Run()

	fut, ok := e.handover.Launch(collab.RrcConnectionReconfigurationEvent{
		MobilityInfo: &models.MobilityControlInfo{
			TargetPci:         200,
			TargetEarfcn:      1850,
			NewCRnti:          0x9001,
			T304Ms:            20,
			RachCfgDedPresent: true,
			PreambleIndex:     5,
			MaskIndex:         1,
		},
	})
	if !ok {
		t.Fatalf("launch should succeed")
	}
	if e.T310.IsRunning() {
		t.Fatalf("expected T310 stopped on handover entry")
	}
	if !e.T304.IsRunning() {
		t.Fatalf("expected T304 armed on handover entry")
	}
	if d.pdcp.reestablishCalls == 0 || d.rlc.reestablishCalls == 0 {
		t.Fatalf("expected PDCP/RLC reestablished for handover")
	}
	if len(d.phy.selectCalls) != 1 || d.phy.selectCalls[0].Pci != 200 {
		t.Fatalf("expected PHY cell select toward the target cell")
	}

	e.Eng.Trigger(collab.CellSelectResultEvent{Ok: true})
	e.Tick()

	if e.CRnti != 0x9001 {
		t.Fatalf("expected C-RNTI updated to the handover command's new value")
	}
	if len(d.mac.nonContHo) != 1 {
		t.Fatalf("expected non-contention RA started (RachCfgDedPresent set)")
	}
	if d.tx.reconfigCompleteCalls != 1 {
		t.Fatalf("expected RRCConnectionReconfigurationComplete sent")
	}
	if fut.IsComplete() {
		t.Fatalf("should still be waiting on random access to finish")
	}

	e.Eng.Trigger(collab.RaCompletedEvent{Outcome: collab.RaSuccess})
	e.Tick()

	if !fut.IsComplete() || fut.IsError() {
		t.Fatalf("expected success once random access completes")
	}
	if e.T304.IsRunning() {
		t.Fatalf("expected T304 stopped on success")
	}
}

func TestHandoverContentionBasedRaOnMissingDedicatedConfig(t *testing.T) {
	e, d := newTestEngine()
	srcPhy := measure.PhyCell{Pci: 100, Earfcn: 1850}
	src := e.Store.SetServingCell(srcPhy, true)
	*src = *fullCell(srcPhy)
	targetPhy := measure.PhyCell{Pci: 200, Earfcn: 1850}
	e.Store.AddCell(targetPhy)

	e.handover.Launch(collab.RrcConnectionReconfigurationEvent{
		MobilityInfo: &models.MobilityControlInfo{TargetPci: 200, TargetEarfcn: 1850, NewCRnti: 0x9001, T304Ms: 20},
	})
	e.Eng.Trigger(collab.CellSelectResultEvent{Ok: true})
	e.Tick()

	if d.mac.contHoCalls != 1 {
		t.Fatalf("expected contention-based RA when no dedicated RACH config is present")
	}
}

func TestHandoverFailsSelectMarksCellBadWithoutReestablishment(t *testing.T) {
	e, _ := newTestEngine()
	e.State = models.RrcConnected
	e.SecurityActivated = true
	e.CRnti = 0x4601
	srcPhy := measure.PhyCell{Pci: 100, Earfcn: 1850}
	src := e.Store.SetServingCell(srcPhy, true)
	*src = *fullCell(srcPhy)
	targetPhy := measure.PhyCell{Pci: 200, Earfcn: 1850}
	target := e.Store.AddCell(targetPhy)

	fut, _ := e.handover.Launch(collab.RrcConnectionReconfigurationEvent{
		MobilityInfo: &models.MobilityControlInfo{TargetPci: 200, TargetEarfcn: 1850, NewCRnti: 0x9001, T304Ms: 20},
	})

	e.Eng.Trigger(collab.CellSelectResultEvent{Ok: false})
	e.Tick()

	if !fut.IsComplete() || !fut.IsError() {
		t.Fatalf("expected error when cell select toward the target fails")
	}
	if !math.IsInf(target.Rsrp, -1) {
		t.Fatalf("expected the target cell marked bad")
	}
	if _, running := e.reestablishment.CurrentFuture(); running {
		t.Fatalf("a plain select failure should not trigger reestablishment (only T304 expiry does)")
	}
}

func TestHandoverRaFailureLeavesT304RunningWithoutReestablishment(t *testing.T) {
	e, _ := newTestEngine()
	e.State = models.RrcConnected
	e.SecurityActivated = true
	e.CRnti = 0x4601
	srcPhy := measure.PhyCell{Pci: 100, Earfcn: 1850}
	src := e.Store.SetServingCell(srcPhy, true)
	*src = *fullCell(srcPhy)
	targetPhy := measure.PhyCell{Pci: 200, Earfcn: 1850}
	e.Store.AddCell(targetPhy)

	fut, _ := e.handover.Launch(collab.RrcConnectionReconfigurationEvent{
		MobilityInfo: &models.MobilityControlInfo{
			TargetPci:         200,
			TargetEarfcn:      1850,
			NewCRnti:          0x9001,
			T304Ms:            5000,
			RachCfgDedPresent: true,
			PreambleIndex:     5,
			MaskIndex:         1,
		},
	})

	e.Eng.Trigger(collab.CellSelectResultEvent{Ok: true})
	e.Tick()
	e.Eng.Trigger(collab.RaCompletedEvent{Outcome: collab.RaFailure})
	e.Tick()

	if !fut.IsComplete() || !fut.IsError() {
		t.Fatalf("expected error completion on RA failure")
	}
	if !e.T304.IsRunning() {
		t.Fatalf("a plain RA failure should leave T304 running so it can expire naturally")
	}
	if _, running := e.reestablishment.CurrentFuture(); running {
		t.Fatalf("a plain RA failure should not itself launch reestablishment (only T304 expiry does)")
	}
}

func TestHandoverT304ExpiryAfterRaFailureStillTriggersReestablishment(t *testing.T) {
	e, _ := newTestEngine()
	e.State = models.RrcConnected
	e.SecurityActivated = true
	e.CRnti = 0x4601
	srcPhy := measure.PhyCell{Pci: 100, Earfcn: 1850}
	src := e.Store.SetServingCell(srcPhy, true)
	*src = *fullCell(srcPhy)
	targetPhy := measure.PhyCell{Pci: 200, Earfcn: 1850}
	e.Store.AddCell(targetPhy)

	fut, _ := e.handover.Launch(collab.RrcConnectionReconfigurationEvent{
		MobilityInfo: &models.MobilityControlInfo{
			TargetPci:         200,
			TargetEarfcn:      1850,
			NewCRnti:          0x9001,
			T304Ms:            20,
			RachCfgDedPresent: true,
			PreambleIndex:     5,
			MaskIndex:         1,
		},
	})

	e.Eng.Trigger(collab.CellSelectResultEvent{Ok: true})
	e.Tick()
	e.Eng.Trigger(collab.RaCompletedEvent{Outcome: collab.RaFailure})
	e.Tick()

	if !fut.IsComplete() || !fut.IsError() {
		t.Fatalf("expected error completion on RA failure")
	}
	if _, running := e.handover.CurrentFuture(); running {
		t.Fatalf("handover's own runner should be idle after the RA failure settles it")
	}

	// The handover runner has already gone idle above, so its own React/Then
	// will never see the TimerExpiredEvent T304's real expiry produces.
	// Only Engine.Tick's hoAwaitingT304 watch should be able to notice it.
	if !waitUntil(e, 500*time.Millisecond, func() bool {
		_, running := e.reestablishment.CurrentFuture()
		return running
	}) {
		t.Fatalf("expected T304's real expiry, after handover's runner had already gone idle, to still launch reestablishment")
	}
}

func TestHandoverT304ExpiryTriggersReestablishment(t *testing.T) {
	e, _ := newTestEngine()
	e.State = models.RrcConnected
	e.SecurityActivated = true
	e.CRnti = 0x4601
	srcPhy := measure.PhyCell{Pci: 100, Earfcn: 1850}
	src := e.Store.SetServingCell(srcPhy, true)
	*src = *fullCell(srcPhy)
	targetPhy := measure.PhyCell{Pci: 200, Earfcn: 1850}
	e.Store.AddCell(targetPhy)

	fut, _ := e.handover.Launch(collab.RrcConnectionReconfigurationEvent{
		MobilityInfo: &models.MobilityControlInfo{TargetPci: 200, TargetEarfcn: 1850, NewCRnti: 0x9001, T304Ms: 20},
	})

	if !waitUntil(e, 500*time.Millisecond, fut.IsComplete) {
		t.Fatalf("expected handover to give up once T304 expires")
	}
	if !fut.IsError() {
		t.Fatalf("expected error completion on T304 timeout")
	}
	if _, running := e.reestablishment.CurrentFuture(); !running {
		t.Fatalf("expected reestablishment launched from handover's Then hook on T304 expiry")
	}
}
