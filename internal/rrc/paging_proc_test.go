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
	"testing"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/measure"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/models"
)

func TestPagingIgnoresNonMatchingRecords(t *testing.T) {
	e, d := newTestEngine()
	e.UeIdentity = models.STmsi{Mmec: 1, MTmsi: 42, Valid: true}

	fut, ok := e.paging.Launch(collab.PagingMessageEvent{
		Records: []collab.PagingRecord{{STmsi: models.STmsi{Mmec: 9, MTmsi: 99, Valid: true}}},
	})
	if !ok {
		t.Fatalf("launch should succeed")
	}
	if !fut.IsComplete() || fut.IsError() {
		t.Fatalf("expected success walking past a non-matching record")
	}
	if len(d.nas.pagingCalls) != 0 {
		t.Fatalf("NAS should not be paged for a non-matching S-TMSI")
	}
}

func TestPagingDispatchesMatchingRecordToNas(t *testing.T) {
	e, d := newTestEngine()
	e.UeIdentity = models.STmsi{Mmec: 1, MTmsi: 42, Valid: true}

	fut, ok := e.paging.Launch(collab.PagingMessageEvent{
		Records: []collab.PagingRecord{{STmsi: e.UeIdentity}},
	})
	if !ok {
		t.Fatalf("launch should succeed")
	}
	if fut.IsComplete() {
		t.Fatalf("should be waiting on NAS to finish handling the page")
	}
	if len(d.nas.pagingCalls) != 1 {
		t.Fatalf("expected exactly one NAS.Paging call")
	}

	e.Eng.Trigger(collab.NasPagingCompleteEvent{})
	e.Tick()

	if !fut.IsComplete() || fut.IsError() {
		t.Fatalf("expected success once NAS finishes handling the page")
	}
}

func TestPagingSysInfoModifiedReconfiguresServingCell(t *testing.T) {
	e, _ := newTestEngine()
	phy := measure.PhyCell{Pci: 100, Earfcn: 1850}
	cell := e.Store.SetServingCell(phy, true)
	*cell = *fullCell(phy)
	full := fullCell(phy)

	fut, ok := e.paging.Launch(collab.PagingMessageEvent{SysInfoModPresent: true})
	if !ok {
		t.Fatalf("launch should succeed")
	}
	if cell.Sib1 != nil {
		t.Fatalf("expected SIBs invalidated on sysInfoModification")
	}

	cell.Sib1 = full.Sib1
	e.Eng.Trigger(collab.SibReceivedEvent{SibIndex: 0})
	e.Tick()

	cell.Sib2 = full.Sib2
	e.Eng.Trigger(collab.SibReceivedEvent{SibIndex: 1})
	e.Tick()

	cell.Sib3 = full.Sib3
	e.Eng.Trigger(collab.SibReceivedEvent{SibIndex: 2})
	e.Tick()

	if !fut.IsComplete() || fut.IsError() {
		t.Fatalf("expected success once serving_cell_config re-acquires SIBs")
	}
}
