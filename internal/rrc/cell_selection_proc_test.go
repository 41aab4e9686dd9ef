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
	"time"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/measure"
)

func TestCellSelectionSameCellFastPath(t *testing.T) {
	e, d := newTestEngine()
	d.phy.inSync = true
	d.phy.camping = true

	fut, ok := e.cellSelection.Launch(nil)
	if !ok {
		t.Fatalf("launch should succeed")
	}
	if !fut.IsComplete() || fut.IsError() {
		t.Fatalf("expected immediate success for the no-neighbours, in-sync fast path")
	}
	if fut.Value() != SameCell {
		t.Fatalf("expected SameCell, got %v", fut.Value())
	}
}

func TestCellSelectionPicksNeighbourAndConfigures(t *testing.T) {
	e, d := newTestEngine()
	neighbourPhy := measure.PhyCell{Pci: 200, Earfcn: 1850}
	e.Store.AddCell(neighbourPhy) // Sib3 nil => criterionS trivially true

	fut, ok := e.cellSelection.Launch(nil)
	if !ok {
		t.Fatalf("launch should succeed")
	}
	if len(d.phy.selectCalls) != 1 || d.phy.selectCalls[0].Pci != 200 {
		t.Fatalf("expected a StartCellSelect against the neighbour, got %+v", d.phy.selectCalls)
	}

	e.Eng.Trigger(collab.CellSelectResultEvent{Ok: true})
	e.Tick()
	if fut.IsComplete() {
		t.Fatalf("should still be waiting on serving_cell_config")
	}

	cell := e.Store.ServingCell()
	if cell == nil || cell.Phy != neighbourPhy {
		t.Fatalf("expected the neighbour promoted to serving cell")
	}
	*cell = *fullCell(neighbourPhy)

	if !waitUntil(e, 500*time.Millisecond, fut.IsComplete) {
		t.Fatalf("expected cell_selection to complete once serving_cell_config settles")
	}
	if fut.IsError() {
		t.Fatalf("expected success once serving_cell_config completes")
	}
	if fut.Value() != ChangedCell {
		t.Fatalf("expected ChangedCell, got %v", fut.Value())
	}
}

func TestCellSelectionFallsBackToCellSearchWithNoCandidates(t *testing.T) {
	e, d := newTestEngine()

	fut, ok := e.cellSelection.Launch(nil)
	if !ok {
		t.Fatalf("launch should succeed")
	}
	if len(d.phy.searchCalls) != 1 {
		t.Fatalf("expected fallback to cell-search with an empty candidate list")
	}

	e.Eng.Trigger(collab.CellSearchResultEvent{Result: collab.CellNotFound})
	e.Tick()

	if !fut.IsComplete() || fut.IsError() {
		t.Fatalf("expected success (no_cell) once the fallback search reports not-found")
	}
	if fut.Value() != NoCell {
		t.Fatalf("expected NoCell, got %v", fut.Value())
	}
}
