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

package simpeers

import (
	"testing"
	"time"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
)

func TestTopologyFindLocatesKnownCell(t *testing.T) {
	topo := NewTopology()

	cell := topo.Find(collab.PhyCellRef{Pci: 200, Earfcn: 1850})
	if cell == nil {
		t.Fatalf("expected to find the neighbour cell")
	}
	if cell.Phy.Pci != 200 {
		t.Fatalf("found the wrong cell: %+v", cell.Phy)
	}
}

func TestTopologyFindReturnsNilForUnknownCell(t *testing.T) {
	topo := NewTopology()

	if topo.Find(collab.PhyCellRef{Pci: 999, Earfcn: 1850}) != nil {
		t.Fatalf("expected nil for a PCI/EARFCN not in the topology")
	}
}

func TestTopologyBestOtherThanExcludesServing(t *testing.T) {
	topo := NewTopology()

	best := topo.BestOtherThan(collab.PhyCellRef{Pci: 100, Earfcn: 1850})
	if best == nil {
		t.Fatalf("expected a candidate other than the serving cell")
	}
	if best.Phy.Pci != 200 {
		t.Fatalf("expected the neighbour, got pci=%d", best.Phy.Pci)
	}
}

func TestTopologyBestOtherThanNilWhenOnlyCandidateExcluded(t *testing.T) {
	solo := NewTopology().Cells[0]
	topo := &Topology{Cells: []*SimCell{solo}}

	if best := topo.BestOtherThan(collab.PhyCellRef{Pci: 100, Earfcn: 1850}); best != nil {
		t.Fatalf("expected nil once the only cell is excluded, got %+v", best.Phy)
	}
}

func TestIoTTrafficWithholdsSamplesBetweenHeartbeats(t *testing.T) {
	gen := NewIoTTraffic(2, 10*time.Second)
	base := time.Unix(0, 0)

	if gen.NextSample(base) == nil {
		t.Fatalf("expected a sample on the first call")
	}
	if s := gen.NextSample(base.Add(time.Second)); s != nil {
		t.Fatalf("expected no sample before the heartbeat interval elapses, got %+v", s)
	}
	if gen.NextSample(base.Add(11*time.Second)) == nil {
		t.Fatalf("expected a sample once the heartbeat interval elapses")
	}
}

func TestWebTrafficAppliesShadowDropDuringBurst(t *testing.T) {
	gen := NewWebTraffic(10, 0, 5*time.Second, 5*time.Second)
	base := time.Unix(0, 0)

	burst := gen.NextSample(base)
	if burst == nil || burst.OffsetDb != -10 {
		t.Fatalf("expected the first span to shadow by -10dB, got %+v", burst)
	}
	idle := gen.NextSample(base.Add(6 * time.Second))
	if idle == nil || idle.OffsetDb != 0 {
		t.Fatalf("expected the idle span to clear the shadowing drop, got %+v", idle)
	}
}

func TestTopologyCellsCarryDistinctMeasurementGenerators(t *testing.T) {
	topo := NewTopology()

	serving := topo.Find(collab.PhyCellRef{Pci: 100, Earfcn: 1850})
	if _, ok := serving.gen.(*IoTTraffic); !ok {
		t.Fatalf("expected the serving cell to use a steady IoTTraffic generator, got %T", serving.gen)
	}
	neighbour := topo.Find(collab.PhyCellRef{Pci: 200, Earfcn: 1850})
	if _, ok := neighbour.gen.(*WebTraffic); !ok {
		t.Fatalf("expected the shadowed neighbour to use a bursty WebTraffic generator, got %T", neighbour.gen)
	}
}
