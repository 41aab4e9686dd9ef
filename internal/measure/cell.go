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

// Package measure holds the collection of observed cells (measured RSRP,
// acquired SIBs, serving-cell designation) that most RRC procedures read
// or mutate. Per design note "shared serving cell", the store is a
// mutable singleton bound to the task-loop goroutine: no internal
// locking. Callers on other goroutines (a PHY measurement report
// arriving asynchronously) must marshal through the same task loop the
// RRC engine runs on, exactly as the procedure handlers do.
package measure

import (
	"math"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/models"
)

// PhyCell identifies a cell the way PHY reports it: physical cell id plus
// carrier frequency.
type PhyCell struct {
	Pci    uint16
	Earfcn uint32
}

// Cell is a measured cell: everything the RRC layer has learned about one
// physical cell, keyed by its PhyCell identity.
type Cell struct {
	Phy  PhyCell
	Rsrp float64 // dBm; NaN until a measurement arrives

	Sib1  *models.Sib1
	Sib2  *models.Sib2
	Sib3  *models.Sib3
	Sib13 *models.Sib13

	HasMcch bool
}

// NewCell creates a cell with no measurement yet (RSRP = NaN, per spec
// "may be NaN until a measurement arrives").
func NewCell(phy PhyCell) *Cell {
	return &Cell{Phy: phy, Rsrp: math.NaN()}
}

// HasNormalRsrp reports whether the cell has a usable measurement, using
// the spec's is_normal semantics: NaN, ±Inf and (rare in float64 RSRP
// values, but checked for completeness) subnormal numbers all mean "not
// yet measured".
func (c *Cell) HasNormalRsrp() bool {
	return isNormal(c.Rsrp)
}

func isNormal(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	if f == 0 {
		return false
	}
	// math.Float64bits exponent field all-zero => subnormal.
	bits := math.Float64bits(f)
	exp := (bits >> 52) & 0x7FF
	return exp != 0
}

// HasSib reports whether the given 0-based SIB index has been acquired.
// idx==0 is SIB1, idx==1 is SIB2, idx==2 is SIB3, idx==12 is SIB13.
func (c *Cell) HasSib(idx uint32) bool {
	switch idx {
	case 0:
		return c.Sib1 != nil
	case 1:
		return c.Sib2 != nil
	case 2:
		return c.Sib3 != nil
	case 12:
		return c.Sib13 != nil
	default:
		return false
	}
}

// HasSib1 is a convenience accessor used throughout the procedures.
func (c *Cell) HasSib1() bool { return c.Sib1 != nil }

// IsSibScheduled reports whether idx appears in SIB1's schedInfoList.
// Distinct from HasSib: a SIB can legitimately be scheduled but not yet
// acquired, or (for SIB3+) legitimately absent from the schedule
// entirely.
func (c *Cell) IsSibScheduled(idx uint32) bool {
	if c.Sib1 == nil {
		return false
	}
	if idx < 2 {
		return true // SIB1/SIB2 are always implicitly scheduled
	}
	for _, si := range c.Sib1.SchedInfoList {
		for _, mapped := range si.SibMapping {
			if mapped == idx+1 {
				return true
			}
		}
	}
	return false
}

// MarkBad sets the cell's RSRP to -Inf, the sentinel spec §7 uses for
// "bad cell: mark RSRP = -inf and continue the outer loop rather than
// fail."
func (c *Cell) MarkBad() {
	c.Rsrp = math.Inf(-1)
}
