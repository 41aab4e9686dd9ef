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

// Package phyctrl is the PHY controller facade (spec component E): the
// one place RRC procedures reach PHY through, keeping collab.Phy itself
// free of any procman dependency. Its asynchronous cell-search/
// cell-select completions still arrive as procman.Engine triggers, but
// posted by whoever drives the concrete PHY (internal/simpeers' PhySim,
// for the simulated peer), not by this facade.
package phyctrl

import (
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/procman"
)

// Controller wraps a collab.Phy. It stores a procman.Engine reference,
// but no Controller method uses it: completions are triggered on the
// engine by whoever drives the concrete PHY.
type Controller struct {
	phy    collab.Phy
	engine *procman.Engine
}

// New creates a Controller bound to phy and engine.
func New(phy collab.Phy, engine *procman.Engine) *Controller {
	return &Controller{phy: phy, engine: engine}
}

// StartCellSearch requests a cell search under the given subscriber name
// (matches spec's `start_cell_search(subscriber)`). The subscriber name
// is opaque to PHY; it exists so a real implementation can route the
// async result. This facade only forwards the call; the result arrives
// as a procman.Engine trigger posted by the PHY driver, and subscriber is
// passed through unchanged.
func (c *Controller) StartCellSearch(subscriber string) bool {
	return c.phy.StartCellSearch(subscriber)
}

// StartCellSelect requests a cell select for cell.
func (c *Controller) StartCellSelect(cell collab.PhyCellRef, subscriber string) bool {
	return c.phy.StartCellSelect(cell, subscriber)
}

// CellIsCamping reports PHY's current camping status.
func (c *Controller) CellIsCamping() bool { return c.phy.CellIsCamping() }

// IsInSync reports PHY's current sync status.
func (c *Controller) IsInSync() bool { return c.phy.IsInSync() }

// Reset resets PHY to defaults.
func (c *Controller) Reset() { c.phy.Reset() }
