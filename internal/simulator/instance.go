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

package simulator

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/monitoring"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/rrc"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/simpeers"
)

// Instance runs one simulated UE's RRC engine: a peer of simulated
// lower-layer collaborators plus a task-loop goroutine ticking subframes.
type Instance struct {
	SimId  string
	Imsi   string
	Engine *rrc.Engine
	Peer   *simpeers.Peer
	Topo   *simpeers.Topology

	cancel   context.CancelFunc
	stopWalk func()
}

// NewInstance builds and binds a fresh Instance; it does not start
// ticking until Start is called.
func NewInstance(profile *UeProfile) (*Instance, error) {
	imsi := "001010000000001"
	if profile != nil && profile.Imsi != "" {
		imsi = profile.Imsi
	}
	cfg := profile.ToEngineConfig()

	topo := simpeers.NewTopology()
	peer := simpeers.NewPeer(imsi, topo)
	engine := rrc.New(imsi, cfg, peer.Collaborators())
	if err := peer.Bind(engine.Eng); err != nil {
		return nil, err
	}

	return &Instance{
		SimId:  uuid.NewString(),
		Imsi:   imsi,
		Engine: engine,
		Peer:   peer,
		Topo:   topo,
	}, nil
}

// Start begins the subframe task loop (one Tick every millisecond,
// matching TS 36.331's 1ms subframe) and the topology's RSRP walker, and
// kicks off cold-attach cell search.
func (inst *Instance) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	inst.cancel = cancel
	inst.stopWalk = inst.Topo.StartRsrpWalk()

	go func() {
		ticker := time.NewTicker(1 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				inst.Engine.Tick()
				monitoring.RrcStateGauge.WithLabelValues(inst.Imsi, inst.Engine.State.String()).Set(1)
			}
		}
	}()

	inst.Engine.PlmnIsSelected = true
	if !inst.Engine.LaunchCellSearch() {
		log.Printf("[%s] cold attach: cell search already running", inst.Imsi)
	}
}

// Stop cancels the task loop and RSRP walker.
func (inst *Instance) Stop() {
	if inst.cancel != nil {
		inst.cancel()
	}
	if inst.stopWalk != nil {
		inst.stopWalk()
	}
}

// InjectPaging simulates a PCCH Paging reception against this instance's
// engine.
func (inst *Instance) InjectPaging(ev collab.PagingMessageEvent) {
	inst.Peer.DeliverPaging(inst.Engine.Eng, ev)
}

// SetNasAttached flips the simulated NAS layer's EMM attach state, so
// the OAM API can exercise the attached-gated reselection/go-idle
// rescheduling paths without a real NAS stack driving them.
func (inst *Instance) SetNasAttached(attached bool) {
	inst.Peer.Nas.SetAttached(attached)
}
