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
	"github.com/giuliocarot0/gitc"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/procman"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/rrc"
)

// Peer bundles one UE's simulated PHY/MAC/RLC/PDCP/NAS/USIM/RrcTx
// collaborators, the set the spec's core engine treats as external.
type Peer struct {
	Imsi string
	Topo *Topology

	Phy  *PhySim
	Mac  *MacSim
	Rlc  *RlcSim
	Pdcp *PdcpSim
	Nas  *NasSim
	Usim *UsimSim
	Tx   *TxSim
}

// NewPeer creates a Peer over the given shared topology.
func NewPeer(imsi string, topo *Topology) *Peer {
	return &Peer{
		Imsi: imsi,
		Topo: topo,
		Phy:  newPhySim(imsi, topo),
		Mac:  newMacSim(imsi, topo),
		Rlc:  newRlcSim(),
		Pdcp: newPdcpSim(),
		Nas:  newNasSim(imsi),
		Usim: newUsimSim(),
		Tx:   newTxSim(imsi),
	}
}

// Collaborators adapts the peer into the bundle rrc.New expects.
func (p *Peer) Collaborators() rrc.Collaborators {
	return rrc.Collaborators{
		Phy:  p.Phy,
		Mac:  p.Mac,
		Rlc:  p.Rlc,
		Pdcp: p.Pdcp,
		Nas:  p.Nas,
		Usim: p.Usim,
		Tx:   p.Tx,
	}
}

// Bind wires the RRC engine's trigger sink into the simulated lower
// layers and starts the two gitc tasks carrying command/result traffic
// between them, following the AMF/SMF StartTask-plus-type-switch pattern.
// Must be called once, after the rrc.Engine built from Collaborators()
// exists.
func (p *Peer) Bind(eng *procman.Engine) error {
	p.Phy.eng = eng
	p.Mac.eng = eng
	p.Nas.eng = eng

	if err := gitc.StartTask(rrcTaskName(p.Imsi), func(msg gitc.Message) {
		switch msg.Type {
		case CellSearchResultType:
			eng.Trigger(msg.Payload.(collab.CellSearchResultEvent))
		case CellSelectResultType:
			eng.Trigger(msg.Payload.(collab.CellSelectResultEvent))
		case SibReceivedType:
			eng.Trigger(msg.Payload.(collab.SibReceivedEvent))
		case RaCompletedType:
			eng.Trigger(msg.Payload.(collab.RaCompletedEvent))
		case PagingMessageType:
			eng.Trigger(msg.Payload.(collab.PagingMessageEvent))
		}
	}, 256); err != nil {
		return err
	}

	return gitc.StartTask(lowerTaskName(p.Imsi), func(msg gitc.Message) {
		switch msg.Type {
		case CellSearchCmdType:
			p.Phy.handleCellSearch(msg.Payload.(cellSearchCmd))
		case CellSelectCmdType:
			p.Phy.handleCellSelect(msg.Payload.(cellSelectCmd))
		case BcchStartRxCmdType:
			p.Mac.handleBcchStartRx(msg.Payload.(bcchStartRxCmd))
		}
	}, 256)
}

// DeliverPaging injects a simulated PCCH Paging message onto the bound
// engine, standing in for a real MAC's asynchronous PCCH reception.
func (p *Peer) DeliverPaging(eng *procman.Engine, ev collab.PagingMessageEvent) {
	eng.Trigger(ev)
}
