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
	"log"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/monitoring"
)

// TxSim implements collab.RrcTx: it has no ASN.1 to encode, so sending a
// message is simply an observable, countable event.
type TxSim struct {
	imsi string
}

func newTxSim(imsi string) *TxSim { return &TxSim{imsi: imsi} }

func (t *TxSim) SendConnectionRequest() {
	monitoring.MessagesSent.WithLabelValues(t.imsi, "RRCConnectionRequest").Inc()
	log.Printf("[%s] tx: RRCConnectionRequest", t.imsi)
}

func (t *TxSim) SendReestablishmentRequest() {
	monitoring.MessagesSent.WithLabelValues(t.imsi, "RRCConnectionReestablishmentRequest").Inc()
	log.Printf("[%s] tx: RRCConnectionReestablishmentRequest", t.imsi)
}

func (t *TxSim) SendReconfigurationComplete() {
	monitoring.MessagesSent.WithLabelValues(t.imsi, "RRCConnectionReconfigurationComplete").Inc()
	log.Printf("[%s] tx: RRCConnectionReconfigurationComplete", t.imsi)
}
