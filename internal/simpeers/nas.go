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
	"sync"
	"time"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/collab"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/models"
	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/procman"
)

// NasSim implements collab.Nas. Unlike PHY/MAC it does not round-trip
// through the gitc command bus: NAS sits above RRC in the real stack and
// its "asynchronous" completions here are simulated with a short delay
// followed by a direct trigger on the bound engine, which is exactly
// what procman.Engine.Trigger exists to accept from any goroutine.
type NasSim struct {
	imsi string
	eng  *procman.Engine

	mu       sync.Mutex
	attached bool
}

func newNasSim(imsi string) *NasSim {
	return &NasSim{imsi: imsi, attached: true}
}

func (n *NasSim) PlmnSearchCompleted(found []collab.PlmnTac, success bool) {
	log.Printf("[%s] nas: plmn search completed, success=%v found=%d", n.imsi, success, len(found))
}

func (n *NasSim) Paging(sTmsi models.STmsi) bool {
	if n.eng != nil {
		time.AfterFunc(10*time.Millisecond, func() {
			n.eng.Trigger(collab.NasPagingCompleteEvent{})
		})
	}
	return true
}

func (n *NasSim) ConnectionRequestCompleted(ok bool) {
	log.Printf("[%s] nas: connection request completed ok=%v", n.imsi, ok)
}

func (n *NasSim) SetBarring(kind models.BarringKind) {
	log.Printf("[%s] nas: barring set kind=%s", n.imsi, kind)
}

func (n *NasSim) IsAttached() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.attached
}

func (n *NasSim) SetAttached(v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attached = v
}
