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
	"testing"
	"time"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/rrc"
)

func TestNilProfileYieldsDefaultConfig(t *testing.T) {
	var p *UeProfile

	got := p.ToEngineConfig()
	want := rrc.DefaultConfig()

	if got.T300Default != want.T300Default || got.MaxFoundPlmns != want.MaxFoundPlmns {
		t.Fatalf("expected a nil profile to fall back to rrc.DefaultConfig, got %+v", got)
	}
}

func TestZeroFieldsLeaveDefaultsInPlace(t *testing.T) {
	p := &UeProfile{Imsi: "001010000000001", T300Ms: 500}

	cfg := p.ToEngineConfig()
	want := rrc.DefaultConfig()

	if cfg.T300Default != 500*time.Millisecond {
		t.Fatalf("expected T300 overlaid to 500ms, got %v", cfg.T300Default)
	}
	if cfg.T301Default != want.T301Default {
		t.Fatalf("expected T301 left at its default, got %v", cfg.T301Default)
	}
	if cfg.MaxFoundPlmns != want.MaxFoundPlmns {
		t.Fatalf("expected MaxFoundPlmns left at its default, got %d", cfg.MaxFoundPlmns)
	}
}

func TestEveryFieldOverlaysOntoDefaults(t *testing.T) {
	p := &UeProfile{
		Imsi:               "001010000000001",
		T300Ms:             111,
		T301Ms:             222,
		T302Ms:             333,
		T304Ms:             444,
		T310Ms:             555,
		T311Ms:             666,
		SibSearchTimeoutMs: 777,
		CellReselectionMs:  888,
		RlcFlushTimeoutMs:  999,
		MaxFoundPlmns:      3,
	}

	cfg := p.ToEngineConfig()

	cases := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"T300", cfg.T300Default, 111 * time.Millisecond},
		{"T301", cfg.T301Default, 222 * time.Millisecond},
		{"T302", cfg.T302Default, 333 * time.Millisecond},
		{"T304", cfg.T304Default, 444 * time.Millisecond},
		{"T310", cfg.T310Default, 555 * time.Millisecond},
		{"T311", cfg.T311Default, 666 * time.Millisecond},
		{"SIBSearchTimeout", cfg.SIBSearchTimeout, 777 * time.Millisecond},
		{"CellReselectionPeriod", cfg.CellReselectionPeriod, 888 * time.Millisecond},
		{"RlcFlushTimeout", cfg.RlcFlushTimeout, 999 * time.Millisecond},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
	if cfg.MaxFoundPlmns != 3 {
		t.Fatalf("expected MaxFoundPlmns overlaid to 3, got %d", cfg.MaxFoundPlmns)
	}
}
