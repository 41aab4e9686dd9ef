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
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"gitlab.eurecom.fr/open-exposure/rrc-engine/ue-rrc-sim/internal/rrc"
)

// AppConfig is the OAM process's own configuration: which ports it
// listens on and, optionally, a UE profile to bring up immediately.
type AppConfig struct {
	OamPort       uint16     `yaml:"oamPort"`
	MetricsPort   uint16     `yaml:"metricsPort"`
	InitOnStartup bool       `yaml:"initOnStartup"`
	UeProfile     *UeProfile `yaml:"ueProfile"`
}

// UeProfile is the JSON/YAML-facing configuration for one simulated UE's
// RRC engine; time durations are expressed in milliseconds since
// gopkg.in/yaml.v3 has no native time.Duration support.
type UeProfile struct {
	Imsi               string `yaml:"imsi" json:"imsi"`
	T300Ms             uint32 `yaml:"t300Ms" json:"t300Ms"`
	T301Ms             uint32 `yaml:"t301Ms" json:"t301Ms"`
	T302Ms             uint32 `yaml:"t302Ms" json:"t302Ms"`
	T304Ms             uint32 `yaml:"t304Ms" json:"t304Ms"`
	T310Ms             uint32 `yaml:"t310Ms" json:"t310Ms"`
	T311Ms             uint32 `yaml:"t311Ms" json:"t311Ms"`
	SibSearchTimeoutMs uint32 `yaml:"sibSearchTimeoutMs" json:"sibSearchTimeoutMs"`
	CellReselectionMs  uint32 `yaml:"cellReselectionMs" json:"cellReselectionMs"`
	RlcFlushTimeoutMs  uint32 `yaml:"rlcFlushTimeoutMs" json:"rlcFlushTimeoutMs"`
	MaxFoundPlmns      int    `yaml:"maxFoundPlmns" json:"maxFoundPlmns"`
}

// ToEngineConfig overlays non-zero fields onto rrc.DefaultConfig, the way
// a partially-specified simulation profile should behave.
func (p *UeProfile) ToEngineConfig() rrc.Config {
	cfg := rrc.DefaultConfig()
	if p == nil {
		return cfg
	}
	if p.T300Ms > 0 {
		cfg.T300Default = time.Duration(p.T300Ms) * time.Millisecond
	}
	if p.T301Ms > 0 {
		cfg.T301Default = time.Duration(p.T301Ms) * time.Millisecond
	}
	if p.T302Ms > 0 {
		cfg.T302Default = time.Duration(p.T302Ms) * time.Millisecond
	}
	if p.T304Ms > 0 {
		cfg.T304Default = time.Duration(p.T304Ms) * time.Millisecond
	}
	if p.T310Ms > 0 {
		cfg.T310Default = time.Duration(p.T310Ms) * time.Millisecond
	}
	if p.T311Ms > 0 {
		cfg.T311Default = time.Duration(p.T311Ms) * time.Millisecond
	}
	if p.SibSearchTimeoutMs > 0 {
		cfg.SIBSearchTimeout = time.Duration(p.SibSearchTimeoutMs) * time.Millisecond
	}
	if p.CellReselectionMs > 0 {
		cfg.CellReselectionPeriod = time.Duration(p.CellReselectionMs) * time.Millisecond
	}
	if p.RlcFlushTimeoutMs > 0 {
		cfg.RlcFlushTimeout = time.Duration(p.RlcFlushTimeoutMs) * time.Millisecond
	}
	if p.MaxFoundPlmns > 0 {
		cfg.MaxFoundPlmns = p.MaxFoundPlmns
	}
	return cfg
}

// InitConfig loads an AppConfig from a YAML file, failing fast the way
// the core simulator does on a malformed or missing config.
func InitConfig(configPath string) *AppConfig {
	yamlFile, err := os.ReadFile(configPath)
	if err != nil {
		log.Fatalf("cannot read config file: %v", err)
	}

	cfg := AppConfig{OamPort: 8081, MetricsPort: 9090}
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		log.Fatalf("error: %v", err)
	}

	if cfg.InitOnStartup && cfg.UeProfile == nil {
		log.Fatalf("error: when initializing from startup, ueProfile must be defined in config file")
	}

	return &cfg
}

// Dumps renders the config back to YAML for startup logging.
func (cfg *AppConfig) Dumps() string {
	d, err := yaml.Marshal(&cfg)
	if err != nil {
		log.Fatalf("error: %v", err)
	}
	return string(d)
}
