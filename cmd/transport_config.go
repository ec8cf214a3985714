package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/packet-sim/packet-sim/sim"
)

// TransportFile is the structure of a --transport YAML file.
// Omitted fields keep the built-in defaults; present fields win, zero included.
type TransportFile struct {
	Algorithm           *string  `yaml:"algorithm"`
	RetransmitTimeoutMs *int64   `yaml:"rto_ms"`
	RoutingPeriodMs     *int64   `yaml:"routing_period_ms"`
	FastAlpha           *float64 `yaml:"fast_alpha"`
	HorizonMs           *int64   `yaml:"horizon_ms"`
}

// loadTransportFile parses path with strict field checking so typos fail.
func loadTransportFile(path string) (TransportFile, error) {
	var file TransportFile
	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("reading transport file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return file, fmt.Errorf("parsing transport file %s: %w", path, err)
	}
	return file, nil
}

func (f TransportFile) apply(cfg *sim.TransportConfig) {
	if f.Algorithm != nil {
		cfg.Algorithm = sim.Algorithm(*f.Algorithm)
	}
	if f.RetransmitTimeoutMs != nil {
		cfg.RetransmitTimeout = *f.RetransmitTimeoutMs
	}
	if f.RoutingPeriodMs != nil {
		cfg.RoutingUpdatePeriod = *f.RoutingPeriodMs
	}
	if f.FastAlpha != nil {
		cfg.FastAlpha = *f.FastAlpha
	}
	if f.HorizonMs != nil {
		cfg.Horizon = *f.HorizonMs
	}
}
