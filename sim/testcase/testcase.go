// Package testcase loads network test cases and converts them into
// sim.NetworkConfig values.
//
// A test-case file is YAML or JSON (JSON is valid YAML) holding either one
// test case or a list of them. Quantities use the units of the reference
// course tooling: link rate in Mbps, delay in ms, buffer in KB, flow amount
// in MB and flow start in seconds.
package testcase

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/packet-sim/packet-sim/sim"
)

// Unit conversions applied by ToNetworkConfig.
const (
	BytesPerKilobyte = 1024
	BytesPerMegabyte = 1048576
	BytesPerMegabit  = 131072
	MillisPerSecond  = 1000
)

// TestCase describes one network and its flows.
type TestCase struct {
	Number  int          `yaml:"testcase_num"`
	Hosts   []DeviceSpec `yaml:"hosts"`
	Routers []DeviceSpec `yaml:"routers"`
	Links   []LinkSpec   `yaml:"links"`
	Flows   []FlowSpec   `yaml:"flows"`
}

// DeviceSpec names a host or router.
type DeviceSpec struct {
	ID string `yaml:"id"`
}

// LinkSpec describes a link.
type LinkSpec struct {
	ID        string   `yaml:"id"`
	Endpoints []string `yaml:"endpoints"`
	Rate      float64  `yaml:"rate"`   // Mbps
	Delay     float64  `yaml:"delay"`  // ms
	Buffer    float64  `yaml:"buffer"` // KB
}

// FlowSpec describes a flow.
type FlowSpec struct {
	ID          string  `yaml:"id"`
	Source      string  `yaml:"source"`
	Destination string  `yaml:"destination"`
	Amount      float64 `yaml:"amount"` // MB
	Start       float64 `yaml:"start"`  // seconds
}

// Load reads every test case in path.
func Load(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading test cases: %w", err)
	}
	cases, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing test cases %s: %w", path, err)
	}
	return cases, nil
}

// Parse decodes a single test case or a list of test cases.
// Unknown fields are rejected.
func Parse(data []byte) ([]TestCase, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("empty test case document")
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	switch root.Content[0].Kind {
	case yaml.SequenceNode:
		var cases []TestCase
		if err := decoder.Decode(&cases); err != nil {
			return nil, err
		}
		return cases, nil
	case yaml.MappingNode:
		var tc TestCase
		if err := decoder.Decode(&tc); err != nil {
			return nil, err
		}
		return []TestCase{tc}, nil
	default:
		return nil, fmt.Errorf("test case document must be a mapping or a list")
	}
}

// Select returns the test case at index, the position in the file.
func Select(cases []TestCase, index int) (*TestCase, error) {
	if index < 0 || index >= len(cases) {
		return nil, fmt.Errorf("test case %d out of range (file has %d)", index, len(cases))
	}
	return &cases[index], nil
}

// ToNetworkConfig converts the test case into simulator units.
// Call Validate first; conversion does not check consistency.
func (tc *TestCase) ToNetworkConfig() sim.NetworkConfig {
	net := sim.NetworkConfig{
		Hosts:   make([]sim.HostConfig, 0, len(tc.Hosts)),
		Routers: make([]sim.RouterConfig, 0, len(tc.Routers)),
		Links:   make([]sim.LinkConfig, 0, len(tc.Links)),
		Flows:   make([]sim.FlowConfig, 0, len(tc.Flows)),
	}
	for _, h := range tc.Hosts {
		net.Hosts = append(net.Hosts, sim.HostConfig{ID: h.ID})
	}
	for _, r := range tc.Routers {
		net.Routers = append(net.Routers, sim.RouterConfig{ID: r.ID})
	}
	for _, l := range tc.Links {
		lc := sim.LinkConfig{
			ID:          l.ID,
			Rate:        l.Rate * BytesPerMegabit,
			Delay:       int64(math.Round(l.Delay)),
			BufferBytes: int64(math.Round(l.Buffer * BytesPerKilobyte)),
		}
		if len(l.Endpoints) == 2 {
			lc.EndpointA, lc.EndpointB = l.Endpoints[0], l.Endpoints[1]
		}
		net.Links = append(net.Links, lc)
	}
	for _, f := range tc.Flows {
		net.Flows = append(net.Flows, sim.FlowConfig{
			ID:          f.ID,
			Source:      f.Source,
			Destination: f.Destination,
			Bytes:       int64(math.Round(f.Amount * BytesPerMegabyte)),
			StartTime:   int64(math.Round(f.Start * MillisPerSecond)),
		})
	}
	return net
}
