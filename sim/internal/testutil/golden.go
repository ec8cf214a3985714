// Package testutil provides shared test infrastructure for the packet simulator.
// It holds the golden dataset types and assertion helpers used by sim tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is a single two-host scenario: one link, one flow starting at t=0.
type GoldenTestCase struct {
	Name        string        `json:"name"`
	Algorithm   string        `json:"algorithm"`
	Rate        float64       `json:"rate"` // bytes per second
	DelayMs     int64         `json:"delay_ms"`
	BufferBytes int64         `json:"buffer_bytes"`
	FlowBytes   int64         `json:"flow_bytes"`
	Metrics     GoldenMetrics `json:"metrics"`
}

// GoldenMetrics represents the expected outcome of a golden test case.
type GoldenMetrics struct {
	// Exact match metrics
	CompletedAtMs int64 `json:"completed_at_ms"`
	PacketsSent   int   `json:"packets_sent"`
	AcksReceived  int   `json:"acks_received"`
	Drops         int   `json:"drops"`

	// Derived from the simulation clock
	MeanRTTMs float64 `json:"mean_rtt_ms"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
