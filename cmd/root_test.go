package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/packet-sim/packet-sim/sim"
	"github.com/packet-sim/packet-sim/sim/trace"
)

// resetFlags restores every flag of c to its default so package-level flag
// variables do not leak between tests.
func resetFlags(t *testing.T, c *pflag.FlagSet) {
	t.Helper()
	c.VisitAll(func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	})
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	resetFlags(t, runCmd.Flags())
	resetFlags(t, describeCmd.Flags())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestResolveTransport_Defaults(t *testing.T) {
	resetFlags(t, runCmd.Flags())

	transport, err := resolveTransport(runCmd)

	require.NoError(t, err)
	assert.Equal(t, sim.DefaultTransportConfig(), transport)
}

func TestResolveTransport_FlagsOverrideFile(t *testing.T) {
	// GIVEN a transport file selecting FAST with a 500 ms RTO
	resetFlags(t, runCmd.Flags())
	path := filepath.Join(t.TempDir(), "transport.yaml")
	require.NoError(t, os.WriteFile(path, []byte("algorithm: fast\nrto_ms: 500\nhorizon_ms: 60000\n"), 0o644))
	require.NoError(t, runCmd.Flags().Set("transport", path))

	// AND an explicit --rto flag
	require.NoError(t, runCmd.Flags().Set("rto", "250"))

	// WHEN the transport is resolved
	transport, err := resolveTransport(runCmd)
	require.NoError(t, err)

	// THEN the flag beats the file, and the file beats the defaults
	assert.Equal(t, sim.AlgorithmFast, transport.Algorithm)
	assert.Equal(t, int64(250), transport.RetransmitTimeout)
	assert.Equal(t, int64(60000), transport.Horizon)
	assert.Equal(t, sim.DefaultRoutingUpdatePeriod, transport.RoutingUpdatePeriod)
	assert.Equal(t, sim.DefaultFastAlpha, transport.FastAlpha)
}

func TestResolveTransport_InvalidValues(t *testing.T) {
	tests := []struct {
		flag, value string
	}{
		{"cc", "vegas"},
		{"rto", "0"},
		{"routing-period", "-5"},
		{"alpha", "0"},
		{"horizon", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			resetFlags(t, runCmd.Flags())
			require.NoError(t, runCmd.Flags().Set(tt.flag, tt.value))

			_, err := resolveTransport(runCmd)

			assert.Error(t, err)
		})
	}
}

func TestLoadTransportFile_UnknownField_Rejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transport.yaml")
	require.NoError(t, os.WriteFile(path, []byte("algo: fast\n"), 0o644))

	_, err := loadTransportFile(path)

	assert.Error(t, err)
}

func TestTransportFile_Apply_ExplicitZeroWins(t *testing.T) {
	// GIVEN a transport file that sets the horizon to 0 and omits the rest
	path := filepath.Join(t.TempDir(), "transport.yaml")
	require.NoError(t, os.WriteFile(path, []byte("horizon_ms: 0\n"), 0o644))
	file, err := loadTransportFile(path)
	require.NoError(t, err)

	// WHEN applied over a config with a horizon
	cfg := sim.DefaultTransportConfig()
	cfg.Horizon = 5000
	file.apply(&cfg)

	// THEN the file's zero replaces it and omitted fields keep their values
	assert.Equal(t, int64(0), cfg.Horizon)
	assert.Equal(t, sim.DefaultRetransmitTimeout, cfg.RetransmitTimeout)
	assert.Equal(t, sim.AlgorithmReno, cfg.Algorithm)
}

func TestResolveTransport_FileZeroRTO_Rejected(t *testing.T) {
	resetFlags(t, runCmd.Flags())
	path := filepath.Join(t.TempDir(), "transport.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rto_ms: 0\n"), 0o644))
	require.NoError(t, runCmd.Flags().Set("transport", path))

	_, err := resolveTransport(runCmd)

	assert.Error(t, err)
}

func TestLoadCase_RequiresPath(t *testing.T) {
	_, err := loadCase("", 0)
	assert.Error(t, err)

	_, err = loadCase(filepath.Join("..", "testdata", "testcases.json"), 9)
	assert.Error(t, err)
}

func TestDescribe_PrintsTopology(t *testing.T) {
	out := execute(t, "describe", "--testcases", filepath.Join("..", "testdata", "testcases.json"), "--case", "1")

	assert.Contains(t, out, "Test case 1")
	assert.Contains(t, out, "Routers (4):")
	assert.Contains(t, out, "Link L0 [H1 <-> R1]")
	assert.Contains(t, out, "Flow F1 H1 -> H2")
}

func TestRun_SmallCase_PrintsAndWritesSummary(t *testing.T) {
	// GIVEN a two-host test case with a 10 KB flow
	dir := t.TempDir()
	casePath := filepath.Join(dir, "case.yaml")
	require.NoError(t, os.WriteFile(casePath, []byte(`
testcase_num: 3
hosts: [{id: H1}, {id: H2}]
routers: []
links: [{id: L1, endpoints: [H1, H2], rate: 10, delay: 10, buffer: 64}]
flows: [{id: F1, source: H1, destination: H2, amount: 0.01, start: 0}]
`), 0o644))
	summaryPath := filepath.Join(dir, "summary.yaml")
	defer logrus.SetLevel(logrus.GetLevel())

	// WHEN it is run with FAST
	out := execute(t, "run", "--testcases", casePath, "--cc", "fast", "--log", "error", "--summary-out", summaryPath)

	// THEN the results and summary are printed and written
	assert.Contains(t, out, "=== Simulation Results ===")
	assert.Contains(t, out, "=== Trace Summary ===")
	data, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	var summary trace.TraceSummary
	require.NoError(t, yaml.Unmarshal(data, &summary))
	require.Len(t, summary.Flows, 1)
	assert.Equal(t, "F1", summary.Flows[0].FlowID)
	assert.Greater(t, summary.Flows[0].CompletedAt, int64(0))
	assert.GreaterOrEqual(t, summary.Flows[0].PacketsSent, 10)
}
