package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/packet-sim/packet-sim/sim"
	"github.com/packet-sim/packet-sim/sim/testcase"
	"github.com/packet-sim/packet-sim/sim/trace"
)

var (
	// CLI flags for the network under test
	testcasesPath string // YAML or JSON test-case file
	caseIndex     int    // Position of the test case in the file

	// CLI flags for transport and routing
	transportPath     string  // Optional transport YAML file
	congestionControl string  // Congestion control algorithm
	retransmitTimeout int64   // Fixed RTO (in ms)
	routingPeriod     int64   // Interval between host announcements (in ms)
	fastAlpha         float64 // Additive term of the FAST update
	horizon           int64   // Safety horizon (in ms), 0 disables it

	// CLI flags for output
	logLevel   string // Log verbosity level
	traceLevel string // Trace verbosity level
	summaryOut string // Path for the YAML summary
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "packet-sim",
	Short: "Discrete-event simulator for packet networks",
}

// runCmd simulates one test case until every flow completes
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the network simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level %q, expected none, flows or all", traceLevel)
		}

		tc, err := loadCase(testcasesPath, caseIndex)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		transport, err := resolveTransport(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Starting test case %d with %s, rto=%dms, routing period=%dms, horizon=%dms",
			tc.Number, transport.Algorithm, transport.RetransmitTimeout, transport.RoutingUpdatePeriod, transport.Horizon)

		traceRecorder := sim.NewTraceRecorder(trace.TraceConfig{Level: trace.TraceLevel(traceLevel)})
		s, err := sim.NewSimulator(tc.ToNetworkConfig(), transport, sim.MultiRecorder{sim.NewLogRecorder(), traceRecorder})
		if err != nil {
			logrus.Fatalf("Invalid network: %v", err)
		}

		startTime := time.Now()
		if err := s.Run(); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		summary := trace.Summarize(traceRecorder.Trace)
		if err := printResults(cmd.OutOrStdout(), s, summary, time.Since(startTime)); err != nil {
			logrus.Fatalf("Unable to print results: %v", err)
		}
		if summaryOut != "" {
			if err := writeSummary(summaryOut, summary); err != nil {
				logrus.Fatalf("%v", err)
			}
			logrus.Infof("Summary written to %s", summaryOut)
		}

		logrus.Info("Simulation complete.")
	},
}

// describeCmd prints the topology of one test case without running it
var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the network of a test case",
	Run: func(cmd *cobra.Command, args []string) {
		tc, err := loadCase(testcasesPath, caseIndex)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		s, err := sim.NewSimulator(tc.ToNetworkConfig(), sim.DefaultTransportConfig(), nil)
		if err != nil {
			logrus.Fatalf("Invalid network: %v", err)
		}
		describe(cmd.OutOrStdout(), tc.Number, s)
	},
}

// loadCase reads, selects and validates a test case.
func loadCase(path string, index int) (*testcase.TestCase, error) {
	if path == "" {
		return nil, fmt.Errorf("no test-case file given, use --testcases")
	}
	cases, err := testcase.Load(path)
	if err != nil {
		return nil, err
	}
	tc, err := testcase.Select(cases, index)
	if err != nil {
		return nil, err
	}
	if err := tc.Validate(); err != nil {
		return nil, fmt.Errorf("test case %d: %w", index, err)
	}
	return tc, nil
}

// resolveTransport layers the transport file and then explicitly set flags
// over the defaults. Flag defaults never overwrite file values.
func resolveTransport(cmd *cobra.Command) (sim.TransportConfig, error) {
	transport := sim.DefaultTransportConfig()
	if transportPath != "" {
		file, err := loadTransportFile(transportPath)
		if err != nil {
			return transport, err
		}
		file.apply(&transport)
	}
	flags := cmd.Flags()
	if flags.Changed("cc") {
		transport.Algorithm = sim.Algorithm(congestionControl)
	}
	if flags.Changed("rto") {
		transport.RetransmitTimeout = retransmitTimeout
	}
	if flags.Changed("routing-period") {
		transport.RoutingUpdatePeriod = routingPeriod
	}
	if flags.Changed("alpha") {
		transport.FastAlpha = fastAlpha
	}
	if flags.Changed("horizon") {
		transport.Horizon = horizon
	}
	if !sim.IsValidAlgorithm(string(transport.Algorithm)) {
		return transport, fmt.Errorf("unknown congestion control algorithm %q, expected reno or fast", transport.Algorithm)
	}
	if transport.RetransmitTimeout <= 0 || transport.RoutingUpdatePeriod <= 0 {
		return transport, fmt.Errorf("rto and routing period must be > 0 ms")
	}
	if transport.FastAlpha <= 0 {
		return transport, fmt.Errorf("FAST alpha must be > 0, got %v", transport.FastAlpha)
	}
	if transport.Horizon < 0 {
		return transport, fmt.Errorf("horizon must be >= 0 ms, got %d", transport.Horizon)
	}
	return transport, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, describeCmd} {
		c.Flags().StringVar(&testcasesPath, "testcases", "", "Test-case file (YAML or JSON)")
		c.Flags().IntVar(&caseIndex, "case", 0, "Index of the test case within the file")
	}

	runCmd.Flags().StringVar(&transportPath, "transport", "", "Transport YAML file (flags override its values)")
	runCmd.Flags().StringVar(&congestionControl, "cc", string(sim.AlgorithmReno), "Congestion control algorithm (reno, fast)")
	runCmd.Flags().Int64Var(&retransmitTimeout, "rto", sim.DefaultRetransmitTimeout, "Retransmission timeout (in ms)")
	runCmd.Flags().Int64Var(&routingPeriod, "routing-period", sim.DefaultRoutingUpdatePeriod, "Interval between host routing announcements (in ms)")
	runCmd.Flags().Float64Var(&fastAlpha, "alpha", sim.DefaultFastAlpha, "FAST additive window term")
	runCmd.Flags().Int64Var(&horizon, "horizon", 0, "Abort if the clock passes this time (in ms), 0 disables")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", string(trace.TraceLevelFlows), "Trace level (none, flows, all)")
	runCmd.Flags().StringVar(&summaryOut, "summary-out", "", "Write the YAML summary to this file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(describeCmd)
}
