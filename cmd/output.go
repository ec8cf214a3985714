package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/packet-sim/packet-sim/sim"
	"github.com/packet-sim/packet-sim/sim/trace"
)

// printResults writes per-flow completion times followed by the trace summary.
func printResults(w io.Writer, s *sim.Simulator, summary *trace.TraceSummary, wall time.Duration) error {
	fmt.Fprintln(w, "=== Simulation Results ===")
	fmt.Fprintf(w, "Simulated time : %s\n", s.Queue().Clock())
	fmt.Fprintf(w, "Events executed: %d\n", s.EventsExecuted)
	fmt.Fprintf(w, "Wall time      : %s\n", wall.Round(time.Millisecond))
	for _, f := range s.Flows() {
		fmt.Fprintf(w, "%s: completed at %.3fs (%d segments)\n",
			f, float64(f.CompletedAt())/1000, f.Segments())
	}

	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshalling summary: %w", err)
	}
	fmt.Fprintln(w, "=== Trace Summary ===")
	_, err = w.Write(data)
	return err
}

// writeSummary stores the summary as YAML at path.
func writeSummary(path string, summary *trace.TraceSummary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshalling summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// describe prints the materialized network of a test case.
func describe(w io.Writer, number int, s *sim.Simulator) {
	fmt.Fprintf(w, "Test case %d\n", number)
	fmt.Fprintf(w, "Hosts (%d):\n", len(s.Hosts()))
	for _, h := range s.Hosts() {
		link := "-"
		if h.Link() != nil {
			link = h.Link().ID
		}
		fmt.Fprintf(w, "  %s on %s\n", h.ID(), link)
	}
	fmt.Fprintf(w, "Routers (%d):\n", len(s.Routers()))
	for _, r := range s.Routers() {
		ids := make([]string, 0, len(r.Links()))
		for _, l := range r.Links() {
			ids = append(ids, l.ID)
		}
		fmt.Fprintf(w, "  %s on %v\n", r.ID(), ids)
	}
	fmt.Fprintf(w, "Links (%d):\n", len(s.Links()))
	for _, l := range s.Links() {
		fmt.Fprintf(w, "  %s\n", l)
	}
	fmt.Fprintf(w, "Flows (%d):\n", len(s.Flows()))
	for _, f := range s.Flows() {
		fmt.Fprintf(w, "  %s\n", f)
	}
}
