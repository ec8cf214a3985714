package trace

import (
	"strings"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// FlowSummary aggregates the records of one flow.
type FlowSummary struct {
	FlowID          string  `yaml:"flow_id"`
	StartedAt       int64   `yaml:"started_at_ms"`
	CompletedAt     int64   `yaml:"completed_at_ms"` // -1 if not completed
	PacketsSent     int     `yaml:"packets_sent"`
	Retransmissions int     `yaml:"retransmissions"`
	AcksReceived    int     `yaml:"acks_received"`
	Drops           int     `yaml:"drops"`
	MeanRTT         float64 `yaml:"mean_rtt_ms"`
	P95RTT          float64 `yaml:"p95_rtt_ms"`
	MaxWindow       float64 `yaml:"max_window"`
}

// LinkSummary aggregates buffer behaviour on one link.
type LinkSummary struct {
	LinkID            string `yaml:"link_id"`
	MinAvailableBytes int64  `yaml:"min_available_bytes"`
	BufferSamples     int    `yaml:"buffer_samples"`
	Drops             int    `yaml:"drops"`
}

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Flows          []FlowSummary  `yaml:"flows"`
	Links          []LinkSummary  `yaml:"links"`
	TotalDrops     int            `yaml:"total_drops"`
	DropsByReason  map[string]int `yaml:"drops_by_reason"`
	RoutingUpdates int            `yaml:"routing_updates"`
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
//
// A segment's round-trip time runs from its first transmission to the first
// acknowledgement naming it, so retransmitted segments include the time lost.
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		Flows:         make([]FlowSummary, 0),
		Links:         make([]LinkSummary, 0),
		DropsByReason: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	flows := make(map[string]*FlowSummary)
	flowFor := func(id string) *FlowSummary {
		fs, ok := flows[id]
		if !ok {
			fs = &FlowSummary{FlowID: id, StartedAt: -1, CompletedAt: -1}
			flows[id] = fs
		}
		return fs
	}

	for _, r := range st.Flows {
		fs := flowFor(r.FlowID)
		switch r.Event {
		case FlowEventStarted:
			fs.StartedAt = r.Clock
		case FlowEventCompleted:
			fs.CompletedAt = r.Clock
		}
	}

	type seqKey struct {
		flow string
		seq  int64
	}
	firstSend := make(map[seqKey]int64)
	for _, r := range st.Sends {
		fs := flowFor(r.FlowID)
		fs.PacketsSent++
		if r.DupNum > 0 {
			fs.Retransmissions++
		}
		k := seqKey{r.FlowID, r.Seq}
		if t, ok := firstSend[k]; !ok || r.Clock < t {
			firstSend[k] = r.Clock
		}
	}

	rtts := make(map[string][]float64)
	acked := make(map[seqKey]bool)
	for _, r := range st.Acks {
		flowFor(r.FlowID).AcksReceived++
		k := seqKey{r.FlowID, r.Seq}
		if acked[k] {
			continue
		}
		sent, ok := firstSend[k]
		if !ok {
			continue
		}
		acked[k] = true
		rtts[r.FlowID] = append(rtts[r.FlowID], float64(r.Clock-sent))
	}
	for id, samples := range rtts {
		slices.Sort(samples)
		fs := flowFor(id)
		fs.MeanRTT = stat.Mean(samples, nil)
		fs.P95RTT = stat.Quantile(0.95, stat.Empirical, samples, nil)
	}

	for _, r := range st.Windows {
		fs := flowFor(r.FlowID)
		if r.Cwnd > fs.MaxWindow {
			fs.MaxWindow = r.Cwnd
		}
	}

	links := make(map[string]*LinkSummary)
	linkFor := func(id string) *LinkSummary {
		ls, ok := links[id]
		if !ok {
			ls = &LinkSummary{LinkID: id, MinAvailableBytes: -1}
			links[id] = ls
		}
		return ls
	}
	for _, r := range st.Buffers {
		ls := linkFor(r.LinkID)
		ls.BufferSamples++
		if ls.MinAvailableBytes < 0 || r.AvailableBytes < ls.MinAvailableBytes {
			ls.MinAvailableBytes = r.AvailableBytes
		}
	}

	for _, r := range st.Drops {
		summary.TotalDrops++
		summary.DropsByReason[r.Reason]++
		if r.FlowID != "" {
			flowFor(r.FlowID).Drops++
		}
		if r.Reason == DropReasonBufferFull {
			linkFor(r.Where).Drops++
		}
	}

	summary.RoutingUpdates = len(st.Routes)

	for _, fs := range flows {
		summary.Flows = append(summary.Flows, *fs)
	}
	slices.SortFunc(summary.Flows, func(a, b FlowSummary) int { return strings.Compare(a.FlowID, b.FlowID) })
	for _, ls := range links {
		summary.Links = append(summary.Links, *ls)
	}
	slices.SortFunc(summary.Links, func(a, b LinkSummary) int { return strings.Compare(a.LinkID, b.LinkID) })

	return summary
}
