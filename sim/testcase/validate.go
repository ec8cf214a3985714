package testcase

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Validate checks the test case for structural errors: unique IDs, known
// link endpoints, one link per host, positive quantities, and a path between
// every flow's source and destination.
func (tc *TestCase) Validate() error {
	kinds := make(map[string]string) // device ID -> "host" | "router"
	for _, h := range tc.Hosts {
		if h.ID == "" {
			return fmt.Errorf("host with empty id")
		}
		if _, dup := kinds[h.ID]; dup {
			return fmt.Errorf("duplicate device id %q", h.ID)
		}
		kinds[h.ID] = "host"
	}
	for _, r := range tc.Routers {
		if r.ID == "" {
			return fmt.Errorf("router with empty id")
		}
		if _, dup := kinds[r.ID]; dup {
			return fmt.Errorf("duplicate device id %q", r.ID)
		}
		kinds[r.ID] = "router"
	}

	hostLinks := make(map[string]int)
	linkIDs := make(map[string]bool)
	for _, l := range tc.Links {
		if err := validateLink(l); err != nil {
			return err
		}
		if linkIDs[l.ID] {
			return fmt.Errorf("duplicate link id %q", l.ID)
		}
		linkIDs[l.ID] = true
		for _, ep := range l.Endpoints {
			kind, ok := kinds[ep]
			if !ok {
				return fmt.Errorf("link %s: unknown endpoint %q", l.ID, ep)
			}
			if kind == "host" {
				hostLinks[ep]++
			}
		}
	}
	for _, h := range tc.Hosts {
		if hostLinks[h.ID] > 1 {
			return fmt.Errorf("host %s: attached to %d links, hosts take exactly one", h.ID, hostLinks[h.ID])
		}
	}

	flowIDs := make(map[string]bool)
	for _, f := range tc.Flows {
		if f.ID == "" {
			return fmt.Errorf("flow with empty id")
		}
		if flowIDs[f.ID] {
			return fmt.Errorf("duplicate flow id %q", f.ID)
		}
		flowIDs[f.ID] = true
		if kinds[f.Source] != "host" {
			return fmt.Errorf("flow %s: source %q is not a host", f.ID, f.Source)
		}
		if kinds[f.Destination] != "host" {
			return fmt.Errorf("flow %s: destination %q is not a host", f.ID, f.Destination)
		}
		if f.Source == f.Destination {
			return fmt.Errorf("flow %s: source and destination are both %q", f.ID, f.Source)
		}
		if err := validateFinitePositive(fmt.Sprintf("flow %s: amount", f.ID), f.Amount); err != nil {
			return err
		}
		if f.Start < 0 || math.IsNaN(f.Start) || math.IsInf(f.Start, 0) {
			return fmt.Errorf("flow %s: start must be a finite value >= 0, got %v", f.ID, f.Start)
		}
	}

	return tc.validateConnectivity()
}

func validateLink(l LinkSpec) error {
	if l.ID == "" {
		return fmt.Errorf("link with empty id")
	}
	if len(l.Endpoints) != 2 {
		return fmt.Errorf("link %s: expected 2 endpoints, got %d", l.ID, len(l.Endpoints))
	}
	if l.Endpoints[0] == l.Endpoints[1] {
		return fmt.Errorf("link %s: both endpoints are %q", l.ID, l.Endpoints[0])
	}
	if err := validateFinitePositive(fmt.Sprintf("link %s: rate", l.ID), l.Rate); err != nil {
		return err
	}
	if err := validateFinitePositive(fmt.Sprintf("link %s: buffer", l.ID), l.Buffer); err != nil {
		return err
	}
	if l.Delay < 0 || math.IsNaN(l.Delay) || math.IsInf(l.Delay, 0) {
		return fmt.Errorf("link %s: delay must be a finite value >= 0, got %v", l.ID, l.Delay)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) || val <= 0 {
		return fmt.Errorf("%s must be a finite value > 0, got %v", name, val)
	}
	return nil
}

// validateConnectivity builds the undirected device graph and checks that
// every flow's endpoints lie in the same component.
func (tc *TestCase) validateConnectivity() error {
	g := simple.NewUndirectedGraph()
	nodes := make(map[string]int64)
	node := func(id string) int64 {
		n, ok := nodes[id]
		if !ok {
			n = int64(len(nodes))
			nodes[id] = n
			g.AddNode(simple.Node(n))
		}
		return n
	}
	for _, h := range tc.Hosts {
		node(h.ID)
	}
	for _, r := range tc.Routers {
		node(r.ID)
	}
	for _, l := range tc.Links {
		a, b := node(l.Endpoints[0]), node(l.Endpoints[1])
		if g.HasEdgeBetween(a, b) {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(a), simple.Node(b)))
	}
	for _, f := range tc.Flows {
		if !topo.PathExistsIn(g, simple.Node(nodes[f.Source]), simple.Node(nodes[f.Destination])) {
			return fmt.Errorf("flow %s: no path from %s to %s", f.ID, f.Source, f.Destination)
		}
	}
	return nil
}
