// sim/simulator.go
package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var (
	// ErrDeadlock means the event queue drained while some flow was incomplete.
	ErrDeadlock = errors.New("simulation deadlocked")
	// ErrHorizonExceeded means the clock passed the configured horizon first.
	ErrHorizonExceeded = errors.New("simulation horizon exceeded")
)

// Simulator wires hosts, routers, links and flows to one event queue and
// runs the event loop until every flow completes.
type Simulator struct {
	queue     *EventQueue
	recorder  Recorder
	transport TransportConfig

	hosts   []*Host
	routers []*Router
	links   []*Link
	flows   []*Flow

	devices   map[string]Device
	linkIndex map[string]*Link
	flowIndex map[string]*Flow

	EventsExecuted int64
}

// NewSimulator materializes net and schedules the initial events: each host's
// first routing announcement at t=0 and each flow's start.
func NewSimulator(net NetworkConfig, transport TransportConfig, recorder Recorder) (*Simulator, error) {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if transport.Algorithm != "" && !IsValidAlgorithm(string(transport.Algorithm)) {
		return nil, fmt.Errorf("unknown congestion control algorithm %q", transport.Algorithm)
	}
	s := &Simulator{
		queue:     NewEventQueue(),
		recorder:  recorder,
		transport: transport,
		devices:   make(map[string]Device),
		linkIndex: make(map[string]*Link),
		flowIndex: make(map[string]*Flow),
	}

	for _, hc := range net.Hosts {
		if _, dup := s.devices[hc.ID]; dup {
			return nil, fmt.Errorf("duplicate device ID %q", hc.ID)
		}
		h := NewHost(hc.ID, s.queue, recorder, transport.RoutingUpdatePeriod)
		s.devices[hc.ID] = h
		s.hosts = append(s.hosts, h)
	}
	for _, rc := range net.Routers {
		if _, dup := s.devices[rc.ID]; dup {
			return nil, fmt.Errorf("duplicate device ID %q", rc.ID)
		}
		r := NewRouter(rc.ID, s.queue, recorder)
		s.devices[rc.ID] = r
		s.routers = append(s.routers, r)
	}

	for _, lc := range net.Links {
		if err := s.addLink(lc); err != nil {
			return nil, err
		}
	}

	for _, fc := range net.Flows {
		if err := s.addFlow(fc); err != nil {
			return nil, err
		}
	}

	for _, h := range s.hosts {
		h.StartAnnouncing()
	}
	for _, f := range s.flows {
		f.ScheduleStart()
	}
	return s, nil
}

func (s *Simulator) addLink(lc LinkConfig) error {
	if _, dup := s.linkIndex[lc.ID]; dup {
		return fmt.Errorf("duplicate link ID %q", lc.ID)
	}
	if lc.Rate <= 0 {
		return fmt.Errorf("link %s: rate must be > 0, got %v", lc.ID, lc.Rate)
	}
	if lc.Delay < 0 || lc.BufferBytes < 0 {
		return fmt.Errorf("link %s: delay and buffer must be >= 0", lc.ID)
	}
	a, ok := s.devices[lc.EndpointA]
	if !ok {
		return fmt.Errorf("link %s: unknown endpoint %q", lc.ID, lc.EndpointA)
	}
	b, ok := s.devices[lc.EndpointB]
	if !ok {
		return fmt.Errorf("link %s: unknown endpoint %q", lc.ID, lc.EndpointB)
	}
	if a == b {
		return fmt.Errorf("link %s: both endpoints are %q", lc.ID, lc.EndpointA)
	}
	for _, d := range []Device{a, b} {
		if h, isHost := d.(*Host); isHost && h.Link() != nil {
			return fmt.Errorf("link %s: host %s already attached to link %s", lc.ID, h.ID(), h.Link().ID)
		}
	}
	l := NewLink(lc.ID, lc.Rate, lc.Delay, lc.BufferBytes, a, b, s.queue, s.recorder)
	a.AttachLink(l)
	b.AttachLink(l)
	s.linkIndex[lc.ID] = l
	s.links = append(s.links, l)
	return nil
}

func (s *Simulator) addFlow(fc FlowConfig) error {
	if _, dup := s.flowIndex[fc.ID]; dup {
		return fmt.Errorf("duplicate flow ID %q", fc.ID)
	}
	src, ok := s.devices[fc.Source].(*Host)
	if !ok {
		return fmt.Errorf("flow %s: source %q is not a host", fc.ID, fc.Source)
	}
	dst, ok := s.devices[fc.Destination].(*Host)
	if !ok {
		return fmt.Errorf("flow %s: destination %q is not a host", fc.ID, fc.Destination)
	}
	if src == dst {
		return fmt.Errorf("flow %s: source and destination are both %q", fc.ID, fc.Source)
	}
	if fc.Bytes < 0 || fc.StartTime < 0 {
		return fmt.Errorf("flow %s: amount and start time must be >= 0", fc.ID)
	}
	f := NewFlow(fc.ID, src, dst, fc.Bytes, fc.StartTime, s.queue, s.recorder)
	c, err := NewController(s.transport.Algorithm, f, s.transport)
	if err != nil {
		return fmt.Errorf("flow %s: %w", fc.ID, err)
	}
	f.UseController(c)
	s.flowIndex[fc.ID] = f
	s.flows = append(s.flows, f)
	return nil
}

// Run executes events until every flow is done. It returns ErrDeadlock if
// the queue drains first and ErrHorizonExceeded if the next event lies past
// a positive horizon.
func (s *Simulator) Run() error {
	logrus.Infof("[%07d ms] Simulation started: %d hosts, %d routers, %d links, %d flows",
		s.queue.Now(), len(s.hosts), len(s.routers), len(s.links), len(s.flows))
	for !s.AllFlowsDone() {
		ev, err := s.queue.DequeueNext()
		if errors.Is(err, ErrEmptyQueue) {
			return fmt.Errorf("%w: %d flows incomplete at %d ms", ErrDeadlock, s.incomplete(), s.queue.Now())
		}
		if s.transport.Horizon > 0 && s.queue.Now() > s.transport.Horizon {
			return fmt.Errorf("%w: %d flows incomplete at %d ms (horizon %d ms)", ErrHorizonExceeded, s.incomplete(), s.queue.Now(), s.transport.Horizon)
		}
		logrus.Tracef("[%07d ms] Executing %s", s.queue.Now(), ev.Type())
		ev.Execute()
		s.EventsExecuted++
	}
	logrus.Infof("[%07d ms] Simulation ended after %d events", s.queue.Now(), s.EventsExecuted)
	return nil
}

// AllFlowsDone reports whether every flow has completed.
func (s *Simulator) AllFlowsDone() bool {
	return s.incomplete() == 0
}

func (s *Simulator) incomplete() int {
	n := 0
	for _, f := range s.flows {
		if !f.Done() {
			n++
		}
	}
	return n
}

// Now returns the current simulation time in ms.
func (s *Simulator) Now() int64 { return s.queue.Now() }

// Queue returns the simulator's event queue.
func (s *Simulator) Queue() *EventQueue { return s.queue }

func (s *Simulator) Hosts() []*Host     { return s.hosts }
func (s *Simulator) Routers() []*Router { return s.routers }
func (s *Simulator) Links() []*Link     { return s.links }
func (s *Simulator) Flows() []*Flow     { return s.flows }

// Host returns the host with the given ID.
func (s *Simulator) Host(id string) (*Host, bool) {
	h, ok := s.devices[id].(*Host)
	return h, ok
}

// Router returns the router with the given ID.
func (s *Simulator) Router(id string) (*Router, bool) {
	r, ok := s.devices[id].(*Router)
	return r, ok
}

// Link returns the link with the given ID.
func (s *Simulator) Link(id string) (*Link, bool) {
	l, ok := s.linkIndex[id]
	return l, ok
}

// Flow returns the flow with the given ID.
func (s *Simulator) Flow(id string) (*Flow, bool) {
	f, ok := s.flowIndex[id]
	return f, ok
}
