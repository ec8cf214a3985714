package sim

import (
	"errors"
	"testing"
)

// recordingEvent appends its name to a shared log when executed.
type recordingEvent struct {
	name string
	log  *[]string
}

func (e *recordingEvent) Type() EventType { return EventType("test:" + e.name) }
func (e *recordingEvent) Execute()        { *e.log = append(*e.log, e.name) }

// stubDevice records every packet delivered to it.
type stubDevice struct {
	id       string
	links    []*Link
	queue    *EventQueue
	received []Packet
	times    []int64
}

func newStubDevice(id string, q *EventQueue) *stubDevice {
	return &stubDevice{id: id, queue: q}
}

func (d *stubDevice) ID() string         { return d.id }
func (d *stubDevice) AttachLink(l *Link) { d.links = append(d.links, l) }
func (d *stubDevice) Links() []*Link     { return d.links }
func (d *stubDevice) HandlePacket(p Packet, _ *Link) {
	d.received = append(d.received, p)
	d.times = append(d.times, d.queue.Now())
}

// bogusPacket is a packet type no device understands.
type bogusPacket struct{}

func (bogusPacket) Size() int64    { return 1 }
func (bogusPacket) String() string { return "bogus" }

// captureRecorder keeps the notifications tests assert on.
type captureRecorder struct {
	NopRecorder
	sent      []*Payload
	acks      []*Acknowledgement
	drops     []string // reasons
	routes    []string // "router:host:link"
	started   []string
	completed []string
}

func (r *captureRecorder) PacketSent(_ int64, _ string, p *Payload) { r.sent = append(r.sent, p) }
func (r *captureRecorder) AckReceived(_ int64, _ string, a *Acknowledgement, _ int64) {
	r.acks = append(r.acks, a)
}
func (r *captureRecorder) PacketDropped(_ int64, _ string, _ Packet, reason string) {
	r.drops = append(r.drops, reason)
}
func (r *captureRecorder) RoutingTableUpdated(_ int64, router, host, link string, _ int64) {
	r.routes = append(r.routes, router+":"+host+":"+link)
}
func (r *captureRecorder) FlowStarted(_ int64, id string)   { r.started = append(r.started, id) }
func (r *captureRecorder) FlowCompleted(_ int64, id string) { r.completed = append(r.completed, id) }

// drain executes events until the queue is empty or limit events ran.
func drain(t *testing.T, q *EventQueue, limit int) {
	t.Helper()
	for i := 0; i < limit; i++ {
		ev, err := q.DequeueNext()
		if errors.Is(err, ErrEmptyQueue) {
			return
		}
		ev.Execute()
	}
	if q.Pending() == 0 {
		return
	}
	t.Fatalf("queue still busy after %d events", limit)
}

// advanceTo moves the clock to ts, discarding (not executing) everything
// scheduled before it.
func advanceTo(t *testing.T, q *EventQueue, ts int64) {
	t.Helper()
	var log []string
	q.Schedule(ts, &recordingEvent{name: "marker", log: &log})
	for len(log) == 0 {
		ev, err := q.DequeueNext()
		if err != nil {
			t.Fatalf("advanceTo(%d): %v", ts, err)
		}
		if m, ok := ev.(*recordingEvent); ok && m.name == "marker" {
			m.Execute()
		}
	}
}

// controllerFixture is a flow between two directly linked hosts whose
// controller is driven by hand. Payloads are sent onto the link but nothing
// is delivered unless the test runs the queue.
type controllerFixture struct {
	queue    *EventQueue
	src, dst *Host
	link     *Link
	flow     *Flow
	recorder *captureRecorder
}

func newControllerFixture(totalBytes int64) *controllerFixture {
	q := NewEventQueue()
	rec := &captureRecorder{}
	src := NewHost("H1", q, rec, DefaultRoutingUpdatePeriod)
	dst := NewHost("H2", q, rec, DefaultRoutingUpdatePeriod)
	l := NewLink("L1", 1_000_000, 10, 1<<20, src, dst, q, rec)
	src.AttachLink(l)
	dst.AttachLink(l)
	f := NewFlow("F1", src, dst, totalBytes, 0, q, rec)
	return &controllerFixture{queue: q, src: src, dst: dst, link: l, flow: f, recorder: rec}
}

func ackFor(seq int64, dup int, next int64) *Acknowledgement {
	return &Acknowledgement{ID: seq, DupNum: dup, NextID: next, FlowID: "F1", Source: "H2", Destination: "H1", PayloadSize: PayloadSize}
}
