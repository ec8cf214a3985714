package sim

import "fmt"

// Router forwards payloads and acknowledgements by destination host and
// floods fresh routing announcements to its other links.
type Router struct {
	id    string
	links []*Link
	Table *RoutingTable

	queue    *EventQueue
	recorder Recorder
}

// NewRouter creates a router with an empty routing table.
func NewRouter(id string, queue *EventQueue, recorder Recorder) *Router {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Router{
		id:       id,
		links:    make([]*Link, 0),
		Table:    NewRoutingTable(),
		queue:    queue,
		recorder: recorder,
	}
}

func (r *Router) ID() string { return r.id }

func (r *Router) AttachLink(l *Link) {
	r.links = append(r.links, l)
}

func (r *Router) Links() []*Link { return r.links }

// HandlePacket dispatches on the packet kind.
func (r *Router) HandlePacket(p Packet, from *Link) {
	switch pkt := p.(type) {
	case *RoutingPacket:
		r.handleRouting(pkt, from)
	case *Payload:
		r.forward(p, pkt.Destination)
	case *Acknowledgement:
		r.forward(p, pkt.Destination)
	default:
		panic(fmt.Sprintf("Router %s: cannot interpret packet %T", r.id, p))
	}
}

func (r *Router) handleRouting(pkt *RoutingPacket, from *Link) {
	if !r.Table.Update(pkt.SourceHost, pkt.Timestamp, from) {
		return
	}
	r.recorder.RoutingTableUpdated(r.queue.Now(), r.id, pkt.SourceHost, from.ID, pkt.Timestamp)
	for _, l := range r.links {
		if l == from {
			continue
		}
		l.SendPacket(pkt, r)
	}
}

func (r *Router) forward(p Packet, destination string) {
	l, ok := r.Table.Get(destination)
	if !ok {
		r.recorder.PacketDropped(r.queue.Now(), r.id, p, DropReasonNoRoute)
		return
	}
	l.SendPacket(p, r)
}

func (r *Router) String() string {
	return fmt.Sprintf("Router %s", r.id)
}
