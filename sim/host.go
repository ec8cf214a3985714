package sim

import "fmt"

// DefaultRoutingUpdatePeriod is the interval between a host's routing announcements.
const DefaultRoutingUpdatePeriod int64 = 1000

// Host is an end system with exactly one link. It sources flows, acknowledges
// payloads addressed to it, and periodically announces itself to routers.
type Host struct {
	id   string
	link *Link

	flows    map[string]*Flow       // flows sourced here, by flow ID
	trackers map[string]*AckTracker // receive side, by flow ID

	queue         *EventQueue
	recorder      Recorder
	routingPeriod int64
}

// NewHost creates a host that announces itself every routingPeriod ms.
func NewHost(id string, queue *EventQueue, recorder Recorder, routingPeriod int64) *Host {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if routingPeriod <= 0 {
		routingPeriod = DefaultRoutingUpdatePeriod
	}
	return &Host{
		id:            id,
		flows:         make(map[string]*Flow),
		trackers:      make(map[string]*AckTracker),
		queue:         queue,
		recorder:      recorder,
		routingPeriod: routingPeriod,
	}
}

func (h *Host) ID() string { return h.id }

// AttachLink connects the host's only link. A second link panics.
func (h *Host) AttachLink(l *Link) {
	if h.link != nil {
		panic(fmt.Sprintf("Host %s: already attached to link %s, cannot attach %s", h.id, h.link.ID, l.ID))
	}
	h.link = l
}

// Link returns the attached link, or nil.
func (h *Host) Link() *Link { return h.link }

func (h *Host) Links() []*Link {
	if h.link == nil {
		return nil
	}
	return []*Link{h.link}
}

// RegisterFlow makes h deliver acknowledgements for f to it.
func (h *Host) RegisterFlow(f *Flow) {
	h.flows[f.ID] = f
}

// AckTracker returns the receive-side tracker for a flow, if any payload arrived.
func (h *Host) AckTracker(flowID string) (*AckTracker, bool) {
	t, ok := h.trackers[flowID]
	return t, ok
}

// SendPacket puts a packet this host originated onto its link.
func (h *Host) SendPacket(p Packet) {
	if src := packetSource(p); src != h.id {
		panic(fmt.Sprintf("Host %s: cannot send %s originated by %q", h.id, p, src))
	}
	if h.link == nil {
		panic(fmt.Sprintf("Host %s: no link attached", h.id))
	}
	h.link.SendPacket(p, h)
}

// HandlePacket acknowledges payloads and passes acknowledgements to the
// owning flow. Routing announcements from neighbouring hosts are ignored.
func (h *Host) HandlePacket(p Packet, from *Link) {
	switch pkt := p.(type) {
	case *RoutingPacket:
		return
	case *Payload:
		if pkt.Destination != h.id {
			panic(fmt.Sprintf("Host %s: received %s addressed elsewhere", h.id, pkt))
		}
		tracker, ok := h.trackers[pkt.FlowID]
		if !ok {
			tracker = NewAckTracker()
			h.trackers[pkt.FlowID] = tracker
		}
		next := tracker.AccountFor(pkt.ID)
		from.SendPacket(&Acknowledgement{
			ID:          pkt.ID,
			DupNum:      pkt.DupNum,
			NextID:      next,
			FlowID:      pkt.FlowID,
			Source:      h.id,
			Destination: pkt.Source,
			PayloadSize: pkt.Size(),
		}, h)
	case *Acknowledgement:
		if pkt.Destination != h.id {
			panic(fmt.Sprintf("Host %s: received %s addressed elsewhere", h.id, pkt))
		}
		f, ok := h.flows[pkt.FlowID]
		if !ok {
			panic(fmt.Sprintf("Host %s: received %s for unknown flow", h.id, pkt))
		}
		f.AcknowledgementReceived(pkt)
	default:
		panic(fmt.Sprintf("Host %s: cannot interpret packet %T", h.id, p))
	}
}

// StartAnnouncing schedules the first routing announcement at the current time.
func (h *Host) StartAnnouncing() {
	h.queue.Delay(0, &RoutingUpdateEvent{Host: h})
}

func (h *Host) announce() {
	if h.link == nil {
		return
	}
	h.SendPacket(&RoutingPacket{SourceHost: h.id, Timestamp: h.queue.Now()})
	h.queue.Delay(h.routingPeriod, &RoutingUpdateEvent{Host: h})
}

func (h *Host) String() string {
	return fmt.Sprintf("Host %s", h.id)
}

func packetSource(p Packet) string {
	switch pkt := p.(type) {
	case *Payload:
		return pkt.Source
	case *Acknowledgement:
		return pkt.Source
	case *RoutingPacket:
		return pkt.SourceHost
	default:
		return ""
	}
}
