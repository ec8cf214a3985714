package sim

// EventType names an event variant for logging and tests.
type EventType string

const (
	EventTypePacketArrival EventType = "PacketArrival"
	EventTypeLinkReady     EventType = "LinkReady"
	EventTypeFlowWake      EventType = "FlowWake"
	EventTypeRoutingUpdate EventType = "RoutingUpdate"
)

// Event defines the interface for all simulation events.
// Execute runs to completion synchronously; the queue decides when.
type Event interface {
	Type() EventType
	Execute()
}

// PacketArrivalEvent delivers a packet to the far end of a link.
type PacketArrivalEvent struct {
	Packet    Packet
	Link      *Link
	Recipient Device
}

func (e *PacketArrivalEvent) Type() EventType { return EventTypePacketArrival }

// Execute hands the packet to the receiving device.
func (e *PacketArrivalEvent) Execute() {
	e.Recipient.HandlePacket(e.Packet, e.Link)
}

// LinkReadyEvent marks the end of a serialization period.
type LinkReadyEvent struct {
	Link *Link
}

func (e *LinkReadyEvent) Type() EventType { return EventTypeLinkReady }

func (e *LinkReadyEvent) Execute() {
	e.Link.OnReady()
}

// FlowWakeEvent starts a flow at its start time and doubles as the
// retransmission timer afterwards.
type FlowWakeEvent struct {
	Flow *Flow
}

func (e *FlowWakeEvent) Type() EventType { return EventTypeFlowWake }

func (e *FlowWakeEvent) Execute() {
	e.Flow.Wake()
}

// RoutingUpdateEvent makes a host announce itself and reschedule.
type RoutingUpdateEvent struct {
	Host *Host
}

func (e *RoutingUpdateEvent) Type() EventType { return EventTypeRoutingUpdate }

func (e *RoutingUpdateEvent) Execute() {
	e.Host.announce()
}
