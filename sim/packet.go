package sim

import "fmt"

// Packet sizes in bytes.
const (
	PayloadSize         int64 = 1024
	AcknowledgementSize int64 = 64
	RoutingPacketSize   int64 = 64
)

// Packet is a structured record carried across links. Concrete variants are
// *Payload, *Acknowledgement and *RoutingPacket.
type Packet interface {
	Size() int64
	String() string
}

// Payload carries one segment of a flow's data.
type Payload struct {
	ID          int64
	DupNum      int
	FlowID      string
	Source      string // host ID
	Destination string // host ID
}

func (p *Payload) Size() int64 { return PayloadSize }

func (p *Payload) String() string {
	return fmt.Sprintf("payload{flow=%s id=%d dup=%d %s->%s}", p.FlowID, p.ID, p.DupNum, p.Source, p.Destination)
}

// Acknowledgement answers a Payload. ID and DupNum echo the acknowledged
// payload; NextID is the receiver's cumulative next-expected sequence number.
type Acknowledgement struct {
	ID          int64
	DupNum      int
	NextID      int64
	FlowID      string
	Source      string
	Destination string
	PayloadSize int64
}

func (a *Acknowledgement) Size() int64 { return AcknowledgementSize }

func (a *Acknowledgement) String() string {
	return fmt.Sprintf("ack{flow=%s id=%d dup=%d next=%d %s->%s}", a.FlowID, a.ID, a.DupNum, a.NextID, a.Source, a.Destination)
}

// RoutingPacket announces that SourceHost was reachable at Timestamp.
// Routers flood announcements that are fresher than what they know.
type RoutingPacket struct {
	SourceHost string
	Timestamp  int64
}

func (r *RoutingPacket) Size() int64 { return RoutingPacketSize }

func (r *RoutingPacket) String() string {
	return fmt.Sprintf("routing{host=%s ts=%d}", r.SourceHost, r.Timestamp)
}

// PacketFlowID returns the flow a packet belongs to, or "" for routing packets.
func PacketFlowID(p Packet) string {
	switch pkt := p.(type) {
	case *Payload:
		return pkt.FlowID
	case *Acknowledgement:
		return pkt.FlowID
	default:
		return ""
	}
}
