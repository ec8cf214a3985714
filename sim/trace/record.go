// Package trace provides event recording and summary statistics for network simulations.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// FlowEvent names a flow lifecycle transition.
type FlowEvent string

const (
	FlowEventStarted   FlowEvent = "started"
	FlowEventCompleted FlowEvent = "completed"
)

// FlowRecord captures a flow starting or completing.
type FlowRecord struct {
	FlowID string
	Clock  int64
	Event  FlowEvent
}

// SendRecord captures one payload transmission by a flow.
type SendRecord struct {
	FlowID string
	Clock  int64
	Seq    int64
	DupNum int // 0 for the first transmission
}

// AckRecord captures an acknowledgement delivered to a flow.
type AckRecord struct {
	FlowID         string
	Clock          int64
	Seq            int64 // acknowledged payload id
	DupNum         int
	NextID         int64 // cumulative next-expected id
	RemainingBytes int64
}

// Drop reasons.
const (
	DropReasonBufferFull = "buffer full"
	DropReasonNoRoute    = "no route"
)

// DropRecord captures a packet discarded by a link buffer or a router.
type DropRecord struct {
	Clock  int64
	Where  string // link or router ID
	FlowID string // empty for routing packets
	Packet string
	Reason string
}

// WindowRecord captures a congestion window change.
type WindowRecord struct {
	Clock  int64
	FlowID string
	Cwnd   float64
}

// RouteRecord captures a routing table entry adopted by a router.
type RouteRecord struct {
	Clock     int64
	RouterID  string
	HostID    string
	LinkID    string
	Timestamp int64 // announcement time
}

// BufferRecord captures a link buffer's free space after a change.
type BufferRecord struct {
	Clock          int64
	LinkID         string
	AvailableBytes int64
}
