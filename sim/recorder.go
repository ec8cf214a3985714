package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/packet-sim/packet-sim/sim/trace"
)

// Drop reasons reported through Recorder.PacketDropped.
const (
	DropReasonBufferFull = trace.DropReasonBufferFull
	DropReasonNoRoute    = trace.DropReasonNoRoute
)

// Recorder receives notifications about what happens in the network.
// Implementations must not fail and must not touch simulation state.
type Recorder interface {
	FlowStarted(now int64, flowID string)
	FlowCompleted(now int64, flowID string)
	PacketSent(now int64, flowID string, p *Payload)
	AckReceived(now int64, flowID string, ack *Acknowledgement, remainingBytes int64)
	PacketDropped(now int64, where string, p Packet, reason string)
	RoutingTableUpdated(now int64, routerID, hostID, linkID string, timestamp int64)
	BufferOccupancy(now int64, linkID string, availableBytes int64)
	WindowChanged(now int64, flowID string, cwnd float64)
}

// NopRecorder discards every notification.
type NopRecorder struct{}

func (NopRecorder) FlowStarted(int64, string)                                 {}
func (NopRecorder) FlowCompleted(int64, string)                               {}
func (NopRecorder) PacketSent(int64, string, *Payload)                        {}
func (NopRecorder) AckReceived(int64, string, *Acknowledgement, int64)        {}
func (NopRecorder) PacketDropped(int64, string, Packet, string)               {}
func (NopRecorder) RoutingTableUpdated(int64, string, string, string, int64) {}
func (NopRecorder) BufferOccupancy(int64, string, int64)                      {}
func (NopRecorder) WindowChanged(int64, string, float64)                      {}

// LogRecorder writes notifications to logrus as structured entries.
// Per-packet events go to Debug and Trace so the default level stays quiet.
type LogRecorder struct {
	Logger logrus.FieldLogger
}

// NewLogRecorder returns a LogRecorder on the standard logrus logger.
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{Logger: logrus.StandardLogger()}
}

func (r *LogRecorder) at(now int64) logrus.FieldLogger {
	return r.Logger.WithField("time_ms", now)
}

func (r *LogRecorder) FlowStarted(now int64, flowID string) {
	r.at(now).WithField("flow", flowID).Info("flow started")
}

func (r *LogRecorder) FlowCompleted(now int64, flowID string) {
	r.at(now).WithField("flow", flowID).Info("flow completed")
}

func (r *LogRecorder) PacketSent(now int64, flowID string, p *Payload) {
	r.at(now).WithFields(logrus.Fields{"flow": flowID, "packet": p.String()}).Debug("flow sending packet")
}

func (r *LogRecorder) AckReceived(now int64, flowID string, ack *Acknowledgement, remainingBytes int64) {
	r.at(now).WithFields(logrus.Fields{
		"flow":      flowID,
		"packet":    ack.String(),
		"remaining": remainingBytes,
	}).Debug("flow received acknowledgement")
}

func (r *LogRecorder) PacketDropped(now int64, where string, p Packet, reason string) {
	r.at(now).WithFields(logrus.Fields{"at": where, "packet": p.String(), "reason": reason}).Debug("packet dropped")
}

func (r *LogRecorder) RoutingTableUpdated(now int64, routerID, hostID, linkID string, timestamp int64) {
	r.at(now).WithFields(logrus.Fields{
		"router":    routerID,
		"host":      hostID,
		"link":      linkID,
		"timestamp": timestamp,
	}).Trace("routing table updated")
}

func (r *LogRecorder) BufferOccupancy(now int64, linkID string, availableBytes int64) {
	r.at(now).WithFields(logrus.Fields{"link": linkID, "available": availableBytes}).Trace("buffer occupancy")
}

func (r *LogRecorder) WindowChanged(now int64, flowID string, cwnd float64) {
	r.at(now).WithFields(logrus.Fields{"flow": flowID, "cwnd": cwnd}).Trace("congestion window changed")
}

// TraceRecorder stores notifications in a trace.SimulationTrace.
type TraceRecorder struct {
	Trace *trace.SimulationTrace
}

// NewTraceRecorder creates a recorder backed by a fresh trace.
func NewTraceRecorder(config trace.TraceConfig) *TraceRecorder {
	return &TraceRecorder{Trace: trace.NewSimulationTrace(config)}
}

func (r *TraceRecorder) FlowStarted(now int64, flowID string) {
	r.Trace.RecordFlow(trace.FlowRecord{FlowID: flowID, Clock: now, Event: trace.FlowEventStarted})
}

func (r *TraceRecorder) FlowCompleted(now int64, flowID string) {
	r.Trace.RecordFlow(trace.FlowRecord{FlowID: flowID, Clock: now, Event: trace.FlowEventCompleted})
}

func (r *TraceRecorder) PacketSent(now int64, flowID string, p *Payload) {
	r.Trace.RecordSend(trace.SendRecord{FlowID: flowID, Clock: now, Seq: p.ID, DupNum: p.DupNum})
}

func (r *TraceRecorder) AckReceived(now int64, flowID string, ack *Acknowledgement, remainingBytes int64) {
	r.Trace.RecordAck(trace.AckRecord{
		FlowID:         flowID,
		Clock:          now,
		Seq:            ack.ID,
		DupNum:         ack.DupNum,
		NextID:         ack.NextID,
		RemainingBytes: remainingBytes,
	})
}

func (r *TraceRecorder) PacketDropped(now int64, where string, p Packet, reason string) {
	r.Trace.RecordDrop(trace.DropRecord{Clock: now, Where: where, FlowID: PacketFlowID(p), Packet: p.String(), Reason: reason})
}

func (r *TraceRecorder) RoutingTableUpdated(now int64, routerID, hostID, linkID string, timestamp int64) {
	r.Trace.RecordRoute(trace.RouteRecord{Clock: now, RouterID: routerID, HostID: hostID, LinkID: linkID, Timestamp: timestamp})
}

func (r *TraceRecorder) BufferOccupancy(now int64, linkID string, availableBytes int64) {
	r.Trace.RecordBuffer(trace.BufferRecord{Clock: now, LinkID: linkID, AvailableBytes: availableBytes})
}

func (r *TraceRecorder) WindowChanged(now int64, flowID string, cwnd float64) {
	r.Trace.RecordWindow(trace.WindowRecord{Clock: now, FlowID: flowID, Cwnd: cwnd})
}

// MultiRecorder fans every notification out to each of its members in order.
type MultiRecorder []Recorder

func (m MultiRecorder) FlowStarted(now int64, flowID string) {
	for _, r := range m {
		r.FlowStarted(now, flowID)
	}
}

func (m MultiRecorder) FlowCompleted(now int64, flowID string) {
	for _, r := range m {
		r.FlowCompleted(now, flowID)
	}
}

func (m MultiRecorder) PacketSent(now int64, flowID string, p *Payload) {
	for _, r := range m {
		r.PacketSent(now, flowID, p)
	}
}

func (m MultiRecorder) AckReceived(now int64, flowID string, ack *Acknowledgement, remainingBytes int64) {
	for _, r := range m {
		r.AckReceived(now, flowID, ack, remainingBytes)
	}
}

func (m MultiRecorder) PacketDropped(now int64, where string, p Packet, reason string) {
	for _, r := range m {
		r.PacketDropped(now, where, p, reason)
	}
}

func (m MultiRecorder) RoutingTableUpdated(now int64, routerID, hostID, linkID string, timestamp int64) {
	for _, r := range m {
		r.RoutingTableUpdated(now, routerID, hostID, linkID, timestamp)
	}
}

func (m MultiRecorder) BufferOccupancy(now int64, linkID string, availableBytes int64) {
	for _, r := range m {
		r.BufferOccupancy(now, linkID, availableBytes)
	}
}

func (m MultiRecorder) WindowChanged(now int64, flowID string, cwnd float64) {
	for _, r := range m {
		r.WindowChanged(now, flowID, cwnd)
	}
}
