// Package sim provides the discrete-event packet network simulator.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - event_queue.go: the clock and the (time, insertion order) event queue
//   - event.go: the four event kinds that drive the network
//   - simulator.go: topology wiring and the event loop
//
// # Architecture
//
// Devices (Host, Router) are joined by half-duplex Links, each with a
// drop-tail Buffer. A Link schedules two events per packet: LinkReady once
// the packet is serialized and PacketArrival after the propagation delay.
// Hosts announce themselves periodically; routers flood the freshest
// announcement per host and forward by destination through a RoutingTable.
//
// Each Flow is paced by a CongestionController (RenoController or
// FastController) that shares its retransmission bookkeeping through an
// embedded windowCore. Receivers compute cumulative acknowledgements with an
// AckTracker.
//
// Everything observable is reported through a Recorder:
//   - NopRecorder discards notifications
//   - LogRecorder writes structured logrus entries
//   - TraceRecorder fills a sim/trace.SimulationTrace
//   - MultiRecorder fans out to several recorders
//
// Test-case files are loaded by sim/testcase.
package sim
