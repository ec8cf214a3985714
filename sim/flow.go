package sim

import "fmt"

// Flow is a bulk transfer of TotalBytes from Source to Destination,
// paced by its congestion controller.
type Flow struct {
	ID          string
	Source      *Host
	Destination *Host
	TotalBytes  int64
	StartTime   int64 // ms

	controller CongestionController
	queue      *EventQueue
	recorder   Recorder

	started     bool
	done        bool
	completedAt int64
}

// NewFlow creates a flow and registers it with its source host.
// A controller must be set with UseController before the flow starts.
func NewFlow(id string, src, dst *Host, totalBytes, startTime int64, queue *EventQueue, recorder Recorder) *Flow {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	f := &Flow{
		ID:          id,
		Source:      src,
		Destination: dst,
		TotalBytes:  totalBytes,
		StartTime:   startTime,
		queue:       queue,
		recorder:    recorder,
		completedAt: -1,
	}
	src.RegisterFlow(f)
	return f
}

// UseController installs the flow's congestion controller.
func (f *Flow) UseController(c CongestionController) {
	f.controller = c
}

// Controller returns the installed controller.
func (f *Flow) Controller() CongestionController { return f.controller }

// ScheduleStart queues the flow's first wake-up at StartTime.
func (f *Flow) ScheduleStart() EventHandle {
	return f.queue.Schedule(f.StartTime, &FlowWakeEvent{Flow: f})
}

// Wake starts the flow on its first call; later calls are retransmission
// timer expirations.
func (f *Flow) Wake() {
	if f.done {
		return
	}
	if f.controller == nil {
		panic(fmt.Sprintf("Flow %s: no congestion controller", f.ID))
	}
	if !f.started {
		f.started = true
		f.recorder.FlowStarted(f.queue.Now(), f.ID)
		f.controller.Start()
	} else {
		f.controller.Wake()
	}
	f.checkDone()
}

// AcknowledgementReceived passes an acknowledgement to the controller.
// Acknowledgements arriving after completion are ignored.
func (f *Flow) AcknowledgementReceived(ack *Acknowledgement) {
	if f.done {
		return
	}
	f.controller.AcknowledgementReceived(ack)
	f.recorder.AckReceived(f.queue.Now(), f.ID, ack, f.RemainingBytes())
	f.checkDone()
}

func (f *Flow) checkDone() {
	if f.done || !f.controller.Complete() {
		return
	}
	f.done = true
	f.completedAt = f.queue.Now()
	f.controller.Stop()
	f.recorder.FlowCompleted(f.completedAt, f.ID)
}

// RemainingBytes returns the bytes not yet cumulatively acknowledged.
func (f *Flow) RemainingBytes() int64 {
	if f.controller == nil {
		return f.TotalBytes
	}
	acked := min(f.controller.CumulativeAck()*PayloadSize, f.TotalBytes)
	return f.TotalBytes - acked
}

// Started reports whether the flow has begun sending.
func (f *Flow) Started() bool { return f.started }

// Done reports whether every byte has been acknowledged.
func (f *Flow) Done() bool { return f.done }

// CompletedAt returns the completion time in ms, or -1 while running.
func (f *Flow) CompletedAt() int64 { return f.completedAt }

// Segments returns the number of payload packets needed for TotalBytes.
func (f *Flow) Segments() int64 {
	return (f.TotalBytes + PayloadSize - 1) / PayloadSize
}

func (f *Flow) String() string {
	return fmt.Sprintf("Flow %s %s -> %s amount=%dB start=%dms", f.ID, f.Source.ID(), f.Destination.ID(), f.TotalBytes, f.StartTime)
}
