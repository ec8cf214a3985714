package sim

import (
	"cmp"
	"fmt"
	"math"

	"golang.org/x/exp/slices"
)

// Algorithm selects a congestion controller implementation.
type Algorithm string

const (
	AlgorithmReno Algorithm = "reno"
	AlgorithmFast Algorithm = "fast"
)

// validAlgorithms maps accepted algorithm names.
var validAlgorithms = map[Algorithm]bool{
	AlgorithmReno: true,
	AlgorithmFast: true,
}

// IsValidAlgorithm returns true if name is a recognized congestion control algorithm.
func IsValidAlgorithm(name string) bool {
	return validAlgorithms[Algorithm(name)]
}

// Defaults shared by both controllers.
const (
	DefaultRetransmitTimeout int64   = 1000 // ms
	InitialWindow            float64 = 2
	MinWindow                float64 = 1
)

// CongestionController decides when a flow sends which segment.
type CongestionController interface {
	// Start sends the initial window and arms the retransmission timer.
	Start()
	AcknowledgementReceived(ack *Acknowledgement)
	// Wake is invoked when the retransmission timer fires.
	Wake()
	// Complete reports whether every byte is acknowledged and nothing is in flight.
	Complete() bool
	// Stop cancels the timer and forgets pending retransmissions.
	Stop()
	Window() float64
	InFlight() int
	CumulativeAck() int64
	Algorithm() Algorithm
}

// NewController builds the controller for algo on flow f.
func NewController(algo Algorithm, f *Flow, cfg TransportConfig) (CongestionController, error) {
	switch algo {
	case AlgorithmReno, "":
		return NewRenoController(f, cfg.RetransmitTimeout), nil
	case AlgorithmFast:
		return NewFastController(f, cfg.RetransmitTimeout, cfg.FastAlpha), nil
	default:
		return nil, fmt.Errorf("unknown congestion control algorithm %q", algo)
	}
}

// segment identifies one transmission of a sequence number.
type segment struct {
	seq int64
	dup int
}

func compareSegments(a, b segment) int {
	return cmp.Or(cmp.Compare(a.seq, b.seq), cmp.Compare(a.dup, b.dup))
}

// windowCore is the bookkeeping both controllers share: the in-flight map,
// retransmission-timeout sweep, timer management and the send loop.
type windowCore struct {
	flow     *Flow
	queue    *EventQueue
	recorder Recorder

	cwnd     float64
	ssthresh float64
	timeout  int64

	inFlight          map[segment]int64 // send time in ms
	timedOut          []segment         // sorted by (seq, dup)
	lastDup           map[int64]int     // highest dup_num sent per sequence number
	duplicateCount    int
	lastCumulativeAck int64
	windowStart       int64 // next never-sent sequence number
	retransmit        bool
	pendingTimer      EventHandle
}

func newWindowCore(f *Flow, timeout int64) windowCore {
	if timeout <= 0 {
		timeout = DefaultRetransmitTimeout
	}
	return windowCore{
		flow:     f,
		queue:    f.queue,
		recorder: f.recorder,
		cwnd:     InitialWindow,
		timeout:  timeout,
		inFlight: make(map[segment]int64),
		timedOut: make([]segment, 0),
		lastDup:  make(map[int64]int),
	}
}

func (c *windowCore) Window() float64      { return c.cwnd }
func (c *windowCore) InFlight() int        { return len(c.inFlight) }
func (c *windowCore) CumulativeAck() int64 { return c.lastCumulativeAck }

// Threshold returns the slow-start threshold.
func (c *windowCore) Threshold() float64 { return c.ssthresh }

// TimedOut returns how many segments wait for retransmission.
func (c *windowCore) TimedOut() int { return len(c.timedOut) }

func (c *windowCore) Complete() bool {
	return c.lastCumulativeAck*PayloadSize >= c.flow.TotalBytes && len(c.inFlight) == 0
}

func (c *windowCore) Stop() {
	c.queue.Cancel(c.pendingTimer)
	c.pendingTimer = EventHandle{}
	c.timedOut = c.timedOut[:0]
	c.retransmit = false
}

func (c *windowCore) setWindow(cwnd float64) {
	c.cwnd = cwnd
	c.recorder.WindowChanged(c.queue.Now(), c.flow.ID, c.cwnd)
}

func (c *windowCore) halveWindow() {
	c.setWindow(math.Max(c.cwnd/2, MinWindow))
}

// sweepTimeouts moves every segment outstanding for at least timeout ms to
// the retransmission list and returns how many moved.
func (c *windowCore) sweepTimeouts() int {
	now := c.queue.Now()
	expired := make([]segment, 0)
	for seg, sent := range c.inFlight {
		if now-sent >= c.timeout {
			expired = append(expired, seg)
		}
	}
	for _, seg := range expired {
		delete(c.inFlight, seg)
	}
	c.markTimedOut(expired...)
	return len(expired)
}

func (c *windowCore) markTimedOut(segs ...segment) {
	c.timedOut = append(c.timedOut, segs...)
	slices.SortFunc(c.timedOut, compareSegments)
	c.retransmit = len(c.timedOut) > 0
}

// markLost moves every in-flight copy of seq to the retransmission list.
func (c *windowCore) markLost(seq int64) {
	lost := make([]segment, 0, 1)
	for seg := range c.inFlight {
		if seg.seq == seq {
			lost = append(lost, seg)
		}
	}
	for _, seg := range lost {
		delete(c.inFlight, seg)
	}
	c.markTimedOut(lost...)
}

// outstanding reports whether any copy of seq is in flight.
func (c *windowCore) outstanding(seq int64) bool {
	for seg := range c.inFlight {
		if seg.seq == seq {
			return true
		}
	}
	return false
}

func (c *windowCore) rearmTimer() {
	c.queue.Cancel(c.pendingTimer)
	c.pendingTimer = c.queue.Delay(c.timeout, &FlowWakeEvent{Flow: c.flow})
}

func (c *windowCore) sendSegment(seq int64, dup int) {
	p := &Payload{
		ID:          seq,
		DupNum:      dup,
		FlowID:      c.flow.ID,
		Source:      c.flow.Source.ID(),
		Destination: c.flow.Destination.ID(),
	}
	c.inFlight[segment{seq: seq, dup: dup}] = c.queue.Now()
	c.lastDup[seq] = dup
	c.recorder.PacketSent(c.queue.Now(), c.flow.ID, p)
	c.flow.Source.SendPacket(p)
}

// resend transmits seq again with a dup_num one above the highest sent so
// far, so every copy stays distinguishable.
func (c *windowCore) resend(seq int64) {
	dup := 0
	if d, ok := c.lastDup[seq]; ok {
		dup = d + 1
	}
	c.sendSegment(seq, dup)
}

// hasUnsent reports whether a never-sent sequence number remains.
func (c *windowCore) hasUnsent() bool {
	return c.windowStart*PayloadSize < c.flow.TotalBytes
}

// sendPolicy fills the window, timed-out segments first. New data is sent
// only when allowNew is set.
func (c *windowCore) sendPolicy(allowNew bool) {
	for float64(len(c.inFlight)) < c.cwnd {
		if c.retransmit {
			seg := c.timedOut[0]
			c.timedOut = c.timedOut[1:]
			c.retransmit = len(c.timedOut) > 0
			if seg.seq < c.lastCumulativeAck || c.outstanding(seg.seq) {
				continue
			}
			c.resend(seg.seq)
			continue
		}
		if !allowNew || !c.hasUnsent() {
			return
		}
		c.sendSegment(c.windowStart, 0)
		c.windowStart++
	}
}
