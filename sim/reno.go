package sim

// RenoState is a phase of the Reno state machine.
type RenoState string

const (
	SlowStart           RenoState = "SlowStart"
	CongestionAvoidance RenoState = "CongestionAvoidance"
	FastRecovery        RenoState = "FastRecovery"
)

// InitialSSThresh is Reno's slow-start threshold before any loss.
const InitialSSThresh float64 = 50

// duplicateAckThreshold is the number of duplicate acks that signals a loss.
const duplicateAckThreshold = 3

// RenoController implements loss-based congestion control:
//
//	SlowStart -> CongestionAvoidance <-> FastRecovery
//	FastRecovery --RTO--> SlowStart
type RenoController struct {
	windowCore
	state           RenoState
	fastRecoverySeq int64
}

// NewRenoController creates a controller in SlowStart with cwnd=2 and ssthresh=50.
func NewRenoController(f *Flow, timeout int64) *RenoController {
	c := &RenoController{
		windowCore:      newWindowCore(f, timeout),
		state:           SlowStart,
		fastRecoverySeq: -1,
	}
	c.ssthresh = InitialSSThresh
	return c
}

func (c *RenoController) Algorithm() Algorithm { return AlgorithmReno }

// State returns the current phase.
func (c *RenoController) State() RenoState { return c.state }

// FastRecoverySeq returns the sequence number retransmitted on the last
// entry into FastRecovery, or -1.
func (c *RenoController) FastRecoverySeq() int64 { return c.fastRecoverySeq }

func (c *RenoController) Start() {
	c.recorder.WindowChanged(c.queue.Now(), c.flow.ID, c.cwnd)
	c.send()
	c.rearmTimer()
}

func (c *RenoController) AcknowledgementReceived(ack *Acknowledgement) {
	// A timeout noticed while acks still flow is treated as congestion.
	if c.sweepTimeouts() > 0 {
		c.halveWindow()
	}
	delete(c.inFlight, segment{seq: ack.ID, dup: ack.DupNum})

	duplicate := ack.NextID == c.lastCumulativeAck
	switch c.state {
	case SlowStart:
		c.setWindow(c.cwnd + 1)
		if c.cwnd >= c.ssthresh {
			c.state = CongestionAvoidance
		}
	case CongestionAvoidance:
		if duplicate {
			c.duplicateCount++
			if c.duplicateCount == duplicateAckThreshold && c.outstanding(ack.NextID) {
				c.halveWindow()
				c.ssthresh = c.cwnd
				c.state = FastRecovery
			}
		} else {
			c.setWindow(c.cwnd + 1/c.cwnd)
			c.duplicateCount = 0
		}
	case FastRecovery:
		if duplicate {
			c.duplicateCount++
			c.rearmTimer()
			return
		}
		if ack.ID == c.fastRecoverySeq {
			c.setWindow(c.ssthresh)
			c.state = CongestionAvoidance
			c.duplicateCount = 0
		}
	}
	c.lastCumulativeAck = ack.NextID

	c.send()
	c.rearmTimer()
}

func (c *RenoController) Wake() {
	if c.state == FastRecovery {
		c.state = SlowStart
	} else {
		c.halveWindow()
	}
	c.sweepTimeouts()
	c.send()
	c.rearmTimer()
}

func (c *RenoController) send() {
	if c.state == FastRecovery {
		c.retransmitHole()
		return
	}
	c.sendPolicy(true)
}

// retransmitHole resends the segment the receiver is waiting for. Older
// copies of it are forgotten so their acks cannot be mistaken for the
// retransmission's.
func (c *RenoController) retransmitHole() {
	seq := c.lastCumulativeAck
	if seq*PayloadSize >= c.flow.TotalBytes {
		return
	}
	for seg := range c.inFlight {
		if seg.seq == seq {
			delete(c.inFlight, seg)
		}
	}
	c.fastRecoverySeq = seq
	c.resend(seq)
}
