package sim

// DefaultFastAlpha is the additive term of the FAST window update.
const DefaultFastAlpha float64 = 10

// FastController implements delay-based congestion control. On every
// acknowledged segment the window is scaled by baseRTT/rtt and grown by alpha.
type FastController struct {
	windowCore
	alpha   float64
	baseRTT int64 // 0 until the first sample
}

// NewFastController creates a controller with cwnd=2.
func NewFastController(f *Flow, timeout int64, alpha float64) *FastController {
	if alpha <= 0 {
		alpha = DefaultFastAlpha
	}
	return &FastController{
		windowCore: newWindowCore(f, timeout),
		alpha:      alpha,
	}
}

func (c *FastController) Algorithm() Algorithm { return AlgorithmFast }

// BaseRTT returns the smallest round-trip time observed, or 0.
func (c *FastController) BaseRTT() int64 { return c.baseRTT }

// Alpha returns the additive window term.
func (c *FastController) Alpha() float64 { return c.alpha }

func (c *FastController) Start() {
	c.recorder.WindowChanged(c.queue.Now(), c.flow.ID, c.cwnd)
	c.sendPolicy(true)
	c.rearmTimer()
}

func (c *FastController) AcknowledgementReceived(ack *Acknowledgement) {
	if ack.NextID == c.lastCumulativeAck {
		c.duplicateCount++
		if c.duplicateCount == duplicateAckThreshold {
			c.markLost(ack.NextID)
		}
	} else {
		c.duplicateCount = 0
	}
	c.lastCumulativeAck = ack.NextID

	seg := segment{seq: ack.ID, dup: ack.DupNum}
	if sent, ok := c.inFlight[seg]; ok {
		rtt := max(c.queue.Now()-sent, 1)
		if c.baseRTT == 0 {
			c.baseRTT = rtt
		}
		c.setWindow(c.cwnd*float64(c.baseRTT)/float64(rtt) + c.alpha)
		c.baseRTT = min(c.baseRTT, rtt)
		delete(c.inFlight, seg)
	}

	if c.sweepTimeouts() > 0 {
		c.halveWindow()
	}
	c.sendPolicy(true)
	c.rearmTimer()
}

func (c *FastController) Wake() {
	c.sweepTimeouts()
	c.halveWindow()
	c.sendPolicy(true)
	c.rearmTimer()
}
