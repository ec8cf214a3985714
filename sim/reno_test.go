package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenoFixture(packets int64) (*controllerFixture, *RenoController) {
	fx := newControllerFixture(packets * PayloadSize)
	c := NewRenoController(fx.flow, DefaultRetransmitTimeout)
	fx.flow.UseController(c)
	return fx, c
}

func TestRenoController_Start_InitialWindow(t *testing.T) {
	fx, c := newRenoFixture(100)

	c.Start()

	assert.Equal(t, SlowStart, c.State())
	assert.Equal(t, InitialWindow, c.Window())
	assert.Equal(t, InitialSSThresh, c.Threshold())
	assert.Equal(t, 2, c.InFlight())
	require.Len(t, fx.recorder.sent, 2)
	assert.Equal(t, int64(0), fx.recorder.sent[0].ID)
	assert.Equal(t, int64(1), fx.recorder.sent[1].ID)
	assert.Equal(t, DefaultRetransmitTimeout, c.pendingTimer.Time())
}

func TestRenoController_SlowStart_GrowsToThresholdThenAvoidance(t *testing.T) {
	// GIVEN slow start with ssthresh lowered to 4
	_, c := newRenoFixture(100)
	c.ssthresh = 4
	c.Start()

	// WHEN the first two segments are acknowledged
	c.AcknowledgementReceived(ackFor(0, 0, 1))
	assert.Equal(t, 3.0, c.Window())
	assert.Equal(t, SlowStart, c.State())
	c.AcknowledgementReceived(ackFor(1, 0, 2))

	// THEN the window reached ssthresh and growth turns additive
	assert.Equal(t, 4.0, c.Window())
	assert.Equal(t, CongestionAvoidance, c.State())
	c.AcknowledgementReceived(ackFor(2, 0, 3))
	assert.InDelta(t, 4.25, c.Window(), 1e-9)
	assert.Equal(t, int64(3), c.CumulativeAck())
}

func TestRenoController_ThreeDuplicateAcks_EnterFastRecovery(t *testing.T) {
	// GIVEN congestion avoidance with cwnd=10 and segments 0..9 in flight
	fx, c := newRenoFixture(100)
	c.cwnd = 10
	c.state = CongestionAvoidance
	c.Start()
	require.Equal(t, 10, c.InFlight())

	// WHEN segment 0 is lost and 1, 2, 3 are acknowledged
	c.AcknowledgementReceived(ackFor(1, 0, 0))
	c.AcknowledgementReceived(ackFor(2, 0, 0))
	assert.Equal(t, CongestionAvoidance, c.State())
	c.AcknowledgementReceived(ackFor(3, 0, 0))

	// THEN the window halves, ssthresh follows it and segment 0 is resent
	assert.Equal(t, FastRecovery, c.State())
	assert.Equal(t, 5.0, c.Window())
	assert.Equal(t, 5.0, c.Threshold())
	assert.Equal(t, int64(0), c.FastRecoverySeq())
	last := fx.recorder.sent[len(fx.recorder.sent)-1]
	assert.Equal(t, int64(0), last.ID)
	assert.Equal(t, 1, last.DupNum)
	_, stale := c.inFlight[segment{seq: 0, dup: 0}]
	assert.False(t, stale)
	_, resent := c.inFlight[segment{seq: 0, dup: 1}]
	assert.True(t, resent)

	// AND further duplicates leave the window alone
	sent := len(fx.recorder.sent)
	c.AcknowledgementReceived(ackFor(4, 0, 0))
	assert.Equal(t, 5.0, c.Window())
	assert.Equal(t, sent, len(fx.recorder.sent))

	// AND the retransmission's ack deflates to ssthresh
	c.AcknowledgementReceived(ackFor(0, 1, 12))
	assert.Equal(t, CongestionAvoidance, c.State())
	assert.Equal(t, 5.0, c.Window())
	assert.Equal(t, int64(12), c.CumulativeAck())
}

func TestRenoController_ThirdDuplicate_HoleAlreadyTimedOut_StaysInAvoidance(t *testing.T) {
	// GIVEN congestion avoidance with 0..9 sent and segment 0 already moved
	// to the retransmission list
	fx, c := newRenoFixture(100)
	c.cwnd = 10
	c.state = CongestionAvoidance
	c.Start()
	c.markLost(0)
	c.cwnd = 6
	require.Equal(t, 9, c.InFlight())
	require.Equal(t, 1, c.TimedOut())
	sent := len(fx.recorder.sent)

	// WHEN three duplicate acks ask for segment 0
	for seq := int64(1); seq <= 3; seq++ {
		c.AcknowledgementReceived(ackFor(seq, 0, 0))
	}

	// THEN no fast retransmit happens: segment 0 is not in flight
	assert.Equal(t, CongestionAvoidance, c.State())
	assert.Equal(t, 6.0, c.Window())
	assert.Equal(t, InitialSSThresh, c.Threshold())
	assert.Equal(t, int64(-1), c.FastRecoverySeq())
	assert.Equal(t, sent, len(fx.recorder.sent))
	assert.Equal(t, 1, c.TimedOut())
}

func TestRenoController_PartialAckInFastRecovery_RetransmitsNewHole(t *testing.T) {
	// GIVEN fast recovery on segment 0 with 1..9 outstanding
	fx, c := newRenoFixture(100)
	c.cwnd = 10
	c.state = CongestionAvoidance
	c.Start()
	for seq := int64(1); seq <= 3; seq++ {
		c.AcknowledgementReceived(ackFor(seq, 0, 0))
	}
	require.Equal(t, FastRecovery, c.State())
	require.Equal(t, int64(0), c.FastRecoverySeq())

	// WHEN an ack for another segment moves the cumulative ack to 4
	c.AcknowledgementReceived(ackFor(5, 0, 4))

	// THEN recovery continues and segment 4 is retransmitted
	assert.Equal(t, FastRecovery, c.State())
	assert.Equal(t, 5.0, c.Window())
	assert.Equal(t, int64(4), c.CumulativeAck())
	assert.Equal(t, int64(4), c.FastRecoverySeq())
	last := fx.recorder.sent[len(fx.recorder.sent)-1]
	assert.Equal(t, int64(4), last.ID)
	assert.Equal(t, 1, last.DupNum)
	_, stale := c.inFlight[segment{seq: 4, dup: 0}]
	assert.False(t, stale)

	// AND the ack of that retransmission ends recovery
	c.AcknowledgementReceived(ackFor(4, 1, 10))
	assert.Equal(t, CongestionAvoidance, c.State())
	assert.Equal(t, 5.0, c.Window())
}

func TestRenoController_TimeoutInFastRecovery_BackToSlowStart(t *testing.T) {
	_, c := newRenoFixture(100)
	c.cwnd = 10
	c.state = CongestionAvoidance
	c.Start()
	for seq := int64(1); seq <= 3; seq++ {
		c.AcknowledgementReceived(ackFor(seq, 0, 0))
	}
	require.Equal(t, FastRecovery, c.State())

	c.Wake()

	assert.Equal(t, SlowStart, c.State())
	assert.Equal(t, 5.0, c.Window(), "no second halving on the way out of fast recovery")
}

func TestRenoController_Timeout_HalvesAndRetransmitsBeforeNewData(t *testing.T) {
	// GIVEN segments 0 and 1 outstanding for a full timeout
	fx, c := newRenoFixture(100)
	c.Start()
	advanceTo(t, fx.queue, DefaultRetransmitTimeout)

	// WHEN the timer fires
	c.Wake()

	// THEN cwnd halves to 1 and only segment 0 is retransmitted
	assert.Equal(t, 1.0, c.Window())
	assert.Equal(t, 1, c.InFlight())
	assert.Equal(t, 1, c.TimedOut())
	last := fx.recorder.sent[len(fx.recorder.sent)-1]
	assert.Equal(t, int64(0), last.ID)
	assert.Equal(t, 1, last.DupNum)

	// WHEN the retransmission is acknowledged
	c.AcknowledgementReceived(ackFor(0, 1, 1))

	// THEN segment 1 is retransmitted before new segment 2
	tail := fx.recorder.sent[len(fx.recorder.sent)-2:]
	assert.Equal(t, [2]int64{1, 2}, [2]int64{tail[0].ID, tail[1].ID})
	assert.Equal(t, 1, tail[0].DupNum)
	assert.Equal(t, 0, tail[1].DupNum)
	assert.Equal(t, 0, c.TimedOut())
}

func TestRenoController_Ack_ReschedulesTimer(t *testing.T) {
	fx, c := newRenoFixture(100)
	c.Start()
	first := c.pendingTimer
	advanceTo(t, fx.queue, 20)

	c.AcknowledgementReceived(ackFor(0, 0, 1))

	assert.False(t, first.Valid(), "old timer is cancelled")
	assert.True(t, c.pendingTimer.Valid())
	assert.Equal(t, int64(20)+DefaultRetransmitTimeout, c.pendingTimer.Time())
}

func TestRenoController_Complete(t *testing.T) {
	_, c := newRenoFixture(2)
	c.Start()
	assert.False(t, c.Complete())

	c.AcknowledgementReceived(ackFor(0, 0, 1))
	assert.False(t, c.Complete())
	c.AcknowledgementReceived(ackFor(1, 0, 2))

	assert.True(t, c.Complete())
	c.Stop()
	assert.False(t, c.pendingTimer.Valid())
}
