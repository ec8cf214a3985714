package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFastFixture(packets int64) (*controllerFixture, *FastController) {
	fx := newControllerFixture(packets * PayloadSize)
	c := NewFastController(fx.flow, DefaultRetransmitTimeout, DefaultFastAlpha)
	fx.flow.UseController(c)
	return fx, c
}

func TestFastController_WindowUpdate_ScalesByRTTRatio(t *testing.T) {
	// GIVEN segments 0 and 1 sent at t=0
	fx, c := newFastFixture(1000)
	c.Start()

	// WHEN segment 0 is acknowledged after 20 ms
	advanceTo(t, fx.queue, 20)
	c.AcknowledgementReceived(ackFor(0, 0, 1))

	// THEN baseRTT=20 and cwnd = 2*20/20 + 10
	assert.Equal(t, int64(20), c.BaseRTT())
	assert.Equal(t, 12.0, c.Window())
	assert.Equal(t, 12, c.InFlight())

	// WHEN segment 1 is acknowledged after 40 ms
	advanceTo(t, fx.queue, 40)
	c.AcknowledgementReceived(ackFor(1, 0, 2))

	// THEN cwnd = 12*20/40 + 10 and baseRTT stays at the minimum
	assert.Equal(t, 16.0, c.Window())
	assert.Equal(t, int64(20), c.BaseRTT())
}

func TestFastController_ZeroRTT_ClampedToOne(t *testing.T) {
	_, c := newFastFixture(10)
	c.Start()

	c.AcknowledgementReceived(ackFor(0, 0, 1))

	assert.Equal(t, int64(1), c.BaseRTT())
	assert.Equal(t, 12.0, c.Window())
}

func TestFastController_ThreeDuplicateAcks_Retransmit(t *testing.T) {
	// GIVEN segments 2..12 in flight after the first two acks
	fx, c := newFastFixture(1000)
	c.Start()
	advanceTo(t, fx.queue, 20)
	c.AcknowledgementReceived(ackFor(0, 0, 1))
	advanceTo(t, fx.queue, 40)
	c.AcknowledgementReceived(ackFor(1, 0, 2))

	// WHEN segment 2 is lost and 3, 4, 5 arrive
	for seq := int64(3); seq <= 5; seq++ {
		c.AcknowledgementReceived(ackFor(seq, 0, 2))
	}

	// THEN segment 2 goes out again with dup_num 1
	found := false
	for _, p := range fx.recorder.sent {
		if p.ID == 2 && p.DupNum == 1 {
			found = true
		}
	}
	assert.True(t, found)
	_, stale := c.inFlight[segment{seq: 2, dup: 0}]
	assert.False(t, stale)
}

func TestFastController_Wake_HalvesWindow(t *testing.T) {
	fx, c := newFastFixture(10)
	c.Start()
	advanceTo(t, fx.queue, DefaultRetransmitTimeout)

	c.Wake()

	assert.Equal(t, MinWindow, c.Window())
	require.Equal(t, 1, c.InFlight())
	last := fx.recorder.sent[len(fx.recorder.sent)-1]
	assert.Equal(t, int64(0), last.ID)
	assert.Equal(t, 1, last.DupNum)
}

func TestNewController_SelectsAlgorithm(t *testing.T) {
	fx := newControllerFixture(PayloadSize)
	cfg := DefaultTransportConfig()

	reno, err := NewController(AlgorithmReno, fx.flow, cfg)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmReno, reno.Algorithm())

	cfg.FastAlpha = 4
	fast, err := NewController(AlgorithmFast, fx.flow, cfg)
	require.NoError(t, err)
	assert.Equal(t, AlgorithmFast, fast.Algorithm())
	assert.Equal(t, 4.0, fast.(*FastController).Alpha())

	_, err = NewController("vegas", fx.flow, cfg)
	assert.Error(t, err)
	assert.False(t, IsValidAlgorithm("vegas"))
}
