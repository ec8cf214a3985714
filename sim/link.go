package sim

import (
	"fmt"
	"math"
	"time"
)

// Link is a half-duplex channel between two devices. One packet is
// serialized at a time; later packets wait in the link's buffer.
//
// Serialization and propagation are scheduled separately: the link is free
// for its next transmission once the last bit is on the wire, while the
// packet itself arrives Delay milliseconds later.
//
// The channel clock is kept in nanoseconds. Events land on the millisecond
// the serialization ends in, but a buffered packet starts where the previous
// one ended, so back-to-back packets drain at exactly Rate.
type Link struct {
	ID     string
	Rate   float64 // bytes per second
	Delay  int64   // propagation delay in ms
	Buffer *Buffer

	a, b     Device
	busy     bool
	wireFree time.Duration // end of the last serialization

	queue    *EventQueue
	recorder Recorder
}

// NewLink connects a and b. It does not attach itself to the devices;
// callers do that with Device.AttachLink.
func NewLink(id string, rate float64, delay int64, bufferBytes int64, a, b Device, queue *EventQueue, recorder Recorder) *Link {
	if rate <= 0 {
		panic(fmt.Sprintf("Link %s: rate must be > 0, got %v", id, rate))
	}
	if delay < 0 {
		panic(fmt.Sprintf("Link %s: delay must be >= 0, got %d", id, delay))
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Link{
		ID:       id,
		Rate:     rate,
		Delay:    delay,
		Buffer:   NewBuffer(bufferBytes),
		a:        a,
		b:        b,
		queue:    queue,
		recorder: recorder,
	}
}

// Endpoints returns the two devices joined by the link.
func (l *Link) Endpoints() (Device, Device) { return l.a, l.b }

// OtherEnd returns the endpoint that is not d.
func (l *Link) OtherEnd(d Device) Device {
	switch d {
	case l.a:
		return l.b
	case l.b:
		return l.a
	}
	panic(fmt.Sprintf("Link %s: device %s is not an endpoint", l.ID, d.ID()))
}

// Busy reports whether a packet is being serialized.
func (l *Link) Busy() bool { return l.busy }

// BusyUntil returns when the last serialization started on the link ends.
func (l *Link) BusyUntil() time.Duration { return l.wireFree }

// TransmissionTime is the serialization time for size bytes.
func (l *Link) TransmissionTime(size int64) time.Duration {
	return time.Duration(math.Round(float64(size) * float64(time.Second) / l.Rate))
}

// SendPacket puts p on the wire toward the device opposite sender, or
// buffers it while the link is busy. A full buffer drops the packet.
func (l *Link) SendPacket(p Packet, sender Device) {
	recipient := l.OtherEnd(sender)
	if !l.busy {
		now := time.Duration(l.queue.Now()) * time.Millisecond
		l.transmitNow(p, recipient, max(now, l.wireFree))
		return
	}
	if !l.Buffer.Put(p, recipient) {
		l.recorder.PacketDropped(l.queue.Now(), l.ID, p, DropReasonBufferFull)
		return
	}
	l.recorder.BufferOccupancy(l.queue.Now(), l.ID, l.Buffer.Available())
}

// transmitNow serializes p from start and schedules its events on the
// millisecond the serialization ends in.
func (l *Link) transmitNow(p Packet, recipient Device, start time.Duration) {
	l.busy = true
	l.wireFree = start + l.TransmissionTime(p.Size())
	ready := ceilMillis(l.wireFree)
	l.queue.Schedule(ready+l.Delay, &PacketArrivalEvent{Packet: p, Link: l, Recipient: recipient})
	l.queue.Schedule(ready, &LinkReadyEvent{Link: l})
}

func ceilMillis(d time.Duration) int64 {
	return int64((d + time.Millisecond - 1) / time.Millisecond)
}

// OnReady frees the channel and starts the next buffered packet, if any.
func (l *Link) OnReady() {
	l.busy = false
	p, recipient, err := l.Buffer.Get()
	if err != nil {
		return
	}
	l.recorder.BufferOccupancy(l.queue.Now(), l.ID, l.Buffer.Available())
	l.transmitNow(p, recipient, l.wireFree)
}

func (l *Link) String() string {
	return fmt.Sprintf("Link %s [%s <-> %s] rate=%.0fB/s delay=%dms buffer=%dB", l.ID, l.a.ID(), l.b.ID(), l.Rate, l.Delay, l.Buffer.Capacity())
}
