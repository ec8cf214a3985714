package sim

import (
	"errors"
	"fmt"
)

// ErrBufferEmpty is returned by Buffer.Get when nothing is queued.
var ErrBufferEmpty = errors.New("buffer is empty")

type bufferedPacket struct {
	Packet    Packet
	Recipient Device
}

// Buffer is a drop-tail FIFO bounded by total bytes.
type Buffer struct {
	capacity  int64
	available int64
	queue     []bufferedPacket
}

// NewBuffer creates an empty buffer holding up to capacity bytes.
func NewBuffer(capacity int64) *Buffer {
	if capacity < 0 {
		panic(fmt.Sprintf("Buffer: capacity must be >= 0, got %d", capacity))
	}
	return &Buffer{
		capacity:  capacity,
		available: capacity,
		queue:     make([]bufferedPacket, 0),
	}
}

// Put enqueues the packet if it fits and reports whether it was kept.
// A packet that does not fit is dropped without touching the buffer.
func (b *Buffer) Put(p Packet, recipient Device) bool {
	if p.Size() > b.available {
		return false
	}
	b.queue = append(b.queue, bufferedPacket{Packet: p, Recipient: recipient})
	b.available -= p.Size()
	return true
}

// Get removes and returns the oldest queued packet.
func (b *Buffer) Get() (Packet, Device, error) {
	if len(b.queue) == 0 {
		return nil, nil, ErrBufferEmpty
	}
	head := b.queue[0]
	b.queue[0] = bufferedPacket{}
	b.queue = b.queue[1:]
	b.available += head.Packet.Size()
	return head.Packet, head.Recipient, nil
}

// Len returns the number of queued packets.
func (b *Buffer) Len() int { return len(b.queue) }

// Capacity returns the configured size in bytes.
func (b *Buffer) Capacity() int64 { return b.capacity }

// Available returns the free space in bytes.
func (b *Buffer) Available() int64 { return b.available }
