// sim/event_queue.go
package sim

import (
	"container/heap"
	"errors"
	"fmt"
)

// ErrEmptyQueue is returned by DequeueNext when no live event remains.
var ErrEmptyQueue = errors.New("event queue is empty")

// Clock holds the current simulation time in milliseconds.
// Only the EventQueue that owns it advances it.
type Clock struct {
	now int64
}

// Now returns the current simulation time in milliseconds.
func (c *Clock) Now() int64 { return c.now }

func (c *Clock) String() string {
	return fmt.Sprintf("%.3fs", float64(c.now)/1000)
}

// eventEntry is one arena record of the queue. Cancellation flips the
// tombstone; the entry stays in the heap until it is popped.
type eventEntry struct {
	time      int64
	seq       uint64
	event     Event
	cancelled bool
	done      bool
}

// EventHandle refers to a scheduled event so it can be cancelled later.
// The zero value refers to nothing and is safe to cancel.
type EventHandle struct {
	entry *eventEntry
}

// Valid reports whether the handle refers to an event that has neither run nor been cancelled.
func (h EventHandle) Valid() bool {
	return h.entry != nil && !h.entry.cancelled && !h.entry.done
}

// Time returns the scheduled time of the referenced event, or -1 for the zero handle.
func (h EventHandle) Time() int64 {
	if h.entry == nil {
		return -1
	}
	return h.entry.time
}

// entryHeap is a min-heap ordered by (time, seq).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type entryHeap []*eventEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(*eventEntry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// EventQueue dispatches events in (time, insertion order) and owns the Clock.
type EventQueue struct {
	clock   *Clock
	entries entryHeap
	nextSeq uint64
	live    int
}

// NewEventQueue creates an empty queue with its clock at zero.
func NewEventQueue() *EventQueue {
	return &EventQueue{
		clock:   &Clock{},
		entries: make(entryHeap, 0),
	}
}

// Clock returns the clock advanced by this queue.
func (q *EventQueue) Clock() *Clock { return q.clock }

// Now is shorthand for Clock().Now().
func (q *EventQueue) Now() int64 { return q.clock.now }

// Schedule adds ev to run at the given absolute time. Scheduling before the
// current time is a programming error and panics.
func (q *EventQueue) Schedule(time int64, ev Event) EventHandle {
	if time < q.clock.now {
		panic(fmt.Sprintf("EventQueue: cannot schedule %s at %d ms, clock is already at %d ms", ev.Type(), time, q.clock.now))
	}
	e := &eventEntry{time: time, seq: q.nextSeq, event: ev}
	q.nextSeq++
	q.live++
	heap.Push(&q.entries, e)
	return EventHandle{entry: e}
}

// Delay schedules ev to run ms milliseconds after the current time.
func (q *EventQueue) Delay(ms int64, ev Event) EventHandle {
	return q.Schedule(q.clock.now+ms, ev)
}

// Cancel marks the referenced event so it is skipped at dequeue.
func (q *EventQueue) Cancel(h EventHandle) {
	if !h.Valid() {
		return
	}
	h.entry.cancelled = true
	q.live--
}

// DequeueNext pops the earliest live event and advances the clock to its time.
func (q *EventQueue) DequeueNext() (Event, error) {
	for q.entries.Len() > 0 {
		e := heap.Pop(&q.entries).(*eventEntry)
		if e.cancelled {
			continue
		}
		if e.time < q.clock.now {
			panic(fmt.Sprintf("EventQueue: clock would move backwards from %d ms to %d ms", q.clock.now, e.time))
		}
		e.done = true
		q.live--
		q.clock.now = e.time
		return e.event, nil
	}
	return nil, ErrEmptyQueue
}

// Len returns the number of stored entries, tombstones included.
func (q *EventQueue) Len() int { return q.entries.Len() }

// Pending returns the number of live (not cancelled) events.
func (q *EventQueue) Pending() int { return q.live }
