package sim

import "container/heap"

// int64Heap is a min-heap of sequence numbers.
type int64Heap []int64

func (h int64Heap) Len() int           { return len(h) }
func (h int64Heap) Less(i, j int) bool { return h[i] < h[j] }
func (h int64Heap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *int64Heap) Push(x any) {
	*h = append(*h, x.(int64))
}

func (h *int64Heap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// AckTracker computes the cumulative acknowledgement number on the receiving
// side of a flow. Ids that arrive ahead of the next expected one wait in a
// min-heap until the gap before them closes.
type AckTracker struct {
	nextExpected int64
	early        int64Heap
	buffered     map[int64]struct{}
}

// NewAckTracker creates a tracker expecting sequence number 0.
func NewAckTracker() *AckTracker {
	return &AckTracker{
		early:    make(int64Heap, 0),
		buffered: make(map[int64]struct{}),
	}
}

// AccountFor records the arrival of id and returns the next expected id.
// Duplicates, both below nextExpected and already buffered, are ignored.
func (t *AckTracker) AccountFor(id int64) int64 {
	switch {
	case id == t.nextExpected:
		t.nextExpected++
		for t.early.Len() > 0 && t.early[0] == t.nextExpected {
			delete(t.buffered, heap.Pop(&t.early).(int64))
			t.nextExpected++
		}
	case id > t.nextExpected:
		if _, ok := t.buffered[id]; !ok {
			t.buffered[id] = struct{}{}
			heap.Push(&t.early, id)
		}
	}
	return t.nextExpected
}

// NextExpected returns the lowest id not yet received in order.
func (t *AckTracker) NextExpected() int64 { return t.nextExpected }

// Early returns how many out-of-order ids are buffered.
func (t *AckTracker) Early() int { return t.early.Len() }

// TotalAccounted estimates the number of distinct ids seen.
func (t *AckTracker) TotalAccounted() int64 {
	return t.nextExpected + int64(t.early.Len())
}
