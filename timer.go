package simrt

import "container/heap"

// deadlineEntry is a pending deadline (C3 data model): an instant, the
// waker to invoke once that instant is reached, and a cancellation
// tombstone. Held exclusively by the timerWheel.
type deadlineEntry struct {
	instant   Instant
	seq       uint64 // insertion order; FIFO tie-break among equal instants
	wake      func()
	cancelled bool
}

// timerHeapSlice is a min-heap of *deadlineEntry ordered by (instant,
// seq), adapted from eventloop.timerHeap (loop.go) — same
// container/heap shape, extended with the insertion-sequence tie-break
// spec §4.3 requires for deterministic ordering among equal instants.
type timerHeapSlice []*deadlineEntry

func (h timerHeapSlice) Len() int { return len(h) }

func (h timerHeapSlice) Less(i, j int) bool {
	if h[i].instant.elapsed != h[j].instant.elapsed {
		return h[i].instant.Before(h[j].instant)
	}
	return h[i].seq < h[j].seq
}

func (h timerHeapSlice) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeapSlice) Push(x any) {
	*h = append(*h, x.(*deadlineEntry))
}

func (h *timerHeapSlice) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// timerWheel is the ordered queue of pending deadlines (C3). Operations
// are insert/cancel/peekEarliest/pop_ready, per spec §4.3. A binary heap
// plus cancellation tombstones gives O(log n) insert and O(k) drain of k
// ready entries.
type timerWheel struct {
	heap timerHeapSlice
	seq  uint64
}

// newTimerWheel constructs an empty timer wheel.
func newTimerWheel() *timerWheel {
	return &timerWheel{}
}

// insert adds a pending deadline, returning the handle used to cancel it.
func (w *timerWheel) insert(instant Instant, wake func()) *deadlineEntry {
	w.seq++
	e := &deadlineEntry{instant: instant, seq: w.seq, wake: wake}
	heap.Push(&w.heap, e)
	return e
}

// cancel tombstones a pending deadline. Safe to call more than once, and
// safe to call after the entry has already fired.
func (w *timerWheel) cancel(e *deadlineEntry) {
	if e != nil {
		e.cancelled = true
	}
}

// dropCancelledHead discards cancelled entries sitting at the heap top.
func (w *timerWheel) dropCancelledHead() {
	for len(w.heap) > 0 && w.heap[0].cancelled {
		heap.Pop(&w.heap)
	}
}

// peekEarliest returns the instant of the earliest non-cancelled pending
// deadline, or false if none remain.
func (w *timerWheel) peekEarliest() (Instant, bool) {
	w.dropCancelledHead()
	if len(w.heap) == 0 {
		return Instant{}, false
	}
	return w.heap[0].instant, true
}

// popReady removes and returns, in (instant, seq) order, every
// non-cancelled entry whose instant is at or before now.
func (w *timerWheel) popReady(now Instant) []*deadlineEntry {
	var ready []*deadlineEntry
	for {
		w.dropCancelledHead()
		if len(w.heap) == 0 || w.heap[0].instant.After(now) {
			break
		}
		ready = append(ready, heap.Pop(&w.heap).(*deadlineEntry))
	}
	return ready
}

// Len reports the number of entries still tracked, including tombstoned
// ones not yet dropped. Used only by tests asserting on wheel size.
func (w *timerWheel) Len() int {
	return len(w.heap)
}
