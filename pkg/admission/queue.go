package admission

import "container/heap"

// requestHeap orders items by priority descending, then enqueue time
// ascending, then submission sequence ascending. The sequence number makes
// the order strictly total even when two items share a clock tick.
type requestHeap []*item

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	if !a.enqueuedAt.Equal(b.enqueuedAt) {
		return a.enqueuedAt.Before(b.enqueuedAt)
	}
	return a.seq < b.seq
}

func (h requestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *requestHeap) Push(x any) { *h = append(*h, x.(*item)) }

func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// push adds an item preserving heap order.
func (h *requestHeap) push(it *item) { heap.Push(h, it) }

// pop removes and returns the highest-priority oldest item, or nil when
// empty.
func (h *requestHeap) pop() *item {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*item)
}
