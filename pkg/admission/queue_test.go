package admission

import (
	"testing"
	"time"
)

func TestRequestHeap_PriorityOrder(t *testing.T) {
	var h requestHeap
	base := time.Now()

	h.push(&item{identity: "low", priority: PriorityLow, enqueuedAt: base, seq: 1})
	h.push(&item{identity: "high", priority: PriorityHigh, enqueuedAt: base.Add(time.Second), seq: 2})
	h.push(&item{identity: "normal", priority: PriorityNormal, enqueuedAt: base.Add(2 * time.Second), seq: 3})

	want := []string{"high", "normal", "low"}
	for _, id := range want {
		it := h.pop()
		if it == nil || it.identity != id {
			t.Fatalf("pop = %v, want %s", it, id)
		}
	}
	if h.pop() != nil {
		t.Error("empty heap should pop nil")
	}
}

func TestRequestHeap_FIFOWithinPriority(t *testing.T) {
	var h requestHeap
	base := time.Now()

	for i := 0; i < 5; i++ {
		h.push(&item{
			identity:   string(rune('a' + i)),
			priority:   PriorityNormal,
			enqueuedAt: base.Add(time.Duration(i) * time.Millisecond),
			seq:        uint64(i),
		})
	}

	for i := 0; i < 5; i++ {
		it := h.pop()
		if it.identity != string(rune('a'+i)) {
			t.Fatalf("pop %d = %s, want %s", i, it.identity, string(rune('a'+i)))
		}
	}
}

func TestRequestHeap_SequenceBreaksClockTies(t *testing.T) {
	var h requestHeap
	now := time.Now()

	// Same priority, same timestamp: submission sequence decides.
	h.push(&item{identity: "second", priority: PriorityNormal, enqueuedAt: now, seq: 2})
	h.push(&item{identity: "first", priority: PriorityNormal, enqueuedAt: now, seq: 1})

	if it := h.pop(); it.identity != "first" {
		t.Errorf("pop = %s, want first", it.identity)
	}
	if it := h.pop(); it.identity != "second" {
		t.Errorf("pop = %s, want second", it.identity)
	}
}

func TestPriorityString(t *testing.T) {
	tests := []struct {
		p    Priority
		want string
	}{
		{PriorityLow, "low"},
		{PriorityNormal, "normal"},
		{PriorityHigh, "high"},
		{Priority(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.p, got, tt.want)
		}
	}
}
