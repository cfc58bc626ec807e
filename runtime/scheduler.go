package runtime

import (
	"container/heap"
	"math"
	"sort"

	"github.com/patchbay/enginecore/registry"
)

// Event is one pulse in flight: scheduled but not yet delivered to its
// target node/slot. EmitTime is the tick at which it left its source node;
// live patching needs it to retime the event when the edge's delay changes
// mid-flight.
type Event struct {
	Tick     float64
	NodeID   string
	EdgeID   string // empty for self-pulses and externally injected pulses
	Role     registry.PortRole
	Slot     int
	Pulse    registry.Pulse
	EmitTime float64

	seq uint64
}

// Scheduler is the tick-indexed event queue behind a Runtime. Events at
// the same tick come back in enqueue order (stable FIFO per tick);
// implementations are not required to be safe for concurrent use — the
// Runtime serializes access through its own mutex.
type Scheduler interface {
	Enqueue(ev Event)
	// PopUntil removes and returns every event with Tick < t, ordered by
	// (tick, enqueue order).
	PopUntil(t float64) []Event
	RemoveByNode(nodeID string)
	RemoveByEdge(edgeID string)
	// PeekMinTick reports the earliest queued tick, if any.
	PeekMinTick() (float64, bool)
	Clear()
	Len() int
	// Events returns the full in-flight set ordered by (tick, enqueue
	// order) without removing anything, for thumb projection and patch
	// rescheduling.
	Events() []Event
}

// RingHorizon is how many upcoming integer ticks the ring scheduler keeps
// in its cheap slot array. Events further out than this spill into the
// overflow heap; most edge delays in a patch stay well inside a few beats,
// so the ring is the hot path and the heap is the rare one.
const RingHorizon = 64

// eventHeap orders overflow events by tick, then enqueue order, matching
// the ring buffer's tie-break so the two storages behave identically to a
// caller.
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].Tick != h[j].Tick {
		return h[i].Tick < h[j].Tick
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int)  { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)    { *h = append(*h, x.(Event)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ringScheduler is the default Scheduler: a flat array of per-integer-tick
// slots for the near future plus a long-tail heap. Dense patches hit the
// ring's O(1) enqueue almost always.
type ringScheduler struct {
	base     int // integer tick the ring's slot window starts at
	ring     [RingHorizon][]Event
	overflow eventHeap
	count    int
	seq      uint64
}

// NewRingScheduler returns an empty ring scheduler starting at tick 0.
func NewRingScheduler() Scheduler {
	return &ringScheduler{}
}

func (s *ringScheduler) Enqueue(ev Event) {
	s.seq++
	ev.seq = s.seq

	slot := int(math.Floor(ev.Tick))
	if slot < s.base {
		// Late event: deliver on the very next pop instead of silently
		// dropping it.
		slot = s.base
	}
	if slot-s.base < RingHorizon {
		idx := ((slot % RingHorizon) + RingHorizon) % RingHorizon
		s.ring[idx] = append(s.ring[idx], ev)
	} else {
		heap.Push(&s.overflow, ev)
	}
	s.count++
}

func (s *ringScheduler) PopUntil(t float64) []Event {
	var out []Event

	limit := int(math.Floor(t))
	for slot := s.base; slot <= limit; slot++ {
		idx := ((slot % RingHorizon) + RingHorizon) % RingHorizon
		bucket := s.ring[idx]
		if slot < limit {
			out = append(out, bucket...)
			s.ring[idx] = nil
			s.base = slot + 1
			continue
		}
		// Boundary slot: take only events strictly before t.
		var keep []Event
		for _, ev := range bucket {
			if ev.Tick < t {
				out = append(out, ev)
			} else {
				keep = append(keep, ev)
			}
		}
		s.ring[idx] = keep
		s.base = slot
	}

	for len(s.overflow) > 0 && s.overflow[0].Tick < t {
		out = append(out, heap.Pop(&s.overflow).(Event))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Tick != out[j].Tick {
			return out[i].Tick < out[j].Tick
		}
		return out[i].seq < out[j].seq
	})
	s.count -= len(out)
	return out
}

func (s *ringScheduler) RemoveByNode(nodeID string) {
	s.filter(func(ev Event) bool { return ev.NodeID != nodeID })
}

func (s *ringScheduler) RemoveByEdge(edgeID string) {
	s.filter(func(ev Event) bool { return ev.EdgeID != edgeID })
}

func (s *ringScheduler) filter(keep func(Event) bool) {
	for i := range s.ring {
		kept := s.ring[i][:0:0]
		for _, ev := range s.ring[i] {
			if keep(ev) {
				kept = append(kept, ev)
			}
		}
		s.count -= len(s.ring[i]) - len(kept)
		s.ring[i] = kept
	}

	kept := s.overflow[:0:0]
	for _, ev := range s.overflow {
		if keep(ev) {
			kept = append(kept, ev)
		}
	}
	s.count -= len(s.overflow) - len(kept)
	s.overflow = kept
	heap.Init(&s.overflow)
}

func (s *ringScheduler) PeekMinTick() (float64, bool) {
	best := math.Inf(1)
	found := false
	for slot := s.base; slot < s.base+RingHorizon; slot++ {
		idx := ((slot % RingHorizon) + RingHorizon) % RingHorizon
		for _, ev := range s.ring[idx] {
			if ev.Tick < best {
				best = ev.Tick
				found = true
			}
		}
		if found {
			break
		}
	}
	if len(s.overflow) > 0 && s.overflow[0].Tick < best {
		best = s.overflow[0].Tick
		found = true
	}
	return best, found
}

func (s *ringScheduler) Clear() {
	for i := range s.ring {
		s.ring[i] = nil
	}
	s.overflow = nil
	s.count = 0
}

func (s *ringScheduler) Len() int {
	return s.count
}

func (s *ringScheduler) Events() []Event {
	out := make([]Event, 0, s.count)
	for _, bucket := range s.ring {
		out = append(out, bucket...)
	}
	out = append(out, s.overflow...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Tick != out[j].Tick {
			return out[i].Tick < out[j].Tick
		}
		return out[i].seq < out[j].seq
	})
	return out
}
