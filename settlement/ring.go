package settlement

import "github.com/polybase/payy/field"

// RingSize is the root ring's fixed capacity (§3 "Root ring R").
const RingSize = 64

// Ring is a fixed-capacity circular buffer of recent accepted roots.
// R[head-1] is the current root; elements never leave the ring except by
// eviction after RingSize further advances.
type Ring struct {
	slots [RingSize]field.Element
	head  uint32
	count uint32
}

// NewRing returns an empty ring (no roots pushed yet).
func NewRing() Ring { return Ring{} }

// Push appends root, overwriting the oldest entry once the ring is full.
func (r *Ring) Push(root field.Element) {
	r.slots[r.head] = root
	r.head = (r.head + 1) % RingSize
	if r.count < RingSize {
		r.count++
	}
}

// Current returns R[head-1], the most recently pushed root. It is the
// zero field element on an empty ring.
func (r *Ring) Current() field.Element {
	if r.count == 0 {
		return field.Zero()
	}
	idx := (r.head + RingSize - 1) % RingSize
	return r.slots[idx]
}

// Contains reports whether root appears anywhere in the live window of
// the ring (the "recent-root check" of §4.3 item d).
func (r *Ring) Contains(root field.Element) bool {
	for i := uint32(0); i < r.count; i++ {
		if r.slots[i].Equal(root) {
			return true
		}
	}
	return false
}

// Len reports how many roots the ring currently holds (min(N+1, 64)
// after N accepted blocks).
func (r *Ring) Len() int { return int(r.count) }
