package pbd

// Handle refers to an element of a Pool. A handle stays valid until its element is
// removed; afterwards Get reports it as stale even if the slot has been reused.
type Handle struct {
	Index      uint32
	Generation uint32
}

type slot[T any] struct {
	value      T
	generation uint32
	alive      bool
}

// Pool is a slot arena with generation counters. Insertion and removal are O(1).
type Pool[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// Insert stores v and returns its handle.
func (p *Pool[T]) Insert(v T) Handle {
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		s := &p.slots[idx]
		s.value = v
		s.alive = true
		p.count++
		return Handle{Index: idx, Generation: s.generation}
	}
	p.slots = append(p.slots, slot[T]{value: v, alive: true})
	p.count++
	return Handle{Index: uint32(len(p.slots) - 1)}
}

// Get resolves h. The pointer is valid until the next Insert.
func (p *Pool[T]) Get(h Handle) (*T, bool) {
	if int(h.Index) >= len(p.slots) {
		return nil, false
	}
	s := &p.slots[h.Index]
	if !s.alive || s.generation != h.Generation {
		return nil, false
	}
	return &s.value, true
}

// Remove deletes the element referenced by h. It returns false for stale handles.
func (p *Pool[T]) Remove(h Handle) bool {
	if _, ok := p.Get(h); !ok {
		return false
	}
	s := &p.slots[h.Index]
	var zero T
	s.value = zero
	s.alive = false
	s.generation++
	p.free = append(p.free, h.Index)
	p.count--
	return true
}

// Len returns the number of live elements.
func (p *Pool[T]) Len() int {
	return p.count
}

// Each calls fn for every live element in slot order.
func (p *Pool[T]) Each(fn func(h Handle, v *T)) {
	for i := range p.slots {
		s := &p.slots[i]
		if s.alive {
			fn(Handle{Index: uint32(i), Generation: s.generation}, &s.value)
		}
	}
}

// Clear removes every element. Outstanding handles become stale.
func (p *Pool[T]) Clear() {
	p.free = p.free[:0]
	for i := range p.slots {
		s := &p.slots[i]
		if s.alive {
			var zero T
			s.value = zero
			s.alive = false
			s.generation++
		}
		p.free = append(p.free, uint32(len(p.slots)-1-i))
	}
	p.count = 0
}
