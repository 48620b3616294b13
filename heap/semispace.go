package heap

import "fmt"

// Semispace is one half of the copying collector's address space: a
// contiguous Region together with a bump pointer marking the frontier
// of live allocation within it.
type Semispace struct {
	region Region
	top    word // next free address; advances only forward, never wraps
}

func newSemispace(vm VirtualMemory, size int) (*Semispace, error) {
	r, err := vm.Allocate(size)
	if err != nil {
		return nil, fmt.Errorf("heap: semispace: %w", err)
	}
	return &Semispace{region: r, top: r.Base()}, nil
}

func (s *Semispace) Base() word  { return s.region.Base() }
func (s *Semispace) Limit() word { return s.region.Base() + word(s.region.Size()) }
func (s *Semispace) Size() int   { return s.region.Size() }

// Used returns the number of bytes already allocated from this space.
func (s *Semispace) Used() int { return int(s.top - s.Base()) }

// Available returns the number of bytes left before Limit.
func (s *Semispace) Available() int { return int(s.Limit() - s.top) }

// tryBump attempts to bump-allocate size bytes, returning the
// resulting address and true on success. size must already be rounded
// up to kObjectAlignment.
func (s *Semispace) tryBump(size int) (word, bool) {
	if word(size) > s.Limit()-s.top {
		return 0, false
	}
	addr := s.top
	s.top += word(size)
	return addr, true
}

// reset rewinds the bump pointer to the base, as if the space were
// freshly allocated. Used after a scavenge has copied every live
// object out of this space.
func (s *Semispace) reset() { s.top = s.Base() }

func (s *Semispace) protect(p Protection) error { return s.region.Protect(p) }

func (s *Semispace) free() error { return s.region.Free() }

// contains reports whether addr falls within this space's address
// range, regardless of whether it has been allocated yet.
func (s *Semispace) contains(addr word) bool {
	return addr >= s.Base() && addr < s.Limit()
}

// forEachObject walks every live object from base to the bump
// pointer, calling f with each object's address. Used by
// CountInstances, CollectInstances, and become's forwardFromSpace; the
// to-space scan during a scavenge (processToSpace) has its own loop.
// s.top is re-read on each iteration rather than captured once.
func (s *Semispace) forEachObject(f func(addr word)) {
	addr := s.Base()
	for addr < s.top {
		f(addr)
		addr += word(objectHeapSize(addr))
	}
}
