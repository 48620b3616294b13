package heap

// Ref is a single tagged machine word: either an immediate small
// integer or a pointer into one of the heap's semispaces. The low bit
// is the tag — 0 selects the small-integer encoding, 1 selects the
// heap-object encoding — and it is never ambiguous because every heap
// address is kObjectAlignment-aligned, leaving bit 0 free in the real
// address.
//
// nil, true, and false are not immediates of this type: in keeping
// with the original VM, they are ordinary heap objects reachable from
// the object store. Ref carries no opinion about them.
type Ref word

const (
	tagMask        = word(1)
	heapObjectTag  = word(1)
	smallIntegerTag = word(0)
)

// noRef is the sentinel "no value" used internally by intrusive list
// heads (the ephemeron and weak-array worklists). It is not a valid
// small integer or object reference a mutator would ever see: every
// real heap address is nonzero, and noRef is never stored in a slot a
// mutator can read.
const noRef Ref = 0

// MaxSmallInteger and MinSmallInteger bound the 63-bit signed range a
// SmallInteger can represent.
const (
	MaxSmallInteger int64 = 1<<62 - 1
	MinSmallInteger int64 = -(1 << 62)
)

// IsSmallInteger reports whether r is an immediate small integer.
func (r Ref) IsSmallInteger() bool { return word(r)&tagMask == smallIntegerTag }

// IsHeapObject reports whether r is a pointer into a semispace.
func (r Ref) IsHeapObject() bool { return word(r)&tagMask == heapObjectTag }

// IsImmediate reports whether r cannot move during collection. Only
// small integers are immediate in this heap; see the Non-goals in
// spec.md (no pinning of otherwise-movable objects).
func (r Ref) IsImmediate() bool { return r.IsSmallInteger() }

// SmallInteger returns a Ref encoding n as an immediate small integer.
// Panics if n is outside [MinSmallInteger, MaxSmallInteger].
func SmallInteger(n int64) Ref {
	r, ok := TrySmallInteger(n)
	if !ok {
		panic("heap: SmallInteger: value out of range")
	}
	return r
}

// TrySmallInteger is the non-panicking form of SmallInteger.
func TrySmallInteger(n int64) (Ref, bool) {
	if n > MaxSmallInteger || n < MinSmallInteger {
		return 0, false
	}
	return Ref(word(uint64(n) << 1)), true
}

// SmallIntegerValue returns the int64 value of a small-integer Ref.
// Panics if r is not a small integer.
func (r Ref) SmallIntegerValue() int64 {
	if !r.IsSmallInteger() {
		panic("heap: Ref.SmallIntegerValue: not a small integer")
	}
	return int64(word(r)) >> 1
}

// tagPointer tags a heap address as an object reference.
func tagPointer(addr word) Ref {
	if !isAligned(addr) {
		panic("heap: tagPointer: unaligned address")
	}
	return Ref(addr | heapObjectTag)
}

// Address returns the untagged heap address a Ref refers to. Panics
// if r is not a heap object.
func (r Ref) Address() word {
	if !r.IsHeapObject() {
		panic("heap: Ref.Address: not a heap object")
	}
	return word(r) &^ tagMask
}
