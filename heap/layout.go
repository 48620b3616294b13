package heap

import "math"

// --- entity layouts ------------------------------------------------------
//
// Each wrapper below is a thin, addr-carrying view over an object
// already allocated in the heap; none of them own memory themselves.
// Slot/field offsets are counted from payloadStart(addr), matching
// heap.h's AllocateX size formulas (a fixed number of leading machine
// words of fields, followed — for variable-length kinds — by a
// trailing array of Refs or raw bytes).

// RegularObjectAt wraps r, already known to refer to a RegularObject,
// for use outside the package. The heap does not itself track which
// cid belongs to which entity kind beyond the fixed ones — an
// embedder that allocated r with AllocateRegularObject is expected to
// remember what it wrapped.
func RegularObjectAt(r Ref) RegularObject { return RegularObject{r.Address()} }
func ArrayAt(r Ref) Array                 { return Array{r.Address()} }
func WeakArrayAt(r Ref) WeakArray         { return WeakArray{r.Address()} }
func ByteArrayAt(r Ref) ByteArray         { return ByteArray{r.Address()} }
func ByteStringAt(r Ref) ByteString       { return ByteString{ByteArray{r.Address()}} }
func WideStringAt(r Ref) WideString       { return WideString{r.Address()} }
func ClosureAt(r Ref) Closure             { return Closure{r.Address()} }
func ActivationAt(r Ref) Activation       { return Activation{r.Address()} }
func MediumIntegerAt(r Ref) MediumInteger { return MediumInteger{r.Address()} }
func LargeIntegerAt(r Ref) LargeInteger   { return LargeInteger{r.Address()} }
func Float64At(r Ref) Float64             { return Float64{r.Address()} }
func EphemeronAt(r Ref) Ephemeron         { return Ephemeron{r.Address()} }

// RegularObject is an instance of a user-defined class: a class-table
// slot indirection plus a fixed number of Ref-valued instance
// variables, all inline.
type RegularObject struct{ addr word }

func (o RegularObject) Ref() Ref      { return tagPointer(o.addr) }
func (o RegularObject) Cid() ClassId  { return objectCid(o.addr) }
func (o RegularObject) NumSlots() int { return int(word(objectHeapSize(o.addr)) - (payloadStart(o.addr) - o.addr)) / wordSize }

func (o RegularObject) Slot(i int) Ref {
	o.checkIndex(i)
	return Ref(loadWord(payloadStart(o.addr) + word(i*wordSize)))
}

func (o RegularObject) SetSlot(i int, v Ref) {
	o.checkIndex(i)
	storeWord(payloadStart(o.addr)+word(i*wordSize), word(v))
}

func (o RegularObject) checkIndex(i int) {
	if i < 0 || i >= o.NumSlots() {
		panic("heap: RegularObject: slot index out of range")
	}
}

func (o RegularObject) ForEachSlot(f func(Ref)) {
	for i := 0; i < o.NumSlots(); i++ {
		f(o.Slot(i))
	}
}

// regularObjectSize returns the heap payload size, in bytes, of a
// regular object with numSlots Ref-valued instance variables.
func regularObjectSize(numSlots int) int {
	return roundUp(numSlots * wordSize)
}

// Array is a variable-length, fully-traced vector of Refs.
type Array struct{ addr word }

func (a Array) Ref() Ref     { return tagPointer(a.addr) }
func (a Array) Len() int     { return int(word(objectHeapSize(a.addr)) - (payloadStart(a.addr) - a.addr)) / wordSize }
func (a Array) At(i int) Ref {
	a.checkIndex(i)
	return Ref(loadWord(payloadStart(a.addr) + word(i*wordSize)))
}
func (a Array) Set(i int, v Ref) {
	a.checkIndex(i)
	storeWord(payloadStart(a.addr)+word(i*wordSize), word(v))
}
func (a Array) checkIndex(i int) {
	if i < 0 || i >= a.Len() {
		panic("heap: Array: index out of range")
	}
}
func arraySize(length int) int { return roundUp(length * wordSize) }

// WeakArray has the same physical layout as Array but its elements are
// not traced by the ordinary scan: they are visited only by the
// post-fixpoint weak list mourn (weakarray.go), which nils any element
// whose referent did not survive on its own.
type WeakArray struct{ addr word }

func (w WeakArray) Ref() Ref     { return tagPointer(w.addr) }
func (w WeakArray) Len() int     { return int(word(objectHeapSize(w.addr)) - (payloadStart(w.addr) - w.addr) - wordSize) / wordSize }
func (w WeakArray) At(i int) Ref {
	w.checkIndex(i)
	return Ref(loadWord(payloadStart(w.addr) + wordSize + word(i*wordSize)))
}
func (w WeakArray) Set(i int, v Ref) {
	w.checkIndex(i)
	storeWord(payloadStart(w.addr)+wordSize+word(i*wordSize), word(v))
}
func (w WeakArray) checkIndex(i int) {
	if i < 0 || i >= w.Len() {
		panic("heap: WeakArray: index out of range")
	}
}

// next is the intrusive weak-list link, stored in the leading word of
// the payload (ahead of the element array) so weakarray.go can walk
// the worklist without knowing the array's length in advance.
func (w WeakArray) next() Ref     { return Ref(loadWord(payloadStart(w.addr))) }
func (w WeakArray) setNext(r Ref) { storeWord(payloadStart(w.addr), word(r)) }

func weakArraySize(length int) int { return roundUp(wordSize + length*wordSize) }

// Ephemeron implements Hayes' conditional reference: value (and
// finalizer) are kept alive only while key is independently
// reachable. next is the intrusive ephemeron worklist link.
type Ephemeron struct{ addr word }

const (
	ephemeronKeyOffset       = 0
	ephemeronValueOffset     = wordSize
	ephemeronFinalizerOffset = 2 * wordSize
	ephemeronNextOffset      = 3 * wordSize
	ephemeronSize            = 4 * wordSize
)

func (e Ephemeron) Ref() Ref { return tagPointer(e.addr) }

func (e Ephemeron) Key() Ref          { return Ref(loadWord(payloadStart(e.addr) + ephemeronKeyOffset)) }
func (e Ephemeron) setKey(r Ref)      { storeWord(payloadStart(e.addr)+ephemeronKeyOffset, word(r)) }
func (e Ephemeron) Value() Ref        { return Ref(loadWord(payloadStart(e.addr) + ephemeronValueOffset)) }
func (e Ephemeron) setValue(r Ref)    { storeWord(payloadStart(e.addr)+ephemeronValueOffset, word(r)) }
func (e Ephemeron) Finalizer() Ref    { return Ref(loadWord(payloadStart(e.addr) + ephemeronFinalizerOffset)) }
func (e Ephemeron) setFinalizer(r Ref) {
	storeWord(payloadStart(e.addr)+ephemeronFinalizerOffset, word(r))
}
func (e Ephemeron) next() Ref     { return Ref(loadWord(payloadStart(e.addr) + ephemeronNextOffset)) }
func (e Ephemeron) setNext(r Ref) { storeWord(payloadStart(e.addr)+ephemeronNextOffset, word(r)) }

// Closure pairs a code reference with its captured upvalues.
type Closure struct{ addr word }

const closureCodeOffset = 0

func (c Closure) Ref() Ref       { return tagPointer(c.addr) }
func (c Closure) Code() Ref      { return Ref(loadWord(payloadStart(c.addr) + closureCodeOffset)) }
func (c Closure) setCode(r Ref)  { storeWord(payloadStart(c.addr)+closureCodeOffset, word(r)) }
func (c Closure) NumCaptured() int {
	return int(word(objectHeapSize(c.addr)) - (payloadStart(c.addr) - c.addr) - wordSize) / wordSize
}
func (c Closure) Captured(i int) Ref {
	c.checkIndex(i)
	return Ref(loadWord(payloadStart(c.addr) + wordSize + word(i*wordSize)))
}
func (c Closure) SetCaptured(i int, v Ref) {
	c.checkIndex(i)
	storeWord(payloadStart(c.addr)+wordSize+word(i*wordSize), word(v))
}
func (c Closure) checkIndex(i int) {
	if i < 0 || i >= c.NumCaptured() {
		panic("heap: Closure: captured index out of range")
	}
}
func closureSize(numCaptured int) int { return roundUp(wordSize + numCaptured*wordSize) }

// Activation is an interpreter stack frame materialized as a heap
// object: method, sender, and program-counter fields plus a fixed
// number of local-variable slots.
type Activation struct{ addr word }

const (
	activationMethodOffset = 0
	activationSenderOffset = wordSize
	activationPcOffset     = 2 * wordSize
	activationFixedFields  = 3 * wordSize
)

func (a Activation) Ref() Ref          { return tagPointer(a.addr) }
func (a Activation) Method() Ref       { return Ref(loadWord(payloadStart(a.addr) + activationMethodOffset)) }
func (a Activation) SetMethod(r Ref)   { storeWord(payloadStart(a.addr)+activationMethodOffset, word(r)) }
func (a Activation) Sender() Ref       { return Ref(loadWord(payloadStart(a.addr) + activationSenderOffset)) }
func (a Activation) SetSender(r Ref)   { storeWord(payloadStart(a.addr)+activationSenderOffset, word(r)) }
func (a Activation) PC() Ref           { return Ref(loadWord(payloadStart(a.addr) + activationPcOffset)) }
func (a Activation) SetPC(r Ref)       { storeWord(payloadStart(a.addr)+activationPcOffset, word(r)) }
func (a Activation) NumLocals() int {
	return int(word(objectHeapSize(a.addr)) - (payloadStart(a.addr) - a.addr) - activationFixedFields) / wordSize
}
func (a Activation) Local(i int) Ref {
	a.checkIndex(i)
	return Ref(loadWord(payloadStart(a.addr) + activationFixedFields + word(i*wordSize)))
}
func (a Activation) SetLocal(i int, v Ref) {
	a.checkIndex(i)
	storeWord(payloadStart(a.addr)+activationFixedFields+word(i*wordSize), word(v))
}
func (a Activation) checkIndex(i int) {
	if i < 0 || i >= a.NumLocals() {
		panic("heap: Activation: local index out of range")
	}
}
func activationSize(numLocals int) int { return roundUp(activationFixedFields + numLocals*wordSize) }

// ByteArray is an untraced, variable-length run of raw bytes (bitmap
// data, native buffers — never object references).
type ByteArray struct{ addr word }

func (b ByteArray) Ref() Ref { return tagPointer(b.addr) }
func (b ByteArray) Len() int { return int(word(objectHeapSize(b.addr)) - (payloadStart(b.addr) - b.addr)) }
func (b ByteArray) At(i int) byte {
	b.checkIndex(i)
	return loadByte(payloadStart(b.addr) + word(i))
}
func (b ByteArray) Set(i int, v byte) {
	b.checkIndex(i)
	storeByte(payloadStart(b.addr)+word(i), v)
}
func (b ByteArray) Bytes() []byte {
	n := b.Len()
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = b.At(i)
	}
	return out
}
func (b ByteArray) checkIndex(i int) {
	if i < 0 || i >= b.Len() {
		panic("heap: ByteArray: index out of range")
	}
}
func byteArraySize(length int) int { return roundUp(length) }

// ByteString is a Latin-1 / UTF-8 byte string; physically identical to
// ByteArray but a distinct cid so the interpreter can dispatch string
// methods.
type ByteString struct{ ByteArray }

func (s ByteString) String() string { return string(s.Bytes()) }

// WideString stores one rune (as a uint32 code unit) per element, for
// text outside the Latin-1 range.
type WideString struct{ addr word }

func (s WideString) Ref() Ref { return tagPointer(s.addr) }
func (s WideString) Len() int {
	return int(word(objectHeapSize(s.addr)) - (payloadStart(s.addr) - s.addr)) / 4
}
func (s WideString) At(i int) rune {
	s.checkIndex(i)
	return rune(loadUint32(payloadStart(s.addr) + word(i*4)))
}
func (s WideString) Set(i int, r rune) {
	s.checkIndex(i)
	storeUint32(payloadStart(s.addr)+word(i*4), uint32(r))
}
func (s WideString) checkIndex(i int) {
	if i < 0 || i >= s.Len() {
		panic("heap: WideString: index out of range")
	}
}
func (s WideString) String() string {
	rs := make([]rune, s.Len())
	for i := range rs {
		rs[i] = s.At(i)
	}
	return string(rs)
}
func wideStringSize(length int) int { return roundUp(length * 4) }

// MediumInteger holds a signed integer wider than a SmallInteger Ref
// can carry but narrow enough to fit one machine word.
type MediumInteger struct{ addr word }

func (m MediumInteger) Ref() Ref     { return tagPointer(m.addr) }
func (m MediumInteger) Value() int64 { return int64(loadWord(payloadStart(m.addr))) }
func (m MediumInteger) setValue(v int64) {
	storeWord(payloadStart(m.addr), word(uint64(v)))
}
func mediumIntegerSize() int { return roundUp(wordSize) }

// LargeInteger stores an arbitrary-precision integer as a sign word
// followed by a little-endian run of 32-bit magnitude limbs.
type LargeInteger struct{ addr word }

const largeIntegerSignOffset = 0

func (l LargeInteger) Ref() Ref   { return tagPointer(l.addr) }
func (l LargeInteger) Negative() bool {
	return loadWord(payloadStart(l.addr)+largeIntegerSignOffset) != 0
}
func (l LargeInteger) setNegative(neg bool) {
	v := word(0)
	if neg {
		v = 1
	}
	storeWord(payloadStart(l.addr)+largeIntegerSignOffset, v)
}
func (l LargeInteger) NumLimbs() int {
	return int(word(objectHeapSize(l.addr)) - (payloadStart(l.addr) - l.addr) - wordSize) / 4
}
func (l LargeInteger) Limb(i int) uint32 {
	l.checkIndex(i)
	return loadUint32(payloadStart(l.addr) + wordSize + word(i*4))
}
func (l LargeInteger) SetLimb(i int, v uint32) {
	l.checkIndex(i)
	storeUint32(payloadStart(l.addr)+wordSize+word(i*4), v)
}
func (l LargeInteger) checkIndex(i int) {
	if i < 0 || i >= l.NumLimbs() {
		panic("heap: LargeInteger: limb index out of range")
	}
}
func largeIntegerSize(numLimbs int) int { return roundUp(wordSize + numLimbs*4) }

// Float64 holds one IEEE-754 double, boxed because it does not fit the
// SmallInteger immediate encoding.
type Float64 struct{ addr word }

func (f Float64) Ref() Ref     { return tagPointer(f.addr) }
func (f Float64) Value() float64 { return math.Float64frombits(loadWord(payloadStart(f.addr))) }
func (f Float64) setValue(v float64) {
	storeWord(payloadStart(f.addr), math.Float64bits(v))
}
func float64Size() int { return roundUp(wordSize) }

// ForwardingCorpse replaces an object's identity after a successful
// become: every from-space occurrence of the old object is, by the
// end of BecomeForward, physically overwritten with one of these, and
// target is resolved by every subsequent dereference. See become.go.
type ForwardingCorpse struct{ addr word }

const forwardingCorpseTargetOffset = 0

func (c ForwardingCorpse) Ref() Ref      { return tagPointer(c.addr) }
func (c ForwardingCorpse) Target() Ref   { return Ref(loadWord(payloadStart(c.addr) + forwardingCorpseTargetOffset)) }
func (c ForwardingCorpse) setTarget(r Ref) {
	storeWord(payloadStart(c.addr)+forwardingCorpseTargetOffset, word(r))
}
func forwardingCorpseSize() int { return roundUp(wordSize) }

// ForwardingCorpseAt wraps r, already known to be a forwarding corpse,
// for use outside the package.
func ForwardingCorpseAt(r Ref) ForwardingCorpse { return ForwardingCorpse{r.Address()} }
