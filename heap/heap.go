package heap

import (
	"fmt"

	"github.com/tliron/commonlog"
)

// LookupCache is the interpreter's inline/method lookup cache, an
// external collaborator the heap knows only through this narrow
// interface: become invalidates any cached lookup that might now
// resolve to a different object, so every cache entry must be
// dropped, not patched — there is no way for the heap to know which
// entries a given become affected.
type LookupCache interface {
	Clear()
}

// Heap is the managed heap of a single VM instance: two semispaces, a
// mutable class table, a handle stack of pinned roots, and the
// ephemeron/weak-array worklists a scavenge drains on every
// collection.
type Heap struct {
	config Config
	vm     VirtualMemory
	log    commonlog.Logger

	fromSpace *Semispace // where the mutator currently allocates
	toSpace   *Semispace // reserved, empty until the next scavenge

	classes *ClassTable
	handles *Handles
	hash    *identityHashSource

	ephemeronHead Ref
	weakHead      Ref
	recycleLists  map[ClassId]Ref

	objectStore Ref // root anchor for embedder-defined well-known objects
	activation  Ref // current top-of-stack Activation, if the embedder uses one

	nilRef Ref // heap-allocated singleton distinct from any SmallInteger

	finalizers  FinalizerQueue
	lookupCache LookupCache

	messageClassId ClassId
	haveMessageCid bool
}

// NewHeap constructs a Heap from cfg, reserving both semispaces
// up-front at cfg.InitialSemispaceCapacity.
func NewHeap(cfg Config) (*Heap, error) {
	vm := NewVirtualMemory()
	from, err := newSemispace(vm, cfg.InitialSemispaceCapacity)
	if err != nil {
		return nil, err
	}
	to, err := newSemispace(vm, cfg.InitialSemispaceCapacity)
	if err != nil {
		return nil, err
	}
	h := &Heap{
		config:       cfg,
		vm:           vm,
		log:          logger(),
		fromSpace:    from,
		toSpace:      to,
		classes:      newClassTable(),
		handles:      newHandles(cfg.HandlesCapacity),
		hash:         newIdentityHashSource(cfg.IdentityHashSeed),
		recycleLists: make(map[ClassId]Ref),
		finalizers:   DiscardFinalizers{},
	}
	addr, err := h.allocateRaw(CidIllegal, 0, "nil singleton")
	if err != nil {
		return nil, fmt.Errorf("heap: failed to allocate nil singleton: %w", err)
	}
	h.nilRef = tagPointer(addr)
	h.objectStore = h.nilRef
	h.activation = h.nilRef
	return h, nil
}

// SetFinalizerQueue installs the FinalizerQueue notified of dead
// ephemeron finalizers. The default is DiscardFinalizers.
func (h *Heap) SetFinalizerQueue(q FinalizerQueue) { h.finalizers = q }

// SetLookupCache installs the cache cleared on every successful
// BecomeForward.
func (h *Heap) SetLookupCache(c LookupCache) { h.lookupCache = c }

// NilRef is the heap's singleton nil object, distinct from every
// SmallInteger, used to null out weak-array elements and to
// initialize Activation fields that have not yet been assigned.
func (h *Heap) NilRef() Ref { return h.nilRef }

// ObjectStore returns the root anchor for embedder-defined well-known
// objects (interned symbols, the bootstrap class dictionary, and the
// like): a single Ref the embedder is expected to give slots of its
// own choosing.
func (h *Heap) ObjectStore() Ref { return h.objectStore }

func (h *Heap) SetObjectStore(r Ref) { h.objectStore = r }

// Activation returns the current top-of-stack activation, or NilRef if
// none is set. The heap does not interpret this field — it simply
// treats it as a root, scavenging and forwarding it like any other —
// the interpreter owns what it means to push and pop frames.
func (h *Heap) Activation() Ref { return h.activation }

func (h *Heap) SetActivation(r Ref) { h.activation = r }

// OpenHandleScope and CloseHandleScope delegate to the handle stack;
// NewHandle pins v for the lifetime of the innermost open scope.
func (h *Heap) OpenHandleScope() Scope    { return h.handles.OpenScope() }
func (h *Heap) CloseHandleScope(s Scope)  { h.handles.CloseScope(s) }
func (h *Heap) NewHandle(v Ref) *Ref      { return h.handles.New(v) }

// Size returns the number of bytes currently allocated.
func (h *Heap) Size() int { return h.fromSpace.Used() }

// Capacity returns the size, in bytes, of the semispace currently
// being allocated from. The heap's total memory footprint while idle
// is twice this (the reserved to-space is the same size).
func (h *Heap) Capacity() int { return h.fromSpace.Size() }

// RegisterClass reserves a fresh class id and associates classObj
// with it, returning the id.
func (h *Heap) RegisterClass(classObj Ref) (ClassId, error) {
	id, err := h.classes.AllocateClassId()
	if err != nil {
		return 0, err
	}
	h.classes.RegisterClass(id, classObj)
	return id, nil
}

// ClassOf returns the class object registered for cid.
func (h *Heap) ClassOf(cid ClassId) Ref { return h.classes.ClassAt(cid) }

// FreeClass reclaims cid directly. Every scavenge already does this
// automatically for any class with no surviving instances and no
// surviving reference to its class object (see mournClassTable);
// FreeClass is exposed besides that for an embedder that knows by some
// other means — ahead of the next scavenge — that a cid is safe to
// reclaim immediately.
func (h *Heap) FreeClass(cid ClassId) { h.classes.FreeClassId(cid) }

// --- typed allocation entry points ---------------------------------------

func (h *Heap) AllocateRegularObject(cid ClassId, numSlots int) (RegularObject, error) {
	addr, err := h.allocateRaw(cid, regularObjectSize(numSlots), "RegularObject")
	if err != nil {
		return RegularObject{}, err
	}
	o := RegularObject{addr}
	for i := 0; i < numSlots; i++ {
		o.SetSlot(i, h.nilRef)
	}
	return o, nil
}

func (h *Heap) AllocateArray(length int) (Array, error) {
	addr, err := h.allocateRaw(CidArray, arraySize(length), "Array")
	if err != nil {
		return Array{}, err
	}
	a := Array{addr}
	for i := 0; i < length; i++ {
		a.Set(i, h.nilRef)
	}
	return a, nil
}

func (h *Heap) AllocateWeakArray(length int) (WeakArray, error) {
	addr, err := h.allocateRaw(CidWeakArray, weakArraySize(length), "WeakArray")
	if err != nil {
		return WeakArray{}, err
	}
	w := WeakArray{addr}
	w.setNext(noRef)
	for i := 0; i < length; i++ {
		w.Set(i, h.nilRef)
	}
	return w, nil
}

func (h *Heap) AllocateByteArray(length int) (ByteArray, error) {
	addr, err := h.allocateRaw(CidByteArray, byteArraySize(length), "ByteArray")
	if err != nil {
		return ByteArray{}, err
	}
	return ByteArray{addr}, nil
}

func (h *Heap) AllocateByteString(s string) (ByteString, error) {
	b := []byte(s)
	addr, err := h.allocateRaw(CidByteString, byteArraySize(len(b)), "ByteString")
	if err != nil {
		return ByteString{}, err
	}
	ba := ByteArray{addr}
	for i, c := range b {
		ba.Set(i, c)
	}
	return ByteString{ba}, nil
}

func (h *Heap) AllocateWideString(s string) (WideString, error) {
	rs := []rune(s)
	addr, err := h.allocateRaw(CidWideString, wideStringSize(len(rs)), "WideString")
	if err != nil {
		return WideString{}, err
	}
	w := WideString{addr}
	for i, r := range rs {
		w.Set(i, r)
	}
	return w, nil
}

func (h *Heap) AllocateClosure(code Ref, numCaptured int) (Closure, error) {
	addr, err := h.allocateRaw(CidClosure, closureSize(numCaptured), "Closure")
	if err != nil {
		return Closure{}, err
	}
	c := Closure{addr}
	c.setCode(code)
	for i := 0; i < numCaptured; i++ {
		c.SetCaptured(i, h.nilRef)
	}
	return c, nil
}

func (h *Heap) AllocateActivation(numLocals int) (Activation, error) {
	addr, err := h.allocateRaw(CidActivation, activationSize(numLocals), "Activation")
	if err != nil {
		return Activation{}, err
	}
	a := Activation{addr}
	a.SetMethod(h.nilRef)
	a.SetSender(h.nilRef)
	a.SetPC(SmallInteger(0))
	for i := 0; i < numLocals; i++ {
		a.SetLocal(i, h.nilRef)
	}
	return a, nil
}

func (h *Heap) AllocateMediumInteger(v int64) (MediumInteger, error) {
	addr, err := h.allocateRaw(CidMediumInteger, mediumIntegerSize(), "MediumInteger")
	if err != nil {
		return MediumInteger{}, err
	}
	m := MediumInteger{addr}
	m.setValue(v)
	return m, nil
}

func (h *Heap) AllocateLargeInteger(negative bool, limbs []uint32) (LargeInteger, error) {
	addr, err := h.allocateRaw(CidLargeInteger, largeIntegerSize(len(limbs)), "LargeInteger")
	if err != nil {
		return LargeInteger{}, err
	}
	l := LargeInteger{addr}
	l.setNegative(negative)
	for i, limb := range limbs {
		l.SetLimb(i, limb)
	}
	return l, nil
}

func (h *Heap) AllocateFloat64(v float64) (Float64, error) {
	addr, err := h.allocateRaw(CidFloat64, float64Size(), "Float64")
	if err != nil {
		return Float64{}, err
	}
	f := Float64{addr}
	f.setValue(v)
	return f, nil
}

func (h *Heap) AllocateEphemeron(key, value, finalizer Ref) (Ephemeron, error) {
	addr, err := h.allocateRaw(CidEphemeron, ephemeronSize, "Ephemeron")
	if err != nil {
		return Ephemeron{}, err
	}
	e := Ephemeron{addr}
	e.setKey(key)
	e.setValue(value)
	e.setFinalizer(finalizer)
	e.setNext(noRef)
	return e, nil
}

// AllocateMessage allocates an instance of the dynamically-registered
// Message class (selector + arguments array), lazily registering that
// class on first use — mirroring heap.h's AllocateMessage, which
// likewise assumes the Message class is registered once at VM
// bootstrap rather than hard-coded as a fixed cid.
func (h *Heap) AllocateMessage(selector, args Ref) (RegularObject, error) {
	if !h.haveMessageCid {
		classObj, err := h.AllocateRegularObject(CidIllegal, 0)
		if err != nil {
			return RegularObject{}, err
		}
		id, err := h.RegisterClass(classObj.Ref())
		if err != nil {
			return RegularObject{}, err
		}
		h.messageClassId = id
		h.haveMessageCid = true
	}
	m, err := h.AllocateRegularObject(h.messageClassId, 2)
	if err != nil {
		return RegularObject{}, err
	}
	m.SetSlot(0, selector)
	m.SetSlot(1, args)
	return m, nil
}

// --- introspection --------------------------------------------------------

// CountInstances returns the number of objects in the allocation space
// currently tagged with cid, including unreachable ones the next
// scavenge has not yet reclaimed.
func (h *Heap) CountInstances(cid ClassId) int {
	n := 0
	h.fromSpace.forEachObject(func(addr word) {
		if objectCid(addr) == cid {
			n++
		}
	})
	return n
}

// CollectInstances returns a Ref for every object in the allocation
// space currently tagged with cid, including unreachable ones the next
// scavenge has not yet reclaimed.
func (h *Heap) CollectInstances(cid ClassId) []Ref {
	var out []Ref
	h.fromSpace.forEachObject(func(addr word) {
		if objectCid(addr) == cid {
			out = append(out, tagPointer(addr))
		}
	})
	return out
}

// WalkActivations walks the activation chain starting at the current
// Activation, following Sender() links, calling f with each frame
// until f returns false or the chain reaches NilRef. It replaces the
// original VM's PrintStack, generalized to an arbitrary visitor so an
// embedder can format a backtrace however it likes.
func (h *Heap) WalkActivations(f func(Activation) bool) {
	cur := h.activation
	for cur != noRef && cur != h.nilRef {
		if !cur.IsHeapObject() {
			return
		}
		a := Activation{cur.Address()}
		if !f(a) {
			return
		}
		cur = a.Sender()
	}
}
