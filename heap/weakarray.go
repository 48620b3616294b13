package heap

// enqueueWeakArray pushes w onto the weak-array worklist. Called from
// scavengePointer the instant a weak array is first copied into
// to-space during a scavenge; its elements are deliberately left
// untraced until mournWeakList runs.
func (h *Heap) enqueueWeakArray(w Ref) {
	WeakArray{w.Address()}.setNext(h.weakHead)
	h.weakHead = w
}

// mournWeakList runs once the ordinary scan (and the ephemeron
// fixpoint, which can still extend reachability) has settled: every
// element of every queued weak array is replaced with its forwarded
// address if the referent survived on its own, or NilRef (the heap's
// nil singleton object, see heap.go) if it did not. A weak array never itself keeps its elements alive.
func (h *Heap) mournWeakList() {
	for cur := h.weakHead; cur != noRef; {
		w := WeakArray{cur.Address()}
		next := w.next()
		for i := 0; i < w.Len(); i++ {
			w.Set(i, h.mournWeakPointer(w.At(i)))
		}
		w.setNext(noRef)
		cur = next
	}
}

// mournWeakPointer resolves a single weak-array element: survivors
// are forwarded, casualties become NilRef.
func (h *Heap) mournWeakPointer(r Ref) Ref {
	if !r.IsHeapObject() {
		return r
	}
	addr := r.Address()
	if h.toSpace.contains(addr) {
		return r // already a to-space address; some other root reached it
	}
	if !h.fromSpace.contains(addr) {
		return r
	}
	header := objectHeader(addr)
	if isForwarded(header) {
		return tagPointer(forwardingTarget(header))
	}
	return h.nilRef
}
