package heap

// FinalizerQueue receives the finalizer Ref of every ephemeron whose
// key did not survive a scavenge. The default, DiscardFinalizers,
// simply drops them — this package does not itself run finalization,
// since that requires a notion of "when" (a VM event loop tick, a
// dedicated goroutine) that belongs to an embedder, not the heap.
type FinalizerQueue interface {
	Enqueue(finalizer Ref)
}

// DiscardFinalizers is the default FinalizerQueue: it drops every
// finalizer it receives. An embedder that wants real finalization
// installs its own FinalizerQueue with Heap.SetFinalizerQueue.
type DiscardFinalizers struct{}

func (DiscardFinalizers) Enqueue(Ref) {}

// enqueueEphemeron pushes e onto the ephemeron worklist. Called only
// from scavengePointer, the instant an ephemeron is first copied into
// to-space during a scavenge.
func (h *Heap) enqueueEphemeron(e Ref) {
	Ephemeron{e.Address()}.setNext(h.ephemeronHead)
	h.ephemeronHead = e
}

// processEphemeronListFixpoint implements Hayes' conditional-reference
// resolution: an ephemeron's value (and finalizer) are kept alive only
// if its key is independently reachable. Because an ephemeron's value
// can itself make some *other* ephemeron's key reachable, the list is
// swept repeatedly until a full pass resolves nothing new — the same
// fixpoint heap.cc's ProcessEphemeronList performs, interleaved with
// further to-space scanning each time a key resolves (newly traced
// values can themselves contain pointers that still need scanning).
func (h *Heap) processEphemeronListFixpoint() {
	for {
		resolvedAny := false
		var unresolved Ref = noRef
		for cur := h.ephemeronHead; cur != noRef; {
			e := Ephemeron{cur.Address()}
			next := e.next()
			if h.keyIsLive(e.Key()) {
				e.setKey(h.scavengePointer(e.Key()))
				e.setValue(h.scavengePointer(e.Value()))
				e.setFinalizer(h.scavengePointer(e.Finalizer()))
				resolvedAny = true
				// Resolved: drop from the worklist, it needs no
				// further attention.
			} else {
				e.setNext(unresolved)
				unresolved = cur
			}
			cur = next
		}
		h.ephemeronHead = unresolved
		h.processToSpace() // values just traced may hold new to-space pointers
		if !resolvedAny {
			break
		}
	}
}

// keyIsLive reports whether r is independently reachable: an
// immediate is always "live" (there is nothing to keep alive), and a
// heap pointer is live if it has already been forwarded to to-space
// by some other root or field visit.
func (h *Heap) keyIsLive(r Ref) bool {
	if !r.IsHeapObject() {
		return true
	}
	addr := r.Address()
	if h.toSpace.contains(addr) {
		return true // already copied by an earlier phase of this scavenge
	}
	if !h.fromSpace.contains(addr) {
		return true
	}
	return isForwarded(objectHeader(addr))
}

// mournEphemeronList disposes of every ephemeron left on the worklist
// once the fixpoint has settled: its key did not survive, so its key,
// value and finalizer slots are set to NilRef, and the finalizer (if non-nil) is
// handed to the configured FinalizerQueue. With no real queue
// installed (the DiscardFinalizers default), the finalizer is simply
// dropped rather than resurrected into to-space for a queue that would
// throw it away anyway.
func (h *Heap) mournEphemeronList() {
	_, discard := h.finalizers.(DiscardFinalizers)
	for cur := h.ephemeronHead; cur != noRef; {
		e := Ephemeron{cur.Address()}
		next := e.next()
		if f := e.Finalizer(); !discard && f != noRef {
			// The finalizer action must itself survive to be run
			// later, even though nothing else references it: copy it
			// (and anything it in turn points to) into to-space
			// before handing it to the queue, rather than leaking out
			// a from-space address that this scavenge is about to
			// recycle.
			if forwarded := h.scavengePointer(f); forwarded != h.nilRef {
				h.processToSpace()
				h.finalizers.Enqueue(forwarded)
			}
		}
		e.setKey(h.nilRef)
		e.setValue(h.nilRef)
		e.setFinalizer(h.nilRef)
		cur = next
	}
	h.ephemeronHead = noRef
}
