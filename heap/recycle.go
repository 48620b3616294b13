package heap

// Recycle lists generalize the original VM's RECYCLE_ACTIVATIONS
// optimization (heap.h's AllocateOrRecycleActivation) to any class id:
// a mutator that is about to discard an object of a given shape can
// hand it back to the heap instead of letting the next scavenge
// reclaim it, and a subsequent allocation of the same cid and size can
// reuse its storage directly, skipping both the bump allocation and
// the header initialization of a from-scratch object.
//
// The free list is intrusive, exactly like the class table's: a
// recycled object's first payload word is overwritten with the
// previous list head, and the head is tracked per-cid in
// Heap.recycleLists. It is not a GC root structure: processRoots
// empties every list at the start of a scavenge, so an object still
// queued then is reclaimed like any other unreachable object.
// Between scavenges, forwardRoots keeps the heads up to date across a
// become.

// RecycleList returns the current recycle-list head for cid, or
// NilRef if nothing is queued.
func (h *Heap) RecycleList(cid ClassId) Ref {
	if !h.config.RecycleActivations {
		return h.nilRef
	}
	if head, ok := h.recycleLists[cid]; ok && head != noRef {
		return head
	}
	return h.nilRef
}

// PushRecyclable offers obj (of class id cid) to its recycle list.
// obj must have at least one word of payload; the caller must not use
// obj again except by later popping it back off the same list.
func (h *Heap) PushRecyclable(cid ClassId, obj Ref) {
	if !h.config.RecycleActivations {
		return
	}
	addr := obj.Address()
	storeWord(payloadStart(addr), word(h.recycleListHead(cid)))
	h.recycleLists[cid] = obj
}

// PopRecyclable removes and returns the head of cid's recycle list,
// if any.
func (h *Heap) PopRecyclable(cid ClassId) (Ref, bool) {
	if !h.config.RecycleActivations {
		return 0, false
	}
	head := h.recycleListHead(cid)
	if head == noRef {
		return 0, false
	}
	next := Ref(loadWord(payloadStart(head.Address())))
	h.recycleLists[cid] = next
	return head, true
}

func (h *Heap) recycleListHead(cid ClassId) Ref {
	if head, ok := h.recycleLists[cid]; ok {
		return head
	}
	return noRef
}

// AllocateOrRecycleActivation returns a recycled Activation with
// exactly numLocals locals if one is queued, resetting its fields as
// AllocateActivation initializes them;
// otherwise it allocates a fresh one. This is the named scenario
// RECYCLE_ACTIVATIONS optimizes in the original VM, expressed here in
// terms of the generalized recycle list above.
func (h *Heap) AllocateOrRecycleActivation(numLocals int) (Activation, error) {
	for {
		r, ok := h.PopRecyclable(CidActivation)
		if !ok {
			break
		}
		a := Activation{r.Address()}
		if a.NumLocals() == numLocals {
			a.SetMethod(h.nilRef)
			a.SetSender(h.nilRef)
			a.SetPC(SmallInteger(0))
			for i := 0; i < numLocals; i++ {
				a.SetLocal(i, h.nilRef)
			}
			return a, nil
		}
		// Wrong shape: drop it (do not re-queue) and keep looking.
	}
	return h.AllocateActivation(numLocals)
}
