package heap

// BecomeForward gives every object in old the identity of the
// corresponding object in neu: after it returns (true, nil), every
// live pointer that used to resolve to old[i] resolves to neu[i]
// instead, for every i. old and neu must be the same length and
// contain only heap objects (never small integers, which have no
// address to overwrite).
//
// This is a one-way become: old[i] stops being a distinct object and
// becomes a forwarding corpse permanently redirecting to neu[i];
// neu[i] itself is untouched. A caller wanting PrimordialSoup's
// two-way become (A and B swap identities) can get it by calling this
// twice with the operands' roles reversed against two freshly
// allocated intermediate objects — this package only implements the
// primitive one-way forward, matching spec.md's ForwardingCorpse
// design.
//
// On precondition failure the heap is left completely unmodified: the
// whole operand list is validated before any corpse is written.
func (h *Heap) BecomeForward(old, neu []Ref) (bool, error) {
	if len(old) != len(neu) {
		return false, ErrBecomeLengthMismatch
	}
	for i := range old {
		if old[i].IsImmediate() || neu[i].IsImmediate() {
			return false, ErrBecomeImmediateOperand
		}
	}

	for i, o := range old {
		h.becomeOne(o, neu[i])
	}

	h.forwardRoots()
	remap := h.forwardClassTable()
	h.forwardFromSpace(remap)
	if h.lookupCache != nil {
		h.lookupCache.Clear()
	}
	if h.config.TraceBecome {
		logBecome(h.log, len(old))
	}
	return true, nil
}

// becomeOne overwrites the object at old's address with a forwarding
// corpse targeting neu, after first transferring old's identity hash
// onto neu (§4.7 step 1: the surviving object adopts the forwarded-
// from object's identity, not its own). The corpse is stamped with
// old's original payload size (not the corpse's own minimal size) so
// that every linear walk over the space — CountInstances,
// CollectInstances, the next scavenge's to-space scan — continues to
// step over it correctly.
func (h *Heap) becomeOne(old, neu Ref) {
	addr := old.Address()
	payloadSize := int(word(objectHeapSize(addr)) - (payloadStart(addr) - addr))
	hash := objectIdentityHash(addr)
	setObjectIdentityHash(neu.Address(), hash)
	initializeObject(addr, CidForwardingCorpse, payloadSize, hash)
	ForwardingCorpse{addr}.setTarget(neu)
}

// forwardPointer chases a (possibly chained) forwarding corpse to its
// ultimate target. Non-heap-object Refs, and heap objects that are not
// corpses, pass through unchanged.
func (h *Heap) forwardPointer(r Ref) Ref {
	if !r.IsHeapObject() {
		return r
	}
	addr := r.Address()
	if objectCid(addr) != CidForwardingCorpse {
		return r
	}
	return h.forwardPointer(ForwardingCorpse{addr}.Target())
}

func (h *Heap) forwardRoots() {
	h.handles.forEach(func(slot *Ref) {
		*slot = h.forwardPointer(*slot)
	})
	h.objectStore = h.forwardPointer(h.objectStore)
	if h.activation != noRef {
		h.activation = h.forwardPointer(h.activation)
	}
	for cid, head := range h.recycleLists {
		h.recycleLists[cid] = h.forwardPointer(head)
	}
}

// forwardClassTable resolves §4.8: distinct from ordinary class-table
// mourning, this handles the case where a class *object itself*
// became a corpse. For each such entry i, let newClass be the
// (possibly chained) become target:
//   - if newClass is not currently registered under any cid, it
//     simply adopts the freed cid i outright;
//   - if newClass is already registered under some other cid, cid i is
//     released to the free list, and every instance still tagged with
//     i must have its header patched to the surviving cid — the
//     returned map records that rewrite for forwardFromSpace to apply.
//   - entry i itself is cleared before the lookup, so the corpse in
//     slot i (which resolves to newClass) never counts as newClass
//     being registered under i.
func (h *Heap) forwardClassTable() map[ClassId]ClassId {
	remap := make(map[ClassId]ClassId)
	h.classes.forEach(func(id ClassId, obj Ref) {
		if objectCid(obj.Address()) != CidForwardingCorpse {
			h.classes.set(id, h.forwardPointer(obj))
			return
		}
		newClass := h.forwardPointer(obj)
		h.classes.set(id, noRef)
		if newId, ok := h.classes.idOf(newClass, h.forwardPointer); ok {
			h.classes.FreeClassId(id)
			remap[id] = newId
		} else {
			h.classes.set(id, newClass)
		}
	})
	return remap
}

// forwardFromSpace walks every live object and forwards every Ref
// field it holds, including the fields ordinary scavenging leaves
// untraced (ephemeron key/value/finalizer, weak-array elements):
// become renames identities outright, so it must not let a stale
// pointer to a just-forwarded corpse survive anywhere in the heap. It
// also applies remap (see forwardClassTable) to patch the header cid
// of every instance whose class released its id during this become.
func (h *Heap) forwardFromSpace(remap map[ClassId]ClassId) {
	h.fromSpace.forEachObject(func(addr word) {
		if newCid, ok := remap[objectCid(addr)]; ok {
			setObjectCid(addr, newCid)
		}
		h.forwardObjectFields(addr)
	})
}

func (h *Heap) forwardObjectFields(addr word) {
	switch objectCid(addr) {
	case CidByteArray, CidByteString, CidWideString, CidMediumInteger, CidLargeInteger, CidFloat64:
		return
	case CidForwardingCorpse:
		c := ForwardingCorpse{addr}
		c.setTarget(h.forwardPointer(c.Target()))
	case CidEphemeron:
		e := Ephemeron{addr}
		e.setKey(h.forwardPointer(e.Key()))
		e.setValue(h.forwardPointer(e.Value()))
		e.setFinalizer(h.forwardPointer(e.Finalizer()))
	case CidWeakArray:
		w := WeakArray{addr}
		for i := 0; i < w.Len(); i++ {
			w.Set(i, h.forwardPointer(w.At(i)))
		}
	case CidClosure:
		c := Closure{addr}
		c.setCode(h.forwardPointer(c.Code()))
		for i := 0; i < c.NumCaptured(); i++ {
			c.SetCaptured(i, h.forwardPointer(c.Captured(i)))
		}
	case CidActivation:
		a := Activation{addr}
		a.SetMethod(h.forwardPointer(a.Method()))
		a.SetSender(h.forwardPointer(a.Sender()))
		for i := 0; i < a.NumLocals(); i++ {
			a.SetLocal(i, h.forwardPointer(a.Local(i)))
		}
	case CidArray:
		arr := Array{addr}
		for i := 0; i < arr.Len(); i++ {
			arr.Set(i, h.forwardPointer(arr.At(i)))
		}
	default:
		o := RegularObject{addr}
		for i := 0; i < o.NumSlots(); i++ {
			o.SetSlot(i, h.forwardPointer(o.Slot(i)))
		}
	}
}
