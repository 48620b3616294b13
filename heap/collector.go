package heap

// Scavenge runs one semispace copying collection: every object
// reachable from a root is copied into to-space, pointers throughout
// the live set are updated to the copies, and the roles of from-space
// and to-space are flipped. reason is a short diagnostic label (the
// kind being allocated when an allocation triggers the scavenge, or a
// caller-supplied string) logged when ReportGC is enabled.
func (h *Heap) Scavenge(reason string) error {
	before := h.fromSpace.Used()
	if h.config.ReportGC {
		logScavengeBegin(h.log, reason)
	}

	h.runScavenge(reason)

	after := h.fromSpace.Used()
	if h.config.ReportGC {
		logScavengeEnd(h.log, reason, before, after, h.fromSpace.Size())
	}

	if h.fromSpace.Size() > 0 {
		ratio := float64(after) / float64(h.fromSpace.Size())
		if ratio > float64(earlyGrowthNumerator)/float64(earlyGrowthDenominator) &&
			h.fromSpace.Size() < h.config.MaxSemispaceCapacity {
			if err := h.grow(0); err != nil {
				if _, fatal := err.(*FatalError); fatal {
					// Early growth is an optimization, not a
					// correctness requirement: if the heap is
					// already at its configured maximum, simply
					// skip it and let the next real allocation
					// failure decide whether growth is mandatory.
					return nil
				}
				return err
			}
		}
	}
	return nil
}

// runScavenge performs the actual Cheney copy: it is shared by
// Scavenge and grow, which differ only in to-space's size.
func (h *Heap) runScavenge(reason string) {
	if h.config.Debug {
		_ = h.toSpace.protect(ReadWrite)
	}
	h.toSpace.reset()

	h.processRoots()
	h.processToSpace()

	h.processEphemeronListFixpoint()
	h.mournEphemeronList()
	h.mournWeakList()
	h.mournClassTable()

	if h.config.Debug {
		_ = h.fromSpace.protect(NoAccess)
	}

	h.fromSpace, h.toSpace = h.toSpace, h.fromSpace
	h.ephemeronHead = noRef
	h.weakHead = noRef

	_ = reason
}

// processRoots scavenges every external root: open handles, and the
// heap's own named roots (the object store, the nil singleton, and the
// current activation, if set). Recycle lists are not roots: they are
// emptied here, so every object still queued on one dies with this
// scavenge.
func (h *Heap) processRoots() {
	h.handles.forEach(func(slot *Ref) {
		*slot = h.scavengePointer(*slot)
	})
	h.objectStore = h.scavengePointer(h.objectStore)
	h.nilRef = h.scavengePointer(h.nilRef)
	if h.activation != noRef {
		h.activation = h.scavengePointer(h.activation)
	}
	clear(h.recycleLists)
}

// mournClassTable reclaims every class-table entry that did not
// survive the scavenge (§4.3 step 7): heap.cc's MournClassTable. An
// entry already relocated to to-space (by the per-object class
// scavenge in scavengeObjectFields, or transitively through some other
// live reference) is left alone; anything still pointing into
// from-space and unforwarded is dead and is returned to the free list.
// Must run before from-space and to-space are flipped, since it
// depends on from-space still denoting the space this scavenge is
// reclaiming.
func (h *Heap) mournClassTable() {
	h.classes.forEach(func(id ClassId, obj Ref) {
		addr := obj.Address()
		if !h.fromSpace.contains(addr) {
			return // already relocated to to-space: alive
		}
		header := objectHeader(addr)
		if isForwarded(header) {
			h.classes.set(id, tagPointer(forwardingTarget(header)))
			return
		}
		h.classes.FreeClassId(id)
	})
}

// processToSpace is the Cheney scan: it walks to-space from the base
// forward, re-reading the frontier on every iteration, so that objects
// appended by scavengePointer during the scan are themselves scanned
// before the pass completes.
func (h *Heap) processToSpace() {
	addr := h.toSpace.Base()
	for addr < h.toSpace.top {
		h.scavengeObjectFields(addr)
		addr += word(objectHeapSize(addr))
	}
}

// scavengeObjectFields visits every traced Ref field of the object at
// addr (already copied into to-space) and updates it in place.
func (h *Heap) scavengeObjectFields(addr word) {
	cid := objectCid(addr)
	h.classes.scavengeEntry(cid, h.scavengePointer)
	switch cid {
	case CidByteArray, CidByteString, CidWideString, CidMediumInteger, CidLargeInteger, CidFloat64:
		return // no traced fields
	case CidForwardingCorpse:
		c := ForwardingCorpse{addr}
		c.setTarget(h.scavengePointer(c.Target()))
	case CidEphemeron, CidWeakArray:
		// Deliberately untraced here: ephemerons and weak arrays are
		// resolved after the ordinary scan completes, by
		// processEphemeronListFixpoint and mournWeakList
		// respectively (see ephemeron.go, weakarray.go). Tracing
		// their key/value/element fields as plain Refs here would
		// defeat conditional-reference and weak-reference semantics.
	case CidClosure:
		c := Closure{addr}
		c.setCode(h.scavengePointer(c.Code()))
		for i := 0; i < c.NumCaptured(); i++ {
			c.SetCaptured(i, h.scavengePointer(c.Captured(i)))
		}
	case CidActivation:
		a := Activation{addr}
		a.SetMethod(h.scavengePointer(a.Method()))
		a.SetSender(h.scavengePointer(a.Sender()))
		for i := 0; i < a.NumLocals(); i++ {
			a.SetLocal(i, h.scavengePointer(a.Local(i)))
		}
	case CidArray:
		arr := Array{addr}
		for i := 0; i < arr.Len(); i++ {
			arr.Set(i, h.scavengePointer(arr.At(i)))
		}
	default:
		o := RegularObject{addr}
		for i := 0; i < o.NumSlots(); i++ {
			o.SetSlot(i, h.scavengePointer(o.Slot(i)))
		}
	}
}

// scavengePointer is heap.cc's ScavengePointer: the single routine
// that decides, for one Ref, whether it needs copying, is already
// forwarded, or needs no action at all (immediates pass through
// untouched).
func (h *Heap) scavengePointer(r Ref) Ref {
	if !r.IsHeapObject() {
		return r
	}
	addr := r.Address()
	if !h.fromSpace.contains(addr) {
		// Already in to-space (this scavenge) or a class-table/
		// handle root visited twice; nothing to do.
		return r
	}
	header := objectHeader(addr)
	if isForwarded(header) {
		return tagPointer(forwardingTarget(header))
	}

	cid := headerCid(header)
	if cid == CidEphemeron {
		// Ephemerons are never eagerly copied by a plain field visit:
		// they are queued and resolved by the ephemeron fixpoint once
		// the rest of the graph has been scanned. Copy the shell now
		// (so it has a to-space address to be queued under) but do
		// not trace its key/value yet.
		newAddr := h.copyObjectShallow(addr)
		h.enqueueEphemeron(tagPointer(newAddr))
		return tagPointer(newAddr)
	}
	if cid == CidWeakArray {
		newAddr := h.copyObjectShallow(addr)
		h.enqueueWeakArray(tagPointer(newAddr))
		return tagPointer(newAddr)
	}

	newAddr := h.copyObjectShallow(addr)
	return tagPointer(newAddr)
}

// copyObjectShallow bump-copies the object at addr (header, overflow
// word, and payload bytes verbatim) into to-space and leaves a
// forwarding header behind in from-space, without yet updating any
// Ref fields the copy contains — that happens later, when
// processToSpace reaches the copy.
func (h *Heap) copyObjectShallow(addr word) word {
	size := objectHeapSize(addr)
	newAddr, ok := h.toSpace.tryBump(size)
	if !ok {
		// to-space is sized to hold the entire live set of from-space
		// by construction (grow always doubles at least), so running
		// out here indicates an accounting bug, not a recoverable
		// condition a caller could retry.
		panic("heap: scavenge: to-space exhausted mid-copy")
	}
	memcopy(newAddr, addr, size)
	storeWord(addr, forwardingHeader(newAddr))
	return newAddr
}
