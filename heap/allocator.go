package heap

// earlyGrowthNumerator/Denominator implement the "early growth
// heuristic": a scavenge that leaves from-space more than 7/8 full
// immediately grows the heap rather than waiting for the next
// allocation to fail and grow then, trading a little extra memory for
// fewer back-to-back scavenges under steady allocation pressure.
const (
	earlyGrowthNumerator   = 7
	earlyGrowthDenominator = 8
)

// allocateRaw is the single entry point every typed AllocateX helper
// in heap.go funnels through. size is the requested payload size in
// bytes (not yet rounded); cid and hash are stamped into the header.
// It bump-allocates from from-space, trying — in order — a direct
// bump, a scavenge-then-bump, and finally a grow-then-bump, matching
// heap.cc's Heap::Allocate/TryAllocate/Grow chain. A grow that still
// cannot satisfy the request is a FatalSemispaceExhausted error: there
// is no further fallback.
func (h *Heap) allocateRaw(cid ClassId, size int, reason string) (word, error) {
	payload := roundUp(size)
	total := wordSize + payload
	if payload > maxInlineSize {
		total += wordSize // overflow size word
	}
	total = roundUp(total)

	if addr, ok := h.fromSpace.tryBump(total); ok {
		h.initializeFreshObject(addr, cid, payload)
		return addr, nil
	}

	if err := h.Scavenge(reason); err != nil {
		return 0, err
	}
	if addr, ok := h.fromSpace.tryBump(total); ok {
		h.initializeFreshObject(addr, cid, payload)
		return addr, nil
	}

	if err := h.grow(total); err != nil {
		return 0, err
	}
	addr, ok := h.fromSpace.tryBump(total)
	if !ok {
		return 0, fatalf(FatalSemispaceExhausted,
			"cannot satisfy %d-byte allocation even after growth to %d bytes", total, h.fromSpace.Size())
	}
	h.initializeFreshObject(addr, cid, payload)
	return addr, nil
}

func (h *Heap) initializeFreshObject(addr word, cid ClassId, payload int) {
	initializeObject(addr, cid, payload, h.hash.next())
}

// grow replaces both semispaces with larger ones, each big enough to
// hold at least need additional bytes, capped by
// MaxSemispaceCapacity. It is called only when a scavenge has already
// failed to free enough room, and works by running one more Cheney
// pass with a bigger to-space, then making that bigger space (now
// holding the compacted live set) the new from-space.
func (h *Heap) grow(need int) error {
	current := h.fromSpace.Size()
	target := current * 2
	for target < current+need {
		target *= 2
	}
	if target > h.config.MaxSemispaceCapacity {
		target = h.config.MaxSemispaceCapacity
	}
	if target < current+need {
		return fatalf(FatalSemispaceExhausted,
			"grow: need %d bytes but max semispace capacity is %d", need, h.config.MaxSemispaceCapacity)
	}

	if h.config.TraceGrowth || h.config.ReportGC {
		logGrow(h.log, current, target)
	}

	biggerTo, err := newSemispace(h.vm, target)
	if err != nil {
		return err
	}

	oldFrom, oldTo := h.fromSpace, h.toSpace
	h.toSpace = biggerTo
	h.runScavenge("grow")
	_ = oldFrom.free()
	_ = oldTo.free()

	biggerFrom, err := newSemispace(h.vm, target)
	if err != nil {
		// Live set already safely lives in h.fromSpace (the former
		// biggerTo); leaving h.toSpace nil-equivalent here is not
		// survivable, so this is the one place grow itself can fail
		// fatally after already committing the copy.
		return fatalf(FatalSemispaceExhausted, "grow: failed to allocate replacement to-space: %v", err)
	}
	h.toSpace = biggerFrom
	return nil
}
