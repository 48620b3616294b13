package heap

import "testing"

func newTestHeap(t *testing.T, capacity int) *Heap {
	t.Helper()
	cfg := Config{
		InitialSemispaceCapacity: capacity,
		MaxSemispaceCapacity:     capacity * 16,
		HandlesCapacity:          16,
	}
	h, err := NewHeap(cfg)
	if err != nil {
		t.Fatalf("NewHeap: %v", err)
	}
	return h
}

func TestAllocateRegularObjectSlotsDefaultToNil(t *testing.T) {
	h := newTestHeap(t, 4096)
	o, err := h.AllocateRegularObject(CidFirstRegular, 3)
	if err != nil {
		t.Fatalf("AllocateRegularObject: %v", err)
	}
	if o.NumSlots() != 3 {
		t.Fatalf("NumSlots() = %d, want 3", o.NumSlots())
	}
	for i := 0; i < 3; i++ {
		if o.Slot(i) != h.NilRef() {
			t.Fatalf("Slot(%d) = %v, want NilRef", i, o.Slot(i))
		}
	}
	o.SetSlot(1, SmallInteger(7))
	if v := o.Slot(1).SmallIntegerValue(); v != 7 {
		t.Fatalf("Slot(1) after SetSlot = %d, want 7", v)
	}
}

// TestScavengeReclaimsDeadCycle builds a two-node cycle reachable from
// no root and confirms it does not survive a scavenge, while a
// separately rooted object does.
func TestScavengeReclaimsDeadCycle(t *testing.T) {
	h := newTestHeap(t, 4096)

	a, _ := h.AllocateRegularObject(CidFirstRegular, 1)
	b, _ := h.AllocateRegularObject(CidFirstRegular, 1)
	a.SetSlot(0, b.Ref())
	b.SetSlot(0, a.Ref())
	// a and b form a cycle but are rooted by nothing.

	live, _ := h.AllocateRegularObject(CidFirstRegular, 0)
	handle := h.NewHandle(live.Ref())

	before := h.CountInstances(CidFirstRegular)
	if before != 3 {
		t.Fatalf("CountInstances before scavenge = %d, want 3", before)
	}

	if err := h.Scavenge("test"); err != nil {
		t.Fatalf("Scavenge: %v", err)
	}

	after := h.CountInstances(CidFirstRegular)
	if after != 1 {
		t.Fatalf("CountInstances after scavenge = %d, want 1 (only the rooted object)", after)
	}
	if handle.Address() == 0 {
		t.Fatal("handle should still resolve to a valid address after scavenge")
	}
}

// TestGrowOnExhaustion forces allocation to exceed a tiny semispace
// and confirms the heap grows rather than failing, as long as the
// live set fits under MaxSemispaceCapacity.
func TestGrowOnExhaustion(t *testing.T) {
	h := newTestHeap(t, 256)
	head, err := h.AllocateRegularObject(CidFirstRegular, 4)
	if err != nil {
		t.Fatalf("AllocateRegularObject: %v", err)
	}
	handle := h.NewHandle(head.Ref())
	// Build a long chain entirely reachable from handle, so nothing a
	// scavenge runs across this loop can reclaim: only growth can make
	// room for it all.
	for i := 0; i < 64; i++ {
		o, err := h.AllocateRegularObject(CidFirstRegular, 4)
		if err != nil {
			t.Fatalf("AllocateRegularObject iteration %d: %v", i, err)
		}
		o.SetSlot(0, *handle)
		*handle = o.Ref()
	}
	if h.Capacity() <= 256 {
		t.Fatalf("expected heap to have grown past its initial 256-byte capacity, got %d", h.Capacity())
	}
	if h.CountInstances(CidFirstRegular) != 65 {
		t.Fatalf("CountInstances = %d, want 65 (the whole chain survived)", h.CountInstances(CidFirstRegular))
	}
}

// TestScavengeReclaimsDeadClass is scenario S7: once a class and every
// instance of it become unreachable, a scavenge must free its cid
// back onto the class table's free list so a later AllocateClassId
// reuses it.
func TestScavengeReclaimsDeadClass(t *testing.T) {
	h := newTestHeap(t, 4096)

	classObj, _ := h.AllocateRegularObject(CidFirstRegular, 0)
	id, err := h.RegisterClass(classObj.Ref())
	if err != nil {
		t.Fatalf("RegisterClass: %v", err)
	}
	if _, err := h.AllocateRegularObject(id, 0); err != nil {
		t.Fatalf("AllocateRegularObject: %v", err)
	}
	// Neither classObj nor its instance is rooted: nothing keeps id alive.

	if err := h.Scavenge("test"); err != nil {
		t.Fatalf("Scavenge: %v", err)
	}

	if entry := h.ClassOf(id); !entry.IsSmallInteger() {
		t.Fatalf("ClassOf(%v) after scavenge = %v, want a freed (SmallInteger) entry", id, entry)
	}

	fresh, _ := h.AllocateRegularObject(CidFirstRegular, 0)
	id2, err := h.RegisterClass(fresh.Ref())
	if err != nil {
		t.Fatalf("RegisterClass: %v", err)
	}
	if id2 != id {
		t.Fatalf("AllocateClassId after reclaim = %v, want reused id %v", id2, id)
	}
}

// TestScavengeKeepsClassOfLiveInstanceAlive confirms the flip side of
// S7: a class with a surviving instance must not be reclaimed.
func TestScavengeKeepsClassOfLiveInstanceAlive(t *testing.T) {
	h := newTestHeap(t, 4096)

	classObj, _ := h.AllocateRegularObject(CidFirstRegular, 0)
	id, err := h.RegisterClass(classObj.Ref())
	if err != nil {
		t.Fatalf("RegisterClass: %v", err)
	}
	inst, err := h.AllocateRegularObject(id, 0)
	if err != nil {
		t.Fatalf("AllocateRegularObject: %v", err)
	}
	handle := h.NewHandle(inst.Ref())

	if err := h.Scavenge("test"); err != nil {
		t.Fatalf("Scavenge: %v", err)
	}

	entry := h.ClassOf(id)
	if entry.IsSmallInteger() {
		t.Fatalf("ClassOf(%v) after scavenge = %v, want the surviving class object", id, entry)
	}
	if objectCid(handle.Address()) != id {
		t.Fatalf("surviving instance's cid = %v, want %v", objectCid(handle.Address()), id)
	}
}

func TestSemispaceExhaustionIsFatal(t *testing.T) {
	h := newTestHeap(t, 64)
	h.config.MaxSemispaceCapacity = 64 // never allowed to grow

	head, err := h.AllocateRegularObject(CidFirstRegular, 1)
	if err != nil {
		t.Fatalf("AllocateRegularObject: %v", err)
	}
	handle := h.NewHandle(head.Ref())

	for i := 0; i < 1000; i++ {
		var o RegularObject
		o, err = h.AllocateRegularObject(CidFirstRegular, 16)
		if err != nil {
			break
		}
		o.SetSlot(0, *handle)
		*handle = o.Ref()
	}
	if err == nil {
		t.Fatal("expected eventual FatalError, got nil")
	}
	fe, ok := err.(*FatalError)
	if !ok {
		t.Fatalf("expected *FatalError, got %T: %v", err, err)
	}
	if fe.Kind != FatalSemispaceExhausted {
		t.Fatalf("Kind = %v, want FatalSemispaceExhausted", fe.Kind)
	}
}
