package heap

import "testing"

func TestEphemeronMournsUnreachableKey(t *testing.T) {
	h := newTestHeap(t, 4096)

	key, _ := h.AllocateRegularObject(CidFirstRegular, 0)
	value, _ := h.AllocateRegularObject(CidFirstRegular, 0)
	e, err := h.AllocateEphemeron(key.Ref(), value.Ref(), h.NilRef())
	if err != nil {
		t.Fatalf("AllocateEphemeron: %v", err)
	}
	// Root only the ephemeron itself; key and value have no other root.
	handle := h.NewHandle(e.Ref())

	if err := h.Scavenge("test"); err != nil {
		t.Fatalf("Scavenge: %v", err)
	}

	survivor := Ephemeron{handle.Address()}
	if survivor.Key() != h.NilRef() {
		t.Fatalf("Key() = %v, want NilRef after key became unreachable", survivor.Key())
	}
	if survivor.Value() != h.NilRef() {
		t.Fatalf("Value() = %v, want NilRef after key became unreachable", survivor.Value())
	}
}

func TestEphemeronKeepsValueWhenKeyReachable(t *testing.T) {
	h := newTestHeap(t, 4096)

	key, _ := h.AllocateRegularObject(CidFirstRegular, 0)
	value, _ := h.AllocateRegularObject(CidFirstRegular, 1)
	value.SetSlot(0, SmallInteger(99))
	e, err := h.AllocateEphemeron(key.Ref(), value.Ref(), h.NilRef())
	if err != nil {
		t.Fatalf("AllocateEphemeron: %v", err)
	}

	ephemeronHandle := h.NewHandle(e.Ref())
	keyHandle := h.NewHandle(key.Ref()) // key independently rooted

	if err := h.Scavenge("test"); err != nil {
		t.Fatalf("Scavenge: %v", err)
	}

	survivor := Ephemeron{ephemeronHandle.Address()}
	if survivor.Key() != *keyHandle {
		t.Fatalf("Key() = %v, want %v (the surviving, relocated key)", survivor.Key(), *keyHandle)
	}
	if !survivor.Value().IsHeapObject() {
		t.Fatal("Value() should still be the heap object, not mourned")
	}
	survivorValue := RegularObject{survivor.Value().Address()}
	if got := survivorValue.Slot(0).SmallIntegerValue(); got != 99 {
		t.Fatalf("Value().Slot(0) = %d, want 99", got)
	}
}

func TestEphemeronFinalizerEnqueuedOnMourn(t *testing.T) {
	h := newTestHeap(t, 4096)
	var queued []Ref
	h.SetFinalizerQueue(finalizerQueueFunc(func(r Ref) { queued = append(queued, r) }))

	key, _ := h.AllocateRegularObject(CidFirstRegular, 0)
	value, _ := h.AllocateRegularObject(CidFirstRegular, 0)
	finalizer, _ := h.AllocateRegularObject(CidFirstRegular, 0)
	e, _ := h.AllocateEphemeron(key.Ref(), value.Ref(), finalizer.Ref())
	h.NewHandle(e.Ref())

	if err := h.Scavenge("test"); err != nil {
		t.Fatalf("Scavenge: %v", err)
	}
	if len(queued) != 1 {
		t.Fatalf("finalizer queue got %d entries, want 1", len(queued))
	}
}

type finalizerQueueFunc func(Ref)

func (f finalizerQueueFunc) Enqueue(r Ref) { f(r) }
