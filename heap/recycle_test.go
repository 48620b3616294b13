package heap

import "testing"

func TestRecycleListReusesMatchingShape(t *testing.T) {
	cfg := Config{InitialSemispaceCapacity: 4096, MaxSemispaceCapacity: 65536, HandlesCapacity: 8, RecycleActivations: true}
	h, err := NewHeap(cfg)
	if err != nil {
		t.Fatalf("NewHeap: %v", err)
	}

	a, err := h.AllocateOrRecycleActivation(2)
	if err != nil {
		t.Fatalf("AllocateOrRecycleActivation: %v", err)
	}
	addr := a.addr
	h.PushRecyclable(CidActivation, a.Ref())

	b, err := h.AllocateOrRecycleActivation(2)
	if err != nil {
		t.Fatalf("AllocateOrRecycleActivation: %v", err)
	}
	if b.addr != addr {
		t.Fatalf("AllocateOrRecycleActivation did not reuse the recycled object: got addr %#x, want %#x", b.addr, addr)
	}
}

func TestRecycleListSkipsMismatchedShape(t *testing.T) {
	cfg := Config{InitialSemispaceCapacity: 4096, MaxSemispaceCapacity: 65536, HandlesCapacity: 8, RecycleActivations: true}
	h, err := NewHeap(cfg)
	if err != nil {
		t.Fatalf("NewHeap: %v", err)
	}

	a, _ := h.AllocateOrRecycleActivation(2)
	h.PushRecyclable(CidActivation, a.Ref())

	b, err := h.AllocateOrRecycleActivation(5) // different shape: must not reuse a
	if err != nil {
		t.Fatalf("AllocateOrRecycleActivation: %v", err)
	}
	if b.addr == a.addr {
		t.Fatal("AllocateOrRecycleActivation reused a recycled object of the wrong shape")
	}
	if b.NumLocals() != 5 {
		t.Fatalf("NumLocals() = %d, want 5", b.NumLocals())
	}
}

func TestRecycleDisabledByDefault(t *testing.T) {
	h := newTestHeap(t, 4096) // RecycleActivations defaults to false
	a, _ := h.AllocateOrRecycleActivation(2)
	h.PushRecyclable(CidActivation, a.Ref())
	if h.RecycleList(CidActivation) != h.NilRef() {
		t.Fatal("RecycleList should report NilRef when RecycleActivations is disabled")
	}
}
