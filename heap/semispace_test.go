package heap

import "testing"

func TestSemispaceBumpAllocation(t *testing.T) {
	vm := NewVirtualMemory()
	s, err := newSemispace(vm, 4096)
	if err != nil {
		t.Fatalf("newSemispace: %v", err)
	}
	defer s.free()

	addr, ok := s.tryBump(64)
	if !ok {
		t.Fatal("tryBump: expected success on a fresh space")
	}
	if addr != s.Base() {
		t.Fatalf("first allocation address = %#x, want base %#x", addr, s.Base())
	}
	if s.Used() != 64 {
		t.Fatalf("Used() = %d, want 64", s.Used())
	}

	if _, ok := s.tryBump(s.Available() + 1); ok {
		t.Fatal("tryBump: expected failure when request exceeds available space")
	}
}

func TestSemispaceResetReclaimsEntireSpace(t *testing.T) {
	vm := NewVirtualMemory()
	s, err := newSemispace(vm, 256)
	if err != nil {
		t.Fatalf("newSemispace: %v", err)
	}
	defer s.free()

	s.tryBump(256)
	if s.Available() != 0 {
		t.Fatalf("Available() = %d, want 0", s.Available())
	}
	s.reset()
	if s.Available() != 256 {
		t.Fatalf("Available() after reset = %d, want 256", s.Available())
	}
}

func TestSemispaceContains(t *testing.T) {
	vm := NewVirtualMemory()
	s, err := newSemispace(vm, 256)
	if err != nil {
		t.Fatalf("newSemispace: %v", err)
	}
	defer s.free()

	if !s.contains(s.Base()) {
		t.Fatal("contains(Base()) = false")
	}
	if s.contains(s.Limit()) {
		t.Fatal("contains(Limit()) = true, want false (limit is exclusive)")
	}
	if s.contains(s.Base() - 8) {
		t.Fatal("contains(Base()-8) = true")
	}
}
