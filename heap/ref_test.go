package heap

import "testing"

func TestSmallIntegerRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 42, -42, MaxSmallInteger, MinSmallInteger}
	for _, n := range cases {
		r := SmallInteger(n)
		if !r.IsSmallInteger() {
			t.Fatalf("SmallInteger(%d): IsSmallInteger() = false", n)
		}
		if r.IsHeapObject() {
			t.Fatalf("SmallInteger(%d): IsHeapObject() = true", n)
		}
		if got := r.SmallIntegerValue(); got != n {
			t.Fatalf("SmallInteger(%d).SmallIntegerValue() = %d", n, got)
		}
	}
}

func TestSmallIntegerOutOfRange(t *testing.T) {
	if _, ok := TrySmallInteger(MaxSmallInteger + 1); ok {
		t.Fatal("TrySmallInteger: expected failure above MaxSmallInteger")
	}
	if _, ok := TrySmallInteger(MinSmallInteger - 1); ok {
		t.Fatal("TrySmallInteger: expected failure below MinSmallInteger")
	}
}

func TestTagPointerAddressRoundTrip(t *testing.T) {
	addr := word(0x1000)
	r := tagPointer(addr)
	if !r.IsHeapObject() {
		t.Fatal("tagPointer: IsHeapObject() = false")
	}
	if r.IsSmallInteger() {
		t.Fatal("tagPointer: IsSmallInteger() = true")
	}
	if got := r.Address(); got != addr {
		t.Fatalf("Address() = %#x, want %#x", got, addr)
	}
}

func TestTagPointerRejectsUnaligned(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("tagPointer: expected panic on unaligned address")
		}
	}()
	tagPointer(word(0x1001))
}

func TestAddressPanicsOnSmallInteger(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Address: expected panic on small integer")
		}
	}()
	SmallInteger(5).Address()
}
