package heap

import "testing"

func TestFatalErrorMessage(t *testing.T) {
	err := fatalf(FatalClassTableExhausted, "no ids left at %d entries", 42)
	if err.Kind != FatalClassTableExhausted {
		t.Fatalf("Kind = %v, want FatalClassTableExhausted", err.Kind)
	}
	want := "heap: fatal: class table exhausted: no ids left at 42 entries"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestClassTableExhaustionIsFatal(t *testing.T) {
	// Rather than actually allocating tens of millions of entries to
	// reach maxClassId, pre-fill the table right up to the boundary
	// and confirm the next allocation is the one that fails.
	// make zero-initializes every entry to Ref(0), which is exactly
	// noRef, so no further fill pass is needed.
	tbl := &ClassTable{free: classTableNoFree, entries: make([]Ref, maxClassId+1)}

	_, err := tbl.AllocateClassId()
	if err == nil {
		t.Fatal("expected AllocateClassId to fail once len(entries) > maxClassId")
	}
	fe, ok := err.(*FatalError)
	if !ok {
		t.Fatalf("expected *FatalError, got %T", err)
	}
	if fe.Kind != FatalClassTableExhausted {
		t.Fatalf("Kind = %v, want FatalClassTableExhausted", fe.Kind)
	}
}
