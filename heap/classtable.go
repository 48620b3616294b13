package heap

import "fmt"

// ClassTable maps class ids to their class objects. It lives in
// ordinary Go-managed memory, outside both semispaces — mirroring the
// original VM's native `Object** class_table_` array — so growing or
// walking it never itself triggers a scavenge.
//
// Free slots below the high-water mark form an intrusive free list:
// a free slot holds SmallInteger(nextFreeIndex), terminated by
// SmallInteger(-1). AllocateClassId pops the list before growing the
// table, exactly as heap.cc's AllocateClassId does.
type ClassTable struct {
	entries []Ref
	free    int // index of first free slot, or -1
}

const classTableNoFree = -1

func newClassTable() *ClassTable {
	t := &ClassTable{free: classTableNoFree}
	// Reserve the fixed cids so AllocateClassId never hands one out.
	for i := ClassId(0); i < CidFirstRegular; i++ {
		t.entries = append(t.entries, noRef)
	}
	return t
}

// AllocateClassId reserves a class id without yet associating it with
// a class object (RegisterClass does that separately, matching
// heap.cc's two-step AllocateClassId/RegisterClass split, which lets
// a class be referenced by id before its metadata object exists).
func (t *ClassTable) AllocateClassId() (ClassId, error) {
	if t.free != classTableNoFree {
		id := ClassId(t.free)
		next := t.entries[id]
		if next.SmallIntegerValue() == -1 {
			t.free = classTableNoFree
		} else {
			t.free = int(next.SmallIntegerValue())
		}
		t.entries[id] = noRef
		return id, nil
	}
	id := ClassId(len(t.entries))
	if !id.valid() {
		return 0, fatalf(FatalClassTableExhausted, "class table exhausted at %d entries", len(t.entries))
	}
	t.entries = append(t.entries, noRef)
	return id, nil
}

// RegisterClass associates id with classObj.
func (t *ClassTable) RegisterClass(id ClassId, classObj Ref) {
	t.checkId(id)
	t.entries[id] = classObj
}

// ClassAt returns the class object registered for id.
func (t *ClassTable) ClassAt(id ClassId) Ref {
	t.checkId(id)
	return t.entries[id]
}

// FreeClassId returns id to the free list, for reclamation after a
// scavenge finds no surviving instances and no surviving reference to
// the class object itself (see collector.go's mournClassTable, which
// calls this automatically every scavenge; an embedder may also call
// it directly to reclaim a class id it knows by other means to be
// dead).
func (t *ClassTable) FreeClassId(id ClassId) {
	t.checkId(id)
	if id < CidFirstRegular {
		panic("heap: FreeClassId: cannot free a fixed class id")
	}
	next := SmallInteger(-1)
	if t.free != classTableNoFree {
		next = SmallInteger(int64(t.free))
	}
	t.entries[id] = next
	t.free = int(id)
}

func (t *ClassTable) checkId(id ClassId) {
	if int(id) >= len(t.entries) {
		panic(fmt.Sprintf("heap: class table: id %d out of range (len %d)", id, len(t.entries)))
	}
}

// forEach calls f for every occupied (non-free, non-fixed-reserved)
// slot. Used by the collector's class-table scavenge and forwarding
// passes.
func (t *ClassTable) forEach(f func(id ClassId, obj Ref)) {
	for i, e := range t.entries {
		if ClassId(i) < CidFirstRegular {
			continue
		}
		if e.IsSmallInteger() {
			continue // free-list link, not a live entry
		}
		f(ClassId(i), e)
	}
}

func (t *ClassTable) set(id ClassId, obj Ref) {
	t.checkId(id)
	t.entries[id] = obj
}

// scavengeEntry applies the collector's scavengePointer to the entry
// at id in place: the §4.4 "each scanned object also scavenges its
// class" step. A class stays alive exactly as long as some scanned
// object of it (or some other live reference) keeps it reachable;
// registration in the table is not by itself a strong root.
func (t *ClassTable) scavengeEntry(id ClassId, scavenge func(Ref) Ref) {
	if int(id) >= len(t.entries) {
		return
	}
	t.entries[id] = scavenge(t.entries[id])
}

// idOf reports the cid obj is currently registered under, if any,
// resolving every entry through resolve first so that entries not yet
// visited by the current pass compare correctly against an already-
// resolved obj. Used only by become's class-table forwarding (§4.8) to
// tell a never-registered become target apart from one already
// registered under another cid.
func (t *ClassTable) idOf(obj Ref, resolve func(Ref) Ref) (ClassId, bool) {
	for i, e := range t.entries {
		if ClassId(i) < CidFirstRegular || e.IsSmallInteger() {
			continue
		}
		if resolve(e) == obj {
			return ClassId(i), true
		}
	}
	return 0, false
}
