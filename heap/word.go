package heap

import "unsafe"

// word is the machine word used for tagged references and raw header
// storage: a plain 64-bit unsigned integer reinterpreted from and to
// real memory addresses via unsafe.Pointer.
type word = uint64

const wordSize = 8

func init() {
	if unsafe.Sizeof(uintptr(0)) != wordSize {
		panic("heap: only 64-bit platforms are supported")
	}
}

// kObjectAlignment is the alignment, in bytes, of every heap object's
// address. Because addresses are always a multiple of kObjectAlignment,
// their low bits are free for use as a type tag.
const kObjectAlignment = 8
const kObjectAlignmentMask = kObjectAlignment - 1

// roundUp rounds size up to the next multiple of kObjectAlignment.
func roundUp(size int) int {
	return (size + kObjectAlignmentMask) &^ kObjectAlignmentMask
}

func isAligned(addr word) bool {
	return addr&kObjectAlignmentMask == 0
}

// loadWord and storeWord perform raw, untyped word accesses at an
// absolute heap address. The object header doubles as a forwarding
// pointer during collection, so it must be read and written through
// raw bytes rather than through a normal typed view — see the
// header-as-forwarding-pointer design note.
func loadWord(addr word) word {
	return *(*word)(unsafe.Pointer(uintptr(addr)))
}

func storeWord(addr word, v word) {
	*(*word)(unsafe.Pointer(uintptr(addr))) = v
}

func loadByte(addr word) byte {
	return *(*byte)(unsafe.Pointer(uintptr(addr)))
}

func storeByte(addr word, v byte) {
	*(*byte)(unsafe.Pointer(uintptr(addr))) = v
}

func loadUint32(addr word) uint32 {
	return *(*uint32)(unsafe.Pointer(uintptr(addr)))
}

func storeUint32(addr word, v uint32) {
	*(*uint32)(unsafe.Pointer(uintptr(addr))) = v
}

// memcopy copies n bytes from src to dst. Both must be absolute heap
// addresses; the ranges must not overlap (true for every caller: it is
// always a from-space-to-to-space copy during a scavenge).
func memcopy(dst, src word, n int) {
	dstSlice := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(dst))), n)
	srcSlice := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(src))), n)
	copy(dstSlice, srcSlice)
}

func memzero(addr word, n int) {
	s := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), n)
	for i := range s {
		s[i] = 0
	}
}

func memfill(addr word, n int, b byte) {
	s := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), n)
	for i := range s {
		s[i] = b
	}
}
