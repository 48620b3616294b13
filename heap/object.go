package heap

// --- object header layout ---------------------------------------------
//
// Every heap object begins with a single word header, packed as:
//
//	bit    0      forwarded flag
//	bits   1..24  class id            (24 bits)
//	bits  25..44  size field          (20 bits, in units of kObjectAlignment)
//	bits  45..63  identity hash       (19 bits)
//
// The forwarded flag occupies the same bit position a tagged Ref uses
// for its heap-object tag (see ref.go). This is deliberate: once an
// object has been copied to to-space, its from-space header is
// overwritten with the tagged Ref of its new location
// (forwardingHeader), and isForwarded/forwardingTarget read that
// overwritten word back out through the ordinary Ref decoding. A
// forwarding header and a tagged pointer to the same address are
// bit-for-bit identical.
//
// A zero size field is reserved to mean "overflow": the object's true
// size does not fit in 20 bits (more than roughly 1M*8 bytes, about
// 8 MiB, of payload). Because zero is the overflow sentinel, every
// non-overflow size is stored offset by one
// (sizeField == size/kObjectAlignment + 1), so a zero-byte payload is
// stored inline with a field of 1. When the field is zero the
// actual byte size is stored in the word immediately following the
// header, and the object must be read accordingly by every routine
// that walks the heap linearly (the to-space scan, CountInstances,
// CollectInstances).
const (
	headerForwardedBit = 0
	headerCidShift      = 1
	headerCidBits       = 24
	headerSizeShift     = headerCidShift + headerCidBits // 25
	headerSizeBits      = 20
	headerHashShift     = headerSizeShift + headerSizeBits // 45
	headerHashBits      = 19

	headerCidMask  = word(1<<headerCidBits - 1)
	headerSizeMask = word(1<<headerSizeBits - 1)
	headerHashMask = word(1<<headerHashBits - 1)

	// maxInlineSize is the largest payload size, in bytes, the header's
	// size field can represent directly (offset by one to keep zero
	// free as the overflow sentinel); larger objects store their real
	// size in the overflow word.
	maxInlineSize = int(headerSizeMask-1) * kObjectAlignment

	// maxIdentityHash bounds the values handed out by the identity-hash
	// generator (see identityhash.go).
	maxIdentityHash = uint32(headerHashMask)
)

// encodeHeader packs a fresh, non-forwarded header. size is the
// object's payload size in bytes (header excluded), already rounded
// up to kObjectAlignment; hash is the object's identity hash.
func encodeHeader(cid ClassId, size int, hash uint32) word {
	if !cid.valid() {
		panic("heap: encodeHeader: class id out of range")
	}
	if size < 0 || size%kObjectAlignment != 0 {
		panic("heap: encodeHeader: size must be a non-negative multiple of kObjectAlignment")
	}
	sizeField := word(0)
	if size <= maxInlineSize {
		sizeField = (word(size/kObjectAlignment) + 1) & headerSizeMask
	}
	h := word(cid)&headerCidMask<<headerCidShift |
		sizeField<<headerSizeShift |
		word(hash)&headerHashMask<<headerHashShift
	return h
}

func headerCid(h word) ClassId {
	return ClassId((h >> headerCidShift) & headerCidMask)
}

// headerSizeField returns the raw, offset-by-one size field: 0 means
// overflow, any other value N means a payload of (N-1)*kObjectAlignment
// bytes. Most callers want headerSizeUnits instead.
func headerSizeField(h word) int {
	return int((h >> headerSizeShift) & headerSizeMask)
}

// headerSizeUnits returns the payload size in units of
// kObjectAlignment. Panics if the header is an overflow header (the
// real size then lives in the overflow word, not the header).
func headerSizeUnits(h word) int {
	f := headerSizeField(h)
	if f == 0 {
		panic("heap: headerSizeUnits: header is an overflow header")
	}
	return f - 1
}

func headerHash(h word) uint32 {
	return uint32((h >> headerHashShift) & headerHashMask)
}

func headerIsOverflow(h word) bool {
	return headerSizeField(h) == 0
}

// isForwarded reports whether the header at addr has been overwritten
// with a forwarding pointer by a prior scavenge of this same object.
func isForwarded(h word) bool {
	return Ref(h).IsHeapObject()
}

// forwardingTarget decodes a forwarding header into the to-space
// address the object was copied to. Panics if h is not a forwarding
// header.
func forwardingTarget(h word) word {
	if !isForwarded(h) {
		panic("heap: forwardingTarget: header is not forwarded")
	}
	return Ref(h).Address()
}

// forwardingHeader encodes newAddr as a forwarding header: identical
// in bit pattern to a tagged Ref pointing at newAddr.
func forwardingHeader(newAddr word) word {
	return word(tagPointer(newAddr))
}

// --- object accessors ---------------------------------------------------
//
// An "object" here is simply an absolute heap address holding a header
// word, manipulated directly through raw loads/stores rather than a
// typed Go view — see word.go's design note.

// objectHeader reads the raw header word at addr.
func objectHeader(addr word) word { return loadWord(addr) }

// payloadStart returns the address immediately following an object's
// header (and overflow size word, if present).
func payloadStart(addr word) word {
	h := objectHeader(addr)
	if headerIsOverflow(h) {
		return addr + 2*wordSize
	}
	return addr + wordSize
}

// objectHeapSize returns the total size, in bytes, an object occupies
// in the heap including its header (and overflow word, if any).
func objectHeapSize(addr word) int {
	h := objectHeader(addr)
	if headerIsOverflow(h) {
		overflow := loadWord(addr + wordSize)
		return 2*wordSize + int(overflow)
	}
	return wordSize + headerSizeUnits(h)*kObjectAlignment
}

// objectCid returns the class id of the object at addr. Panics if the
// header has been forwarded (the cid is then meaningless; callers must
// check isForwarded first, as the collector always does).
func objectCid(addr word) ClassId {
	h := objectHeader(addr)
	if isForwarded(h) {
		panic("heap: objectCid: object has been forwarded")
	}
	return headerCid(h)
}

func objectIdentityHash(addr word) uint32 {
	return headerHash(objectHeader(addr))
}

func setObjectIdentityHash(addr word, hash uint32) {
	h := objectHeader(addr)
	h = h&^(headerHashMask<<headerHashShift) | word(hash)&headerHashMask<<headerHashShift
	storeWord(addr, h)
}

// setObjectCid patches an existing header's class id field in place,
// leaving its size and hash bits untouched. Used only by become's
// class-table forwarding (§4.8), the instant an instance's class
// itself turns out to have become a corpse that released its cid.
func setObjectCid(addr word, cid ClassId) {
	if !cid.valid() {
		panic("heap: setObjectCid: class id out of range")
	}
	h := objectHeader(addr)
	h = h&^(headerCidMask<<headerCidShift) | word(cid)&headerCidMask<<headerCidShift
	storeWord(addr, h)
}

// initializeObject writes a fresh header (and overflow word, if
// needed) at addr and zeroes its payload. size is the payload size in
// bytes, already rounded up to kObjectAlignment.
func initializeObject(addr word, cid ClassId, size int, hash uint32) {
	h := encodeHeader(cid, size, hash)
	storeWord(addr, h)
	body := addr + wordSize
	if headerIsOverflow(h) {
		storeWord(body, word(size))
		body += wordSize
	}
	memzero(body, size)
}
