package heap

import "testing"

func TestEncodeDecodeHeaderRoundTrip(t *testing.T) {
	cases := []struct {
		cid  ClassId
		size int
		hash uint32
	}{
		{CidByteArray, 0, 0},
		{CidArray, 8, 123},
		{CidActivation, 256, maxIdentityHash},
		{CidFirstRegular, maxInlineSize, 7},
	}
	for _, c := range cases {
		h := encodeHeader(c.cid, c.size, c.hash)
		if isForwarded(h) {
			t.Fatalf("encodeHeader(%v): fresh header reports forwarded", c)
		}
		if got := headerCid(h); got != c.cid {
			t.Fatalf("headerCid = %v, want %v", got, c.cid)
		}
		if got := headerHash(h); got != c.hash {
			t.Fatalf("headerHash = %v, want %v", got, c.hash)
		}
		if !headerIsOverflow(h) {
			if got := headerSizeUnits(h) * kObjectAlignment; got != c.size {
				t.Fatalf("headerSizeUnits*align = %d, want %d", got, c.size)
			}
		}
	}
}

func TestHeaderZeroSizeIsNotOverflow(t *testing.T) {
	h := encodeHeader(CidIllegal, 0, 0)
	if headerIsOverflow(h) {
		t.Fatal("a legitimate zero-size object must not be confused with an overflow header")
	}
	if got := headerSizeUnits(h); got != 0 {
		t.Fatalf("headerSizeUnits = %d, want 0", got)
	}
}

func TestForwardingHeaderRoundTrip(t *testing.T) {
	target := word(0x2000)
	fh := forwardingHeader(target)
	if !isForwarded(fh) {
		t.Fatal("forwardingHeader: isForwarded() = false")
	}
	if got := forwardingTarget(fh); got != target {
		t.Fatalf("forwardingTarget() = %#x, want %#x", got, target)
	}
}

func TestForwardingTargetPanicsOnNonForwardedHeader(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("forwardingTarget: expected panic on non-forwarded header")
		}
	}()
	forwardingTarget(encodeHeader(CidArray, 0, 0))
}
