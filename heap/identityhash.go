package heap

import "math/rand"

// identityHashSource generates the identity-hash field stamped into
// every new object's header. It is seeded, not purely random, so that
// two heaps built from the same Config produce identical hashes given
// identical allocation order — useful for reproducing a become/GC
// trace in a test, a gap the distilled spec left unaddressed.
type identityHashSource struct {
	r *rand.Rand
}

func newIdentityHashSource(seed uint64) *identityHashSource {
	if seed == 0 {
		seed = 0x5eed5eed5eed5eed
	}
	return &identityHashSource{r: rand.New(rand.NewSource(int64(seed)))}
}

func (s *identityHashSource) next() uint32 {
	return uint32(s.r.Uint64() & uint64(maxIdentityHash))
}
