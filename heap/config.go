package heap

import "github.com/BurntSushi/toml"

// Config tunes a Heap's memory and diagnostic behavior. It can be
// built directly as a struct literal or loaded from a TOML file with
// LoadConfig, matching the project's existing manifest convention.
type Config struct {
	// InitialSemispaceCapacity is the size, in bytes, of each of the
	// two semispaces when the heap is created.
	InitialSemispaceCapacity int `toml:"initial_semispace_capacity"`
	// MaxSemispaceCapacity bounds how large Grow is allowed to make a
	// semispace. Reaching it without recovering enough free space by
	// scavenging is a FatalSemispaceExhausted error.
	MaxSemispaceCapacity int `toml:"max_semispace_capacity"`
	// HandlesCapacity bounds the number of simultaneously live handles
	// (see handles.go).
	HandlesCapacity int `toml:"handles_capacity"`

	// Debug protects a just-scavenged from-space with NoAccess instead
	// of merely abandoning it, and makes it ReadWrite again when the
	// next scavenge copies into it, at a performance cost.
	Debug bool `toml:"debug"`
	// ReportGC logs a line for every scavenge and grow.
	ReportGC bool `toml:"report_gc"`
	// TraceGrowth logs the old and new semispace size of every grow.
	TraceGrowth bool `toml:"trace_growth"`
	// TraceBecome logs every successful BecomeForward.
	TraceBecome bool `toml:"trace_become"`

	// RecycleActivations enables the RecycleList fast path for
	// Activation objects (see recycle.go). Disabled by default: it is
	// an optimization, not a correctness requirement.
	RecycleActivations bool `toml:"recycle_activations"`

	// IdentityHashSeed seeds the identity-hash generator
	// deterministically; zero means seed from a fixed constant rather
	// than from entropy, so that two heaps built with the same Config
	// assign the same hashes in the same allocation order. Useful for
	// reproducing a become/GC trace in a test.
	IdentityHashSeed uint64 `toml:"identity_hash_seed"`
}

// DefaultConfig mirrors the original VM's literal constants.
func DefaultConfig() Config {
	return Config{
		InitialSemispaceCapacity: 8 * 1024 * 1024,
		MaxSemispaceCapacity:     128 * 1024 * 1024,
		HandlesCapacity:          8,
	}
}

// LoadConfig reads a TOML file and overlays it onto DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
