package heap

// Protection describes the access mode of a Region. The collector
// uses NoAccess to make a just-scavenged from-space unreadable in
// debug builds, turning a stale root or stray pointer into a page
// fault instead of silent corruption.
type Protection int

const (
	NoAccess Protection = iota
	ReadWrite
)

// Region is a contiguous span of raw memory reserved from the
// operating system (or, on the fallback implementation, from the Go
// heap) for one semispace. Its address does not change for the
// lifetime of the Region; Grow always allocates a brand new, larger
// Region and abandons the old one, matching heap.cc's Grow, which
// never resizes in place.
type Region interface {
	Base() word
	Size() int
	Protect(Protection) error
	Free() error
}

// VirtualMemory is the factory for Regions. Production code uses
// unixVirtualMemory (mmap/mprotect); portability code not running on
// a unix-like OS falls back to fallbackVirtualMemory.
type VirtualMemory interface {
	Allocate(size int) (Region, error)
}
