//go:build !unix

package heap

import (
	"fmt"
	"unsafe"
)

// fallbackVirtualMemory backs a Region with an ordinary Go byte slice.
// Protect is advisory only on this implementation — there is no
// portable non-unix equivalent of mprotect available here — so
// NoAccess is only recorded as a flag; accesses are not checked
// against it. The slice is kept alive for the Region's
// lifetime by the Region value itself, so the Go garbage collector
// never reclaims the memory out from under raw pointers into it.
type fallbackVirtualMemory struct{}

// NewVirtualMemory returns the platform's VirtualMemory implementation.
func NewVirtualMemory() VirtualMemory { return fallbackVirtualMemory{} }

func (fallbackVirtualMemory) Allocate(size int) (Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("heap: vmem: size must be positive, got %d", size)
	}
	return &fallbackRegion{data: make([]byte, size), prot: ReadWrite}, nil
}

type fallbackRegion struct {
	data []byte
	prot Protection
}

func (r *fallbackRegion) Base() word {
	if len(r.data) == 0 {
		return 0
	}
	return word(uintptr(unsafe.Pointer(&r.data[0])))
}

func (r *fallbackRegion) Size() int { return len(r.data) }

func (r *fallbackRegion) Protect(p Protection) error {
	r.prot = p
	return nil
}

func (r *fallbackRegion) Free() error {
	r.data = nil
	return nil
}
