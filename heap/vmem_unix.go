//go:build unix

package heap

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// unixVirtualMemory reserves semispaces via mmap so NoAccess can be
// enforced for real with mprotect, rather than merely tracked as a
// flag.
type unixVirtualMemory struct{}

// NewVirtualMemory returns the platform's VirtualMemory implementation.
func NewVirtualMemory() VirtualMemory { return unixVirtualMemory{} }

func (unixVirtualMemory) Allocate(size int) (Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("heap: vmem: size must be positive, got %d", size)
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("heap: vmem: mmap %d bytes: %w", size, err)
	}
	return &unixRegion{data: b}, nil
}

type unixRegion struct{ data []byte }

func (r *unixRegion) Base() word { return word(uintptr(unsafe.Pointer(&r.data[0]))) }
func (r *unixRegion) Size() int  { return len(r.data) }

func (r *unixRegion) Protect(p Protection) error {
	prot := unix.PROT_NONE
	if p == ReadWrite {
		prot = unix.PROT_READ | unix.PROT_WRITE
	}
	if err := unix.Mprotect(r.data, prot); err != nil {
		return fmt.Errorf("heap: vmem: mprotect: %w", err)
	}
	return nil
}

func (r *unixRegion) Free() error {
	if r.data == nil {
		return nil
	}
	err := unix.Munmap(r.data)
	r.data = nil
	if err != nil {
		return fmt.Errorf("heap: vmem: munmap: %w", err)
	}
	return nil
}
