// Package heap implements the managed heap of the Maggie virtual machine:
// a semispace copying collector with support for ephemerons, weak arrays,
// a mutable class table, and identity-preserving "become".
//
// The package owns object allocation, layout, class association,
// reclamation of unreachable memory, and atomic identity swap. It does
// not implement the interpreter, the bytecode loader, the snapshot
// reader/writer, the event loop, or the lookup cache — those are
// external collaborators that consume this package's allocation,
// root-registration, and collection API.
//
// The heap targets 64-bit platforms only: the object header packs a
// class id, a size, and an identity hash into a single machine word.
package heap
