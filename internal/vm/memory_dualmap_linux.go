//go:build linux

package vm

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// AllocDualMapped allocates size bytes (rounded up to a page) backed by a
// memfd, mapped twice: once RW at writeAddr for the compiler to write
// into, once RX at addr for the caller to execute. Because both mappings
// point at the same physical pages, a write through one is immediately
// visible through the other — no mprotect transition, and therefore no
// moment a single mapping is ever both writable and executable (spec §2
// "dual mapping where the platform forbids writable-executable pages",
// §4.7: "an RW view for the writer and an RX view for the caller").
func AllocDualMapped(size int) (*Block, error) {
	if size <= 0 {
		return nil, fmt.Errorf("vm: size must be positive, got %d", size)
	}
	pageSize := unix.Getpagesize()
	mapped := ((size + pageSize - 1) / pageSize) * pageSize

	fd, err := unix.MemfdCreate("jitasm-dualmap", 0)
	if err != nil {
		return nil, fmt.Errorf("vm: memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(mapped)); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("vm: ftruncate memfd: %w", err)
	}

	rw, err := unix.Mmap(fd, 0, mapped, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("vm: mmap RW view: %w", err)
	}
	rx, err := unix.Mmap(fd, 0, mapped, unix.PROT_READ|unix.PROT_EXEC, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Munmap(rw)
		_ = unix.Close(fd)
		return nil, fmt.Errorf("vm: mmap RX view: %w", err)
	}

	// rx starts false like AllocRW's block: the RX mapping already exists
	// physically, but callers still drive Write/ProtectRX in the same
	// order as the single-mapping path, so IsExecutable tracks
	// "finalized", not "has an executable mapping".
	return &Block{
		addr:      uintptr(unsafe.Pointer(&rx[0])),
		writeAddr: uintptr(unsafe.Pointer(&rw[0])),
		size:      mapped,
		dual:      true,
		memfd:     fd,
	}, nil
}
