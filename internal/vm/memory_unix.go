//go:build linux || darwin || freebsd || openbsd || netbsd

package vm

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// AllocRW maps a fresh anonymous, private, read-write region of at least
// size bytes (rounded up to a page) (spec §6: "allocate RW").
func AllocRW(size int) (*Block, error) {
	if size <= 0 {
		return nil, fmt.Errorf("vm: size must be positive, got %d", size)
	}
	pageSize := unix.Getpagesize()
	mapped := ((size + pageSize - 1) / pageSize) * pageSize

	data, err := unix.Mmap(-1, 0, mapped, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("vm: mmap: %w", err)
	}
	addr := uintptr(unsafe.Pointer(&data[0]))
	return &Block{addr: addr, writeAddr: addr, size: mapped}, nil
}

// ProtectRX flips b from RW to RX in place (spec §6: "mprotect to RX;
// never RW and RX simultaneously" — the transition itself is the one
// moment both bits might appear to overlap from the kernel's view, which
// is why callers must have finished writing before calling this).
func ProtectRX(b *Block) error {
	if b.dual {
		// Both views were already in their final protection at map time;
		// there is no transition to make, only bookkeeping to update.
		b.rx = true
		return nil
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(b.addr)), b.size)
	if err := unix.Mprotect(data, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("vm: mprotect RX: %w", err)
	}
	b.rx = true
	return nil
}

// ProtectRW flips b back to RW, e.g. to patch an already-finalized
// pipeline-cache entry (spec §7 Pipeline cache invalidation path).
func ProtectRW(b *Block) error {
	if b.dual {
		b.rx = false
		return nil
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(b.addr)), b.size)
	if err := unix.Mprotect(data, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("vm: mprotect RW: %w", err)
	}
	b.rx = false
	return nil
}

// Write copies data into the block; only valid while b is RW. A
// dual-mapped block always writes through its separate RW alias, which
// stays writable regardless of the RX view's protection.
func Write(b *Block, data []byte) error {
	if !b.dual && b.rx {
		return fmt.Errorf("vm: cannot write to an RX block")
	}
	if len(data) > b.size {
		return fmt.Errorf("vm: write of %d bytes exceeds block size %d", len(data), b.size)
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(b.writeAddr)), b.size)
	copy(dst, data)
	return nil
}

// Release unmaps b. Calling any other method on b after Release is
// undefined.
func Release(b *Block) error {
	if b.dual {
		return releaseDualMapped(b)
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(b.addr)), b.size)
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("vm: munmap: %w", err)
	}
	return nil
}

// releaseDualMapped tears down both views of a dual-mapped block and
// closes the backing fd. Shared across every unix target this package
// builds on; only the allocation side (AllocDualMapped) differs per
// platform, since memfd_create is Linux-specific.
func releaseDualMapped(b *Block) error {
	rw := unsafe.Slice((*byte)(unsafe.Pointer(b.writeAddr)), b.size)
	rx := unsafe.Slice((*byte)(unsafe.Pointer(b.addr)), b.size)
	errRW := unix.Munmap(rw)
	errRX := unix.Munmap(rx)
	errFD := unix.Close(b.memfd)
	switch {
	case errRW != nil:
		return fmt.Errorf("vm: munmap RW view: %w", errRW)
	case errRX != nil:
		return fmt.Errorf("vm: munmap RX view: %w", errRX)
	case errFD != nil:
		return fmt.Errorf("vm: close memfd: %w", errFD)
	}
	return nil
}
