//go:build linux

package vm

import (
	"testing"
	"unsafe"
)

func TestDualMappedWriteIsVisibleThroughRXView(t *testing.T) {
	b, err := AllocDualMapped(64)
	if err != nil {
		t.Fatalf("AllocDualMapped: %v", err)
	}
	defer Release(b)

	if b.IsExecutable() {
		t.Fatalf("freshly allocated dual-mapped block reports executable")
	}

	code := []byte{0xC3}
	if err := Write(b, code); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := ProtectRX(b); err != nil {
		t.Fatalf("ProtectRX: %v", err)
	}
	if !b.IsExecutable() {
		t.Fatalf("block not marked executable after ProtectRX")
	}

	// A dual-mapped block's RX view is a separate mapping of the same
	// physical page, so it must already hold the bytes written through
	// the RW view without any copy step.
	rxView := unsafe.Slice((*byte)(unsafe.Pointer(b.Addr())), len(code))
	if rxView[0] != code[0] {
		t.Fatalf("RX view byte = %#x, want %#x", rxView[0], code[0])
	}

	// Dual mapping means writes stay possible even once "RX": patching a
	// finalized entry never needs ProtectRW first.
	if err := Write(b, []byte{0x90}); err != nil {
		t.Fatalf("Write after ProtectRX on a dual-mapped block: %v", err)
	}
}

func TestDualMappedRejectsNonPositiveSize(t *testing.T) {
	if _, err := AllocDualMapped(0); err == nil {
		t.Fatalf("AllocDualMapped(0) succeeded, want an error")
	}
}
