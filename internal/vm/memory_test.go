package vm

import "testing"

func TestAllocWriteProtectRoundTrip(t *testing.T) {
	b, err := AllocRW(64)
	if err != nil {
		t.Fatalf("AllocRW: %v", err)
	}
	defer Release(b)

	if b.IsExecutable() {
		t.Fatalf("freshly allocated block reports executable")
	}

	code := []byte{0xC3} // a single RET is enough to prove the bytes land
	if err := Write(b, code); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := ProtectRX(b); err != nil {
		t.Fatalf("ProtectRX: %v", err)
	}
	if !b.IsExecutable() {
		t.Fatalf("block not marked executable after ProtectRX")
	}

	// Never RW and RX at once: writing to an RX block must fail.
	if err := Write(b, code); err == nil {
		t.Fatalf("Write succeeded on an RX block, want an error")
	}
}

func TestProtectRWAllowsWriteAgain(t *testing.T) {
	b, err := AllocRW(64)
	if err != nil {
		t.Fatalf("AllocRW: %v", err)
	}
	defer Release(b)

	if err := ProtectRX(b); err != nil {
		t.Fatalf("ProtectRX: %v", err)
	}
	if err := ProtectRW(b); err != nil {
		t.Fatalf("ProtectRW: %v", err)
	}
	if b.IsExecutable() {
		t.Fatalf("block still reports executable after ProtectRW")
	}
	if err := Write(b, []byte{0x90}); err != nil {
		t.Fatalf("Write after ProtectRW: %v", err)
	}
}

func TestAllocRWRejectsNonPositiveSize(t *testing.T) {
	if _, err := AllocRW(0); err == nil {
		t.Fatalf("AllocRW(0) succeeded, want an error")
	}
	if _, err := AllocRW(-1); err == nil {
		t.Fatalf("AllocRW(-1) succeeded, want an error")
	}
}

func TestWriteRejectsOversizedPayload(t *testing.T) {
	b, err := AllocRW(16)
	if err != nil {
		t.Fatalf("AllocRW: %v", err)
	}
	defer Release(b)

	big := make([]byte, b.Size()+1)
	if err := Write(b, big); err == nil {
		t.Fatalf("Write accepted a payload larger than the block, want an error")
	}
}
