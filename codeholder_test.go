package jitasm

import (
	"errors"
	"testing"
)

func env() Environment { return NewEnvironment(ArchX86_64, OSLinux) }

// TestFinalizeRejectsUnboundLabel checks spec §4.2 step 1: Finalize must
// fail with LabelNotBound when a fixup's target was never bound.
func TestFinalizeRejectsUnboundLabel(t *testing.T) {
	h := NewCodeHolder(env())
	sec := h.TextSection()
	l := h.NewLabel()
	at := sec.Buf.Reserve(4)
	h.RecordFixup(sec, Fixup{At: at, Kind: PatchRel32, Target: l, NextIP: at + 4})

	_, err := h.Finalize()
	if !errors.Is(err, ErrLabelNotBound) {
		t.Fatalf("Finalize() error = %v, want LabelNotBound", err)
	}
}

// TestBindResolvesSameSectionFixup checks that a same-section forward
// reference is patched in place once its label is bound, without waiting
// for Finalize.
func TestBindResolvesSameSectionFixup(t *testing.T) {
	h := NewCodeHolder(env())
	sec := h.TextSection()
	l := h.NewLabel()

	at := sec.Buf.Reserve(4)
	nextIP := sec.Buf.Len()
	h.RecordFixup(sec, Fixup{At: at, Kind: PatchRel32, Target: l, NextIP: nextIP})

	sec.Buf.EmitBytes([]byte{0xAA, 0xBB}) // two bytes between fixup site and label
	if err := h.Bind(l, sec); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	want := int32(sec.Buf.Len() - nextIP)
	got := int32(le32(sec.Buf.Bytes()[at:]))
	if got != want {
		t.Errorf("patched displacement = %d, want %d", got, want)
	}
}

// TestDoubleBindFails enforces the invariant that a label may be bound at
// most once.
func TestDoubleBindFails(t *testing.T) {
	h := NewCodeHolder(env())
	sec := h.TextSection()
	l := h.NewLabel()
	if err := h.Bind(l, sec); err != nil {
		t.Fatalf("first Bind: %v", err)
	}
	err := h.Bind(l, sec)
	if !errors.Is(err, ErrLabelAlreadyBound) {
		t.Fatalf("second Bind error = %v, want LabelAlreadyBound", err)
	}
}

// TestFinalizeResolvesCrossSectionFixup exercises the Finalize-time path:
// a fixup recorded against a label bound in a different section is only
// resolved once final section base addresses are known (spec §9 Open
// Questions: cross-section fixup resolution happens at Finalize).
func TestFinalizeResolvesCrossSectionFixup(t *testing.T) {
	h := NewCodeHolder(env())
	text := h.TextSection()
	rodata := h.Section(".rodata", 8)

	rodata.Buf.EmitBytes([]byte{1, 2, 3, 4})
	l := h.NewLabel()
	if err := h.Bind(l, rodata); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	at := text.Buf.Reserve(4)
	nextIP := text.Buf.Len()
	h.RecordFixup(text, Fixup{At: at, Kind: PatchRipRel32, Target: l, NextIP: nextIP})

	img, err := h.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	wantAddr, ok := img.LabelAddr[l]
	if !ok {
		t.Fatalf("label %d missing from LabelAddr", l)
	}
	gotDisp := int32(le32(img.Bytes[img.TextOffset+at:]))
	wantDisp := int32(wantAddr - (img.TextOffset + nextIP))
	if gotDisp != wantDisp {
		t.Errorf("cross-section displacement = %d, want %d", gotDisp, wantDisp)
	}
}

// TestFinalizeCommitsHolder checks that a finalized holder rejects further
// mutation (spec §3: committed state) by panicking, per committed.go's
// MustNotBeCommitted.
func TestFinalizeCommitsHolder(t *testing.T) {
	h := NewCodeHolder(env())
	if _, err := h.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	l := h.NewLabel()
	defer func() {
		if recover() == nil {
			t.Fatalf("Bind after Finalize should panic")
		}
	}()
	h.Bind(l, h.TextSection())
}
