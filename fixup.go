package jitasm

import "github.com/xyproto/jitasm/internal/operand"

// PatchKind identifies the shape of a deferred write into already-emitted
// bytes once a referenced label's offset becomes known (spec §3 Fixup).
// It is a direct alias of operand.FixupKind so the encoder packages (which
// cannot import this root package without a cycle) and CodeHolder agree on
// one enum instead of translating between two.
type PatchKind = operand.FixupKind

const (
	PatchRel8         = operand.FixupRel8
	PatchRel32        = operand.FixupRel32
	PatchRipRel32     = operand.FixupRipRel32
	PatchAArch64Rel19 = operand.FixupAArch64Rel19
	PatchAArch64Rel26 = operand.FixupAArch64Rel26
	PatchAbs64        = operand.FixupAbs64
)

// Fixup is a patch request created when an instruction emits a reference
// to an unbound label (spec §3 Fixup).
type Fixup struct {
	Section int
	At      int // byte offset to patch
	Kind    PatchKind
	Target  Label
	// NextIP is the offset used as the PC base for PC-relative kinds: the
	// byte immediately after the patched field, except AArch64 branches
	// where it is the instruction's own start offset.
	NextIP int
	Addend int64
}
