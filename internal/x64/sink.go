package x64

import "github.com/xyproto/jitasm/internal/operand"

// PadMode mirrors the root package's PadMode so Sink.Align can request
// text-appropriate NOP padding without internal/x64 importing the root
// package. The root adapter translates PadX86Text to its own identical
// constant.
type PadMode int

const (
	PadX86Text PadMode = iota
	PadZero
)

// Sink is the minimal byte-buffer surface the encoder needs. The root
// package's CodeBuffer has every method but Align with the same
// signature; the root package's x64Sink adapter embeds it and supplies
// Align, so internal/x64 never imports the root package, which would
// cycle (the root package imports internal/x64).
type Sink interface {
	Len() int
	Emit8(v uint8)
	Emit16(v uint16)
	Emit32(v uint32)
	Emit64(v uint64)
	EmitBytes(bs []byte)
	Reserve(n int) int
	Patch8(offset int, v uint8)
	Patch32(offset int, v uint32)
	Align(pow2 int, mode PadMode)
}

// Labels is the label-resolution surface the encoder needs: whether a
// label is already bound, its offset once bound, and a way to record a
// fixup. The branch encoders do not consult IsBound: they emit the short
// form only when the caller forces it and the near form otherwise, even
// for a bound label in reach. The root package's CodeHolder is adapted to
// this interface at the call site.
type Labels interface {
	IsBound(l operand.LabelID) bool
	// BoundOffset returns the *local, same-section* byte offset of an
	// already-bound label, valid only when IsBound(l) is true and the
	// label lives in the section currently being written (cross-section
	// references always go through RecordFixup and are resolved at
	// Finalize time, since only then are final section base addresses
	// known).
	BoundOffset(l operand.LabelID) int
	RecordFixup(kind operand.FixupKind, at int, target operand.LabelID, nextIP int, addend int64)
	// Bind marks l as bound at the sink's current offset.
	Bind(l operand.LabelID)
}
