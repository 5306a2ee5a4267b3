package arm64

import "github.com/xyproto/jitasm/internal/operand"

// Sink is the minimal buffer surface the AArch64 encoder needs. Every
// AArch64 instruction is exactly one 32-bit little-endian word, so unlike
// x64.Sink this never needs Patch8/EmitBytes for instruction bodies —
// only Emit32 and Patch32 for a fixed-size fixup field.
type Sink interface {
	Len() int
	Emit32(v uint32)
	Patch32(offset int, v uint32)
	Reserve(n int) int
	EmitBytes(bs []byte) // literal pool / embedded data only
	Align(pow2 int, mode PadMode)
}

// PadMode mirrors the root package's PadMode; only the text form is ever
// requested here since AArch64 NOP is a fixed 4-byte word.
type PadMode int

const PadAArch64Text PadMode = 0

// Labels is the label-resolution surface the encoder needs.
type Labels interface {
	IsBound(l operand.LabelID) bool
	BoundOffset(l operand.LabelID) int
	RecordFixup(kind operand.FixupKind, at int, target operand.LabelID, nextIP int, addend int64)
	Bind(l operand.LabelID)
}
