package arm64

import "github.com/xyproto/jitasm/internal/operand"

// emitB encodes an unconditional branch (0x14000000 | imm26) to target.
func emitB(out Sink, labels Labels, target operand.LabelID) {
	at := out.Reserve(4)
	out.Patch32(at, 0x14000000)
	labels.RecordFixup(operand.FixupAArch64Rel26, at, target, at, 0)
}

// emitBl encodes a branch-with-link (0x94000000 | imm26) to target.
func emitBl(out Sink, labels Labels, target operand.LabelID) {
	at := out.Reserve(4)
	out.Patch32(at, 0x94000000)
	labels.RecordFixup(operand.FixupAArch64Rel26, at, target, at, 0)
}

// emitBcond encodes B.cond (0x54000000 | imm19<<5 | cond).
func emitBcond(out Sink, labels Labels, cc Cond, target operand.LabelID) {
	at := out.Reserve(4)
	out.Patch32(at, 0x54000000|uint32(cc))
	labels.RecordFixup(operand.FixupAArch64Rel19, at, target, at, 0)
}

// emitCbz/emitCbnz encode CBZ/CBNZ Rt, target (0x34000000/0x35000000 |
// sf<<31 | imm19<<5 | Rt).
func emitCbz(out Sink, labels Labels, nonzero bool, rt operand.Reg, target operand.LabelID) {
	base := uint32(0x34000000)
	if nonzero {
		base = 0x35000000
	}
	at := out.Reserve(4)
	out.Patch32(at, base|sf(rt.Size)<<31|uint32(rt.Index))
	labels.RecordFixup(operand.FixupAArch64Rel19, at, target, at, 0)
}

// emitBr/emitBlr/emitRet encode the register-indirect branch forms.
func emitBr(out Sink, rn operand.Reg)  { out.Emit32(0xD61F0000 | uint32(rn.Index)<<5) }
func emitBlr(out Sink, rn operand.Reg) { out.Emit32(0xD63F0000 | uint32(rn.Index)<<5) }
func emitRet(out Sink, rn operand.Reg) { out.Emit32(0xD65F0000 | uint32(rn.Index)<<5) }
