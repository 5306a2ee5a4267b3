package arm64

import "github.com/xyproto/jitasm/internal/operand"

// Register-form data-processing opcodes (sf|op|S pattern baked in, bits
// 30-21), spec §2 AArch64. AND/ORR/EOR here only support the
// shifted-register form: the spec's AArch64 immediate surface is
// intentionally limited to ADD/SUB's 12-bit (optionally LSL#12)
// immediate, the form every prologue/epilogue and index computation
// needs; a logical immediate requires AArch64's bitmask-encoding table,
// which is out of scope (builders materialize such constants through a
// scratch register via MOVZ/MOVK instead).
const (
	opAddReg uint32 = 0x0B000000
	opSubReg uint32 = 0x4B000000
	opAndReg uint32 = 0x0A000000
	opOrrReg uint32 = 0x2A000000
	opEorReg uint32 = 0x4A000000
	opAddImm uint32 = 0x11000000
	opSubImm uint32 = 0x51000000
)

// emitDP2 encodes a three-register data-processing instruction:
// Rd = Rn <op> Rm (spec §2 AArch64 register form).
func emitDP2(out Sink, id InstID, rd, rn, rm operand.Reg) {
	var op uint32
	switch id {
	case IAdd:
		op = opAddReg
	case ISub:
		op = opSubReg
	case IAnd:
		op = opAndReg
	case IOrr:
		op = opOrrReg
	case IEor:
		op = opEorReg
	case ICmp:
		op = opSubReg | (1 << 29) // SUBS, Rd forced to XZR below
	case ITst:
		op = opAndReg | (1 << 29) // ANDS, Rd forced to XZR below
	default:
		panic("arm64: not a register-form DP opcode")
	}
	rdField := uint32(rd.Index)
	if id == ICmp || id == ITst {
		rdField = uint32(X31)
	}
	word := op | sf(rn.Size)<<31 | uint32(rm.Index)<<16 | uint32(rn.Index)<<5 | rdField
	out.Emit32(word)
}

// emitDPImm encodes ADD/SUB (immediate): Rd = Rn +/- imm12, optionally
// shifted left by 12 (shift12 true).
func emitDPImm(out Sink, id InstID, rd, rn operand.Reg, imm uint16, shift12 bool) {
	var op uint32
	switch id {
	case IAdd:
		op = opAddImm
	case ISub:
		op = opSubImm
	case ICmp:
		op = opSubImm | (1 << 29)
	default:
		panic("arm64: not an immediate-form DP opcode")
	}
	rdField := uint32(rd.Index)
	if id == ICmp {
		rdField = uint32(X31)
	}
	var sh uint32
	if shift12 {
		sh = 1
	}
	word := op | sf(rn.Size)<<31 | sh<<22 | uint32(imm&0xFFF)<<10 | uint32(rn.Index)<<5 | rdField
	out.Emit32(word)
}
