package arm64

import "github.com/xyproto/jitasm/internal/operand"

// emitStp/emitLdp encode STP/LDP (signed offset form), the pair
// instruction the prologue/epilogue uses to save/restore two
// callee-saved registers per memory access (spec §5 FuncFrame).
func emitStp(out Sink, rt1, rt2 operand.Reg, base operand.Reg, disp int32) {
	out.Emit32(pairWord(0x29000000, rt1, rt2, base, disp))
}

func emitLdp(out Sink, rt1, rt2 operand.Reg, base operand.Reg, disp int32) {
	out.Emit32(pairWord(0x29400000, rt1, rt2, base, disp))
}

func pairWord(base32 uint32, rt1, rt2, baseReg operand.Reg, disp int32) uint32 {
	opc := uint32(0) // 32-bit variant opc field
	if rt1.Size == 8 {
		opc = 2
	}
	scale := uint32(2)
	if rt1.Size == 8 {
		scale = 3
	}
	imm7 := uint32(disp>>scale) & 0x7F
	return base32 | opc<<30 | imm7<<15 | uint32(rt2.Index)<<10 | uint32(baseReg.Index)<<5 | uint32(rt1.Index)
}
