package arm64

import "github.com/xyproto/jitasm/internal/operand"

const (
	opMadd uint32 = 0x1B000000
	opSdiv uint32 = 0x1AC00C00
	opUdiv uint32 = 0x1AC00800
)

// emitMul encodes MUL Xd, Xn, Xm as MADD Xd, Xn, Xm, XZR (there is no
// dedicated three-register MUL opcode on AArch64).
func emitMul(out Sink, rd, rn, rm operand.Reg) {
	word := opMadd | sf(rd.Size)<<31 | uint32(rm.Index)<<16 | uint32(X31)<<10 | uint32(rn.Index)<<5 | uint32(rd.Index)
	out.Emit32(word)
}

func emitDiv(out Sink, signed bool, rd, rn, rm operand.Reg) {
	op := opUdiv
	if signed {
		op = opSdiv
	}
	word := op | sf(rd.Size)<<31 | uint32(rm.Index)<<16 | uint32(rn.Index)<<5 | uint32(rd.Index)
	out.Emit32(word)
}
