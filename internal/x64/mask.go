package x64

import "github.com/xyproto/jitasm/internal/operand"

// emitKmovw encodes KMOVW, the AVX-512 opmask move (VEX.L0.0F.W0 90 /r
// for k<-k or k<-gp, 92 /r for k<-gp32, 93 /r for gp<-k), using the
// two-byte VEX form since opmask registers never need REX.X/B/W or a
// non-zero vvvv here. This covers the common k<-gp32 and k<-k shapes the
// builder's mask predicates need (spec §9 Open Questions: "EVEX masking
// kept to opmask load/compare, not the full broadcast/rounding surface").
func emitKmovw(out Sink, dst, src operand.Reg) {
	opcode := uint8(0x90)
	switch {
	case dst.Class == operand.ClassMask && src.Class == operand.ClassGP:
		opcode = 0x92
	case dst.Class == operand.ClassGP && src.Class == operand.ClassMask:
		opcode = 0x93
	}
	out.Emit8(vex2(src))
	out.Emit8(opcode)
	out.Emit8(modrm(modDirect, lowBits(dst), lowBits(src)))
}

// vex2 builds the two-byte VEX prefix byte (C5 <R vvvv L pp>) for an
// instruction with no second source register (vvvv = 1111) and no
// operand-size prefix (pp = 00).
func vex2(rm operand.Reg) uint8 {
	r := uint8(1)
	if rm.Index >= 8 {
		r = 0 // VEX.R is stored inverted
	}
	return (r << 7) | 0x78 // vvvv=1111, L=0, pp=00
}

func emitKandOr(out Sink, and bool, dst, src1, src2 operand.Reg) {
	opcode := uint8(0x41) // KANDW
	if !and {
		opcode = 0x45 // KORW
	}
	out.Emit8(0xC5) // escape byte for the explicit-VEX form below
	vvvv := (^lowBits(src1)) & 0xF
	r := uint8(1)
	if dst.Index >= 8 {
		r = 0
	}
	out.Emit8((r << 7) | (vvvv << 3))
	out.Emit8(opcode)
	out.Emit8(modrm(modDirect, lowBits(dst), lowBits(src2)))
}
