package x64

import "github.com/xyproto/jitasm/internal/operand"

// Physical x86-64 general-purpose register encodings (spec §2 x86-64:
// "ModR/M, SIB, REX.*, VEX, EVEX"). Index is the raw 4-bit encoding
// (0-15); REX.B/REX.R/REX.X contribute the fifth bit for r8-r15.
const (
	RAX uint8 = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// GP builds a general-purpose physical register operand of the given
// byte width (1, 2, 4, or 8).
func GP(index uint8, size int) operand.Reg { return operand.Phys(operand.ClassGP, index, size) }

// Vec builds an XMM/YMM/ZMM physical register operand; size selects the
// width class (16=XMM, 32=YMM, 64=ZMM) used to choose legacy/VEX/EVEX form.
func Vec(index uint8, size int) operand.Reg { return operand.Phys(operand.ClassVec, index, size) }

// Mask builds an AVX-512 opmask register operand (k0-k7).
func Mask(index uint8) operand.Reg { return operand.Phys(operand.ClassMask, index, 8) }

// needsREX reports whether encoding this register requires at least a
// bare REX prefix: any r8-r15 register, or an 8-bit access to
// spl/bpl/sil/dil (which otherwise collide with ah/ch/dh/bh).
func needsREX(r operand.Reg) bool {
	if r.Index >= 8 {
		return true
	}
	return r.Size == 1 && (r.Index == RSP || r.Index == RBP || r.Index == RSI || r.Index == RDI)
}

// lowBits returns the low 3 bits of a register's encoding, the part that
// fits directly into ModR/M reg/rm or SIB base/index fields.
func lowBits(r operand.Reg) uint8 { return r.Index & 7 }

// highBit returns the register's 4th encoding bit (0 or 1), which becomes
// REX.R/X/B depending on the field it extends.
func highBit(r operand.Reg) uint8 {
	if r.Index >= 8 {
		return 1
	}
	return 0
}
