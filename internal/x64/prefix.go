package x64

import "github.com/xyproto/jitasm/internal/operand"

// REX prefix bits (spec §2 x86-64).
const (
	rexBase uint8 = 0x40
	rexW    uint8 = 0x08
	rexR    uint8 = 0x04
	rexX    uint8 = 0x02
	rexB    uint8 = 0x01
)

// rexFor builds the REX byte for an instruction with an optional
// ModR/M.reg field (reg), an optional SIB.index field (index), and an
// r/m-or-SIB.base field (rm). w forces REX.W (64-bit operand size).
// It returns (rex, present): present is false when no REX byte is needed
// at all, letting the caller skip emitting it entirely.
func rexFor(reg, index, rm operand.Reg, w bool) (uint8, bool) {
	rex := rexBase
	present := w
	if w {
		rex |= rexW
	}
	if reg.Index >= 8 {
		rex |= rexR
		present = true
	}
	if index.Index >= 8 {
		rex |= rexX
		present = true
	}
	if rm.Index >= 8 {
		rex |= rexB
		present = true
	}
	if needsREX(reg) || needsREX(rm) {
		present = true
	}
	return rex, present
}

// modrm packs the ModR/M byte: mod (0-3), reg (low 3 bits of the
// instruction's reg field), rm (low 3 bits of the r/m field).
func modrm(mod, reg, rm uint8) uint8 {
	return (mod << 6) | ((reg & 7) << 3) | (rm & 7)
}

const (
	modIndirect    uint8 = 0 // [rm], or [rm+disp32] when rm==RBP/R13 (disp32 form required)
	modIndirectD8  uint8 = 1 // [rm+disp8]
	modIndirectD32 uint8 = 2 // [rm+disp32]
	modDirect      uint8 = 3 // rm is a register
)

// sib packs a SIB byte: scale is encoded as log2(scale) in bits 6-7.
func sib(scaleLog2, index, base uint8) uint8 {
	return (scaleLog2 << 6) | ((index & 7) << 3) | (base & 7)
}

func scaleLog2(scale uint8) uint8 {
	switch scale {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	case 8:
		return 3
	default:
		return 0
	}
}

// opSizePrefix returns the 0x66 operand-size-override prefix byte and
// whether it is needed, for a 16-bit GP operation.
func opSizePrefix(size int) (uint8, bool) {
	return 0x66, size == 2
}
