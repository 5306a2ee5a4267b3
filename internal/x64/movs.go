package x64

import "github.com/xyproto/jitasm/internal/operand"

// emitMov encodes MOV between any combination of register, memory, and
// immediate operands (spec §2 x86-64 core data-movement set).
func emitMov(out Sink, labels Labels, dst, src operand.Operand) {
	size := sizeBits(dst)
	w := size == 8
	if lo, hi := opSizePrefix(size); hi {
		out.Emit8(lo)
	}

	switch {
	case dst.Kind == operand.KindReg && src.Kind == operand.KindImm:
		emitMovImm(out, dst.Reg, src.Imm.Value, w, size)
	case src.Kind == operand.KindReg:
		// MR form: 89 /r, dst is r/m (reg or mem), src is the reg field.
		var rexVal uint8
		var present bool
		if dst.Kind == operand.KindReg {
			rexVal, present = rexFor(src.Reg, operand.Reg{}, dst.Reg, w)
		} else {
			rexVal, present = rexForMem(src.Reg, dst.Mem, w)
		}
		if present {
			out.Emit8(rexVal)
		}
		op := uint8(0x89)
		if size == 1 {
			op = 0x88
		}
		out.Emit8(op)
		encodeRM(out, labels, lowBits(src.Reg), dst, 0)
	case dst.Kind == operand.KindReg && src.Kind == operand.KindMem:
		// RM form: 8B /r, dst is the reg field, src is r/m memory.
		rexVal, present := rexForMem(dst.Reg, src.Mem, w)
		if present {
			out.Emit8(rexVal)
		}
		op := uint8(0x8B)
		if size == 1 {
			op = 0x8A
		}
		out.Emit8(op)
		encodeRM(out, labels, lowBits(dst.Reg), src, 0)
	default:
		panic("x64: unsupported MOV operand combination")
	}
}

func emitMovImm(out Sink, dst operand.Reg, imm int64, w bool, size int) {
	if w && (imm < -(1<<31) || imm >= 1<<31) {
		// No 32-bit-immediate form can represent this value: movabs.
		rexVal, _ := rexFor(operand.Reg{}, operand.Reg{}, dst, true)
		out.Emit8(rexVal)
		out.Emit8(0xB8 + lowBits(dst))
		out.Emit64(uint64(imm))
		return
	}
	rexVal, present := rexFor(operand.Reg{}, operand.Reg{}, dst, w)
	if present {
		out.Emit8(rexVal)
	}
	if size == 1 {
		out.Emit8(0xB0 + lowBits(dst))
		out.Emit8(uint8(int8(imm)))
		return
	}
	out.Emit8(0xC7)
	out.Emit8(modrm(modDirect, 0, lowBits(dst)))
	out.Emit32(uint32(int32(imm)))
}

// emitLea encodes LEA dst, [mem] (8D /r).
func emitLea(out Sink, labels Labels, dst operand.Reg, src operand.Mem) {
	w := dst.Size == 8
	rexVal, present := rexForMem(dst, src, w)
	if present {
		out.Emit8(rexVal)
	}
	out.Emit8(0x8D)
	encodeMem(out, labels, lowBits(dst), src, 0)
}

// emitMovzx encodes MOVZX dst, src (0F B6/B7 /r): src is narrower than
// dst and zero-extended.
func emitMovzx(out Sink, labels Labels, dst operand.Reg, src operand.Operand) {
	srcSize := sizeBits(src)
	w := dst.Size == 8
	var rexVal uint8
	var present bool
	if src.Kind == operand.KindReg {
		rexVal, present = rexFor(dst, operand.Reg{}, src.Reg, w)
	} else {
		rexVal, present = rexForMem(dst, src.Mem, w)
	}
	if present {
		out.Emit8(rexVal)
	}
	out.Emit8(0x0F)
	op := uint8(0xB7)
	if srcSize == 1 {
		op = 0xB6
	}
	out.Emit8(op)
	encodeRM(out, labels, lowBits(dst), src, 0)
}

// emitMovsx encodes MOVSX/MOVSXD dst, src: 0F BE/BF for 8/16-bit sources,
// 63 /r (MOVSXD) for a 32-bit source sign-extended to 64 bits.
func emitMovsx(out Sink, labels Labels, dst operand.Reg, src operand.Operand) {
	srcSize := sizeBits(src)
	w := dst.Size == 8
	var rexVal uint8
	var present bool
	if src.Kind == operand.KindReg {
		rexVal, present = rexFor(dst, operand.Reg{}, src.Reg, w)
	} else {
		rexVal, present = rexForMem(dst, src.Mem, w)
	}
	if present {
		out.Emit8(rexVal)
	}
	if srcSize == 4 {
		out.Emit8(0x63)
		encodeRM(out, labels, lowBits(dst), src, 0)
		return
	}
	out.Emit8(0x0F)
	op := uint8(0xBF)
	if srcSize == 1 {
		op = 0xBE
	}
	out.Emit8(op)
	encodeRM(out, labels, lowBits(dst), src, 0)
}

// emitMovq encodes a scalar 64-bit move between a GP/memory operand and
// an XMM register (66 0F 6E/7E for gp<->xmm, F3 0F 7E / 66 0F D6 for
// xmm<->xmm or xmm<->mem), the common "load/store a float64" path.
func emitMovq(out Sink, labels Labels, dst, src operand.Operand) {
	out.Emit8(0x66)
	if dst.Kind == operand.KindReg && dst.Reg.Class == operand.ClassVec {
		rexVal, present := rexForVec(dst.Reg, src)
		if present {
			out.Emit8(rexVal)
		}
		out.Emit8(0x0F)
		out.Emit8(0x6E)
		encodeRM(out, labels, lowBits(dst.Reg), src, 0)
		return
	}
	// xmm -> gp/mem
	rexVal, present := rexForVec(src.Reg, dst)
	if present {
		out.Emit8(rexVal)
	}
	out.Emit8(0x0F)
	out.Emit8(0x7E)
	encodeRM(out, labels, lowBits(src.Reg), dst, 0)
}

func rexForVec(vec operand.Reg, other operand.Operand) (uint8, bool) {
	if other.Kind == operand.KindReg {
		return rexFor(vec, operand.Reg{}, other.Reg, true)
	}
	return rexForMem(vec, other.Mem, true)
}

// emitMovsdss encodes scalar float moves: F2 0F 10/11 (MOVSD), F3 0F
// 10/11 (MOVSS). reverse selects the store form (11, src reg -> dst rm).
func emitMovsdss(out Sink, labels Labels, double bool, dst, src operand.Operand) {
	if double {
		out.Emit8(0xF2)
	} else {
		out.Emit8(0xF3)
	}
	if dst.Kind == operand.KindReg && dst.Reg.Class == operand.ClassVec {
		rexVal, present := rexForVec(dst.Reg, src)
		if present {
			out.Emit8(rexVal)
		}
		out.Emit8(0x0F)
		out.Emit8(0x10)
		encodeRM(out, labels, lowBits(dst.Reg), src, 0)
		return
	}
	rexVal, present := rexForVec(src.Reg, dst)
	if present {
		out.Emit8(rexVal)
	}
	out.Emit8(0x0F)
	out.Emit8(0x11)
	encodeRM(out, labels, lowBits(src.Reg), dst, 0)
}
