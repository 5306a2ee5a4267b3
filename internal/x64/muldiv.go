package x64

import "github.com/xyproto/jitasm/internal/operand"

// emitMulDiv encodes the one-operand F6/F7 group members MUL, DIV, IDIV,
// which implicitly read/write (E)AX:(E)DX.
func emitMulDiv(out Sink, labels Labels, id InstID, src operand.Operand) {
	size := sizeBits(src)
	w := size == 8
	if lo, hi := opSizePrefix(size); hi {
		out.Emit8(lo)
	}
	var rexVal uint8
	var present bool
	if src.Kind == operand.KindReg {
		rexVal, present = rexFor(operand.Reg{}, operand.Reg{}, src.Reg, w)
	} else {
		rexVal, present = rexForMem(operand.Reg{}, src.Mem, w)
	}
	if present {
		out.Emit8(rexVal)
	}
	op := uint8(0xF7)
	if size == 1 {
		op = 0xF6
	}
	out.Emit8(op)
	var digit uint8
	switch id {
	case IMul:
		digit = 4
	case IDiv:
		digit = 6
	case IIdiv:
		digit = 7
	default:
		panic("x64: not a MUL/DIV opcode")
	}
	encodeRM(out, labels, digit, src, 0)
}

// emitImul2 encodes the two-operand IMUL form (0F AF /r): dst *= src,
// dst must be a register (the reg field), src a register or memory.
func emitImul2(out Sink, labels Labels, dst operand.Reg, src operand.Operand) {
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
	out.Emit8(0xAF)
	encodeRM(out, labels, lowBits(dst), src, 0)
}

// emitImul3 encodes the three-operand IMUL form (69/6B /r id/ib):
// dst = src * imm.
func emitImul3(out Sink, labels Labels, dst operand.Reg, src operand.Operand, imm int64) {
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
	if imm >= -128 && imm <= 127 {
		out.Emit8(0x6B)
		encodeRM(out, labels, lowBits(dst), src, 1)
		out.Emit8(uint8(int8(imm)))
	} else {
		out.Emit8(0x69)
		encodeRM(out, labels, lowBits(dst), src, 4)
		out.Emit32(uint32(int32(imm)))
	}
}
