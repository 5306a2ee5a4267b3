package x64

import "github.com/xyproto/jitasm/internal/operand"

// aluGroup returns the ModR/M.reg "digit" used by both the immediate-form
// opcodes (80/81/83 /digit) and as the group multiplier (digit*8) for the
// register-form opcodes, for the six binary ALU ops the builder exposes
// (spec §2 x86-64 core ALU set).
func aluGroup(id InstID) (digit uint8, ok bool) {
	switch id {
	case IAdd:
		return 0, true
	case IOr:
		return 1, true
	case IAnd:
		return 4, true
	case ISub:
		return 5, true
	case IXor:
		return 6, true
	case ICmp:
		return 7, true
	}
	return 0, false
}

func sizeBits(op operand.Operand) int {
	switch op.Kind {
	case operand.KindReg:
		return op.Reg.Size
	case operand.KindMem:
		return op.Mem.AccessSize
	default:
		return 0
	}
}

// emitALU encodes one of the six two-operand ALU instructions: dst is a
// register or memory operand, src is a register or immediate.
func emitALU(out Sink, labels Labels, id InstID, dst, src operand.Operand) {
	digit, ok := aluGroup(id)
	if !ok {
		panic("x64: not an ALU opcode")
	}
	size := sizeBits(dst)
	w := size == 8

	if lo, hi := opSizePrefix(size); hi {
		out.Emit8(lo)
	}

	switch src.Kind {
	case operand.KindReg:
		regOf := func(o operand.Operand) operand.Reg {
			if o.Kind == operand.KindReg {
				return o.Reg
			}
			return operand.Reg{}
		}
		rexVal, present := rexFor(src.Reg, operand.Reg{}, regOf(dst), w)
		if dst.Kind == operand.KindMem {
			rexVal, present = rexForMem(src.Reg, dst.Mem, w)
		}
		if present {
			out.Emit8(rexVal)
		}
		out.Emit8(opcodeALUReg(digit, size))
		encodeRM(out, labels, lowBits(src.Reg), dst, 0)

	case operand.KindImm:
		var rexVal uint8
		var present bool
		if dst.Kind == operand.KindReg {
			rexVal, present = rexFor(operand.Reg{}, operand.Reg{}, dst.Reg, w)
		} else {
			rexVal, present = rexForMem(operand.Reg{}, dst.Mem, w)
		}
		if present {
			out.Emit8(rexVal)
		}
		imm := src.Imm.Value
		if imm >= -128 && imm <= 127 && size != 1 {
			out.Emit8(0x83)
			encodeRM(out, labels, digit, dst, 1)
			out.Emit8(uint8(int8(imm)))
		} else if size == 1 {
			out.Emit8(0x80)
			encodeRM(out, labels, digit, dst, 1)
			out.Emit8(uint8(int8(imm)))
		} else {
			out.Emit8(0x81)
			encodeRM(out, labels, digit, dst, 4)
			out.Emit32(uint32(int32(imm)))
		}

	default:
		panic("x64: ALU src must be register or immediate")
	}
}

// opcodeALUReg returns the register-form opcode byte (MR encoding: r/m
// destination, reg source), e.g. 0x01 for ADD r/m64, r64.
func opcodeALUReg(digit uint8, size int) uint8 {
	base := digit*8 + 1
	if size == 1 {
		base = digit * 8
	}
	return base
}

// rexForMem builds a REX byte covering a register reg-field operand and a
// memory operand's base/index registers.
func rexForMem(reg operand.Reg, m operand.Mem, w bool) (uint8, bool) {
	index := operand.Reg{}
	base := operand.Reg{}
	if m.HasIndex {
		index = m.Index
	}
	if m.HasBase {
		base = m.Base
	}
	return rexFor(reg, index, base, w)
}

// emitTest encodes TEST dst, src (84/85 /r for reg source, F6/F7 /0 with
// an immediate): unlike the other ALU ops it has no 3-operand-immediate
// short form and always emits a full-width immediate.
func emitTest(out Sink, labels Labels, dst, src operand.Operand) {
	size := sizeBits(dst)
	w := size == 8
	if lo, hi := opSizePrefix(size); hi {
		out.Emit8(lo)
	}
	switch src.Kind {
	case operand.KindReg:
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
		op := uint8(0x85)
		if size == 1 {
			op = 0x84
		}
		out.Emit8(op)
		encodeRM(out, labels, lowBits(src.Reg), dst, 0)
	case operand.KindImm:
		var rexVal uint8
		var present bool
		if dst.Kind == operand.KindReg {
			rexVal, present = rexFor(operand.Reg{}, operand.Reg{}, dst.Reg, w)
		} else {
			rexVal, present = rexForMem(operand.Reg{}, dst.Mem, w)
		}
		if present {
			out.Emit8(rexVal)
		}
		if size == 1 {
			out.Emit8(0xF6)
			encodeRM(out, labels, 0, dst, 1)
			out.Emit8(uint8(int8(src.Imm.Value)))
		} else {
			out.Emit8(0xF7)
			encodeRM(out, labels, 0, dst, 4)
			out.Emit32(uint32(int32(src.Imm.Value)))
		}
	default:
		panic("x64: TEST src must be register or immediate")
	}
}

// emitUnary encodes the single-operand F6/F7 (NOT/NEG) and FE/FF
// (INC/DEC) opcode groups.
func emitUnary(out Sink, labels Labels, id InstID, dst operand.Operand) {
	size := sizeBits(dst)
	w := size == 8
	if lo, hi := opSizePrefix(size); hi {
		out.Emit8(lo)
	}
	var rexVal uint8
	var present bool
	if dst.Kind == operand.KindReg {
		rexVal, present = rexFor(operand.Reg{}, operand.Reg{}, dst.Reg, w)
	} else {
		rexVal, present = rexForMem(operand.Reg{}, dst.Mem, w)
	}
	if present {
		out.Emit8(rexVal)
	}
	switch id {
	case INot, INeg:
		op := uint8(0xF7)
		if size == 1 {
			op = 0xF6
		}
		out.Emit8(op)
		digit := uint8(2)
		if id == INeg {
			digit = 3
		}
		encodeRM(out, labels, digit, dst, 0)
	case IInc, IDec:
		op := uint8(0xFF)
		if size == 1 {
			op = 0xFE
		}
		out.Emit8(op)
		digit := uint8(0)
		if id == IDec {
			digit = 1
		}
		encodeRM(out, labels, digit, dst, 0)
	default:
		panic("x64: not a unary opcode")
	}
}
