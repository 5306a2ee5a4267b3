package x64

import "github.com/xyproto/jitasm/internal/operand"

// emitPush encodes PUSH reg/mem/imm (spec §2 x86-64 stack ops; PUSH/POP
// always operate at 64-bit width in long mode regardless of a REX.W bit,
// which does not exist for this opcode family).
func emitPush(out Sink, labels Labels, src operand.Operand) {
	switch src.Kind {
	case operand.KindReg:
		if src.Reg.Index >= 8 {
			out.Emit8(rexBase | rexB)
		}
		out.Emit8(0x50 + lowBits(src.Reg))
	case operand.KindMem:
		rexVal, present := rexForMem(operand.Reg{}, src.Mem, false)
		if present {
			out.Emit8(rexVal)
		}
		out.Emit8(0xFF)
		encodeRM(out, labels, 6, src, 0)
	case operand.KindImm:
		imm := src.Imm.Value
		if imm >= -128 && imm <= 127 {
			out.Emit8(0x6A)
			out.Emit8(uint8(int8(imm)))
		} else {
			out.Emit8(0x68)
			out.Emit32(uint32(int32(imm)))
		}
	default:
		panic("x64: unsupported PUSH operand")
	}
}

// emitPop encodes POP reg/mem.
func emitPop(out Sink, labels Labels, dst operand.Operand) {
	switch dst.Kind {
	case operand.KindReg:
		if dst.Reg.Index >= 8 {
			out.Emit8(rexBase | rexB)
		}
		out.Emit8(0x58 + lowBits(dst.Reg))
	case operand.KindMem:
		rexVal, present := rexForMem(operand.Reg{}, dst.Mem, false)
		if present {
			out.Emit8(rexVal)
		}
		out.Emit8(0x8F)
		encodeRM(out, labels, 0, dst, 0)
	default:
		panic("x64: unsupported POP operand")
	}
}

// emitRet encodes RET (C3) or RET imm16 (C2 iw) when n > 0 (used by
// Microsoft x64 callee-cleanup-free convention it never needs, but kept
// for completeness with hand-written stubs that pop extra stack args).
func emitRet(out Sink, n uint16) {
	if n == 0 {
		out.Emit8(0xC3)
		return
	}
	out.Emit8(0xC2)
	out.Emit16(n)
}
