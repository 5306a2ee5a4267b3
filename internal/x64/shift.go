package x64

import "github.com/xyproto/jitasm/internal/operand"

// shiftDigit returns the ModR/M.reg digit for the C0/C1/D0-D3 shift group
// (spec §2 x86-64).
func shiftDigit(id InstID) (uint8, bool) {
	switch id {
	case IRol:
		return 0, true
	case IRor:
		return 1, true
	case IShl:
		return 4, true
	case IShr:
		return 5, true
	case ISar:
		return 7, true
	}
	return 0, false
}

// emitShift encodes a shift/rotate: dst is a register or memory operand,
// amount is either an Imm (constant count) or a Reg naming CL.
func emitShift(out Sink, labels Labels, id InstID, dst, amount operand.Operand) {
	digit, ok := shiftDigit(id)
	if !ok {
		panic("x64: not a shift opcode")
	}
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

	switch amount.Kind {
	case operand.KindImm:
		if amount.Imm.Value == 1 {
			op := uint8(0xD1)
			if size == 1 {
				op = 0xD0
			}
			out.Emit8(op)
			encodeRM(out, labels, digit, dst, 0)
			return
		}
		op := uint8(0xC1)
		if size == 1 {
			op = 0xC0
		}
		out.Emit8(op)
		encodeRM(out, labels, digit, dst, 1)
		out.Emit8(uint8(amount.Imm.Value))
	case operand.KindReg: // CL
		op := uint8(0xD3)
		if size == 1 {
			op = 0xD2
		}
		out.Emit8(op)
		encodeRM(out, labels, digit, dst, 0)
	default:
		panic("x64: shift amount must be an immediate or CL")
	}
}
