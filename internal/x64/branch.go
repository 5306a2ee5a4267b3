package x64

import "github.com/xyproto/jitasm/internal/operand"

// emitJmp encodes an unconditional jump to target. Short form (EB ib) is
// only used when forceShort is set by the caller (spec §3 Instruction
// node: "short-branch preference") — callers request it only for labels
// they know are backward and within 8-bit reach; the root package leaves
// it unset for any label it cannot prove is in range, which always
// produces a correct (if not maximally compact) near encoding.
func emitJmp(out Sink, labels Labels, target operand.LabelID, forceShort bool) {
	if forceShort {
		out.Emit8(0xEB)
		at := out.Reserve(1)
		labels.RecordFixup(operand.FixupRel8, at, target, at+1, 0)
		return
	}
	out.Emit8(0xE9)
	at := out.Reserve(4)
	labels.RecordFixup(operand.FixupRel32, at, target, at+4, 0)
}

// emitJmpIndirect encodes JMP r/m64 (FF /4), used for computed jumps.
func emitJmpIndirect(out Sink, labels Labels, target operand.Operand) {
	if target.Kind == operand.KindMem {
		rexVal, present := rexForMem(operand.Reg{}, target.Mem, false)
		if present {
			out.Emit8(rexVal)
		}
	} else if target.Reg.Index >= 8 {
		out.Emit8(rexBase | rexB)
	}
	out.Emit8(0xFF)
	encodeRM(out, labels, 4, target, 0)
}

// emitJcc encodes a conditional jump (70+cc ib short, or 0F 80+cc id
// near).
func emitJcc(out Sink, labels Labels, cc Cond, target operand.LabelID, forceShort bool) {
	if forceShort {
		out.Emit8(0x70 + uint8(cc))
		at := out.Reserve(1)
		labels.RecordFixup(operand.FixupRel8, at, target, at+1, 0)
		return
	}
	out.Emit8(0x0F)
	out.Emit8(0x80 + uint8(cc))
	at := out.Reserve(4)
	labels.RecordFixup(operand.FixupRel32, at, target, at+4, 0)
}

// emitCall encodes a direct CALL rel32 (E8 id) to target.
func emitCall(out Sink, labels Labels, target operand.LabelID) {
	out.Emit8(0xE8)
	at := out.Reserve(4)
	labels.RecordFixup(operand.FixupRel32, at, target, at+4, 0)
}

// emitCallIndirect encodes CALL r/m64 (FF /2), used to call through a
// register holding a resolved function address (spec §6 FunctionHandle).
func emitCallIndirect(out Sink, labels Labels, target operand.Operand) {
	if target.Kind == operand.KindMem {
		rexVal, present := rexForMem(operand.Reg{}, target.Mem, false)
		if present {
			out.Emit8(rexVal)
		}
	} else if target.Reg.Index >= 8 {
		out.Emit8(rexBase | rexB)
	}
	out.Emit8(0xFF)
	encodeRM(out, labels, 2, target, 0)
}
