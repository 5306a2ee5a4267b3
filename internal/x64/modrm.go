package x64

import "github.com/xyproto/jitasm/internal/operand"

// encodeRM emits the ModR/M (+ SIB + displacement) bytes that address rm
// (a register or memory operand) with regField in the ModR/M.reg slot.
// It returns the high bits needed for REX.R (from regField) and the
// caller's REX.X/REX.B are folded in automatically for memory operands.
func encodeRM(out Sink, labels Labels, regField uint8, rm operand.Operand, nextIPDelta int) {
	switch rm.Kind {
	case operand.KindReg:
		out.Emit8(modrm(modDirect, regField, lowBits(rm.Reg)))
	case operand.KindMem:
		encodeMem(out, labels, regField, rm.Mem, nextIPDelta)
	default:
		panic("x64: encodeRM requires a register or memory operand")
	}
}

// encodeMem emits the ModR/M/SIB/disp bytes addressing m. nextIPDelta is
// the number of trailing bytes (e.g. an immediate) that follow the
// displacement field in the final instruction encoding, needed to compute
// the correct RIP-relative base when m.BaseIsPC.
func encodeMem(out Sink, labels Labels, regField uint8, m operand.Mem, nextIPDelta int) {
	if m.BaseIsPC {
		// RIP-relative: ModR/M.rm = 101, mod = 00, disp32 follows.
		out.Emit8(modrm(modIndirect, regField, 5))
		at := out.Reserve(4)
		if m.HasLabel {
			labels.RecordFixup(operand.FixupRipRel32, at, m.Label, at+4+nextIPDelta, int64(m.Disp))
		} else {
			out.Patch32(at, uint32(int32(m.Disp)))
		}
		return
	}

	if !m.HasBase && !m.HasIndex {
		// Absolute 32-bit disp-only addressing: SIB with no base/index.
		out.Emit8(modrm(modIndirect, regField, 4))
		out.Emit8(sib(0, 4, 5))
		out.Emit32(uint32(int32(m.Disp)))
		return
	}

	baseLow := uint8(0)
	if m.HasBase {
		baseLow = lowBits(m.Base)
	}

	needsSIB := m.HasIndex || baseLow == 4 // rsp/r12 as base always needs a SIB
	// rbp/r13 as base with mod=00 means "disp32, no base" in the encoding,
	// so a zero displacement must still be emitted explicitly as disp8.
	mod := dispMod(m.Disp)
	if m.HasBase && baseLow == 5 && mod == modIndirect {
		mod = modIndirectD8
	}

	if needsSIB {
		out.Emit8(modrm(mod, regField, 4))
		idx := uint8(4) // no-index encoding
		scale := uint8(0)
		if m.HasIndex {
			idx = lowBits(m.Index)
			scale = scaleLog2(m.Scale)
		}
		base := baseLow
		if !m.HasBase {
			base = 5 // disp32, no base
			mod = modIndirect
			out.Patch8(out.Len()-1, modrm(mod, regField, 4))
		}
		out.Emit8(sib(scale, idx, base))
	} else {
		out.Emit8(modrm(mod, regField, baseLow))
	}

	switch mod {
	case modIndirectD8:
		out.Emit8(uint8(int8(m.Disp)))
	case modIndirectD32:
		out.Emit32(uint32(int32(m.Disp)))
	case modIndirect:
		if !m.HasBase {
			out.Emit32(uint32(int32(m.Disp)))
		}
	}
}

func dispMod(disp int32) uint8 {
	switch {
	case disp == 0:
		return modIndirect
	case disp >= -128 && disp <= 127:
		return modIndirectD8
	default:
		return modIndirectD32
	}
}
