package arm64

import "github.com/xyproto/jitasm/internal/operand"

// emitMovReg encodes MOV Xd, Xm as ORR Xd, XZR, Xm (the canonical AArch64
// register-move idiom — there is no dedicated MOV-register opcode).
func emitMovReg(out Sink, rd, rm operand.Reg) {
	base := uint32(0x2A0003E0)
	word := base | sf(rd.Size)<<31 | uint32(rm.Index)<<16 | uint32(rd.Index)
	out.Emit32(word)
}

// emitMovImm encodes a full 16/32/64-bit immediate load as a MOVZ
// followed by up to three MOVK instructions, skipping all-zero halfwords
// after the first (spec §2 AArch64: "builder emits the minimal MOVZ/MOVK
// sequence for a 64-bit immediate").
func emitMovImm(out Sink, rd operand.Reg, imm uint64) {
	width := 4
	if rd.Size == 8 {
		width = 8
	}
	halfwords := width / 2
	first := true
	for i := 0; i < halfwords; i++ {
		h := uint16(imm >> (16 * i))
		if h == 0 && i != 0 {
			// MOVZ already zeroed every other halfword, so a zero one
			// never needs its own MOVK, regardless of what follows.
			continue
		}
		if first {
			emitMovzk(out, 0xD2800000, rd, h, i)
			first = false
		} else {
			emitMovzk(out, 0xF2800000, rd, h, i)
		}
	}
	if first {
		// imm == 0: MOVZ Xd, #0
		emitMovzk(out, 0xD2800000, rd, 0, 0)
	}
}

func emitMovzk(out Sink, base32 uint32, rd operand.Reg, h uint16, hw int) {
	word := base32 | sf(rd.Size)<<31 | uint32(hw&3)<<21 | uint32(h)<<5 | uint32(rd.Index)
	out.Emit32(word)
}

// emitLdrStr encodes LDR/STR (immediate, unsigned scaled offset): the
// common "load/store a register from [base, #imm]" form the frame/spill
// slots use. rt.Class selects the GP or SIMD&FP opcode family — using the
// GP encoding against a vector register's index would address a
// different, wrong physical register.
func emitLdrStr(out Sink, load bool, rt operand.Reg, m operand.Mem) {
	scale := uint32(3)
	var base uint32
	if rt.Class == operand.ClassVec {
		base = 0xFD400000 // LDR (SIMD&FP), 64-bit D register
		if rt.Size == 4 {
			base = 0xBD400000 // LDR (SIMD&FP), 32-bit S register
			scale = 2
		}
	} else {
		base = 0xF9400000 // LDR 64-bit
		if rt.Size == 4 {
			base = 0xB9400000
			scale = 2
		}
	}
	if !load {
		base &^= 1 << 22 // clear the "opc" load bit: STR variant
	}
	imm12 := uint32(m.Disp) >> scale
	word := base | imm12<<10 | uint32(m.Base.Index)<<5 | uint32(rt.Index)
	out.Emit32(word)
}

// emitAdr encodes ADR Xd, label — a PC-relative address load with a
// ±1MiB range, resolved via a fixup (spec §3 Fixup AArch64 forms cover
// branch displacements; ADR's own 21-bit split immediate uses the same
// FixupAArch64Rel19 slot since both are PC-relative reads at Finalize
// time, differing only in the bit-packing the patch applies — see
// writeDisplacement's AArch64 handling in the root package).
func emitAdr(out Sink, labels Labels, rd operand.Reg, target operand.LabelID) {
	at := out.Reserve(4)
	out.Patch32(at, uint32(rd.Index)&0x1F|0x10000000)
	labels.RecordFixup(operand.FixupAArch64Rel19, at, target, at, 0)
}
