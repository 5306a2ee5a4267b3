package arm64

import "github.com/xyproto/jitasm/internal/operand"

// Variable-shift opcodes (data-processing, 2-source): Rd = Rn shifted by
// Rm's low 6 (or 5) bits. The spec's shift surface only needs a
// register-held count; a constant-count immediate shift would use the
// UBFM/SBFM bitfield instructions instead, which is out of scope here —
// builders load a constant count into a scratch register first.
const (
	opLslv uint32 = 0x1AC02000
	opLsrv uint32 = 0x1AC02400
	opAsrv uint32 = 0x1AC02800
)

func emitShift(out Sink, id InstID, rd, rn, rm operand.Reg) {
	var op uint32
	switch id {
	case ILsl:
		op = opLslv
	case ILsr:
		op = opLsrv
	case IAsr:
		op = opAsrv
	default:
		panic("arm64: not a shift opcode")
	}
	word := op | sf(rd.Size)<<31 | uint32(rm.Index)<<16 | uint32(rn.Index)<<5 | uint32(rd.Index)
	out.Emit32(word)
}
