package x64

import "github.com/xyproto/jitasm/internal/operand"

// emitLockXadd encodes XADD dst, src (0F C1 /r), meant to be preceded by
// the LOCK prefix for an atomic fetch-and-add. dst is memory, src a
// register that receives memory's prior value.
func emitLockXadd(out Sink, labels Labels, dst, src operand.Operand) {
	size := sizeBits(dst)
	w := size == 8
	if lo, hi := opSizePrefix(size); hi {
		out.Emit8(lo)
	}
	rexVal, present := rexForMem(src.Reg, dst.Mem, w)
	if present {
		out.Emit8(rexVal)
	}
	out.Emit8(0x0F)
	op := uint8(0xC1)
	if size == 1 {
		op = 0xC0
	}
	out.Emit8(op)
	encodeRM(out, labels, lowBits(src.Reg), dst, 0)
}

// emitLockCmpxchg encodes CMPXCHG dst, src (0F B1 /r), meant to be
// preceded by the LOCK prefix for an atomic compare-and-swap against
// the implicit RAX/EAX comparand.
func emitLockCmpxchg(out Sink, labels Labels, dst, src operand.Operand) {
	size := sizeBits(dst)
	w := size == 8
	if lo, hi := opSizePrefix(size); hi {
		out.Emit8(lo)
	}
	rexVal, present := rexForMem(src.Reg, dst.Mem, w)
	if present {
		out.Emit8(rexVal)
	}
	out.Emit8(0x0F)
	op := uint8(0xB1)
	if size == 1 {
		op = 0xB0
	}
	out.Emit8(op)
	encodeRM(out, labels, lowBits(src.Reg), dst, 0)
}
