package regalloc

import (
	"github.com/xyproto/jitasm/internal/abi"
	"github.com/xyproto/jitasm/internal/arm64"
	"github.com/xyproto/jitasm/internal/ir"
	"github.com/xyproto/jitasm/internal/operand"
	"github.com/xyproto/jitasm/internal/x64"
)

// UsedCalleeSaved returns the subset of the convention's callee-saved
// registers that res.Intervals actually assigned, in the convention's
// declared order, so the prologue only pays for what the function used
// (spec §4.5 Pass 7, adapted from the teacher's GetUsedCalleeSaved).
func UsedCalleeSaved(conv *abi.Convention, res *Result) []operand.Reg {
	used := make(map[[2]uint8]bool)
	for _, iv := range res.Intervals {
		if iv.HasPhys {
			used[[2]uint8{uint8(iv.Physical.Class), iv.Physical.Index}] = true
		}
	}
	var out []operand.Reg
	for _, r := range conv.CalleeSaved {
		if used[[2]uint8{uint8(r.Class), r.Index}] {
			out = append(out, r)
		}
	}
	return out
}

// BuildFrame fills in an abi.Frame describing this function's final
// stack layout once the allocator has run.
func BuildFrame(conv *abi.Convention, res *Result, localsSize int) *abi.Frame {
	offsets, total := spillLayout(res.SpillSlotSizes)
	return &abi.Frame{
		Convention:    conv,
		SpillOffsets:  offsets,
		SpillAreaSize: total,
		SavedRegs:     UsedCalleeSaved(conv, res),
		LocalsSize:    localsSize,
	}
}

// spillLayout packs each spill slot at the first offset that is a
// multiple of its own size, so e.g. a 16-byte vector slot never starts
// in the middle of an 8-byte GP slot's word (spec §4.5 Pass 4 step 4).
func spillLayout(sizes []int) ([]int, int) {
	offsets := make([]int, len(sizes))
	total := 0
	for i, sz := range sizes {
		if rem := total % sz; rem != 0 {
			total += sz - rem
		}
		offsets[i] = total
		total += sz
	}
	return offsets, total
}

// EmitPrologueX64 splices a System V/Win64 x86-64 prologue at the start
// of b: push rbp; mov rbp, rsp; push each used callee-saved register;
// sub rsp, frame-size (spec §5 FuncFrame).
func EmitPrologueX64(b *ir.Builder, frame *abi.Frame) {
	rbp := x64.GP(x64.RBP, 8)
	rsp := x64.GP(x64.RSP, 8)
	push := func(r operand.Reg) {
		b.Inst(x64.ArchTag, int(x64.IPush), []operand.Operand{operand.Register(r)}, ir.InstOptions{})
	}
	push(rbp)
	b.Inst(x64.ArchTag, int(x64.IMov), []operand.Operand{operand.Register(rbp), operand.Register(rsp)}, ir.InstOptions{})
	for _, r := range frame.SavedRegs {
		push(r)
	}
	if size := frame.TotalSize(); size > 0 {
		b.Inst(x64.ArchTag, int(x64.ISub), []operand.Operand{operand.Register(rsp), operand.Immediate(int64(size))}, ir.InstOptions{})
	}
}

// EmitEpilogueX64 splices the matching epilogue: add rsp, frame-size;
// pop each saved register in reverse order; pop rbp; ret.
func EmitEpilogueX64(b *ir.Builder, frame *abi.Frame) {
	rbp := x64.GP(x64.RBP, 8)
	rsp := x64.GP(x64.RSP, 8)
	if size := frame.TotalSize(); size > 0 {
		b.Inst(x64.ArchTag, int(x64.IAdd), []operand.Operand{operand.Register(rsp), operand.Immediate(int64(size))}, ir.InstOptions{})
	}
	for i := len(frame.SavedRegs) - 1; i >= 0; i-- {
		b.Inst(x64.ArchTag, int(x64.IPop), []operand.Operand{operand.Register(frame.SavedRegs[i])}, ir.InstOptions{})
	}
	b.Inst(x64.ArchTag, int(x64.IPop), []operand.Operand{operand.Register(rbp)}, ir.InstOptions{})
	b.Inst(x64.ArchTag, int(x64.IRet), nil, ir.InstOptions{})
}

// EmitPrologueARM64 splices an AAPCS64 prologue: sub sp, sp, #frameSize;
// stp fp, lr, [sp]; mov fp, sp (encoded as add fp, sp, #0); stp each pair
// of used callee-saved registers into the frame (str for an odd last one).
func EmitPrologueARM64(b *ir.Builder, frame *abi.Frame) {
	sp := arm64.GP(arm64.X31, 8)
	fp := arm64.GP(arm64.X29, 8)
	lr := arm64.GP(arm64.X30, 8)
	size := frame.TotalSize() + 16 // +fp/lr pair
	b.Inst(arm64.ArchTag, int(arm64.ISub), []operand.Operand{operand.Register(sp), operand.Register(sp), operand.Immediate(int64(size))}, ir.InstOptions{})
	b.Inst(arm64.ArchTag, int(arm64.IStp), []operand.Operand{operand.Register(fp), operand.Register(lr), operand.Memory(operand.Mem{HasBase: true, Base: sp, Disp: 0})}, ir.InstOptions{})
	b.Inst(arm64.ArchTag, int(arm64.IAdd), []operand.Operand{operand.Register(fp), operand.Register(sp), operand.Immediate(0)}, ir.InstOptions{})
	i := 0
	for ; i+1 < len(frame.SavedRegs); i += 2 {
		disp := int32(16 + i*8)
		b.Inst(arm64.ArchTag, int(arm64.IStp), []operand.Operand{
			operand.Register(frame.SavedRegs[i]), operand.Register(frame.SavedRegs[i+1]),
			operand.Memory(operand.Mem{HasBase: true, Base: sp, Disp: disp}),
		}, ir.InstOptions{})
	}
	if i < len(frame.SavedRegs) {
		// Odd register count: no partner to pair with, so save this one
		// with a plain STR instead of dropping it from the frame.
		disp := int32(16 + i*8)
		b.Inst(arm64.ArchTag, int(arm64.IStr), []operand.Operand{
			operand.Register(frame.SavedRegs[i]),
			operand.Memory(operand.Mem{HasBase: true, Base: sp, Disp: disp}),
		}, ir.InstOptions{})
	}
}

// EmitEpilogueARM64 splices the matching epilogue: ldp each saved pair
// back; ldp fp, lr; add sp, sp, frameSize; ret.
func EmitEpilogueARM64(b *ir.Builder, frame *abi.Frame) {
	sp := arm64.GP(arm64.X31, 8)
	fp := arm64.GP(arm64.X29, 8)
	lr := arm64.GP(arm64.X30, 8)
	size := frame.TotalSize() + 16
	if rem := len(frame.SavedRegs) % 2; rem != 0 {
		// Restore the odd trailing register the prologue saved with a
		// plain STR, matching it with a plain LDR here.
		i := len(frame.SavedRegs) - 1
		disp := int32(16 + i*8)
		b.Inst(arm64.ArchTag, int(arm64.ILdr), []operand.Operand{
			operand.Register(frame.SavedRegs[i]),
			operand.Memory(operand.Mem{HasBase: true, Base: sp, Disp: disp}),
		}, ir.InstOptions{})
	}
	for i := (len(frame.SavedRegs) / 2) * 2 - 2; i >= 0; i -= 2 {
		disp := int32(16 + i*8)
		b.Inst(arm64.ArchTag, int(arm64.ILdp), []operand.Operand{
			operand.Register(frame.SavedRegs[i]), operand.Register(frame.SavedRegs[i+1]),
			operand.Memory(operand.Mem{HasBase: true, Base: sp, Disp: disp}),
		}, ir.InstOptions{})
	}
	b.Inst(arm64.ArchTag, int(arm64.ILdp), []operand.Operand{operand.Register(fp), operand.Register(lr), operand.Memory(operand.Mem{HasBase: true, Base: sp, Disp: 0})}, ir.InstOptions{})
	b.Inst(arm64.ArchTag, int(arm64.IAdd), []operand.Operand{operand.Register(sp), operand.Register(sp), operand.Immediate(int64(size))}, ir.InstOptions{})
	b.Inst(arm64.ArchTag, int(arm64.IRet), nil, ir.InstOptions{})
}
