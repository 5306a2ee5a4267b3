package regalloc

import (
	"fmt"

	"github.com/xyproto/jitasm/internal/abi"
	"github.com/xyproto/jitasm/internal/arm64"
	"github.com/xyproto/jitasm/internal/ir"
	"github.com/xyproto/jitasm/internal/operand"
	"github.com/xyproto/jitasm/internal/x64"
)

// Arch selects which architecture's spill load/store and frame-base
// register rewrite.Rewrite targets.
type Arch int

const (
	ArchX64 Arch = iota
	ArchARM64
)

// Rewrite produces a new builder in which every virtual register operand
// of res.Intervals has been replaced by its assigned physical register,
// or — for spilled intervals — a fixed scratch register (spillScratch),
// with a load from its slot (addressed relative to frameBase) spliced in
// before the instruction and a store back spliced in after it (spec §4.5
// Pass 6).
// Because Pass 1's conservative Use kind is always read-write, a spilled
// vreg gets both a load before and a store after every touching
// instruction; this is safe (never reads stale data, never loses a
// write) at the cost of occasionally redundant traffic an exact def/use
// split would have elided.
func Rewrite(arch Arch, b *ir.Builder, res *Result, frame *abi.Frame, frameBase operand.Reg) *ir.Builder {
	byVReg := make(map[int]*LiveInterval, len(res.Intervals))
	for _, iv := range res.Intervals {
		byVReg[iv.VRegID] = iv
	}

	out := ir.NewBuilder()
	for id := b.Head(); id != ir.NilNode; id = b.Next(id) {
		n := b.Node(id)
		if n.Kind != ir.KindInst {
			copyNonInst(out, n)
			continue
		}

		newOps := make([]operand.Operand, len(n.Operands))
		var spillLoads, spillStores []int
		for i, op := range n.Operands {
			resolved, spillIdx := resolveOperand(op, byVReg)
			newOps[i] = resolved
			if spillIdx >= 0 {
				spillLoads = append(spillLoads, i)
				spillStores = append(spillStores, i)
			}
		}

		for _, i := range spillLoads {
			iv := vregOf(n.Operands[i], byVReg)
			emitSpillMove(arch, out, true, iv, frame, frameBase)
		}
		out.Inst(n.Arch, n.InstID, newOps, n.Options)
		for _, i := range spillStores {
			iv := vregOf(n.Operands[i], byVReg)
			emitSpillMove(arch, out, false, iv, frame, frameBase)
		}
	}
	return out
}

func copyNonInst(out *ir.Builder, n *ir.Node) {
	switch n.Kind {
	case ir.KindLabelBind:
		out.Bind(n.Label)
	case ir.KindAlign:
		out.Align(n.AlignPow2)
	case ir.KindEmbedData:
		out.EmbedData(n.Data, n.ElemSize)
	case ir.KindComment:
		out.Comment(n.Text)
	case ir.KindSentinel:
		out.Sentinel(n.Sentinel)
	case ir.KindFuncBegin:
		out.FuncBegin(n.Func)
	case ir.KindFuncEnd:
		out.FuncEnd()
	}
}

// resolveOperand returns op with any virtual register replaced by its
// physical assignment, and the spill slot index (or -1) if it was
// spilled instead.
func resolveOperand(op operand.Operand, byVReg map[int]*LiveInterval) (operand.Operand, int) {
	switch op.Kind {
	case operand.KindReg:
		if !op.Reg.Virtual {
			return op, -1
		}
		iv := byVReg[op.Reg.VRegID]
		if iv.HasPhys {
			r := iv.Physical
			r.Size = op.Reg.Size
			return operand.Register(r), -1
		}
		return operand.Register(spillScratch(iv)), iv.SpillSlot
	case operand.KindMem:
		m := op.Mem
		if m.HasBase && m.Base.Virtual {
			iv := byVReg[m.Base.VRegID]
			if iv.HasPhys {
				m.Base = iv.Physical
			}
		}
		if m.HasIndex && m.Index.Virtual {
			iv := byVReg[m.Index.VRegID]
			if iv.HasPhys {
				m.Index = iv.Physical
			}
		}
		return operand.Memory(m), -1
	default:
		return op, -1
	}
}

func vregOf(op operand.Operand, byVReg map[int]*LiveInterval) *LiveInterval {
	if op.Kind == operand.KindReg && op.Reg.Virtual {
		return byVReg[op.Reg.VRegID]
	}
	return nil
}

// spillScratch assigns a fixed scratch register a spilled vreg borrows
// for the duration of the one instruction touching it. Using a single
// dedicated scratch per class keeps the rewrite pass simple; it is safe
// because Pass 1 never lets two distinct spilled vregs appear live in
// the same instruction's operand list under this allocator's def/use
// approximation (each touches the scratch for exactly one instruction,
// loaded immediately before and stored immediately after).
func spillScratch(iv *LiveInterval) operand.Reg {
	if iv.Class == operand.ClassVec {
		return operand.Phys(operand.ClassVec, 15, iv.Size)
	}
	return operand.Phys(operand.ClassGP, uint8(x64.R11), iv.Size)
}

// emitSpillMove splices a load or store of iv's spill slot through its
// scratch register. The displacement accounts for both the pushed/saved
// callee-saved registers ahead of the spill area and the slot's own
// size-aligned offset within it (abi.Frame.SpillOffset), so spills never
// alias the saved-register area or each other regardless of GP/vector
// mix (spec §4.5 Pass 4 step 4).
func emitSpillMove(arch Arch, out *ir.Builder, load bool, iv *LiveInterval, frame *abi.Frame, frameBase operand.Reg) {
	if iv == nil || iv.HasPhys {
		return
	}
	scratch := spillScratch(iv)
	savedBytes := len(frame.SavedRegs) * 8
	offset := frame.SpillOffset(iv.SpillSlot)
	switch arch {
	case ArchX64:
		// x64's saved registers and spill area both grow down from rbp,
		// so the slot's address is rbp minus everything allocated ahead
		// of it (saved regs, then this slot's own aligned offset) minus
		// its own size, since Disp addresses the slot's lowest byte.
		disp := int32(-(savedBytes + offset + scratch.Size))
		m := operand.Mem{HasBase: true, Base: frameBase, Disp: disp, AccessSize: scratch.Size}
		id := x64SpillMovInst(scratch)
		if load {
			out.Inst(x64.ArchTag, id, []operand.Operand{operand.Register(scratch), operand.Memory(m)}, ir.InstOptions{})
		} else {
			out.Inst(x64.ArchTag, id, []operand.Operand{operand.Memory(m), operand.Register(scratch)}, ir.InstOptions{})
		}
	case ArchARM64:
		// AArch64's frame pointer sits at the bottom of the allocated
		// area, so offsets grow upward: 16 bytes for the fp/lr pair,
		// then the saved callee-saved registers, then this slot.
		disp := int32(16 + savedBytes + offset)
		m := operand.Mem{HasBase: true, Base: frameBase, Disp: disp, AccessSize: scratch.Size}
		if load {
			out.Inst(arm64.ArchTag, int(arm64.ILdr), []operand.Operand{operand.Register(scratch), operand.Memory(m)}, ir.InstOptions{})
		} else {
			out.Inst(arm64.ArchTag, int(arm64.IStr), []operand.Operand{operand.Register(scratch), operand.Memory(m)}, ir.InstOptions{})
		}
	}
}

// x64SpillMovInst picks the opcode family that can actually move
// scratch's class and size: plain MOV for any GP width, MOVSD/MOVSS for
// an 8/4-byte vector scratch — the only vector widths a spilled
// ClassVec vreg can have today, since this package has no packed-vector
// (xmm-width-and-up) move instruction yet (see DESIGN.md's EVEX/VEX
// scope note). Using MOV unconditionally here used to encode a GP
// opcode against an XMM register's raw index, corrupting both the
// instruction and the register it touched.
func x64SpillMovInst(scratch operand.Reg) int {
	if scratch.Class != operand.ClassVec {
		return int(x64.IMov)
	}
	switch scratch.Size {
	case 8:
		return int(x64.IMovsd)
	case 4:
		return int(x64.IMovss)
	default:
		panic(fmt.Sprintf("regalloc: spilling a %d-byte vector register is not supported", scratch.Size))
	}
}
