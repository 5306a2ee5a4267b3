package regalloc

import (
	"fmt"
	"sort"

	"github.com/xyproto/jitasm/internal/abi"
	"github.com/xyproto/jitasm/internal/arm64"
	"github.com/xyproto/jitasm/internal/ir"
	"github.com/xyproto/jitasm/internal/operand"
	"github.com/xyproto/jitasm/internal/x64"
)

// Allocator runs linear-scan register allocation over one function's IR
// (spec §4.5 Register allocator, Passes 1-4; adapted from the teacher's
// RegisterAllocator, generalized from a fixed string-register pool to
// typed operand.Reg pools per RegClass and driven by vreg use-lists
// instead of variable names).
type Allocator struct {
	Convention *abi.Convention
	GPPool     []operand.Reg
	VecPool    []operand.Reg

	intervals      []*LiveInterval
	byVReg         map[int]*LiveInterval
	spillSlots     int
	spillSlotSizes []int // byte size of each slot allocSpillSlot has handed out, indexed by slot id
}

// NewAllocator returns an allocator configured with the given
// convention's non-reserved registers as its allocatable pools: every
// caller-saved and callee-saved integer/vector register the convention
// lists, minus the ones reserved for stack/frame pointer duties (the
// convention's register lists already exclude the stack pointer; the
// frame pointer the spill code addresses slots through, RBP on x86-64
// and X29 on AArch64, is filtered out here).
func NewAllocator(conv *abi.Convention) *Allocator {
	a := &Allocator{Convention: conv, byVReg: make(map[int]*LiveInterval)}
	fp := x64.GP(x64.RBP, 8)
	if conv == abi.AAPCS64 {
		fp = arm64.GP(arm64.X29, 8)
	}
	for _, r := range append(append([]operand.Reg{}, conv.CallerSaved...), conv.CalleeSaved...) {
		if r.Class == fp.Class && r.Index == fp.Index {
			continue
		}
		a.GPPool = append(a.GPPool, r)
	}
	a.VecPool = append(a.VecPool, conv.FloatArgs...)
	return a
}

// Result is everything the rewrite and prologue passes need.
type Result struct {
	Intervals      []*LiveInterval
	SpillSlots     int
	SpillSlotSizes []int // byte size of each spill slot, indexed by slot id
}

// Run executes Pass 1 (position assignment + interval construction from
// vreg use-lists), Pass 2 (sort by start), Pass 3 (linear-scan
// allocation with spilling), and Pass 4 (argument-register affinity).
func (a *Allocator) Run(b *ir.Builder) (*Result, error) {
	a.assignPositions(b)
	a.buildIntervals(b)

	sort.Slice(a.intervals, func(i, j int) bool { return a.intervals[i].Start < a.intervals[j].Start })

	if err := a.scan(); err != nil {
		return nil, err
	}

	return &Result{Intervals: a.intervals, SpillSlots: a.spillSlots, SpillSlotSizes: a.spillSlotSizes}, nil
}

// assignPositions gives every instruction node a dense Pos, and records a
// conservative (read-write) Use at that position for every vreg operand
// it touches, in both register and memory-base/index positions. This
// over-approximates true def/use splitting — it never under-counts a
// live range, only occasionally extends one past where a tighter
// def-use analysis would end it — trading a little allocator precision
// for not needing per-opcode semantic tables in this package (spec §9
// Open Questions: "instruction-level def/use splitting" left as future
// work; Pass 1 here is the conservative fallback that open question
// explicitly allows).
func (a *Allocator) assignPositions(b *ir.Builder) {
	pos := 0
	for id := b.Head(); id != ir.NilNode; id = b.Next(id) {
		n := b.Node(id)
		if n.Kind != ir.KindInst {
			continue
		}
		n.Pos = pos
		for _, op := range n.Operands {
			a.touch(b, op, pos)
		}
		pos++
	}
}

func (a *Allocator) touch(b *ir.Builder, op operand.Operand, pos int) {
	switch op.Kind {
	case operand.KindReg:
		if op.Reg.Virtual {
			b.VReg(op.Reg.VRegID).Uses = append(b.VReg(op.Reg.VRegID).Uses, ir.Use{Pos: pos, Kind: ir.UseReadWrite})
		}
	case operand.KindMem:
		if op.Mem.HasBase && op.Mem.Base.Virtual {
			b.VReg(op.Mem.Base.VRegID).Uses = append(b.VReg(op.Mem.Base.VRegID).Uses, ir.Use{Pos: pos, Kind: ir.UseRead})
		}
		if op.Mem.HasIndex && op.Mem.Index.Virtual {
			b.VReg(op.Mem.Index.VRegID).Uses = append(b.VReg(op.Mem.Index.VRegID).Uses, ir.Use{Pos: pos, Kind: ir.UseRead})
		}
	}
}

func (a *Allocator) buildIntervals(b *ir.Builder) {
	for _, vr := range b.VRegs() {
		if len(vr.Uses) == 0 {
			continue
		}
		start, end := vr.Uses[0].Pos, vr.Uses[0].Pos
		for _, u := range vr.Uses[1:] {
			if u.Pos < start {
				start = u.Pos
			}
			if u.Pos > end {
				end = u.Pos
			}
		}
		iv := &LiveInterval{
			VRegID: vr.ID, Class: vr.Class, Size: vr.Size,
			Start: start, End: end,
			IsArg: vr.IsArg, ArgIndex: vr.ArgIndex, IsRet: vr.IsRet, Hint: vr.Hint,
		}
		a.intervals = append(a.intervals, iv)
		a.byVReg[vr.ID] = iv
	}
}

// scan performs the linear-scan sweep (Pass 3) and argument-affinity
// pass (Pass 4): an argument vreg first tries its own ABI register (free
// or not yet claimed), falling back to ordinary allocation so two
// arguments never collide when one's value has already moved on.
func (a *Allocator) scan() error {
	var active []*LiveInterval
	freeGP := append([]operand.Reg{}, a.GPPool...)
	freeVec := append([]operand.Reg{}, a.VecPool...)

	pool := func(class operand.RegClass) *[]operand.Reg {
		if class == operand.ClassVec {
			return &freeVec
		}
		return &freeGP
	}

	takeReg := func(class operand.RegClass, want *operand.Reg) (operand.Reg, bool) {
		p := pool(class)
		if want != nil {
			for i, r := range *p {
				if r.Class == want.Class && r.Index == want.Index {
					*p = append((*p)[:i], (*p)[i+1:]...)
					return r, true
				}
			}
		}
		if len(*p) == 0 {
			return operand.Reg{}, false
		}
		r := (*p)[len(*p)-1]
		*p = (*p)[:len(*p)-1]
		return r, true
	}

	for _, iv := range a.intervals {
		newActive := active[:0]
		for _, other := range active {
			if other.End < iv.Start {
				*pool(other.Class) = append(*pool(other.Class), other.Physical)
			} else {
				newActive = append(newActive, other)
			}
		}
		active = newActive

		var want *operand.Reg
		if iv.IsArg {
			if r, ok := a.Convention.IntArg(iv.ArgIndex); ok && iv.Class == operand.ClassGP {
				want = &r
			} else if r, ok := a.Convention.FloatArg(iv.ArgIndex); ok && iv.Class == operand.ClassVec {
				want = &r
			}
		}

		if r, ok := takeReg(iv.Class, want); ok {
			iv.Physical = r
			iv.HasPhys = true
			active = append(active, iv)
			continue
		}

		if len(active) == 0 {
			return fmt.Errorf("regalloc: no free register for vreg %d and nothing active to spill", iv.VRegID)
		}
		spillCandidate := active[0]
		for _, c := range active {
			if c.Class == iv.Class && c.End > spillCandidate.End {
				spillCandidate = c
			}
		}
		if spillCandidate.Class == iv.Class && spillCandidate.End > iv.End {
			iv.Physical = spillCandidate.Physical
			iv.HasPhys = true
			spillCandidate.HasPhys = false
			spillCandidate.Spilled = true
			spillCandidate.SpillSlot = a.allocSpillSlot(spillCandidate.Size)
			for i, c := range active {
				if c == spillCandidate {
					active = append(active[:i], active[i+1:]...)
					break
				}
			}
			active = append(active, iv)
		} else {
			iv.Spilled = true
			iv.SpillSlot = a.allocSpillSlot(iv.Size)
		}
	}
	return nil
}

// allocSpillSlot records a new spill slot of the given byte size and
// returns its slot id; the prologue pass turns these sizes into
// size-aligned byte offsets (abi.Frame.SpillOffsets).
func (a *Allocator) allocSpillSlot(size int) int {
	slot := a.spillSlots
	a.spillSlots++
	a.spillSlotSizes = append(a.spillSlotSizes, size)
	return slot
}
