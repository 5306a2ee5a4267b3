package regalloc

import (
	"testing"

	"github.com/xyproto/jitasm/internal/abi"
	"github.com/xyproto/jitasm/internal/ir"
	"github.com/xyproto/jitasm/internal/operand"
)

// touchAll appends one instruction per vreg so that every interval's
// Start/End sit at distinct, non-overlapping positions unless forced
// together, giving fine control over overlap in these tests.
func touchAll(b *ir.Builder, regs []operand.Reg) {
	for _, r := range regs {
		b.Inst(0, 0, []operand.Operand{operand.Register(r)}, ir.InstOptions{})
	}
}

// touchAllAtOnce appends a single instruction referencing every vreg, so
// all of their intervals start and end at the same position and are
// therefore simultaneously live.
func touchAllAtOnce(b *ir.Builder, regs []operand.Reg) {
	ops := make([]operand.Operand, len(regs))
	for i, r := range regs {
		ops[i] = operand.Register(r)
	}
	b.Inst(0, 0, ops, ir.InstOptions{})
}

func TestRunAssignsDisjointPhysicalRegisters(t *testing.T) {
	b := ir.NewBuilder()
	r0 := b.NewVReg(operand.ClassGP, 8)
	r1 := b.NewVReg(operand.ClassGP, 8)
	touchAllAtOnce(b, []operand.Reg{r0, r1})

	a := NewAllocator(abi.SystemVAMD64)
	res, err := a.Run(b)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.SpillSlots != 0 {
		t.Fatalf("SpillSlots = %d, want 0 for two overlapping vregs well under pool size", res.SpillSlots)
	}
	if len(res.Intervals) != 2 {
		t.Fatalf("len(Intervals) = %d, want 2", len(res.Intervals))
	}
	iv0, iv1 := res.Intervals[0], res.Intervals[1]
	if !iv0.HasPhys || !iv1.HasPhys {
		t.Fatalf("expected both intervals to get a physical register: %+v %+v", iv0, iv1)
	}
	if iv0.Physical.Class == iv1.Physical.Class && iv0.Physical.Index == iv1.Physical.Index {
		t.Errorf("two simultaneously live vregs were assigned the same physical register %+v", iv0.Physical)
	}
}

// TestRunSpillsWhenPoolExhausted forces more simultaneously live GP
// vregs than SystemVAMD64's register lists hold (9 caller-saved + 6
// callee-saved = 15; the allocatable pool is 14, since RBP is kept out
// as the frame base), and checks that the overflow is recorded as a
// spill rather than returning an error.
func TestRunSpillsWhenPoolExhausted(t *testing.T) {
	b := ir.NewBuilder()
	poolSize := len(abi.SystemVAMD64.CallerSaved) + len(abi.SystemVAMD64.CalleeSaved)
	regs := make([]operand.Reg, poolSize+1)
	for i := range regs {
		regs[i] = b.NewVReg(operand.ClassGP, 8)
	}
	touchAllAtOnce(b, regs)

	a := NewAllocator(abi.SystemVAMD64)
	res, err := a.Run(b)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.SpillSlots == 0 {
		t.Fatalf("SpillSlots = 0, want at least 1 when %d vregs compete for %d registers", len(regs), poolSize)
	}

	spilled := 0
	for _, iv := range res.Intervals {
		if iv.Spilled {
			spilled++
			if iv.HasPhys {
				t.Errorf("vreg %d marked both Spilled and HasPhys", iv.VRegID)
			}
		}
	}
	if spilled == 0 {
		t.Errorf("no interval marked Spilled despite SpillSlots=%d", res.SpillSlots)
	}
}

// TestRunGivesArgVRegItsABIRegister checks Pass 4's argument affinity:
// an arg vreg should land in its own ABI-mandated register when nothing
// else is competing for it.
func TestRunGivesArgVRegItsABIRegister(t *testing.T) {
	b := ir.NewBuilder()
	sig := &ir.FuncSignature{Name: "f", Params: []ir.Param{{Kind: ir.ParamInt, Size: 8}}, HasReturn: true}
	_, params := b.FuncBegin(sig)
	touchAll(b, params)
	b.FuncEnd()

	a := NewAllocator(abi.SystemVAMD64)
	res, err := a.Run(b)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Intervals) != 1 {
		t.Fatalf("len(Intervals) = %d, want 1", len(res.Intervals))
	}
	iv := res.Intervals[0]
	want, _ := abi.SystemVAMD64.IntArg(0)
	if !iv.HasPhys || iv.Physical != want {
		t.Errorf("arg 0 assigned %+v, want its ABI register %+v", iv.Physical, want)
	}
}

// TestRunSkipsUnusedVReg checks that a vreg allocated but never
// referenced by any instruction (no Uses) produces no interval at all.
func TestRunSkipsUnusedVReg(t *testing.T) {
	b := ir.NewBuilder()
	b.NewVReg(operand.ClassGP, 8)

	a := NewAllocator(abi.SystemVAMD64)
	res, err := a.Run(b)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Intervals) != 0 {
		t.Fatalf("len(Intervals) = %d, want 0 for an unreferenced vreg", len(res.Intervals))
	}
}
