package regalloc

import (
	"testing"

	"github.com/xyproto/jitasm/internal/abi"
	"github.com/xyproto/jitasm/internal/ir"
	"github.com/xyproto/jitasm/internal/operand"
	"github.com/xyproto/jitasm/internal/x64"
)

func TestSpillLayoutAlignsVectorSlotsToTheirOwnSize(t *testing.T) {
	// An 8-byte GP slot followed by a 16-byte vector slot must pad up to
	// a 16-byte-aligned offset rather than packing the vector slot right
	// after the GP one's 8 bytes.
	offsets, total := spillLayout([]int{8, 16})
	if offsets[0] != 0 || offsets[1] != 16 {
		t.Fatalf("offsets = %v, want [0 16]", offsets)
	}
	if total != 32 {
		t.Fatalf("total = %d, want 32", total)
	}
}

func TestSpillLayoutNoPaddingWhenAlreadyAligned(t *testing.T) {
	offsets, total := spillLayout([]int{8, 8, 16, 4})
	want := []int{0, 8, 16, 32}
	for i, o := range want {
		if offsets[i] != o {
			t.Errorf("offsets[%d] = %d, want %d", i, offsets[i], o)
		}
	}
	if total != 36 {
		t.Errorf("total = %d, want 36", total)
	}
}

func TestX64SpillMovInstDispatchesByClassAndSize(t *testing.T) {
	gp := operand.Phys(operand.ClassGP, uint8(x64.R11), 8)
	if id := x64SpillMovInst(gp); id != int(x64.IMov) {
		t.Errorf("GP scratch dispatched to InstID %d, want IMov", id)
	}
	vec8 := operand.Phys(operand.ClassVec, 15, 8)
	if id := x64SpillMovInst(vec8); id != int(x64.IMovsd) {
		t.Errorf("8-byte vector scratch dispatched to InstID %d, want IMovsd", id)
	}
	vec4 := operand.Phys(operand.ClassVec, 15, 4)
	if id := x64SpillMovInst(vec4); id != int(x64.IMovss) {
		t.Errorf("4-byte vector scratch dispatched to InstID %d, want IMovss", id)
	}
}

func TestX64SpillMovInstPanicsOnUnsupportedVectorWidth(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic spilling a 16-byte vector register")
		}
	}()
	x64SpillMovInst(operand.Phys(operand.ClassVec, 15, 16))
}

func TestEmitSpillMoveX64VectorSpillUsesScalarFloatMove(t *testing.T) {
	iv := &LiveInterval{Class: operand.ClassVec, Size: 8, SpillSlot: 0}
	frame := &abi.Frame{SpillOffsets: []int{0}, SavedRegs: []operand.Reg{x64.GP(x64.RBX, 8)}}

	out := ir.NewBuilder()
	emitSpillMove(ArchX64, out, true, iv, frame, x64.GP(x64.RBP, 8))

	id := out.Head()
	if id == ir.NilNode {
		t.Fatalf("emitSpillMove produced no node")
	}
	n := out.Node(id)
	if x64.InstID(n.InstID) != x64.IMovsd {
		t.Fatalf("InstID = %d, want IMovsd", n.InstID)
	}
	mem := n.Operands[1].Mem
	// One 8-byte saved register ahead of the spill area, slot at offset
	// 0, minus the 8-byte scratch width itself: -(8 + 0 + 8) = -16.
	wantDisp := int32(-16)
	if mem.Disp != wantDisp {
		t.Errorf("Disp = %d, want %d", mem.Disp, wantDisp)
	}
}

func TestEmitSpillMoveX64GPSpillUsesSlotOffsetWithoutSavedRegs(t *testing.T) {
	iv := &LiveInterval{Class: operand.ClassGP, Size: 8, SpillSlot: 1}
	frame := &abi.Frame{SpillOffsets: []int{0, 8}, SavedRegs: nil}

	out := ir.NewBuilder()
	emitSpillMove(ArchX64, out, false, iv, frame, x64.GP(x64.RBP, 8))

	n := out.Node(out.Head())
	if x64.InstID(n.InstID) != x64.IMov {
		t.Fatalf("InstID = %d, want IMov", n.InstID)
	}
	mem := n.Operands[0].Mem
	if mem.Disp != -16 {
		t.Errorf("Disp = %d, want -16", mem.Disp)
	}
}
