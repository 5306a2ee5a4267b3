package ir

import (
	"testing"

	"github.com/xyproto/jitasm/internal/operand"
)

func walk(b *Builder) []Kind {
	var kinds []Kind
	for id := b.Head(); id != NilNode; id = b.Next(id) {
		kinds = append(kinds, b.Node(id).Kind)
	}
	return kinds
}

func TestAppendOrderAndLinks(t *testing.T) {
	b := NewBuilder()
	a := b.Comment("a")
	c := b.Comment("c")
	if b.Head() != a {
		t.Fatalf("Head() = %d, want %d", b.Head(), a)
	}
	if b.Next(a) != c {
		t.Fatalf("Next(a) = %d, want %d", b.Next(a), c)
	}
	if b.Next(c) != NilNode {
		t.Fatalf("Next(c) = %d, want NilNode", b.Next(c))
	}
}

func TestInsertAfterSplicesBetween(t *testing.T) {
	b := NewBuilder()
	a := b.Comment("a")
	c := b.Comment("c")
	mid := b.InsertAfter(a, Node{Kind: KindComment, Text: "mid"})

	if got := walk(b); len(got) != 3 {
		t.Fatalf("walk() = %v, want 3 nodes", got)
	}
	if b.Next(a) != mid || b.Next(mid) != c {
		t.Fatalf("chain = %d -> %d -> %d, want a -> mid -> c", a, b.Next(a), b.Next(mid))
	}
	if b.Node(c).Prev != mid {
		t.Errorf("c.Prev = %d, want mid (%d)", b.Node(c).Prev, mid)
	}
}

func TestInsertAfterAtTailUpdatesTail(t *testing.T) {
	b := NewBuilder()
	a := b.Comment("a")
	tail := b.InsertAfter(a, Node{Kind: KindComment, Text: "tail"})

	after := b.Comment("after")
	if b.Next(tail) != after {
		t.Fatalf("new tail did not extend correctly: Next(tail) = %d, want %d", b.Next(tail), after)
	}
}

func TestInsertBeforeAtHeadUpdatesHead(t *testing.T) {
	b := NewBuilder()
	orig := b.Comment("orig")
	newHead := b.InsertBefore(orig, Node{Kind: KindComment, Text: "newHead"})

	if b.Head() != newHead {
		t.Fatalf("Head() = %d, want %d", b.Head(), newHead)
	}
	if b.Next(newHead) != orig {
		t.Fatalf("Next(newHead) = %d, want %d", b.Next(newHead), orig)
	}
}

func TestInsertBeforeMidSplicesBetween(t *testing.T) {
	b := NewBuilder()
	a := b.Comment("a")
	c := b.Comment("c")
	mid := b.InsertBefore(c, Node{Kind: KindComment, Text: "mid"})

	if b.Next(a) != mid || b.Next(mid) != c {
		t.Fatalf("chain = %d -> %d -> %d, want a -> mid -> c", a, b.Next(a), b.Next(mid))
	}
}

func TestRemoveHead(t *testing.T) {
	b := NewBuilder()
	a := b.Comment("a")
	c := b.Comment("c")
	b.Remove(a)
	if b.Head() != c {
		t.Fatalf("Head() = %d, want %d", b.Head(), c)
	}
	if b.Node(c).Prev != NilNode {
		t.Errorf("c.Prev = %d, want NilNode", b.Node(c).Prev)
	}
}

func TestRemoveTail(t *testing.T) {
	b := NewBuilder()
	a := b.Comment("a")
	c := b.Comment("c")
	b.Remove(c)
	if b.Next(a) != NilNode {
		t.Fatalf("Next(a) = %d, want NilNode", b.Next(a))
	}
}

func TestRemoveMiddle(t *testing.T) {
	b := NewBuilder()
	a := b.Comment("a")
	mid := b.Comment("mid")
	c := b.Comment("c")
	b.Remove(mid)
	if b.Next(a) != c {
		t.Fatalf("Next(a) = %d, want %d (mid removed)", b.Next(a), c)
	}
	if b.Node(c).Prev != a {
		t.Errorf("c.Prev = %d, want %d", b.Node(c).Prev, a)
	}
}

func TestNewLabelAndNumLabels(t *testing.T) {
	b := NewBuilder()
	if b.NumLabels() != 0 {
		t.Fatalf("NumLabels() = %d, want 0", b.NumLabels())
	}
	l0 := b.NewLabel()
	l1 := b.NewLabel()
	if l0 == l1 {
		t.Fatalf("two NewLabel calls returned the same id %d", l0)
	}
	if b.NumLabels() != 2 {
		t.Errorf("NumLabels() = %d, want 2", b.NumLabels())
	}
}

func TestFuncBeginAllocatesArgVRegs(t *testing.T) {
	b := NewBuilder()
	sig := &FuncSignature{
		Name: "f",
		Params: []Param{
			{Kind: ParamInt, Size: 8},
			{Kind: ParamFloat, Size: 8},
		},
		HasReturn: true,
	}
	_, params := b.FuncBegin(sig)
	if len(params) != 2 {
		t.Fatalf("len(params) = %d, want 2", len(params))
	}
	if !params[0].Virtual || params[0].Class != operand.ClassGP {
		t.Errorf("params[0] = %+v, want a virtual ClassGP register", params[0])
	}
	if !params[1].Virtual || params[1].Class != operand.ClassVec {
		t.Errorf("params[1] = %+v, want a virtual ClassVec register", params[1])
	}

	v0 := b.VReg(params[0].VRegID)
	if !v0.IsArg || v0.ArgIndex != 0 {
		t.Errorf("vreg 0 = %+v, want IsArg=true ArgIndex=0", v0)
	}
	v1 := b.VReg(params[1].VRegID)
	if !v1.IsArg || v1.ArgIndex != 1 {
		t.Errorf("vreg 1 = %+v, want IsArg=true ArgIndex=1", v1)
	}
}

func TestNewVRegDistinctIDs(t *testing.T) {
	b := NewBuilder()
	r0 := b.NewVReg(operand.ClassGP, 8)
	r1 := b.NewVReg(operand.ClassGP, 8)
	if r0.VRegID == r1.VRegID {
		t.Fatalf("two NewVReg calls returned the same id %d", r0.VRegID)
	}
	if len(b.VRegs()) != 2 {
		t.Errorf("len(VRegs()) = %d, want 2", len(b.VRegs()))
	}
}
