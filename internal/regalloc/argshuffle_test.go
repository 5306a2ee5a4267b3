package regalloc

import (
	"testing"

	"github.com/xyproto/jitasm/internal/ir"
	"github.com/xyproto/jitasm/internal/operand"
)

func gp(i uint8) operand.Reg { return operand.Phys(operand.ClassGP, i, 8) }

type regKey = [2]uint8

func key(r operand.Reg) regKey { return regKey{uint8(r.Class), r.Index} }

// simulate executes the emitted mov sequence against a symbolic register
// file (each register initially "holds" its own identity) and returns the
// final symbolic contents, so a permutation can be checked without caring
// about the exact move order Shuffle chose.
func simulate(b *ir.Builder, initial map[regKey]regKey) map[regKey]regKey {
	state := make(map[regKey]regKey, len(initial))
	for k, v := range initial {
		state[k] = v
	}
	for id := b.Head(); id != ir.NilNode; id = b.Next(id) {
		n := b.Node(id)
		if n.Kind != ir.KindInst {
			continue
		}
		dst, src := key(n.Operands[0].Reg), key(n.Operands[1].Reg)
		state[dst] = state[src]
	}
	return state
}

func identityState(regs ...operand.Reg) map[regKey]regKey {
	m := make(map[regKey]regKey, len(regs))
	for _, r := range regs {
		m[key(r)] = key(r)
	}
	return m
}

// TestShuffleChain covers the no-cycle case: r0 <- r1 <- r2, none of
// which overlaps a destination used as another move's source cyclically.
func TestShuffleChain(t *testing.T) {
	r0, r1, r2 := gp(0), gp(1), gp(2)
	b := ir.NewBuilder()
	Shuffle(ArchX64, b, []Move{{Src: r1, Dst: r0}, {Src: r2, Dst: r1}}, gp(15))

	got := simulate(b, identityState(r0, r1, r2))
	if got[key(r0)] != key(r1) {
		t.Errorf("r0 = %v, want original r1", got[key(r0)])
	}
	if got[key(r1)] != key(r2) {
		t.Errorf("r1 = %v, want original r2", got[key(r1)])
	}
}

// TestShuffleTwoCycle covers a direct swap: r0 <-> r1, which cannot be
// realized by any single ordering of plain moves and requires the
// scratch-register cycle break.
func TestShuffleTwoCycle(t *testing.T) {
	r0, r1, scratch := gp(0), gp(1), gp(15)
	b := ir.NewBuilder()
	Shuffle(ArchX64, b, []Move{{Src: r1, Dst: r0}, {Src: r0, Dst: r1}}, scratch)

	got := simulate(b, identityState(r0, r1))
	if got[key(r0)] != key(r1) {
		t.Errorf("r0 = %v, want original r1", got[key(r0)])
	}
	if got[key(r1)] != key(r0) {
		t.Errorf("r1 = %v, want original r0", got[key(r1)])
	}
}

// TestShuffleThreeCycle covers a rotation: r0 <- r1 <- r2 <- r0.
func TestShuffleThreeCycle(t *testing.T) {
	r0, r1, r2, scratch := gp(0), gp(1), gp(2), gp(15)
	b := ir.NewBuilder()
	Shuffle(ArchX64, b, []Move{
		{Src: r1, Dst: r0},
		{Src: r2, Dst: r1},
		{Src: r0, Dst: r2},
	}, scratch)

	got := simulate(b, identityState(r0, r1, r2))
	if got[key(r0)] != key(r1) || got[key(r1)] != key(r2) || got[key(r2)] != key(r0) {
		t.Errorf("rotation result = %v, want each register holding its predecessor's original value", got)
	}
}

// TestShuffleNoOpSkipsSelfMove checks that a move whose source and
// destination are the same register is dropped instead of emitted.
func TestShuffleNoOpSkipsSelfMove(t *testing.T) {
	r0 := gp(0)
	b := ir.NewBuilder()
	Shuffle(ArchX64, b, []Move{{Src: r0, Dst: r0}}, gp(15))
	if b.Len() != 0 {
		t.Errorf("Shuffle emitted %d nodes for a self-move, want 0", b.Len())
	}
}
