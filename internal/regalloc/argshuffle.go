package regalloc

import (
	"github.com/xyproto/jitasm/internal/arm64"
	"github.com/xyproto/jitasm/internal/ir"
	"github.com/xyproto/jitasm/internal/operand"
	"github.com/xyproto/jitasm/internal/x64"
)

// Move is one source-register-to-destination-register argument move the
// call builder needs before a call (spec §4.5 Pass 5 Argument shuffle).
type Move struct {
	Src, Dst operand.Reg
}

// Shuffle emits moves that realize every entry of moves simultaneously,
// as if they all happened at once, by treating them as a permutation
// graph: a chain (no destination is also some other move's source that
// is itself still pending) emits in dependency order; a cycle (dst of
// one move is the src of another, transitively back to the first) is
// broken by first moving one cycle member into scratch, emitting the
// rest of the cycle in order, then moving scratch into the final slot
// (spec §4.5: "argument shuffle... permutation graph with cycle-breaking
// via a scratch register").
func Shuffle(arch Arch, out *ir.Builder, moves []Move, scratch operand.Reg) {
	type regKey = [2]uint8
	key := func(r operand.Reg) regKey { return regKey{uint8(r.Class), r.Index} }

	// byDst maps a destination to the move that fills it; srcUsers counts
	// how many pending moves still need to read a given register as a
	// source (a register can be at most one move's destination, but may
	// feed several).
	byDst := make(map[regKey]Move, len(moves))
	srcUsers := make(map[regKey]int, len(moves))
	for _, m := range moves {
		if key(m.Src) == key(m.Dst) {
			continue // no-op move
		}
		byDst[key(m.Dst)] = m
		srcUsers[key(m.Src)]++
	}

	emit := func(m Move) {
		emitRegMove(arch, out, m.Dst, m.Src)
		srcUsers[key(m.Src)]--
		delete(byDst, key(m.Dst))
	}

	for len(byDst) > 0 {
		// Emit every move whose destination nothing still pending needs to
		// read; repeat until only cycles remain.
		progress := true
		for progress {
			progress = false
			for k, m := range byDst {
				if srcUsers[k] == 0 {
					emit(m)
					progress = true
				}
			}
		}
		if len(byDst) == 0 {
			break
		}

		// Everything left forms one or more cycles. Pick any remaining
		// destination X, save its current value to scratch before it gets
		// overwritten, then process moves in chain order starting at X
		// (mov X,src(X); mov src(X),src(src(X)); ...) until reaching the
		// one move whose source was X itself — redirect that move to read
		// from scratch instead, closing the cycle without ever losing a
		// value.
		var startKey regKey
		for k := range byDst {
			startKey = k
			break
		}
		emitRegMove(arch, out, scratch, byDst[startKey].Dst)

		cur := startKey
		for {
			m, ok := byDst[cur]
			if !ok {
				break
			}
			if key(m.Src) == startKey {
				m.Src = scratch
			}
			emit(m)
			cur = key(m.Src)
		}
	}
}

func emitRegMove(arch Arch, out *ir.Builder, dst, src operand.Reg) {
	switch arch {
	case ArchX64:
		out.Inst(x64.ArchTag, int(x64.IMov), []operand.Operand{operand.Register(dst), operand.Register(src)}, ir.InstOptions{})
	case ArchARM64:
		out.Inst(arm64.ArchTag, int(arm64.IMov), []operand.Operand{operand.Register(dst), operand.Register(src)}, ir.InstOptions{})
	}
}
