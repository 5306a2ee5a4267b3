package abi

import (
	"fmt"

	"github.com/xyproto/jitasm/internal/operand"
)

// Frame describes one function's stack layout, computed by the register
// allocator's prologue pass (spec §4.5 Pass 7) once spill slot count and
// the callee-saved set actually used are known.
type Frame struct {
	Convention *Convention

	// SpillOffsets holds the byte offset of each spill slot from the
	// start of the spill area, indexed by slot id. Each slot is packed
	// at the first offset that is a multiple of its own size, so an
	// 8-byte GP spill and a 16-byte vector spill never alias (spec
	// §4.5 Pass 4 step 4: slots are "8-byte (GP) or 16/32/64-byte
	// (vector)... aligned to the operand size").
	SpillOffsets  []int
	SpillAreaSize int // total bytes the spill area occupies, already size-aligned per slot

	SavedRegs  []operand.Reg
	LocalsSize int // bytes of scratch the builder explicitly reserved
	IsLeaf     bool
}

// SpillOffset returns the byte offset from the spill area's base of
// spill slot i.
func (f *Frame) SpillOffset(i int) int { return f.SpillOffsets[i] }

// TotalSize returns the full frame size in bytes, rounded up to the
// convention's stack alignment (spec §5 FuncFrame: "total size is
// alignment-rounded").
func (f *Frame) TotalSize() int {
	size := f.LocalsSize + f.SpillAreaSize + len(f.SavedRegs)*8
	align := f.Convention.StackAlignment
	if size%align != 0 {
		size += align - size%align
	}
	return size
}

// StackTracker counts push/sub-rsp depth during prologue/epilogue
// emission so a mismatched pair is caught before it corrupts the return
// address — adapted from the teacher's stack-depth bookkeeping, scoped to
// debug builds via Enabled rather than a silent no-op.
type StackTracker struct {
	depth   int
	history []string
	Enabled bool
}

// NewStackTracker returns a tracker with debug history enabled.
func NewStackTracker() *StackTracker {
	return &StackTracker{Enabled: true}
}

func (t *StackTracker) Push()           { t.adjust(1, "push") }
func (t *StackTracker) Pop()            { t.adjust(-1, "pop") }
func (t *StackTracker) SubBytes(n int)  { t.adjust(n/8, fmt.Sprintf("sub rsp, %d", n)) }
func (t *StackTracker) AddBytes(n int)  { t.adjust(-(n / 8), fmt.Sprintf("add rsp, %d", n)) }

func (t *StackTracker) adjust(words int, note string) {
	if !t.Enabled {
		return
	}
	t.depth += words
	t.history = append(t.history, note)
	if t.depth < 0 {
		panic(fmt.Sprintf("abi: stack underflow after %q (depth=%d)", note, t.depth))
	}
}

// Checkpoint returns the current depth, to be passed to Validate at a
// point the depth must have returned to the same value (e.g. a
// function's single return point).
func (t *StackTracker) Checkpoint() int { return t.depth }

// Validate panics if the tracker's depth has drifted from checkpoint,
// which would mean a generated prologue/epilogue pair is unbalanced.
func (t *StackTracker) Validate(checkpoint int, where string) {
	if !t.Enabled {
		return
	}
	if t.depth != checkpoint {
		panic(fmt.Sprintf("abi: stack imbalance at %s: expected depth %d, got %d", where, checkpoint, t.depth))
	}
}
