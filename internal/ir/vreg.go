package ir

import "github.com/xyproto/jitasm/internal/operand"

// Use records one occurrence of a virtual register: its program position
// (assigned during regalloc Pass 1) and how the instruction at that
// position touches it.
type Use struct {
	Pos  int
	Kind UseKind
}

// VReg is an allocator-managed symbolic register: a class (GP/Vec/Mask), a
// size, and a use-site list updated lazily during the allocator's first
// pass (spec §3 Virtual register; §4.4: "a use-list updated lazily").
type VReg struct {
	ID    int
	Class operand.RegClass
	Size  int
	Uses  []Use

	// IsArg/IsRet/Hint let the allocator prefer the ABI-mandated physical
	// register for parameters and return values, reducing shuffle moves
	// (spec §3 Live interval: "flags (is-arg, is-ret, hint)").
	IsArg bool
	ArgIndex int
	IsRet bool
	Hint  *operand.Reg
}
