package ir

import "github.com/xyproto/jitasm/internal/operand"

// ParamKind distinguishes integer/pointer parameters from floating/vector
// ones, since ABIs place them in separate register files.
type ParamKind int

const (
	ParamInt ParamKind = iota
	ParamFloat
)

// Param describes one incoming parameter's kind and size, in declaration
// order; the allocator's Pass 5 maps this list onto ABI argument
// locations (spec §3 Function frame: "argument-location descriptor
// derived from the function signature").
type Param struct {
	Kind ParamKind
	Size int
}

// FuncSignature describes a function's ABI-visible shape: its
// parameters, whether it returns a value and of what kind, and hints the
// allocator uses to build the frame (spec §3 Function frame).
type FuncSignature struct {
	Name       string
	Params     []Param
	HasReturn  bool
	ReturnKind ParamKind
	// PreferLeaf records that this function is expected not to call out
	// (spec §3: "preferred red-zone use"). The allocator and the
	// prologue/epilogue passes do not read it: spills always live in a
	// frame reserved by adjusting the stack pointer, never in the red zone.
	PreferLeaf bool
}

// ParamBinding pairs a declared parameter with a virtual register. Builder
// does not fill it in: FuncBegin returns the parameters' virtual registers
// as a plain slice in declaration order.
type ParamBinding struct {
	Param Param
	VReg  operand.Reg
}
