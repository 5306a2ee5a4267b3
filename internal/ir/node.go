// Package ir is the builder intermediate representation: a doubly-linked
// list of typed nodes representing instructions, labels, alignment,
// embedded data, control-flow sentinels, and function boundaries (spec
// §3 Builder node, §4.4 Builder IR).
//
// Per spec §9 Design Notes ("Cyclic data"), nodes are arena-owned and
// addressed by stable integer index rather than pointer, which sidesteps
// the ownership-cycle problem a doubly-linked list of pointers would
// otherwise create.
package ir

import "github.com/xyproto/jitasm/internal/operand"

// NodeID indexes into a Builder's node arena. NodeID(-1) (use NilNode)
// means "no node"; the zero value 0 is the arena's first node.
type NodeID int

// NilNode is the sentinel "no node" id.
const NilNode NodeID = -1

// Kind tags which variant a Node holds.
type Kind int

const (
	KindInst Kind = iota
	KindLabelBind
	KindAlign
	KindEmbedData
	KindComment
	KindSentinel
	KindFuncBegin
	KindFuncEnd
)

// SentinelKind distinguishes control-flow sentinels the serializer and
// allocator treat specially without being real instructions (e.g. marking
// an unreachable point after an unconditional jump, for liveness
// purposes).
type SentinelKind int

const (
	SentinelUnreachable SentinelKind = iota
	SentinelBasicBlockBoundary
)

// UseKind classifies how an instruction touches a register operand.
type UseKind int

const (
	UseRead UseKind = iota
	UseWrite
	UseReadWrite
)

// MaskPredicate carries EVEX opmask/zeroing metadata for one instruction.
type MaskPredicate struct {
	Active  bool
	MaskReg operand.Reg // class ClassMask
	Zero    bool        // zeroing (vs merging) masking
}

// InstOptions carries per-instruction option flags (spec §3 Instruction
// node: "short-branch preference, lock/repeat prefixes, masking predicate
// for EVEX").
type InstOptions struct {
	ForceShortBranch bool
	Lock             bool
	Rep              RepKind
	Mask             MaskPredicate
}

// RepKind selects a REP-family legacy prefix.
type RepKind int

const (
	RepNone RepKind = iota
	RepREP
	RepREPE
	RepREPNE
)

// Node is one element of the builder's node list. Only the fields
// relevant to Kind are meaningful; this mirrors the teacher lineage's
// preference for a small number of wide structs over many tiny
// allocations (register_allocator.go's LiveInterval plays the same role
// for live ranges).
type Node struct {
	Kind Kind
	Prev NodeID
	Next NodeID

	// KindInst
	InstID   int
	Arch     int // opaque per-arch instruction-id namespace tag
	Operands []operand.Operand
	Options  InstOptions
	Pos      int // dense program position, assigned by regalloc's Pass 1

	// KindLabelBind
	Label operand.LabelID

	// KindAlign
	AlignPow2 int

	// KindEmbedData
	Data     []byte
	ElemSize int

	// KindComment
	Text string

	// KindSentinel
	Sentinel SentinelKind

	// KindFuncBegin / KindFuncEnd
	Func *FuncSignature
}
