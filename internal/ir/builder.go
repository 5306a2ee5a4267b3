package ir

import "github.com/xyproto/jitasm/internal/operand"

// Builder appends nodes in program order into an arena-owned doubly
// linked list (spec §4.4 Builder IR). It does not itself execute any
// encoding; it only records intent — encoding is the Serializer's job,
// driven by a concrete architecture Assembler.
type Builder struct {
	nodes []Node
	head  NodeID
	tail  NodeID

	vregs     []VReg
	nextLabel operand.LabelID
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{head: NilNode, tail: NilNode}
}

// Node returns the node at id. The returned pointer aliases the arena and
// is only valid until the next structural mutation (append/insert/remove).
func (b *Builder) Node(id NodeID) *Node {
	return &b.nodes[id]
}

// Head returns the first node in program order, or NilNode if empty.
func (b *Builder) Head() NodeID { return b.head }

// Next returns the node following id, or NilNode at the end.
func (b *Builder) Next(id NodeID) NodeID { return b.nodes[id].Next }

// Len returns the number of nodes in the arena, including nodes that
// Remove has unlinked from the list.
func (b *Builder) Len() int { return len(b.nodes) }

// VRegs returns every virtual register allocated so far, indexed by id.
func (b *Builder) VRegs() []VReg { return b.vregs }

// VReg returns a pointer to the vreg record with the given id, so the
// allocator's use-collection pass can append to its Uses in place.
func (b *Builder) VReg(id int) *VReg { return &b.vregs[id] }

func (b *Builder) append(n Node) NodeID {
	n.Prev = b.tail
	n.Next = NilNode
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, n)
	if b.tail == NilNode {
		b.head = id
	} else {
		b.nodes[b.tail].Next = id
	}
	b.tail = id
	return id
}

// NewVReg allocates a fresh virtual register of the given class and size.
func (b *Builder) NewVReg(class operand.RegClass, size int) operand.Reg {
	id := len(b.vregs)
	b.vregs = append(b.vregs, VReg{ID: id, Class: class, Size: size})
	return operand.Virt(id, class, size)
}

// NewLabel allocates a fresh, as-yet-unbound label identifier local to
// this builder. The serializer registers a CodeHolder label at the same
// index for every LabelID before it walks the builder.
func (b *Builder) NewLabel() operand.LabelID {
	id := b.nextLabel
	b.nextLabel++
	return id
}

// NumLabels returns how many labels NewLabel has allocated so far, so the
// serializer can pre-register a matching run of CodeHolder labels before
// walking this builder.
func (b *Builder) NumLabels() int { return int(b.nextLabel) }

// Bind appends a label-bind node: when the serializer reaches it, it binds
// l at the current emission offset.
func (b *Builder) Bind(l operand.LabelID) NodeID {
	return b.append(Node{Kind: KindLabelBind, Label: l})
}

// Inst appends an instruction node. archTag distinguishes the per-arch
// instruction-id namespace id belongs to (x64 vs arm64), since both
// encoders share this one IR.
func (b *Builder) Inst(archTag, id int, ops []operand.Operand, opts InstOptions) NodeID {
	return b.append(Node{Kind: KindInst, Arch: archTag, InstID: id, Operands: ops, Options: opts})
}

// Align appends an alignment directive: pad forward to the next multiple
// of pow2 bytes (pow2 is the alignment itself, not its exponent).
func (b *Builder) Align(pow2 int) NodeID {
	return b.append(Node{Kind: KindAlign, AlignPow2: pow2})
}

// EmbedData appends raw bytes verbatim, elemSize purely documenting the
// logical element width for diagnostics (e.g. a float64 jump/constant
// table).
func (b *Builder) EmbedData(data []byte, elemSize int) NodeID {
	return b.append(Node{Kind: KindEmbedData, Data: data, ElemSize: elemSize})
}

// Comment appends a no-op annotation node; serializer contexts that don't
// care about comments simply skip it.
func (b *Builder) Comment(text string) NodeID {
	return b.append(Node{Kind: KindComment, Text: text})
}

// Sentinel appends a control-flow marker. The allocator skips it like any
// other non-instruction node, and the serializer emits nothing for it.
func (b *Builder) Sentinel(kind SentinelKind) NodeID {
	return b.append(Node{Kind: KindSentinel, Sentinel: kind})
}

// FuncBegin appends a function-begin marker and pre-allocates one virtual
// register per declared parameter, bound to it with IsArg/ArgIndex set so
// the allocator's Pass 5 knows to load it from its ABI location.
func (b *Builder) FuncBegin(sig *FuncSignature) (NodeID, []operand.Reg) {
	id := b.append(Node{Kind: KindFuncBegin, Func: sig})
	params := make([]operand.Reg, len(sig.Params))
	for i, p := range sig.Params {
		class := operand.ClassGP
		if p.Kind == ParamFloat {
			class = operand.ClassVec
		}
		r := b.NewVReg(class, p.Size)
		vr := b.VReg(r.VRegID)
		vr.IsArg = true
		vr.ArgIndex = i
		params[i] = r
	}
	return id, params
}

// FuncEnd appends a function-end marker.
func (b *Builder) FuncEnd() NodeID {
	return b.append(Node{Kind: KindFuncEnd})
}

// InsertAfter splices a new node immediately after ref, preserving list
// integrity, and returns its id. Used by the allocator's rewrite pass to
// splice in spill loads/stores around an original instruction.
func (b *Builder) InsertAfter(ref NodeID, n Node) NodeID {
	nextID := b.nodes[ref].Next
	n.Prev = ref
	n.Next = nextID
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, n)
	b.nodes[ref].Next = id
	if nextID != NilNode {
		b.nodes[nextID].Prev = id
	} else {
		b.tail = id
	}
	return id
}

// InsertBefore splices a new node immediately before ref.
func (b *Builder) InsertBefore(ref NodeID, n Node) NodeID {
	prevID := b.nodes[ref].Prev
	if prevID == NilNode {
		n.Prev = NilNode
		n.Next = ref
		id := NodeID(len(b.nodes))
		b.nodes = append(b.nodes, n)
		b.nodes[ref].Prev = id
		b.head = id
		return id
	}
	return b.InsertAfter(prevID, n)
}

// Remove unlinks ref from the list without reclaiming its arena slot
// (slots are cheap and stable indices elsewhere must stay valid).
func (b *Builder) Remove(ref NodeID) {
	n := &b.nodes[ref]
	if n.Prev != NilNode {
		b.nodes[n.Prev].Next = n.Next
	} else {
		b.head = n.Next
	}
	if n.Next != NilNode {
		b.nodes[n.Next].Prev = n.Prev
	} else {
		b.tail = n.Prev
	}
}
