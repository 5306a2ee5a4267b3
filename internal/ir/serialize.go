package ir

import "github.com/xyproto/jitasm/internal/operand"

// Context receives callbacks as Walk visits each node in forward order
// (spec §4.4: "Serialization walks the list exactly once, in forward
// order"). Concrete contexts are either an architecture Assembler (final
// byte emission) or the register allocator's rewriter (produces a new
// node list with physical operands). OnComment is optional: a nil-free
// Context whose OnComment is a no-op is the common case and Walk handles
// that without a type switch by simply always calling it.
type Context interface {
	OnLabel(l operand.LabelID) error
	OnInst(n *Node) error
	OnAlign(pow2 int) error
	OnEmbedData(data []byte) error
	OnComment(text string) error
	OnSentinel(kind SentinelKind) error
	OnFuncBegin(sig *FuncSignature) error
	OnFuncEnd() error
}

// Walk visits every node of b in forward order exactly once, dispatching
// to the matching Context method. It stops and returns the first error
// encountered.
func Walk(b *Builder, ctx Context) error {
	for id := b.Head(); id != NilNode; id = b.Next(id) {
		n := b.Node(id)
		var err error
		switch n.Kind {
		case KindInst:
			err = ctx.OnInst(n)
		case KindLabelBind:
			err = ctx.OnLabel(n.Label)
		case KindAlign:
			err = ctx.OnAlign(n.AlignPow2)
		case KindEmbedData:
			err = ctx.OnEmbedData(n.Data)
		case KindComment:
			err = ctx.OnComment(n.Text)
		case KindSentinel:
			err = ctx.OnSentinel(n.Sentinel)
		case KindFuncBegin:
			err = ctx.OnFuncBegin(n.Func)
		case KindFuncEnd:
			err = ctx.OnFuncEnd()
		}
		if err != nil {
			return err
		}
	}
	return nil
}
