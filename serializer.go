package jitasm

import (
	"fmt"

	"github.com/xyproto/jitasm/internal/arm64"
	"github.com/xyproto/jitasm/internal/ir"
	"github.com/xyproto/jitasm/internal/operand"
	"github.com/xyproto/jitasm/internal/x64"
)

// Serialize walks b in program order, driving the architecture-appropriate
// encoder to append bytes into sec and record/resolve label fixups
// against h (spec §4.4 Serializer). b must already be fully allocated:
// the output of regalloc.Rewrite, with every virtual register replaced by
// a physical register or a spill scratch register, prologue and epilogue
// already spliced in.
//
// Every builder-local operand.LabelID referenced by b is pre-registered
// as a fresh CodeHolder label at a matching index before the walk starts,
// so the encoder packages' fixup calls (which only know operand.LabelID)
// and CodeHolder's bind/patch machinery (which only knows Label) agree on
// the same identifier space without either side translating the other's
// enum.
func Serialize(h *CodeHolder, sec *Section, arch Arch, b *ir.Builder) error {
	n := b.NumLabels()
	for id := b.Head(); id != ir.NilNode; id = b.Next(id) {
		nd := b.Node(id)
		if nd.Kind == ir.KindLabelBind && int(nd.Label) >= n {
			n = int(nd.Label) + 1
		}
		for _, op := range nd.Operands {
			if op.Kind == operand.KindLabel && int(op.Label) >= n {
				n = int(op.Label) + 1
			} else if op.Kind == operand.KindMem && op.Mem.HasLabel && int(op.Mem.Label) >= n {
				n = int(op.Mem.Label) + 1
			}
		}
	}
	for i := 0; i < n; i++ {
		h.NewLabel()
	}
	labels := &holderLabels{h: h, sec: sec}

	var ctx ir.Context
	switch arch {
	case ArchX86_64:
		ctx = &x64.Assembler{Out: x64Sink{sec.Buf}, Labels: labels}
	case ArchAArch64:
		ctx = &arm64.Assembler{Out: arm64Sink{sec.Buf}, Labels: labels}
	default:
		return fmt.Errorf("jitasm: unsupported architecture %v", arch)
	}
	return ir.Walk(b, ctx)
}
