package x64

import (
	"fmt"

	"github.com/xyproto/jitasm/internal/ir"
	"github.com/xyproto/jitasm/internal/operand"
)

// Assembler drives final byte emission for x86-64, implementing
// ir.Context (spec §4.4 Serializer). By the time it runs, the register
// allocator's rewrite pass has already replaced every virtual register
// operand with a physical one and spliced in spill code and the ABI
// prologue/epilogue, so Assembler itself never resolves a vreg or
// synthesizes a calling-convention sequence — it purely transliterates
// one already-physical Node into bytes.
type Assembler struct {
	Out    Sink
	Labels Labels
}

var _ ir.Context = (*Assembler)(nil)

func (a *Assembler) OnLabel(l operand.LabelID) error {
	a.Labels.Bind(l)
	return nil
}

func (a *Assembler) OnAlign(pow2 int) error {
	a.Out.Align(pow2, PadX86Text)
	return nil
}

func (a *Assembler) OnEmbedData(data []byte) error {
	a.Out.EmitBytes(data)
	return nil
}

func (a *Assembler) OnComment(string) error { return nil }

func (a *Assembler) OnSentinel(ir.SentinelKind) error { return nil }

func (a *Assembler) OnFuncBegin(*ir.FuncSignature) error { return nil }

func (a *Assembler) OnFuncEnd() error { return nil }

func (a *Assembler) OnInst(n *ir.Node) error {
	if n.Options.Lock {
		a.Out.Emit8(0xF0)
	}
	// EVEX opmask/zeroing masking (spec §3 InstOptions.Mask) is only
	// encodable on masked-arithmetic forms, which this package doesn't
	// implement yet (spec §9 Open Questions: "EVEX broadcast and rounding
	// control — encodable fields exist but the exact set of supported
	// mnemonics in scope is not fully listed"). Reject rather than
	// silently drop it, per §7's "never silently continue after a
	// structurally invalid emission".
	if n.Options.Mask.Active {
		return fmt.Errorf("x64: instruction id %d does not support EVEX masking", n.InstID)
	}
	ops := n.Operands
	switch InstID(n.InstID) {
	case IAdd, ISub, IAnd, IOr, IXor, ICmp:
		emitALU(a.Out, a.Labels, InstID(n.InstID), ops[0], ops[1])
	case ITest:
		emitTest(a.Out, a.Labels, ops[0], ops[1])
	case INeg, INot, IInc, IDec:
		emitUnary(a.Out, a.Labels, InstID(n.InstID), ops[0])
	case IShl, IShr, ISar, IRol, IRor:
		emitShift(a.Out, a.Labels, InstID(n.InstID), ops[0], ops[1])
	case IMul, IDiv, IIdiv:
		emitMulDiv(a.Out, a.Labels, InstID(n.InstID), ops[0])
	case IImul:
		switch len(ops) {
		case 2:
			emitImul2(a.Out, a.Labels, ops[0].Reg, ops[1])
		case 3:
			emitImul3(a.Out, a.Labels, ops[0].Reg, ops[1], ops[2].Imm.Value)
		default:
			return fmt.Errorf("x64: IMUL takes 2 or 3 operands, got %d", len(ops))
		}
	case ILea:
		emitLea(a.Out, a.Labels, ops[0].Reg, ops[1].Mem)
	case IMov:
		emitMov(a.Out, a.Labels, ops[0], ops[1])
	case IMovzx:
		emitMovzx(a.Out, a.Labels, ops[0].Reg, ops[1])
	case IMovsx:
		emitMovsx(a.Out, a.Labels, ops[0].Reg, ops[1])
	case IMovq:
		emitMovq(a.Out, a.Labels, ops[0], ops[1])
	case IMovsd:
		emitMovsdss(a.Out, a.Labels, true, ops[0], ops[1])
	case IMovss:
		emitMovsdss(a.Out, a.Labels, false, ops[0], ops[1])
	case IPush:
		emitPush(a.Out, a.Labels, ops[0])
	case IPop:
		emitPop(a.Out, a.Labels, ops[0])
	case IRet:
		n := uint16(0)
		if len(ops) == 1 {
			n = uint16(ops[0].Imm.Value)
		}
		emitRet(a.Out, n)
	case IJmp:
		if ops[0].Kind == operand.KindLabel {
			emitJmp(a.Out, a.Labels, ops[0].Label, n.Options.ForceShortBranch)
		} else {
			emitJmpIndirect(a.Out, a.Labels, ops[0])
		}
	case IJcc:
		cc := Cond(ops[0].Imm.Value)
		emitJcc(a.Out, a.Labels, cc, ops[1].Label, n.Options.ForceShortBranch)
	case ICall:
		if ops[0].Kind == operand.KindLabel {
			emitCall(a.Out, a.Labels, ops[0].Label)
		} else {
			emitCallIndirect(a.Out, a.Labels, ops[0])
		}
	case IKmovw:
		emitKmovw(a.Out, ops[0].Reg, ops[1].Reg)
	case IKandw:
		emitKandOr(a.Out, true, ops[0].Reg, ops[1].Reg, ops[2].Reg)
	case IKorw:
		emitKandOr(a.Out, false, ops[0].Reg, ops[1].Reg, ops[2].Reg)
	case IMovsb:
		emitRepPrefix(a.Out, n.Options.Rep)
		a.Out.Emit8(0xA4)
	case IStosb:
		emitRepPrefix(a.Out, n.Options.Rep)
		a.Out.Emit8(0xAA)
	case ISyscall:
		emitSyscall(a.Out)
	case INop:
		emitNop(a.Out)
	case ILockXadd:
		emitLockXadd(a.Out, a.Labels, ops[0], ops[1])
	case ILockCmpxchg:
		emitLockCmpxchg(a.Out, a.Labels, ops[0], ops[1])
	default:
		return fmt.Errorf("x64: unhandled instruction id %d", n.InstID)
	}
	return nil
}

// emitRepPrefix writes the legacy REP-family prefix byte a string
// instruction's InstOptions.Rep carries, ahead of its opcode.
func emitRepPrefix(out Sink, rep ir.RepKind) {
	switch rep {
	case ir.RepREP, ir.RepREPE:
		out.Emit8(0xF3)
	case ir.RepREPNE:
		out.Emit8(0xF2)
	}
}
