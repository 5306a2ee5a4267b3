package arm64

import (
	"fmt"

	"github.com/xyproto/jitasm/internal/ir"
	"github.com/xyproto/jitasm/internal/operand"
)

// Assembler drives final byte emission for AArch64, implementing
// ir.Context (spec §4.4 Serializer). As with x64.Assembler, every
// operand has already been resolved to a physical register by the
// allocator's rewrite pass by the time this runs.
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
	a.Out.Align(pow2, PadAArch64Text)
	return nil
}

func (a *Assembler) OnEmbedData(data []byte) error {
	a.Out.EmitBytes(data)
	return nil
}

func (a *Assembler) OnComment(string) error             { return nil }
func (a *Assembler) OnSentinel(ir.SentinelKind) error    { return nil }
func (a *Assembler) OnFuncBegin(*ir.FuncSignature) error { return nil }
func (a *Assembler) OnFuncEnd() error                    { return nil }

func (a *Assembler) OnInst(n *ir.Node) error {
	ops := n.Operands
	switch InstID(n.InstID) {
	case IAdd, ISub:
		if len(ops) == 3 && ops[2].Kind == operand.KindImm {
			v := ops[2].Imm.Value
			if v < 0 || (v > 0xFFF && (v&0xFFF != 0 || v>>12 > 0xFFF)) {
				return fmt.Errorf("arm64: immediate %d does not fit ADD/SUB's 12-bit (optionally LSL #12) field", v)
			}
			shift12 := v&0xFFF == 0 && v != 0
			imm := uint16(v)
			if shift12 {
				imm = uint16(v >> 12)
			}
			emitDPImm(a.Out, InstID(n.InstID), ops[0].Reg, ops[1].Reg, imm, shift12)
		} else {
			emitDP2(a.Out, InstID(n.InstID), ops[0].Reg, ops[1].Reg, ops[2].Reg)
		}
	case IAnd, IOrr, IEor:
		emitDP2(a.Out, InstID(n.InstID), ops[0].Reg, ops[1].Reg, ops[2].Reg)
	case ICmp:
		if ops[1].Kind == operand.KindImm {
			if v := ops[1].Imm.Value; v < 0 || v > 0xFFF {
				return fmt.Errorf("arm64: immediate %d does not fit CMP's 12-bit field", v)
			}
			emitDPImm(a.Out, ICmp, operand.Reg{Index: X31, Size: ops[0].Reg.Size}, ops[0].Reg, uint16(ops[1].Imm.Value), false)
		} else {
			emitDP2(a.Out, ICmp, operand.Reg{}, ops[0].Reg, ops[1].Reg)
		}
	case ITst:
		emitDP2(a.Out, ITst, operand.Reg{}, ops[0].Reg, ops[1].Reg)
	case IMov:
		if ops[1].Kind == operand.KindImm {
			emitMovImm(a.Out, ops[0].Reg, uint64(ops[1].Imm.Value))
		} else {
			emitMovReg(a.Out, ops[0].Reg, ops[1].Reg)
		}
	case IMovz, IMovn, IMovk:
		emitMovImm(a.Out, ops[0].Reg, uint64(ops[1].Imm.Value))
	case ILsl, ILsr, IAsr:
		emitShift(a.Out, InstID(n.InstID), ops[0].Reg, ops[1].Reg, ops[2].Reg)
	case IMul:
		emitMul(a.Out, ops[0].Reg, ops[1].Reg, ops[2].Reg)
	case ISdiv:
		emitDiv(a.Out, true, ops[0].Reg, ops[1].Reg, ops[2].Reg)
	case IUdiv:
		emitDiv(a.Out, false, ops[0].Reg, ops[1].Reg, ops[2].Reg)
	case ILdr:
		emitLdrStr(a.Out, true, ops[0].Reg, ops[1].Mem)
	case IStr:
		emitLdrStr(a.Out, false, ops[0].Reg, ops[1].Mem)
	case ILdp:
		emitLdp(a.Out, ops[0].Reg, ops[1].Reg, ops[2].Mem.Base, ops[2].Mem.Disp)
	case IStp:
		emitStp(a.Out, ops[0].Reg, ops[1].Reg, ops[2].Mem.Base, ops[2].Mem.Disp)
	case IAdr:
		emitAdr(a.Out, a.Labels, ops[0].Reg, ops[1].Label)
	case IB:
		emitB(a.Out, a.Labels, ops[0].Label)
	case IBl:
		emitBl(a.Out, a.Labels, ops[0].Label)
	case IBcond:
		emitBcond(a.Out, a.Labels, Cond(ops[0].Imm.Value), ops[1].Label)
	case ICbz:
		emitCbz(a.Out, a.Labels, false, ops[0].Reg, ops[1].Label)
	case ICbnz:
		emitCbz(a.Out, a.Labels, true, ops[0].Reg, ops[1].Label)
	case IBr:
		emitBr(a.Out, ops[0].Reg)
	case IBlr:
		emitBlr(a.Out, ops[0].Reg)
	case IRet:
		rn := operand.Reg{Index: X30, Size: 8}
		if len(ops) == 1 {
			rn = ops[0].Reg
		}
		emitRet(a.Out, rn)
	case ISvc:
		emitSvc(a.Out, uint16(ops[0].Imm.Value))
	case INop:
		emitNop(a.Out)
	default:
		return fmt.Errorf("arm64: unhandled instruction id %d", n.InstID)
	}
	return nil
}
