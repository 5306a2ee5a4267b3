package jitasm

import (
	"github.com/xyproto/jitasm/internal/arm64"
	"github.com/xyproto/jitasm/internal/operand"
	"github.com/xyproto/jitasm/internal/x64"
)

// x64Sink adapts a CodeBuffer to x64.Sink. Every method but Align is
// satisfied structurally by the embedded buffer; Align alone needs a
// translation because x64.PadMode and the root PadMode are distinct types
// (kept distinct so internal/x64 never imports this package).
type x64Sink struct{ *CodeBuffer }

func (s x64Sink) Align(pow2 int, mode x64.PadMode) {
	switch mode {
	case x64.PadX86Text:
		s.CodeBuffer.Align(pow2, PadX86Text)
	default:
		s.CodeBuffer.Align(pow2, PadZero)
	}
}

// arm64Sink adapts a CodeBuffer to arm64.Sink, the same way x64Sink does
// for the x86-64 encoder.
type arm64Sink struct{ *CodeBuffer }

func (s arm64Sink) Align(pow2 int, mode arm64.PadMode) {
	s.CodeBuffer.Align(pow2, PadAArch64Text)
}

// holderLabels adapts a CodeHolder, plus the section currently being
// written, to both x64.Labels and arm64.Labels — their method sets are
// identical, so one adapter type serves either encoder.
//
// operand.LabelID and the root Label type are both plain ints allocated
// in lockstep (Serialize pre-allocates one CodeHolder label per builder
// label before walking), so the conversion between them is a direct cast.
type holderLabels struct {
	h   *CodeHolder
	sec *Section
}

func (hl *holderLabels) IsBound(l operand.LabelID) bool {
	return hl.h.IsBound(Label(l))
}

func (hl *holderLabels) BoundOffset(l operand.LabelID) int {
	secIdx, off := hl.h.labels.OffsetOf(Label(l))
	if secIdx != hl.h.indexOf(hl.sec) {
		panic("jitasm: BoundOffset called for a label bound in another section")
	}
	return off
}

func (hl *holderLabels) RecordFixup(kind operand.FixupKind, at int, target operand.LabelID, nextIP int, addend int64) {
	hl.h.RecordFixup(hl.sec, Fixup{At: at, Kind: kind, Target: Label(target), NextIP: nextIP, Addend: addend})
}

func (hl *holderLabels) Bind(l operand.LabelID) {
	if err := hl.h.Bind(Label(l), hl.sec); err != nil {
		panic("jitasm: " + err.Error())
	}
}
