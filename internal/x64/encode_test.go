package x64

import (
	"bytes"
	"testing"

	"github.com/xyproto/jitasm/internal/ir"
	"github.com/xyproto/jitasm/internal/operand"
)

// fakeSink is a minimal in-memory Sink, in the same spirit as the
// teacher's own table-driven instruction tests: no labels, no fixups,
// just byte accumulation to compare against a golden encoding.
type fakeSink struct {
	buf []byte
}

func (s *fakeSink) Len() int                         { return len(s.buf) }
func (s *fakeSink) Emit8(v uint8)                    { s.buf = append(s.buf, v) }
func (s *fakeSink) Emit16(v uint16)                  { s.buf = append(s.buf, byte(v), byte(v>>8)) }
func (s *fakeSink) Emit32(v uint32)                  { s.buf = append(s.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24)) }
func (s *fakeSink) Emit64(v uint64) {
	for i := 0; i < 8; i++ {
		s.buf = append(s.buf, byte(v>>(8*i)))
	}
}
func (s *fakeSink) EmitBytes(bs []byte)       { s.buf = append(s.buf, bs...) }
func (s *fakeSink) Reserve(n int) int         { off := len(s.buf); s.buf = append(s.buf, make([]byte, n)...); return off }
func (s *fakeSink) Patch8(off int, v uint8)   { s.buf[off] = v }
func (s *fakeSink) Patch32(off int, v uint32) { s.buf[off], s.buf[off+1], s.buf[off+2], s.buf[off+3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24) }
func (s *fakeSink) Align(int, PadMode)        {}

type fakeLabels struct{}

func (fakeLabels) IsBound(operand.LabelID) bool        { return false }
func (fakeLabels) BoundOffset(operand.LabelID) int     { return 0 }
func (fakeLabels) RecordFixup(operand.FixupKind, int, operand.LabelID, int, int64) {}
func (fakeLabels) Bind(operand.LabelID)                {}

func assemble(t *testing.T, id InstID, ops []operand.Operand) []byte {
	t.Helper()
	s := &fakeSink{}
	a := &Assembler{Out: s, Labels: fakeLabels{}}
	n := &ir.Node{Kind: ir.KindInst, Arch: ArchTag, InstID: int(id), Operands: ops}
	if err := a.OnInst(n); err != nil {
		t.Fatalf("OnInst(%d): %v", id, err)
	}
	return s.buf
}

func TestMovRegReg(t *testing.T) {
	rax := operand.Phys(operand.ClassGP, RAX, 8)
	rcx := operand.Phys(operand.ClassGP, RCX, 8)
	got := assemble(t, IMov, []operand.Operand{operand.Register(rax), operand.Register(rcx)})
	want := []byte{0x48, 0x89, 0xC8} // REX.W MOV r/m64,r64: mov rax, rcx
	if !bytes.Equal(got, want) {
		t.Errorf("mov rax, rcx = % x, want % x", got, want)
	}
}

func TestMovRegImm32(t *testing.T) {
	rax := operand.Phys(operand.ClassGP, RAX, 8)
	got := assemble(t, IMov, []operand.Operand{operand.Register(rax), operand.Immediate(10)})
	want := []byte{0x48, 0xC7, 0xC0, 0x0A, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("mov rax, 10 = % x, want % x", got, want)
	}
}

func TestAddRegReg(t *testing.T) {
	rax := operand.Phys(operand.ClassGP, RAX, 8)
	rcx := operand.Phys(operand.ClassGP, RCX, 8)
	got := assemble(t, IAdd, []operand.Operand{operand.Register(rax), operand.Register(rcx)})
	want := []byte{0x48, 0x01, 0xC8} // REX.W ADD r/m64,r64: add rax, rcx
	if !bytes.Equal(got, want) {
		t.Errorf("add rax, rcx = % x, want % x", got, want)
	}
}

func TestRet(t *testing.T) {
	got := assemble(t, IRet, nil)
	want := []byte{0xC3}
	if !bytes.Equal(got, want) {
		t.Errorf("ret = % x, want % x", got, want)
	}
}

func TestExtendedRegisterNeedsREX(t *testing.T) {
	r8 := operand.Phys(operand.ClassGP, R8, 8)
	r9 := operand.Phys(operand.ClassGP, R9, 8)
	got := assemble(t, IMov, []operand.Operand{operand.Register(r8), operand.Register(r9)})
	if len(got) < 3 || got[1] != 0x89 {
		t.Errorf("mov r8, r9 = % x, want REX-prefixed 0x89 /r form", got)
	}
	if got[0]&0xF0 != 0x40 {
		t.Errorf("mov r8, r9 first byte %#x is not a REX prefix", got[0])
	}
}

func assembleOpts(t *testing.T, id InstID, ops []operand.Operand, opts ir.InstOptions) []byte {
	t.Helper()
	s := &fakeSink{}
	a := &Assembler{Out: s, Labels: fakeLabels{}}
	n := &ir.Node{Kind: ir.KindInst, Arch: ArchTag, InstID: int(id), Operands: ops, Options: opts}
	if err := a.OnInst(n); err != nil {
		t.Fatalf("OnInst(%d): %v", id, err)
	}
	return s.buf
}

func TestRepMovsb(t *testing.T) {
	got := assembleOpts(t, IMovsb, nil, ir.InstOptions{Rep: ir.RepREP})
	want := []byte{0xF3, 0xA4}
	if !bytes.Equal(got, want) {
		t.Errorf("rep movsb = % x, want % x", got, want)
	}
}

func TestStosbNoPrefixWithoutRep(t *testing.T) {
	got := assembleOpts(t, IStosb, nil, ir.InstOptions{})
	want := []byte{0xAA}
	if !bytes.Equal(got, want) {
		t.Errorf("stosb = % x, want % x", got, want)
	}
}

func TestRepneMovsb(t *testing.T) {
	got := assembleOpts(t, IMovsb, nil, ir.InstOptions{Rep: ir.RepREPNE})
	want := []byte{0xF2, 0xA4}
	if !bytes.Equal(got, want) {
		t.Errorf("repne movsb = % x, want % x", got, want)
	}
}

func TestMaskedInstructionRejected(t *testing.T) {
	s := &fakeSink{}
	a := &Assembler{Out: s, Labels: fakeLabels{}}
	n := &ir.Node{
		Kind: ir.KindInst, Arch: ArchTag, InstID: int(IAdd),
		Operands: []operand.Operand{operand.Register(operand.Phys(operand.ClassGP, RAX, 8)), operand.Register(operand.Phys(operand.ClassGP, RCX, 8))},
		Options:  ir.InstOptions{Mask: ir.MaskPredicate{Active: true}},
	}
	if err := a.OnInst(n); err == nil {
		t.Errorf("OnInst with Mask.Active=true: want error, got nil")
	}
}
