package jitasm

import (
	"encoding/binary"

	"github.com/xyproto/jitasm/internal/trace"
)

// CodeBuffer is a growable byte container with little-endian primitives,
// in-place patching, alignment, and NOP/trap fill (spec §4.1).
type CodeBuffer struct {
	bytes []byte
}

// NewCodeBuffer returns an empty buffer with a small initial capacity.
func NewCodeBuffer() *CodeBuffer {
	return &CodeBuffer{bytes: make([]byte, 0, 256)}
}

// Len returns the current size of the buffer in bytes.
func (b *CodeBuffer) Len() int { return len(b.bytes) }

// Bytes returns the buffer's current contents. The slice is only valid
// until the next mutating call.
func (b *CodeBuffer) Bytes() []byte { return b.bytes }

// CurrentOffset is an alias for Len, named for spec §4.1 current_offset().
func (b *CodeBuffer) CurrentOffset() int { return b.Len() }

// Emit8 appends a single byte.
func (b *CodeBuffer) Emit8(v uint8) {
	b.bytes = append(b.bytes, v)
	trace.Printf(" %02x", v)
}

// Emit16 appends two bytes, little-endian.
func (b *CodeBuffer) Emit16(v uint16) {
	b.bytes = binary.LittleEndian.AppendUint16(b.bytes, v)
	trace.Printf(" %04x", v)
}

// Emit32 appends four bytes, little-endian.
func (b *CodeBuffer) Emit32(v uint32) {
	b.bytes = binary.LittleEndian.AppendUint32(b.bytes, v)
	trace.Printf(" %08x", v)
}

// Emit64 appends eight bytes, little-endian.
func (b *CodeBuffer) Emit64(v uint64) {
	b.bytes = binary.LittleEndian.AppendUint64(b.bytes, v)
	trace.Printf(" %016x", v)
}

// EmitBytes appends bs verbatim.
func (b *CodeBuffer) EmitBytes(bs []byte) {
	b.bytes = append(b.bytes, bs...)
	trace.Bytes("emit", bs)
}

// Reserve appends n zero bytes and returns the offset at which they start,
// for a value to be patched in later (e.g. a branch displacement).
func (b *CodeBuffer) Reserve(n int) int {
	off := len(b.bytes)
	for i := 0; i < n; i++ {
		b.bytes = append(b.bytes, 0)
	}
	return off
}

// Patch8 overwrites a single byte at offset.
func (b *CodeBuffer) Patch8(offset int, v uint8) {
	b.bytes[offset] = v
}

// Patch16 overwrites two little-endian bytes at offset.
func (b *CodeBuffer) Patch16(offset int, v uint16) {
	binary.LittleEndian.PutUint16(b.bytes[offset:], v)
}

// Patch32 overwrites four little-endian bytes at offset.
func (b *CodeBuffer) Patch32(offset int, v uint32) {
	binary.LittleEndian.PutUint32(b.bytes[offset:], v)
}

// Patch64 overwrites eight little-endian bytes at offset.
func (b *CodeBuffer) Patch64(offset int, v uint64) {
	binary.LittleEndian.PutUint64(b.bytes[offset:], v)
}

// PadMode selects the fill pattern Align uses, since x86 text padding
// (multi-byte NOPs) and AArch64/data padding (zero or 4-byte NOP words)
// follow different canonical forms.
type PadMode int

const (
	// PadX86Text fills with the canonical multi-byte x86 NOP forms.
	PadX86Text PadMode = iota
	// PadAArch64Text fills with the 4-byte AArch64 NOP instruction.
	PadAArch64Text
	// PadZero fills with zero bytes (data sections).
	PadZero
)

// x86NopForms holds the canonical Intel/AMD NOP encodings for padding
// lengths 1..9. Align fills a longer gap by repeating the 9-byte form and
// finishing with the shorter form that covers what is left.
var x86NopForms = [][]byte{
	{},
	{0x90},
	{0x66, 0x90},
	{0x0F, 0x1F, 0x00},
	{0x0F, 0x1F, 0x40, 0x00},
	{0x0F, 0x1F, 0x44, 0x00, 0x00},
	{0x66, 0x0F, 0x1F, 0x44, 0x00, 0x00},
	{0x0F, 0x1F, 0x80, 0x00, 0x00, 0x00, 0x00},
	{0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
	{0x66, 0x0F, 0x1F, 0x84, 0x00, 0x00, 0x00, 0x00, 0x00},
}

const aarch64NopWord = uint32(0xD503201F)

// Align pads the buffer forward (never truncates) until CurrentOffset() is
// a multiple of pow2, using mode's canonical fill.
func (b *CodeBuffer) Align(pow2 int, mode PadMode) {
	if pow2 <= 1 {
		return
	}
	for b.Len()%pow2 != 0 {
		need := pow2 - (b.Len() % pow2)
		switch mode {
		case PadX86Text:
			n := need
			if n >= len(x86NopForms) {
				n = len(x86NopForms) - 1
			}
			b.EmitBytes(x86NopForms[n])
		case PadAArch64Text:
			// AArch64 instructions are always 4 bytes; need is guaranteed
			// to be a multiple of 4 when pow2 is, since this buffer only
			// ever holds whole AArch64 instructions before an align call.
			for i := 0; i < need; i += 4 {
				b.Emit32(aarch64NopWord)
			}
		case PadZero:
			for i := 0; i < need; i++ {
				b.Emit8(0)
			}
		}
	}
}
