package jitasm

// ConstPool holds read-only data (float/vector constants, jump tables)
// that instructions reference via RIP-relative/PC-relative label fixups
// rather than embedding inline. Each entry is written into the holder's
// ".rodata" section and bound to a label the caller can hand to an
// encoder's memory operand.
type ConstPool struct {
	h   *CodeHolder
	sec *Section
}

func newConstPool(h *CodeHolder, sec *Section) *ConstPool {
	return &ConstPool{h: h, sec: sec}
}

// Add appends raw bytes aligned to align, binds a fresh label to their
// start, and returns that label.
func (c *ConstPool) Add(data []byte, align int) Label {
	c.sec.Buf.Align(align, PadZero)
	l := c.h.NewLabel()
	// Binding against the rodata section index directly; CodeHolder tracks
	// which section index "rodata" is so Bind can record it.
	c.h.bindInSection(l, c.sec, c.sec.Buf.Len())
	c.sec.Buf.EmitBytes(data)
	return l
}

// AddFloat64 is a convenience wrapper for the common case of an 8-byte
// IEEE-754 double constant, e.g. for a PC-relative load feeding addsd.
func (c *ConstPool) AddFloat64(bits uint64) Label {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(bits >> (8 * i))
	}
	return c.Add(buf, 8)
}
