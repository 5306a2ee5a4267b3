package jitasm

import "fmt"

// CodeHolder owns one or more sections, the label manager, the
// environment descriptor, and the constant pool; it exposes Finalize,
// which resolves fixups into a flat byte image (spec §3 Code holder, §4.2).
type CodeHolder struct {
	Env    Environment
	labels *LabelManager
	sects  []*Section
	byName map[string]int
	committed
}

// NewCodeHolder creates a holder with a mandatory ".text" section.
func NewCodeHolder(env Environment) *CodeHolder {
	h := &CodeHolder{
		Env:       env,
		labels:    NewLabelManager(),
		byName:    make(map[string]int),
		committed: newCommitted("CodeHolder"),
	}
	h.addSection(NewSection(".text", 16))
	return h
}

func (h *CodeHolder) addSection(s *Section) int {
	idx := len(h.sects)
	h.sects = append(h.sects, s)
	h.byName[s.Name] = idx
	return idx
}

// TextSection returns the mandatory .text section.
func (h *CodeHolder) TextSection() *Section {
	return h.sects[h.byName[".text"]]
}

// Section returns a named section, opening it with the given alignment on
// first request. Typical additional sections are ".rodata" for the
// constant pool.
func (h *CodeHolder) Section(name string, align int) *Section {
	if idx, ok := h.byName[name]; ok {
		return h.sects[idx]
	}
	s := NewSection(name, align)
	h.addSection(s)
	return s
}

// ConstPool returns a ConstPool writing into the ".rodata" section,
// opening it if this is the first request.
func (h *CodeHolder) ConstPool() *ConstPool {
	return newConstPool(h, h.Section(".rodata", 8))
}

// NewLabel allocates a fresh unbound label.
func (h *CodeHolder) NewLabel() Label {
	return h.labels.NewLabel()
}

// IsBound reports whether l has been bound.
func (h *CodeHolder) IsBound(l Label) bool {
	return h.labels.IsBound(l)
}

// Bind binds l to the current end of sec (the .text section in the common
// case). Pending fixups against l that were recorded while it was unbound
// are resolved immediately, using sec's own buffer for in-place PC-relative
// writes — cross-section forward references are resolved later, in
// Finalize, against final concatenated offsets (spec §9 Open Questions:
// cross-section fixup alignment at concatenation is intentionally left to
// Finalize rather than guessed here).
func (h *CodeHolder) Bind(l Label, sec *Section) error {
	return h.bindInSection(l, sec, sec.Buf.Len())
}

func (h *CodeHolder) bindInSection(l Label, sec *Section, offset int) error {
	h.MustNotBeCommitted()
	secIdx := h.indexOf(sec)
	pending, err := h.labels.Bind(l, secIdx, offset)
	if err != nil {
		return err
	}
	for _, f := range pending {
		if f.Section == secIdx {
			if err := h.patchFixup(f, offset); err != nil {
				return err
			}
		} else {
			// Cross-section: defer to Finalize, where final offsets exist.
			h.sects[f.Section].deferredFixups = append(h.sects[f.Section].deferredFixups, f)
		}
	}
	return nil
}

func (h *CodeHolder) indexOf(sec *Section) int {
	for i, s := range h.sects {
		if s == sec {
			return i
		}
	}
	panic("jitasm: section not owned by this holder")
}

// RecordFixup records a patch request against an address that is not yet
// (or may never be, if resolved at bind time) known. sec is the section
// the instruction stream was writing into at emission time.
func (h *CodeHolder) RecordFixup(sec *Section, f Fixup) {
	f.Section = h.indexOf(sec)
	if h.IsBound(f.Target) {
		targetSec, targetOff := h.labels.OffsetOf(f.Target)
		if targetSec == f.Section {
			_ = h.patchFixup(f, targetOff)
			return
		}
		// Cross-section but already bound: still must wait for Finalize's
		// concatenation to know the real final displacement.
		sec.deferredFixups = append(sec.deferredFixups, f)
		return
	}
	h.labels.RecordFixup(f)
}

// patchFixup writes a same-section, immediately-resolvable displacement.
func (h *CodeHolder) patchFixup(f Fixup, targetOffset int) error {
	disp := int64(targetOffset) - int64(f.NextIP) + f.Addend
	sec := h.sects[f.Section]
	return writeDisplacement(sec.Buf, f, disp)
}

func writeDisplacement(buf *CodeBuffer, f Fixup, disp int64) error {
	switch f.Kind {
	case PatchRel8:
		if disp < -128 || disp > 127 {
			return newErr(InvalidDisplacement, "rel8 out of range").withOffset(f.At)
		}
		buf.Patch8(f.At, uint8(int8(disp)))
	case PatchRel32, PatchRipRel32:
		if disp < -(1<<31) || disp > (1<<31)-1 {
			return newErr(InvalidDisplacement, "rel32 out of range").withOffset(f.At)
		}
		buf.Patch32(f.At, uint32(int32(disp)))
	case PatchAArch64Rel19:
		instrCount := disp / 4
		if disp%4 != 0 {
			return newErr(InvalidDisplacement, "aarch64 branch target misaligned").withOffset(f.At)
		}
		if instrCount < -(1<<18) || instrCount > (1<<18)-1 {
			return newErr(InvalidDisplacement, "rel19 out of range").withOffset(f.At)
		}
		word := buf.Bytes()
		orig := le32(word[f.At:])
		orig = (orig &^ (0x7FFFF << 5)) | (uint32(instrCount)&0x7FFFF)<<5
		buf.Patch32(f.At, orig)
	case PatchAArch64Rel26:
		instrCount := disp / 4
		if disp%4 != 0 {
			return newErr(InvalidDisplacement, "aarch64 branch target misaligned").withOffset(f.At)
		}
		if instrCount < -(1<<25) || instrCount > (1<<25)-1 {
			return newErr(InvalidDisplacement, "rel26 out of range").withOffset(f.At)
		}
		word := buf.Bytes()
		orig := le32(word[f.At:])
		orig = (orig &^ 0x3FFFFFF) | (uint32(instrCount) & 0x3FFFFFF)
		buf.Patch32(f.At, orig)
	case PatchAbs64:
		buf.Patch64(f.At, uint64(disp))
	default:
		return newErr(InvalidOperand, "unknown fixup kind")
	}
	return nil
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// Image is the result of Finalize: a flat byte image plus a map from label
// to absolute offset within that image.
type Image struct {
	Bytes      []byte
	LabelAddr  map[Label]int
	TextOffset int // where .text begins within Bytes
}

// Finalize resolves every remaining fixup, concatenates sections in
// declaration order (each aligned to its own requirement), and returns a
// flat byte image plus a label->offset map (spec §4.2 finalize()
// algorithm, steps 1-5). The holder is committed afterward: no further
// mutation is permitted.
func (h *CodeHolder) Finalize() (*Image, error) {
	h.MustNotBeCommitted()

	// Step 1: every remaining fixup's target must be bound.
	for _, f := range h.labels.Unresolved() {
		return nil, newErr(LabelNotBound, fmt.Sprintf("label %d never bound", f.Target)).withOffset(f.At)
	}

	// Compute final base address of each section by concatenation order.
	total := 0
	for _, s := range h.sects {
		if pad := align(total, s.Align) - total; pad > 0 {
			total += pad
		}
		s.baseAddr = total
		total += s.Buf.Len()
	}

	// Step 2-4: resolve deferred (cross-section) fixups against final
	// offsets, now that every section's baseAddr is known.
	for _, s := range h.sects {
		for _, f := range s.deferredFixups {
			targetSec, targetOff := h.labels.OffsetOf(f.Target)
			targetFinal := h.sects[targetSec].baseAddr + targetOff
			nextIPFinal := s.baseAddr + f.NextIP
			disp := int64(targetFinal) - int64(nextIPFinal) + f.Addend
			if err := writeDisplacement(s.Buf, Fixup{At: f.At, Kind: f.Kind}, disp); err != nil {
				return nil, err
			}
		}
	}

	// Step 5: concatenate.
	img := make([]byte, total)
	for _, s := range h.sects {
		copy(img[s.baseAddr:], s.Buf.Bytes())
	}

	labelAddr := make(map[Label]int, len(h.labels.labels))
	for i := range h.labels.labels {
		l := Label(i)
		if h.labels.IsBound(l) {
			sec, off := h.labels.OffsetOf(l)
			labelAddr[l] = h.sects[sec].baseAddr + off
		}
	}

	h.Commit()
	return &Image{
		Bytes:      img,
		LabelAddr:  labelAddr,
		TextOffset: h.TextSection().baseAddr,
	}, nil
}

func align(v, pow2 int) int {
	if pow2 <= 1 {
		return v
	}
	if rem := v % pow2; rem != 0 {
		return v + (pow2 - rem)
	}
	return v
}
