package jitasm

// Label is a dense non-negative integer identifying a symbolic offset
// (spec §3 Label). It is opaque to callers; its state lives in the owning
// CodeHolder's LabelManager.
type Label int

// labelState holds one label's binding state. An unbound label may
// accumulate pending fixups; once bound it is immutable for the life of
// the holder (spec invariant: a label may be bound at most once).
type labelState struct {
	bound   bool
	section int
	offset  int
}

// LabelManager is a table of label states with a backpatch list per label
// (spec §3 Label, §4.1 Label manager).
type LabelManager struct {
	labels []labelState
	fixups [][]Fixup // fixups[label] = pending fixups awaiting bind
}

// NewLabelManager returns an empty label manager.
func NewLabelManager() *LabelManager {
	return &LabelManager{}
}

// NewLabel allocates and returns a fresh unbound label.
func (lm *LabelManager) NewLabel() Label {
	id := Label(len(lm.labels))
	lm.labels = append(lm.labels, labelState{})
	lm.fixups = append(lm.fixups, nil)
	return id
}

// IsBound reports whether l has been bound to an offset yet.
func (lm *LabelManager) IsBound(l Label) bool {
	return lm.labels[l].bound
}

// OffsetOf returns l's bound (section, offset). Calling this on an unbound
// label panics — callers must check IsBound first, same as indexing a nil
// map entry that must exist is a programmer error, not a user error.
func (lm *LabelManager) OffsetOf(l Label) (section, offset int) {
	st := lm.labels[l]
	if !st.bound {
		panic("jitasm: OffsetOf on unbound label")
	}
	return st.section, st.offset
}

// Bind sets l's offset to (section, offset). Pending fixups referencing l
// are returned so the caller (CodeHolder) can resolve them immediately;
// fixups recorded after this call are resolved at emission time by the
// caller instead. Binding an already-bound label is LabelAlreadyBound.
func (lm *LabelManager) Bind(l Label, section, offset int) ([]Fixup, error) {
	st := &lm.labels[l]
	if st.bound {
		return nil, newErr(LabelAlreadyBound, "label already bound").withOffset(offset)
	}
	st.bound = true
	st.section = section
	st.offset = offset
	pending := lm.fixups[l]
	lm.fixups[l] = nil
	return pending, nil
}

// RecordFixup attaches a pending fixup to an as-yet-unbound label. Callers
// must only call this when IsBound(f.Target) is false.
func (lm *LabelManager) RecordFixup(f Fixup) {
	lm.fixups[f.Target] = append(lm.fixups[f.Target], f)
}

// Unresolved returns every fixup still pending across all labels, in label
// order, so finalize() can report LabelNotBound for each.
func (lm *LabelManager) Unresolved() []Fixup {
	var all []Fixup
	for _, fs := range lm.fixups {
		all = append(all, fs...)
	}
	return all
}
