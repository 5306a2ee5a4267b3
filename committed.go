package jitasm

import "fmt"

// committed is a tiny one-shot lifecycle guard: a resource starts mutable
// and is permanently frozen by a single Commit call, after which any
// further attempt to mutate it is a programming error. CodeHolder uses it
// to refuse emission after Finalize. (vm.Block does not use it: vm.Write
// refuses writes after the RW->RX transition by returning an error, and
// ProtectRW can reopen the block.) This is the same discipline
// the teacher lineage's SafeBuffer/ScopedBuffer pair enforced for
// generated-code buffers, kept here as a small embeddable type instead of
// a buffer wrapper since both of our use sites already have their own
// buffer.
type committed struct {
	done bool
	name string
}

func newCommitted(name string) committed {
	return committed{name: name}
}

// Commit freezes the resource. Calling it twice is harmless.
func (c *committed) Commit() {
	c.done = true
}

// IsCommitted reports whether Commit has been called.
func (c *committed) IsCommitted() bool {
	return c.done
}

// MustNotBeCommitted panics with a message naming the resource if it has
// already been committed. Call this at the top of any mutating method.
func (c *committed) MustNotBeCommitted() {
	if c.done {
		panic(fmt.Sprintf("jitasm: %s used after commit", c.name))
	}
}
