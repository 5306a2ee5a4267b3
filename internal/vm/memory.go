// Package vm allocates write-xor-execute executable memory for compiled
// code (spec §6 JIT runtime: "never RW and RX at the same time"). The
// unix build tag file does the actual mmap/mprotect work via
// golang.org/x/sys/unix; other platforms get a clear unsupported error
// rather than a silent fallback to W+X memory.
package vm

import "fmt"

// Block is one mapped region of executable memory, alive until Release
// is called. Most blocks are a single mapping toggled between RW and RX
// with mprotect. On platforms that forbid a page from ever being
// simultaneously writable and executable, AllocDualMapped instead backs
// Block with two mappings of the same physical pages: writeAddr (RW,
// never executed) and addr (RX, never written), so no protection
// transition is ever needed (spec §2/§4.7: "dual mapping where the
// platform forbids writable-executable pages").
type Block struct {
	addr      uintptr
	writeAddr uintptr // == addr unless dual is true
	size      int
	rx        bool
	dual      bool
	memfd     int // only valid when dual is true; kept open for the mapping's lifetime
}

// Addr returns the block's base address.
func (b *Block) Addr() uintptr { return b.addr }

// Size returns the block's size in bytes.
func (b *Block) Size() int { return b.size }

// IsExecutable reports whether the block is currently mapped RX (true)
// or RW (false) — spec §6 FunctionHandle/state machine.
func (b *Block) IsExecutable() bool { return b.rx }

// ErrUnsupportedPlatform is returned by AllocRW on a platform this
// package has no mmap binding for.
var ErrUnsupportedPlatform = fmt.Errorf("vm: unsupported platform")
