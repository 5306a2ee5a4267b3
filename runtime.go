package jitasm

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/xyproto/jitasm/internal/abi"
	"github.com/xyproto/jitasm/internal/arm64"
	"github.com/xyproto/jitasm/internal/config"
	"github.com/xyproto/jitasm/internal/ir"
	"github.com/xyproto/jitasm/internal/operand"
	"github.com/xyproto/jitasm/internal/regalloc"
	"github.com/xyproto/jitasm/internal/trace"
	"github.com/xyproto/jitasm/internal/vm"
	"github.com/xyproto/jitasm/internal/x64"
)

// Runtime composes the full pipeline from a built function's IR down to
// callable executable memory (spec §4.7 JIT Runtime): register
// allocation, ABI prologue/epilogue splicing, serialization, finalize,
// alloc_rw, copy, protect_rx, icache flush.
type Runtime struct {
	Env    Environment
	Config config.Config
}

// NewRuntime returns a runtime targeting env, with process-wide defaults
// read from the environment (spec §10 AMBIENT STACK: JITASM_* variables).
func NewRuntime(env Environment) *Runtime {
	cfg := config.FromEnv()
	if cfg.Verbose {
		trace.SetEnabled(true)
	}
	return &Runtime{Env: env, Config: cfg}
}

func (rt *Runtime) convention() *abi.Convention {
	switch rt.Env.DefaultConvention() {
	case ConventionWin64:
		return abi.MicrosoftX64
	case ConventionAAPCS64:
		return abi.AAPCS64
	default:
		return abi.SystemVAMD64
	}
}

func (rt *Runtime) regallocArch() regalloc.Arch {
	if rt.Env.Arch == ArchAArch64 {
		return regalloc.ArchARM64
	}
	return regalloc.ArchX64
}

func frameBaseReg(arch Arch) operand.Reg {
	if arch == ArchAArch64 {
		return arm64.GP(arm64.X29, 8)
	}
	return x64.GP(x64.RBP, 8)
}

// CompileFunction allocates registers for b — built via Builder.FuncBegin,
// caller-supplied emission, then Builder.FuncEnd — splices the ABI
// prologue/epilogue around it, and serializes the result into a fresh
// CodeHolder's .text section (spec §4.5 Passes 5-7, §4.4 Serializer). The
// returned holder is ready for Materialize.
//
// Single-exit assumption: b's only IRet/arm64.IRet node is the function's
// sole return point, which the epilogue replaces in place. A function
// emitted with more than one return instruction gets an epilogue spliced
// at each of them, which is correct but duplicates epilogue bytes per
// exit — multi-exit epilogue sharing (a single tail-shared epilogue with
// every early return jumping to it) is future work (spec §9 Open
// Questions lists instruction-level def/use splitting as deferred in the
// same spirit: correctness first, code-size optimization later).
func (rt *Runtime) CompileFunction(b *ir.Builder) (*CodeHolder, error) {
	conv := rt.convention()
	alloc := regalloc.NewAllocator(conv)
	res, err := alloc.Run(b)
	if err != nil {
		return nil, fmt.Errorf("jitasm: register allocation: %w", err)
	}

	archTag := rt.regallocArch()
	frame := regalloc.BuildFrame(conv, res, 0)
	rewritten := regalloc.Rewrite(archTag, b, res, frame, frameBaseReg(rt.Env.Arch))
	final := spliceFrame(archTag, rewritten, frame)

	h := NewCodeHolder(rt.Env)
	if err := Serialize(h, h.TextSection(), rt.Env.Arch, final); err != nil {
		return nil, err
	}
	return h, nil
}

func spliceFrame(archTag regalloc.Arch, rewritten *ir.Builder, frame *abi.Frame) *ir.Builder {
	final := ir.NewBuilder()
	switch archTag {
	case regalloc.ArchX64:
		regalloc.EmitPrologueX64(final, frame)
	case regalloc.ArchARM64:
		regalloc.EmitPrologueARM64(final, frame)
	}
	for id := rewritten.Head(); id != ir.NilNode; id = rewritten.Next(id) {
		n := rewritten.Node(id)
		switch n.Kind {
		case ir.KindFuncBegin, ir.KindFuncEnd:
			continue
		case ir.KindInst:
			if isReturnInst(archTag, n) {
				switch archTag {
				case regalloc.ArchX64:
					regalloc.EmitEpilogueX64(final, frame)
				case regalloc.ArchARM64:
					regalloc.EmitEpilogueARM64(final, frame)
				}
				continue
			}
			final.Inst(n.Arch, n.InstID, n.Operands, n.Options)
		case ir.KindLabelBind:
			final.Bind(n.Label)
		case ir.KindAlign:
			final.Align(n.AlignPow2)
		case ir.KindEmbedData:
			final.EmbedData(n.Data, n.ElemSize)
		case ir.KindComment:
			final.Comment(n.Text)
		case ir.KindSentinel:
			final.Sentinel(n.Sentinel)
		}
	}
	return final
}

func isReturnInst(archTag regalloc.Arch, n *ir.Node) bool {
	switch archTag {
	case regalloc.ArchX64:
		return x64.InstID(n.InstID) == x64.IRet
	case regalloc.ArchARM64:
		return arm64.InstID(n.InstID) == arm64.IRet
	}
	return false
}

// Materialize turns a finalized-or-finalizable code holder into executable
// memory and returns a handle callable under the host ABI (spec §4.7:
// finalize -> alloc_rw -> copy -> protect_rx -> flush icache -> function
// handle).
func (rt *Runtime) Materialize(h *CodeHolder) (*FunctionHandle, error) {
	if max := rt.Config.MaxCodeSize; max > 0 && h.TextSection().Buf.Len() > max {
		return nil, newErr(AllocationFailed, fmt.Sprintf(".text is %d bytes, over the %d-byte limit", h.TextSection().Buf.Len(), max))
	}
	img, err := h.Finalize()
	if err != nil {
		return nil, err
	}
	alloc := vm.AllocRW
	if rt.Config.HardenedWX {
		// The platform forbids a page from ever being simultaneously
		// writable and executable, so back this block with two mappings
		// of the same pages instead of one mapping toggled by mprotect
		// (spec §2/§4.7: "dual mapping where the platform forbids
		// writable-executable pages").
		alloc = vm.AllocDualMapped
	}
	block, err := alloc(len(img.Bytes))
	if err != nil {
		return nil, newErr(AllocationFailed, "executable memory").wrap(err)
	}
	if err := vm.Write(block, img.Bytes); err != nil {
		_ = vm.Release(block)
		return nil, newErr(StateError, "copy code into block").wrap(err)
	}
	if err := vm.ProtectRX(block); err != nil {
		_ = vm.Release(block)
		return nil, newErr(ProtectionFailed, "mprotect RX").wrap(err)
	}
	if rt.Env.Arch == ArchAArch64 {
		vm.FlushICache(block.Addr()+uintptr(img.TextOffset), len(img.Bytes)-img.TextOffset)
	}
	return &FunctionHandle{
		block: block,
		addr:  block.Addr() + uintptr(img.TextOffset),
		size:  len(img.Bytes) - img.TextOffset,
	}, nil
}

// Compile is the common-case shortcut: CompileFunction followed by
// Materialize.
func (rt *Runtime) Compile(b *ir.Builder) (*FunctionHandle, error) {
	h, err := rt.CompileFunction(b)
	if err != nil {
		return nil, err
	}
	return rt.Materialize(h)
}

// FunctionHandle is a callable entry point into JIT-compiled code (spec
// §4.7: "function handle {address, size, release-closure}"). It holds a
// strong reference to the executable memory block backing it, so
// releasing the handle safely unmaps that memory exactly once.
type FunctionHandle struct {
	mu       sync.Mutex
	block    *vm.Block
	addr     uintptr
	size     int
	released bool
}

// Addr returns the handle's entry address.
func (f *FunctionHandle) Addr() uintptr { return f.addr }

// Size returns the number of bytes of compiled code backing this handle.
func (f *FunctionHandle) Size() int { return f.size }

// Release unmaps the handle's executable memory. Idempotent: calling it
// again after a successful release is a no-op, matching the "RAII-like
// drop guarantee" the runtime owes every scoped resource (spec §9
// Redesign flags: "Scoped resources").
func (f *FunctionHandle) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.released {
		return nil
	}
	f.released = true
	return vm.Release(f.block)
}

// Bind points out — a pointer to a Go func variable whose type matches
// the compiled function's ABI signature exactly — at the handle's code,
// so calling *out invokes the JIT-compiled function directly (spec §4.7:
// "The handle can be cast to a C-callable function pointer matching the
// function's ABI signature").
//
// This uses the same funcval-construction technique every assembly-free
// Go JIT runtime relies on: a Go func value's own storage holds a pointer
// to a small object whose first word is the code's entry address: Go
// threads through the same value as the closure context for any function
// that doesn't capture variables, which a generated function called this
// way never does. Bind builds that one-word object in place (aliasing
// f.addr, which outlives the handle) and writes a pointer to it directly
// into out's target storage.
//
// The caller is responsible for getting the signature exactly right —
// there is no way to check that a reflect.Type matches the register/stack
// layout Compile already arranged for.
func (f *FunctionHandle) Bind(out interface{}) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Func {
		return fmt.Errorf("jitasm: Bind needs a pointer to a func value, got %T", out)
	}
	slot := (*uintptr)(unsafe.Pointer(rv.Pointer()))
	*slot = uintptr(unsafe.Pointer(&f.addr))
	return nil
}
