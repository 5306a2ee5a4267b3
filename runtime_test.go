package jitasm

import (
	goruntime "runtime"
	"testing"

	"github.com/xyproto/jitasm/internal/arm64"
	"github.com/xyproto/jitasm/internal/ir"
	"github.com/xyproto/jitasm/internal/operand"
	"github.com/xyproto/jitasm/internal/x64"
)

// These tests emit and then actually execute x86-64 machine code, so they
// only make sense on an amd64 host; on any other architecture the CPU
// would fault on the first JIT'd instruction.
func requireAMD64(t *testing.T) {
	t.Helper()
	if goruntime.GOARCH != "amd64" {
		t.Skipf("requires an amd64 host to execute generated code, running on %s", goruntime.GOARCH)
	}
}

// buildIdentityX64 mirrors the jitasmdemo "identity" scenario: return the
// argument unchanged. Kept minimal and x86-64-only so this test runs on
// any host GOARCH the module targets as a build platform.
func buildIdentityX64() *ir.Builder {
	sig := &ir.FuncSignature{Name: "identity", Params: []ir.Param{{Kind: ir.ParamInt, Size: 8}}, HasReturn: true, ReturnKind: ir.ParamInt}
	b := ir.NewBuilder()
	_, params := b.FuncBegin(sig)
	ret := x64.GP(x64.RAX, 8)
	b.Inst(x64.ArchTag, int(x64.IMov), []operand.Operand{operand.Register(ret), operand.Register(params[0])}, ir.InstOptions{})
	b.Inst(x64.ArchTag, int(x64.IRet), nil, ir.InstOptions{})
	b.FuncEnd()
	return b
}

func buildAddX64() *ir.Builder {
	sig := &ir.FuncSignature{Name: "add", Params: []ir.Param{{Kind: ir.ParamInt, Size: 8}, {Kind: ir.ParamInt, Size: 8}}, HasReturn: true, ReturnKind: ir.ParamInt}
	b := ir.NewBuilder()
	_, params := b.FuncBegin(sig)
	b.Inst(x64.ArchTag, int(x64.IAdd), []operand.Operand{operand.Register(params[0]), operand.Register(params[1])}, ir.InstOptions{})
	ret := x64.GP(x64.RAX, 8)
	b.Inst(x64.ArchTag, int(x64.IMov), []operand.Operand{operand.Register(ret), operand.Register(params[0])}, ir.InstOptions{})
	b.Inst(x64.ArchTag, int(x64.IRet), nil, ir.InstOptions{})
	b.FuncEnd()
	return b
}

// TestCompileAndCallIdentity is an end-to-end exercise of the full
// pipeline (spec §8 testable property, S1-style scenario): builder IR ->
// register allocation -> serialize -> finalize -> executable memory ->
// call through a bound Go func value.
func TestCompileAndCallIdentity(t *testing.T) {
	requireAMD64(t)
	rt := NewRuntime(env())
	handle, err := rt.Compile(buildIdentityX64())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer handle.Release()

	var fn func(int64) int64
	if err := handle.Bind(&fn); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if got := fn(42); got != 42 {
		t.Errorf("identity(42) = %d, want 42", got)
	}
	if got := fn(-7); got != -7 {
		t.Errorf("identity(-7) = %d, want -7", got)
	}
}

// TestCompileAndCallAdd exercises a two-argument function and a
// register-to-register ALU instruction through the same path.
func TestCompileAndCallAdd(t *testing.T) {
	requireAMD64(t)
	rt := NewRuntime(env())
	handle, err := rt.Compile(buildAddX64())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer handle.Release()

	var fn func(int64, int64) int64
	if err := handle.Bind(&fn); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if got := fn(5, 3); got != 8 {
		t.Errorf("add(5, 3) = %d, want 8", got)
	}
	if got := fn(100, 200); got != 300 {
		t.Errorf("add(100, 200) = %d, want 300", got)
	}
}

// requireARM64 mirrors requireAMD64 for the AArch64 generated-code path.
func requireARM64(t *testing.T) {
	t.Helper()
	if goruntime.GOARCH != "arm64" {
		t.Skipf("requires an arm64 host to execute generated code, running on %s", goruntime.GOARCH)
	}
}

// buildIdentityARM64 is buildIdentityX64's AArch64 twin, used to exercise
// the same pipeline through the regalloc.ArchARM64 / AAPCS64 path.
func buildIdentityARM64() *ir.Builder {
	sig := &ir.FuncSignature{Name: "identity", Params: []ir.Param{{Kind: ir.ParamInt, Size: 8}}, HasReturn: true, ReturnKind: ir.ParamInt}
	b := ir.NewBuilder()
	_, params := b.FuncBegin(sig)
	ret := arm64.GP(arm64.X0, 8)
	b.Inst(arm64.ArchTag, int(arm64.IMov), []operand.Operand{operand.Register(ret), operand.Register(params[0])}, ir.InstOptions{})
	b.Inst(arm64.ArchTag, int(arm64.IRet), nil, ir.InstOptions{})
	b.FuncEnd()
	return b
}

// TestCompileAndCallIdentityARM64 is TestCompileAndCallIdentity's AArch64
// counterpart, skipped everywhere but an arm64 host.
func TestCompileAndCallIdentityARM64(t *testing.T) {
	requireARM64(t)
	rt := NewRuntime(NewEnvironment(ArchAArch64, OSLinux))
	handle, err := rt.Compile(buildIdentityARM64())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer handle.Release()

	var fn func(int64) int64
	if err := handle.Bind(&fn); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if got := fn(42); got != 42 {
		t.Errorf("identity(42) = %d, want 42", got)
	}
}

// TestReleaseIsIdempotent checks FunctionHandle.Release's no-op-on-second-
// call guarantee directly against a compiled handle.
func TestReleaseIsIdempotent(t *testing.T) {
	rt := NewRuntime(env())
	handle, err := rt.Compile(buildIdentityX64())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := handle.Release(); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := handle.Release(); err != nil {
		t.Errorf("second Release: %v, want nil (idempotent)", err)
	}
}
