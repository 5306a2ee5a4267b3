// Command jitasmdemo builds a few small functions through the full
// jitasm pipeline — builder IR, register allocation, serialization,
// executable memory — and either calls the result directly (when the
// requested target matches the host) or prints its encoded bytes.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	goruntime "runtime"
	"unsafe"

	"github.com/xyproto/jitasm"
	"github.com/xyproto/jitasm/internal/arm64"
	"github.com/xyproto/jitasm/internal/ir"
	"github.com/xyproto/jitasm/internal/operand"
	"github.com/xyproto/jitasm/internal/trace"
	"github.com/xyproto/jitasm/internal/x64"
)

const versionString = "jitasmdemo 0.1.0"

func main() {
	var (
		archFlag     = flag.String("arch", goruntime.GOARCH, "target architecture (amd64, arm64)")
		osFlag       = flag.String("os", goruntime.GOOS, "target OS (linux, darwin, windows)")
		scenarioFlag = flag.String("scenario", "identity", "which demo function to build: identity, add, loopsum")
		verboseFlag  = flag.Bool("v", false, "trace emitted bytes during assembly")
		versionFlag  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Println(versionString)
		return
	}

	if err := run(*archFlag, *osFlag, *scenarioFlag, *verboseFlag); err != nil {
		fmt.Fprintln(os.Stderr, "jitasmdemo:", err)
		os.Exit(1)
	}
}

func run(archStr, osStr string, scenario string, verbose bool) error {
	trace.SetEnabled(verbose)
	arch, err := jitasm.ParseArch(archStr)
	if err != nil {
		return err
	}
	osv, err := jitasm.ParseOS(osStr)
	if err != nil {
		return err
	}
	env := jitasm.NewEnvironment(arch, osv)

	var b *ir.Builder
	var sig *ir.FuncSignature
	switch scenario {
	case "identity":
		b, sig = buildIdentity(arch)
	case "add":
		b, sig = buildAdd(arch)
	case "loopsum":
		b, sig = buildLoopSum(arch)
	default:
		return fmt.Errorf("unknown scenario %q (want identity, add, or loopsum)", scenario)
	}

	rt := jitasm.NewRuntime(env)
	handle, err := rt.Compile(b)
	if err != nil {
		return fmt.Errorf("compile %s: %w", scenario, err)
	}
	defer handle.Release()

	fmt.Printf("%s/%s %s: %d bytes at %#x\n", archStr, osStr, sig.Name, handle.Size(), handle.Addr())

	codeBytes := unsafe.Slice((*byte)(unsafe.Pointer(handle.Addr())), handle.Size())
	fmt.Println(hex.EncodeToString(codeBytes))

	if arch == hostArch() && osv == hostOS() {
		return callDemo(handle, scenario)
	}
	fmt.Println("(target does not match host; skipping execution)")
	return nil
}

func hostArch() jitasm.Arch {
	a, _ := jitasm.ParseArch(goruntime.GOARCH)
	return a
}

func hostOS() jitasm.OS {
	o, _ := jitasm.ParseOS(goruntime.GOOS)
	return o
}

func callDemo(handle *jitasm.FunctionHandle, scenario string) error {
	switch scenario {
	case "identity":
		var fn func(int64) int64
		if err := handle.Bind(&fn); err != nil {
			return err
		}
		fmt.Println("identity(42) =", fn(42))
	case "add":
		var fn func(int64, int64) int64
		if err := handle.Bind(&fn); err != nil {
			return err
		}
		fmt.Println("add(5, 3) =", fn(5, 3))
		fmt.Println("add(100, 200) =", fn(100, 200))
	case "loopsum":
		var fn func() int64
		if err := handle.Bind(&fn); err != nil {
			return err
		}
		fmt.Println("loopsum() =", fn())
	}
	return nil
}

// buildIdentity returns x unchanged: mov <ret>, <arg0>; ret.
func buildIdentity(arch jitasm.Arch) (*ir.Builder, *ir.FuncSignature) {
	sig := &ir.FuncSignature{
		Name:       "identity",
		Params:     []ir.Param{{Kind: ir.ParamInt, Size: 8}},
		HasReturn:  true,
		ReturnKind: ir.ParamInt,
	}
	b := ir.NewBuilder()
	_, params := b.FuncBegin(sig)
	switch arch {
	case jitasm.ArchAArch64:
		ret := arm64.GP(arm64.X0, 8)
		b.Inst(arm64.ArchTag, int(arm64.IMov), []operand.Operand{operand.Register(ret), operand.Register(params[0])}, ir.InstOptions{})
		b.Inst(arm64.ArchTag, int(arm64.IRet), nil, ir.InstOptions{})
	default:
		ret := x64.GP(x64.RAX, 8)
		b.Inst(x64.ArchTag, int(x64.IMov), []operand.Operand{operand.Register(ret), operand.Register(params[0])}, ir.InstOptions{})
		b.Inst(x64.ArchTag, int(x64.IRet), nil, ir.InstOptions{})
	}
	b.FuncEnd()
	return b, sig
}

// buildAdd returns the sum of its two arguments.
func buildAdd(arch jitasm.Arch) (*ir.Builder, *ir.FuncSignature) {
	sig := &ir.FuncSignature{
		Name:       "add",
		Params:     []ir.Param{{Kind: ir.ParamInt, Size: 8}, {Kind: ir.ParamInt, Size: 8}},
		HasReturn:  true,
		ReturnKind: ir.ParamInt,
	}
	b := ir.NewBuilder()
	_, params := b.FuncBegin(sig)
	switch arch {
	case jitasm.ArchAArch64:
		ret := arm64.GP(arm64.X0, 8)
		b.Inst(arm64.ArchTag, int(arm64.IAdd), []operand.Operand{operand.Register(ret), operand.Register(params[0]), operand.Register(params[1])}, ir.InstOptions{})
		b.Inst(arm64.ArchTag, int(arm64.IRet), nil, ir.InstOptions{})
	default:
		b.Inst(x64.ArchTag, int(x64.IAdd), []operand.Operand{operand.Register(params[0]), operand.Register(params[1])}, ir.InstOptions{})
		ret := x64.GP(x64.RAX, 8)
		b.Inst(x64.ArchTag, int(x64.IMov), []operand.Operand{operand.Register(ret), operand.Register(params[0])}, ir.InstOptions{})
		b.Inst(x64.ArchTag, int(x64.IRet), nil, ir.InstOptions{})
	}
	b.FuncEnd()
	return b, sig
}

// buildLoopSum sums 10 down to 1 in a register-only loop and returns 55,
// in the spirit of the AArch64 loop scenario: mov x0,#0; mov x1,#10;
// L: add x0,x0,x1; sub x1,x1,#1; cmp x1,#0; b.ne L; ret. Built for both
// architectures so -arch amd64 has a comparable x86-64 loop to run.
func buildLoopSum(arch jitasm.Arch) (*ir.Builder, *ir.FuncSignature) {
	sig := &ir.FuncSignature{Name: "loopsum", HasReturn: true, ReturnKind: ir.ParamInt}
	b := ir.NewBuilder()
	b.FuncBegin(sig)
	switch arch {
	case jitasm.ArchAArch64:
		sum := arm64.GP(arm64.X0, 8)
		count := arm64.GP(arm64.X1, 8)
		b.Inst(arm64.ArchTag, int(arm64.IMov), []operand.Operand{operand.Register(sum), operand.Immediate(0)}, ir.InstOptions{})
		b.Inst(arm64.ArchTag, int(arm64.IMov), []operand.Operand{operand.Register(count), operand.Immediate(10)}, ir.InstOptions{})
		loop := b.NewLabel()
		b.Bind(loop)
		b.Inst(arm64.ArchTag, int(arm64.IAdd), []operand.Operand{operand.Register(sum), operand.Register(sum), operand.Register(count)}, ir.InstOptions{})
		b.Inst(arm64.ArchTag, int(arm64.ISub), []operand.Operand{operand.Register(count), operand.Register(count), operand.Immediate(1)}, ir.InstOptions{})
		b.Inst(arm64.ArchTag, int(arm64.ICmp), []operand.Operand{operand.Register(count), operand.Immediate(0)}, ir.InstOptions{})
		b.Inst(arm64.ArchTag, int(arm64.IBcond), []operand.Operand{operand.Immediate(int64(arm64.CondNE)), operand.LabelRef(loop)}, ir.InstOptions{})
		b.Inst(arm64.ArchTag, int(arm64.IRet), nil, ir.InstOptions{})
	default:
		sum := x64.GP(x64.RAX, 8)
		count := x64.GP(x64.RCX, 8)
		b.Inst(x64.ArchTag, int(x64.IMov), []operand.Operand{operand.Register(sum), operand.Immediate(0)}, ir.InstOptions{})
		b.Inst(x64.ArchTag, int(x64.IMov), []operand.Operand{operand.Register(count), operand.Immediate(10)}, ir.InstOptions{})
		loop := b.NewLabel()
		b.Bind(loop)
		b.Inst(x64.ArchTag, int(x64.IAdd), []operand.Operand{operand.Register(sum), operand.Register(count)}, ir.InstOptions{})
		b.Inst(x64.ArchTag, int(x64.ISub), []operand.Operand{operand.Register(count), operand.Immediate(1)}, ir.InstOptions{})
		b.Inst(x64.ArchTag, int(x64.ICmp), []operand.Operand{operand.Register(count), operand.Immediate(0)}, ir.InstOptions{})
		b.Inst(x64.ArchTag, int(x64.IJcc), []operand.Operand{operand.Immediate(int64(x64.CondNE)), operand.LabelRef(loop)}, ir.InstOptions{})
		b.Inst(x64.ArchTag, int(x64.IRet), nil, ir.InstOptions{})
	}
	b.FuncEnd()
	return b, sig
}
