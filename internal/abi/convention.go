package abi

import (
	"github.com/xyproto/jitasm/internal/arm64"
	"github.com/xyproto/jitasm/internal/operand"
	"github.com/xyproto/jitasm/internal/x64"
)

// Convention describes a platform calling convention's register
// assignment and stack contract (spec §5 CallingConvention, adapted
// from the teacher's CallingConvention interface: integer/float argument
// registers, return registers, caller/callee-saved sets, shadow space,
// stack alignment).
type Convention struct {
	Name string

	IntArgs   []operand.Reg
	FloatArgs []operand.Reg

	IntReturn   operand.Reg
	FloatReturn operand.Reg

	CallerSaved []operand.Reg
	CalleeSaved []operand.Reg

	ShadowSpace    int
	StackAlignment int
	RedZone        int
}

// IntArg returns the integer/pointer argument register at index, or
// (zero, false) once arguments overflow into the stack.
func (c *Convention) IntArg(index int) (operand.Reg, bool) {
	if index < len(c.IntArgs) {
		return c.IntArgs[index], true
	}
	return operand.Reg{}, false
}

// FloatArg returns the floating-point argument register at index, or
// (zero, false) once arguments overflow into the stack.
func (c *Convention) FloatArg(index int) (operand.Reg, bool) {
	if index < len(c.FloatArgs) {
		return c.FloatArgs[index], true
	}
	return operand.Reg{}, false
}

// IsCalleeSaved reports whether r must be preserved across a call under
// this convention.
func (c *Convention) IsCalleeSaved(r operand.Reg) bool {
	for _, cs := range c.CalleeSaved {
		if cs.Class == r.Class && cs.Index == r.Index {
			return true
		}
	}
	return false
}

func x64gp(i uint8) operand.Reg  { return x64.GP(i, 8) }
func x64vec(i uint8) operand.Reg { return x64.Vec(i, 16) }

// SystemVAMD64 is the Linux/macOS/BSD x86-64 convention (spec §5).
var SystemVAMD64 = &Convention{
	Name:           "systemv-amd64",
	IntArgs:        []operand.Reg{x64gp(x64.RDI), x64gp(x64.RSI), x64gp(x64.RDX), x64gp(x64.RCX), x64gp(x64.R8), x64gp(x64.R9)},
	FloatArgs:      []operand.Reg{x64vec(0), x64vec(1), x64vec(2), x64vec(3), x64vec(4), x64vec(5), x64vec(6), x64vec(7)},
	IntReturn:      x64gp(x64.RAX),
	FloatReturn:    x64vec(0),
	CallerSaved:    []operand.Reg{x64gp(x64.RAX), x64gp(x64.RCX), x64gp(x64.RDX), x64gp(x64.RSI), x64gp(x64.RDI), x64gp(x64.R8), x64gp(x64.R9), x64gp(x64.R10), x64gp(x64.R11)},
	CalleeSaved:    []operand.Reg{x64gp(x64.RBX), x64gp(x64.RBP), x64gp(x64.R12), x64gp(x64.R13), x64gp(x64.R14), x64gp(x64.R15)},
	ShadowSpace:    0,
	StackAlignment: 16,
	RedZone:        128,
}

// MicrosoftX64 is the Windows x86-64 convention (spec §5): four
// register-passed arguments sharing integer/float slot numbering, and a
// mandatory 32-byte caller-reserved shadow space.
var MicrosoftX64 = &Convention{
	Name:           "microsoft-x64",
	IntArgs:        []operand.Reg{x64gp(x64.RCX), x64gp(x64.RDX), x64gp(x64.R8), x64gp(x64.R9)},
	FloatArgs:      []operand.Reg{x64vec(0), x64vec(1), x64vec(2), x64vec(3)},
	IntReturn:      x64gp(x64.RAX),
	FloatReturn:    x64vec(0),
	CallerSaved:    []operand.Reg{x64gp(x64.RAX), x64gp(x64.RCX), x64gp(x64.RDX), x64gp(x64.R8), x64gp(x64.R9), x64gp(x64.R10), x64gp(x64.R11)},
	CalleeSaved:    []operand.Reg{x64gp(x64.RBX), x64gp(x64.RBP), x64gp(x64.RDI), x64gp(x64.RSI), x64gp(x64.R12), x64gp(x64.R13), x64gp(x64.R14), x64gp(x64.R15)},
	ShadowSpace:    32,
	StackAlignment: 16,
	RedZone:        0,
}

func a64gp(i uint8) operand.Reg  { return arm64.GP(i, 8) }
func a64vec(i uint8) operand.Reg { return arm64.Vec(i, 8) }

// AAPCS64 is the AArch64 Procedure Call Standard (spec §5).
var AAPCS64 = &Convention{
	Name:        "aapcs64",
	IntArgs:     []operand.Reg{a64gp(arm64.X0), a64gp(arm64.X1), a64gp(arm64.X2), a64gp(arm64.X3), a64gp(arm64.X4), a64gp(arm64.X5), a64gp(arm64.X6), a64gp(arm64.X7)},
	FloatArgs:   []operand.Reg{a64vec(0), a64vec(1), a64vec(2), a64vec(3), a64vec(4), a64vec(5), a64vec(6), a64vec(7)},
	IntReturn:   a64gp(arm64.X0),
	FloatReturn: a64vec(0),
	CallerSaved: []operand.Reg{
		a64gp(arm64.X0), a64gp(arm64.X1), a64gp(arm64.X2), a64gp(arm64.X3), a64gp(arm64.X4), a64gp(arm64.X5), a64gp(arm64.X6), a64gp(arm64.X7),
		a64gp(arm64.X8), a64gp(arm64.X9), a64gp(arm64.X10), a64gp(arm64.X11), a64gp(arm64.X12), a64gp(arm64.X13), a64gp(arm64.X14), a64gp(arm64.X15),
	},
	CalleeSaved: []operand.Reg{
		a64gp(arm64.X19), a64gp(arm64.X20), a64gp(arm64.X21), a64gp(arm64.X22), a64gp(arm64.X23),
		a64gp(arm64.X24), a64gp(arm64.X25), a64gp(arm64.X26), a64gp(arm64.X27), a64gp(arm64.X28),
		a64gp(arm64.X29), a64gp(arm64.X30),
	},
	ShadowSpace:    0,
	StackAlignment: 16,
	RedZone:        0,
}
