package arm64

import "github.com/xyproto/jitasm/internal/operand"

// Physical AArch64 general-purpose register indices. X30 is the link
// register (LR), X31's encoding is context-dependent: SP in load/store
// base-register position, XZR/WZR (the zero register) everywhere else
// (spec §2 AArch64).
const (
	X0 uint8 = iota
	X1
	X2
	X3
	X4
	X5
	X6
	X7
	X8
	X9
	X10
	X11
	X12
	X13
	X14
	X15
	X16
	X17
	X18
	X19
	X20
	X21
	X22
	X23
	X24
	X25
	X26
	X27
	X28
	X29 // FP
	X30 // LR
	X31 // SP or XZR/WZR depending on instruction field
)

// GP builds a general-purpose physical register operand; size is 4 (W
// form) or 8 (X form).
func GP(index uint8, size int) operand.Reg { return operand.Phys(operand.ClassGP, index, size) }

// Vec builds a V/S/D-register operand (scalar FP/SIMD); size is 4 or 8.
func Vec(index uint8, size int) operand.Reg { return operand.Phys(operand.ClassVec, index, size) }

// sf returns the size flag bit (1 for 64-bit X-form, 0 for 32-bit W-form)
// most data-processing encodings carry in bit 31.
func sf(size int) uint32 {
	if size == 8 {
		return 1
	}
	return 0
}
