// Package jitasm is a just-in-time assembler library for x86-64 and
// AArch64. It emits machine-code bytes into an in-memory buffer, resolves
// symbolic labels, allocates physical registers for a virtual-register IR,
// obtains page-granular executable memory under a write-xor-execute
// discipline, and returns a callable entry point using the host's C
// calling convention.
//
// The pipeline, leaves first:
//
//	CodeBuffer + LabelManager  -- growable bytes, label states, fixups
//	CodeHolder                -- owns sections, labels, finalize() -> image
//	internal/x64, internal/arm64 -- per-architecture encoders
//	internal/ir                  -- builder IR (node list, vregs)
//	internal/regalloc            -- linear-scan register allocation
//	Serializer                   -- walks allocated IR, drives an encoder
//	internal/vm                  -- RW -> RX executable memory
//	Runtime                      -- composes the above into a FunctionHandle
package jitasm
