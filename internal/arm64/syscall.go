package arm64

// emitSvc encodes SVC #imm16, the AArch64 supervisor-call instruction
// used for direct kernel syscalls (0xD4000001 for #0).
func emitSvc(out Sink, imm16 uint16) {
	out.Emit32(0xD4000001 | uint32(imm16)<<5)
}

// emitNop encodes the canonical AArch64 NOP word.
func emitNop(out Sink) {
	out.Emit32(0xD503201F)
}
