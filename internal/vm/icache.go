package vm

// FlushICache makes code written into addr..addr+size visible to the
// instruction fetch stream. x86-64 keeps I-cache and D-cache coherent in
// hardware, so this is a no-op there; AArch64 requires an explicit
// clean-to-point-of-unification + invalidate sequence per JITted page
// (spec §6: "flush instruction cache (architecture-dependent) before any
// call through the new code").
func FlushICache(addr uintptr, size int) {
	flushICache(addr, size)
}
