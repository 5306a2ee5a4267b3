//go:build amd64

package vm

// x86-64 maintains I-cache/D-cache coherency for self-modifying code in
// hardware; no explicit flush instruction exists or is needed.
func flushICache(addr uintptr, size int) {}
