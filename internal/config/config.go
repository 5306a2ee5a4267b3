// Package config reads process-wide JIT assembler defaults from the
// environment, the same place the rest of this codebase's lineage has
// always reached for ad-hoc settings (it otherwise would have hand-rolled
// os.Getenv + strconv parsing, file by file).
package config

import "github.com/xyproto/env/v2"

// Config holds the environment-derived defaults for a process.
type Config struct {
	// Verbose enables byte-level emission tracing (internal/trace).
	Verbose bool
	// CacheDir is an advisory directory hint for the pipeline cache.
	// The cache itself is in-process only; this is reserved for a future
	// on-disk persistence layer and is otherwise unused today.
	CacheDir string
	// MaxCodeSize is the byte ceiling a single code holder's .text section
	// is allowed to grow to before AllocationFailed is raised.
	MaxCodeSize int
	// HardenedWX requests a dual RW/RX mapping (internal/vm.AllocDualMapped)
	// instead of a single mapping toggled with mprotect, for platforms
	// that forbid a page from ever being simultaneously writable and
	// executable.
	HardenedWX bool
}

// defaultMaxCodeSize is 64MiB, generous for a JIT-compiled function body.
const defaultMaxCodeSize = 64 * 1024 * 1024

// FromEnv reads JITASM_VERBOSE, JITASM_CACHE_DIR, JITASM_MAX_CODE_SIZE, and
// JITASM_HARDENED_WX.
func FromEnv() Config {
	return Config{
		Verbose:     env.Bool("JITASM_VERBOSE"),
		CacheDir:    env.Str("JITASM_CACHE_DIR"),
		MaxCodeSize: env.IntOr("JITASM_MAX_CODE_SIZE", defaultMaxCodeSize),
		HardenedWX:  env.Bool("JITASM_HARDENED_WX"),
	}
}
