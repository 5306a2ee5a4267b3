// Package trace provides the package-level verbose/debug tracing switch used
// by the encoders. It is not a logging framework: a JIT assembler's "log
// line" is a dump of the bytes it just emitted, so this stays a thin
// fmt.Fprintf-to-stderr helper gated by a bool, mirroring the VerboseMode
// global the rest of this codebase's lineage has always used.
package trace

import (
	"fmt"
	"os"
)

// Enabled gates all tracing output. Flip it with SetEnabled.
var Enabled bool

// SetEnabled turns tracing on or off.
func SetEnabled(v bool) {
	Enabled = v
}

// Bytes prints a hex dump of bs prefixed by label, if tracing is enabled.
func Bytes(label string, bs []byte) {
	if !Enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "%s:", label)
	for _, b := range bs {
		fmt.Fprintf(os.Stderr, " %02x", b)
	}
	fmt.Fprintln(os.Stderr)
}

// Printf prints a formatted trace line, if tracing is enabled.
func Printf(format string, args ...any) {
	if !Enabled {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
