//go:build darwin || freebsd || openbsd || netbsd

package vm

import "fmt"

// AllocDualMapped is unimplemented here. The real dual-mapping path for
// hardened Apple platforms needs MAP_JIT at mmap time plus a per-thread
// pthread_jit_write_protect_np(1)/(0) toggle around writes — the latter
// is a libc call with no golang.org/x/sys/unix binding, reachable only
// via cgo. This module builds cgo-free everywhere else, and adding a cgo
// dependency for one platform's write-protect toggle is deferred rather
// than done half-heartedly; BSD targets have no dual-mapping requirement
// to begin with; they are grouped here because nothing in this module
// needs to special-case them separately from Apple.
func AllocDualMapped(size int) (*Block, error) { return nil, ErrUnsupportedPlatform }
