//go:build !(linux || darwin || freebsd || openbsd || netbsd)

package vm

// AllocRW is unimplemented outside the unix build tag set (spec §6 is
// scoped to the platforms golang.org/x/sys/unix supports; Windows support
// would need its own VirtualAlloc/VirtualProtect binding, which no
// example in this pack's dependency set provides).
func AllocRW(size int) (*Block, error) { return nil, ErrUnsupportedPlatform }

func ProtectRX(b *Block) error { return ErrUnsupportedPlatform }
func ProtectRW(b *Block) error { return ErrUnsupportedPlatform }
func Write(b *Block, data []byte) error { return ErrUnsupportedPlatform }
func Release(b *Block) error { return ErrUnsupportedPlatform }

// AllocDualMapped mirrors AllocRW's platform restriction: no binding
// exists outside the unix build tag set.
func AllocDualMapped(size int) (*Block, error) { return nil, ErrUnsupportedPlatform }
