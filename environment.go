package jitasm

import (
	"fmt"
	"strings"
)

// Arch identifies a target instruction set.
type Arch int

const (
	ArchX86_64 Arch = iota
	ArchAArch64
)

func (a Arch) String() string {
	switch a {
	case ArchX86_64:
		return "x86_64"
	case ArchAArch64:
		return "aarch64"
	default:
		return "unknown"
	}
}

// ParseArch parses an architecture string as GOARCH would spell it.
func ParseArch(s string) (Arch, error) {
	switch strings.ToLower(s) {
	case "x86_64", "amd64", "x86-64":
		return ArchX86_64, nil
	case "aarch64", "arm64":
		return ArchAArch64, nil
	default:
		return 0, fmt.Errorf("jitasm: unsupported architecture %q (supported: amd64, arm64)", s)
	}
}

// OS identifies a target platform, which (together with Arch) determines
// the default host calling convention.
type OS int

const (
	OSLinux OS = iota
	OSDarwin
	OSWindows
	OSOther
)

func (o OS) String() string {
	switch o {
	case OSLinux:
		return "linux"
	case OSDarwin:
		return "darwin"
	case OSWindows:
		return "windows"
	default:
		return "other"
	}
}

// ParseOS parses an OS string as GOOS would spell it.
func ParseOS(s string) (OS, error) {
	switch strings.ToLower(s) {
	case "linux":
		return OSLinux, nil
	case "darwin", "macos":
		return OSDarwin, nil
	case "windows", "win":
		return OSWindows, nil
	default:
		return 0, fmt.Errorf("jitasm: unsupported OS %q (supported: linux, darwin, windows)", s)
	}
}

// ConventionKind identifies one of the host C calling conventions this
// library knows how to generate argument-loading sequences for.
type ConventionKind int

const (
	ConventionSystemV ConventionKind = iota
	ConventionWin64
	ConventionAAPCS64
)

// Environment describes the target architecture and platform, and thus the
// derived default calling convention and pointer size (spec §3 Environment).
type Environment struct {
	Arch     Arch
	OS       OS
	Features FeatureSet
}

// NewEnvironment builds an Environment for the given arch/OS pair.
func NewEnvironment(arch Arch, os OS) Environment {
	return Environment{Arch: arch, OS: os}
}

// PointerSize is always 8 for the two supported 64-bit targets.
func (e Environment) PointerSize() int { return 8 }

// DefaultConvention returns the platform's default host C calling
// convention (spec §6 External Interfaces).
func (e Environment) DefaultConvention() ConventionKind {
	switch e.Arch {
	case ArchAArch64:
		return ConventionAAPCS64
	case ArchX86_64:
		if e.OS == OSWindows {
			return ConventionWin64
		}
		return ConventionSystemV
	default:
		return ConventionSystemV
	}
}

func (e Environment) String() string {
	return fmt.Sprintf("%s-%s", e.Arch, e.OS)
}

// FeatureSet reports which optional CPU extensions the environment
// advertises as available. Detection itself is an external collaborator
// (spec §1 Non-goals / §6): jitasm never probes CPUID itself. No encoder
// consults this value either: emitted instructions are not checked
// against it, and FeatureMissing is never raised.
type FeatureSet struct {
	SSE3, SSSE3, SSE41, SSE42 bool
	AVX, AVX2, FMA            bool
	BMI1, BMI2                bool
	AES, SHA                  bool
	AVX512F                   bool
	NEONCRC32, NEONCrypto     bool
}

// BaselineX86_64 is SSE2, which every x86-64 host guarantees.
func BaselineX86_64() FeatureSet { return FeatureSet{} }

// BaselineAArch64 is NEON, which every AArch64 host guarantees.
func BaselineAArch64() FeatureSet { return FeatureSet{} }
