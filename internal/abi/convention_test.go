package abi

import "testing"

func TestIntArgOverflowsToFalse(t *testing.T) {
	c := SystemVAMD64
	if _, ok := c.IntArg(len(c.IntArgs) - 1); !ok {
		t.Fatalf("last declared integer argument register reported missing")
	}
	if _, ok := c.IntArg(len(c.IntArgs)); ok {
		t.Fatalf("IntArg past the declared register list should report false")
	}
}

func TestIsCalleeSaved(t *testing.T) {
	c := SystemVAMD64
	if !c.IsCalleeSaved(c.CalleeSaved[0]) {
		t.Errorf("first callee-saved register not reported as callee-saved")
	}
	if c.IsCalleeSaved(c.CallerSaved[0]) {
		t.Errorf("a caller-saved register was reported as callee-saved")
	}
}

// TestConventionsDisjointSavedSets guards against a typo accidentally
// listing the same physical register as both caller- and callee-saved,
// which would silently corrupt frame building for any function using it.
func TestConventionsDisjointSavedSets(t *testing.T) {
	for _, c := range []*Convention{SystemVAMD64, MicrosoftX64, AAPCS64} {
		seen := make(map[[2]uint8]string)
		for _, r := range c.CallerSaved {
			seen[[2]uint8{uint8(r.Class), r.Index}] = "caller"
		}
		for _, r := range c.CalleeSaved {
			k := [2]uint8{uint8(r.Class), r.Index}
			if seen[k] == "caller" {
				t.Errorf("%s: register class=%d index=%d is listed as both caller- and callee-saved", c.Name, r.Class, r.Index)
			}
		}
	}
}
