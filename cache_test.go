package jitasm

import (
	"testing"

	"github.com/xyproto/jitasm/internal/ir"
	"github.com/xyproto/jitasm/internal/x64"
)

// trivialHolder compiles the smallest possible function (just a return)
// through the real pipeline, for tests that only care about cache/handle
// bookkeeping rather than what the code does.
func trivialHolder(t *testing.T) *CodeHolder {
	t.Helper()
	b := ir.NewBuilder()
	b.FuncBegin(&ir.FuncSignature{Name: "noop", HasReturn: false})
	b.Inst(x64.ArchTag, int(x64.IRet), nil, ir.InstOptions{})
	b.FuncEnd()

	rt := NewRuntime(env())
	h, err := rt.CompileFunction(b)
	if err != nil {
		t.Fatalf("CompileFunction: %v", err)
	}
	return h
}

// TestAddCachedKeyIdempotence is spec §8 testable property 5: two
// AddCached calls under the same key, even from distinct holders, return
// the pointer-identical handle, and the second holder is simply discarded
// rather than materialized.
func TestAddCachedKeyIdempotence(t *testing.T) {
	rt := NewRuntime(env())
	cache := NewPipelineCache(rt)
	defer cache.Drop("k")

	h1 := trivialHolder(t)
	first, err := cache.AddCached("k", h1)
	if err != nil {
		t.Fatalf("AddCached (first): %v", err)
	}

	h2 := trivialHolder(t)
	second, err := cache.AddCached("k", h2)
	if err != nil {
		t.Fatalf("AddCached (second): %v", err)
	}

	if first != second {
		t.Errorf("AddCached returned different handles for the same key: %p != %p", first, second)
	}
}

// TestLookupMissThenHit exercises the plain miss/hit path.
func TestLookupMissThenHit(t *testing.T) {
	rt := NewRuntime(env())
	cache := NewPipelineCache(rt)
	defer cache.Drop("k2")

	if _, ok := cache.Lookup("k2"); ok {
		t.Fatalf("Lookup on empty cache returned a hit")
	}

	handle, err := cache.AddCached("k2", trivialHolder(t))
	if err != nil {
		t.Fatalf("AddCached: %v", err)
	}

	got, ok := cache.Lookup("k2")
	if !ok || got != handle {
		t.Fatalf("Lookup after AddCached = (%p, %v), want (%p, true)", got, ok, handle)
	}
}

// TestDropThenReAdd checks that dropping a key releases its handle and
// that a later AddCached under the same key produces a fresh one.
func TestDropThenReAdd(t *testing.T) {
	rt := NewRuntime(env())
	cache := NewPipelineCache(rt)

	first, err := cache.AddCached("k3", trivialHolder(t))
	if err != nil {
		t.Fatalf("AddCached: %v", err)
	}
	if err := cache.Drop("k3"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if _, ok := cache.Lookup("k3"); ok {
		t.Fatalf("Lookup found a handle after Drop")
	}

	second, err := cache.AddCached("k3", trivialHolder(t))
	if err != nil {
		t.Fatalf("AddCached after Drop: %v", err)
	}
	defer cache.Drop("k3")

	if first == second {
		t.Errorf("AddCached after Drop returned the same handle pointer")
	}
	// Release is idempotent: calling it again on the already-dropped
	// handle must be a harmless no-op (spec §9 Redesign flags: "Scoped
	// resources" / "RAII-like drop guarantee").
	if err := first.Release(); err != nil {
		t.Errorf("Release on an already-released handle = %v, want nil", err)
	}
}
