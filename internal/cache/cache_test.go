package cache_test

import (
	"testing"

	"exprc/internal/cache"
	"exprc/internal/config"
	"exprc/internal/expr"
	"exprc/internal/jit"
	"exprc/internal/registry"
	"exprc/internal/schema"
	"exprc/internal/types"

	_ "exprc/internal/intrinsics"
)

func sumSchemaAndExpr(outName string) (*schema.Schema, []*expr.Expression) {
	s := schema.New(schema.NewField("f0", types.NewInt32()), schema.NewField("f1", types.NewInt32()))
	call := &expr.Call{
		Name:     "add",
		Children: []expr.Node{&expr.Field{Name: "f0", Kind: types.NewInt32()}, &expr.Field{Name: "f1", Kind: types.NewInt32()}},
		Kind:     types.NewInt32(),
	}
	return s, []*expr.Expression{{Root: call, Output: expr.OutputField{Name: outName, Kind: types.NewInt32()}}}
}

func likeSchemaAndExpr(outName string) (*schema.Schema, []*expr.Expression) {
	s := schema.New(schema.NewField("f0", types.NewUTF8()))
	call := &expr.Call{
		Name: "like",
		Children: []expr.Node{
			&expr.Field{Name: "f0", Kind: types.NewUTF8()},
			&expr.Literal{Kind: types.NewUTF8(), Value: []byte("a%")},
		},
		Kind: types.NewBoolean(),
	}
	return s, []*expr.Expression{{Root: call, Output: expr.OutputField{Name: outName, Kind: types.NewBoolean()}}}
}

// A `like`-bearing expression salts its cache key with a per-goroutine
// bucket (spec §4.10). Repeated calls from the same goroutine must still
// hit the same cache entry — if the salt were redrawn on every call, this
// would spuriously miss and build a fresh Projector each time.
func TestProjectorCacheWithLikeExpressionStableWithinGoroutine(t *testing.T) {
	c := cache.New(4)
	eng := jit.New(config.Default(), registry.Global)
	s, exprs := likeSchemaAndExpr("matches")

	p1, st := c.Projector(s, exprs, config.Default(), eng)
	if st != nil {
		t.Fatalf("first build failed: %v", st)
	}
	for i := 0; i < 10; i++ {
		p2, st := c.Projector(s, exprs, config.Default(), eng)
		if st != nil {
			t.Fatalf("repeat build %d failed: %v", i, st)
		}
		if p1 != p2 {
			t.Fatalf("call %d: expected reference-equal Projector for a repeated like-bearing call from the same goroutine", i)
		}
	}
	if c.Len() != 1 {
		t.Fatalf("cache should hold exactly one entry, got %d", c.Len())
	}
}

func TestProjectorCacheHitIsReferenceEqual(t *testing.T) {
	c := cache.New(4)
	eng := jit.New(config.Default(), registry.Global)
	s, exprs := sumSchemaAndExpr("total")

	p1, st := c.Projector(s, exprs, config.Default(), eng)
	if st != nil {
		t.Fatalf("first build failed: %v", st)
	}
	p2, st := c.Projector(s, exprs, config.Default(), eng)
	if st != nil {
		t.Fatalf("second build failed: %v", st)
	}
	if p1 != p2 {
		t.Fatalf("expected reference-equal Projector on cache hit, got distinct instances")
	}
	if c.Len() != 1 {
		t.Fatalf("cache should hold exactly one entry, got %d", c.Len())
	}
}

func TestProjectorCacheDistinguishesExpressions(t *testing.T) {
	c := cache.New(4)
	eng := jit.New(config.Default(), registry.Global)
	s, exprsA := sumSchemaAndExpr("total")
	_, exprsB := sumSchemaAndExpr("grand_total")

	pA, st := c.Projector(s, exprsA, config.Default(), eng)
	if st != nil {
		t.Fatalf("build A failed: %v", st)
	}
	pB, st := c.Projector(s, exprsB, config.Default(), eng)
	if st != nil {
		t.Fatalf("build B failed: %v", st)
	}
	if pA == pB {
		t.Fatalf("differently-named outputs should not share a cache entry")
	}
	if c.Len() != 2 {
		t.Fatalf("cache should hold two entries, got %d", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := cache.New(1)
	eng := jit.New(config.Default(), registry.Global)
	s, exprsA := sumSchemaAndExpr("total")
	_, exprsB := sumSchemaAndExpr("grand_total")

	pA0, st := c.Projector(s, exprsA, config.Default(), eng)
	if st != nil {
		t.Fatalf("build A failed: %v", st)
	}
	if _, st := c.Projector(s, exprsB, config.Default(), eng); st != nil {
		t.Fatalf("build B failed: %v", st)
	}
	if c.Len() != 1 {
		t.Fatalf("capacity-1 cache should hold exactly one entry after the second build, got %d", c.Len())
	}

	// Rebuilding A must miss (it was evicted) and produce a fresh instance.
	pA1, _ := c.Projector(s, exprsA, config.Default(), eng)
	pA2, _ := c.Projector(s, exprsA, config.Default(), eng)
	if pA1 == pA0 {
		t.Fatalf("A should have been evicted by B and rebuilt as a fresh instance")
	}
	if pA1 != pA2 {
		t.Fatalf("rebuilt A should itself be stable across the immediately-following hit")
	}
}
