package filter_test

import (
	"testing"

	"exprc/internal/buffer"
	"exprc/internal/config"
	"exprc/internal/expr"
	"exprc/internal/filter"
	"exprc/internal/jit"
	"exprc/internal/layout"
	"exprc/internal/registry"
	"exprc/internal/schema"
	"exprc/internal/types"

	_ "exprc/internal/intrinsics"
)

// TestEvaluateFilterOnSum reproduces the sum-filter scenario: condition
// less_than(add(f0,f1), 10) over f0=[1,2,3,4,6] (validity [T,T,T,F,T]),
// f1=[5,9,6,17,3] (validity [T,T,F,T,T]). Row 1: 2+9=11, rejected. Row 2:
// f1 invalid. Row 3: f0 invalid. Row 4: 6+3=9, accepted. Expected
// selection [0,4].
func TestEvaluateFilterOnSum(t *testing.T) {
	s := schema.New(schema.NewField("f0", types.NewInt32()), schema.NewField("f1", types.NewInt32()))

	sum := &expr.Call{
		Name:     "add",
		Children: []expr.Node{&expr.Field{Name: "f0", Kind: types.NewInt32()}, &expr.Field{Name: "f1", Kind: types.NewInt32()}},
		Kind:     types.NewInt32(),
	}
	cond := expr.NewCondition(&expr.Call{
		Name:     "less_than",
		Children: []expr.Node{sum, &expr.Literal{Kind: types.NewInt32(), Value: int64(10)}},
		Kind:     types.NewBoolean(),
	})

	eng := jit.New(config.Default(), registry.Global)
	f, st := filter.Make(s, cond, eng)
	if st != nil {
		t.Fatalf("make failed: %v", st)
	}
	defer f.Release()

	plan := layout.Build([]*expr.Expression{cond})
	const n = 5
	batch := buffer.NewBatch(n, plan.NumSlots, 0)

	f0 := buffer.NewFixedWidth(types.NewInt32(), n)
	f1 := buffer.NewFixedWidth(types.NewInt32(), n)
	for i, v := range []int64{1, 2, 3, 4, 6} {
		buffer.WriteCell(f0, i, v)
	}
	for i, v := range []int64{5, 9, 6, 17, 3} {
		buffer.WriteCell(f1, i, v)
	}
	for i, valid := range []bool{true, true, true, false, true} {
		f0.Validity.Set(i, valid)
	}
	for i, valid := range []bool{true, true, false, true, true} {
		f1.Validity.Set(i, valid)
	}

	batch.BindSlot(plan.Fields["f0"].Data, f0)
	batch.BindSlot(plan.Fields["f1"].Data, f1)

	sel, st := f.Evaluate(batch)
	if st != nil {
		t.Fatalf("evaluate failed: %v", st)
	}
	want := []int{0, 4}
	if sel.NumSlots() != len(want) {
		t.Fatalf("got %d selected rows, want %d", sel.NumSlots(), len(want))
	}
	for i, w := range want {
		if got := sel.At(i); got != w {
			t.Errorf("selection[%d] = %d, want %d", i, got, w)
		}
	}
}

func TestEvaluateFilterRejectsEmptyBatch(t *testing.T) {
	s := schema.New(schema.NewField("f0", types.NewInt32()))
	cond := expr.NewCondition(&expr.Call{
		Name:     "less_than",
		Children: []expr.Node{&expr.Field{Name: "f0", Kind: types.NewInt32()}, &expr.Literal{Kind: types.NewInt32(), Value: int64(10)}},
		Kind:     types.NewBoolean(),
	})
	eng := jit.New(config.Default(), registry.Global)
	f, st := filter.Make(s, cond, eng)
	if st != nil {
		t.Fatalf("make failed: %v", st)
	}
	defer f.Release()

	batch := buffer.NewBatch(0, 8, 0)
	if _, st := f.Evaluate(batch); st == nil {
		t.Fatalf("expected error on empty batch")
	}
}
