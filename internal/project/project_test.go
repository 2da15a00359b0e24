package project_test

import (
	"testing"

	"github.com/kr/pretty"

	"exprc/internal/buffer"
	"exprc/internal/config"
	"exprc/internal/expr"
	"exprc/internal/jit"
	"exprc/internal/layout"
	"exprc/internal/project"
	"exprc/internal/registry"
	"exprc/internal/schema"
	"exprc/internal/selection"
	"exprc/internal/types"

	_ "exprc/internal/intrinsics"
)

func int32Schema() *schema.Schema {
	return schema.New(
		schema.NewField("f0", types.NewInt32()),
		schema.NewField("f1", types.NewInt32()),
	)
}

func addExpression() *expr.Expression {
	call := &expr.Call{
		Name:     "add",
		Children: []expr.Node{&expr.Field{Name: "f0", Kind: types.NewInt32()}, &expr.Field{Name: "f1", Kind: types.NewInt32()}},
		Kind:     types.NewInt32(),
	}
	return &expr.Expression{Root: call, Output: expr.OutputField{Name: "total", Kind: types.NewInt32()}}
}

func TestEvaluateSimpleArithmeticProjection(t *testing.T) {
	s := int32Schema()
	e := addExpression()
	eng := jit.New(config.Default(), registry.Global)
	p, st := project.Make(s, []*expr.Expression{e}, eng)
	if st != nil {
		t.Fatalf("make failed: %v", st)
	}
	defer p.Release()

	// Recompute the same slot plan project.Make built internally, so the
	// test binds inputs/outputs at the slots the compiled routine expects.
	plan := layout.Build([]*expr.Expression{e})

	const n = 3
	batch := buffer.NewBatch(n, plan.NumSlots, 0)
	f0 := buffer.NewFixedWidth(types.NewInt32(), n)
	f1 := buffer.NewFixedWidth(types.NewInt32(), n)
	out := buffer.NewFixedWidth(types.NewInt32(), n)
	for i, v := range []int64{1, 2, 3} {
		buffer.WriteCell(f0, i, v)
	}
	for i, v := range []int64{10, 20, 30} {
		buffer.WriteCell(f1, i, v)
	}

	batch.BindSlot(plan.Fields["f0"].Data, f0)
	batch.BindSlot(plan.Fields["f1"].Data, f1)
	batch.BindSlot(plan.Outputs["total"].Data, out)

	results, st := p.Evaluate(batch)
	if st != nil {
		t.Fatalf("evaluate failed: %v", st)
	}
	if len(results) != 1 {
		t.Fatalf("got %d output arrays, want 1", len(results))
	}
	want := []int64{11, 22, 33}
	got := make([]int64, len(want))
	for i := range want {
		if !results[0].Validity.Get(i) {
			t.Errorf("row %d should be valid", i)
		}
		got[i] = buffer.ReadCell(results[0], i).(int64)
	}
	if diff := pretty.Diff(got, want); len(diff) > 0 {
		t.Errorf("projected rows mismatch: %v", diff)
	}
}

func TestEvaluateSelectedCompactsOutput(t *testing.T) {
	s := int32Schema()
	e := addExpression()
	eng := jit.New(config.Default(), registry.Global)
	p, st := project.Make(s, []*expr.Expression{e}, eng)
	if st != nil {
		t.Fatalf("make failed: %v", st)
	}
	defer p.Release()

	plan := layout.Build([]*expr.Expression{e})

	const n = 5
	batch := buffer.NewBatch(n, plan.NumSlots, 0)
	f0 := buffer.NewFixedWidth(types.NewInt32(), n)
	f1 := buffer.NewFixedWidth(types.NewInt32(), n)
	for i := 0; i < n; i++ {
		buffer.WriteCell(f0, i, int64(i))
		buffer.WriteCell(f1, i, int64(0))
	}
	batch.BindSlot(plan.Fields["f0"].Data, f0)
	batch.BindSlot(plan.Fields["f1"].Data, f1)
	out := buffer.NewFixedWidth(types.NewInt32(), n)
	batch.BindSlot(plan.Outputs["total"].Data, out)

	sel := selection.New16(n)
	sel.Append(1)
	sel.Append(4)

	results, st := p.EvaluateSelected(batch, sel)
	if st != nil {
		t.Fatalf("evaluate failed: %v", st)
	}
	// selected rows 1 and 4 (values 1 and 4) land compacted at output
	// positions 0 and 1, not at their original input positions.
	if got := buffer.ReadCell(results[0], 0).(int64); got != 1 {
		t.Errorf("compacted position 0 = %d, want 1", got)
	}
	if got := buffer.ReadCell(results[0], 1).(int64); got != 4 {
		t.Errorf("compacted position 1 = %d, want 4", got)
	}
}
