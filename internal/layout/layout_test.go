package layout

import (
	"testing"

	"exprc/internal/expr"
	"exprc/internal/types"
)

func TestBuildReusesFieldSlots(t *testing.T) {
	f0 := &expr.Field{Name: "f0", Kind: types.NewInt32()}
	f1 := &expr.Field{Name: "f1", Kind: types.NewInt32()}
	e1 := &expr.Expression{
		Root:   &expr.Call{Name: "add", Children: []expr.Node{f0, f1}, Kind: types.NewInt32()},
		Output: expr.OutputField{Name: "out1", Kind: types.NewInt32()},
	}
	e2 := &expr.Expression{
		Root:   &expr.Call{Name: "add", Children: []expr.Node{f0, f1}, Kind: types.NewInt32()},
		Output: expr.OutputField{Name: "out2", Kind: types.NewInt32()},
	}

	plan := Build([]*expr.Expression{e1, e2})

	if len(plan.Fields) != 2 {
		t.Fatalf("expected 2 field slots, got %d", len(plan.Fields))
	}
	if len(plan.Outputs) != 2 {
		t.Fatalf("expected 2 output slots, got %d", len(plan.Outputs))
	}
	t0 := plan.Fields["f0"]
	t1 := plan.Fields["f1"]
	if t0 == t1 {
		t.Fatalf("f0 and f1 must not share slots")
	}
	o1 := plan.Outputs["out1"]
	o2 := plan.Outputs["out2"]
	if o1 == o2 {
		t.Fatalf("out1 and out2 must have distinct slots")
	}
	if plan.NumSlots <= 0 {
		t.Fatalf("expected positive NumSlots, got %d", plan.NumSlots)
	}
}

func TestBuildVariableWidthGetsOffsetsSlot(t *testing.T) {
	f := &expr.Field{Name: "s", Kind: types.NewUTF8()}
	e := &expr.Expression{
		Root:   f,
		Output: expr.OutputField{Name: "out", Kind: types.NewUTF8()},
	}
	plan := Build([]*expr.Expression{e})
	tr := plan.Fields["s"]
	if tr.Offsets < 0 {
		t.Fatalf("expected an offsets slot for a variable-width field")
	}
}
