package jit_test

import (
	"testing"

	"exprc/internal/buffer"
	"exprc/internal/config"
	"exprc/internal/decompose"
	"exprc/internal/expr"
	"exprc/internal/jit"
	"exprc/internal/layout"
	"exprc/internal/registry"
	"exprc/internal/types"

	_ "exprc/internal/intrinsics" // registers into registry.Global
)

func TestFinalizeModuleRunsAddExpression(t *testing.T) {
	fieldA := &expr.Field{Name: "a", Kind: types.NewInt64()}
	fieldB := &expr.Field{Name: "b", Kind: types.NewInt64()}
	call := &expr.Call{Name: "add", Children: []expr.Node{fieldA, fieldB}, Kind: types.NewInt64()}
	expression := &expr.Expression{Root: call, Output: expr.OutputField{Name: "sum", Kind: types.NewInt64()}}

	plan := layout.Build([]*expr.Expression{expression})
	decomposed, st := decompose.Decompose(expression.Root, registry.Global)
	if st != nil {
		t.Fatalf("decompose failed: %v", st)
	}

	engine := jit.New(config.Default(), registry.Global)
	module, st := engine.FinalizeModule(decomposed, "sum", plan)
	if st != nil {
		t.Fatalf("finalize failed: %v", st)
	}
	defer module.Release()

	batch := buffer.NewBatch(2, plan.NumSlots, decomposed.NumLocals)
	aTriple := plan.Fields["a"]
	bTriple := plan.Fields["b"]
	outTriple := plan.Outputs["sum"]

	aArr := buffer.NewFixedWidth(types.NewInt64(), 2)
	bArr := buffer.NewFixedWidth(types.NewInt64(), 2)
	outArr := buffer.NewFixedWidth(types.NewInt64(), 2)
	buffer.WriteCell(aArr, 0, int64(3))
	buffer.WriteCell(bArr, 0, int64(4))
	aArr.Validity.Set(1, false) // row 1: null input

	batch.BindSlot(aTriple.Data, aArr)
	batch.BindSlot(bTriple.Data, bArr)
	batch.BindSlot(outTriple.Data, outArr)

	for row := 0; row < 2; row++ {
		if st := module.Compiled.Run(batch, row, row); st != nil {
			t.Fatalf("row %d: %v", row, st)
		}
	}

	if !outArr.Validity.Get(0) {
		t.Fatalf("row 0 should be valid")
	}
	if got := buffer.ReadCell(outArr, 0).(int64); got != 7 {
		t.Errorf("row 0 = %d, want 7", got)
	}
	if outArr.Validity.Get(1) {
		t.Errorf("row 1 should be invalid (null input)")
	}
}
