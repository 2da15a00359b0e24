package validate

import (
	"testing"

	"exprc/internal/expr"
	"exprc/internal/registry"
	"exprc/internal/schema"
	"exprc/internal/status"
	"exprc/internal/types"
)

func testRegistry() *registry.Registry {
	r := registry.New()
	r.Register(registry.Entry{
		Signature: registry.FunctionSignature{
			Name:       "add",
			ParamKinds: []types.Kind{types.NewInt32(), types.NewInt32()},
			ReturnKind: types.NewInt32(),
		},
		Null: registry.NullIfAnyNull,
	})
	r.Register(registry.Entry{
		Signature: registry.FunctionSignature{
			Name:       "less_than",
			ParamKinds: []types.Kind{types.NewInt32(), types.NewInt32()},
			ReturnKind: types.NewBoolean(),
		},
		Null: registry.NullIfAnyNull,
	})
	return r
}

func testSchema() *schema.Schema {
	return schema.New(
		schema.NewField("f0", types.NewInt32()),
		schema.NewField("f1", types.NewInt32()),
	)
}

func TestValidateOK(t *testing.T) {
	s := testSchema()
	reg := testRegistry()
	e := &expr.Expression{
		Root: &expr.Call{
			Name: "add",
			Children: []expr.Node{
				&expr.Field{Name: "f0", Kind: types.NewInt32()},
				&expr.Field{Name: "f1", Kind: types.NewInt32()},
			},
			Kind: types.NewInt32(),
		},
		Output: expr.OutputField{Name: "out", Kind: types.NewInt32()},
	}
	if st := Validate(e, s, reg); st != nil {
		t.Fatalf("expected OK, got %v", st)
	}
}

func TestValidateUnknownField(t *testing.T) {
	s := testSchema()
	reg := testRegistry()
	e := &expr.Expression{
		Root:   &expr.Field{Name: "missing", Kind: types.NewInt32()},
		Output: expr.OutputField{Name: "out", Kind: types.NewInt32()},
	}
	st := Validate(e, s, reg)
	if st == nil || st.Code != status.ExpressionValidationError {
		t.Fatalf("expected ExpressionValidationError, got %v", st)
	}
}

func TestValidateUnknownFunction(t *testing.T) {
	s := testSchema()
	reg := testRegistry()
	e := &expr.Expression{
		Root: &expr.Call{
			Name:     "frobnicate",
			Children: []expr.Node{&expr.Field{Name: "f0", Kind: types.NewInt32()}},
			Kind:     types.NewInt32(),
		},
		Output: expr.OutputField{Name: "out", Kind: types.NewInt32()},
	}
	if st := Validate(e, s, reg); st == nil || st.Code != status.ExpressionValidationError {
		t.Fatalf("expected ExpressionValidationError, got %v", st)
	}
}

func TestValidateIfMismatchedArms(t *testing.T) {
	s := testSchema()
	reg := testRegistry()
	e := &expr.Expression{
		Root: &expr.If{
			Cond: &expr.Call{
				Name:     "less_than",
				Children: []expr.Node{&expr.Field{Name: "f0", Kind: types.NewInt32()}, &expr.Literal{Kind: types.NewInt32(), Value: int64(1)}},
				Kind:     types.NewBoolean(),
			},
			Then: &expr.Literal{Kind: types.NewInt32(), Value: int64(1)},
			Else: &expr.Literal{Kind: types.NewFloat64(), Value: 1.0},
			Kind: types.NewInt32(),
		},
		Output: expr.OutputField{Name: "out", Kind: types.NewInt32()},
	}
	if st := Validate(e, s, reg); st == nil || st.Code != status.ExpressionValidationError {
		t.Fatalf("expected ExpressionValidationError, got %v", st)
	}
}

func TestValidateBooleanTooFewChildren(t *testing.T) {
	s := testSchema()
	reg := testRegistry()
	e := &expr.Expression{
		Root: &expr.Boolean{
			Op: expr.And,
			Children: []expr.Node{
				&expr.Call{Name: "less_than", Children: []expr.Node{&expr.Field{Name: "f0", Kind: types.NewInt32()}, &expr.Literal{Kind: types.NewInt32(), Value: int64(1)}}, Kind: types.NewBoolean()},
			},
		},
		Output: expr.OutputField{Name: "cond", Kind: types.NewBoolean()},
	}
	if st := Validate(e, s, reg); st == nil || st.Code != status.ExpressionValidationError {
		t.Fatalf("expected ExpressionValidationError, got %v", st)
	}
}
