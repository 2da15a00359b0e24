package intrinsics

import (
	"exprc/internal/registry"
	"exprc/internal/types"
)

func registerComparison(reg *registry.Registry) {
	ops := []struct {
		name  string
		floatCmp func(a, b float64) bool
		intCmp   func(a, b int64) bool
	}{
		{"equal", func(a, b float64) bool { return a == b }, func(a, b int64) bool { return a == b }},
		{"not_equal", func(a, b float64) bool { return a != b }, func(a, b int64) bool { return a != b }},
		{"less_than", func(a, b float64) bool { return a < b }, func(a, b int64) bool { return a < b }},
		{"less_than_or_equal_to", func(a, b float64) bool { return a <= b }, func(a, b int64) bool { return a <= b }},
		{"greater_than", func(a, b float64) bool { return a > b }, func(a, b int64) bool { return a > b }},
		{"greater_than_or_equal_to", func(a, b float64) bool { return a >= b }, func(a, b int64) bool { return a >= b }},
	}
	for _, k := range numericKinds {
		k := k
		for _, op := range ops {
			op := op
			impl := func(ctx *registry.ExecContext, holder interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
				if k.IsFloat() {
					return op.floatCmp(toF64(args[0]), toF64(args[1])), true, nil
				}
				return op.intCmp(toI64(args[0]), toI64(args[1])), true, nil
			}
			reg.Register(registry.Entry{
				Signature: registry.FunctionSignature{Name: op.name, ParamKinds: []types.Kind{k, k}, ReturnKind: types.NewBoolean()},
				LinkName:  op.name + "_" + k.String(),
				Null:      registry.NullIfAnyNull,
				Impl:      impl,
			})
		}
	}
}
