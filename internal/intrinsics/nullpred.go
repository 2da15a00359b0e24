package intrinsics

import (
	"exprc/internal/registry"
	"exprc/internal/types"
)

// allKinds enumerates the full closed value-kind set (spec §3) for the
// kind-generic predicates below.
var allKinds = []types.Kind{
	types.NewBoolean(), types.NewInt8(), types.NewInt16(), types.NewInt32(), types.NewInt64(),
	types.NewFloat32(), types.NewFloat64(), types.NewUTF8(), types.NewBinary(),
	types.NewDate32(), types.NewTimeOfDay32(), types.NewTimestamp(types.Millisecond),
}

// registerNullPredicates implements is_null/is_not_null/is_numeric on every
// kind — a feature the spec.md distillation narrowed to "numerics" but
// SPEC_FULL's gandiva-grounded supplement restores for every kind (gandiva
// registers validity predicates per kind, not just numeric ones).
//
// These are modelled as NULL_INTERNAL entries even though their own result
// is never itself null: NULL_INTERNAL is the only decomposition path that
// threads the child's *validity* into the Impl call (spec §4.4), which is
// exactly what is_null/is_not_null need to read.
func registerNullPredicates(reg *registry.Registry) {
	for _, k := range allKinds {
		k := k
		reg.Register(registry.Entry{
			Signature: registry.FunctionSignature{Name: "is_null", ParamKinds: []types.Kind{k}, ReturnKind: types.NewBoolean()},
			LinkName:  "is_null_" + k.String(),
			Null:      registry.NullInternal,
			Impl: func(ctx *registry.ExecContext, holder interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
				return !argValid[0], true, nil
			},
		})
		reg.Register(registry.Entry{
			Signature: registry.FunctionSignature{Name: "is_not_null", ParamKinds: []types.Kind{k}, ReturnKind: types.NewBoolean()},
			LinkName:  "is_not_null_" + k.String(),
			Null:      registry.NullInternal,
			Impl: func(ctx *registry.ExecContext, holder interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
				return argValid[0], true, nil
			},
		})
		numeric := k.IsNumeric()
		reg.Register(registry.Entry{
			Signature: registry.FunctionSignature{Name: "is_numeric", ParamKinds: []types.Kind{k}, ReturnKind: types.NewBoolean()},
			LinkName:  "is_numeric_" + k.String(),
			Null:      registry.NullNever,
			Impl: func(ctx *registry.ExecContext, holder interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
				return numeric, true, nil
			},
		})
	}
}
