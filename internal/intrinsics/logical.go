package intrinsics

import (
	"exprc/internal/registry"
	"exprc/internal/types"
)

// registerLogical covers the unary `not` intrinsic (spec §6.4: "logical
// negation"); n-ary AND/OR are not registry entries at all — they are a
// distinct expr.Boolean node decomposed and emitted directly (spec §3,
// §4.4, §4.5), not a function call.
func registerLogical(reg *registry.Registry) {
	reg.Register(registry.Entry{
		Signature: registry.FunctionSignature{Name: "not", ParamKinds: []types.Kind{types.NewBoolean()}, ReturnKind: types.NewBoolean()},
		LinkName:  "not_bool",
		Null:      registry.NullIfAnyNull,
		Impl: func(ctx *registry.ExecContext, holder interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
			return !args[0].(bool), true, nil
		},
	})
}
