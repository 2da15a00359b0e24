package intrinsics

import (
	"fmt"

	"exprc/internal/registry"
	"exprc/internal/types"
)

// toI64/toF64 normalise the generic interface{} argument values the
// decomposed call tree passes in (spec §4.5's "function call" emission
// rule: inputs are read through the buffer-slot plan as typed cells, and
// arrive here already decoded to int64/float64 by internal/buffer).
func toI64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		panic(fmt.Sprintf("intrinsics: expected int64 arg, got %T", v))
	}
}

func toF64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		panic(fmt.Sprintf("intrinsics: expected float64 arg, got %T", v))
	}
}

func registerArithmetic(reg *registry.Registry) {
	for _, k := range numericKinds {
		k := k
		registerBinaryNumeric(reg, "add", k, func(a, b float64) float64 { return a + b }, func(a, b int64) int64 { return a + b })
		registerBinaryNumeric(reg, "subtract", k, func(a, b float64) float64 { return a - b }, func(a, b int64) int64 { return a - b })
		registerBinaryNumeric(reg, "multiply", k, func(a, b float64) float64 { return a * b }, func(a, b int64) int64 { return a * b })
		registerDivideLike(reg, "divide", k)
		if !k.IsFloat() {
			registerDivideLike(reg, "modulo", k)
		}
	}
}

func registerBinaryNumeric(reg *registry.Registry, name string, k types.Kind, floatOp func(a, b float64) float64, intOp func(a, b int64) int64) {
	impl := func(ctx *registry.ExecContext, holder interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
		if k.IsFloat() {
			return floatOp(toF64(args[0]), toF64(args[1])), true, nil
		}
		return intOp(toI64(args[0]), toI64(args[1])), true, nil
	}
	reg.Register(registry.Entry{
		Signature: registry.FunctionSignature{Name: name, ParamKinds: []types.Kind{k, k}, ReturnKind: k},
		LinkName:  name + "_" + k.String(),
		Null:      registry.NullIfAnyNull,
		Impl:      impl,
	})
}

// registerDivideLike covers divide/modulo, which are NULL_INTERNAL: even
// when both inputs are valid, a zero divisor makes the output invalid and
// is reported through the execution context (spec §4.5 tie-break:
// "integer division by zero is trapped by the intrinsic and reported
// through the context").
func registerDivideLike(reg *registry.Registry, name string, k types.Kind) {
	impl := func(ctx *registry.ExecContext, holderState interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
		for _, v := range argValid {
			if !v {
				return nil, false, nil
			}
		}
		if k.IsFloat() {
			a, b := toF64(args[0]), toF64(args[1])
			if b == 0 {
				ctx.SetError(fmt.Errorf("%s: division by zero", name))
				return nil, false, nil
			}
			if name == "modulo" {
				return nil, false, fmt.Errorf("modulo is not defined for float kinds")
			}
			return a / b, true, nil
		}
		a, b := toI64(args[0]), toI64(args[1])
		if b == 0 {
			ctx.SetError(fmt.Errorf("%s: division by zero", name))
			return nil, false, nil
		}
		if name == "modulo" {
			return a % b, true, nil
		}
		return a / b, true, nil
	}
	reg.Register(registry.Entry{
		Signature: registry.FunctionSignature{Name: name, ParamKinds: []types.Kind{k, k}, ReturnKind: k},
		LinkName:  name + "_" + k.String(),
		Null:      registry.NullInternal,
		Impl:      impl,
	})
}
