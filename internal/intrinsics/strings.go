package intrinsics

import (
	"errors"
	"strings"
	"unicode/utf8"

	"exprc/internal/holder"
	"exprc/internal/registry"
	"exprc/internal/types"
)

// registerStrings covers the variable-width intrinsics (spec §6.4,
// supplemented from original_source/'s gandiva string_ops): length
// functions, prefix/suffix predicates, and the two stateful holder-backed
// functions `like` and `to_date` (spec §4.9).
func registerStrings(reg *registry.Registry) {
	reg.Register(registry.Entry{
		Signature: registry.FunctionSignature{Name: "char_length", ParamKinds: []types.Kind{types.NewUTF8()}, ReturnKind: types.NewInt64()},
		LinkName:  "char_length_utf8",
		Null:      registry.NullIfAnyNull,
		Impl: func(ctx *registry.ExecContext, h interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
			b := args[0].([]byte)
			if !utf8.Valid(b) {
				ctx.SetError(errors.New("char_length: invalid UTF-8 input"))
				return int64(0), false, nil
			}
			return int64(utf8.RuneCount(b)), true, nil
		},
	})
	for _, k := range []types.Kind{types.NewUTF8(), types.NewBinary()} {
		k := k
		reg.Register(registry.Entry{
			Signature: registry.FunctionSignature{Name: "byte_length", ParamKinds: []types.Kind{k}, ReturnKind: types.NewInt64()},
			LinkName:  "byte_length_" + k.String(),
			Null:      registry.NullIfAnyNull,
			Impl: func(ctx *registry.ExecContext, h interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
				return int64(len(args[0].([]byte))), true, nil
			},
		})
	}

	registerPrefixSuffix(reg, "starts_with", func(s, prefix []byte) bool { return strings.HasPrefix(string(s), string(prefix)) })
	registerPrefixSuffix(reg, "ends_with", func(s, suffix []byte) bool { return strings.HasSuffix(string(s), string(suffix)) })

	// `like` takes (value, pattern[, escape]) but only the first argument is
	// a per-row operand — the pattern/escape are literals consumed at
	// holder-build time (spec §4.9), so the signature's remaining
	// ParamKinds still describe them for validation purposes.
	reg.Register(registry.Entry{
		Signature: registry.FunctionSignature{Name: "like", ParamKinds: []types.Kind{types.NewUTF8(), types.NewUTF8()}, ReturnKind: types.NewBoolean()},
		LinkName:  "like_utf8",
		Null:      registry.NullIfAnyNull,
		NeedsHolder: true,
		Impl: func(ctx *registry.ExecContext, h interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
			p := h.(*holder.Pattern)
			return p.Match(args[0].([]byte)), true, nil
		},
	})
	reg.Register(registry.Entry{
		Signature: registry.FunctionSignature{Name: "like", ParamKinds: []types.Kind{types.NewUTF8(), types.NewUTF8(), types.NewUTF8()}, ReturnKind: types.NewBoolean()},
		LinkName:  "like_utf8_escape",
		Null:      registry.NullIfAnyNull,
		NeedsHolder: true,
		Impl: func(ctx *registry.ExecContext, h interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
			p := h.(*holder.Pattern)
			return p.Match(args[0].([]byte)), true, nil
		},
	})

	// `to_date` is NULL_INTERNAL: an unparsable value is reported through
	// the context unless the holder's SuppressErrors flag asks for a null
	// result instead (spec §4.9).
	reg.Register(registry.Entry{
		Signature:   registry.FunctionSignature{Name: "to_date", ParamKinds: []types.Kind{types.NewUTF8(), types.NewUTF8()}, ReturnKind: types.NewTimestamp(types.Millisecond)},
		LinkName:    "to_date_utf8",
		Null:        registry.NullInternal,
		NeedsHolder: true,
		Impl: func(ctx *registry.ExecContext, h interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
			d := h.(*holder.Date)
			millis, ok := d.Parse(string(args[0].([]byte)))
			if !ok {
				if d.SuppressErrors {
					return nil, false, nil
				}
				ctx.SetError(errInvalidDate(d, args[0].([]byte)))
				return nil, false, nil
			}
			return millis, true, nil
		},
	})
}

func registerPrefixSuffix(reg *registry.Registry, name string, match func(s, affix []byte) bool) {
	reg.Register(registry.Entry{
		Signature: registry.FunctionSignature{Name: name, ParamKinds: []types.Kind{types.NewUTF8(), types.NewUTF8()}, ReturnKind: types.NewBoolean()},
		LinkName:  name + "_utf8",
		Null:      registry.NullIfAnyNull,
		Impl: func(ctx *registry.ExecContext, h interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
			return match(args[0].([]byte), args[1].([]byte)), true, nil
		},
	})
}

func errInvalidDate(d *holder.Date, value []byte) error {
	return &dateParseError{value: string(value)}
}

type dateParseError struct{ value string }

func (e *dateParseError) Error() string {
	return "to_date: value " + e.value + " did not match the configured format"
}
