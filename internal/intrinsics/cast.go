package intrinsics

import (
	"exprc/internal/registry"
	"exprc/internal/types"
)

// castName mirrors gandiva's cast_*_ops naming convention
// (cpp/src/gandiva function registry entries are named "castFLOAT8",
// "castDATE", etc.) adapted to this closed kind set.
func castName(to types.Kind) string {
	switch to.ID {
	case types.Int8:
		return "castINT8"
	case types.Int16:
		return "castINT16"
	case types.Int32:
		return "castINT32"
	case types.Int64:
		return "castINT64"
	case types.Float32:
		return "castFLOAT4"
	case types.Float64:
		return "castFLOAT8"
	case types.Date32:
		return "castDATE"
	case types.TimeOfDay32:
		return "castTIME"
	case types.Timestamp:
		return "castTIMESTAMP"
	default:
		return "cast"
	}
}

// registerCasts covers numeric-to-numeric casts (spec §6.4) plus the
// calendar-kind casts supplemented from original_source/ (gandiva's
// cast_temporal_ops): castDATE/castTIMESTAMP/castTIME between the calendar
// kinds and their millis-since-epoch integer representation. Since every
// calendar kind shares the millis-since-epoch int64/int32 wire
// representation (spec §3), these casts are reinterpretation, not
// recomputation.
func registerCasts(reg *registry.Registry) {
	for _, from := range numericKinds {
		for _, to := range numericKinds {
			if from.Equal(to) {
				continue
			}
			from, to := from, to
			reg.Register(registry.Entry{
				Signature: registry.FunctionSignature{Name: castName(to), ParamKinds: []types.Kind{from}, ReturnKind: to},
				LinkName:  castName(to) + "_from_" + from.String(),
				Null:      registry.NullIfAnyNull,
				Impl: func(ctx *registry.ExecContext, holder interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
					if to.IsFloat() {
						if from.IsFloat() {
							return toF64(args[0]), true, nil
						}
						return float64(toI64(args[0])), true, nil
					}
					if from.IsFloat() {
						return int64(toF64(args[0])), true, nil
					}
					return toI64(args[0]), true, nil
				},
			})
		}
	}

	calendarToMillis := []types.Kind{types.NewDate32(), types.NewTimeOfDay32(), types.NewTimestamp(types.Millisecond)}
	for _, cal := range calendarToMillis {
		cal := cal
		reg.Register(registry.Entry{
			Signature: registry.FunctionSignature{Name: castName(types.NewInt64()), ParamKinds: []types.Kind{cal}, ReturnKind: types.NewInt64()},
			LinkName:  "castINT64_from_" + cal.String(),
			Null:      registry.NullIfAnyNull,
			Impl: func(ctx *registry.ExecContext, holder interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
				return toI64(args[0]), true, nil
			},
		})
		for _, dst := range calendarToMillis {
			if dst.Equal(cal) {
				continue
			}
			dst := dst
			reg.Register(registry.Entry{
				Signature: registry.FunctionSignature{Name: castName(dst), ParamKinds: []types.Kind{cal}, ReturnKind: dst},
				LinkName:  castName(dst) + "_from_" + cal.String(),
				Null:      registry.NullIfAnyNull,
				Impl: func(ctx *registry.ExecContext, holder interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
					return toI64(args[0]), true, nil
				},
			})
		}
	}
}
