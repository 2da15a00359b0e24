package intrinsics

import (
	"time"

	"github.com/golang-sql/civil"

	"exprc/internal/registry"
	"exprc/internal/types"
)

var epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// dateFromDays converts a Date32 cell (days-since-epoch, spec §3) to a
// civil.Date, matching gandiva's date32-to-broken-down-date conversion in
// original_source/ (date_time_holder / extractYear family).
func dateFromDays(days int64) civil.Date {
	return civil.DateOf(epoch.AddDate(0, 0, int(days)))
}

// timeFromTimestamp converts a Timestamp cell to a UTC time.Time, honouring
// the kind's unit parameter (spec §3: Timestamp is parameterised by unit).
func timeFromTimestamp(v int64, unit types.TimeUnit) time.Time {
	switch unit {
	case types.Second:
		return time.Unix(v, 0).UTC()
	case types.Microsecond:
		return time.Unix(0, v*int64(time.Microsecond)).UTC()
	default: // Millisecond
		return time.Unix(0, v*int64(time.Millisecond)).UTC()
	}
}

// registerDateTime implements field-extraction functions over the calendar
// kinds (spec §6.5 and original_source/'s gandiva date_time_ops
// supplement): year/month/day/day_of_year/day_of_week/week_of_year over
// Date32 and Timestamp, hour/minute/second over TimeOfDay32 and Timestamp.
// week_of_year is ISO 8601 (spec §6.5's worked boundary cases) and is
// delegated to time.Time.ISOWeek, which implements that exact algorithm.
func registerDateTime(reg *registry.Registry) {
	registerDateField(reg, "year", func(d civil.Date) int64 { return int64(d.Year) })
	registerDateField(reg, "month", func(d civil.Date) int64 { return int64(d.Month) })
	registerDateField(reg, "day", func(d civil.Date) int64 { return int64(d.Day) })
	registerDateField(reg, "day_of_week", func(d civil.Date) int64 {
		// Monday=1 .. Sunday=7, matching ISO 8601 weekday numbering used by
		// week_of_year below (spec §6.5).
		wd := int64(d.In(time.UTC).Weekday())
		if wd == 0 {
			return 7
		}
		return wd
	})
	registerDateField(reg, "day_of_year", func(d civil.Date) int64 {
		return int64(d.In(time.UTC).YearDay())
	})
	registerDateField(reg, "week_of_year", func(d civil.Date) int64 {
		_, week := d.In(time.UTC).ISOWeek()
		return int64(week)
	})

	registerTimeField(reg, "hour", func(millis int64) int64 { return (millis / 3600000) % 24 })
	registerTimeField(reg, "minute", func(millis int64) int64 { return (millis / 60000) % 60 })
	registerTimeField(reg, "second", func(millis int64) int64 { return (millis / 1000) % 60 })
}

func registerDateField(reg *registry.Registry, name string, extract func(civil.Date) int64) {
	reg.Register(registry.Entry{
		Signature: registry.FunctionSignature{Name: name, ParamKinds: []types.Kind{types.NewDate32()}, ReturnKind: types.NewInt64()},
		LinkName:  name + "_date32",
		Null:      registry.NullIfAnyNull,
		Impl: func(ctx *registry.ExecContext, holder interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
			return extract(dateFromDays(args[0].(int64))), true, nil
		},
	})
	for _, unit := range []types.TimeUnit{types.Millisecond, types.Microsecond, types.Second} {
		unit := unit
		k := types.NewTimestamp(unit)
		reg.Register(registry.Entry{
			Signature: registry.FunctionSignature{Name: name, ParamKinds: []types.Kind{k}, ReturnKind: types.NewInt64()},
			LinkName:  name + "_" + k.String(),
			Null:      registry.NullIfAnyNull,
			Impl: func(ctx *registry.ExecContext, holder interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
				return extract(civil.DateOf(timeFromTimestamp(args[0].(int64), unit))), true, nil
			},
		})
	}
}

func registerTimeField(reg *registry.Registry, name string, extract func(millisSinceMidnight int64) int64) {
	reg.Register(registry.Entry{
		Signature: registry.FunctionSignature{Name: name, ParamKinds: []types.Kind{types.NewTimeOfDay32()}, ReturnKind: types.NewInt64()},
		LinkName:  name + "_time32",
		Null:      registry.NullIfAnyNull,
		Impl: func(ctx *registry.ExecContext, holder interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
			return extract(args[0].(int64)), true, nil
		},
	})
	for _, unit := range []types.TimeUnit{types.Millisecond, types.Microsecond, types.Second} {
		unit := unit
		k := types.NewTimestamp(unit)
		reg.Register(registry.Entry{
			Signature: registry.FunctionSignature{Name: name, ParamKinds: []types.Kind{k}, ReturnKind: types.NewInt64()},
			LinkName:  name + "_" + k.String(),
			Null:      registry.NullIfAnyNull,
			Impl: func(ctx *registry.ExecContext, holder interface{}, args []interface{}, argValid []bool) (interface{}, bool, error) {
				t := timeFromTimestamp(args[0].(int64), unit)
				millis := int64(t.Hour())*3600000 + int64(t.Minute())*60000 + int64(t.Second())*1000 + int64(t.Nanosecond()/1e6)
				return extract(millis), true, nil
			},
		})
	}
}
