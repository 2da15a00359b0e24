package intrinsics

import (
	"testing"
	"time"

	"exprc/internal/holder"
	"exprc/internal/registry"
	"exprc/internal/types"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	Register(reg)
	return reg
}

func daysSinceEpoch(y int, m time.Month, d int) int64 {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int64(t.Sub(epoch).Hours() / 24)
}

func lookup(t *testing.T, reg *registry.Registry, name string, params []types.Kind, ret types.Kind) *registry.Entry {
	t.Helper()
	e, ok := reg.Lookup(name, params, ret)
	if !ok {
		t.Fatalf("no entry for %s(%v)->%s", name, params, ret)
	}
	return e
}

func TestWeekOfYearISOBoundaries(t *testing.T) {
	reg := testRegistry(t)
	entry := lookup(t, reg, "week_of_year", []types.Kind{types.NewDate32()}, types.NewInt64())
	ctx := &registry.ExecContext{}

	cases := []struct {
		y    int
		m    time.Month
		d    int
		week int64
	}{
		{2016, time.January, 1, 53},   // Fri Jan 1 2016 -> week 53 of 2015
		{2020, time.December, 31, 53}, // Thu Dec 31 2020 -> week 53 of 2020
		{2019, time.December, 30, 1},  // Mon Dec 30 2019 -> week 1 of 2020
	}
	for _, c := range cases {
		days := daysSinceEpoch(c.y, c.m, c.d)
		got, valid, err := entry.Impl(ctx, nil, []interface{}{days}, []bool{true})
		if err != nil || !valid {
			t.Fatalf("%04d-%02d-%02d: unexpected err=%v valid=%v", c.y, c.m, c.d, err, valid)
		}
		if got.(int64) != c.week {
			t.Errorf("%04d-%02d-%02d: week_of_year = %d, want %d", c.y, c.m, c.d, got, c.week)
		}
	}
}

func TestDateFieldExtraction(t *testing.T) {
	reg := testRegistry(t)
	ctx := &registry.ExecContext{}
	days := daysSinceEpoch(2024, time.March, 15)

	for _, tc := range []struct {
		name string
		want int64
	}{
		{"year", 2024},
		{"month", 3},
		{"day", 15},
		{"day_of_week", 5}, // Friday
	} {
		entry := lookup(t, reg, tc.name, []types.Kind{types.NewDate32()}, types.NewInt64())
		got, valid, err := entry.Impl(ctx, nil, []interface{}{days}, []bool{true})
		if err != nil || !valid {
			t.Fatalf("%s: unexpected err=%v valid=%v", tc.name, err, valid)
		}
		if got.(int64) != tc.want {
			t.Errorf("%s = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestDivideByZeroReportsContextError(t *testing.T) {
	reg := testRegistry(t)
	entry := lookup(t, reg, "divide", []types.Kind{types.NewInt64(), types.NewInt64()}, types.NewInt64())
	ctx := &registry.ExecContext{}
	_, valid, err := entry.Impl(ctx, nil, []interface{}{int64(10), int64(0)}, []bool{true, true})
	if err != nil {
		t.Fatalf("divide should report through ctx, not return err: %v", err)
	}
	if valid {
		t.Fatalf("divide by zero should be invalid")
	}
	if ctx.Err() == nil {
		t.Fatalf("expected context error to be set on divide by zero")
	}
}

// divide's null-divisor guard must AND across however many argument
// validity bits it is handed, not assume exactly two (spec §8: output
// validity is the conjunction of source validity bits).
func TestDivideNullArgumentPropagatesRegardlessOfArgValidityCount(t *testing.T) {
	reg := testRegistry(t)
	entry := lookup(t, reg, "divide", []types.Kind{types.NewInt64(), types.NewInt64()}, types.NewInt64())
	ctx := &registry.ExecContext{}

	_, valid, err := entry.Impl(ctx, nil, []interface{}{int64(10), int64(2)}, []bool{true, false})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if valid {
		t.Fatalf("divide with a null divisor argument bit must be invalid")
	}

	_, valid, err = entry.Impl(ctx, nil, []interface{}{int64(10), int64(2)}, []bool{true, true, false})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if valid {
		t.Fatalf("divide must still catch a null bit when handed more than two argument validity entries")
	}
}

func TestHashNullIsZeroAndCrossKindEqual(t *testing.T) {
	reg := testRegistry(t)
	ctx := &registry.ExecContext{}

	h32 := lookup(t, reg, "hash32", []types.Kind{types.NewInt64()}, types.NewInt32())
	got, valid, err := h32.Impl(ctx, nil, []interface{}{int64(0)}, []bool{false})
	if err != nil || !valid {
		t.Fatalf("unexpected err=%v valid=%v", err, valid)
	}
	if got.(int64) != 0 {
		t.Errorf("hash32(null) = %v, want 0", got)
	}

	intEntry := lookup(t, reg, "hash64", []types.Kind{types.NewInt64()}, types.NewInt64())
	floatEntry := lookup(t, reg, "hash64", []types.Kind{types.NewFloat64()}, types.NewInt64())
	intHash, _, _ := intEntry.Impl(ctx, nil, []interface{}{int64(5)}, []bool{true})
	floatHash, _, _ := floatEntry.Impl(ctx, nil, []interface{}{float64(5)}, []bool{true})
	if intHash.(int64) != floatHash.(int64) {
		t.Errorf("hash64(int64(5)) = %v, hash64(float64(5)) = %v, want equal", intHash, floatHash)
	}
}

func TestLikeHolderPatternMatching(t *testing.T) {
	reg := testRegistry(t)
	entry := lookup(t, reg, "like", []types.Kind{types.NewUTF8(), types.NewUTF8()}, types.NewBoolean())
	p, st := holder.NewPattern("foo%", 0, false)
	if st != nil {
		t.Fatalf("pattern build failed: %v", st)
	}
	boundEntry := entry.WithHolder(p)
	ctx := &registry.ExecContext{}
	got, valid, err := boundEntry.Impl(ctx, boundEntry.Holder, []interface{}{[]byte("foobar")}, []bool{true})
	if err != nil || !valid || !got.(bool) {
		t.Fatalf("like(foobar, foo%%) = %v, %v, %v; want true", got, valid, err)
	}
	got, _, _ = boundEntry.Impl(ctx, boundEntry.Holder, []interface{}{[]byte("barfoo")}, []bool{true})
	if got.(bool) {
		t.Errorf("like(barfoo, foo%%) = true, want false")
	}
}
