// Package intrinsics is the catalogue of precompiled intrinsic
// implementations named in spec §6.4: arithmetic, comparison, logical
// negation, null/numeric predicates, casts, date/time extraction, UTF-8
// length, prefix/suffix predicates, like, to_date, and hash32/hash64.
//
// The registry itself (spec §4.1) is a data table the core consults; this
// package is that table's concrete contents, registered once into
// registry.Global at package init — mirroring the teacher's
// registerBuiltins() pattern in internal/vm, generalised from a dynamic
// language's builtin-function table to a typed, signature-keyed one.
package intrinsics

import (
	"exprc/internal/registry"
	"exprc/internal/types"
)

func init() {
	Register(registry.Global)
}

// Register populates reg with every intrinsic this package implements. It
// is exported (rather than only running at init) so tests can build an
// isolated registry without depending on process-wide global state.
func Register(reg *registry.Registry) {
	registerArithmetic(reg)
	registerComparison(reg)
	registerLogical(reg)
	registerNullPredicates(reg)
	registerCasts(reg)
	registerDateTime(reg)
	registerStrings(reg)
	registerHash(reg)
}

// numericKinds lists every numeric kind the arithmetic/comparison/cast
// tables iterate over (spec §6.4: "arithmetic on signed integer and float
// kinds").
var numericKinds = []types.Kind{
	types.NewInt8(), types.NewInt16(), types.NewInt32(), types.NewInt64(),
	types.NewFloat32(), types.NewFloat64(),
}
