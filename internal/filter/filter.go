// Package filter implements the §4.8 Filter: a specialised single-condition
// evaluator that turns a boolean expression into a selection vector instead
// of a materialised output column.
//
// Grounded on internal/project's Projector (itself grounded on the
// teacher's compile-once-run-many VM shape): a Filter is a Projector
// restricted to exactly one boolean-kinded expression, whose compiled
// result bitmap and validity bitmap are intersected and scanned into a
// selection vector rather than returned as a column.
package filter

import (
	"exprc/internal/buffer"
	"exprc/internal/decompose"
	"exprc/internal/expr"
	"exprc/internal/jit"
	"exprc/internal/layout"
	"exprc/internal/schema"
	"exprc/internal/selection"
	"exprc/internal/status"
	"exprc/internal/types"
	"exprc/internal/validate"
)

// Filter holds a schema and one compiled boolean condition (spec §2 item 8).
type Filter struct {
	schema *schema.Schema
	plan   *layout.Plan
	module *jit.Module
}

// Make validates, annotates, decomposes, and finalises cond's module (spec
// §4.8). cond's root must be boolean-kinded; use expr.NewCondition to build
// it.
func Make(s *schema.Schema, cond *expr.Expression, eng *jit.Engine) (*Filter, *status.Status) {
	reg := eng.Registry()
	if !cond.Root.ResultKind().Equal(types.NewBoolean()) {
		return nil, status.Invalidf("filter: condition root must be boolean-kinded, got %s", cond.Root.ResultKind())
	}
	if st := validate.Validate(cond, s, reg); st != nil {
		return nil, st
	}

	plan := layout.Build([]*expr.Expression{cond})
	decomposed, st := decompose.Decompose(cond.Root, reg)
	if st != nil {
		return nil, st
	}
	m, st := eng.FinalizeModule(decomposed, cond.Output.Name, plan)
	if st != nil {
		return nil, st
	}

	return &Filter{schema: s, plan: plan, module: m}, nil
}

// Release returns the compiled condition's backing arena.
func (f *Filter) Release() { f.module.Release() }

// Evaluate runs the compiled condition over every row of batch, intersects
// the resulting value bitmap with its validity bitmap, and scans the
// intersection into a selection vector (spec §4.8): the returned vector's
// entries are exactly the ascending row indices r for which the condition
// evaluates to (valid, true).
//
// batch need not have the condition's output slot pre-bound: Evaluate
// allocates its own scratch boolean array for the condition result and
// binds it itself, since the caller has no use for the raw per-row
// booleans, only the compacted selection.
func (f *Filter) Evaluate(batch *buffer.Batch) (*selection.Vector, *status.Status) {
	if batch.NumRows == 0 {
		return nil, status.Invalidf("filter: batch has no rows")
	}

	condArr := buffer.NewFixedWidth(types.NewBoolean(), batch.NumRows)
	batch.BindSlot(f.module.Compiled.Output.Data, condArr)

	for row := 0; row < batch.NumRows; row++ {
		if st := f.module.Compiled.Run(batch, row, row); st != nil {
			return nil, st
		}
	}

	result := buffer.NewBitmap(batch.NumRows)
	buffer.AndInto(result, buffer.Bitmap(condArr.Data), condArr.Validity)

	sel := selection.NewForRowCount(batch.NumRows)
	result.ToSelection(batch.NumRows, func(row int) { sel.Append(row) })
	return sel, nil
}
