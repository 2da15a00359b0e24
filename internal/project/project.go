// Package project implements the §4.7 Projector: the top-level contract
// object that compiles a list of expressions against a schema once, then
// evaluates them against any number of batches.
//
// Grounded on the teacher's top-level VM/compiler pairing
// (internal/vm/vm.go's NewVM+Run driving internal/compiler's compiled
// output): where the teacher's VM owns a single compiled chunk and runs it
// row-by-row over a call stack, a Projector owns one compiled leaf routine
// per output column and runs each over every row of a batch (or every
// selected row of a selection vector), mirroring the teacher's
// "compile-once, run-many" shape applied to a columnar rather than a
// scalar execution model.
package project

import (
	"exprc/internal/buffer"
	"exprc/internal/decompose"
	"exprc/internal/expr"
	"exprc/internal/jit"
	"exprc/internal/layout"
	"exprc/internal/pool"
	"exprc/internal/schema"
	"exprc/internal/selection"
	"exprc/internal/status"
	"exprc/internal/types"
	"exprc/internal/validate"
)

// Projector holds a schema, an ordered output field list, and one compiled
// module per expression (spec §2 item 8).
type Projector struct {
	schema  *schema.Schema
	outputs []expr.OutputField
	plan    *layout.Plan
	modules []*jit.Module
}

// Make validates, annotates, decomposes, and finalises one module per
// expression in exprs (spec §4.7). exprs must be non-empty and every
// expression's output kind must be fixed-width: the emitter has no
// variable-width output path (spec §4.5 "Writing a value").
func Make(s *schema.Schema, exprs []*expr.Expression, eng *jit.Engine) (*Projector, *status.Status) {
	if len(exprs) == 0 {
		return nil, status.Invalidf("project: at least one expression is required")
	}
	reg := eng.Registry()
	for _, e := range exprs {
		if st := validate.Validate(e, s, reg); st != nil {
			return nil, st
		}
		if e.Output.Kind.IsVariableWidth() {
			return nil, status.NewAt(status.CodeGenError, e.Output.Name,
				"project: output field %q has variable-width kind %s, unsupported by the emitter", e.Output.Name, e.Output.Kind)
		}
	}

	plan := layout.Build(exprs)
	modules := make([]*jit.Module, len(exprs))
	outputs := make([]expr.OutputField, len(exprs))
	for i, e := range exprs {
		decomposed, st := decompose.Decompose(e.Root, reg)
		if st != nil {
			return nil, st
		}
		m, st := eng.FinalizeModule(decomposed, e.Output.Name, plan)
		if st != nil {
			return nil, st
		}
		modules[i] = m
		outputs[i] = e.Output
	}

	return &Projector{schema: s, outputs: outputs, plan: plan, modules: modules}, nil
}

// Release returns every compiled module's backing arena. Call once the
// Projector is no longer needed.
func (p *Projector) Release() {
	for _, m := range p.modules {
		m.Release()
	}
}

// Outputs reports the projector's output fields, in evaluation order.
func (p *Projector) Outputs() []expr.OutputField { return p.outputs }

// Evaluate runs every compiled expression over all of batch's rows
// (unfiltered variant, spec §4.7): input slots are read and output slots
// are written at the same row index. Output arrays must already be bound
// into batch at the slots this Projector's layout assigned them (zero-copy
// variant) — see EvaluateOwning for the pool-allocating alternative.
func (p *Projector) Evaluate(batch *buffer.Batch) ([]*buffer.Array, *status.Status) {
	if batch.NumRows == 0 {
		return nil, status.Invalidf("project: batch has no rows")
	}
	out := make([]*buffer.Array, len(p.modules))
	for i, m := range p.modules {
		for row := 0; row < batch.NumRows; row++ {
			if st := m.Compiled.Run(batch, row, row); st != nil {
				return nil, st
			}
		}
		out[i] = batch.Slots[m.Compiled.Output.Data]
	}
	return out, nil
}

// EvaluateSelected runs every compiled expression only over the rows named
// by sel (spec §4.7, §8 scenario 5): row sel.At(i) is read and the result
// is written at the compacted position i, so a projection over a selection
// vector of N entries always produces a dense [0, N) output regardless of
// how sparse the selected rows were in the input batch.
func (p *Projector) EvaluateSelected(batch *buffer.Batch, sel *selection.Vector) ([]*buffer.Array, *status.Status) {
	if batch.NumRows == 0 {
		return nil, status.Invalidf("project: batch has no rows")
	}
	if st := sel.CheckRowCount(batch.NumRows); st != nil {
		return nil, st
	}
	numSlots := sel.NumSlots()
	out := make([]*buffer.Array, len(p.modules))
	for i, m := range p.modules {
		for j := 0; j < numSlots; j++ {
			if st := m.Compiled.Run(batch, sel.At(j), j); st != nil {
				return nil, st
			}
		}
		out[i] = batch.Slots[m.Compiled.Output.Data]
	}
	return out, nil
}

// EvaluateOwning is the pool-allocating variant of Evaluate (spec §9 Open
// Question: "zero-copy is primary, the owning variant is a trivial wrapper
// that allocates its own output buffers from the pool then delegates"). It
// allocates one output array per expression from alloc, binds it into
// batch at this Projector's assigned output slot, then evaluates normally.
func (p *Projector) EvaluateOwning(batch *buffer.Batch, alloc pool.Allocator) ([]*buffer.Array, *status.Status) {
	p.bindOwningOutputs(batch, alloc, batch.NumRows)
	return p.Evaluate(batch)
}

// EvaluateSelectedOwning is EvaluateOwning's selection-vector counterpart:
// output arrays are sized to the selection vector's slot count, since a
// compacted projection never needs more rows than were selected.
func (p *Projector) EvaluateSelectedOwning(batch *buffer.Batch, sel *selection.Vector, alloc pool.Allocator) ([]*buffer.Array, *status.Status) {
	p.bindOwningOutputs(batch, alloc, sel.NumSlots())
	return p.EvaluateSelected(batch, sel)
}

func (p *Projector) bindOwningOutputs(batch *buffer.Batch, alloc pool.Allocator, numRows int) {
	for i, e := range p.outputs {
		slot := p.modules[i].Compiled.Output.Data
		dataLen := e.Kind.FixedWidth() * numRows
		if e.Kind.ID == types.Boolean {
			dataLen = len(buffer.NewBitmap(numRows))
		}
		arr := &buffer.Array{Kind: e.Kind, Length: numRows, Validity: buffer.NewBitmap(numRows), Data: alloc.Allocate(dataLen)}
		batch.BindSlot(slot, arr)
	}
}
