// Package layout implements the §4.3 Annotator: it walks one or more
// expressions and assigns each distinct referenced field, and each output
// expression, a contiguous block of buffer slots.
package layout

import (
	"exprc/internal/expr"
	"exprc/internal/types"
)

// Triple is the (validity-slot, data-slot, offsets-slot) assignment for one
// field. Offsets is -1 for fixed-width kinds.
type Triple struct {
	Validity int
	Data     int
	Offsets  int
}

// Plan is the flat slot assignment produced by the Annotator (spec §3).
type Plan struct {
	// Fields maps a referenced field name to its slot triple.
	Fields map[string]Triple
	// Outputs maps an output field name to its own fresh slot triple.
	Outputs map[string]Triple
	// NumSlots is one past the highest slot index allocated; batches size
	// their Slots array to at least this length.
	NumSlots int
}

// annotator assigns slots in allocation order, reusing a field's triple on
// repeated reference (spec §4.3).
type annotator struct {
	plan    *Plan
	counter int
}

// Build walks exprs (top-level expressions, e.g. one per projected column,
// or a single condition for a filter) and produces the slot plan. It is
// purely a layout step, independent of expression semantics (spec §4.3).
func Build(exprs []*expr.Expression) *Plan {
	a := &annotator{plan: &Plan{Fields: make(map[string]Triple), Outputs: make(map[string]Triple)}}
	for _, e := range exprs {
		a.walk(e.Root)
		a.plan.Outputs[e.Output.Name] = a.allocate(e.Output.Kind)
	}
	a.plan.NumSlots = a.counter
	return a.plan
}

func (a *annotator) walk(n expr.Node) {
	switch v := n.(type) {
	case *expr.Field:
		if _, seen := a.plan.Fields[v.Name]; !seen {
			a.plan.Fields[v.Name] = a.allocate(v.Kind)
		}
	case *expr.Literal:
		// no buffer slot required
	case *expr.Call:
		for _, c := range v.Children {
			a.walk(c)
		}
	case *expr.If:
		a.walk(v.Cond)
		a.walk(v.Then)
		a.walk(v.Else)
	case *expr.Boolean:
		for _, c := range v.Children {
			a.walk(c)
		}
	}
}

func (a *annotator) allocate(kind types.Kind) Triple {
	t := Triple{Validity: a.counter, Data: a.counter + 1, Offsets: -1}
	a.counter += 2
	if kind.IsVariableWidth() {
		t.Offsets = a.counter
		a.counter++
	}
	return t
}
