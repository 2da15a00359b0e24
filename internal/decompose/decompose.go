// Package decompose implements the §4.4 Decomposer: it rewrites each
// expression tree into a value sub-tree (pure computation) and a set of
// validity sub-trees whose AND yields the output-valid bit.
package decompose

import (
	"exprc/internal/expr"
	"exprc/internal/holder"
	"exprc/internal/registry"
	"exprc/internal/status"
	"exprc/internal/types"
)

// ValueNode is the tagged union of value-tree node variants produced by
// decomposition. Like expr.Node, it is a closed set dispatched by type
// switch (spec §9 design notes), not by virtual method.
type ValueNode interface{ valueNode() }

// LoadData reads the data cell for a field's slot.
type LoadData struct{ FieldName string }

func (*LoadData) valueNode() {}

// Const is a literal value, carried through unchanged from expr.Literal.
type Const struct{ Lit *expr.Literal }

func (*Const) valueNode() {}

// CallValue invokes a resolved registry entry against child value nodes
// (and, for NullInternal entries, child validity nodes plus a local bitmap
// to set).
type CallValue struct {
	Entry       *registry.Entry
	Args        []ValueNode
	ArgValidity []ValidityNode // only populated for NullInternal entries
	ResultLocal int            // local bitmap index the entry must set; -1 if NullBehaviour != NullInternal
}

func (*CallValue) valueNode() {}

// IfValue is a specialised if-node. TerminalElse records whether the else
// arm is itself non-If (spec §4.4, §4.5's terminal-else optimisation).
type IfValue struct {
	Cond                         ValueNode
	CondValid                    ValidityNode
	Then, Else                   ValueNode
	ThenValid, ElseValid         ValidityNode
	TerminalElse                 bool
	// ElseIsNonNullLiteral lets the emitter apply the §4.5 terminal-else
	// validity shortcut: when true, cond_valid && then_valid are the only
	// inputs needed because the else arm can never itself be invalid.
	ElseIsNonNullLiteral bool
	ResultLocal          int
}

func (*IfValue) valueNode() {}

// BooleanValue is a specialised Kleene AND/OR node (spec §4.4, §4.5).
type BooleanValue struct {
	Op          expr.BoolOp
	Children    []ValueNode
	ChildValid  []ValidityNode
	ResultLocal int
}

func (*BooleanValue) valueNode() {}

// ValidityNode is the tagged union of validity-tree node variants.
type ValidityNode interface{ validityNode() }

// TrueValidity is the trivially-true validity node (literals, NullNever
// function results).
type TrueValidity struct{}

func (TrueValidity) validityNode() {}

// FalseValidity is the trivially-false validity node, used for typed null
// literals.
type FalseValidity struct{}

func (FalseValidity) validityNode() {}

// FieldValidity reads the validity bit for a field's slot.
type FieldValidity struct{ FieldName string }

func (*FieldValidity) validityNode() {}

// LocalValidity reads a scratch local bitmap allocated during decomposition
// (set by a NullInternal call, an if-node, or a boolean node).
type LocalValidity struct{ Local int }

func (*LocalValidity) validityNode() {}

// AndValidity is the set-wise union (bitwise AND) of child validity nodes
// (spec §4.4's NULL_IF_ANY_NULL rule).
type AndValidity struct{ Children []ValidityNode }

func (*AndValidity) validityNode() {}

// Decomposed is one expression's value/validity pair plus how many local
// scratch bitmaps it required (spec §4.4).
type Decomposed struct {
	Value      ValueNode
	Validities []ValidityNode
	NumLocals  int
}

// decomposer threads a local-bitmap counter, and the first holder-build
// failure (spec §4.9: an invalid pattern/format is a compile-time error,
// not a per-batch one), across one expression's decomposition.
type decomposer struct {
	reg       *registry.Registry
	nextLocal int
	err       *status.Status
}

// Decompose rewrites expression root (already validated against reg) into
// its value/validity pair. If a function holder (spec §4.9) fails to build
// from its literal arguments it returns the holder's error: a CodeGenError
// for an invalid `like` pattern or escape sequence, an
// ExpressionValidationError when the pattern or format argument is not a
// non-null string literal.
func Decompose(root expr.Node, reg *registry.Registry) (*Decomposed, *status.Status) {
	d := &decomposer{reg: reg}
	v, validities := d.node(root)
	if d.err != nil {
		return nil, d.err
	}
	return &Decomposed{Value: v, Validities: validities, NumLocals: d.nextLocal}, nil
}

func (d *decomposer) allocLocal() int {
	l := d.nextLocal
	d.nextLocal++
	return l
}

// node returns (value, validity-list) for n, per the rules in spec §4.4.
func (d *decomposer) node(n expr.Node) (ValueNode, []ValidityNode) {
	switch v := n.(type) {
	case *expr.Field:
		return &LoadData{FieldName: v.Name}, []ValidityNode{&FieldValidity{FieldName: v.Name}}

	case *expr.Literal:
		if v.IsNull {
			return &Const{Lit: v}, []ValidityNode{FalseValidity{}}
		}
		return &Const{Lit: v}, []ValidityNode{TrueValidity{}}

	case *expr.Call:
		argValues := make([]ValueNode, len(v.Children))
		var childValidities [][]ValidityNode
		for i, c := range v.Children {
			val, validity := d.node(c)
			argValues[i] = val
			childValidities = append(childValidities, validity)
		}
		entry := d.resolve(v)
		if entry.NeedsHolder {
			h, st := holder.Build(v)
			if st != nil {
				if d.err == nil {
					d.err = st
				}
			} else {
				entry = entry.WithHolder(h)
			}
		}
		call := &CallValue{Entry: entry, Args: argValues, ResultLocal: -1}

		switch entry.Null {
		case registry.NullNever:
			return call, []ValidityNode{TrueValidity{}}
		case registry.NullInternal:
			local := d.allocLocal()
			call.ResultLocal = local
			// One ArgValidity entry per argument, each ANDing that
			// argument's own (possibly multi-node) validity sub-tree, so
			// the impl's argValid[i] lines up with Args[i] instead of a
			// flattened concatenation that loses per-argument boundaries.
			argValidity := make([]ValidityNode, len(childValidities))
			for i, cv := range childValidities {
				argValidity[i] = &AndValidity{Children: cv}
			}
			call.ArgValidity = argValidity
			return call, []ValidityNode{&LocalValidity{Local: local}}
		default: // NullIfAnyNull
			var union []ValidityNode
			for _, cv := range childValidities {
				union = append(union, cv...)
			}
			return call, union
		}

	case *expr.If:
		condVal, condValidity := d.node(v.Cond)
		thenVal, thenValidity := d.node(v.Then)
		elseVal, elseValidity := d.node(v.Else)
		_, nestedIf := v.Else.(*expr.If)
		var elseLiteral bool
		if lit, ok := v.Else.(*expr.Literal); ok {
			// A typed null literal is still a literal but must not take the
			// terminal-else validity shortcut (spec §4.5: the shortcut only
			// applies to "a literal that cannot be null").
			elseLiteral = !lit.IsNull
		}
		local := d.allocLocal()
		iv := &IfValue{
			Cond: condVal, CondValid: &AndValidity{Children: condValidity},
			Then: thenVal, ThenValid: &AndValidity{Children: thenValidity},
			Else: elseVal, ElseValid: &AndValidity{Children: elseValidity},
			TerminalElse:         !nestedIf,
			ElseIsNonNullLiteral: elseLiteral,
			ResultLocal:          local,
		}
		return iv, []ValidityNode{&LocalValidity{Local: local}}

	case *expr.Boolean:
		values := make([]ValueNode, len(v.Children))
		validities := make([]ValidityNode, len(v.Children))
		for i, c := range v.Children {
			val, validity := d.node(c)
			values[i] = val
			validities[i] = &AndValidity{Children: validity}
		}
		local := d.allocLocal()
		bv := &BooleanValue{Op: v.Op, Children: values, ChildValid: validities, ResultLocal: local}
		return bv, []ValidityNode{&LocalValidity{Local: local}}

	default:
		panic("decompose: unrecognised node type")
	}
}

func (d *decomposer) resolve(c *expr.Call) *registry.Entry {
	e, ok := d.reg.Lookup(c.Name, childKinds(c), c.Kind)
	if !ok {
		panic("decompose: signature not found for " + c.Name + " (validator should have rejected this earlier)")
	}
	return e
}

func childKinds(c *expr.Call) []types.Kind {
	kinds := make([]types.Kind, len(c.Children))
	for i, ch := range c.Children {
		kinds[i] = ch.ResultKind()
	}
	return kinds
}
