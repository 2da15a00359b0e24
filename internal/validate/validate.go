// Package validate implements the §4.2 validator: it checks an expression
// tree against a schema and a function registry before any decomposition or
// code generation is attempted.
package validate

import (
	"fmt"
	"strings"

	"exprc/internal/expr"
	"exprc/internal/registry"
	"exprc/internal/schema"
	"exprc/internal/status"
	"exprc/internal/types"
)

// Validate checks expression e against schema s using registry reg. Checks
// run in the order spec §4.2 lists them; the first failure is returned
// immediately and subsequent checks are skipped.
func Validate(e *expr.Expression, s *schema.Schema, reg *registry.Registry) *status.Status {
	if e == nil || e.Root == nil {
		return status.New(status.ExpressionValidationError, "expression root is nil")
	}
	if st := validateNode(e.Root, s, reg); st != nil {
		return st
	}
	if !e.Root.ResultKind().Equal(e.Output.Kind) {
		return status.NewAt(status.ExpressionValidationError, e.Output.Name,
			"root kind %s does not match declared output kind %s for field %q",
			e.Root.ResultKind(), e.Output.Kind, e.Output.Name)
	}
	return nil
}

func validateNode(n expr.Node, s *schema.Schema, reg *registry.Registry) *status.Status {
	switch v := n.(type) {
	case *expr.Field:
		f, ok := s.Lookup(v.Name)
		if !ok {
			return status.NewAt(status.ExpressionValidationError, v.Name, "field %q not found in schema", v.Name)
		}
		if !f.Kind.Equal(v.Kind) {
			return status.NewAt(status.ExpressionValidationError, v.Name,
				"field %q has kind %s in schema, expression declares %s", v.Name, f.Kind, v.Kind)
		}
		return nil

	case *expr.Literal:
		return nil

	case *expr.Call:
		for _, c := range v.Children {
			if st := validateNode(c, s, reg); st != nil {
				return st
			}
		}
		paramKinds := make([]types.Kind, len(v.Children))
		for i, c := range v.Children {
			paramKinds[i] = c.ResultKind()
		}
		if _, ok := reg.Lookup(v.Name, paramKinds, v.Kind); !ok {
			return status.NewAt(status.ExpressionValidationError, v.Name,
				"no registered function matches signature %s", callSignatureString(v.Name, paramKinds, v.Kind))
		}
		return nil

	case *expr.If:
		if st := validateNode(v.Cond, s, reg); st != nil {
			return st
		}
		if v.Cond.ResultKind().ID != types.Boolean {
			return status.NewAt(status.ExpressionValidationError, "if",
				"if condition must be boolean-kinded, got %s", v.Cond.ResultKind())
		}
		if st := validateNode(v.Then, s, reg); st != nil {
			return st
		}
		if st := validateNode(v.Else, s, reg); st != nil {
			return st
		}
		if !v.Then.ResultKind().Equal(v.Else.ResultKind()) {
			return status.NewAt(status.ExpressionValidationError, "if",
				"if then/else arms disagree: %s vs %s", v.Then.ResultKind(), v.Else.ResultKind())
		}
		if !v.Then.ResultKind().Equal(v.Kind) {
			return status.NewAt(status.ExpressionValidationError, "if",
				"if result kind %s does not match arm kind %s", v.Kind, v.Then.ResultKind())
		}
		return nil

	case *expr.Boolean:
		if len(v.Children) < 2 {
			return status.NewAt(status.ExpressionValidationError, v.Op.String(),
				"boolean %s expression requires at least 2 children, got %d", v.Op, len(v.Children))
		}
		for _, c := range v.Children {
			if st := validateNode(c, s, reg); st != nil {
				return st
			}
			if c.ResultKind().ID != types.Boolean {
				return status.NewAt(status.ExpressionValidationError, v.Op.String(),
					"boolean %s child must be boolean-kinded, got %s", v.Op, c.ResultKind())
			}
		}
		return nil

	default:
		return status.New(status.ExpressionValidationError, "unrecognised expression node type %T", n)
	}
}

func callSignatureString(name string, paramKinds []types.Kind, ret types.Kind) string {
	parts := make([]string, len(paramKinds))
	for i, k := range paramKinds {
		parts[i] = k.String()
	}
	return fmt.Sprintf("%s(%s)->%s", name, strings.Join(parts, ","), ret)
}
