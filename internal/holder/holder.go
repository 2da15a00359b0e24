package holder

import (
	"exprc/internal/expr"
	"exprc/internal/status"
)

// Needed reports whether a function name is backed by a stateful holder,
// i.e. whether the registry entry's NeedsHolder flag should be honoured.
func Needed(name string) bool {
	switch name {
	case "like", "to_date":
		return true
	default:
		return false
	}
}

// Build constructs the holder for call, reading its literal arguments
// (spec §4.9: "parses literal arguments at compile time"). It is called
// once per call site at Make time, never per batch.
func Build(call *expr.Call) (interface{}, *status.Status) {
	switch call.Name {
	case "like":
		return buildPattern(call)
	case "to_date":
		return buildDate(call)
	default:
		return nil, status.New(status.CodeGenError, "holder: %q has no registered holder factory", call.Name)
	}
}

func buildPattern(call *expr.Call) (interface{}, *status.Status) {
	if len(call.Children) < 2 {
		return nil, status.New(status.ExpressionValidationError, "like requires a pattern literal argument")
	}
	patLit, ok := call.Children[1].(*expr.Literal)
	if !ok || patLit.IsNull {
		return nil, status.New(status.ExpressionValidationError, "like: pattern argument must be a non-null string literal")
	}
	patBytes, ok := patLit.Value.([]byte)
	if !ok {
		return nil, status.New(status.ExpressionValidationError, "like: pattern literal must be a string")
	}
	var escape rune
	hasEscape := false
	if len(call.Children) >= 3 {
		escLit, ok := call.Children[2].(*expr.Literal)
		if ok && !escLit.IsNull {
			if eb, ok := escLit.Value.([]byte); ok && len(eb) == 1 {
				escape = rune(eb[0])
				hasEscape = true
			}
		}
	}
	return NewPattern(string(patBytes), escape, hasEscape)
}

func buildDate(call *expr.Call) (interface{}, *status.Status) {
	if len(call.Children) < 2 {
		return nil, status.New(status.ExpressionValidationError, "to_date requires a format literal argument")
	}
	fmtLit, ok := call.Children[1].(*expr.Literal)
	if !ok || fmtLit.IsNull {
		return nil, status.New(status.ExpressionValidationError, "to_date: format argument must be a non-null string literal")
	}
	fmtBytes, ok := fmtLit.Value.([]byte)
	if !ok {
		return nil, status.New(status.ExpressionValidationError, "to_date: format literal must be a string")
	}
	suppress := false
	if len(call.Children) >= 3 {
		sLit, ok := call.Children[2].(*expr.Literal)
		if ok && !sLit.IsNull {
			if b, ok := sLit.Value.(bool); ok {
				suppress = b
			}
		}
	}
	return NewDate(string(fmtBytes), suppress), nil
}
