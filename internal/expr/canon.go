package expr

import (
	"fmt"
	"strings"
)

// Canonical renders a deterministic string form of an expression, used as
// part of the cache key (spec §4.10) and in validation/codegen error
// messages naming "the offending node" (spec §4.2).
func Canonical(n Node) string {
	var b strings.Builder
	writeCanon(&b, n)
	return b.String()
}

func writeCanon(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Field:
		fmt.Fprintf(b, "field(%s:%s)", v.Name, v.Kind)
	case *Literal:
		if v.IsNull {
			fmt.Fprintf(b, "null(%s)", v.Kind)
		} else {
			fmt.Fprintf(b, "lit(%s,%v)", v.Kind, v.Value)
		}
	case *Call:
		fmt.Fprintf(b, "%s(", v.Name)
		for i, c := range v.Children {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanon(b, c)
		}
		b.WriteString(")")
	case *If:
		b.WriteString("if(")
		writeCanon(b, v.Cond)
		b.WriteByte(',')
		writeCanon(b, v.Then)
		b.WriteByte(',')
		writeCanon(b, v.Else)
		b.WriteByte(')')
	case *Boolean:
		b.WriteString(v.Op.String())
		b.WriteByte('(')
		for i, c := range v.Children {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanon(b, c)
		}
		b.WriteByte(')')
	default:
		b.WriteString("?")
	}
}

// CanonicalExpression renders an Expression including its output field.
func CanonicalExpression(e *Expression) string {
	return fmt.Sprintf("%s:%s=%s", e.Output.Name, e.Output.Kind, Canonical(e.Root))
}

// ContainsLike reports whether the expression's canonical form references
// the `like` intrinsic, used by the cache to decide whether to mix in a
// per-thread salt (spec §4.10).
func ContainsLike(e *Expression) bool {
	return strings.Contains(CanonicalExpression(e), "like(")
}
