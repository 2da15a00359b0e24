// Package holder implements the §4.9 function holders: precomputed state
// for stateful intrinsics (pattern matchers, date parsers) that a holder
// factory builds once at compile time from literal call arguments.
package holder

import (
	"regexp"
	"strings"

	"exprc/internal/status"
)

// Pattern is the `like` intrinsic's holder: a compiled regexp translated
// from a SQL-style pattern (spec §4.9).
type Pattern struct {
	Regex *regexp.Regexp
}

// NewPattern translates an SQL LIKE pattern into a regexp: `_` matches any
// single character, `%` matches any sequence, meta-characters are escaped,
// and an optional escape character produces literal `_`, `%`, or itself.
// Invalid escape sequences (escape at the very end, or escaping a
// character other than `_`, `%`, or itself) are a compile-time error (spec
// §4.9).
func NewPattern(sqlPattern string, escape rune, hasEscape bool) (*Pattern, *status.Status) {
	var b strings.Builder
	b.WriteString("^")
	runes := []rune(sqlPattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if hasEscape && r == escape {
			i++
			if i >= len(runes) {
				return nil, status.New(status.CodeGenError, "like: dangling escape character in pattern %q", sqlPattern)
			}
			next := runes[i]
			if next != '_' && next != '%' && next != escape {
				return nil, status.New(status.CodeGenError, "like: invalid escape sequence %q%q in pattern %q", string(escape), string(next), sqlPattern)
			}
			b.WriteString(regexp.QuoteMeta(string(next)))
			continue
		}
		switch r {
		case '_':
			b.WriteString(".")
		case '%':
			b.WriteString(".*")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, status.Wrap(status.CodeGenError, err, "like: pattern %q did not compile to a valid regex", sqlPattern)
	}
	return &Pattern{Regex: re}, nil
}

// Match reports whether s matches the compiled pattern.
func (p *Pattern) Match(s []byte) bool {
	return p.Regex.Match(s)
}
