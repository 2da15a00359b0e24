// Package registry is the closed table of named intrinsic functions (spec
// §4.1). Each entry binds a signature (name + parameter kinds + return
// kind) to a precompiled low-level implementation and a null-behaviour tag.
//
// Grounded on gandiva's cpp/src/gandiva/codegen/function_registry.{h,cc}
// and cpp/src/codegen/function_signature.h: a FunctionSignature value type
// used as the lookup key. The cache key does not use it; internal/cache
// keys on expr.CanonicalExpression instead.
package registry

import (
	"fmt"
	"strings"

	"exprc/internal/types"
)

// NullBehaviour controls how the decomposer treats a function's output
// validity (spec §4.1, §4.4).
type NullBehaviour int

const (
	// NullIfAnyNull: output valid iff all inputs valid; the implementation
	// reads only value args.
	NullIfAnyNull NullBehaviour = iota
	// NullNever: output always valid; the implementation reads value args.
	NullNever
	// NullInternal: the implementation receives value args plus validity
	// args and a scratch output-validity bit pointer, and sets both.
	NullInternal
)

// FunctionSignature is the (name, param kinds, return kind) lookup key.
// Two signatures are equal iff names, param kind lists, and return kinds
// all match exactly — no implicit promotion (spec §4.1).
type FunctionSignature struct {
	Name       string
	ParamKinds []types.Kind
	ReturnKind types.Kind
}

func (s FunctionSignature) String() string {
	parts := make([]string, len(s.ParamKinds))
	for i, k := range s.ParamKinds {
		parts[i] = k.String()
	}
	return fmt.Sprintf("%s(%s)->%s", s.Name, strings.Join(parts, ","), s.ReturnKind)
}

// key renders a signature into a comparable map key.
func (s FunctionSignature) key() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('|')
	for _, k := range s.ParamKinds {
		b.WriteString(k.String())
		b.WriteByte(',')
	}
	b.WriteByte('|')
	b.WriteString(s.ReturnKind.String())
	return b.String()
}

// Impl is the precompiled low-level implementation of an intrinsic. It
// operates on one row's worth of decoded Go values; the code emitter is
// responsible for the per-row loop and for marshalling buffer cells to and
// from these values (spec §4.5, §4.6).
//
//   - NullIfAnyNull / NullNever: Fn(ctx, holder, args...) (result, error)
//   - NullInternal:              Fn(ctx, holder, args, validities) (result, valid, error)
//
// A single functional-value shape is used for all three; callers pass the
// slice of argument values, and for NullInternal entries a parallel slice
// of child validity bits is appended by the emitter.
type Impl func(ctx *ExecContext, holder interface{}, args []interface{}, argValid []bool) (result interface{}, valid bool, err error)

// ExecContext is the hidden per-batch execution-context argument (spec
// §4.1, §4.5). internal/codegen passes it to every implementation,
// whether or not the entry has NeedsContext set.
type ExecContext struct {
	err error
}

// SetError records a runtime failure (spec §7); the first error recorded in
// a batch wins, matching "a runtime error is reported after the current
// leaf completes; subsequent leaves are not run" (spec §7).
func (c *ExecContext) SetError(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Err returns the recorded error, if any.
func (c *ExecContext) Err() error { return c.err }

// Reset clears the recorded error between batches (spec §3 Lifecycle).
func (c *ExecContext) Reset() { c.err = nil }

// Entry is one registry row.
type Entry struct {
	Signature FunctionSignature
	LinkName  string
	Null      NullBehaviour
	// NeedsContext: the emitter passes the per-batch context as a hidden
	// first argument.
	NeedsContext bool
	// NeedsHolder: the emitter passes a pointer to a precomputed function
	// holder as an additional hidden argument (spec §4.9).
	NeedsHolder bool
	Impl        Impl
	// Holder is the per-call-site precomputed state object built at Make
	// time from literal arguments (spec §4.9). It is nil until
	// internal/decompose attaches one built by internal/holder's factory to
	// a cloned Entry for a specific call site; the registry's canonical
	// entries never carry one.
	Holder interface{}
}

// WithHolder returns a copy of the entry with Holder attached, used by
// internal/decompose to bind a call-site-specific holder without mutating the
// shared registry entry (spec §4.9, §5: "the function registry is global
// and immutable").
func (e Entry) WithHolder(h interface{}) *Entry {
	e.Holder = h
	return &e
}

// Registry is a closed, immutable-after-construction set of entries, looked
// up by exact (name, param kinds, return kind) match — no implicit
// promotion (spec §4.1).
type Registry struct {
	entries map[string]*Entry
}

// New builds an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register adds an entry. It panics on a duplicate signature: the registry
// is built once at process start, by trusted code (spec §5: "the function
// registry is global and immutable").
func (r *Registry) Register(e Entry) {
	k := e.Signature.key()
	if _, dup := r.entries[k]; dup {
		panic(fmt.Sprintf("registry: duplicate signature %s", e.Signature))
	}
	r.entries[k] = &e
}

// Lookup resolves (name, param kinds, return kind) to an entry.
func (r *Registry) Lookup(name string, paramKinds []types.Kind, returnKind types.Kind) (*Entry, bool) {
	sig := FunctionSignature{Name: name, ParamKinds: paramKinds, ReturnKind: returnKind}
	e, ok := r.entries[sig.key()]
	return e, ok
}

// LookupByName returns every entry registered under a name, regardless of
// signature, in no particular order.
func (r *Registry) LookupByName(name string) []*Entry {
	var out []*Entry
	for _, e := range r.entries {
		if e.Signature.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// Global is the process-wide, immutable-after-init registry populated by
// internal/intrinsics at package-init time (spec §5).
var Global = New()
