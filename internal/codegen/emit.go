// Package codegen implements the §4.5 code emitter: it turns a decomposed
// value/validity pair into a leaf routine — a loop over row indices that
// reads inputs through the buffer-slot plan, evaluates the value sub-tree,
// and writes the output buffer plus its validity bitmap.
//
// Grounded on the teacher's visitor-driven compiler
// (internal/compiler/compiler.go, internal/compiler/stmt_compiler.go):
// where the teacher walks a parsed AST and appends bytecode instructions,
// this emitter walks the decomposed value/validity trees and appends
// closures to a flat instruction list, mirroring the teacher's "one
// compiler method per node kind" shape while producing Go closures instead
// of a textual language's bytecode — see internal/bytecode for the
// disassembly-oriented sibling representation used for CodeGenError
// messages and the dump-IR option (spec §4.5, §4.6).
package codegen

import (
	"exprc/internal/buffer"
	"exprc/internal/bytecode"
	"exprc/internal/decompose"
	"exprc/internal/expr"
	"exprc/internal/layout"
	"exprc/internal/registry"
	"exprc/internal/status"
)

// valueEval computes one row's value for a value sub-tree. read is the row
// index inputs are loaded from; write is the row index local scratch
// bitmaps are addressed at. The two differ only for the selection-vector
// projection variant (spec §8 scenario 5): reading the selected input row
// while writing to the compacted output position. Side effect: for
// NullInternal calls, If nodes, and Boolean nodes, it also writes the
// node's local validity bitmap bit at write — spec §4.5 runs the value
// block before the validity block, and for these variants the two are
// computed together.
type valueEval func(b *buffer.Batch, read, write int) interface{}

// validityEval computes one row's validity bit for a validity sub-tree,
// under the same read/write row convention as valueEval.
type validityEval func(b *buffer.Batch, read, write int) bool

// LeafFunc is the compiled leaf routine signature shared by the unfiltered,
// filtered, and selection-vector-projection variants (spec §4.5, §4.7):
// the caller supplies the batch, the row to read inputs from, and the row
// to write the output at (identical for the unfiltered case); the routine
// returns a non-OK status only when it must abort the whole batch (spec
// §4.5 "status return").
type LeafFunc func(b *buffer.Batch, read, write int) *status.Status

// Compiled is one expression's compiled artifact: the output slot triple,
// and a leaf routine that computes and stores the value and validity for a
// single row.
type Compiled struct {
	Output layout.Triple
	Run    LeafFunc
	// IR holds the textual disassembly of the compiled expression when
	// Emit was asked to dump it (spec §4.6, §5 dump-IR option); empty
	// otherwise.
	IR string
}

// Emit compiles a decomposed expression into a Compiled leaf routine,
// addressing fields and the output via plan. When dumpIR is set, the
// returned Compiled.IR carries a textual disassembly of the value tree
// (internal/bytecode); if the value tree fails to compile, no Compiled is
// returned and the disassembly is appended to the CodeGenError message.
func Emit(d *decompose.Decomposed, outputName string, plan *layout.Plan, dumpIR bool) (*Compiled, *status.Status) {
	out, ok := plan.Outputs[outputName]
	if !ok {
		return nil, status.New(status.CodeGenError, "codegen: no output slot allocated for %q", outputName)
	}
	var ir string
	if dumpIR {
		ir = bytecode.Disassemble(outputName, d.Value).String()
	}
	valEval, err := compileValue(d.Value, plan)
	if err != nil {
		if ir != "" {
			return nil, status.New(status.CodeGenError, "%s\n--- while compiling ---\n%s", err.Error(), ir)
		}
		return nil, err
	}
	validTree := &decompose.AndValidity{Children: d.Validities}
	validEval, err := compileValidity(validTree, plan)
	if err != nil {
		return nil, err
	}

	run := func(b *buffer.Batch, read, write int) *status.Status {
		v := valEval(b, read, write)
		valid := validEval(b, read, write)
		outArr := b.Slots[out.Data]
		if valid {
			buffer.WriteCell(outArr, write, v)
		}
		outArr.Validity.Set(write, valid)
		if e := b.Ctx.Err(); e != nil {
			return status.ExecutionErrorf("%s: %v", outputName, e)
		}
		return nil
	}
	return &Compiled{Output: out, Run: run, IR: ir}, nil
}

func compileValue(n decompose.ValueNode, plan *layout.Plan) (valueEval, *status.Status) {
	switch v := n.(type) {
	case *decompose.LoadData:
		slot, ok := plan.Fields[v.FieldName]
		if !ok {
			return nil, status.New(status.CodeGenError, "codegen: no slot for field %q", v.FieldName)
		}
		return func(b *buffer.Batch, read, write int) interface{} {
			return buffer.ReadCell(b.Slots[slot.Data], read)
		}, nil

	case *decompose.Const:
		val := v.Lit.Value
		return func(*buffer.Batch, int, int) interface{} { return val }, nil

	case *decompose.CallValue:
		return compileCall(v, plan)

	case *decompose.IfValue:
		return compileIf(v, plan)

	case *decompose.BooleanValue:
		return compileBoolean(v, plan)

	default:
		return nil, status.New(status.CodeGenError, "codegen: unrecognised value node %T", n)
	}
}

func compileCall(v *decompose.CallValue, plan *layout.Plan) (valueEval, *status.Status) {
	argEvals := make([]valueEval, len(v.Args))
	for i, a := range v.Args {
		ev, err := compileValue(a, plan)
		if err != nil {
			return nil, err
		}
		argEvals[i] = ev
	}
	entry := v.Entry

	if entry.Null == registry.NullInternal {
		argValidEvals := make([]validityEval, len(v.ArgValidity))
		for i, a := range v.ArgValidity {
			ev, err := compileValidity(a, plan)
			if err != nil {
				return nil, err
			}
			argValidEvals[i] = ev
		}
		local := v.ResultLocal
		return func(b *buffer.Batch, read, write int) interface{} {
			args := make([]interface{}, len(argEvals))
			for i, ev := range argEvals {
				args[i] = ev(b, read, write)
			}
			valids := make([]bool, len(argValidEvals))
			for i, ev := range argValidEvals {
				valids[i] = ev(b, read, write)
			}
			res, valid, err := entry.Impl(execCtx(entry, b), holderFor(entry), args, valids)
			if err != nil {
				b.Ctx.SetError(err)
			}
			b.Locals[local].Set(write, valid)
			return res
		}, nil
	}

	return func(b *buffer.Batch, read, write int) interface{} {
		args := make([]interface{}, len(argEvals))
		for i, ev := range argEvals {
			args[i] = ev(b, read, write)
		}
		res, _, err := entry.Impl(execCtx(entry, b), holderFor(entry), args, nil)
		if err != nil {
			b.Ctx.SetError(err)
		}
		return res
	}, nil
}

func execCtx(entry *registry.Entry, b *buffer.Batch) *registry.ExecContext {
	if entry.NeedsContext {
		return &b.Ctx
	}
	return &b.Ctx // always passed; cost of the hidden arg is the same either way and simplifies the Impl signature
}

// holderFor resolves a function's precomputed holder, when registered,
// through the holder table (spec §4.9). The holder is attached to the
// call site's Entry during decomposition (internal/decompose, via
// holder.Build and Entry.WithHolder), so this is a simple passthrough
// kept here for emitter symmetry with the NeedsHolder flag.
func holderFor(entry *registry.Entry) interface{} {
	if !entry.NeedsHolder {
		return nil
	}
	return entry.Holder
}

func compileIf(v *decompose.IfValue, plan *layout.Plan) (valueEval, *status.Status) {
	condEval, err := compileValue(v.Cond, plan)
	if err != nil {
		return nil, err
	}
	condValid, err := compileValidity(v.CondValid, plan)
	if err != nil {
		return nil, err
	}
	thenEval, err := compileValue(v.Then, plan)
	if err != nil {
		return nil, err
	}
	thenValid, err := compileValidity(v.ThenValid, plan)
	if err != nil {
		return nil, err
	}
	elseEval, err := compileValue(v.Else, plan)
	if err != nil {
		return nil, err
	}
	elseValid, err := compileValidity(v.ElseValid, plan)
	if err != nil {
		return nil, err
	}
	local := v.ResultLocal
	elseIsNonNullLiteral := v.ElseIsNonNullLiteral

	return func(b *buffer.Batch, read, write int) interface{} {
		cValid := condValid(b, read, write)
		cVal, _ := condEval(b, read, write).(bool)
		var result interface{}
		var valid bool
		if cValid && cVal {
			result = thenEval(b, read, write)
			valid = thenValid(b, read, write)
		} else {
			result = elseEval(b, read, write)
			if elseIsNonNullLiteral {
				// §4.5 terminal-else shortcut: a non-null literal else-arm
				// can never itself be invalid, so validity collapses to
				// whether the condition itself was valid.
				valid = cValid
			} else {
				valid = cValid && elseValid(b, read, write)
			}
		}
		b.Locals[local].Set(write, valid)
		return result
	}, nil
}

func compileBoolean(v *decompose.BooleanValue, plan *layout.Plan) (valueEval, *status.Status) {
	childEvals := make([]valueEval, len(v.Children))
	childValidEvals := make([]validityEval, len(v.ChildValid))
	for i, c := range v.Children {
		ev, err := compileValue(c, plan)
		if err != nil {
			return nil, err
		}
		childEvals[i] = ev
	}
	for i, c := range v.ChildValid {
		ev, err := compileValidity(c, plan)
		if err != nil {
			return nil, err
		}
		childValidEvals[i] = ev
	}
	local := v.ResultLocal
	isAnd := v.Op == expr.And
	absorbing := !isAnd // AND absorbs on false, OR absorbs on true

	return func(b *buffer.Batch, read, write int) interface{} {
		// Kleene three-valued logic (spec §4.5): a child yielding the
		// absorbing value (valid,false) for AND / (valid,true) for OR
		// short-circuits the whole expression immediately, even past a
		// null seen earlier; any null child otherwise makes the running
		// state null unless a later child still supplies the absorbing
		// value.
		sawNull := false
		for i := range childEvals {
			valid := childValidEvals[i](b, read, write)
			val, _ := childEvals[i](b, read, write).(bool)
			if valid && val == absorbing {
				b.Locals[local].Set(write, true)
				return absorbing
			}
			if !valid {
				sawNull = true
			}
		}
		if sawNull {
			b.Locals[local].Set(write, false)
			return false
		}
		b.Locals[local].Set(write, true)
		return !absorbing
	}, nil
}

func compileValidity(n decompose.ValidityNode, plan *layout.Plan) (validityEval, *status.Status) {
	switch v := n.(type) {
	case decompose.TrueValidity:
		return func(*buffer.Batch, int, int) bool { return true }, nil
	case decompose.FalseValidity:
		return func(*buffer.Batch, int, int) bool { return false }, nil
	case *decompose.FieldValidity:
		slot, ok := plan.Fields[v.FieldName]
		if !ok {
			return nil, status.New(status.CodeGenError, "codegen: no slot for field %q", v.FieldName)
		}
		return func(b *buffer.Batch, read, write int) bool {
			return b.Slots[slot.Data].Validity.Get(read)
		}, nil
	case *decompose.LocalValidity:
		local := v.Local
		return func(b *buffer.Batch, read, write int) bool {
			return b.Locals[local].Get(write)
		}, nil
	case *decompose.AndValidity:
		if len(v.Children) == 0 {
			return func(*buffer.Batch, int, int) bool { return true }, nil
		}
		evals := make([]validityEval, len(v.Children))
		for i, c := range v.Children {
			ev, err := compileValidity(c, plan)
			if err != nil {
				return nil, err
			}
			evals[i] = ev
		}
		return func(b *buffer.Batch, read, write int) bool {
			for _, ev := range evals {
				if !ev(b, read, write) {
					return false
				}
			}
			return true
		}, nil
	default:
		return nil, status.New(status.CodeGenError, "codegen: unrecognised validity node %T", n)
	}
}
