// Package bytecode renders a decomposed expression tree as a flat,
// human-readable instruction listing. It backs two things the core's
// execution path (internal/codegen) does not itself need: the listing
// appended to a CodeGenError message when the value tree fails to compile
// with dump-IR enabled, and the dump-IR configuration option (spec §4.6, §5) that lets a caller
// inspect what got compiled without attaching a debugger to the closures.
package bytecode

import (
	"fmt"
	"strings"

	"exprc/internal/decompose"
	"exprc/internal/expr"
)

// Instruction is one disassembled step: an opcode plus a free-form operand
// string (field name, literal rendering, function link name, ...).
type Instruction struct {
	Op      OpCode
	Operand string
	// Children indexes into the same Program's Instructions slice for
	// nested sub-expressions (call arguments, if branches, boolean
	// operands), preserving tree shape in a flat slice.
	Children []int
}

// Program is the disassembly of one compiled expression: its instruction
// list plus which index is the root.
type Program struct {
	Instructions []Instruction
	Root         int
	OutputName   string
}

// String renders the program as indented pseudo-assembly, e.g.:
//
//	store_output "total"
//	  call add(int64,int64)->int64
//	    load_field "a"
//	    const 3
func (p *Program) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %q\n", OpStoreOutput, p.OutputName)
	p.write(&b, p.Root, 1)
	return b.String()
}

func (p *Program) write(b *strings.Builder, idx int, depth int) {
	if idx < 0 || idx >= len(p.Instructions) {
		return
	}
	in := p.Instructions[idx]
	b.WriteString(strings.Repeat("  ", depth))
	if in.Operand != "" {
		fmt.Fprintf(b, "%s %s\n", in.Op, in.Operand)
	} else {
		fmt.Fprintf(b, "%s\n", in.Op)
	}
	for _, c := range in.Children {
		p.write(b, c, depth+1)
	}
}

// disassembler flattens a decompose.ValueNode tree into a Program.
type disassembler struct {
	prog *Program
}

// Disassemble builds a Program from one expression's decomposed value
// tree, for use by internal/codegen (CodeGenError context) and by callers
// requesting a dump-IR rendering.
func Disassemble(outputName string, v decompose.ValueNode) *Program {
	d := &disassembler{prog: &Program{OutputName: outputName}}
	d.prog.Root = d.emit(v)
	return d.prog
}

func (d *disassembler) append(in Instruction) int {
	d.prog.Instructions = append(d.prog.Instructions, in)
	return len(d.prog.Instructions) - 1
}

func (d *disassembler) emit(n decompose.ValueNode) int {
	switch v := n.(type) {
	case *decompose.LoadData:
		return d.append(Instruction{Op: OpLoadField, Operand: fmt.Sprintf("%q", v.FieldName)})

	case *decompose.Const:
		if v.Lit.IsNull {
			return d.append(Instruction{Op: OpConstant, Operand: "null"})
		}
		return d.append(Instruction{Op: OpConstant, Operand: fmt.Sprintf("%v", v.Lit.Value)})

	case *decompose.CallValue:
		children := make([]int, len(v.Args))
		for i, a := range v.Args {
			children[i] = d.emit(a)
		}
		return d.append(Instruction{Op: OpCall, Operand: v.Entry.Signature.String(), Children: children})

	case *decompose.IfValue:
		cond := d.emit(v.Cond)
		then := d.emit(v.Then)
		els := d.emit(v.Else)
		return d.append(Instruction{Op: OpIf, Children: []int{cond, then, els}})

	case *decompose.BooleanValue:
		children := make([]int, len(v.Children))
		for i, c := range v.Children {
			children[i] = d.emit(c)
		}
		op := OpBooleanAnd
		if v.Op == expr.Or {
			op = OpBooleanOr
		}
		return d.append(Instruction{Op: op, Children: children})

	default:
		return d.append(Instruction{Op: OpConstant, Operand: fmt.Sprintf("<%T>", n)})
	}
}
