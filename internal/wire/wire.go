// Package wire implements the optional §6.6 external-interface boundary: a
// binary framing for an expression forest arriving from another process,
// decoded into the in-process expr.Expression/schema.Schema types and
// handed to project.Make / filter.Make.
//
// No protobuf runtime library appears anywhere in the reference corpus
// (only a .proto *text* parser, github.com/emicklei/proto, which parses
// schema definitions rather than encoding/decoding wire bytes), so this
// decoder is a hand-rolled binary framing over encoding/binary rather than
// a generated protobuf codec — see DESIGN.md for the corpus survey backing
// that choice. The framing below mirrors the struct shape §3 already
// defines (field/literal/call/if/boolean, schema field list), so a real
// .proto schema and generated codec could replace this package later
// without touching any other package.
package wire

import (
	"encoding/binary"
	"math"

	"exprc/internal/expr"
	"exprc/internal/schema"
	"exprc/internal/status"
	"exprc/internal/types"
)

// nodeTag distinguishes expr.Node variants on the wire.
type nodeTag byte

const (
	tagField nodeTag = iota
	tagLiteral
	tagCall
	tagIf
	tagBoolean
)

type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) byte() (byte, *status.Status) {
	if r.remaining() < 1 {
		return 0, status.Invalidf("wire: unexpected end of input reading a byte")
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) uint32() (uint32, *status.Status) {
	if r.remaining() < 4 {
		return 0, status.Invalidf("wire: unexpected end of input reading a uint32")
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) int64() (int64, *status.Status) {
	if r.remaining() < 8 {
		return 0, status.Invalidf("wire: unexpected end of input reading an int64")
	}
	v := int64(binary.LittleEndian.Uint64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

func (r *reader) float64() (float64, *status.Status) {
	if r.remaining() < 8 {
		return 0, status.Invalidf("wire: unexpected end of input reading a float64")
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

func (r *reader) bytes() ([]byte, *status.Status) {
	n, st := r.uint32()
	if st != nil {
		return nil, st
	}
	if r.remaining() < int(n) {
		return nil, status.Invalidf("wire: unexpected end of input reading %d bytes", n)
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

func (r *reader) string() (string, *status.Status) {
	b, st := r.bytes()
	if st != nil {
		return "", st
	}
	return string(b), nil
}

// kind decodes a types.Kind: one ID byte, plus a unit byte only when the ID
// is Timestamp (spec §3: "for parameterised kinds... parameters match").
func (r *reader) kind() (types.Kind, *status.Status) {
	id, st := r.byte()
	if st != nil {
		return types.Kind{}, st
	}
	if types.ID(id) == types.Timestamp {
		u, st := r.byte()
		if st != nil {
			return types.Kind{}, st
		}
		return types.NewTimestamp(types.TimeUnit(u)), nil
	}
	if types.ID(id) < types.Boolean || types.ID(id) > types.Timestamp {
		return types.Kind{}, status.Invalidf("wire: unrecognised kind id %d", id)
	}
	return types.Kind{ID: types.ID(id)}, nil
}

// DecodeSchema decodes a schema message: a field count followed by that
// many (name, kind, nullable) triples.
func DecodeSchema(buf []byte) (*schema.Schema, *status.Status) {
	r := &reader{buf: buf}
	n, st := r.uint32()
	if st != nil {
		return nil, st
	}
	fields := make([]schema.Field, n)
	for i := range fields {
		name, st := r.string()
		if st != nil {
			return nil, st
		}
		k, st := r.kind()
		if st != nil {
			return nil, st
		}
		nullable, st := r.byte()
		if st != nil {
			return nil, st
		}
		fields[i] = schema.Field{Name: name, Kind: k, Nullable: nullable != 0}
	}
	return schema.New(fields...), nil
}

// DecodeExpressions decodes a projection message: an expression count
// followed by that many (root node, output field) pairs.
func DecodeExpressions(buf []byte) ([]*expr.Expression, *status.Status) {
	r := &reader{buf: buf}
	n, st := r.uint32()
	if st != nil {
		return nil, st
	}
	out := make([]*expr.Expression, n)
	for i := range out {
		root, st := r.node()
		if st != nil {
			return nil, st
		}
		outName, st := r.string()
		if st != nil {
			return nil, st
		}
		outKind, st := r.kind()
		if st != nil {
			return nil, st
		}
		out[i] = &expr.Expression{Root: root, Output: expr.OutputField{Name: outName, Kind: outKind}}
	}
	return out, nil
}

// DecodeCondition decodes a filter message: a single boolean-kinded root
// node, wrapped as a condition expression (spec §3 "cond" pseudo-field).
func DecodeCondition(buf []byte) (*expr.Expression, *status.Status) {
	r := &reader{buf: buf}
	root, st := r.node()
	if st != nil {
		return nil, st
	}
	return expr.NewCondition(root), nil
}

func (r *reader) node() (expr.Node, *status.Status) {
	tagByte, st := r.byte()
	if st != nil {
		return nil, st
	}
	switch nodeTag(tagByte) {
	case tagField:
		name, st := r.string()
		if st != nil {
			return nil, st
		}
		k, st := r.kind()
		if st != nil {
			return nil, st
		}
		return &expr.Field{Name: name, Kind: k}, nil

	case tagLiteral:
		k, st := r.kind()
		if st != nil {
			return nil, st
		}
		isNull, st := r.byte()
		if st != nil {
			return nil, st
		}
		lit := &expr.Literal{Kind: k, IsNull: isNull != 0}
		if lit.IsNull {
			return lit, nil
		}
		v, st := r.literalValue(k)
		if st != nil {
			return nil, st
		}
		lit.Value = v
		return lit, nil

	case tagCall:
		name, st := r.string()
		if st != nil {
			return nil, st
		}
		k, st := r.kind()
		if st != nil {
			return nil, st
		}
		numChildren, st := r.uint32()
		if st != nil {
			return nil, st
		}
		children := make([]expr.Node, numChildren)
		for i := range children {
			c, st := r.node()
			if st != nil {
				return nil, st
			}
			children[i] = c
		}
		return &expr.Call{Name: name, Children: children, Kind: k}, nil

	case tagIf:
		k, st := r.kind()
		if st != nil {
			return nil, st
		}
		cond, st := r.node()
		if st != nil {
			return nil, st
		}
		then, st := r.node()
		if st != nil {
			return nil, st
		}
		els, st := r.node()
		if st != nil {
			return nil, st
		}
		return &expr.If{Cond: cond, Then: then, Else: els, Kind: k}, nil

	case tagBoolean:
		opByte, st := r.byte()
		if st != nil {
			return nil, st
		}
		op := expr.And
		if opByte != 0 {
			op = expr.Or
		}
		numChildren, st := r.uint32()
		if st != nil {
			return nil, st
		}
		children := make([]expr.Node, numChildren)
		for i := range children {
			c, st := r.node()
			if st != nil {
				return nil, st
			}
			children[i] = c
		}
		return &expr.Boolean{Op: op, Children: children}, nil

	default:
		return nil, status.Invalidf("wire: unrecognised node tag %d", tagByte)
	}
}

// literalValue decodes a literal's payload per its kind, matching the
// in-memory representation expr.Literal.Value documents: bool for
// Boolean, int64 for integer/calendar kinds, float64 for float kinds,
// []byte for UTF8/Binary.
func (r *reader) literalValue(k types.Kind) (interface{}, *status.Status) {
	switch k.ID {
	case types.Boolean:
		b, st := r.byte()
		if st != nil {
			return nil, st
		}
		return b != 0, nil
	case types.Int8, types.Int16, types.Int32, types.Int64,
		types.Date32, types.TimeOfDay32, types.Timestamp:
		return r.int64()
	case types.Float32, types.Float64:
		return r.float64()
	case types.UTF8, types.Binary:
		return r.bytes()
	default:
		return nil, status.Invalidf("wire: literal of unrecognised kind %s", k)
	}
}
