package wire

import (
	"encoding/binary"
	"math"
	"testing"

	"exprc/internal/expr"
	"exprc/internal/types"
)

// The following encode* helpers exist only to build wire messages for
// round-trip tests: production messages arrive from another process, this
// package only ever decodes them.

type writer struct{ buf []byte }

func (w *writer) byte(b byte)    { w.buf = append(w.buf, b) }
func (w *writer) uint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *writer) int64(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.buf = append(w.buf, b[:]...)
}
func (w *writer) bytes(v []byte) {
	w.uint32(uint32(len(v)))
	w.buf = append(w.buf, v...)
}
func (w *writer) string(s string) { w.bytes([]byte(s)) }
func (w *writer) kind(k types.Kind) {
	w.byte(byte(k.ID))
	if k.ID == types.Timestamp {
		w.byte(byte(k.Unit))
	}
}

func (w *writer) field(name string, k types.Kind) {
	w.byte(byte(tagField))
	w.string(name)
	w.kind(k)
}

func (w *writer) intLiteral(k types.Kind, v int64) {
	w.byte(byte(tagLiteral))
	w.kind(k)
	w.byte(0)
	w.int64(v)
}

func TestDecodeSchemaRoundTrip(t *testing.T) {
	w := &writer{}
	w.uint32(2)
	w.string("f0")
	w.kind(types.NewInt32())
	w.byte(1)
	w.string("f1")
	w.kind(types.NewFloat64())
	w.byte(0)

	s, st := DecodeSchema(w.buf)
	if st != nil {
		t.Fatalf("decode failed: %v", st)
	}
	if s.Len() != 2 {
		t.Fatalf("got %d fields, want 2", s.Len())
	}
	f0, ok := s.Lookup("f0")
	if !ok || !f0.Kind.Equal(types.NewInt32()) || !f0.Nullable {
		t.Errorf("f0 = %+v", f0)
	}
	f1, ok := s.Lookup("f1")
	if !ok || !f1.Kind.Equal(types.NewFloat64()) || f1.Nullable {
		t.Errorf("f1 = %+v", f1)
	}
}

func TestDecodeExpressionsRoundTrip(t *testing.T) {
	w := &writer{}
	w.uint32(1) // one expression
	// call add(field(f0), literal(5)) -> int32
	w.byte(byte(tagCall))
	w.string("add")
	w.kind(types.NewInt32())
	w.uint32(2) // 2 children
	w.field("f0", types.NewInt32())
	w.intLiteral(types.NewInt32(), 5)
	w.string("total")
	w.kind(types.NewInt32())

	exprs, st := DecodeExpressions(w.buf)
	if st != nil {
		t.Fatalf("decode failed: %v", st)
	}
	if len(exprs) != 1 {
		t.Fatalf("got %d expressions, want 1", len(exprs))
	}
	call, ok := exprs[0].Root.(*expr.Call)
	if !ok {
		t.Fatalf("root is %T, want *expr.Call", exprs[0].Root)
	}
	if call.Name != "add" || len(call.Children) != 2 {
		t.Fatalf("call = %+v", call)
	}
	if exprs[0].Output.Name != "total" {
		t.Errorf("output name = %q, want total", exprs[0].Output.Name)
	}
}

func TestDecodeConditionRoundTrip(t *testing.T) {
	w := &writer{}
	w.byte(byte(tagCall))
	w.string("less_than")
	w.kind(types.NewBoolean())
	w.uint32(2)
	w.field("f0", types.NewInt32())
	w.intLiteral(types.NewInt32(), 10)

	cond, st := DecodeCondition(w.buf)
	if st != nil {
		t.Fatalf("decode failed: %v", st)
	}
	if cond.Output.Name != "cond" {
		t.Errorf("condition output name = %q, want cond", cond.Output.Name)
	}
	if !cond.Root.ResultKind().Equal(types.NewBoolean()) {
		t.Errorf("condition root kind = %s, want bool", cond.Root.ResultKind())
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	if _, st := DecodeSchema([]byte{1, 0, 0}); st == nil {
		t.Fatalf("expected error decoding truncated schema")
	}
}

func TestDecodeFloatLiteral(t *testing.T) {
	w := &writer{}
	w.uint32(1)
	w.byte(byte(tagLiteral))
	w.kind(types.NewFloat64())
	w.byte(0)
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(3.5))
	w.buf = append(w.buf, b[:]...)
	w.string("half")
	w.kind(types.NewFloat64())

	exprs, st := DecodeExpressions(w.buf)
	if st != nil {
		t.Fatalf("decode failed: %v", st)
	}
	lit, ok := exprs[0].Root.(*expr.Literal)
	if !ok {
		t.Fatalf("root is %T, want *expr.Literal", exprs[0].Root)
	}
	if lit.Value.(float64) != 3.5 {
		t.Errorf("literal value = %v, want 3.5", lit.Value)
	}
}
