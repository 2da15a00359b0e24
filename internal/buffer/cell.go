package buffer

import (
	"math"

	"exprc/internal/types"
)

// ReadCell decodes row i of array a into a generic Go value: bool for
// Boolean, int64 for every integer/date/time/timestamp kind (sign- or
// zero-extended), float64 for float kinds, []byte for UTF8/Binary. This is
// the marshalling boundary between the wire buffer layout (spec §6.1) and
// the intrinsic Impl calling convention (registry.Impl).
func ReadCell(a *Array, i int) interface{} {
	switch a.Kind.ID {
	case types.Boolean:
		return Bitmap(a.Data).Get(i) // boolean values are themselves a packed bitmap, read by byte-and-bit decomposition
	case types.Int8:
		return int64(int8(a.Data[i]))
	case types.Int16:
		return int64(int16(uint16(a.Data[i*2]) | uint16(a.Data[i*2+1])<<8))
	case types.Int32, types.Date32, types.TimeOfDay32:
		return int64(a.Int32(i))
	case types.Int64, types.Timestamp:
		return a.Int64(i)
	case types.Float32:
		bits := uint32(a.Data[i*4]) | uint32(a.Data[i*4+1])<<8 | uint32(a.Data[i*4+2])<<16 | uint32(a.Data[i*4+3])<<24
		return float64(float32frombits(bits))
	case types.Float64:
		return a.Float64(i)
	case types.UTF8, types.Binary:
		return a.Bytes(i)
	default:
		panic("buffer: ReadCell: unrecognised kind")
	}
}

// WriteCell encodes a generic Go value (as produced by an intrinsic Impl or
// a decomposed value tree) into row i of array a.
func WriteCell(a *Array, i int, v interface{}) {
	switch a.Kind.ID {
	case types.Boolean:
		Bitmap(a.Data).Set(i, v.(bool))
	case types.Int8:
		a.Data[i] = byte(int8(toInt64(v)))
	case types.Int16:
		n := int16(toInt64(v))
		a.Data[i*2] = byte(n)
		a.Data[i*2+1] = byte(n >> 8)
	case types.Int32, types.Date32, types.TimeOfDay32:
		a.SetInt32(i, int32(toInt64(v)))
	case types.Int64, types.Timestamp:
		a.SetInt64(i, toInt64(v))
	case types.Float32:
		f := float32(toFloat64(v))
		bits := float32bits(f)
		a.Data[i*4] = byte(bits)
		a.Data[i*4+1] = byte(bits >> 8)
		a.Data[i*4+2] = byte(bits >> 16)
		a.Data[i*4+3] = byte(bits >> 24)
	case types.Float64:
		a.SetFloat64(i, toFloat64(v))
	case types.UTF8, types.Binary:
		a.AppendBytes(i, v.([]byte))
	default:
		panic("buffer: WriteCell: unrecognised kind")
	}
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		panic("buffer: expected integer-like value")
	}
}

func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		panic("buffer: expected float-like value")
	}
}

func float32frombits(b uint32) float32 {
	return math.Float32frombits(b)
}

func float32bits(f float32) uint32 {
	return math.Float32bits(f)
}
