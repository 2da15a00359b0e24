package buffer

import (
	"encoding/binary"
	"math"

	"exprc/internal/types"
)

// Array is a single columnar buffer set: a validity bitmap, a data buffer,
// and (for variable-width kinds) an offsets buffer, as described in spec
// §6.1/§6.2. Fixed-width data is stored little-endian; variable-width data
// is addressed by the offsets buffer (one int32 per row plus a terminator).
type Array struct {
	Kind     types.Kind
	Length   int
	Validity Bitmap
	Data     []byte
	Offsets  []int32 // len == Length+1, only for variable-width kinds
}

// NewFixedWidth allocates a fixed-width array of n rows, all valid, zeroed
// data.
func NewFixedWidth(kind types.Kind, n int) *Array {
	var dataLen int
	if kind.ID == types.Boolean {
		dataLen = len(NewBitmap(n))
	} else {
		dataLen = kind.FixedWidth() * n
	}
	return &Array{Kind: kind, Length: n, Validity: NewBitmap(n), Data: make([]byte, dataLen)}
}

// NewVariableWidth allocates a variable-width array of n rows over a data
// buffer capacity of dataCap bytes.
func NewVariableWidth(kind types.Kind, n, dataCap int) *Array {
	return &Array{Kind: kind, Length: n, Validity: NewBitmap(n), Data: make([]byte, 0, dataCap), Offsets: make([]int32, n+1)}
}

// Int32 reads row i of an int32 array.
func (a *Array) Int32(i int) int32 {
	return int32(binary.LittleEndian.Uint32(a.Data[i*4:]))
}

// SetInt32 writes row i of an int32 array.
func (a *Array) SetInt32(i int, v int32) {
	binary.LittleEndian.PutUint32(a.Data[i*4:], uint32(v))
}

// Int64 reads row i of an int64 array.
func (a *Array) Int64(i int) int64 {
	return int64(binary.LittleEndian.Uint64(a.Data[i*8:]))
}

// SetInt64 writes row i of an int64 array.
func (a *Array) SetInt64(i int, v int64) {
	binary.LittleEndian.PutUint64(a.Data[i*8:], uint64(v))
}

// Float64 reads row i of a float64 array.
func (a *Array) Float64(i int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(a.Data[i*8:]))
}

// SetFloat64 writes row i of a float64 array.
func (a *Array) SetFloat64(i int, v float64) {
	binary.LittleEndian.PutUint64(a.Data[i*8:], math.Float64bits(v))
}

// Bytes returns row i of a variable-width array as [start:end).
func (a *Array) Bytes(i int) []byte {
	start, end := a.Offsets[i], a.Offsets[i+1]
	return a.Data[start:end]
}

// AppendBytes appends row i's value for a variable-width array being built
// left to right and closes its offset.
func (a *Array) AppendBytes(i int, v []byte) {
	if i == 0 {
		a.Offsets[0] = 0
	}
	a.Data = append(a.Data, v...)
	a.Offsets[i+1] = int32(len(a.Data))
}
