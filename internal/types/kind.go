// Package types defines the closed set of value kinds the core understands
// (spec §3), plus parameterised kinds (timestamp unit) and kind equality.
package types

import "fmt"

// ID is the tag for a value kind.
type ID int

const (
	Boolean ID = iota
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	UTF8
	Binary
	Date32       // days/millis-since-epoch calendar date
	TimeOfDay32  // millis-since-midnight
	Timestamp    // millis-since-epoch instant, parameterised by Unit
)

// TimeUnit parameterises the Timestamp kind.
type TimeUnit int

const (
	Millisecond TimeUnit = iota
	Microsecond
	Second
)

func (u TimeUnit) String() string {
	switch u {
	case Millisecond:
		return "ms"
	case Microsecond:
		return "us"
	case Second:
		return "s"
	default:
		return "?"
	}
}

// Kind is a value kind: a tag plus, for Timestamp, a unit parameter. Two
// kinds are equal iff tags match and, for parameterised kinds, parameters
// match (spec §3).
type Kind struct {
	ID   ID
	Unit TimeUnit // only meaningful when ID == Timestamp
}

// Equal reports kind equality per spec §3.
func (k Kind) Equal(o Kind) bool {
	if k.ID != o.ID {
		return false
	}
	if k.ID == Timestamp {
		return k.Unit == o.Unit
	}
	return true
}

func (k Kind) String() string {
	switch k.ID {
	case Boolean:
		return "bool"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case UTF8:
		return "utf8"
	case Binary:
		return "binary"
	case Date32:
		return "date32"
	case TimeOfDay32:
		return "time32"
	case Timestamp:
		return fmt.Sprintf("timestamp[%s]", k.Unit)
	default:
		return "unknown"
	}
}

// IsNumeric reports whether the kind participates in arithmetic.
func (k Kind) IsNumeric() bool {
	switch k.ID {
	case Int8, Int16, Int32, Int64, Float32, Float64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether the kind is one of the floating-point kinds.
func (k Kind) IsFloat() bool {
	return k.ID == Float32 || k.ID == Float64
}

// IsVariableWidth reports whether values of this kind are stored as an
// offsets buffer plus a shared data buffer (spec §3, §6.1).
func (k Kind) IsVariableWidth() bool {
	return k.ID == UTF8 || k.ID == Binary
}

// FixedWidth returns the in-buffer byte width of a fixed-width kind. It
// panics for variable-width kinds; callers must check IsVariableWidth first.
func (k Kind) FixedWidth() int {
	switch k.ID {
	case Boolean:
		return 0 // packed into the validity-style bitmap, see buffer package
	case Int8:
		return 1
	case Int16:
		return 2
	case Int32, Date32, TimeOfDay32, Float32:
		return 4
	case Int64, Float64, Timestamp:
		return 8
	default:
		panic(fmt.Sprintf("types: FixedWidth called on variable-width kind %s", k))
	}
}

// Constructors for the common unparameterised kinds.
func NewBoolean() Kind     { return Kind{ID: Boolean} }
func NewInt8() Kind        { return Kind{ID: Int8} }
func NewInt16() Kind       { return Kind{ID: Int16} }
func NewInt32() Kind       { return Kind{ID: Int32} }
func NewInt64() Kind       { return Kind{ID: Int64} }
func NewFloat32() Kind     { return Kind{ID: Float32} }
func NewFloat64() Kind     { return Kind{ID: Float64} }
func NewUTF8() Kind        { return Kind{ID: UTF8} }
func NewBinary() Kind      { return Kind{ID: Binary} }
func NewDate32() Kind      { return Kind{ID: Date32} }
func NewTimeOfDay32() Kind { return Kind{ID: TimeOfDay32} }
func NewTimestamp(u TimeUnit) Kind { return Kind{ID: Timestamp, Unit: u} }
