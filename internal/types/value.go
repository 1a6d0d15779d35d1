package types

import (
	"fmt"
	"math"
	"strconv"
)

// ValueKind tags the variant stored in a Value.
type ValueKind string

const (
	ValueBinary  ValueKind = "binary"
	ValuePosInt8 ValueKind = "posint8"
	ValueInt8    ValueKind = "int8"
	ValuePosInt  ValueKind = "posint"
	ValueInt     ValueKind = "int"
	ValueFloat   ValueKind = "float"
)

// floatEpsilon bounds the error tolerated when comparing float variants
// for equality. Readings pass through JSON round-trips and float32
// arithmetic, so exact bit equality is not meaningful.
const floatEpsilon = 1e-5

// Value is the tagged type passed between all I/O abstractions.
//
// A closed set of variants is used instead of a generic event type so
// that heterogeneous readings can be stored in the same Log and the
// same SQLite archive. The variants were chosen as a good fit for GPIO.
type Value struct {
	Kind  ValueKind `json:"kind"`
	Bool  bool      `json:"bool,omitempty"`
	Int   int64     `json:"int,omitempty"`
	Float float32   `json:"float,omitempty"`
}

func Binary(v bool) Value   { return Value{Kind: ValueBinary, Bool: v} }
func PosInt8(v uint8) Value { return Value{Kind: ValuePosInt8, Int: int64(v)} }
func Int8(v int8) Value     { return Value{Kind: ValueInt8, Int: int64(v)} }
func PosInt(v uint32) Value { return Value{Kind: ValuePosInt, Int: int64(v)} }
func Int(v int32) Value     { return Value{Kind: ValueInt, Int: int64(v)} }
func Float(v float32) Value { return Value{Kind: ValueFloat, Float: v} }

// IsNumeric reports whether arithmetic is defined for the variant.
func (v Value) IsNumeric() bool {
	return v.Kind != ValueBinary && v.Kind != ""
}

// Float64 widens any variant to float64. Binary maps to 0 or 1 so that
// control math (e.g. PID error terms) can consume any reading.
func (v Value) Float64() float64 {
	switch v.Kind {
	case ValueBinary:
		if v.Bool {
			return 1
		}
		return 0
	case ValueFloat:
		return float64(v.Float)
	default:
		return float64(v.Int)
	}
}

func (v Value) String() string {
	switch v.Kind {
	case ValueBinary:
		return strconv.FormatBool(v.Bool)
	case ValueFloat:
		return strconv.FormatFloat(float64(v.Float), 'g', -1, 32)
	default:
		return strconv.FormatInt(v.Int, 10)
	}
}

// Equal compares two values of the same variant. Float variants are
// compared within floatEpsilon. Mismatched variants are never equal.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValueBinary:
		return v.Bool == other.Bool
	case ValueFloat:
		return approxEqual(v.Float, other.Float)
	default:
		return v.Int == other.Int
	}
}

// Compare orders two numeric values of the same variant, returning -1,
// 0, or +1. Comparing mismatched variants or binary values is a
// programming error and panics.
func (v Value) Compare(other Value) int {
	mustMatch("compare", v, other)
	if v.Kind == ValueBinary {
		panic("types: cannot order binary values")
	}
	if v.Kind == ValueFloat {
		if approxEqual(v.Float, other.Float) {
			return 0
		}
		if v.Float < other.Float {
			return -1
		}
		return 1
	}
	switch {
	case v.Int < other.Int:
		return -1
	case v.Int > other.Int:
		return 1
	default:
		return 0
	}
}

// Add combines two values of the same variant. Binary addition is
// logical OR. Mismatched variants panic.
func (v Value) Add(other Value) Value {
	mustMatch("add", v, other)
	switch v.Kind {
	case ValueBinary:
		return Binary(v.Bool || other.Bool)
	case ValueFloat:
		return Float(v.Float + other.Float)
	default:
		return Value{Kind: v.Kind, Int: v.Int + other.Int}
	}
}

// Sub subtracts a value of the same numeric variant. Binary and
// mismatched variants panic.
func (v Value) Sub(other Value) Value {
	mustMatch("sub", v, other)
	if v.Kind == ValueBinary {
		panic("types: cannot subtract binary values")
	}
	if v.Kind == ValueFloat {
		return Float(v.Float - other.Float)
	}
	return Value{Kind: v.Kind, Int: v.Int - other.Int}
}

func mustMatch(op string, a, b Value) {
	if a.Kind != b.Kind {
		panic(fmt.Sprintf("types: cannot %s mismatched value kinds %q and %q", op, a.Kind, b.Kind))
	}
}

func approxEqual(a, b float32) bool {
	diff := math.Abs(float64(a) - float64(b))
	if diff <= floatEpsilon {
		return true
	}
	largest := math.Max(math.Abs(float64(a)), math.Abs(float64(b)))
	return diff <= largest*floatEpsilon
}
