package common

import (
	"fmt"
	"math"
	"strconv"
)

// VariableName identifies one binding inside a scope. Column names coming
// from the data source and synthetic constant names allocated by the planner
// share this namespace.
type VariableName = string

type ValueType int

const (
	Int ValueType = iota
	Float
	String
	Bool
)

func (tp ValueType) String() string {
	switch tp {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is one scalar flowing through the engine. The zero Value is Int(0).
type Value struct {
	TP       ValueType
	IntVal   int64
	FloatVal float64
	StrVal   string
	BoolVal  bool
}

func NewIntValue(v int64) Value {
	return Value{TP: Int, IntVal: v}
}

func NewFloatValue(v float64) Value {
	return Value{TP: Float, FloatVal: v}
}

func NewStringValue(v string) Value {
	return Value{TP: String, StrVal: v}
}

func NewBoolValue(v bool) Value {
	return Value{TP: Bool, BoolVal: v}
}

func (value Value) String() string {
	switch value.TP {
	case Int:
		return strconv.FormatInt(value.IntVal, 10)
	case Float:
		return strconv.FormatFloat(value.FloatVal, 'f', -1, 64)
	case String:
		return value.StrVal
	case Bool:
		return strconv.FormatBool(value.BoolVal)
	default:
		return ""
	}
}

// Compare returns -1, 0 or 1. Values of different kinds don't have an order
// and comparing them is a type error.
func (value Value) Compare(other Value) (int, error) {
	if value.TP != other.TP {
		return 0, fmt.Errorf("%w: cannot compare %s with %s", ErrTypeMismatch, value.TP, other.TP)
	}
	switch value.TP {
	case Int:
		return compareInt(value.IntVal, other.IntVal), nil
	case Float:
		return compareFloat(value.FloatVal, other.FloatVal), nil
	case String:
		return compareString(value.StrVal, other.StrVal), nil
	case Bool:
		return compareBool(value.BoolVal, other.BoolVal), nil
	default:
		return 0, fmt.Errorf("%w: unknown value type %d", ErrTypeMismatch, value.TP)
	}
}

// AsFloat widens a numeric value to float64. Non numeric kinds are a type
// error.
func (value Value) AsFloat() (float64, error) {
	switch value.TP {
	case Int:
		return float64(value.IntVal), nil
	case Float:
		return value.FloatVal, nil
	default:
		return 0, fmt.Errorf("%w: %s is not numeric", ErrTypeMismatch, value.TP)
	}
}

// Encode returns a representation that differs whenever either the kind or
// the payload differs. Used for group keys and distinct-count sketches.
func (value Value) Encode() []byte {
	switch value.TP {
	case Int:
		buf := make([]byte, 9)
		buf[0] = byte(Int)
		putUint64(buf[1:], uint64(value.IntVal))
		return buf
	case Float:
		buf := make([]byte, 9)
		buf[0] = byte(Float)
		putUint64(buf[1:], math.Float64bits(value.FloatVal))
		return buf
	case String:
		buf := make([]byte, 0, len(value.StrVal)+1)
		buf = append(buf, byte(String))
		return append(buf, value.StrVal...)
	case Bool:
		if value.BoolVal {
			return []byte{byte(Bool), 1}
		}
		return []byte{byte(Bool), 0}
	default:
		return nil
	}
}

func putUint64(buf []byte, v uint64) {
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (56 - 8*i))
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case b:
		return -1
	default:
		return 1
	}
}
