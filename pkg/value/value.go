// Package value provides the tagged scalar used to move single values
// between columns, defaults and metadata paths without allocating a column.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt64
	KindUInt64
	KindFloat64
	KindString
	KindArray
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInt64:
		return "Int64"
	case KindUInt64:
		return "UInt64"
	case KindFloat64:
		return "Float64"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Value is a self-contained representation of one value or null.
// Numeric values are stored widened to 64 bits; the owning descriptor
// knows how to narrow them back on serialization.
type Value struct {
	kind Kind
	i    int64
	u    uint64
	f    float64
	s    string
	a    []Value
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

func NewInt64(v int64) Value {
	return Value{kind: KindInt64, i: v}
}

func NewUInt64(v uint64) Value {
	return Value{kind: KindUInt64, u: v}
}

func NewFloat64(v float64) Value {
	return Value{kind: KindFloat64, f: v}
}

func NewString(v string) Value {
	return Value{kind: KindString, s: v}
}

func NewArray(elems []Value) Value {
	return Value{kind: KindArray, a: elems}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

func (v Value) Int64() int64 {
	return v.i
}

func (v Value) UInt64() uint64 {
	return v.u
}

func (v Value) Float64() float64 {
	return v.f
}

func (v Value) Str() string {
	return v.s
}

// Array returns the element slice. Callers must not mutate it.
func (v Value) Array() []Value {
	return v.a
}

// Equals reports deep equality of kind and payload.
func (v Value) Equals(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInt64:
		return v.i == other.i
	case KindUInt64:
		return v.u == other.u
	case KindFloat64:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.a) != len(other.a) {
			return false
		}
		for i := range v.a {
			if !v.a[i].Equals(other.a[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the value for debugging and error messages.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindInt64:
		return strconv.FormatInt(v.i, 10)
	case KindUInt64:
		return strconv.FormatUint(v.u, 10)
	case KindFloat64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindArray:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range v.a {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(e.String())
		}
		sb.WriteByte(']')
		return sb.String()
	default:
		return fmt.Sprintf("Value(kind=%d)", v.kind)
	}
}
