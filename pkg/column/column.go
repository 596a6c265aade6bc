// Package column provides the in-memory homogeneous value sequences that
// descriptors read from and append to. A column is mutable only through
// appends and truncation; exactly one writer may mutate it at a time.
package column

import (
	"fmt"

	"github.com/colbase/colbase/pkg/value"
)

// Column is an append-only, randomly-indexable sequence of values of one
// type. Concrete implementations expose their backing storage so the
// owning descriptor can encode and decode entries without boxing every
// value; Truncate exists so composite appends can be rolled back.
type Column interface {
	// Len returns the number of entries.
	Len() int

	// ValueAt boxes the entry at row into a scalar value.
	ValueAt(row int) (value.Value, error)

	// AppendValue appends one scalar value of the column's type.
	AppendValue(v value.Value) error

	// Truncate discards entries so that exactly n remain.
	Truncate(n int)

	// Reserve grows capacity for n additional entries. It never affects
	// contents.
	Reserve(n int)
}

func rowRangeError(row, size int) error {
	return fmt.Errorf("row %d out of range [0, %d)", row, size)
}

// Vector is a contiguous column of fixed-width elements. The boxing
// functions are supplied by the owning descriptor, which knows whether
// the element widens to a signed, unsigned or floating scalar.
type Vector[T any] struct {
	Data []T

	box   func(T) value.Value
	unbox func(value.Value) (T, error)
}

// NewVector creates an empty fixed-width column with the given boxing
// functions.
func NewVector[T any](box func(T) value.Value, unbox func(value.Value) (T, error)) *Vector[T] {
	return &Vector[T]{box: box, unbox: unbox}
}

func (c *Vector[T]) Len() int {
	return len(c.Data)
}

func (c *Vector[T]) ValueAt(row int) (value.Value, error) {
	if row < 0 || row >= len(c.Data) {
		return value.Null(), rowRangeError(row, len(c.Data))
	}
	return c.box(c.Data[row]), nil
}

func (c *Vector[T]) AppendValue(v value.Value) error {
	elem, err := c.unbox(v)
	if err != nil {
		return err
	}
	c.Data = append(c.Data, elem)
	return nil
}

func (c *Vector[T]) Truncate(n int) {
	if n < len(c.Data) {
		c.Data = c.Data[:n]
	}
}

func (c *Vector[T]) Reserve(n int) {
	if cap(c.Data)-len(c.Data) < n {
		grown := make([]T, len(c.Data), len(c.Data)+n)
		copy(grown, c.Data)
		c.Data = grown
	}
}

// String is a column of variable-length strings.
type String struct {
	Data []string
}

// NewString creates an empty string column.
func NewString() *String {
	return &String{}
}

func (c *String) Len() int {
	return len(c.Data)
}

func (c *String) ValueAt(row int) (value.Value, error) {
	if row < 0 || row >= len(c.Data) {
		return value.Null(), rowRangeError(row, len(c.Data))
	}
	return value.NewString(c.Data[row]), nil
}

func (c *String) AppendValue(v value.Value) error {
	if v.Kind() != value.KindString {
		return fmt.Errorf("cannot append %s value to a String column", v.Kind())
	}
	c.Data = append(c.Data, v.Str())
	return nil
}

func (c *String) Truncate(n int) {
	if n < len(c.Data) {
		c.Data = c.Data[:n]
	}
}

func (c *String) Reserve(n int) {
	if cap(c.Data)-len(c.Data) < n {
		grown := make([]string, len(c.Data), len(c.Data)+n)
		copy(grown, c.Data)
		c.Data = grown
	}
}

// Nullable pairs an inner column with a null map. Entry i is null when
// Nulls[i] != 0; the inner column then holds the inner type's default at
// that position so both sides always have equal length.
type Nullable struct {
	Inner Column
	Nulls []uint8

	innerDefault value.Value
}

// NewNullable wraps an inner column. innerDefault is appended to the
// inner column wherever a null is inserted.
func NewNullable(inner Column, innerDefault value.Value) *Nullable {
	return &Nullable{Inner: inner, innerDefault: innerDefault}
}

func (c *Nullable) Len() int {
	return len(c.Nulls)
}

func (c *Nullable) ValueAt(row int) (value.Value, error) {
	if row < 0 || row >= len(c.Nulls) {
		return value.Null(), rowRangeError(row, len(c.Nulls))
	}
	if c.Nulls[row] != 0 {
		return value.Null(), nil
	}
	return c.Inner.ValueAt(row)
}

func (c *Nullable) AppendValue(v value.Value) error {
	if v.IsNull() {
		if err := c.Inner.AppendValue(c.innerDefault); err != nil {
			return err
		}
		c.Nulls = append(c.Nulls, 1)
		return nil
	}
	if err := c.Inner.AppendValue(v); err != nil {
		return err
	}
	c.Nulls = append(c.Nulls, 0)
	return nil
}

// AppendNull appends a null entry.
func (c *Nullable) AppendNull() error {
	return c.AppendValue(value.Null())
}

func (c *Nullable) Truncate(n int) {
	if n < len(c.Nulls) {
		c.Nulls = c.Nulls[:n]
		c.Inner.Truncate(n)
	}
}

func (c *Nullable) Reserve(n int) {
	c.Inner.Reserve(n)
	if cap(c.Nulls)-len(c.Nulls) < n {
		grown := make([]uint8, len(c.Nulls), len(c.Nulls)+n)
		copy(grown, c.Nulls)
		c.Nulls = grown
	}
}

// Array stores nested arrays as a flattened element column plus
// cumulative end offsets: row i spans Data[Offsets[i-1]:Offsets[i]].
type Array struct {
	Data    Column
	Offsets []uint64
}

// NewArray creates an empty array column over the given element column.
func NewArray(data Column) *Array {
	return &Array{Data: data}
}

func (c *Array) Len() int {
	return len(c.Offsets)
}

// OffsetAt returns the exclusive end offset of row i, with -1 meaning 0.
func (c *Array) OffsetAt(i int) uint64 {
	if i < 0 {
		return 0
	}
	return c.Offsets[i]
}

// SizeAt returns the element count of row i.
func (c *Array) SizeAt(i int) uint64 {
	return c.OffsetAt(i) - c.OffsetAt(i-1)
}

func (c *Array) ValueAt(row int) (value.Value, error) {
	if row < 0 || row >= len(c.Offsets) {
		return value.Null(), rowRangeError(row, len(c.Offsets))
	}
	begin, end := c.OffsetAt(row-1), c.OffsetAt(row)
	elems := make([]value.Value, 0, end-begin)
	for i := begin; i < end; i++ {
		elem, err := c.Data.ValueAt(int(i))
		if err != nil {
			return value.Null(), err
		}
		elems = append(elems, elem)
	}
	return value.NewArray(elems), nil
}

func (c *Array) AppendValue(v value.Value) error {
	if v.Kind() != value.KindArray {
		return fmt.Errorf("cannot append %s value to an Array column", v.Kind())
	}
	restore := c.Data.Len()
	for _, elem := range v.Array() {
		if err := c.Data.AppendValue(elem); err != nil {
			c.Data.Truncate(restore)
			return err
		}
	}
	c.Offsets = append(c.Offsets, c.OffsetAt(len(c.Offsets)-1)+uint64(len(v.Array())))
	return nil
}

func (c *Array) Truncate(n int) {
	if n < len(c.Offsets) {
		c.Offsets = c.Offsets[:n]
		c.Data.Truncate(int(c.OffsetAt(n - 1)))
	}
}

func (c *Array) Reserve(n int) {
	if cap(c.Offsets)-len(c.Offsets) < n {
		grown := make([]uint64, len(c.Offsets), len(c.Offsets)+n)
		copy(grown, c.Offsets)
		c.Offsets = grown
	}
}

// Const is a column of one repeated value. It backs createConstColumn;
// per-row descriptor serialization does not accept it.
type Const struct {
	Val   value.Value
	Count int
}

// NewConst creates a constant column of the given size.
func NewConst(v value.Value, size int) *Const {
	return &Const{Val: v, Count: size}
}

func (c *Const) Len() int {
	return c.Count
}

func (c *Const) ValueAt(row int) (value.Value, error) {
	if row < 0 || row >= c.Count {
		return value.Null(), rowRangeError(row, c.Count)
	}
	return c.Val, nil
}

func (c *Const) AppendValue(v value.Value) error {
	if !v.Equals(c.Val) {
		return fmt.Errorf("cannot append a different value to a Const column")
	}
	c.Count++
	return nil
}

func (c *Const) Truncate(n int) {
	if n < c.Count {
		c.Count = n
	}
}

func (c *Const) Reserve(int) {}
