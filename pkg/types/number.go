package types

import (
	"encoding/binary"
	"io"
	"strconv"

	"github.com/colbase/colbase/pkg/column"
	"github.com/colbase/colbase/pkg/textio"
	"github.com/colbase/colbase/pkg/typerr"
	"github.com/colbase/colbase/pkg/value"
)

// Number is the descriptor shared by the whole numeric family. The
// element codec and the boxing functions are fixed at construction, so a
// single implementation covers Int8 through Float64.
type Number[T any] struct {
	name    string
	size    int
	put     func([]byte, T)
	get     func([]byte) T
	box     func(T) value.Value
	unbox   func(value.Value) (T, error)
	parse   func(string) (T, error)
	format  func(T) string
	quote64 bool // 64-bit integer kinds honor the JSON quoting flag
}

func newSigned[T int8 | int16 | int32 | int64](name string, size int) *Number[T] {
	return &Number[T]{
		name: name,
		size: size,
		put: func(b []byte, v T) {
			putUintBE(b, uint64(v), size)
		},
		get: func(b []byte) T {
			return T(getUintBE(b, size))
		},
		box: func(v T) value.Value {
			return value.NewInt64(int64(v))
		},
		unbox: func(v value.Value) (T, error) {
			if v.Kind() != value.KindInt64 {
				return 0, typerr.Malformedf("%s: expected an Int64 value, got %s", name, v.Kind())
			}
			return T(v.Int64()), nil
		},
		parse: func(s string) (T, error) {
			n, err := strconv.ParseInt(s, 10, size*8)
			if err != nil {
				return 0, typerr.Malformedf("cannot parse %q as %s", s, name)
			}
			return T(n), nil
		},
		format: func(v T) string {
			return strconv.FormatInt(int64(v), 10)
		},
		quote64: size == 8,
	}
}

func newUnsigned[T uint8 | uint16 | uint32 | uint64](name string, size int) *Number[T] {
	return &Number[T]{
		name: name,
		size: size,
		put: func(b []byte, v T) {
			putUintBE(b, uint64(v), size)
		},
		get: func(b []byte) T {
			return T(getUintBE(b, size))
		},
		box: func(v T) value.Value {
			return value.NewUInt64(uint64(v))
		},
		unbox: func(v value.Value) (T, error) {
			if v.Kind() != value.KindUInt64 {
				return 0, typerr.Malformedf("%s: expected a UInt64 value, got %s", name, v.Kind())
			}
			return T(v.UInt64()), nil
		},
		parse: func(s string) (T, error) {
			n, err := strconv.ParseUint(s, 10, size*8)
			if err != nil {
				return 0, typerr.Malformedf("cannot parse %q as %s", s, name)
			}
			return T(n), nil
		},
		format: func(v T) string {
			return strconv.FormatUint(uint64(v), 10)
		},
		quote64: size == 8,
	}
}

func newFloat[T float32 | float64](name string, size int, toBits func(T) uint64, fromBits func(uint64) T) *Number[T] {
	return &Number[T]{
		name: name,
		size: size,
		put: func(b []byte, v T) {
			putUintBE(b, toBits(v), size)
		},
		get: func(b []byte) T {
			return fromBits(getUintBE(b, size))
		},
		box: func(v T) value.Value {
			return value.NewFloat64(float64(v))
		},
		unbox: func(v value.Value) (T, error) {
			if v.Kind() != value.KindFloat64 {
				return 0, typerr.Malformedf("%s: expected a Float64 value, got %s", name, v.Kind())
			}
			return T(v.Float64()), nil
		},
		parse: func(s string) (T, error) {
			f, err := strconv.ParseFloat(s, size*8)
			if err != nil {
				return 0, typerr.Malformedf("cannot parse %q as %s", s, name)
			}
			return T(f), nil
		},
		format: func(v T) string {
			return strconv.FormatFloat(float64(v), 'g', -1, size*8)
		},
	}
}

func putUintBE(b []byte, v uint64, size int) {
	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(b, uint16(v))
	case 4:
		binary.BigEndian.PutUint32(b, uint32(v))
	default:
		binary.BigEndian.PutUint64(b, v)
	}
}

func getUintBE(b []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(b))
	case 4:
		return uint64(binary.BigEndian.Uint32(b))
	default:
		return binary.BigEndian.Uint64(b)
	}
}

func (t *Number[T]) Name() string {
	return t.name
}

func (t *Number[T]) IsNull() bool {
	return false
}

func (t *Number[T]) IsNullable() bool {
	return false
}

func (t *Number[T]) IsNumeric() bool {
	return true
}

func (t *Number[T]) IsNumericNotNullable() bool {
	return true
}

func (t *Number[T]) BehavesAsNumber() bool {
	return true
}

func (t *Number[T]) Clone() DataType {
	clone := *t
	return &clone
}

func (t *Number[T]) CreateColumn() column.Column {
	return column.NewVector(t.box, t.unbox)
}

func (t *Number[T]) CreateConstColumn(size int, v value.Value) (column.Column, error) {
	if size < 0 {
		return nil, typerr.Malformedf("%s: negative const column size %d", t.name, size)
	}
	if _, err := t.unbox(v); err != nil {
		return nil, err
	}
	return column.NewConst(v, size), nil
}

func (t *Number[T]) Default() value.Value {
	var zero T
	return t.box(zero)
}

func (t *Number[T]) SizeOfField() (int, error) {
	return t.size, nil
}

func (t *Number[T]) vector(col column.Column) (*column.Vector[T], error) {
	vec, ok := col.(*column.Vector[T])
	if !ok {
		return nil, typerr.Malformedf("%s: unexpected column type %T", t.name, col)
	}
	return vec, nil
}

func (t *Number[T]) SerializeBinaryBulk(col column.Column, w io.Writer, offset, limit int) error {
	return serializeBulkByRow(t, col, w, offset, limit)
}

func (t *Number[T]) DeserializeBinaryBulk(col column.Column, r Reader, limit int, _ float64) error {
	vec, err := t.vector(col)
	if err != nil {
		return err
	}
	vec.Reserve(limit)
	return deserializeBulkByValue(t, col, r, limit)
}

func (t *Number[T]) StreamDescriptions(dst []string, _ int) []string {
	return append(dst, "")
}

func (t *Number[T]) SerializeBinaryBulkMulti(col column.Column, streams []io.Writer, _ bool, offset, limit int) error {
	return singleStreamSerializeMulti(t, col, streams, offset, limit)
}

func (t *Number[T]) DeserializeBinaryBulkMulti(col column.Column, streams []Reader, _ bool, limit int, hint float64) error {
	return singleStreamDeserializeMulti(t, col, streams, limit, hint)
}

func (t *Number[T]) writeElem(w io.Writer, v T) error {
	buf := make([]byte, t.size)
	t.put(buf, v)
	_, err := w.Write(buf)
	return err
}

func (t *Number[T]) readElem(r Reader) (T, error) {
	buf := make([]byte, t.size)
	if _, err := io.ReadFull(r, buf); err != nil {
		var zero T
		return zero, typerr.FromIO(err, t.name)
	}
	return t.get(buf), nil
}

func (t *Number[T]) SerializeValueBinary(v value.Value, w io.Writer) error {
	elem, err := t.unbox(v)
	if err != nil {
		return err
	}
	return t.writeElem(w, elem)
}

func (t *Number[T]) DeserializeValueBinary(r Reader) (value.Value, error) {
	elem, err := t.readElem(r)
	if err != nil {
		return value.Null(), err
	}
	return t.box(elem), nil
}

func (t *Number[T]) SerializeBinary(col column.Column, row int, w io.Writer) error {
	vec, err := t.vector(col)
	if err != nil {
		return err
	}
	return t.writeElem(w, vec.Data[row])
}

func (t *Number[T]) DeserializeBinary(col column.Column, r Reader) error {
	vec, err := t.vector(col)
	if err != nil {
		return err
	}
	elem, err := t.readElem(r)
	if err != nil {
		return err
	}
	vec.Data = append(vec.Data, elem)
	return nil
}

func (t *Number[T]) writeText(col column.Column, row int, w io.Writer) error {
	vec, err := t.vector(col)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, t.format(vec.Data[row]))
	return err
}

func (t *Number[T]) parseAndAppend(col column.Column, s string) error {
	vec, err := t.vector(col)
	if err != nil {
		return err
	}
	elem, err := t.parse(s)
	if err != nil {
		return err
	}
	vec.Data = append(vec.Data, elem)
	return nil
}

func (t *Number[T]) SerializeTextEscaped(col column.Column, row int, w io.Writer) error {
	return t.writeText(col, row, w)
}

func (t *Number[T]) DeserializeTextEscaped(col column.Column, r Reader) error {
	s, err := textio.ReadNumericField(r)
	if err != nil {
		return err
	}
	return t.parseAndAppend(col, s)
}

func (t *Number[T]) SerializeTextQuoted(col column.Column, row int, w io.Writer) error {
	return t.writeText(col, row, w)
}

func (t *Number[T]) DeserializeTextQuoted(col column.Column, r Reader) error {
	return t.DeserializeTextEscaped(col, r)
}

func (t *Number[T]) SerializeTextCSV(col column.Column, row int, w io.Writer) error {
	return t.writeText(col, row, w)
}

func (t *Number[T]) DeserializeTextCSV(col column.Column, r Reader, delimiter byte) error {
	s, err := textio.ReadCSVField(r, delimiter)
	if err != nil {
		return err
	}
	return t.parseAndAppend(col, s)
}

func (t *Number[T]) SerializeText(col column.Column, row int, w io.Writer) error {
	return t.writeText(col, row, w)
}

func (t *Number[T]) SerializeTextJSON(col column.Column, row int, w io.Writer, forceQuote64 bool) error {
	if t.quote64 && forceQuote64 {
		vec, err := t.vector(col)
		if err != nil {
			return err
		}
		return textio.WriteJSONString(w, t.format(vec.Data[row]))
	}
	return t.writeText(col, row, w)
}

func (t *Number[T]) DeserializeTextJSON(col column.Column, r Reader) error {
	if err := textio.SkipWhitespace(r); err != nil {
		return err
	}
	if first, err := r.Peek(1); err == nil && first[0] == '"' {
		// Quoted 64-bit integers produced under the quoting flag.
		s, err := textio.ReadJSONString(r)
		if err != nil {
			return err
		}
		return t.parseAndAppend(col, s)
	}
	s, err := textio.ReadNumericField(r)
	if err != nil {
		return err
	}
	return t.parseAndAppend(col, s)
}

func (t *Number[T]) SerializeTextXML(col column.Column, row int, w io.Writer) error {
	return t.SerializeText(col, row, w)
}
