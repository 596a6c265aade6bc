package types

import (
	"io"
	"time"

	"github.com/colbase/colbase/pkg/column"
	"github.com/colbase/colbase/pkg/textio"
	"github.com/colbase/colbase/pkg/typerr"
	"github.com/colbase/colbase/pkg/value"
)

const secondsPerDay = 86400

// chrono covers Date and DateTime. Both store an unsigned epoch-relative
// count and are numeric for storage purposes, but arithmetic and numeric
// casts do not apply to them, so BehavesAsNumber is false.
type chrono[T uint16 | uint32] struct {
	name   string
	size   int
	layout string
	toTime func(T) time.Time
	toUnit func(time.Time) T
}

// NewDate returns the Date descriptor: days since the Unix epoch in a
// uint16, rendered as YYYY-MM-DD.
func NewDate() DataType {
	return &chrono[uint16]{
		name:   "Date",
		size:   2,
		layout: "2006-01-02",
		toTime: func(days uint16) time.Time {
			return time.Unix(int64(days)*secondsPerDay, 0).UTC()
		},
		toUnit: func(t time.Time) uint16 {
			return uint16(t.Unix() / secondsPerDay)
		},
	}
}

// NewDateTime returns the DateTime descriptor: Unix seconds in a uint32,
// rendered as YYYY-MM-DD hh:mm:ss.
func NewDateTime() DataType {
	return &chrono[uint32]{
		name:   "DateTime",
		size:   4,
		layout: "2006-01-02 15:04:05",
		toTime: func(sec uint32) time.Time {
			return time.Unix(int64(sec), 0).UTC()
		},
		toUnit: func(t time.Time) uint32 {
			return uint32(t.Unix())
		},
	}
}

func (t *chrono[T]) box(v T) value.Value {
	return value.NewUInt64(uint64(v))
}

func (t *chrono[T]) unbox(v value.Value) (T, error) {
	if v.Kind() != value.KindUInt64 {
		return 0, typerr.Malformedf("%s: expected a UInt64 value, got %s", t.name, v.Kind())
	}
	return T(v.UInt64()), nil
}

func (t *chrono[T]) Name() string {
	return t.name
}

func (t *chrono[T]) IsNull() bool {
	return false
}

func (t *chrono[T]) IsNullable() bool {
	return false
}

func (t *chrono[T]) IsNumeric() bool {
	return true
}

func (t *chrono[T]) IsNumericNotNullable() bool {
	return true
}

func (t *chrono[T]) BehavesAsNumber() bool {
	return false
}

func (t *chrono[T]) Clone() DataType {
	clone := *t
	return &clone
}

func (t *chrono[T]) CreateColumn() column.Column {
	return column.NewVector(t.box, t.unbox)
}

func (t *chrono[T]) CreateConstColumn(size int, v value.Value) (column.Column, error) {
	if size < 0 {
		return nil, typerr.Malformedf("%s: negative const column size %d", t.name, size)
	}
	if _, err := t.unbox(v); err != nil {
		return nil, err
	}
	return column.NewConst(v, size), nil
}

func (t *chrono[T]) Default() value.Value {
	return value.NewUInt64(0)
}

func (t *chrono[T]) SizeOfField() (int, error) {
	return t.size, nil
}

func (t *chrono[T]) vector(col column.Column) (*column.Vector[T], error) {
	vec, ok := col.(*column.Vector[T])
	if !ok {
		return nil, typerr.Malformedf("%s: unexpected column type %T", t.name, col)
	}
	return vec, nil
}

func (t *chrono[T]) SerializeBinaryBulk(col column.Column, w io.Writer, offset, limit int) error {
	return serializeBulkByRow(t, col, w, offset, limit)
}

func (t *chrono[T]) DeserializeBinaryBulk(col column.Column, r Reader, limit int, _ float64) error {
	vec, err := t.vector(col)
	if err != nil {
		return err
	}
	vec.Reserve(limit)
	return deserializeBulkByValue(t, col, r, limit)
}

func (t *chrono[T]) StreamDescriptions(dst []string, _ int) []string {
	return append(dst, "")
}

func (t *chrono[T]) SerializeBinaryBulkMulti(col column.Column, streams []io.Writer, _ bool, offset, limit int) error {
	return singleStreamSerializeMulti(t, col, streams, offset, limit)
}

func (t *chrono[T]) DeserializeBinaryBulkMulti(col column.Column, streams []Reader, _ bool, limit int, hint float64) error {
	return singleStreamDeserializeMulti(t, col, streams, limit, hint)
}

func (t *chrono[T]) writeElem(w io.Writer, v T) error {
	buf := make([]byte, t.size)
	putUintBE(buf, uint64(v), t.size)
	_, err := w.Write(buf)
	return err
}

func (t *chrono[T]) readElem(r Reader) (T, error) {
	buf := make([]byte, t.size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, typerr.FromIO(err, t.name)
	}
	return T(getUintBE(buf, t.size)), nil
}

func (t *chrono[T]) SerializeValueBinary(v value.Value, w io.Writer) error {
	elem, err := t.unbox(v)
	if err != nil {
		return err
	}
	return t.writeElem(w, elem)
}

func (t *chrono[T]) DeserializeValueBinary(r Reader) (value.Value, error) {
	elem, err := t.readElem(r)
	if err != nil {
		return value.Null(), err
	}
	return t.box(elem), nil
}

func (t *chrono[T]) SerializeBinary(col column.Column, row int, w io.Writer) error {
	vec, err := t.vector(col)
	if err != nil {
		return err
	}
	return t.writeElem(w, vec.Data[row])
}

func (t *chrono[T]) DeserializeBinary(col column.Column, r Reader) error {
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

func (t *chrono[T]) text(col column.Column, row int) (string, error) {
	vec, err := t.vector(col)
	if err != nil {
		return "", err
	}
	return t.toTime(vec.Data[row]).Format(t.layout), nil
}

func (t *chrono[T]) parseAndAppend(col column.Column, s string) error {
	vec, err := t.vector(col)
	if err != nil {
		return err
	}
	parsed, err := time.ParseInLocation(t.layout, s, time.UTC)
	if err != nil {
		return typerr.Malformedf("cannot parse %q as %s", s, t.name)
	}
	vec.Data = append(vec.Data, t.toUnit(parsed))
	return nil
}

// readFixedText reads exactly len(layout) bytes, which both supported
// layouts occupy.
func (t *chrono[T]) readFixedText(r Reader) (string, error) {
	buf := make([]byte, len(t.layout))
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", typerr.FromIO(err, t.name)
	}
	return string(buf), nil
}

func (t *chrono[T]) SerializeTextEscaped(col column.Column, row int, w io.Writer) error {
	s, err := t.text(col, row)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

func (t *chrono[T]) DeserializeTextEscaped(col column.Column, r Reader) error {
	s, err := t.readFixedText(r)
	if err != nil {
		return err
	}
	return t.parseAndAppend(col, s)
}

func (t *chrono[T]) SerializeTextQuoted(col column.Column, row int, w io.Writer) error {
	s, err := t.text(col, row)
	if err != nil {
		return err
	}
	return textio.WriteQuotedString(w, s)
}

func (t *chrono[T]) DeserializeTextQuoted(col column.Column, r Reader) error {
	s, err := textio.ReadQuotedString(r)
	if err != nil {
		return err
	}
	return t.parseAndAppend(col, s)
}

func (t *chrono[T]) SerializeTextCSV(col column.Column, row int, w io.Writer) error {
	s, err := t.text(col, row)
	if err != nil {
		return err
	}
	return textio.WriteCSVString(w, s)
}

func (t *chrono[T]) DeserializeTextCSV(col column.Column, r Reader, delimiter byte) error {
	s, err := textio.ReadCSVField(r, delimiter)
	if err != nil {
		return err
	}
	return t.parseAndAppend(col, s)
}

func (t *chrono[T]) SerializeText(col column.Column, row int, w io.Writer) error {
	return t.SerializeTextEscaped(col, row, w)
}

func (t *chrono[T]) SerializeTextJSON(col column.Column, row int, w io.Writer, _ bool) error {
	s, err := t.text(col, row)
	if err != nil {
		return err
	}
	return textio.WriteJSONString(w, s)
}

func (t *chrono[T]) DeserializeTextJSON(col column.Column, r Reader) error {
	if err := textio.SkipWhitespace(r); err != nil {
		return err
	}
	s, err := textio.ReadJSONString(r)
	if err != nil {
		return err
	}
	return t.parseAndAppend(col, s)
}

func (t *chrono[T]) SerializeTextXML(col column.Column, row int, w io.Writer) error {
	return t.SerializeText(col, row, w)
}
