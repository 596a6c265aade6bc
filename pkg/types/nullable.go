package types

import (
	"io"

	"github.com/colbase/colbase/pkg/column"
	"github.com/colbase/colbase/pkg/textio"
	"github.com/colbase/colbase/pkg/typerr"
	"github.com/colbase/colbase/pkg/value"
)

// Null literals per text format.
const (
	escapedNull = `\N`
	quotedNull  = "NULL"
	jsonNull    = "null"
)

// nullableType wraps a non-nullable inner type. It adds exactly one
// extra stream, the null map, ahead of the inner type's streams, and
// forwards everything else to the inner descriptor plus null handling.
type nullableType struct {
	inner DataType
}

// NewNullable returns the Nullable(inner) descriptor. The inner type
// must not itself be nullable.
func NewNullable(inner DataType) (DataType, error) {
	if inner.IsNullable() {
		return nil, typerr.Malformedf("Nullable cannot wrap the nullable type %s", inner.Name())
	}
	return &nullableType{inner: inner}, nil
}

func (t *nullableType) Name() string {
	return "Nullable(" + t.inner.Name() + ")"
}

func (t *nullableType) IsNull() bool {
	return false
}

func (t *nullableType) IsNullable() bool {
	return true
}

func (t *nullableType) IsNumeric() bool {
	return t.inner.IsNumeric()
}

func (t *nullableType) IsNumericNotNullable() bool {
	return false
}

func (t *nullableType) BehavesAsNumber() bool {
	return t.inner.BehavesAsNumber()
}

func (t *nullableType) Clone() DataType {
	return &nullableType{inner: t.inner.Clone()}
}

func (t *nullableType) CreateColumn() column.Column {
	return column.NewNullable(t.inner.CreateColumn(), t.inner.Default())
}

func (t *nullableType) CreateConstColumn(size int, v value.Value) (column.Column, error) {
	if size < 0 {
		return nil, typerr.Malformedf("%s: negative const column size %d", t.Name(), size)
	}
	if !v.IsNull() {
		if _, err := t.inner.CreateConstColumn(0, v); err != nil {
			return nil, err
		}
	}
	return column.NewConst(v, size), nil
}

// Default is the null value.
func (t *nullableType) Default() value.Value {
	return value.Null()
}

func (t *nullableType) SizeOfField() (int, error) {
	innerSize, err := t.inner.SizeOfField()
	if err != nil {
		return 0, err
	}
	return 1 + innerSize, nil
}

func (t *nullableType) nullableColumn(col column.Column) (*column.Nullable, error) {
	nc, ok := col.(*column.Nullable)
	if !ok {
		return nil, typerr.Malformedf("%s: unexpected column type %T", t.Name(), col)
	}
	return nc, nil
}

func (t *nullableType) SerializeBinaryBulk(col column.Column, w io.Writer, offset, limit int) error {
	return serializeBulkByRow(t, col, w, offset, limit)
}

func (t *nullableType) DeserializeBinaryBulk(col column.Column, r Reader, limit int, _ float64) error {
	return deserializeBulkByValue(t, col, r, limit)
}

func (t *nullableType) StreamDescriptions(dst []string, level int) []string {
	dst = append(dst, ".null")
	return t.inner.StreamDescriptions(dst, level)
}

func (t *nullableType) SerializeBinaryBulkMulti(col column.Column, streams []io.Writer, positionIndependent bool, offset, limit int) error {
	nc, err := t.nullableColumn(col)
	if err != nil {
		return err
	}
	if len(streams) < 2 {
		return typerr.Malformedf("%s needs at least 2 streams, got %d", t.Name(), len(streams))
	}
	begin, end, err := bulkRange(nc.Len(), offset, limit)
	if err != nil {
		return err
	}
	if _, err := streams[0].Write(nc.Nulls[begin:end]); err != nil {
		return err
	}
	return t.inner.SerializeBinaryBulkMulti(nc.Inner, streams[1:], positionIndependent, offset, limit)
}

func (t *nullableType) DeserializeBinaryBulkMulti(col column.Column, streams []Reader, positionIndependent bool, limit int, hint float64) error {
	nc, err := t.nullableColumn(col)
	if err != nil {
		return err
	}
	if len(streams) < 2 {
		return typerr.Malformedf("%s needs at least 2 streams, got %d", t.Name(), len(streams))
	}
	if limit == 0 {
		return nil
	}
	before := nc.Inner.Len()

	nulls := make([]uint8, limit)
	n, err := io.ReadFull(streams[0], nulls)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return err
	}
	if n == 0 {
		return nil
	}
	nc.Nulls = append(nc.Nulls, nulls[:n]...)

	innerErr := t.inner.DeserializeBinaryBulkMulti(nc.Inner, streams[1:], positionIndependent, n, hint)
	appended := nc.Inner.Len() - before
	if appended != n {
		// The value stream held fewer entries than the null map; keep the
		// column consistent by dropping the uncovered null-map tail.
		nc.Nulls = nc.Nulls[:before+appended]
		if innerErr == nil {
			innerErr = typerr.Exhaustedf("%s: null map has %d entries but value stream yielded %d", t.Name(), n, appended)
		}
	}
	return innerErr
}

func (t *nullableType) SerializeValueBinary(v value.Value, w io.Writer) error {
	if v.IsNull() {
		_, err := w.Write([]byte{1})
		return err
	}
	if _, err := w.Write([]byte{0}); err != nil {
		return err
	}
	return t.inner.SerializeValueBinary(v, w)
}

func (t *nullableType) DeserializeValueBinary(r Reader) (value.Value, error) {
	flag, err := r.ReadByte()
	if err != nil {
		return value.Null(), typerr.FromIO(err, t.Name())
	}
	if flag != 0 {
		return value.Null(), nil
	}
	return t.inner.DeserializeValueBinary(r)
}

func (t *nullableType) SerializeBinary(col column.Column, row int, w io.Writer) error {
	nc, err := t.nullableColumn(col)
	if err != nil {
		return err
	}
	if nc.Nulls[row] != 0 {
		_, err := w.Write([]byte{1})
		return err
	}
	if _, err := w.Write([]byte{0}); err != nil {
		return err
	}
	return t.inner.SerializeBinary(nc.Inner, row, w)
}

func (t *nullableType) DeserializeBinary(col column.Column, r Reader) error {
	nc, err := t.nullableColumn(col)
	if err != nil {
		return err
	}
	flag, err := r.ReadByte()
	if err != nil {
		return typerr.FromIO(err, t.Name())
	}
	if flag != 0 {
		return nc.AppendNull()
	}
	// The inner per-value deserialize is atomic, so nothing needs to be
	// rolled back when it fails.
	if err := t.inner.DeserializeBinary(nc.Inner, r); err != nil {
		return err
	}
	nc.Nulls = append(nc.Nulls, 0)
	return nil
}

// serializeTextWith writes the null literal for null rows and delegates
// to the inner descriptor otherwise.
func (t *nullableType) serializeTextWith(col column.Column, row int, w io.Writer, null string, serialize func(column.Column, int, io.Writer) error) error {
	nc, err := t.nullableColumn(col)
	if err != nil {
		return err
	}
	if nc.Nulls[row] != 0 {
		_, err := io.WriteString(w, null)
		return err
	}
	return serialize(nc.Inner, row, w)
}

// deserializeTextWith consumes the null literal if present and delegates
// to the inner descriptor otherwise.
func (t *nullableType) deserializeTextWith(col column.Column, r Reader, null string, deserialize func(column.Column, Reader) error) error {
	nc, err := t.nullableColumn(col)
	if err != nil {
		return err
	}
	isNull, err := textio.CheckBytes(r, null)
	if err != nil {
		return err
	}
	if isNull {
		return nc.AppendNull()
	}
	if err := deserialize(nc.Inner, r); err != nil {
		return err
	}
	nc.Nulls = append(nc.Nulls, 0)
	return nil
}

func (t *nullableType) SerializeTextEscaped(col column.Column, row int, w io.Writer) error {
	return t.serializeTextWith(col, row, w, escapedNull, t.inner.SerializeTextEscaped)
}

func (t *nullableType) DeserializeTextEscaped(col column.Column, r Reader) error {
	return t.deserializeTextWith(col, r, escapedNull, t.inner.DeserializeTextEscaped)
}

func (t *nullableType) SerializeTextQuoted(col column.Column, row int, w io.Writer) error {
	return t.serializeTextWith(col, row, w, quotedNull, t.inner.SerializeTextQuoted)
}

func (t *nullableType) DeserializeTextQuoted(col column.Column, r Reader) error {
	return t.deserializeTextWith(col, r, quotedNull, t.inner.DeserializeTextQuoted)
}

func (t *nullableType) SerializeTextCSV(col column.Column, row int, w io.Writer) error {
	return t.serializeTextWith(col, row, w, escapedNull, t.inner.SerializeTextCSV)
}

func (t *nullableType) DeserializeTextCSV(col column.Column, r Reader, delimiter byte) error {
	return t.deserializeTextWith(col, r, escapedNull, func(inner column.Column, r Reader) error {
		return t.inner.DeserializeTextCSV(inner, r, delimiter)
	})
}

func (t *nullableType) SerializeText(col column.Column, row int, w io.Writer) error {
	return t.serializeTextWith(col, row, w, quotedNull, t.inner.SerializeText)
}

func (t *nullableType) SerializeTextJSON(col column.Column, row int, w io.Writer, forceQuote64 bool) error {
	return t.serializeTextWith(col, row, w, jsonNull, func(inner column.Column, row int, w io.Writer) error {
		return t.inner.SerializeTextJSON(inner, row, w, forceQuote64)
	})
}

func (t *nullableType) DeserializeTextJSON(col column.Column, r Reader) error {
	if err := textio.SkipWhitespace(r); err != nil {
		return err
	}
	return t.deserializeTextWith(col, r, jsonNull, t.inner.DeserializeTextJSON)
}

func (t *nullableType) SerializeTextXML(col column.Column, row int, w io.Writer) error {
	return t.serializeTextWith(col, row, w, quotedNull, t.inner.SerializeTextXML)
}
