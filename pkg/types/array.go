package types

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/colbase/colbase/pkg/column"
	"github.com/colbase/colbase/pkg/textio"
	"github.com/colbase/colbase/pkg/typerr"
	"github.com/colbase/colbase/pkg/value"
)

// arrayType wraps an element type. Bulk multi-stream encoding writes one
// size stream per nesting level plus the flattened element streams; the
// per-value binary form is instead self-contained (count followed by the
// elements in one stream), since it serves value-at-a-time callers.
type arrayType struct {
	elem DataType
}

// NewArray returns the Array(elem) descriptor.
func NewArray(elem DataType) DataType {
	return &arrayType{elem: elem}
}

func (t *arrayType) Name() string {
	return "Array(" + t.elem.Name() + ")"
}

func (t *arrayType) IsNull() bool {
	return false
}

func (t *arrayType) IsNullable() bool {
	return false
}

func (t *arrayType) IsNumeric() bool {
	return false
}

func (t *arrayType) IsNumericNotNullable() bool {
	return false
}

func (t *arrayType) BehavesAsNumber() bool {
	return false
}

func (t *arrayType) Clone() DataType {
	return &arrayType{elem: t.elem.Clone()}
}

func (t *arrayType) CreateColumn() column.Column {
	return column.NewArray(t.elem.CreateColumn())
}

func (t *arrayType) CreateConstColumn(size int, v value.Value) (column.Column, error) {
	if size < 0 {
		return nil, typerr.Malformedf("%s: negative const column size %d", t.Name(), size)
	}
	if v.Kind() != value.KindArray {
		return nil, typerr.Malformedf("%s: expected an Array value, got %s", t.Name(), v.Kind())
	}
	return column.NewConst(v, size), nil
}

// Default is the empty array.
func (t *arrayType) Default() value.Value {
	return value.NewArray(nil)
}

func (t *arrayType) SizeOfField() (int, error) {
	return 0, typerr.NotImplementedf("SizeOfField is not defined for the variable-length type %s", t.Name())
}

func (t *arrayType) arrayColumn(col column.Column) (*column.Array, error) {
	ac, ok := col.(*column.Array)
	if !ok {
		return nil, typerr.Malformedf("%s: unexpected column type %T", t.Name(), col)
	}
	return ac, nil
}

func (t *arrayType) SerializeBinaryBulk(col column.Column, w io.Writer, offset, limit int) error {
	return serializeBulkByRow(t, col, w, offset, limit)
}

func (t *arrayType) DeserializeBinaryBulk(col column.Column, r Reader, limit int, _ float64) error {
	return deserializeBulkByValue(t, col, r, limit)
}

func (t *arrayType) StreamDescriptions(dst []string, level int) []string {
	dst = append(dst, fmt.Sprintf(".size%d", level))
	return t.elem.StreamDescriptions(dst, level+1)
}

func (t *arrayType) SerializeBinaryBulkMulti(col column.Column, streams []io.Writer, positionIndependent bool, offset, limit int) error {
	ac, err := t.arrayColumn(col)
	if err != nil {
		return err
	}
	if len(streams) < 2 {
		return typerr.Malformedf("%s needs at least 2 streams, got %d", t.Name(), len(streams))
	}
	begin, end, err := bulkRange(ac.Len(), offset, limit)
	if err != nil {
		return err
	}

	buf := make([]byte, 8)
	for row := begin; row < end; row++ {
		v := ac.SizeAt(row)
		if !positionIndependent {
			v = ac.OffsetAt(row)
		}
		binary.BigEndian.PutUint64(buf, v)
		if _, err := streams[0].Write(buf); err != nil {
			return err
		}
	}

	elemBegin := ac.OffsetAt(begin - 1)
	elemEnd := ac.OffsetAt(end - 1)
	if elemEnd == elemBegin {
		return nil
	}
	return t.elem.SerializeBinaryBulkMulti(ac.Data, streams[1:], positionIndependent, int(elemBegin), int(elemEnd-elemBegin))
}

func (t *arrayType) DeserializeBinaryBulkMulti(col column.Column, streams []Reader, positionIndependent bool, limit int, hint float64) error {
	ac, err := t.arrayColumn(col)
	if err != nil {
		return err
	}
	if len(streams) < 2 {
		return typerr.Malformedf("%s needs at least 2 streams, got %d", t.Name(), len(streams))
	}
	if limit == 0 {
		return nil
	}
	before := len(ac.Offsets)
	base := ac.OffsetAt(before - 1)

	// Size stream: one big-endian uint64 per row; the stream ending on a
	// row boundary is a short read.
	buf := make([]byte, 8)
	last := base
	for i := 0; i < limit; i++ {
		if _, err := streams[0].Peek(1); err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		if _, err := io.ReadFull(streams[0], buf); err != nil {
			return typerr.FromIO(err, t.Name()+" sizes")
		}
		v := binary.BigEndian.Uint64(buf)
		if positionIndependent {
			last += v
		} else {
			// Absolute offsets, rebased onto whatever the column already
			// holds.
			next := base + v
			if next < last {
				ac.Offsets = ac.Offsets[:before]
				return typerr.Malformedf("%s: offsets are not monotonic", t.Name())
			}
			last = next
		}
		ac.Offsets = append(ac.Offsets, last)
	}
	if len(ac.Offsets) == before {
		return nil
	}

	toRead := last - base
	if toRead > 0 {
		dataBefore := ac.Data.Len()
		if err := t.elem.DeserializeBinaryBulkMulti(ac.Data, streams[1:], positionIndependent, int(toRead), hint); err != nil {
			ac.Offsets = ac.Offsets[:before]
			ac.Data.Truncate(dataBefore)
			return err
		}
	}
	// Drop trailing rows the element stream did not fully cover.
	dataLen := uint64(ac.Data.Len())
	for len(ac.Offsets) > before && ac.Offsets[len(ac.Offsets)-1] > dataLen {
		ac.Offsets = ac.Offsets[:len(ac.Offsets)-1]
	}
	return nil
}

func (t *arrayType) SerializeValueBinary(v value.Value, w io.Writer) error {
	if v.Kind() != value.KindArray {
		return typerr.Malformedf("%s: expected an Array value, got %s", t.Name(), v.Kind())
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(len(v.Array())))
	if _, err := w.Write(buf); err != nil {
		return err
	}
	for _, elem := range v.Array() {
		if err := t.elem.SerializeValueBinary(elem, w); err != nil {
			return err
		}
	}
	return nil
}

func (t *arrayType) DeserializeValueBinary(r Reader) (value.Value, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return value.Null(), typerr.FromIO(err, t.Name()+" size")
	}
	n := binary.BigEndian.Uint64(buf)
	var elems []value.Value
	for i := uint64(0); i < n; i++ {
		elem, err := t.elem.DeserializeValueBinary(r)
		if err != nil {
			return value.Null(), err
		}
		elems = append(elems, elem)
	}
	return value.NewArray(elems), nil
}

func (t *arrayType) SerializeBinary(col column.Column, row int, w io.Writer) error {
	ac, err := t.arrayColumn(col)
	if err != nil {
		return err
	}
	begin, end := ac.OffsetAt(row-1), ac.OffsetAt(row)
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, end-begin)
	if _, err := w.Write(buf); err != nil {
		return err
	}
	for i := begin; i < end; i++ {
		if err := t.elem.SerializeBinary(ac.Data, int(i), w); err != nil {
			return err
		}
	}
	return nil
}

func (t *arrayType) DeserializeBinary(col column.Column, r Reader) error {
	ac, err := t.arrayColumn(col)
	if err != nil {
		return err
	}
	buf := make([]byte, 8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return typerr.FromIO(err, t.Name()+" size")
	}
	n := binary.BigEndian.Uint64(buf)

	restore := ac.Data.Len()
	for i := uint64(0); i < n; i++ {
		if err := t.elem.DeserializeBinary(ac.Data, r); err != nil {
			ac.Data.Truncate(restore)
			return err
		}
	}
	ac.Offsets = append(ac.Offsets, ac.OffsetAt(len(ac.Offsets)-1)+n)
	return nil
}

// serializeBracketed writes "[e1,e2,...]" using the supplied per-element
// serializer.
func (t *arrayType) serializeBracketed(col column.Column, row int, w io.Writer, elem func(column.Column, int, io.Writer) error) error {
	ac, err := t.arrayColumn(col)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte{'['}); err != nil {
		return err
	}
	begin, end := ac.OffsetAt(row-1), ac.OffsetAt(row)
	for i := begin; i < end; i++ {
		if i > begin {
			if _, err := w.Write([]byte{','}); err != nil {
				return err
			}
		}
		if err := elem(ac.Data, int(i), w); err != nil {
			return err
		}
	}
	_, err = w.Write([]byte{']'})
	return err
}

// deserializeBracketed parses "[e1,e2,...]" appending elements to the
// nested column through the supplied per-element deserializer; on any
// failure the column is restored to its pre-call state.
func (t *arrayType) deserializeBracketed(col column.Column, r Reader, elem func(column.Column, Reader) error) error {
	ac, err := t.arrayColumn(col)
	if err != nil {
		return err
	}
	c, err := r.ReadByte()
	if err != nil {
		return typerr.FromIO(err, t.Name())
	}
	if c != '[' {
		return typerr.Malformedf("%s: expected '[', found %q", t.Name(), c)
	}

	restore := ac.Data.Len()
	count := uint64(0)
	for {
		if err := textio.SkipWhitespace(r); err != nil {
			ac.Data.Truncate(restore)
			return err
		}
		c, err := r.ReadByte()
		if err != nil {
			ac.Data.Truncate(restore)
			return typerr.FromIO(err, t.Name())
		}
		if c == ']' {
			break
		}
		if count == 0 {
			if err := r.UnreadByte(); err != nil {
				ac.Data.Truncate(restore)
				return err
			}
		} else if c != ',' {
			ac.Data.Truncate(restore)
			return typerr.Malformedf("%s: expected ',' or ']', found %q", t.Name(), c)
		} else if err := textio.SkipWhitespace(r); err != nil {
			ac.Data.Truncate(restore)
			return err
		}
		if err := elem(ac.Data, r); err != nil {
			ac.Data.Truncate(restore)
			return err
		}
		count++
	}
	ac.Offsets = append(ac.Offsets, ac.OffsetAt(len(ac.Offsets)-1)+count)
	return nil
}

// Text forms use the quoted encoding for elements so that strings inside
// arrays remain unambiguous.

func (t *arrayType) SerializeTextEscaped(col column.Column, row int, w io.Writer) error {
	return t.serializeBracketed(col, row, w, t.elem.SerializeTextQuoted)
}

func (t *arrayType) DeserializeTextEscaped(col column.Column, r Reader) error {
	return t.deserializeBracketed(col, r, t.elem.DeserializeTextQuoted)
}

func (t *arrayType) SerializeTextQuoted(col column.Column, row int, w io.Writer) error {
	return t.serializeBracketed(col, row, w, t.elem.SerializeTextQuoted)
}

func (t *arrayType) DeserializeTextQuoted(col column.Column, r Reader) error {
	return t.deserializeBracketed(col, r, t.elem.DeserializeTextQuoted)
}

// CSV has no native list notation, so the bracket text is carried inside
// one quoted CSV field.
func (t *arrayType) SerializeTextCSV(col column.Column, row int, w io.Writer) error {
	var body bytes.Buffer
	if err := t.SerializeTextQuoted(col, row, &body); err != nil {
		return err
	}
	return textio.WriteCSVString(w, body.String())
}

func (t *arrayType) DeserializeTextCSV(col column.Column, r Reader, delimiter byte) error {
	field, err := textio.ReadCSVField(r, delimiter)
	if err != nil {
		return err
	}
	return t.DeserializeTextQuoted(col, bufio.NewReader(strings.NewReader(field)))
}

func (t *arrayType) SerializeText(col column.Column, row int, w io.Writer) error {
	return t.SerializeTextQuoted(col, row, w)
}

func (t *arrayType) SerializeTextJSON(col column.Column, row int, w io.Writer, forceQuote64 bool) error {
	return t.serializeBracketed(col, row, w, func(inner column.Column, i int, w io.Writer) error {
		return t.elem.SerializeTextJSON(inner, i, w, forceQuote64)
	})
}

func (t *arrayType) DeserializeTextJSON(col column.Column, r Reader) error {
	if err := textio.SkipWhitespace(r); err != nil {
		return err
	}
	return t.deserializeBracketed(col, r, t.elem.DeserializeTextJSON)
}

func (t *arrayType) SerializeTextXML(col column.Column, row int, w io.Writer) error {
	return t.SerializeText(col, row, w)
}
