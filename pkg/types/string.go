package types

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/colbase/colbase/pkg/column"
	"github.com/colbase/colbase/pkg/textio"
	"github.com/colbase/colbase/pkg/typerr"
	"github.com/colbase/colbase/pkg/value"
)

// stringType is the variable-length string descriptor. Binary layout is
// a 4-byte big-endian length followed by the raw bytes; there is no
// fixed per-value footprint.
type stringType struct{}

// NewString returns the String descriptor.
func NewString() DataType {
	return stringType{}
}

func (stringType) Name() string {
	return "String"
}

func (stringType) IsNull() bool {
	return false
}

func (stringType) IsNullable() bool {
	return false
}

func (stringType) IsNumeric() bool {
	return false
}

func (stringType) IsNumericNotNullable() bool {
	return false
}

func (stringType) BehavesAsNumber() bool {
	return false
}

func (t stringType) Clone() DataType {
	return t
}

func (stringType) CreateColumn() column.Column {
	return column.NewString()
}

func (t stringType) CreateConstColumn(size int, v value.Value) (column.Column, error) {
	if size < 0 {
		return nil, typerr.Malformedf("String: negative const column size %d", size)
	}
	if v.Kind() != value.KindString {
		return nil, typerr.Malformedf("String: expected a String value, got %s", v.Kind())
	}
	return column.NewConst(v, size), nil
}

func (stringType) Default() value.Value {
	return value.NewString("")
}

func (t stringType) SizeOfField() (int, error) {
	return 0, typerr.NotImplementedf("SizeOfField is not defined for the variable-length type %s", t.Name())
}

func stringColumn(col column.Column) (*column.String, error) {
	sc, ok := col.(*column.String)
	if !ok {
		return nil, typerr.Malformedf("String: unexpected column type %T", col)
	}
	return sc, nil
}

func (t stringType) SerializeBinaryBulk(col column.Column, w io.Writer, offset, limit int) error {
	return serializeBulkByRow(t, col, w, offset, limit)
}

func (t stringType) DeserializeBinaryBulk(col column.Column, r Reader, limit int, avgValueSizeHint float64) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	// The hint sizes the entry slice only; decoded contents never depend
	// on it.
	if avgValueSizeHint > 0 {
		sc.Reserve(limit)
	}
	return deserializeBulkByValue(t, col, r, limit)
}

func (stringType) StreamDescriptions(dst []string, _ int) []string {
	return append(dst, "")
}

func (t stringType) SerializeBinaryBulkMulti(col column.Column, streams []io.Writer, _ bool, offset, limit int) error {
	return singleStreamSerializeMulti(t, col, streams, offset, limit)
}

func (t stringType) DeserializeBinaryBulkMulti(col column.Column, streams []Reader, _ bool, limit int, hint float64) error {
	return singleStreamDeserializeMulti(t, col, streams, limit, hint)
}

func writeStringBinary(w io.Writer, s string) error {
	lengthBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(lengthBytes, uint32(len(s)))
	if _, err := w.Write(lengthBytes); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readStringBinary(r Reader) (string, error) {
	lengthBytes := make([]byte, 4)
	if _, err := io.ReadFull(r, lengthBytes); err != nil {
		return "", typerr.FromIO(err, "string length")
	}
	length := binary.BigEndian.Uint32(lengthBytes)
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", typerr.FromIO(err, "string body")
	}
	return string(buf), nil
}

func (stringType) SerializeValueBinary(v value.Value, w io.Writer) error {
	if v.Kind() != value.KindString {
		return typerr.Malformedf("String: expected a String value, got %s", v.Kind())
	}
	return writeStringBinary(w, v.Str())
}

func (stringType) DeserializeValueBinary(r Reader) (value.Value, error) {
	s, err := readStringBinary(r)
	if err != nil {
		return value.Null(), err
	}
	return value.NewString(s), nil
}

func (stringType) SerializeBinary(col column.Column, row int, w io.Writer) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	return writeStringBinary(w, sc.Data[row])
}

func (stringType) DeserializeBinary(col column.Column, r Reader) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	s, err := readStringBinary(r)
	if err != nil {
		return err
	}
	sc.Data = append(sc.Data, s)
	return nil
}

func (stringType) SerializeTextEscaped(col column.Column, row int, w io.Writer) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	return textio.WriteEscapedString(w, sc.Data[row])
}

func (stringType) DeserializeTextEscaped(col column.Column, r Reader) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	s, err := textio.ReadEscapedString(r)
	if err != nil {
		return err
	}
	sc.Data = append(sc.Data, s)
	return nil
}

func (stringType) SerializeTextQuoted(col column.Column, row int, w io.Writer) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	return textio.WriteQuotedString(w, sc.Data[row])
}

func (stringType) DeserializeTextQuoted(col column.Column, r Reader) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	s, err := textio.ReadQuotedString(r)
	if err != nil {
		return err
	}
	sc.Data = append(sc.Data, s)
	return nil
}

func (stringType) SerializeTextCSV(col column.Column, row int, w io.Writer) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	return textio.WriteCSVString(w, sc.Data[row])
}

func (stringType) DeserializeTextCSV(col column.Column, r Reader, delimiter byte) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	s, err := textio.ReadCSVField(r, delimiter)
	if err != nil {
		return err
	}
	sc.Data = append(sc.Data, s)
	return nil
}

func (stringType) SerializeText(col column.Column, row int, w io.Writer) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, sc.Data[row])
	return err
}

func (stringType) SerializeTextJSON(col column.Column, row int, w io.Writer, _ bool) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	return textio.WriteJSONString(w, sc.Data[row])
}

func (stringType) DeserializeTextJSON(col column.Column, r Reader) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	if err := textio.SkipWhitespace(r); err != nil {
		return err
	}
	s, err := textio.ReadJSONString(r)
	if err != nil {
		return err
	}
	sc.Data = append(sc.Data, s)
	return nil
}

// Strings may contain markup bytes, so XML output cannot fall back to
// the plain form.
func (stringType) SerializeTextXML(col column.Column, row int, w io.Writer) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	return textio.WriteXMLString(w, sc.Data[row])
}

// fixedStringType is the FixedString(N) descriptor: exactly N bytes per
// value, zero-padded. Every stored entry is kept at length N so the
// binary form is a direct copy.
type fixedStringType struct {
	n int
}

// NewFixedString returns the FixedString(n) descriptor.
func NewFixedString(n int) (DataType, error) {
	if n <= 0 {
		return nil, typerr.Malformedf("FixedString size must be positive, got %d", n)
	}
	return &fixedStringType{n: n}, nil
}

func (t *fixedStringType) Name() string {
	return fmt.Sprintf("FixedString(%d)", t.n)
}

func (t *fixedStringType) IsNull() bool {
	return false
}

func (t *fixedStringType) IsNullable() bool {
	return false
}

func (t *fixedStringType) IsNumeric() bool {
	return false
}

func (t *fixedStringType) IsNumericNotNullable() bool {
	return false
}

func (t *fixedStringType) BehavesAsNumber() bool {
	return false
}

func (t *fixedStringType) Clone() DataType {
	clone := *t
	return &clone
}

func (t *fixedStringType) CreateColumn() column.Column {
	return column.NewString()
}

func (t *fixedStringType) CreateConstColumn(size int, v value.Value) (column.Column, error) {
	if size < 0 {
		return nil, typerr.Malformedf("%s: negative const column size %d", t.Name(), size)
	}
	padded, err := t.pad(v)
	if err != nil {
		return nil, err
	}
	return column.NewConst(padded, size), nil
}

func (t *fixedStringType) Default() value.Value {
	return value.NewString(strings.Repeat("\x00", t.n))
}

func (t *fixedStringType) SizeOfField() (int, error) {
	return t.n, nil
}

// pad zero-pads a string value to exactly n bytes; longer input is
// malformed.
func (t *fixedStringType) pad(v value.Value) (value.Value, error) {
	if v.Kind() != value.KindString {
		return value.Null(), typerr.Malformedf("%s: expected a String value, got %s", t.Name(), v.Kind())
	}
	s := v.Str()
	if len(s) > t.n {
		return value.Null(), typerr.Malformedf("%s: value of %d bytes does not fit", t.Name(), len(s))
	}
	if len(s) < t.n {
		s += strings.Repeat("\x00", t.n-len(s))
	}
	return value.NewString(s), nil
}

func (t *fixedStringType) appendPadded(col column.Column, s string) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	padded, err := t.pad(value.NewString(s))
	if err != nil {
		return err
	}
	sc.Data = append(sc.Data, padded.Str())
	return nil
}

func (t *fixedStringType) SerializeBinaryBulk(col column.Column, w io.Writer, offset, limit int) error {
	return serializeBulkByRow(t, col, w, offset, limit)
}

func (t *fixedStringType) DeserializeBinaryBulk(col column.Column, r Reader, limit int, _ float64) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	sc.Reserve(limit)
	return deserializeBulkByValue(t, col, r, limit)
}

func (t *fixedStringType) StreamDescriptions(dst []string, _ int) []string {
	return append(dst, "")
}

func (t *fixedStringType) SerializeBinaryBulkMulti(col column.Column, streams []io.Writer, _ bool, offset, limit int) error {
	return singleStreamSerializeMulti(t, col, streams, offset, limit)
}

func (t *fixedStringType) DeserializeBinaryBulkMulti(col column.Column, streams []Reader, _ bool, limit int, hint float64) error {
	return singleStreamDeserializeMulti(t, col, streams, limit, hint)
}

func (t *fixedStringType) SerializeValueBinary(v value.Value, w io.Writer) error {
	padded, err := t.pad(v)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, padded.Str())
	return err
}

func (t *fixedStringType) DeserializeValueBinary(r Reader) (value.Value, error) {
	buf := make([]byte, t.n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return value.Null(), typerr.FromIO(err, t.Name())
	}
	return value.NewString(string(buf)), nil
}

func (t *fixedStringType) SerializeBinary(col column.Column, row int, w io.Writer) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	return t.SerializeValueBinary(value.NewString(sc.Data[row]), w)
}

func (t *fixedStringType) DeserializeBinary(col column.Column, r Reader) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	v, err := t.DeserializeValueBinary(r)
	if err != nil {
		return err
	}
	sc.Data = append(sc.Data, v.Str())
	return nil
}

func (t *fixedStringType) SerializeTextEscaped(col column.Column, row int, w io.Writer) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	return textio.WriteEscapedString(w, sc.Data[row])
}

func (t *fixedStringType) DeserializeTextEscaped(col column.Column, r Reader) error {
	s, err := textio.ReadEscapedString(r)
	if err != nil {
		return err
	}
	return t.appendPadded(col, s)
}

func (t *fixedStringType) SerializeTextQuoted(col column.Column, row int, w io.Writer) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	return textio.WriteQuotedString(w, sc.Data[row])
}

func (t *fixedStringType) DeserializeTextQuoted(col column.Column, r Reader) error {
	s, err := textio.ReadQuotedString(r)
	if err != nil {
		return err
	}
	return t.appendPadded(col, s)
}

func (t *fixedStringType) SerializeTextCSV(col column.Column, row int, w io.Writer) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	return textio.WriteCSVString(w, sc.Data[row])
}

func (t *fixedStringType) DeserializeTextCSV(col column.Column, r Reader, delimiter byte) error {
	s, err := textio.ReadCSVField(r, delimiter)
	if err != nil {
		return err
	}
	return t.appendPadded(col, s)
}

func (t *fixedStringType) SerializeText(col column.Column, row int, w io.Writer) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, sc.Data[row])
	return err
}

func (t *fixedStringType) SerializeTextJSON(col column.Column, row int, w io.Writer, _ bool) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	return textio.WriteJSONString(w, sc.Data[row])
}

func (t *fixedStringType) DeserializeTextJSON(col column.Column, r Reader) error {
	if err := textio.SkipWhitespace(r); err != nil {
		return err
	}
	s, err := textio.ReadJSONString(r)
	if err != nil {
		return err
	}
	return t.appendPadded(col, s)
}

func (t *fixedStringType) SerializeTextXML(col column.Column, row int, w io.Writer) error {
	sc, err := stringColumn(col)
	if err != nil {
		return err
	}
	return textio.WriteXMLString(w, sc.Data[row])
}
