package types

import (
	"bytes"
	"testing"

	"github.com/colbase/colbase/pkg/typerr"
	"github.com/colbase/colbase/pkg/value"
)

func TestStringClassification(t *testing.T) {
	dt := NewString()
	if dt.Name() != "String" {
		t.Errorf("Expected String, got %s", dt.Name())
	}
	if dt.IsNumeric() || dt.BehavesAsNumber() || dt.IsNullable() {
		t.Error("String must not be numeric or nullable")
	}
	if _, err := dt.SizeOfField(); !typerr.IsNotImplemented(err) {
		t.Errorf("Expected NotImplemented for a variable-length type, got %v", err)
	}
}

func TestStringBinaryLayout(t *testing.T) {
	dt := NewString()
	var buf bytes.Buffer
	if err := dt.SerializeValueBinary(value.NewString("abc"), &buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []byte{0, 0, 0, 3, 'a', 'b', 'c'}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("Expected % x, got % x", want, buf.Bytes())
	}
}

func TestStringBulkRoundTrip(t *testing.T) {
	dt := NewString()
	col := dt.CreateColumn()
	mustAppend(t, col, value.NewString(""), value.NewString("hello"), value.NewString("wor\tld"))

	var buf bytes.Buffer
	if err := dt.SerializeBinaryBulk(col, &buf, 0, 0); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	decoded := dt.CreateColumn()
	if err := dt.DeserializeBinaryBulk(decoded, byteReader(buf.Bytes()), 100, 16); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	columnsEqual(t, col, decoded)
}

func TestStringBulkTruncatedBody(t *testing.T) {
	dt := NewString()
	decoded := dt.CreateColumn()
	// Length says 5 bytes but only 2 follow.
	err := dt.DeserializeBinaryBulk(decoded, byteReader([]byte{0, 0, 0, 5, 'a', 'b'}), 10, 0)
	if !typerr.IsExhausted(err) {
		t.Errorf("Expected StreamExhausted, got %v", err)
	}
}

func TestStringTextFormats(t *testing.T) {
	dt := NewString()
	col := dt.CreateColumn()
	mustAppend(t, col, value.NewString("a\tb 'c' \"d\""))

	var escaped bytes.Buffer
	if err := dt.SerializeTextEscaped(col, 0, &escaped); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if escaped.String() != `a\tb 'c' "d"` {
		t.Errorf("Escaped: got %q", escaped.String())
	}

	var quoted bytes.Buffer
	if err := dt.SerializeTextQuoted(col, 0, &quoted); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if quoted.String() != `'a\tb \'c\' "d"'` {
		t.Errorf("Quoted: got %q", quoted.String())
	}

	var csv bytes.Buffer
	if err := dt.SerializeTextCSV(col, 0, &csv); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if csv.String() != "\"a\tb 'c' \"\"d\"\"\"" {
		t.Errorf("CSV: got %q", csv.String())
	}

	var xml bytes.Buffer
	mustAppend(t, col, value.NewString("<b>&</b>"))
	if err := dt.SerializeTextXML(col, 1, &xml); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if xml.String() != "&lt;b&gt;&amp;&lt;/b&gt;" {
		t.Errorf("XML: got %q", xml.String())
	}
}

func TestStringTextRoundTrips(t *testing.T) {
	dt := NewString()
	col := dt.CreateColumn()
	mustAppend(t, col, value.NewString("tricky\t'value'\n\"here\""))

	// Escaped
	var escaped bytes.Buffer
	if err := dt.SerializeTextEscaped(col, 0, &escaped); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	decoded := dt.CreateColumn()
	if err := dt.DeserializeTextEscaped(decoded, reader(escaped.String())); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	columnsEqual(t, col, decoded)

	// Quoted
	var quoted bytes.Buffer
	if err := dt.SerializeTextQuoted(col, 0, &quoted); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	decoded = dt.CreateColumn()
	if err := dt.DeserializeTextQuoted(decoded, reader(quoted.String())); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	columnsEqual(t, col, decoded)

	// CSV
	var csv bytes.Buffer
	if err := dt.SerializeTextCSV(col, 0, &csv); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	decoded = dt.CreateColumn()
	if err := dt.DeserializeTextCSV(decoded, reader(csv.String()), ','); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	columnsEqual(t, col, decoded)

	// JSON
	var js bytes.Buffer
	if err := dt.SerializeTextJSON(col, 0, &js, false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	decoded = dt.CreateColumn()
	if err := dt.DeserializeTextJSON(decoded, reader(js.String())); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	columnsEqual(t, col, decoded)
}

func TestFixedStringName(t *testing.T) {
	dt, err := NewFixedString(16)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if dt.Name() != "FixedString(16)" {
		t.Errorf("Got %s", dt.Name())
	}
	if size, err := dt.SizeOfField(); err != nil || size != 16 {
		t.Errorf("Expected field size 16, got %d, %v", size, err)
	}
}

func TestFixedStringRejectsBadSize(t *testing.T) {
	if _, err := NewFixedString(0); !typerr.IsMalformed(err) {
		t.Errorf("Expected MalformedInput, got %v", err)
	}
	if _, err := NewFixedString(-3); !typerr.IsMalformed(err) {
		t.Errorf("Expected MalformedInput, got %v", err)
	}
}

func TestFixedStringPadsOnAppend(t *testing.T) {
	dt, _ := NewFixedString(4)
	col := dt.CreateColumn()
	if err := dt.DeserializeTextEscaped(col, reader("ab")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	v, err := col.ValueAt(0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v.Str() != "ab\x00\x00" {
		t.Errorf("Expected zero padding, got %q", v.Str())
	}
}

func TestFixedStringRejectsOversize(t *testing.T) {
	dt, _ := NewFixedString(2)
	col := dt.CreateColumn()
	if err := dt.DeserializeTextEscaped(col, reader("abc")); !typerr.IsMalformed(err) {
		t.Errorf("Expected MalformedInput, got %v", err)
	}
	if col.Len() != 0 {
		t.Errorf("Failed appends must not grow the column, got %d", col.Len())
	}
}

func TestFixedStringBinaryIsExactlyN(t *testing.T) {
	dt, _ := NewFixedString(4)
	var buf bytes.Buffer
	if err := dt.SerializeValueBinary(value.NewString("ab"), &buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{'a', 'b', 0, 0}) {
		t.Errorf("Got % x", buf.Bytes())
	}

	got, err := dt.DeserializeValueBinary(byteReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Str() != "ab\x00\x00" {
		t.Errorf("Got %q", got.Str())
	}
}

func TestFixedStringDefault(t *testing.T) {
	dt, _ := NewFixedString(3)
	if v := dt.Default(); v.Str() != "\x00\x00\x00" {
		t.Errorf("Expected 3 zero bytes, got %q", v.Str())
	}
}
