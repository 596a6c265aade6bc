package types

import (
	"bytes"
	"io"
	"testing"

	"github.com/colbase/colbase/pkg/column"
	"github.com/colbase/colbase/pkg/typerr"
	"github.com/colbase/colbase/pkg/value"
)

func arrayOf(elems ...value.Value) value.Value {
	return value.NewArray(elems)
}

func TestArrayClassification(t *testing.T) {
	dt := NewArray(NewInt32())
	if dt.Name() != "Array(Int32)" {
		t.Errorf("Got %s", dt.Name())
	}
	if dt.IsNumeric() || dt.IsNullable() || dt.BehavesAsNumber() {
		t.Error("Array must not be numeric or nullable")
	}
	if _, err := dt.SizeOfField(); !typerr.IsNotImplemented(err) {
		t.Errorf("Expected NotImplemented, got %v", err)
	}
	if !dt.Default().Equals(value.NewArray(nil)) {
		t.Errorf("Expected the empty array default, got %v", dt.Default())
	}
}

func TestArrayStreamDescriptions(t *testing.T) {
	tests := []struct {
		dt   DataType
		want []string
	}{
		{NewArray(NewInt32()), []string{".size0", ""}},
		{NewArray(NewArray(NewString())), []string{".size0", ".size1", ""}},
		{NewArray(mustNullable(t, NewInt32())), []string{".size0", ".null", ""}},
	}
	for _, tt := range tests {
		got := tt.dt.StreamDescriptions(nil, 0)
		if len(got) != len(tt.want) {
			t.Fatalf("%s: got %q, want %q", tt.dt.Name(), got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: stream %d is %q, want %q", tt.dt.Name(), i, got[i], tt.want[i])
			}
		}
	}
}

func TestNullableArrayStreamCount(t *testing.T) {
	dt := mustNullable(t, NewArray(NewInt32()))
	streams := dt.StreamDescriptions(nil, 0)
	if len(streams) != 3 {
		t.Fatalf("Expected 3 streams, got %q", streams)
	}
	if streams[0] != ".null" || streams[1] != ".size0" || streams[2] != "" {
		t.Errorf("Got %q", streams)
	}
}

func TestArrayValueBinaryRoundTrip(t *testing.T) {
	dt := NewArray(NewString())
	v := arrayOf(value.NewString("a"), value.NewString("bc"))

	var buf bytes.Buffer
	if err := dt.SerializeValueBinary(v, &buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got, err := dt.DeserializeValueBinary(byteReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !got.Equals(v) {
		t.Errorf("Expected %v, got %v", v, got)
	}
}

func TestArrayRowBinaryRoundTrip(t *testing.T) {
	dt := NewArray(NewInt32())
	col := dt.CreateColumn()
	mustAppend(t, col,
		arrayOf(value.NewInt64(1), value.NewInt64(2)),
		arrayOf(),
		arrayOf(value.NewInt64(3)),
	)

	var buf bytes.Buffer
	if err := dt.SerializeBinaryBulk(col, &buf, 0, 0); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	decoded := dt.CreateColumn()
	if err := dt.DeserializeBinaryBulk(decoded, byteReader(buf.Bytes()), 100, 0); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	columnsEqual(t, col, decoded)
}

func TestArrayRowDeserializeAtomicOnFailure(t *testing.T) {
	dt := NewArray(NewInt32())
	col := dt.CreateColumn()
	mustAppend(t, col, arrayOf(value.NewInt64(9)))

	// Count says two elements, only one and a half follow.
	stream := []byte{
		0, 0, 0, 0, 0, 0, 0, 2, // count
		0, 0, 0, 1, // first element
		0, 0, // cut short
	}
	err := dt.DeserializeBinary(col, byteReader(stream))
	if !typerr.IsExhausted(err) {
		t.Fatalf("Expected StreamExhausted, got %v", err)
	}
	if col.Len() != 1 {
		t.Errorf("Expected the column unchanged, got %d rows", col.Len())
	}
	ac := col.(*column.Array)
	if ac.Data.Len() != 1 {
		t.Errorf("Expected the partial elements rolled back, inner has %d", ac.Data.Len())
	}
}

func TestArrayMultiStreamRoundTrip(t *testing.T) {
	dt := NewArray(NewInt32())
	col := dt.CreateColumn()
	mustAppend(t, col,
		arrayOf(value.NewInt64(1), value.NewInt64(2)),
		arrayOf(),
		arrayOf(value.NewInt64(3), value.NewInt64(4), value.NewInt64(5)),
	)

	for _, positionIndependent := range []bool{true, false} {
		var sizes, elems bytes.Buffer
		err := dt.SerializeBinaryBulkMulti(col, []io.Writer{&sizes, &elems}, positionIndependent, 0, 0)
		if err != nil {
			t.Fatalf("positionIndependent=%v: %v", positionIndependent, err)
		}
		if len(sizes.Bytes()) != 24 {
			t.Errorf("Expected 3 size entries, got %d bytes", len(sizes.Bytes()))
		}

		decoded := dt.CreateColumn()
		err = dt.DeserializeBinaryBulkMulti(decoded, []Reader{byteReader(sizes.Bytes()), byteReader(elems.Bytes())}, positionIndependent, 100, 0)
		if err != nil {
			t.Fatalf("positionIndependent=%v: %v", positionIndependent, err)
		}
		columnsEqual(t, col, decoded)
	}
}

func TestArrayMultiStreamAppendsToExistingColumn(t *testing.T) {
	dt := NewArray(NewInt32())
	col := dt.CreateColumn()
	mustAppend(t, col,
		arrayOf(value.NewInt64(1), value.NewInt64(2)),
		arrayOf(value.NewInt64(3)),
	)

	for _, positionIndependent := range []bool{true, false} {
		var sizes, elems bytes.Buffer
		if err := dt.SerializeBinaryBulkMulti(col, []io.Writer{&sizes, &elems}, positionIndependent, 0, 0); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		// Decode the same streams twice into one column: offsets from the
		// second pass must be rebased onto the existing contents.
		decoded := dt.CreateColumn()
		for pass := 0; pass < 2; pass++ {
			err := dt.DeserializeBinaryBulkMulti(decoded, []Reader{byteReader(sizes.Bytes()), byteReader(elems.Bytes())}, positionIndependent, 100, 0)
			if err != nil {
				t.Fatalf("pass %d: %v", pass, err)
			}
		}

		if decoded.Len() != 4 {
			t.Fatalf("Expected 4 rows, got %d", decoded.Len())
		}
		want := []value.Value{
			arrayOf(value.NewInt64(1), value.NewInt64(2)),
			arrayOf(value.NewInt64(3)),
			arrayOf(value.NewInt64(1), value.NewInt64(2)),
			arrayOf(value.NewInt64(3)),
		}
		for i, w := range want {
			got, err := decoded.ValueAt(i)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !got.Equals(w) {
				t.Errorf("positionIndependent=%v row %d: expected %v, got %v", positionIndependent, i, w, got)
			}
		}
	}
}

func TestArrayMultiStreamOffsetLimit(t *testing.T) {
	dt := NewArray(NewInt32())
	col := dt.CreateColumn()
	mustAppend(t, col,
		arrayOf(value.NewInt64(1)),
		arrayOf(value.NewInt64(2), value.NewInt64(3)),
		arrayOf(value.NewInt64(4)),
	)

	// Serialize only the middle row.
	var sizes, elems bytes.Buffer
	if err := dt.SerializeBinaryBulkMulti(col, []io.Writer{&sizes, &elems}, true, 1, 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	decoded := dt.CreateColumn()
	if err := dt.DeserializeBinaryBulkMulti(decoded, []Reader{byteReader(sizes.Bytes()), byteReader(elems.Bytes())}, true, 100, 0); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if decoded.Len() != 1 {
		t.Fatalf("Expected 1 row, got %d", decoded.Len())
	}
	got, _ := decoded.ValueAt(0)
	if !got.Equals(arrayOf(value.NewInt64(2), value.NewInt64(3))) {
		t.Errorf("Got %v", got)
	}
}

func TestArrayMultiStreamDropsIncompleteTrailingRows(t *testing.T) {
	dt := NewArray(NewInt32())
	col := dt.CreateColumn()
	mustAppend(t, col,
		arrayOf(value.NewInt64(1)),
		arrayOf(value.NewInt64(2), value.NewInt64(3)),
	)

	var sizes, elems bytes.Buffer
	if err := dt.SerializeBinaryBulkMulti(col, []io.Writer{&sizes, &elems}, true, 0, 0); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Drop the last element from the element stream: row 1 can no longer
	// be completed and must not surface.
	truncated := elems.Bytes()[:len(elems.Bytes())-4]
	decoded := dt.CreateColumn()
	_ = dt.DeserializeBinaryBulkMulti(decoded, []Reader{byteReader(sizes.Bytes()), byteReader(truncated)}, true, 100, 0)

	if decoded.Len() != 1 {
		t.Fatalf("Expected only the complete row, got %d", decoded.Len())
	}
	got, _ := decoded.ValueAt(0)
	if !got.Equals(arrayOf(value.NewInt64(1))) {
		t.Errorf("Got %v", got)
	}
}

func TestArrayNestedMultiStreamRoundTrip(t *testing.T) {
	dt := NewArray(NewArray(NewInt32()))
	col := dt.CreateColumn()
	mustAppend(t, col,
		arrayOf(arrayOf(value.NewInt64(1)), arrayOf(value.NewInt64(2), value.NewInt64(3))),
		arrayOf(),
		arrayOf(arrayOf()),
	)

	var outer, inner, elems bytes.Buffer
	err := dt.SerializeBinaryBulkMulti(col, []io.Writer{&outer, &inner, &elems}, true, 0, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	decoded := dt.CreateColumn()
	err = dt.DeserializeBinaryBulkMulti(decoded, []Reader{byteReader(outer.Bytes()), byteReader(inner.Bytes()), byteReader(elems.Bytes())}, true, 100, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	columnsEqual(t, col, decoded)
}

func TestArrayTextFormats(t *testing.T) {
	dt := NewArray(NewString())
	col := dt.CreateColumn()
	mustAppend(t, col, arrayOf(value.NewString("a"), value.NewString("b'c")))

	var buf bytes.Buffer
	if err := dt.SerializeTextEscaped(col, 0, &buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.String() != `['a','b\'c']` {
		t.Errorf("Escaped: got %q", buf.String())
	}

	buf.Reset()
	if err := dt.SerializeTextCSV(col, 0, &buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.String() != `"['a','b\'c']"` {
		t.Errorf("CSV: got %q", buf.String())
	}

	buf.Reset()
	if err := dt.SerializeTextJSON(col, 0, &buf, false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.String() != `["a","b'c"]` {
		t.Errorf("JSON: got %q", buf.String())
	}
}

func TestArrayTextRoundTrips(t *testing.T) {
	dt := NewArray(NewInt32())
	col := dt.CreateColumn()
	mustAppend(t, col,
		arrayOf(value.NewInt64(1), value.NewInt64(-2)),
		arrayOf(),
	)

	for row := 0; row < col.Len(); row++ {
		var quoted bytes.Buffer
		if err := dt.SerializeTextQuoted(col, row, &quoted); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		decoded := dt.CreateColumn()
		if err := dt.DeserializeTextQuoted(decoded, reader(quoted.String())); err != nil {
			t.Fatalf("Row %d (%q): %v", row, quoted.String(), err)
		}
		want, _ := col.ValueAt(row)
		got, _ := decoded.ValueAt(0)
		if !got.Equals(want) {
			t.Errorf("Row %d: expected %v, got %v", row, want, got)
		}
	}

	// CSV carries the bracket form inside one quoted field.
	var csv bytes.Buffer
	if err := dt.SerializeTextCSV(col, 0, &csv); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	decoded := dt.CreateColumn()
	r := reader(csv.String() + ",next")
	if err := dt.DeserializeTextCSV(decoded, r, ','); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want, _ := col.ValueAt(0)
	got, _ := decoded.ValueAt(0)
	if !got.Equals(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if c, _ := r.ReadByte(); c != ',' {
		t.Errorf("Expected the delimiter unconsumed, got %q", c)
	}

	// JSON with whitespace between tokens.
	decoded = dt.CreateColumn()
	if err := dt.DeserializeTextJSON(decoded, reader(" [ 1 , -2 ] ")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got, _ = decoded.ValueAt(0)
	if !got.Equals(arrayOf(value.NewInt64(1), value.NewInt64(-2))) {
		t.Errorf("Got %v", got)
	}
}

func TestArrayTextDeserializeRollsBackOnFailure(t *testing.T) {
	dt := NewArray(NewInt32())
	col := dt.CreateColumn()
	mustAppend(t, col, arrayOf(value.NewInt64(7)))

	err := dt.DeserializeTextQuoted(col, reader("[1,boom]"))
	if err == nil {
		t.Fatal("Expected an error")
	}
	if col.Len() != 1 {
		t.Errorf("Expected the column unchanged, got %d rows", col.Len())
	}
	ac := col.(*column.Array)
	if ac.Data.Len() != 1 {
		t.Errorf("Expected the partial elements rolled back, inner has %d", ac.Data.Len())
	}
}

func TestNullableArrayMultiStreamRoundTrip(t *testing.T) {
	dt := mustNullable(t, NewArray(NewInt32()))
	col := dt.CreateColumn()
	mustAppend(t, col,
		arrayOf(value.NewInt64(1), value.NewInt64(2)),
		value.Null(),
		arrayOf(value.NewInt64(3)),
	)

	var nulls, sizes, elems bytes.Buffer
	err := dt.SerializeBinaryBulkMulti(col, []io.Writer{&nulls, &sizes, &elems}, true, 0, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	decoded := dt.CreateColumn()
	err = dt.DeserializeBinaryBulkMulti(decoded, []Reader{byteReader(nulls.Bytes()), byteReader(sizes.Bytes()), byteReader(elems.Bytes())}, true, 100, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	columnsEqual(t, col, decoded)
}
