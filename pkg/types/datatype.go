// Package types defines the descriptor contract every column type
// implements, plus the catalog of concrete variants: the numeric family,
// Date/DateTime, String, FixedString, and the Nullable and Array
// wrappers. A descriptor is immutable after construction and may be
// shared by any number of goroutines without synchronization.
package types

import (
	"fmt"
	"io"

	"github.com/colbase/colbase/pkg/column"
	"github.com/colbase/colbase/pkg/textio"
	"github.com/colbase/colbase/pkg/value"
)

// Reader is the byte source consumed by all deserialization operations.
// *bufio.Reader satisfies it.
type Reader = textio.Reader

// DataType describes one concrete column type: its name, classification,
// column and value factories, and the full serialization matrix. All
// operations are side-effect free with respect to the descriptor itself;
// the column arguments are the only thing that may be mutated.
type DataType interface {
	// Name returns the canonical type name, unique per configuration
	// (a parametrized type's name encodes its parameters).
	Name() string

	// IsNull reports whether this is the null type.
	IsNull() bool

	// IsNullable reports whether this type admits nulls.
	IsNullable() bool

	// IsNumeric reports whether this type is numeric. Date and DateTime
	// count as numeric.
	IsNumeric() bool

	// IsNumericNotNullable reports whether this type is numeric and not
	// nullable.
	IsNumericNotNullable() bool

	// BehavesAsNumber reports whether arithmetic and numeric casts apply.
	// False for Date and DateTime even though they are numeric.
	BehavesAsNumber() bool

	// Clone returns an independent descriptor of the same logical type.
	Clone() DataType

	// CreateColumn creates an empty column of this type.
	CreateColumn() column.Column

	// CreateConstColumn creates a column of size entries all equal to v.
	CreateConstColumn(size int, v value.Value) (column.Column, error)

	// Default returns the type's zero value.
	Default() value.Value

	// SizeOfField returns the approximate per-value byte footprint, or a
	// NotImplemented error for types with no fixed-size notion.
	SizeOfField() (int, error)

	// SerializeBinaryBulk writes the binary encoding of entries
	// [offset, offset+limit) as a raw concatenation of per-value
	// encodings, with no framing. limit 0 means to the end of the
	// column; offset must not exceed the column's length; offset+limit
	// past the end serializes the available tail.
	SerializeBinaryBulk(col column.Column, w io.Writer, offset, limit int) error

	// DeserializeBinaryBulk reads up to limit values and appends them to
	// col. A stream that ends on a value boundary is a short read, not
	// an error. Values appended before a failure are kept: callers that
	// need atomicity must buffer into a scratch column and swap.
	// avgValueSizeHint, when nonzero, only guides preallocation for
	// variable-length types and never affects the decoded contents.
	DeserializeBinaryBulk(col column.Column, r Reader, limit int, avgValueSizeHint float64) error

	// StreamDescriptions appends one name suffix per sub-stream this
	// type needs at the given nesting level and returns the extended
	// slice. A scalar type appends a single empty suffix; wrappers
	// append their own suffix followed by their inner type's, so a
	// caller can derive physical stream names by concatenating a base
	// name with each suffix. The result is deterministic.
	StreamDescriptions(dst []string, level int) []string

	// SerializeBinaryBulkMulti is the multi-stream form of bulk
	// serialization. Single-stream types use streams[0]; composite
	// types split their encoding across the streams laid out by
	// StreamDescriptions. positionIndependent instructs variable-length
	// encodings to avoid absolute offsets and is threaded unchanged
	// through recursive calls.
	SerializeBinaryBulkMulti(col column.Column, streams []io.Writer, positionIndependent bool, offset, limit int) error

	// DeserializeBinaryBulkMulti mirrors SerializeBinaryBulkMulti,
	// appending up to limit values to col.
	DeserializeBinaryBulkMulti(col column.Column, streams []Reader, positionIndependent bool, limit int, avgValueSizeHint float64) error

	// SerializeValueBinary writes the exact binary form of a standalone
	// scalar, for paths where no column exists.
	SerializeValueBinary(v value.Value, w io.Writer) error

	// DeserializeValueBinary reads one standalone scalar.
	DeserializeValueBinary(r Reader) (value.Value, error)

	// SerializeBinary writes the binary form of one row of a
	// non-constant column. For composite types this per-value layout is
	// self-contained and may differ from the bulk multi-stream layout.
	SerializeBinary(col column.Column, row int, w io.Writer) error

	// DeserializeBinary reads one value and appends it to col. On
	// failure the column is left exactly as it was before the call.
	DeserializeBinary(col column.Column, r Reader) error

	// Text serialization with escaping but without quoting.
	SerializeTextEscaped(col column.Column, row int, w io.Writer) error
	DeserializeTextEscaped(col column.Column, r Reader) error

	// Text serialization as a literal that may be inserted into a query.
	SerializeTextQuoted(col column.Column, row int, w io.Writer) error
	DeserializeTextQuoted(col column.Column, r Reader) error

	// Text serialization for the CSV format. The delimiter passed to the
	// deserializer marks the field boundary and is not consumed.
	SerializeTextCSV(col column.Column, row int, w io.Writer) error
	DeserializeTextCSV(col column.Column, r Reader, delimiter byte) error

	// SerializeText writes the plain human-readable form, with no
	// escaping or quoting.
	SerializeText(col column.Column, row int, w io.Writer) error

	// Text serialization for the JSON format. forceQuote64 wraps 64-bit
	// integers in quotes to survive JSON numeric precision limits.
	SerializeTextJSON(col column.Column, row int, w io.Writer, forceQuote64 bool) error
	DeserializeTextJSON(col column.Column, r Reader) error

	// SerializeTextXML writes the value for embedding in XML character
	// data. Types whose plain form is XML-safe reuse SerializeText.
	SerializeTextXML(col column.Column, row int, w io.Writer) error
}

// bulkRange clamps [offset, offset+limit) to the n entries of a column.
// limit 0 means to the end; offset past the end is caller misuse.
func bulkRange(n, offset, limit int) (int, int, error) {
	if offset < 0 || offset > n {
		return 0, 0, fmt.Errorf("offset %d out of range for column of %d entries", offset, n)
	}
	end := n
	if limit != 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end, nil
}

// serializeBulkByRow implements single-stream bulk serialization as the
// concatenation of per-value encodings, which is the wire contract.
func serializeBulkByRow(t DataType, col column.Column, w io.Writer, offset, limit int) error {
	begin, end, err := bulkRange(col.Len(), offset, limit)
	if err != nil {
		return err
	}
	for row := begin; row < end; row++ {
		if err := t.SerializeBinary(col, row, w); err != nil {
			return err
		}
	}
	return nil
}

// deserializeBulkByValue appends up to limit values read back-to-back
// from r. A stream ending on a value boundary stops the loop cleanly;
// an error mid-value propagates, keeping whatever was appended so far.
func deserializeBulkByValue(t DataType, col column.Column, r Reader, limit int) error {
	for i := 0; i < limit; i++ {
		if _, err := r.Peek(1); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if err := t.DeserializeBinary(col, r); err != nil {
			return err
		}
	}
	return nil
}

// singleStreamSerializeMulti is the multi-stream default for types that
// occupy exactly one stream.
func singleStreamSerializeMulti(t DataType, col column.Column, streams []io.Writer, offset, limit int) error {
	if len(streams) == 0 {
		return fmt.Errorf("%s: no streams supplied", t.Name())
	}
	return t.SerializeBinaryBulk(col, streams[0], offset, limit)
}

// singleStreamDeserializeMulti mirrors singleStreamSerializeMulti.
func singleStreamDeserializeMulti(t DataType, col column.Column, streams []Reader, limit int, hint float64) error {
	if len(streams) == 0 {
		return fmt.Errorf("%s: no streams supplied", t.Name())
	}
	return t.DeserializeBinaryBulk(col, streams[0], limit, hint)
}
