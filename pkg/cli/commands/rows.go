package commands

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/colbase/colbase/pkg/column"
	"github.com/colbase/colbase/pkg/textio"
	"github.com/colbase/colbase/pkg/typerr"
	"github.com/colbase/colbase/pkg/types"
)

// format identifies a row-oriented text encoding.
type format string

const (
	formatEscaped format = "escaped"
	formatCSV     format = "csv"
	formatJSON    format = "json"
	formatPretty  format = "pretty"
)

// parseFormat validates a --from/--to value. Pretty is output-only.
func parseFormat(s string, output bool) (format, error) {
	switch f := format(strings.ToLower(s)); f {
	case formatEscaped, formatCSV, formatJSON:
		return f, nil
	case formatPretty:
		if output {
			return f, nil
		}
		return "", fmt.Errorf("pretty is an output-only format")
	default:
		return "", fmt.Errorf("unknown format %q (want escaped, csv or json)", s)
	}
}

// parseSchema resolves a comma-separated list of type names, splitting only
// at top-level commas so that parameterized names stay intact.
func parseSchema(spec string) ([]types.DataType, error) {
	var names []string
	depth, start := 0, 0
	for i := 0; i < len(spec); i++ {
		switch spec[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				names = append(names, spec[start:i])
				start = i + 1
			}
		}
	}
	names = append(names, spec[start:])

	dts := make([]types.DataType, 0, len(names))
	for _, name := range names {
		dt, err := types.CreateDataType(name)
		if err != nil {
			return nil, err
		}
		dts = append(dts, dt)
	}
	return dts, nil
}

// newColumns creates one empty column per descriptor.
func newColumns(dts []types.DataType) []column.Column {
	cols := make([]column.Column, len(dts))
	for i, dt := range dts {
		cols[i] = dt.CreateColumn()
	}
	return cols
}

// consumeNewline eats an optional \r\n or \n. EOF is fine after the last
// row.
func consumeNewline(r types.Reader) error {
	c, err := r.ReadByte()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	if c == '\r' {
		c, err = r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
	if c != '\n' {
		return typerr.Malformedf("expected end of row, found %q", c)
	}
	return nil
}

// readRows decodes all rows of the input into cols. Rows decoded before a
// failure are kept; the partially decoded row is rolled back.
func readRows(r types.Reader, f format, delimiter byte, dts []types.DataType, cols []column.Column) (int, error) {
	rows := 0
	for {
		if _, err := r.Peek(1); err == io.EOF {
			return rows, nil
		} else if err != nil {
			return rows, err
		}
		if err := readRow(r, f, delimiter, dts, cols); err != nil {
			for _, col := range cols {
				col.Truncate(rows)
			}
			return rows, fmt.Errorf("row %d: %w", rows+1, err)
		}
		rows++
	}
}

func readRow(r types.Reader, f format, delimiter byte, dts []types.DataType, cols []column.Column) error {
	switch f {
	case formatEscaped:
		for i, dt := range dts {
			if err := dt.DeserializeTextEscaped(cols[i], r); err != nil {
				return fmt.Errorf("column %d (%s): %w", i+1, dt.Name(), err)
			}
			if i < len(dts)-1 {
				c, err := r.ReadByte()
				if err != nil {
					return typerr.FromIO(err, "field separator")
				}
				if c != '\t' {
					return typerr.Malformedf("expected tab after column %d, found %q", i+1, c)
				}
			}
		}
		return consumeNewline(r)

	case formatCSV:
		for i, dt := range dts {
			if err := dt.DeserializeTextCSV(cols[i], r, delimiter); err != nil {
				return fmt.Errorf("column %d (%s): %w", i+1, dt.Name(), err)
			}
			if i < len(dts)-1 {
				c, err := r.ReadByte()
				if err != nil {
					return typerr.FromIO(err, "field separator")
				}
				if c != delimiter {
					return typerr.Malformedf("expected %q after column %d, found %q", delimiter, i+1, c)
				}
			}
		}
		return consumeNewline(r)

	case formatJSON:
		// One JSON array per line: [v1,v2,...]
		if err := textio.SkipWhitespace(r); err != nil {
			return err
		}
		c, err := r.ReadByte()
		if err != nil {
			return typerr.FromIO(err, "row")
		}
		if c != '[' {
			return typerr.Malformedf("expected '[', found %q", c)
		}
		for i, dt := range dts {
			if i > 0 {
				if err := textio.SkipWhitespace(r); err != nil {
					return err
				}
				c, err := r.ReadByte()
				if err != nil {
					return typerr.FromIO(err, "field separator")
				}
				if c != ',' {
					return typerr.Malformedf("expected ',' after column %d, found %q", i, c)
				}
			}
			if err := dt.DeserializeTextJSON(cols[i], r); err != nil {
				return fmt.Errorf("column %d (%s): %w", i+1, dt.Name(), err)
			}
		}
		if err := textio.SkipWhitespace(r); err != nil {
			return err
		}
		c, err = r.ReadByte()
		if err != nil {
			return typerr.FromIO(err, "row")
		}
		if c != ']' {
			return typerr.Malformedf("expected ']', found %q", c)
		}
		return consumeNewline(r)

	default:
		return fmt.Errorf("format %q cannot be read", f)
	}
}

// writeRows encodes every row of cols to w in the given format.
func writeRows(w io.Writer, f format, delimiter byte, quote64 bool, dts []types.DataType, cols []column.Column) error {
	rows := rowCount(cols)
	for row := 0; row < rows; row++ {
		for i, dt := range dts {
			if i > 0 {
				sep := byte('\t')
				switch f {
				case formatCSV:
					sep = delimiter
				case formatJSON:
					sep = ','
				}
				if _, err := w.Write([]byte{sep}); err != nil {
					return err
				}
			} else if f == formatJSON {
				if _, err := w.Write([]byte{'['}); err != nil {
					return err
				}
			}

			var err error
			switch f {
			case formatEscaped:
				err = dt.SerializeTextEscaped(cols[i], row, w)
			case formatCSV:
				err = dt.SerializeTextCSV(cols[i], row, w)
			case formatJSON:
				err = dt.SerializeTextJSON(cols[i], row, w, quote64)
			default:
				err = fmt.Errorf("format %q cannot be written row-wise", f)
			}
			if err != nil {
				return fmt.Errorf("row %d, column %d (%s): %w", row+1, i+1, dt.Name(), err)
			}
		}
		tail := []byte{'\n'}
		if f == formatJSON {
			tail = []byte{']', '\n'}
		}
		if _, err := w.Write(tail); err != nil {
			return err
		}
	}
	return nil
}

// rowCount returns the common row count, or the minimum when the columns
// disagree.
func rowCount(cols []column.Column) int {
	if len(cols) == 0 {
		return 0
	}
	n := cols[0].Len()
	for _, col := range cols[1:] {
		if col.Len() < n {
			n = col.Len()
		}
	}
	return n
}

// renderTable prints the columns as a styled table, one header per type
// name, cells in the plain text format.
func renderTable(w io.Writer, dts []types.DataType, cols []column.Column) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(dts))
	for i, dt := range dts {
		header[i] = dt.Name()
	}
	t.AppendHeader(header)

	var cell bytes.Buffer
	rows := rowCount(cols)
	for row := 0; row < rows; row++ {
		out := make(table.Row, len(dts))
		for i, dt := range dts {
			cell.Reset()
			if err := dt.SerializeText(cols[i], row, &cell); err != nil {
				return fmt.Errorf("row %d, column %d (%s): %w", row+1, i+1, dt.Name(), err)
			}
			out[i] = cell.String()
		}
		t.AppendRow(out)
	}
	t.Render()
	return nil
}
