package commands

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colbase/colbase/pkg/types"
)

func mustSchema(t *testing.T, spec string) []types.DataType {
	t.Helper()
	dts, err := parseSchema(spec)
	require.NoError(t, err)
	return dts
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"escaped", "csv", "json", "CSV"} {
		f, err := parseFormat(name, false)
		require.NoError(t, err, name)
		assert.Equal(t, format(strings.ToLower(name)), f)
	}

	_, err := parseFormat("pretty", false)
	require.Error(t, err)

	f, err := parseFormat("pretty", true)
	require.NoError(t, err)
	assert.Equal(t, formatPretty, f)

	_, err = parseFormat("xml", true)
	require.Error(t, err)
}

func TestParseSchemaTopLevelCommas(t *testing.T) {
	dts := mustSchema(t, "Int32,Array(Nullable(String)),FixedString(4)")
	require.Len(t, dts, 3)
	assert.Equal(t, "Int32", dts[0].Name())
	assert.Equal(t, "Array(Nullable(String))", dts[1].Name())
	assert.Equal(t, "FixedString(4)", dts[2].Name())
}

func TestParseSchemaBadName(t *testing.T) {
	_, err := parseSchema("Int32,Bogus")
	require.Error(t, err)
}

func TestConsumeNewline(t *testing.T) {
	for _, input := range []string{"", "\n", "\r\n"} {
		r := bufio.NewReader(strings.NewReader(input))
		require.NoError(t, consumeNewline(r), "input %q", input)
	}

	r := bufio.NewReader(strings.NewReader("x"))
	require.Error(t, consumeNewline(r))
}

func TestReadWriteRowsEscaped(t *testing.T) {
	dts := mustSchema(t, "Int32,String")
	cols := newColumns(dts)

	input := "1\thello\n-2\ttab\\there\n"
	rows, err := readRows(bufio.NewReader(strings.NewReader(input)), formatEscaped, ',', dts, cols)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	var out bytes.Buffer
	require.NoError(t, writeRows(&out, formatEscaped, ',', false, dts, cols))
	assert.Equal(t, input, out.String())
}

func TestReadWriteRowsCSV(t *testing.T) {
	dts := mustSchema(t, "Int32,String")
	cols := newColumns(dts)

	input := "1;\"a;b\"\n2;plain\n"
	rows, err := readRows(bufio.NewReader(strings.NewReader(input)), formatCSV, ';', dts, cols)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	// Strings come back fully quoted on output.
	var out bytes.Buffer
	require.NoError(t, writeRows(&out, formatCSV, ';', false, dts, cols))
	assert.Equal(t, "1;\"a;b\"\n2;\"plain\"\n", out.String())
}

func TestReadWriteRowsJSON(t *testing.T) {
	dts := mustSchema(t, "Nullable(Int32),String")
	cols := newColumns(dts)

	input := "[1,\"a\"]\n[ null , \"b\" ]\n"
	rows, err := readRows(bufio.NewReader(strings.NewReader(input)), formatJSON, ',', dts, cols)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	var out bytes.Buffer
	require.NoError(t, writeRows(&out, formatJSON, ',', false, dts, cols))
	assert.Equal(t, "[1,\"a\"]\n[null,\"b\"]\n", out.String())
}

func TestReadRowsKeepsCompleteRows(t *testing.T) {
	dts := mustSchema(t, "Int32,Int32")
	cols := newColumns(dts)

	input := "1\t2\n3\tboom\n"
	rows, err := readRows(bufio.NewReader(strings.NewReader(input)), formatEscaped, ',', dts, cols)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Equal(t, 1, rows)
	for _, col := range cols {
		assert.Equal(t, 1, col.Len())
	}
}

func TestReadRowsMissingSeparator(t *testing.T) {
	dts := mustSchema(t, "Int32,Int32")
	cols := newColumns(dts)

	_, err := readRows(bufio.NewReader(strings.NewReader("1 2\n")), formatEscaped, ',', dts, cols)
	require.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	dts := mustSchema(t, "Int32,Nullable(String)")
	cols := newColumns(dts)

	input := "7\thi\n8\t\\N\n"
	_, err := readRows(bufio.NewReader(strings.NewReader(input)), formatEscaped, ',', dts, cols)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, renderTable(&out, dts, cols))

	rendered := out.String()
	assert.Contains(t, rendered, "Int32")
	assert.Contains(t, rendered, "Nullable(String)")
	assert.Contains(t, rendered, "hi")
	assert.Contains(t, rendered, "NULL")
}
