package commands

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/colbase/colbase/pkg/types"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema <type>...",
		Short: "Inspect type names and their stream layout",
		Long: `Resolve one or more type names and print each descriptor's
classification, default value, fixed field size and the suffixes of the
streams its native multi-stream encoding uses.`,
		Example: `  # A scalar
  colbase schema Int32

  # Composites nest; each nesting level adds streams
  colbase schema "Nullable(Array(String))" "Array(Array(UInt8))"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd, args)
		},
	}
	return cmd
}

func runSchema(cmd *cobra.Command, args []string) error {
	dts := make([]types.DataType, 0, len(args))
	for _, arg := range args {
		dt, err := types.CreateDataType(arg)
		if err != nil {
			return err
		}
		dts = append(dts, dt)
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Type", "Nullable", "Numeric", "Field size", "Default", "Streams"})

	var buf bytes.Buffer
	for _, dt := range dts {
		size := "variable"
		if n, err := dt.SizeOfField(); err == nil {
			size = fmt.Sprintf("%d", n)
		}

		buf.Reset()
		col := dt.CreateColumn()
		if err := col.AppendValue(dt.Default()); err != nil {
			return err
		}
		if err := dt.SerializeTextQuoted(col, 0, &buf); err != nil {
			return err
		}

		streams := dt.StreamDescriptions(nil, 0)
		for i, s := range streams {
			if s == "" {
				streams[i] = "(base)"
			}
		}

		t.AppendRow(table.Row{
			dt.Name(),
			dt.IsNullable(),
			dt.IsNumeric(),
			size,
			buf.String(),
			strings.Join(streams, ", "),
		})
	}
	t.Render()
	return nil
}
