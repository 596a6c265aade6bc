package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/colbase/colbase/pkg/cli/config"
	"github.com/colbase/colbase/pkg/column"
	"github.com/colbase/colbase/pkg/logging"
	"github.com/colbase/colbase/pkg/types"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export --schema <types> --base <dir/prefix> [in]",
		Short: "Write text rows as native multi-stream files",
		Long: `Decode rows of text through the schema's descriptors and write each
column's native streams to files named <base>.c<idx><suffix>.bin, where the
suffixes follow the stream layout shown by "colbase schema". The files use
the position-independent encoding, so they can be concatenated and appended
to.`,
		Example: `  # Two columns from a TSV file
  colbase export --schema "Int32,Array(String)" --base data/part0 rows.tsv

  # From stdin, CSV
  cat rows.csv | colbase export --schema "Date,Float64" --from csv --base data/part0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args)
		},
	}
	cmd.Flags().String("schema", "", "Comma-separated type names (required)")
	cmd.Flags().String("base", "", "Output path prefix (required)")
	cmd.Flags().String("from", "", "Input format (escaped|csv|json)")
	cmd.Flags().String("delimiter", "", "CSV field delimiter")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("base")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.FromContext(cmd.Context())
	schema, _ := cmd.Flags().GetString("schema")
	base, _ := cmd.Flags().GetString("base")

	from, err := parseFormat(flagOr(cmd, "from", cfg.From), false)
	if err != nil {
		return err
	}
	delimiter, err := delimiterByte(flagOr(cmd, "delimiter", cfg.Delimiter))
	if err != nil {
		return err
	}

	dts, err := parseSchema(schema)
	if err != nil {
		return err
	}
	cols := newColumns(dts)

	in, _, err := openInput(args)
	if err != nil {
		return err
	}
	defer in.Close()

	rows, err := readRows(bufio.NewReader(in), from, delimiter, dts, cols)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(base); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}

	for i, dt := range dts {
		if err := exportColumn(base, i, dt, cols[i]); err != nil {
			return fmt.Errorf("column %d (%s): %w", i+1, dt.Name(), err)
		}
	}

	logging.WithComponent("export").Info("export finished", "rows", rows, "columns", len(dts), "base", base)
	return nil
}

// exportColumn writes one column's streams, flushing and closing every
// file even when serialization fails mid-way.
func exportColumn(base string, idx int, dt types.DataType, col column.Column) error {
	paths := streamPaths(base, idx, dt)
	writers := make([]io.Writer, len(paths))
	buffered := make([]*bufio.Writer, len(paths))
	files := make([]*os.File, len(paths))
	for i, path := range paths {
		f, err := os.Create(path)
		if err != nil {
			closeAll(files[:i])
			return err
		}
		files[i] = f
		buffered[i] = bufio.NewWriter(f)
		writers[i] = buffered[i]
	}

	err := dt.SerializeBinaryBulkMulti(col, writers, true, 0, 0)
	for _, bw := range buffered {
		if flushErr := bw.Flush(); err == nil {
			err = flushErr
		}
	}
	closeAll(files)
	return err
}

func closeAll(files []*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}
