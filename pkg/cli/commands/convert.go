package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/colbase/colbase/pkg/cli/config"
	"github.com/colbase/colbase/pkg/logging"
)

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert --schema <types> [in] [out]",
		Short: "Convert rows between text formats",
		Long: `Decode rows of text through the schema's type descriptors and re-encode
them in another format. Reads stdin and writes stdout unless file arguments
are given.`,
		Example: `  # Tab-separated to CSV
  colbase convert --schema "Int32,String" --from escaped --to csv rows.tsv rows.csv

  # CSV with a custom delimiter, rendered as a table
  colbase convert --schema "Date,Nullable(Float64)" --from csv --delimiter ";" --to pretty

  # JSON rows with 64-bit integers quoted
  colbase convert --schema "Int64,Array(String)" --from json --to json --quote-64bit`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args)
		},
	}
	cmd.Flags().String("schema", "", "Comma-separated type names (required)")
	cmd.Flags().String("from", "", "Input format (escaped|csv|json)")
	cmd.Flags().String("to", "", "Output format (escaped|csv|json|pretty)")
	cmd.Flags().String("delimiter", "", "CSV field delimiter")
	cmd.Flags().Bool("quote-64bit", false, "Quote 64-bit integers in JSON output")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// openInput returns the reader for the optional input argument.
func openInput(args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", err
	}
	return f, args[0], nil
}

// openOutput returns the writer for the optional output argument.
func openOutput(args []string) (io.WriteCloser, error) {
	if len(args) < 2 || args[1] == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(args[1])
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := config.FromContext(cmd.Context())
	schema, _ := cmd.Flags().GetString("schema")

	from, err := parseFormat(flagOr(cmd, "from", cfg.From), false)
	if err != nil {
		return err
	}
	to, err := parseFormat(flagOr(cmd, "to", cfg.To), true)
	if err != nil {
		return err
	}
	delimiter, err := delimiterByte(flagOr(cmd, "delimiter", cfg.Delimiter))
	if err != nil {
		return err
	}
	quote64, _ := cmd.Flags().GetBool("quote-64bit")
	if !cmd.Flags().Changed("quote-64bit") {
		quote64 = cfg.Quote64Bit
	}

	dts, err := parseSchema(schema)
	if err != nil {
		return err
	}
	cols := newColumns(dts)

	in, name, err := openInput(args)
	if err != nil {
		return err
	}
	defer in.Close()

	rows, err := readRows(bufio.NewReader(in), from, delimiter, dts, cols)
	if err != nil {
		return err
	}
	logging.WithInput(name).Debug("rows decoded", "rows", rows, "format", from)

	out, err := openOutput(args)
	if err != nil {
		return err
	}
	defer out.Close()

	bw := bufio.NewWriter(out)
	if to == formatPretty {
		err = renderTable(bw, dts, cols)
	} else {
		err = writeRows(bw, to, delimiter, quote64, dts, cols)
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

// flagOr returns the flag value when set, the config fallback otherwise.
func flagOr(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

func delimiterByte(s string) (byte, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single byte, got %q", s)
	}
	return s[0], nil
}
