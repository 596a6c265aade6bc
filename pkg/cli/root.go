// Package cli provides the command-line interface for colbase.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/colbase/colbase/pkg/cli/commands"
	"github.com/colbase/colbase/pkg/cli/config"
	"github.com/colbase/colbase/pkg/logging"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "colbase",
		Short: "colbase - columnar type toolkit",
		Long: `colbase resolves column type names into descriptors and drives their
serialization surface: native multi-stream files, per-value binary, and the
escaped, quoted, CSV, JSON and XML text formats.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := logging.LogLevel(cfg.LogLevel)
			if cfg.Verbose {
				level = logging.LevelDebug
			}
			if err := logging.Init(logging.Config{
				Level:      level,
				OutputPath: cfg.LogFile,
				Format:     cfg.LogFormat,
			}); err != nil {
				return err
			}

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					logging.Debug("using config file", "path", configFile)
				}
			}

			cmd.SetContext(config.IntoContext(cmd.Context(), cfg))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logging.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./colbase.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text|json)")
	rootCmd.PersistentFlags().String("log-file", "", "Log file path (empty for stderr)")

	rootCmd.AddCommand(commands.NewSchemaCommand())
	rootCmd.AddCommand(commands.NewConvertCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewCatCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version, BuildDate, GitCommit))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
