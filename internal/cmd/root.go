package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/odootable/internal/auth"
	"github.com/salmonumbrella/odootable/internal/config"
	"github.com/salmonumbrella/odootable/internal/filter"
	"github.com/salmonumbrella/odootable/internal/logging"
	"github.com/salmonumbrella/odootable/internal/ui"
)

func newRootCmd(app *App) *cobra.Command {
	// Global flags
	var (
		debugMode  bool
		configPath string
	)

	// Filter flags
	var (
		outputPath string
		columns    int
		failFast   bool
	)

	rootCmd := &cobra.Command{
		Use:   "odootable [file]",
		Short: "Markdown filter that replaces odootable blocks with tables",
		Long: `odootable is a markdown filter: it reads a document, replaces every
fenced code block tagged "odootable" with a table built from rows
fetched from an Odoo server (or from a CSV file), and writes the
filtered document back out.

Without a file argument the document is read from standard input. The
filtered document goes to standard output; diagnostics go to stderr.`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Cobra must not emit its own error/usage text; error output is
			// handled centrally in Execute.
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			logging.Setup(debugMode, app.Stderr)
			cmd.SetContext(ui.WithUI(cmd.Context(), ui.New(ui.ColorAuto)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			source, err := readSource(app.Stdin, args)
			if err != nil {
				return err
			}

			cv := &filter.Converter{
				Globals:        cfg.Defaults,
				Columns:        cfg.Columns,
				LookupPassword: auth.Lookup,
			}
			if columns > 0 {
				cv.Columns = columns
			}
			if debugMode {
				cv.DebugOutput = app.Stderr
			}
			cv.FailFast = failFast

			out, err := cv.Process(cmd.Context(), source)
			if err != nil {
				return err
			}

			if outputPath != "" {
				return os.WriteFile(outputPath, out, 0o644)
			}
			_, err = app.Stdout.Write(out)
			return err
		},
	}

	rootCmd.Version = app.Version
	rootCmd.SetOut(app.Stdout)
	rootCmd.SetErr(app.Stderr)

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging and JSON-RPC traffic dumps")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/odootable/config.yaml)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the filtered document to a file instead of stdout")
	rootCmd.Flags().IntVar(&columns, "columns", 0, "Line width assumed when sizing structured tables")
	rootCmd.Flags().BoolVar(&failFast, "fail-fast", false, "Abort on the first failing block instead of leaving it unchanged")

	rootCmd.AddCommand(newQueryCmd(app, &configPath, &debugMode))
	rootCmd.AddCommand(newAuthCmd(app))

	return rootCmd
}

// loadConfig loads the named config file, or the default one when path is
// empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// readSource reads the input document from the file argument, or stdin
// when no argument is given.
func readSource(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(stdin)
}
