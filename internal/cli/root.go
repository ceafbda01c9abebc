// Package cli provides the command-line interface for csvql.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvql/internal/cli/commands"
	"github.com/leapstack-labs/csvql/internal/cli/config"
	"github.com/leapstack-labs/csvql/internal/errlog"
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
	var errorLogCloser io.Closer

	rootCmd := &cobra.Command{
		Use:   "csvql",
		Short: "csvql - load CSV files into SQLite and query them",
		Long: `csvql loads CSV files into a local SQLite database with inferred
column types, resolves schema conflicts interactively, lists tables,
executes ad-hoc SQL, and translates natural-language requests into SQL
via a hosted language model.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// Make OPENAI_API_KEY and friends available from a .env file.
			_ = godotenv.Load()

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger, closer, err := newLogger(cfg)
			if err != nil {
				return err
			}
			errorLogCloser = closer

			ctx := context.WithValue(cmd.Context(), config.LoggerKey(), logger)
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if errorLogCloser != nil {
				_ = errorLogCloser.Close()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./csvql.yaml)")
	rootCmd.PersistentFlags().StringP("database", "d", "", "Path to the SQLite database file")
	rootCmd.PersistentFlags().String("error-log", "", "Path to the persistent error log file")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (table|json|csv|markdown)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv", "markdown"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Subcommands
	rootCmd.AddCommand(commands.NewLoadCommand())
	rootCmd.AddCommand(commands.NewTablesCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewAskCommand())
	rootCmd.AddCommand(commands.NewShellCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version))

	return rootCmd
}

// newLogger builds the process logger: a stderr handler for operator
// feedback plus the persistent error log for load failures. Logging is
// configured once here, not per load.
func newLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	console := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if cfg.ErrorLog == "" {
		return console, nil, nil
	}
	fileLog, closer, err := errlog.Open(cfg.ErrorLog)
	if err != nil {
		return nil, nil, fmt.Errorf("open error log %s: %w", cfg.ErrorLog, err)
	}
	return errlog.Tee(console, fileLog), closer, nil
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
