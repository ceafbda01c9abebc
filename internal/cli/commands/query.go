package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvql/internal/store"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Input string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a SQL query against the database",
		Long: `Execute ad-hoc SQL against the csvql database.

When invoked without arguments on a terminal, enters an interactive
REPL with history, tab completion for table names, and dot-commands.
Piped stdin is read as SQL.`,
		Example: `  # Execute SQL directly
  csvql query "SELECT * FROM people LIMIT 5"

  # Pipe SQL in
  echo "SELECT COUNT(*) FROM people" | csvql query

  # Interactive REPL
  csvql query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cfg := getConfig()

	var sqlText string
	switch {
	case len(args) > 0:
		sqlText = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlText = string(content)
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlText = string(content)
	default:
		return runQueryREPL(cmd, cfg.Database, cfg.OutputFormat)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	return executeAndRender(cmd.Context(), cmd.OutOrStdout(), st, sqlText, cfg.OutputFormat)
}

// executeAndRender runs one statement and renders its result set.
// Statements that return no rows render as "(0 rows)".
func executeAndRender(ctx context.Context, w io.Writer, st *store.Store, sqlText, format string) error {
	rows, err := st.Query(ctx, sqlText)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	return renderResults(w, rows, format)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
