package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvql/internal/store"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables in the database",
		Long:  `List all user tables with their column and row counts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig()
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			return listTables(cmd.Context(), cmd.OutOrStdout(), st, cfg.OutputFormat)
		},
	}
}

func listTables(ctx context.Context, w io.Writer, st *store.Store, format string) error {
	names, err := st.ListTables(ctx)
	if err != nil {
		return err
	}

	cols := []string{"table", "columns", "rows"}
	results := make([]map[string]any, 0, len(names))
	for _, name := range names {
		sch, err := st.TableSchema(ctx, name)
		if err != nil {
			return err
		}
		count, err := st.RowCount(ctx, name)
		if err != nil {
			return err
		}
		results = append(results, map[string]any{
			"table":   name,
			"columns": len(sch),
			"rows":    count,
		})
	}
	return renderData(w, cols, results, format)
}
