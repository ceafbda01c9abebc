package commands

import (
	"time"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show past CSV loads",
		Long:  `List completed CSV loads recorded in the database, most recent first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig()
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			recs, err := st.LoadHistory(cmd.Context())
			if err != nil {
				return err
			}

			cols := []string{"loaded_at", "table", "csv", "resolution", "rows"}
			results := make([]map[string]any, 0, len(recs))
			for _, rec := range recs {
				results = append(results, map[string]any{
					"loaded_at":  rec.LoadedAt.Format(time.RFC3339),
					"table":      rec.Table,
					"csv":        rec.CSVPath,
					"resolution": rec.Resolution,
					"rows":       rec.Rows,
				})
			}
			return renderData(cmd.OutOrStdout(), cols, results, cfg.OutputFormat)
		},
	}
}
