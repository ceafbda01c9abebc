package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvql/internal/loader"
	"github.com/leapstack-labs/csvql/internal/schema"
)

// LoadOptions holds options for the load command.
type LoadOptions struct {
	OnConflict string
}

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	opts := &LoadOptions{}

	cmd := &cobra.Command{
		Use:   "load <csv-file> [table]",
		Short: "Load a CSV file into the database",
		Long: `Load a CSV file into a SQLite table with inferred column types.

The first CSV row is the header and defines the column names. Column
types are inferred per column: INTEGER when every value is an integer,
REAL for mixed numeric values, BOOLEAN for true/false columns, TEXT
otherwise.

When the target table already exists you are prompted to overwrite it,
rename the load to <table>_new, or skip the load entirely. Use
--on-conflict to resolve without a prompt.`,
		Example: `  # Load people.csv into table "people"
  csvql load people.csv

  # Load into an explicit table name
  csvql load data/people.csv staff

  # Non-interactive conflict handling
  csvql load people.csv --on-conflict overwrite`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.OnConflict, "on-conflict", "",
		"Resolution when the table exists: overwrite, rename, or skip")

	return cmd
}

func runLoad(cmd *cobra.Command, args []string, opts *LoadOptions) error {
	cfg := getConfig()
	logger := getLogger(cmd)

	csvPath := args[0]
	tableName := tableNameFromArgs(args)

	var resolver schema.Resolver
	if opts.OnConflict != "" {
		res, err := schema.ParseResolution(opts.OnConflict)
		if err != nil {
			return err
		}
		resolver = schema.FixedResolver(res)
	} else {
		resolver = &schema.PromptResolver{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	result, err := loader.New(st, resolver, logger).Load(cmd.Context(), csvPath, tableName)
	if err != nil {
		return err
	}

	if result.Skipped {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Skipping table %q; database unchanged.\n", tableName)
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d rows into table %q (%s)\n",
		result.Rows, result.Table, result.Schema)
	return nil
}

// tableNameFromArgs picks the table name: the second argument when
// given, else the CSV file name without its extension.
func tableNameFromArgs(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	base := filepath.Base(args[0])
	return strings.TrimSuffix(base, filepath.Ext(base))
}
