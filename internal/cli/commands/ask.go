package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvql/internal/cli/config"
	"github.com/leapstack-labs/csvql/internal/llm"
	"github.com/leapstack-labs/csvql/internal/schema"
	"github.com/leapstack-labs/csvql/internal/store"
)

// AskOptions holds options for the ask command.
type AskOptions struct {
	Execute bool
	DryRun  bool
}

// NewAskCommand creates the ask command.
func NewAskCommand() *cobra.Command {
	opts := &AskOptions{}

	cmd := &cobra.Command{
		Use:   "ask <request...>",
		Short: "Translate a natural-language request into SQL",
		Long: `Ask a hosted language model to generate SQL for a plain-language
request. The model is given every table's schema; the first SQL
statement in its response is extracted and shown. You are asked to
confirm before anything executes.

Requires an API key via OPENAI_API_KEY, CSVQL_LLM_API_KEY, or the
llm.api_key config key. The key is only required for this command.`,
		Example: `  # Generate and confirm interactively
  csvql ask "average score per department"

  # Print the SQL without executing
  csvql ask --dry-run "how many people are active"

  # Execute without confirmation
  csvql ask --execute "list the five highest scores"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Execute, "execute", false, "Execute the generated SQL without confirmation")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the generated SQL without executing it")

	return cmd
}

func runAsk(cmd *cobra.Command, request string, opts *AskOptions) error {
	cfg := getConfig()

	client, err := newLLMClient(cfg.LLM)
	if err != nil {
		// Missing credential is fatal for this command only; the rest
		// of the CLI works without it.
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	sqlText, err := generateSQL(cmd.Context(), client, st, request)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Generated SQL:\n  %s\n", sqlText)
	if opts.DryRun {
		return nil
	}

	if !opts.Execute {
		ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Execute this SQL? (Y/N) ")
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not executed.")
			return nil
		}
	}

	return executeAndRender(cmd.Context(), cmd.OutOrStdout(), st, sqlText, cfg.OutputFormat)
}

func newLLMClient(cfg config.LLMConfig) (*llm.Client, error) {
	return llm.New(llm.Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Timeout:     cfg.Timeout(),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
}

// generateSQL flattens every table's schema and asks the model for a
// statement answering the request.
func generateSQL(ctx context.Context, client *llm.Client, st *store.Store, request string) (string, error) {
	tables, err := st.ListTables(ctx)
	if err != nil {
		return "", err
	}
	schemas := make(map[string]schema.Schema, len(tables))
	for _, t := range tables {
		sch, err := st.TableSchema(ctx, t)
		if err != nil {
			return "", err
		}
		schemas[t] = sch
	}
	return client.GenerateSQL(ctx, schemas, tables, request)
}

// confirm asks a yes/no question and accepts y/yes (case-insensitive).
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	_, _ = fmt.Fprint(out, prompt)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes", nil
}
