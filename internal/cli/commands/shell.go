package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvql/internal/loader"
	"github.com/leapstack-labs/csvql/internal/schema"
)

// NewShellCommand creates the shell command: the numbered interactive
// menu tying all operations together.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive menu session",
		Long: `Start an interactive menu session with numbered options to load a
CSV, list tables, run SQL, ask the language model for SQL, and exit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd)
		},
	}
}

// shellSession owns the single line scanner for the whole session, so
// prompts and conflict resolution never compete for stdin.
type shellSession struct {
	cmd *cobra.Command
	sc  *bufio.Scanner
	out io.Writer
}

func runShell(cmd *cobra.Command) error {
	s := &shellSession{
		cmd: cmd,
		sc:  bufio.NewScanner(cmd.InOrStdin()),
		out: cmd.OutOrStdout(),
	}

	for {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, "Options:")
		fmt.Fprintln(s.out, "1. Load CSV into database")
		fmt.Fprintln(s.out, "2. List tables")
		fmt.Fprintln(s.out, "3. Run SQL query")
		fmt.Fprintln(s.out, "4. Ask AI to generate SQL")
		fmt.Fprintln(s.out, "5. Exit")

		choice, err := s.prompt("Enter your choice: ")
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		switch choice {
		case "1":
			s.report(s.loadCSV())
		case "2":
			s.report(s.listTables())
		case "3":
			s.report(s.runSQL())
		case "4":
			s.report(s.askAI())
		case "5":
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice. Please try again.")
		}
	}
}

// report prints action errors without ending the session.
func (s *shellSession) report(err error) {
	if err != nil && err != io.EOF {
		fmt.Fprintf(s.cmd.ErrOrStderr(), "Error: %v\n", err)
	}
}

func (s *shellSession) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.sc.Text()), nil
}

func (s *shellSession) loadCSV() error {
	csvPath, err := s.prompt("CSV file path: ")
	if err != nil {
		return err
	}
	table, err := s.prompt("Table name: ")
	if err != nil {
		return err
	}

	cfg := getConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	result, err := loader.New(st, (*sessionResolver)(s), getLogger(s.cmd)).Load(s.cmd.Context(), csvPath, table)
	if err != nil {
		return err
	}
	if result.Skipped {
		fmt.Fprintf(s.out, "Skipping table %q; database unchanged.\n", table)
		return nil
	}
	fmt.Fprintf(s.out, "Loaded %d rows into table %q (%s)\n", result.Rows, result.Table, result.Schema)
	return nil
}

func (s *shellSession) listTables() error {
	cfg := getConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	return listTables(s.cmd.Context(), s.out, st, cfg.OutputFormat)
}

func (s *shellSession) runSQL() error {
	sqlText, err := s.prompt("SQL query: ")
	if err != nil {
		return err
	}

	cfg := getConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	return executeAndRender(s.cmd.Context(), s.out, st, sqlText, cfg.OutputFormat)
}

func (s *shellSession) askAI() error {
	request, err := s.prompt("Describe your request in plain language: ")
	if err != nil {
		return err
	}

	cfg := getConfig()
	client, err := newLLMClient(cfg.LLM)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	sqlText, err := generateSQL(s.cmd.Context(), client, st, request)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Generated SQL:\n  %s\n", sqlText)

	answer, err := s.prompt("Execute this SQL? (Y/N) ")
	if err != nil {
		return err
	}
	if a := strings.ToLower(answer); a != "y" && a != "yes" {
		fmt.Fprintln(s.out, "Not executed.")
		return nil
	}
	return executeAndRender(s.cmd.Context(), s.out, st, sqlText, cfg.OutputFormat)
}

// sessionResolver answers conflict prompts through the session's
// scanner. Invalid input reprompts; there is no silent fallthrough.
type sessionResolver shellSession

func (r *sessionResolver) Resolve(table string, existing, proposed schema.Schema) (schema.Resolution, error) {
	s := (*shellSession)(r)
	fmt.Fprintf(s.out, "Schema conflict: table %q already exists\n", table)
	fmt.Fprintf(s.out, "  existing: %s\n", existing)
	fmt.Fprintf(s.out, "  proposed: %s\n", proposed)
	for {
		answer, err := s.prompt("Overwrite (O), Rename (R), or Skip (S)? ")
		if err != nil {
			return 0, err
		}
		res, err := schema.ParseResolution(answer)
		if err != nil {
			fmt.Fprintf(s.out, "Unrecognized choice %q, try again.\n", answer)
			continue
		}
		return res, nil
	}
}
