package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/csvql/internal/schema"
)

// maxBindVars caps the bind parameters per INSERT statement, staying
// well inside SQLite's historical 999-variable limit.
const maxBindVars = 500

// Replace materializes a table in a single transaction: drop any
// existing table with the name, create it from the schema, and insert
// every row. Either the whole load lands or nothing does; there is no
// window where the table exists but is empty.
func (s *Store) Replace(ctx context.Context, table string, sch schema.Schema, rows [][]string) (int64, error) {
	if len(sch) == 0 {
		return 0, fmt.Errorf("replace %s: empty schema", table)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", QuoteIdent(table))); err != nil {
		return 0, fmt.Errorf("drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table, sch)); err != nil {
		return 0, fmt.Errorf("create %s: %w", table, err)
	}

	batch := maxBindVars / len(sch)
	if batch < 1 {
		batch = 1
	}

	var inserted int64
	for start := 0; start < len(rows); start += batch {
		end := start + batch
		if end > len(rows) {
			end = len(rows)
		}
		args, err := coerceRows(sch, rows[start:end])
		if err != nil {
			return 0, err
		}
		res, err := tx.ExecContext(ctx, insertSQL(table, sch, end-start), args...)
		if err != nil {
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func createTableSQL(table string, sch schema.Schema) string {
	cols := make([]string, len(sch))
	for i, c := range sch {
		cols[i] = fmt.Sprintf("%s %s", QuoteIdent(c.Name), c.Type)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdent(table), strings.Join(cols, ", "))
}

// insertSQL builds a multi-row INSERT with placeholder groups, one per row.
func insertSQL(table string, sch schema.Schema, rowCount int) string {
	cols := make([]string, len(sch))
	holes := make([]string, len(sch))
	for i, c := range sch {
		cols[i] = QuoteIdent(c.Name)
		holes[i] = "?"
	}
	group := "(" + strings.Join(holes, ",") + ")"
	groups := make([]string, rowCount)
	for i := range groups {
		groups[i] = group
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		QuoteIdent(table), strings.Join(cols, ", "), strings.Join(groups, ","))
}

// coerceRows converts raw CSV values to typed bind arguments. Rows
// shorter than the schema are padded with NULLs; longer rows are an
// error caught earlier by the CSV reader.
func coerceRows(sch schema.Schema, rows [][]string) ([]any, error) {
	args := make([]any, 0, len(rows)*len(sch))
	for _, row := range rows {
		for i, col := range sch {
			if i >= len(row) {
				args = append(args, nil)
				continue
			}
			v, err := col.Coerce(row[i])
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
	}
	return args, nil
}
