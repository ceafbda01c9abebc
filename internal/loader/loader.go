// Package loader drives a CSV load end to end: read the file, infer a
// schema, reconcile it against any existing table, and materialize the
// result.
package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/leapstack-labs/csvql/internal/schema"
	"github.com/leapstack-labs/csvql/internal/store"
)

// ErrLoadFailed is the generic failure reported to the operator when
// materialization fails. The underlying cause goes to the error log.
var ErrLoadFailed = fmt.Errorf("load failed; see error log for details")

// Loader performs CSV loads against a store.
type Loader struct {
	Store    *store.Store
	Resolver schema.Resolver
	// Logger receives progress at Debug and recovered failures at
	// Error; the Error records land in the persistent error log.
	Logger *slog.Logger
}

// Result describes the outcome of a load attempt.
type Result struct {
	// Table is the name the data landed under; differs from the
	// requested name after a rename resolution.
	Table      string
	Schema     schema.Schema
	Rows       int64
	Resolution schema.Resolution
	// Resolved is true when a conflict prompt occurred.
	Resolved bool
	// Skipped is true when the operator chose to abort the load.
	Skipped bool
}

// New returns a Loader. A nil logger discards output.
func New(st *store.Store, res schema.Resolver, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{Store: st, Resolver: res, Logger: logger}
}

// Load reads csvPath and materializes it as table. When the table
// already exists the resolver is consulted; the overwrite, rename, and
// skip outcomes follow the resolver's answer. Materialization is a
// single transactional replace. Failures during materialization are
// logged and reported as a generic failure so a partial load never
// goes unnoticed.
func (l *Loader) Load(ctx context.Context, csvPath, table string) (*Result, error) {
	header, rows, err := ReadCSV(csvPath)
	if err != nil {
		return nil, err
	}

	proposed := schema.Infer(header, rows)
	l.Logger.Debug("schema inferred", "table", table, "schema", proposed.String(), "rows", len(rows))

	existing, err := l.Store.TableSchema(ctx, table)
	if err != nil {
		return nil, err
	}

	res := &Result{Table: table, Schema: proposed}
	if len(existing) > 0 {
		resolution, err := l.Resolver.Resolve(table, existing, proposed)
		if err != nil {
			return nil, err
		}
		res.Resolution = resolution
		res.Resolved = true

		switch resolution {
		case schema.ResolutionSkip:
			l.Logger.Debug("load skipped", "table", table)
			res.Skipped = true
			return res, nil
		case schema.ResolutionRename:
			res.Table = table + schema.RenameSuffix
		case schema.ResolutionOverwrite:
			// Replace drops the old table inside the transaction.
		}
	}

	n, err := l.Store.Replace(ctx, res.Table, proposed, rows)
	if err != nil {
		l.Logger.Error("table materialization failed",
			"table", res.Table, "csv", csvPath, "error", err)
		return nil, ErrLoadFailed
	}
	res.Rows = n

	resolution := "none"
	if res.Resolved {
		resolution = res.Resolution.String()
	}
	if err := l.Store.RecordLoad(ctx, store.LoadRecord{
		CSVPath:    csvPath,
		Table:      res.Table,
		Resolution: resolution,
		Rows:       n,
	}); err != nil {
		l.Logger.Warn("load history not recorded", "table", res.Table, "error", err)
	}

	return res, nil
}
