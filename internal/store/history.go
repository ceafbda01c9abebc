package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LoadRecord is one entry in the load history bookkeeping table.
type LoadRecord struct {
	ID         string
	CSVPath    string
	Table      string
	Resolution string
	Rows       int64
	LoadedAt   time.Time
}

const historyTable = internalTablePrefix + "loads"

const historySchemaSQL = `
CREATE TABLE IF NOT EXISTS ` + historyTable + ` (
	id TEXT PRIMARY KEY,
	csv_path TEXT NOT NULL,
	table_name TEXT NOT NULL,
	resolution TEXT NOT NULL,
	row_count INTEGER NOT NULL,
	loaded_at TEXT NOT NULL
);`

// RecordLoad appends a history entry for a completed load.
func (s *Store) RecordLoad(ctx context.Context, rec LoadRecord) error {
	if _, err := s.db.ExecContext(ctx, historySchemaSQL); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.LoadedAt.IsZero() {
		rec.LoadedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO `+historyTable+` (id, csv_path, table_name, resolution, row_count, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.CSVPath, rec.Table, rec.Resolution, rec.Rows, rec.LoadedAt.Format(time.RFC3339))
	return err
}

// LoadHistory returns past loads, most recent first.
func (s *Store) LoadHistory(ctx context.Context) ([]LoadRecord, error) {
	exists, err := s.TableExists(ctx, historyTable)
	if err != nil || !exists {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, csv_path, table_name, resolution, row_count, loaded_at
		FROM `+historyTable+`
		ORDER BY loaded_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var recs []LoadRecord
	for rows.Next() {
		var rec LoadRecord
		var ts string
		if err := rows.Scan(&rec.ID, &rec.CSVPath, &rec.Table, &rec.Resolution, &rec.Rows, &ts); err != nil {
			return nil, err
		}
		rec.LoadedAt, _ = time.Parse(time.RFC3339, ts)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
