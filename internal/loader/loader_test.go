package loader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csvql/internal/schema"
	"github.com/leapstack-labs/csvql/internal/store"
)

const peopleCSV = "id,score,active\n1,9.5,true\n2,7,false\n3,8.25,true\n"

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// noResolve fails the test if the loader consults the resolver.
type noResolve struct{ t *testing.T }

func (n noResolve) Resolve(table string, _, _ schema.Schema) (schema.Resolution, error) {
	n.t.Fatalf("resolver consulted for table %q with no conflict", table)
	return 0, nil
}

func TestLoadFreshTable(t *testing.T) {
	st := openTestStore(t)
	path := writeFile(t, "people.csv", peopleCSV)

	// A brand-new table name never prompts for conflict resolution.
	res, err := New(st, noResolve{t}, nil).Load(context.Background(), path, "people")
	require.NoError(t, err)

	assert.Equal(t, "people", res.Table)
	assert.False(t, res.Resolved)
	assert.False(t, res.Skipped)
	assert.Equal(t, int64(3), res.Rows)
	assert.Equal(t, schema.Schema{
		{Name: "id", Type: schema.TypeInteger},
		{Name: "score", Type: schema.TypeReal},
		{Name: "active", Type: schema.TypeBoolean},
	}, res.Schema)

	ctx := context.Background()
	count, err := st.RowCount(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	stored, err := st.TableSchema(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, res.Schema, stored)
}

func TestLoadSkipLeavesTableUnchanged(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	path := writeFile(t, "people.csv", peopleCSV)

	_, err := New(st, noResolve{t}, nil).Load(ctx, path, "people")
	require.NoError(t, err)
	before, err := st.TableSchema(ctx, "people")
	require.NoError(t, err)

	other := writeFile(t, "other.csv", "id,name\n7,zoe\n")
	res, err := New(st, schema.FixedResolver(schema.ResolutionSkip), nil).Load(ctx, other, "people")
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.True(t, res.Resolved)

	after, err := st.TableSchema(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	count, err := st.RowCount(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestLoadRenameCreatesSecondTable(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	path := writeFile(t, "people.csv", peopleCSV)

	_, err := New(st, noResolve{t}, nil).Load(ctx, path, "people")
	require.NoError(t, err)

	other := writeFile(t, "other.csv", "id,name\n7,zoe\n")
	res, err := New(st, schema.FixedResolver(schema.ResolutionRename), nil).Load(ctx, other, "people")
	require.NoError(t, err)
	assert.Equal(t, "people_new", res.Table)
	assert.Equal(t, int64(1), res.Rows)

	// The original table is untouched.
	count, err := st.RowCount(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	names, err := st.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"people", "people_new"}, names)
}

func TestLoadOverwriteReplacesRows(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	path := writeFile(t, "people.csv", peopleCSV)

	_, err := New(st, noResolve{t}, nil).Load(ctx, path, "people")
	require.NoError(t, err)

	other := writeFile(t, "other.csv", "id,name\n7,zoe\n")
	res, err := New(st, schema.FixedResolver(schema.ResolutionOverwrite), nil).Load(ctx, other, "people")
	require.NoError(t, err)
	assert.Equal(t, "people", res.Table)

	// Exactly one table under the name, containing only the new rows.
	names, err := st.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"people"}, names)

	count, err := st.RowCount(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stored, err := st.TableSchema(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, schema.Schema{
		{Name: "id", Type: schema.TypeInteger},
		{Name: "name", Type: schema.TypeText},
	}, stored)
}

func TestLoadRecordsHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	path := writeFile(t, "people.csv", peopleCSV)

	_, err := New(st, noResolve{t}, nil).Load(ctx, path, "people")
	require.NoError(t, err)

	recs, err := st.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "people", recs[0].Table)
	assert.Equal(t, path, recs[0].CSVPath)
	assert.Equal(t, "none", recs[0].Resolution)
	assert.Equal(t, int64(3), recs[0].Rows)
}

func TestLoadSkipRecordsNoHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	path := writeFile(t, "people.csv", peopleCSV)

	_, err := New(st, noResolve{t}, nil).Load(ctx, path, "people")
	require.NoError(t, err)

	res, err := New(st, schema.FixedResolver(schema.ResolutionSkip), nil).Load(ctx, path, "people")
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	recs, err := st.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

// TestLoadMaterializationFailure injects a driver-level failure and
// verifies the operator sees the generic failure notice while the
// cause goes to the log.
func TestLoadMaterializationFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`PRAGMA table_info("people")`).
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}))
	mock.ExpectBegin()
	mock.ExpectExec(`DROP TABLE IF EXISTS "people"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE "people" ("id" INTEGER, "score" REAL, "active" BOOLEAN)`).
		WillReturnError(fmt.Errorf("disk I/O error"))
	mock.ExpectRollback()

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	path := writeFile(t, "people.csv", peopleCSV)
	_, err = New(store.NewWithDB(db), noResolve{t}, logger).Load(context.Background(), path, "people")

	require.ErrorIs(t, err, ErrLoadFailed)
	assert.NotContains(t, err.Error(), "disk I/O error")
	assert.Contains(t, logBuf.String(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadMissingCSV(t *testing.T) {
	st := openTestStore(t)
	_, err := New(st, noResolve{t}, nil).Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), "people")
	assert.Error(t, err)
}
