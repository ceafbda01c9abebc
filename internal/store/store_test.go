package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csvql/internal/schema"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

var peopleSchema = schema.Schema{
	{Name: "id", Type: schema.TypeInteger},
	{Name: "score", Type: schema.TypeReal},
	{Name: "active", Type: schema.TypeBoolean},
}

var peopleRows = [][]string{
	{"1", "9.5", "true"},
	{"2", "7", "false"},
	{"3", "8.25", "true"},
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestTableSchemaAbsentTable(t *testing.T) {
	st := openTestStore(t)

	// A missing table is the no-conflict case: empty schema, no error.
	sch, err := st.TableSchema(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, sch)
}

func TestReplaceAndIntrospect(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	n, err := st.Replace(ctx, "people", peopleSchema, peopleRows)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	exists, err := st.TableExists(ctx, "people")
	require.NoError(t, err)
	assert.True(t, exists)

	sch, err := st.TableSchema(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, peopleSchema, sch)

	count, err := st.RowCount(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestReplaceOverwritesExistingRows(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.Replace(ctx, "people", peopleSchema, peopleRows)
	require.NoError(t, err)

	_, err = st.Replace(ctx, "people", peopleSchema, peopleRows[:1])
	require.NoError(t, err)

	count, err := st.RowCount(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestReplaceCoercionFailureLeavesTableUntouched(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.Replace(ctx, "people", peopleSchema, peopleRows)
	require.NoError(t, err)

	bad := [][]string{{"not-an-int", "1.0", "true"}}
	_, err = st.Replace(ctx, "people", peopleSchema, bad)
	require.Error(t, err)

	// The failed replace rolled back; the original rows survive.
	count, err := st.RowCount(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestReplaceEmptySchema(t *testing.T) {
	st := openTestStore(t)
	_, err := st.Replace(context.Background(), "t", nil, nil)
	assert.Error(t, err)
}

func TestReplaceManyRowsBatches(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	sch := schema.Schema{{Name: "n", Type: schema.TypeInteger}}
	rows := make([][]string, 1207)
	for i := range rows {
		rows[i] = []string{"1"}
	}

	n, err := st.Replace(ctx, "big", sch, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(1207), n)

	count, err := st.RowCount(ctx, "big")
	require.NoError(t, err)
	assert.Equal(t, int64(1207), count)
}

func TestListTablesHidesInternal(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.Replace(ctx, "people", peopleSchema, peopleRows)
	require.NoError(t, err)
	_, err = st.Replace(ctx, "orders", peopleSchema, nil)
	require.NoError(t, err)

	require.NoError(t, st.RecordLoad(ctx, LoadRecord{CSVPath: "a.csv", Table: "people", Resolution: "none", Rows: 3}))

	names, err := st.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "people"}, names)
}

func TestLoadHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	// No history table yet: empty result, no error.
	recs, err := st.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)

	require.NoError(t, st.RecordLoad(ctx, LoadRecord{CSVPath: "a.csv", Table: "people", Resolution: "none", Rows: 3}))
	require.NoError(t, st.RecordLoad(ctx, LoadRecord{CSVPath: "b.csv", Table: "people_new", Resolution: "rename", Rows: 5}))

	recs, err = st.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.NotEmpty(t, rec.ID)
		assert.False(t, rec.LoadedAt.IsZero())
	}
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"people"`, QuoteIdent("people"))
	assert.Equal(t, `"a""b"`, QuoteIdent(`a"b`))
}
