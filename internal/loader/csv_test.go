package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, "people.csv", "id,name\n1,alice\n2,bob\n")

	header, rows, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, header)
	assert.Equal(t, [][]string{{"1", "alice"}, {"2", "bob"}}, rows)
}

func TestReadCSVQuotedFields(t *testing.T) {
	path := writeFile(t, "q.csv", "id,note\n1,\"hello, world\"\n")

	_, rows, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "hello, world"}}, rows)
}

func TestReadCSVHeaderOnly(t *testing.T) {
	path := writeFile(t, "empty.csv", "id,name\n")

	header, rows, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, header)
	assert.Empty(t, rows)
}

func TestReadCSVEmptyFile(t *testing.T) {
	path := writeFile(t, "none.csv", "")
	_, _, err := ReadCSV(path)
	assert.ErrorContains(t, err, "missing header")
}

func TestReadCSVRowWiderThanHeader(t *testing.T) {
	path := writeFile(t, "wide.csv", "id,name\n1,alice,extra\n")
	_, _, err := ReadCSV(path)
	assert.ErrorContains(t, err, "fields")
}

func TestReadCSVMissingFile(t *testing.T) {
	_, _, err := ReadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
