package errlog

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_log.txt")

	logger, closer, err := Open(path)
	require.NoError(t, err)
	logger.Error("load failed", "table", "people")
	require.NoError(t, closer.Close())

	logger, closer, err = Open(path)
	require.NoError(t, err)
	logger.Error("load failed", "table", "orders")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "table=people")
	assert.Contains(t, string(data), "table=orders")
}

func TestOpenIgnoresInfoRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_log.txt")

	logger, closer, err := Open(path)
	require.NoError(t, err)
	logger.Info("loaded 3 rows")
	logger.Error("load failed")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "loaded 3 rows")
	assert.Contains(t, string(data), "load failed")
}

func TestTeeRoutesErrorsToBoth(t *testing.T) {
	var console, errors bytes.Buffer
	consoleLog := slog.New(slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelInfo}))
	errorLog := slog.New(slog.NewTextHandler(&errors, &slog.HandlerOptions{Level: slog.LevelError}))

	logger := Tee(consoleLog, errorLog)
	logger.Info("row count", "rows", 3)
	logger.Error("load failed", "table", "people")

	assert.Contains(t, console.String(), "row count")
	assert.Contains(t, console.String(), "load failed")
	assert.NotContains(t, errors.String(), "row count")
	assert.Contains(t, errors.String(), "table=people")
}

func TestTeeWithAttrs(t *testing.T) {
	var console, errors bytes.Buffer
	consoleLog := slog.New(slog.NewTextHandler(&console, nil))
	errorLog := slog.New(slog.NewTextHandler(&errors, &slog.HandlerOptions{Level: slog.LevelError}))

	logger := Tee(consoleLog, errorLog).With("csv", "people.csv")
	logger.Error("load failed")

	assert.Contains(t, console.String(), "csv=people.csv")
	assert.Contains(t, errors.String(), "csv=people.csv")
}
