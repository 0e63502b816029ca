package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedHistory(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "log.db")
	for _, sql := range []string{
		"SELECT IntCol FROM foo",
		"SELECT Nope FROM foo",
		"SELECT  IntCol\n FROM foo;",
	} {
		_, _ = execute(t, "", "compile", "-c", demoCatalog, "--db", db, sql)
	}
	return db
}

func readHistory(t *testing.T, args ...string) []HistoryEntry {
	t.Helper()
	out, err := execute(t, "", append([]string{"--format", "json", "history"}, args...)...)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   []HistoryEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestHistory_NewestFirst(t *testing.T) {
	db := seedHistory(t)

	entries := readHistory(t, "--db", db)
	require.Len(t, entries, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{entries[0].Seq, entries[1].Seq, entries[2].Seq})

	failed := entries[1]
	assert.Equal(t, "error", failed.Status)
	assert.Contains(t, failed.Error, "COLUMN_NOT_FOUND: column Nope not found")
	assert.Contains(t, failed.Fragment, "Nope")
	assert.Empty(t, failed.Columns)

	assert.Equal(t, "ok", entries[2].Status)
	assert.Equal(t, []string{"IntCol"}, entries[2].Columns)
	assert.Equal(t, "demo", entries[2].Catalog)
}

func TestHistory_Limit(t *testing.T) {
	db := seedHistory(t)

	entries := readHistory(t, "--db", db, "-n", "1")
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].Seq)
}

func TestHistory_BySQL(t *testing.T) {
	db := seedHistory(t)

	entries := readHistory(t, "--db", db, "--sql", "SELECT IntCol FROM foo")
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].Seq, "oldest first")
	assert.Equal(t, int64(3), entries[1].Seq)
	assert.Equal(t, entries[0].SQLHash, entries[1].SQLHash)

	entries = readHistory(t, "--db", db, "--sql", "SELECT IntCol FROM foo", "-n", "1")
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].Seq)
}

func TestHistory_Text(t *testing.T) {
	db := seedHistory(t)

	out, err := execute(t, "", "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT Nope FROM foo")
	assert.Contains(t, out, "COLUMN_NOT_FOUND: column Nope not found")
}

func TestHistory_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "log.db")
	_, err := execute(t, "", "compile", "-c", demoCatalog, "--db", db, "SELECT IntCol FROM foo")
	require.NoError(t, err)

	out, err := execute(t, "", "history", "--db", db, "--sql", "SELECT StringCol FROM foo")
	require.NoError(t, err)
	assert.Contains(t, out, "No compilations recorded.")
}

func TestHistory_MissingDB(t *testing.T) {
	out, err := execute(t, "", "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)

	_, err = execute(t, "", "history", "--db", filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
