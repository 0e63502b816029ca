package store

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func okCompilation(id string, seq int64) Compilation {
	return Compilation{
		ID:            id,
		Seq:           seq,
		SQL:           "SELECT IntCol FROM foo",
		SQLHash:       "hash-" + id,
		Catalog:       "demo",
		SPARQL:        "SELECT ?c WHERE { }",
		Columns:       []string{"IntCol"},
		Status:        StatusOK,
		EngineVersion: "0.1.0",
		IRVersion:     "1",
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		s.Close()
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM compilations").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("user_version", strconv.Itoa(schemaVersion())))
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.RecordCompilation(ctx, okCompilation("a", 1)))
	last, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), last)
}

func TestOpen_MigratesOldLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec("DROP INDEX idx_compilations_sql_hash")
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 0")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	var name string
	require.NoError(t, s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_compilations_sql_hash'",
	).Scan(&name))
	assert.NoError(t, s.verifyPragma("user_version", strconv.Itoa(schemaVersion())))
}

func TestOpen_MigrationCreatesHashIndex(t *testing.T) {
	s := createTestStore(t)

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_compilations_sql_hash'",
	).Scan(&name)
	assert.NoError(t, err)
}

func TestRecordCompilation_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := okCompilation("c1", 1)
	want.Columns = []string{"IntCol", "a<b>&c"}
	require.NoError(t, s.RecordCompilation(ctx, want))

	got, err := s.CompilationByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRecordCompilation_Error(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	c := Compilation{
		ID:            "e1",
		Seq:           1,
		SQL:           "SELECT * FROM nope",
		SQLHash:       "h",
		Catalog:       "demo",
		Status:        StatusError,
		ErrorCode:     "TABLE_NOT_FOUND",
		ErrorMessage:  "table nope not found",
		ErrorFragment: "nope",
		EngineVersion: "0.1.0",
		IRVersion:     "1",
	}
	require.NoError(t, s.RecordCompilation(ctx, c))

	got, err := s.CompilationByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, "TABLE_NOT_FOUND", got.ErrorCode)
	assert.Equal(t, []string{}, got.Columns)
}

func TestRecordCompilation_DuplicateIgnored(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordCompilation(ctx, okCompilation("c1", 1)))
	second := okCompilation("c1", 2)
	second.SQL = "SELECT StringCol FROM foo"
	require.NoError(t, s.RecordCompilation(ctx, second))

	got, err := s.CompilationByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Seq)
	assert.Equal(t, "SELECT IntCol FROM foo", got.SQL)
}

func TestRecordCompilation_InvalidStatus(t *testing.T) {
	s := createTestStore(t)
	c := okCompilation("c1", 1)
	c.Status = "pending"
	assert.Error(t, s.RecordCompilation(context.Background(), c))
}

func TestCompilationByID_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.CompilationByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadCompilations_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.RecordCompilation(ctx, okCompilation(id, int64(i+1))))
	}

	all, err := s.ReadCompilations(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[2].ID)

	two, err := s.ReadCompilations(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, "b", two[1].ID)
}

func TestReadCompilations_Empty(t *testing.T) {
	s := createTestStore(t)
	got, err := s.ReadCompilations(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCompilationsByHash(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := okCompilation("x", 1)
	first.SQLHash = "same"
	second := okCompilation("y", 2)
	second.SQLHash = "same"
	require.NoError(t, s.RecordCompilation(ctx, second))
	require.NoError(t, s.RecordCompilation(ctx, first))
	require.NoError(t, s.RecordCompilation(ctx, okCompilation("z", 3)))

	got, err := s.CompilationsByHash(ctx, "same")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "x", got[0].ID)
	assert.Equal(t, "y", got[1].ID)
}

func TestLastSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	require.NoError(t, s.RecordCompilation(ctx, okCompilation("a", 7)))
	require.NoError(t, s.RecordCompilation(ctx, okCompilation("b", 3)))
	seq, err = s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
}
