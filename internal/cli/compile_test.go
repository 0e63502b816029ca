package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Text(t *testing.T) {
	out, err := execute(t, "", "compile", "--catalog", demoCatalog, "SELECT IntCol FROM foo")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT ?")
	assert.Contains(t, out, "a <http://example.org/Foo> .")
	assert.Contains(t, out, "<http://example.org/foo/int>")
}

func TestCompile_JSON(t *testing.T) {
	out, err := execute(t, "", "--format", "json", "compile", "-c", demoCatalog, "SELECT MAX(IntCol) AS m FROM foo")
	require.NoError(t, err)

	var resp struct {
		Status  string        `json:"status"`
		Data    CompileResult `json:"data"`
		TraceID string        `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"m"}, resp.Data.Columns)
	assert.Equal(t, resp.Data.ID, resp.TraceID)
	assert.Equal(t, int64(1), resp.Data.Seq)
	assert.Len(t, resp.Data.SQLHash, 64)
	assert.Contains(t, resp.Data.SPARQL, "(MAX(")
}

func TestCompile_Stdin(t *testing.T) {
	out, err := execute(t, "SELECT StringCol FROM foo;\n", "compile", "-c", demoCatalog)
	require.NoError(t, err)
	assert.Contains(t, out, "<http://example.org/foo/string>")

	out, err = execute(t, "SELECT StringCol FROM foo", "compile", "-c", demoCatalog, "-")
	require.NoError(t, err)
	assert.Contains(t, out, "<http://example.org/foo/string>")
}

func TestCompile_EmptyStdin(t *testing.T) {
	_, err := execute(t, "  \n", "compile", "-c", demoCatalog)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompile_MissingCatalog(t *testing.T) {
	out, err := execute(t, "", "compile", "SELECT IntCol FROM foo")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNoCatalog)

	out, err = execute(t, "", "compile", "-c", "/nonexistent/catalog.yaml", "SELECT IntCol FROM foo")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeCatalogLoad)
}

func TestCompile_Rejected(t *testing.T) {
	tests := []struct {
		sql  string
		code string
	}{
		{"SELECT Nope FROM foo", ErrCodeColumnNotFound},
		{"SELECT * FROM nope", ErrCodeTableNotFound},
		{"SELECT * FROM foo RIGHT JOIN bar ON foo.IntCol = bar.IntCol", ErrCodeUnsupportedJoin},
		{"SELECT IntCol FROM foo GROUP BY IntCol", ErrCodeUnsupported},
		{"SELEC IntCol FROM foo", ErrCodeSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			out, err := execute(t, "", "--format", "json", "compile", "-c", demoCatalog, tt.sql)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestCompile_RejectedText(t *testing.T) {
	out, err := execute(t, "", "compile", "-c", demoCatalog, "SELECT Nope FROM foo")
	require.Error(t, err)
	assert.Contains(t, out, "Error ["+ErrCodeColumnNotFound+"]")
	assert.Contains(t, out, "Nope")
}

func TestCompile_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.rq")
	out, err := execute(t, "", "compile", "-c", demoCatalog, "-o", path, "SELECT IntCol, StringCol FROM foo")
	require.NoError(t, err)
	assert.Contains(t, out, "Compiled 2 column(s) to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<http://example.org/foo/string>")
}

func TestCompile_DB(t *testing.T) {
	db := filepath.Join(t.TempDir(), "log.db")

	_, err := execute(t, "", "compile", "-c", demoCatalog, "--db", db, "SELECT IntCol FROM foo")
	require.NoError(t, err)

	out, err := execute(t, "", "--format", "json", "compile", "-c", demoCatalog, "--db", db, "SELECT StringCol FROM foo")
	require.NoError(t, err)

	var resp struct {
		Data CompileResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, int64(2), resp.Data.Seq, "clock resumes from the log")
}
