package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Text(t *testing.T) {
	out, err := execute(t, "", "catalog", demoCatalog)
	require.NoError(t, err)
	assert.Contains(t, out, "Catalog demo: 2 table(s)")
	assert.Contains(t, out, "<http://example.org/Foo>")
	assert.Contains(t, out, "NullableIntCol")
	assert.Contains(t, out, "INTEGER NULL")
}

func TestCatalog_JSON(t *testing.T) {
	out, err := execute(t, "", "--format", "json", "catalog", filepath.Join("..", "catalog", "testdata", "demo.cue"))
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   CatalogResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "demo", resp.Data.Catalog)
	require.Len(t, resp.Data.Tables, 2)

	foo := resp.Data.Tables[0]
	assert.Equal(t, "http://example.org/Foo", foo.URI)
	require.Len(t, foo.Columns, 4)
	assert.Equal(t, ColumnSummary{Name: "IntCol", Type: "INTEGER", URI: "http://example.org/foo/int"}, foo.Columns[0])
	assert.True(t, foo.Columns[3].Nullable)
}

func TestCatalog_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	def := `catalog: bad
schemas:
  - name: s
    tables:
      - name: t
        uri: http://example.org/T
        columns:
          - {name: a, uri: "http://example.org/a"}
          - {name: a, uri: "http://example.org/a2"}
          - {name: b, uri: "http://example.org/b", type: BLOB}
`
	require.NoError(t, os.WriteFile(path, []byte(def), 0644))

	out, err := execute(t, "", "catalog", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Catalog invalid")
	assert.Contains(t, out, "duplicate column")

	out, err = execute(t, "", "--format", "json", "catalog", path)
	require.Error(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidCatalog, resp.Error.Code)
	assert.Equal(t, "catalog has 2 problem(s)", resp.Error.Message)
}

func TestCatalog_NotFound(t *testing.T) {
	out, err := execute(t, "", "catalog", "/nonexistent/catalog.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeCatalogLoad)
}
