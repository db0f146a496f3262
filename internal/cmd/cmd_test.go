package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	assert "github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, dir string, name string, data string) {
	t.Helper()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o600))
}

func TestExtractCmdWithConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "norppa.yaml", `
version: 1
queries:
  - path: "*.sql"
extract:
  tables: true
`)
	writeFile(t, dir, "report.sql", "select * from person p join pet on pet.owner_id = p.id")

	var out bytes.Buffer
	cmd := ExtractCmd{Config: "norppa.yaml"}
	err := cmd.Run(&Context{WorkingDir: dir, Out: &out})
	assert.NoError(t, err)

	var report Report
	assert.NoError(t, yaml.Unmarshal(out.Bytes(), &report))

	assert.Len(t, report.Files, 1)
	assert.Len(t, report.Files[0].Tables, 2)
	assert.Equal(t, "person", report.Files[0].Tables[0].Table)
	assert.Empty(t, report.Files[0].Statements)
}

func TestExtractCmdWithExplicitFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.sql", "select 1; select 2")

	var out bytes.Buffer
	cmd := ExtractCmd{Config: "norppa.yaml", Files: []string{"a.sql"}}
	err := cmd.Run(&Context{WorkingDir: dir, Out: &out})
	assert.NoError(t, err)

	var report Report
	assert.NoError(t, yaml.Unmarshal(out.Bytes(), &report))

	// No config file: every extractor runs.
	assert.Len(t, report.Files, 1)
	assert.Len(t, report.Files[0].Statements, 2)
}

func TestExtractCmdNoInput(t *testing.T) {
	var out bytes.Buffer
	cmd := ExtractCmd{Config: "norppa.yaml"}
	err := cmd.Run(&Context{WorkingDir: t.TempDir(), Out: &out})
	assert.Error(t, err)
}

func TestQueryCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := QueryCmd{
		SQL:      "SELECT num_statements('select 1; select 2') AS n, parse_tables('select * from person') AS tables",
		Database: ":memory:",
		Format:   "json",
	}

	err := cmd.Run(&Context{WorkingDir: t.TempDir(), Out: &out})
	assert.NoError(t, err)

	var results []map[string]any
	assert.NoError(t, json.Unmarshal(out.Bytes(), &results))
	assert.Len(t, results, 1)
	assert.Equal(t, float64(2), results[0]["n"])
	assert.Equal(t, `["person"]`, results[0]["tables"])
}
