package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelgraph/internal/analytics"
	"reelgraph/internal/loader"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

// isolateConfig keeps config discovery away from the developer's own files
func isolateConfig(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("REELGRAPH_CONFIG", "")
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Chdir(t.TempDir())
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movies.json")
	require.NoError(t, os.WriteFile(path, []byte(statsFixture), 0o644))
	return path
}

func TestStatsCommandJSON(t *testing.T) {
	path := writeFixture(t)

	out, err := run(t, "stats", path, "--json")
	require.NoError(t, err)

	var report analytics.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 5, report.Nodes)
	assert.Equal(t, 2, report.Components)
	require.NotNil(t, report.Diameter)
	assert.Equal(t, 3, *report.Diameter)
}

func TestLargestCommand(t *testing.T) {
	path := writeFixture(t)
	out := filepath.Join(t.TempDir(), "largest.yaml")

	_, err := run(t, "largest", path, "-o", out)
	require.NoError(t, err)

	f, err := loader.LoadFile(out)
	require.NoError(t, err)
	assert.Len(t, f.Nodes, 4)
	assert.Len(t, f.Edges, 3)
}

func TestImportAndDatasetsCommands(t *testing.T) {
	isolateConfig(t)
	path := writeFixture(t)
	db := filepath.Join(t.TempDir(), "archive.db")

	out, err := run(t, "import", path, "--name", "classics", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "classics")

	out, err = run(t, "datasets", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "classics")

	out, err = run(t, "datasets", "show", "classics", "--db", db, "--format", "json")
	require.NoError(t, err)
	f, err := loader.Parse([]byte(out), "json")
	require.NoError(t, err)
	assert.Len(t, f.Nodes, 5)

	_, err = run(t, "datasets", "delete", "classics", "--db", db)
	require.NoError(t, err)
	_, err = run(t, "datasets", "delete", "classics", "--db", db)
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reelgraph.yaml")

	_, err := run(t, "config", "init", "--path", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = run(t, "config", "init", "--path", path)
	assert.Error(t, err, "refuses to overwrite without --force")

	_, err = run(t, "config", "init", "--path", path, "--force")
	assert.NoError(t, err)
}
