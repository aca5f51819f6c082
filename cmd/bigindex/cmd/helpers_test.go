package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/bigindex/internal/source"
)

const projectYAML = `
log_level: warn
models:
  Book:
    source:
      kind: badger
      dsn: data/books
      prefix: "book:"
    fields:
      - name: title
      - name: author
        type: string
        finder: writer
    views:
      titles: [title]
`

// newProject writes a configuration declaring a Book model over a seeded
// Badger store and returns the project directory.
func newProject(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"BIGINDEX_ENV", "BIGINDEX_ADAPTER", "BIGINDEX_LOG_LEVEL", "BIGINDEX_BATCH_SIZE"} {
		t.Setenv(k, "")
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".bigindex.yaml"), []byte(projectYAML), 0644))

	src, err := source.OpenBadger(source.BadgerOptions{Dir: filepath.Join(dir, "data", "books"), Prefix: "book:"})
	require.NoError(t, err)
	require.NoError(t, src.Put(t.Context(),
		source.Row{ID: "1", Values: map[string]any{"title": "Dune", "author": "Frank Herbert"}},
		source.Row{ID: "2", Values: map[string]any{"title": "Emma", "author": "Jane Austen"}},
		source.Row{ID: "3", Values: map[string]any{"title": "Dune Messiah", "author": "Frank Herbert"}},
	))
	require.NoError(t, src.Close())
	return dir
}

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}
