package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/bigindex/internal/errors"
	"github.com/Aman-CERP/bigindex/internal/schema"
)

// isolate points the user config at an empty directory and clears the
// BIGINDEX_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	for _, k := range []string{"BIGINDEX_ENV", "BIGINDEX_ADAPTER", "BIGINDEX_LOG_LEVEL", "BIGINDEX_BATCH_SIZE"} {
		t.Setenv(k, "")
	}
	return xdg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

const booksYAML = `
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
        boost: 2
    views:
      compact: [title]
    exclude_fields: [author]
    include: [tags]
    auto_commit: false
`

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	// Given: no configuration
	cfg := NewConfig()

	// Then: one development environment with a SQLite default repository
	assert.Equal(t, DefaultEnv, cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultBatchSize, cfg.Rebuild.BatchSize)
	env, err := cfg.Environment()
	require.NoError(t, err)
	assert.Equal(t, DefaultRepository, env.DefaultRepository)
	assert.Equal(t, "sqlite", env.Repositories[DefaultRepository].Adapter)
	require.NoError(t, cfg.Validate())
}

func TestLoad_NoFilesUsesDefaultsAndResolvesPaths(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	cfg, err := Load(dir)

	require.NoError(t, err)
	env, _ := cfg.Environment()
	assert.Equal(t, filepath.Join(dir, ".bigindex", "index.db"), env.Repositories[DefaultRepository].Path)
	assert.Empty(t, cfg.Models)
}

func TestLoad_ProjectFileDeclaresModels(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectFile), booksYAML)

	cfg, err := Load(dir)

	require.NoError(t, err)
	require.Equal(t, []string{"Book"}, cfg.ModelNames())
	book := cfg.Models["Book"]
	assert.Equal(t, SourceBadger, book.Source.Kind)
	assert.Equal(t, filepath.Join(dir, "data", "books"), book.Source.DSN)
	assert.Equal(t, "book:", book.Source.Prefix)
	require.Len(t, book.Fields, 2)
	assert.Equal(t, "writer", book.Fields[1].Finder)
	assert.Equal(t, []string{"title"}, book.Views["compact"])
	assert.Equal(t, []string{"author"}, book.ExcludeFields)
	assert.Equal(t, []string{"tags"}, book.Include)
	require.NotNil(t, book.AutoCommit)
	assert.False(t, *book.AutoCommit)
}

func TestLoad_ProjectOverridesUserConfig(t *testing.T) {
	// Given: a user config and a project config that disagree
	xdg := isolate(t)
	writeFile(t, filepath.Join(xdg, "bigindex", "config.yaml"), `
log_level: warn
rebuild:
  batch_size: 50
environments:
  development:
    repositories:
      search:
        adapter: bleve
        path: /var/lib/bigindex/search
`)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectFile), `
log_level: debug
`)

	// When: loading
	cfg, err := Load(dir)

	// Then: project values win and user-only values survive
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50, cfg.Rebuild.BatchSize)
	env, _ := cfg.Environment()
	assert.Equal(t, "bleve", env.Repositories["search"].Adapter)
	assert.Equal(t, "/var/lib/bigindex/search", env.Repositories["search"].Path)
	assert.Contains(t, env.Repositories, DefaultRepository, "defaults merge per repository")
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectFile), `
environments:
  production:
    default_repository: main
    repositories:
      main:
        adapter: sqlite
        path: prod.db
`)
	t.Setenv("BIGINDEX_ENV", "production")
	t.Setenv("BIGINDEX_ADAPTER", "bleve")
	t.Setenv("BIGINDEX_LOG_LEVEL", "error")
	t.Setenv("BIGINDEX_BATCH_SIZE", "25")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 25, cfg.Rebuild.BatchSize)
	env, _ := cfg.Environment()
	assert.Equal(t, "bleve", env.Repositories["main"].Adapter)
	assert.Equal(t, filepath.Join(dir, "prod.db"), env.Repositories["main"].Path)
}

func TestLoad_BadBatchSizeEnv(t *testing.T) {
	isolate(t)
	t.Setenv("BIGINDEX_BATCH_SIZE", "lots")

	_, err := Load(t.TempDir())

	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}

func TestLoadWith_ExplicitFileMustExist(t *testing.T) {
	isolate(t)

	_, err := LoadWith(t.TempDir(), Options{File: filepath.Join(t.TempDir(), "missing.yaml")})

	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}

func TestLoadWith_EnvOptionBeatsVariable(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "custom.yaml"), `
environments:
  test:
    default_repository: mem
    repositories:
      mem:
        adapter: bleve
`)
	t.Setenv("BIGINDEX_ENV", "production")

	cfg, err := LoadWith(dir, Options{File: filepath.Join(dir, "custom.yaml"), Env: "test"})

	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Env)
	env, _ := cfg.Environment()
	assert.Equal(t, "", env.Repositories["mem"].Path, "empty paths stay in-memory")
}

func TestLoad_MalformedYAML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectFile), "models: [unclosed")

	_, err := Load(dir)

	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}

func TestValidate_Rejects(t *testing.T) {
	badger := SourceConfig{Kind: SourceBadger, DSN: "data"}
	title := []FieldConfig{{Name: "title"}}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"batch size", func(c *Config) { c.Rebuild.BatchSize = 0 }},
		{"unknown env", func(c *Config) { c.Env = "staging" }},
		{"missing default repository", func(c *Config) {
			env := c.Environments[DefaultEnv]
			env.DefaultRepository = "nope"
			c.Environments[DefaultEnv] = env
		}},
		{"unknown adapter", func(c *Config) {
			repo := c.Environments[DefaultEnv].Repositories[DefaultRepository]
			repo.Adapter = "elasticsearch"
			c.Environments[DefaultEnv].Repositories[DefaultRepository] = repo
		}},
		{"unknown model repository", func(c *Config) {
			c.Models["Book"] = ModelConfig{Repository: "archive", Source: badger, Fields: title}
		}},
		{"unknown source kind", func(c *Config) {
			c.Models["Book"] = ModelConfig{Source: SourceConfig{Kind: "csv"}, Fields: title}
		}},
		{"sql source without table", func(c *Config) {
			c.Models["Book"] = ModelConfig{Source: SourceConfig{Kind: SourceSQLite, DSN: "books.db"}, Fields: title}
		}},
		{"no fields", func(c *Config) {
			c.Models["Book"] = ModelConfig{Source: badger}
		}},
		{"unknown field type", func(c *Config) {
			c.Models["Book"] = ModelConfig{Source: badger, Fields: []FieldConfig{{Name: "title", Type: "blob"}}}
		}},
		{"view names undeclared field", func(c *Config) {
			c.Models["Book"] = ModelConfig{Source: badger, Fields: title, Views: map[string][]string{"v": {"isbn"}}}
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig()
			tc.mutate(cfg)

			err := cfg.Validate()

			assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestFieldConfig_FieldOptions(t *testing.T) {
	fc := FieldConfig{Name: "author", Type: "string", Finder: "writer", Boost: 2, Facet: true, Extra: map[string]any{"analyzer": "en"}}

	f, err := schema.NewField(fc.Name, fc.FieldOptions()...)

	require.NoError(t, err)
	assert.Equal(t, schema.FieldString, f.Type())
	assert.Equal(t, "writer", f.FinderName())
	assert.Equal(t, 2.0, f.Boost())
	assert.True(t, f.Facet())
	v, ok := f.Option("analyzer")
	assert.True(t, ok)
	assert.Equal(t, "en", v)
}

func TestWriteYAML_RoundTripsThroughLoad(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.LogLevel = "warn"
	require.NoError(t, cfg.WriteYAML(filepath.Join(dir, ProjectFile)))

	loaded, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "warn", loaded.LogLevel)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ProjectFile), "")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	got, err := FindProjectRoot(nested)

	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestGetUserConfigPath_HonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	assert.Equal(t, filepath.Join("/tmp/xdg", "bigindex", "config.yaml"), GetUserConfigPath())
}
