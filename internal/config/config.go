// Package config loads bigindex configuration: the repositories of each
// environment and the declaratively indexed models.
package config

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/bigindex/internal/adapter"
	"github.com/Aman-CERP/bigindex/internal/errors"
	"github.com/Aman-CERP/bigindex/internal/schema"
	"github.com/Aman-CERP/bigindex/internal/store"
)

const (
	// ProjectFile is the per-project configuration file name.
	ProjectFile = ".bigindex.yaml"
	// DefaultEnv is the environment used when none is selected.
	DefaultEnv = "development"
	// DefaultRepository is the repository name used when none is declared.
	DefaultRepository = "default"
	// DefaultBatchSize is the rebuild batch size.
	DefaultBatchSize = 100
)

// Source kinds.
const (
	SourceBadger   = "badger"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// Config is the complete bigindex configuration.
type Config struct {
	// Env selects the active environment.
	Env          string                       `yaml:"env" json:"env"`
	LogLevel     string                       `yaml:"log_level" json:"log_level"`
	Environments map[string]EnvironmentConfig `yaml:"environments" json:"environments"`
	Models       map[string]ModelConfig       `yaml:"models" json:"models"`
	Rebuild      RebuildConfig                `yaml:"rebuild" json:"rebuild"`
}

// EnvironmentConfig declares the index repositories of one environment.
type EnvironmentConfig struct {
	DefaultRepository string                    `yaml:"default_repository" json:"default_repository"`
	Repositories      map[string]adapter.Config `yaml:"repositories" json:"repositories"`
}

// ModelConfig declares an indexed model over schemaless rows.
type ModelConfig struct {
	// IndexType is the type stored with each document. Defaults to the model name.
	IndexType string `yaml:"index_type" json:"index_type"`
	// Repository pins the model to a repository. Empty uses the default.
	Repository    string              `yaml:"repository" json:"repository"`
	Source        SourceConfig        `yaml:"source" json:"source"`
	Fields        []FieldConfig       `yaml:"fields" json:"fields"`
	Views         map[string][]string `yaml:"views" json:"views"`
	AutoSave      *bool               `yaml:"auto_save" json:"auto_save"`
	AutoCommit    *bool               `yaml:"auto_commit" json:"auto_commit"`
	ExcludeFields []string            `yaml:"exclude_fields" json:"exclude_fields"`
	// Include names row attributes indexed as text next to the fields.
	Include []string `yaml:"include" json:"include"`
}

// SourceConfig locates a model's primary store.
type SourceConfig struct {
	// Kind is badger, sqlite or postgres.
	Kind string `yaml:"kind" json:"kind"`
	// DSN is a directory for badger, a file for sqlite, a connection
	// string for postgres.
	DSN    string `yaml:"dsn" json:"dsn"`
	Table  string `yaml:"table" json:"table"`
	Key    string `yaml:"key" json:"key"`
	Prefix string `yaml:"prefix" json:"prefix"`
}

// FieldConfig declares one indexed field.
type FieldConfig struct {
	Name   string         `yaml:"name" json:"name"`
	Type   string         `yaml:"type" json:"type"`
	Finder string         `yaml:"finder" json:"finder"`
	Boost  float64        `yaml:"boost" json:"boost"`
	Facet  bool           `yaml:"facet" json:"facet"`
	Extra  map[string]any `yaml:"extra" json:"extra"`
}

// RebuildConfig holds rebuild defaults.
type RebuildConfig struct {
	BatchSize int `yaml:"batch_size" json:"batch_size"`
}

// NewConfig returns the defaults: one development environment with a
// SQLite repository under .bigindex/.
func NewConfig() *Config {
	return &Config{
		Env:      DefaultEnv,
		LogLevel: "info",
		Environments: map[string]EnvironmentConfig{
			DefaultEnv: {
				DefaultRepository: DefaultRepository,
				Repositories: map[string]adapter.Config{
					DefaultRepository: {
						Adapter: string(store.BackendSQLite),
						Path:    filepath.Join(".bigindex", "index.db"),
					},
				},
			},
		},
		Models:  map[string]ModelConfig{},
		Rebuild: RebuildConfig{BatchSize: DefaultBatchSize},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
// $XDG_CONFIG_HOME/bigindex/config.yaml, or ~/.config/bigindex/config.yaml.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "bigindex", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "bigindex", "config.yaml")
	}
	return filepath.Join(home, ".config", "bigindex", "config.yaml")
}

// Options select what Load reads beyond the defaults.
type Options struct {
	// File replaces .bigindex.yaml in the project directory. It must exist.
	File string
	// Env selects the environment, over the files and BIGINDEX_ENV.
	Env string
}

// Load loads configuration for the project in dir. Later layers win:
//  1. Hardcoded defaults
//  2. User config (GetUserConfigPath)
//  3. Project config (.bigindex.yaml in dir)
//  4. Environment variables (BIGINDEX_*)
//
// Relative repository paths and file sources are resolved against dir.
func Load(dir string) (*Config, error) {
	return LoadWith(dir, Options{})
}

// LoadWith is Load with explicit options.
func LoadWith(dir string, opts Options) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if opts.File != "" {
		if err := cfg.loadYAML(opts.File); err != nil {
			return nil, err
		}
	} else if path := filepath.Join(dir, ProjectFile); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(opts.Env); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.resolvePaths(dir)
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.New(errors.ErrCodeConfigInvalid, "failed to read config file "+path, err)
	}
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return errors.New(errors.ErrCodeConfigInvalid, "failed to parse config file "+path, err).
			WithDetail("path", path)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c. Repositories merge
// per name within an environment; models replace per name.
func (c *Config) mergeWith(other *Config) {
	if other.Env != "" {
		c.Env = other.Env
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.Rebuild.BatchSize != 0 {
		c.Rebuild.BatchSize = other.Rebuild.BatchSize
	}

	for name, env := range other.Environments {
		merged := c.Environments[name]
		merged.Repositories = maps.Clone(merged.Repositories)
		if merged.Repositories == nil {
			merged.Repositories = map[string]adapter.Config{}
		}
		if env.DefaultRepository != "" {
			merged.DefaultRepository = env.DefaultRepository
		}
		maps.Copy(merged.Repositories, env.Repositories)
		c.Environments[name] = merged
	}

	maps.Copy(c.Models, other.Models)
}

func (c *Config) applyEnvOverrides(env string) error {
	if v := os.Getenv("BIGINDEX_ENV"); v != "" {
		c.Env = v
	}
	if env != "" {
		c.Env = env
	}
	if v := os.Getenv("BIGINDEX_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("BIGINDEX_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.New(errors.ErrCodeConfigInvalid, "BIGINDEX_BATCH_SIZE must be an integer", err)
		}
		c.Rebuild.BatchSize = n
	}
	if v := os.Getenv("BIGINDEX_ADAPTER"); v != "" {
		env, ok := c.Environments[c.Env]
		if !ok {
			return nil
		}
		repos := maps.Clone(env.Repositories)
		if repos == nil {
			repos = map[string]adapter.Config{}
		}
		repo := repos[env.DefaultRepository]
		repo.Adapter = v
		repos[env.DefaultRepository] = repo
		env.Repositories = repos
		c.Environments[c.Env] = env
	}
	return nil
}

// Environment returns the active environment.
func (c *Config) Environment() (EnvironmentConfig, error) {
	env, ok := c.Environments[c.Env]
	if !ok {
		return EnvironmentConfig{}, errors.Newf(errors.ErrCodeConfigInvalid, "unknown environment %q", c.Env).
			WithSuggestion("declare it under environments: or set BIGINDEX_ENV")
	}
	return env, nil
}

// ModelNames returns the declared models, sorted.
func (c *Config) ModelNames() []string {
	return slices.Sorted(maps.Keys(c.Models))
}

func invalid(format string, args ...any) error {
	return errors.Newf(errors.ErrCodeConfigInvalid, format, args...)
}

// Validate checks the active environment and every model.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel)
	}
	if c.Rebuild.BatchSize <= 0 {
		return invalid("rebuild.batch_size must be positive, got %d", c.Rebuild.BatchSize)
	}

	env, err := c.Environment()
	if err != nil {
		return err
	}
	if _, ok := env.Repositories[env.DefaultRepository]; !ok {
		return invalid("environment %s: default_repository %q is not declared", c.Env, env.DefaultRepository)
	}
	for name, repo := range env.Repositories {
		switch store.Backend(strings.ToLower(repo.Adapter)) {
		case "", store.BackendSQLite, store.BackendBleve:
		default:
			return invalid("repository %s: adapter must be '%s' or '%s', got %s",
				name, store.BackendSQLite, store.BackendBleve, repo.Adapter)
		}
	}

	for _, name := range c.ModelNames() {
		if err := c.Models[name].validate(name, env); err != nil {
			return err
		}
	}
	return nil
}

func (m ModelConfig) validate(name string, env EnvironmentConfig) error {
	if m.Repository != "" {
		if _, ok := env.Repositories[m.Repository]; !ok {
			return invalid("model %s: repository %q is not declared", name, m.Repository)
		}
	}

	switch m.Source.Kind {
	case SourceBadger:
		if m.Source.DSN == "" {
			return invalid("model %s: badger source needs a dsn directory", name)
		}
	case SourceSQLite, SourcePostgres:
		if m.Source.DSN == "" || m.Source.Table == "" {
			return invalid("model %s: %s source needs dsn and table", name, m.Source.Kind)
		}
	default:
		return invalid("model %s: source.kind must be '%s', '%s', or '%s', got %q",
			name, SourceBadger, SourceSQLite, SourcePostgres, m.Source.Kind)
	}

	if len(m.Fields) == 0 {
		return invalid("model %s: at least one field is required", name)
	}
	declared := make(map[string]bool, len(m.Fields))
	for _, f := range m.Fields {
		if f.Name == "" {
			return invalid("model %s: field without a name", name)
		}
		if f.Type != "" && !schema.FieldType(f.Type).Valid() {
			return invalid("model %s: field %s has unknown type %q", name, f.Name, f.Type)
		}
		declared[f.Name] = true
	}
	for view, fields := range m.Views {
		for _, f := range fields {
			if !declared[f] {
				return invalid("model %s: view %s names undeclared field %q", name, view, f)
			}
		}
	}
	return nil
}

// FieldOptions converts the declaration to schema options.
func (f FieldConfig) FieldOptions() []schema.FieldOption {
	var opts []schema.FieldOption
	if f.Type != "" {
		opts = append(opts, schema.WithType(schema.FieldType(f.Type)))
	}
	if f.Finder != "" {
		opts = append(opts, schema.WithFinderName(f.Finder))
	}
	if f.Boost != 0 {
		opts = append(opts, schema.WithBoost(f.Boost))
	}
	if f.Facet {
		opts = append(opts, schema.WithFacet())
	}
	for _, k := range slices.Sorted(maps.Keys(f.Extra)) {
		opts = append(opts, schema.WithExtra(k, f.Extra[k]))
	}
	return opts
}

func (c *Config) resolvePaths(dir string) {
	abs := func(p string) string {
		if p == "" || p == ":memory:" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for name, env := range c.Environments {
		repos := make(map[string]adapter.Config, len(env.Repositories))
		for rn, repo := range env.Repositories {
			repo.Path = abs(repo.Path)
			repos[rn] = repo
		}
		env.Repositories = repos
		c.Environments[name] = env
	}
	for name, m := range c.Models {
		if m.Source.Kind != SourcePostgres {
			m.Source.DSN = abs(m.Source.DSN)
			c.Models[name] = m
		}
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New(errors.ErrCodeConfigInvalid, "failed to marshal config", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.ErrCodeConfigInvalid, "failed to write config file", err)
	}
	return nil
}

// FindProjectRoot walks up from startDir to the first directory holding
// .bigindex.yaml or .git. It returns startDir when neither is found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for current := dir; ; {
		if fileExists(filepath.Join(current, ProjectFile)) || dirExists(filepath.Join(current, ".git")) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir, nil
		}
		current = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
