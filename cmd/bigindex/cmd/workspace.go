package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Aman-CERP/bigindex/internal/config"
	"github.com/Aman-CERP/bigindex/internal/errors"
	"github.com/Aman-CERP/bigindex/internal/model"
	"github.com/Aman-CERP/bigindex/internal/repository"
	"github.com/Aman-CERP/bigindex/internal/source"
)

// workspace holds the repositories and models declared by a configuration.
type workspace struct {
	registry *repository.Registry
	models   map[string]*model.Model[source.Row]
	closers  []io.Closer
}

// openWorkspace opens the active environment's repositories and the
// sources of the named models, all models when names is empty.
func openWorkspace(ctx context.Context, cfg *config.Config, names []string, logger *slog.Logger) (*workspace, error) {
	env, err := cfg.Environment()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		names = cfg.ModelNames()
	}
	for _, name := range names {
		if _, ok := cfg.Models[name]; !ok {
			return nil, errors.Newf(errors.ErrCodeConfigInvalid, "unknown model %q", name).
				WithSuggestion(fmt.Sprintf("declared models: %v", cfg.ModelNames()))
		}
	}

	ws := &workspace{
		registry: repository.NewRegistry(repository.WithDefault(env.DefaultRepository)),
		models:   make(map[string]*model.Model[source.Row], len(names)),
	}
	for name, repoCfg := range env.Repositories {
		if _, err := ws.registry.Register(name, repoCfg); err != nil {
			_ = ws.Close()
			return nil, err
		}
	}

	for _, name := range names {
		m, err := ws.openModel(ctx, name, cfg.Models[name], logger)
		if err != nil {
			_ = ws.Close()
			return nil, err
		}
		ws.models[name] = m
	}
	return ws, nil
}

func (ws *workspace) openModel(ctx context.Context, name string, mc config.ModelConfig, logger *slog.Logger) (*model.Model[source.Row], error) {
	src, err := openSource(ctx, mc.Source)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	ws.closers = append(ws.closers, src)

	opts := []model.Option{
		model.WithRegistry(ws.registry),
		model.WithSource(src),
		model.WithLogger(logger.With(slog.String("model", name))),
	}
	if mc.Repository != "" {
		opts = append(opts, model.WithRepository(mc.Repository))
	}
	if mc.IndexType != "" {
		opts = append(opts, model.WithIndexType(mc.IndexType))
	}
	m, err := model.New[source.Row](name, opts...)
	if err != nil {
		return nil, err
	}

	for _, f := range mc.Fields {
		if _, err := m.Index(f.Name, f.FieldOptions()...); err != nil {
			return nil, err
		}
	}
	for view, fields := range mc.Views {
		m.IndexView(view, fields...)
	}
	cfg := m.Configuration()
	cfg.Exclude(mc.ExcludeFields...)
	cfg.IncludeAssociations(mc.Include...)
	if mc.AutoSave != nil {
		cfg.AutoSave = *mc.AutoSave
	}
	if mc.AutoCommit != nil {
		cfg.AutoCommit = *mc.AutoCommit
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// openSource opens a model's primary store. The caller closes it.
func openSource(ctx context.Context, sc config.SourceConfig) (io.Closer, error) {
	switch sc.Kind {
	case config.SourceBadger:
		return source.OpenBadger(source.BadgerOptions{Dir: sc.DSN, Prefix: sc.Prefix})
	case config.SourceSQLite:
		return source.OpenSQL(ctx, source.SQLOptions{Dialect: source.DialectSQLite, DSN: sc.DSN, Table: sc.Table, KeyColumn: sc.Key})
	case config.SourcePostgres:
		return source.OpenSQL(ctx, source.SQLOptions{Dialect: source.DialectPostgres, DSN: sc.DSN, Table: sc.Table, KeyColumn: sc.Key})
	}
	return nil, errors.Newf(errors.ErrCodeConfigInvalid, "unknown source kind %q", sc.Kind)
}

// Model returns an opened model.
func (ws *workspace) Model(name string) *model.Model[source.Row] {
	return ws.models[name]
}

// Close closes the sources and then the repositories.
func (ws *workspace) Close() error {
	var first error
	for _, c := range ws.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	ws.closers = nil
	if err := ws.registry.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
