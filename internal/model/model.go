// Package model makes a persisted record type indexable.
//
// A Model[T] owns the index configuration for T, keeps it in sync through
// the save and destroy hooks, rebuilds it from the primary store, and
// answers queries through the bound adapter.
package model

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/Aman-CERP/bigindex/internal/adapter"
	"github.com/Aman-CERP/bigindex/internal/errors"
	"github.com/Aman-CERP/bigindex/internal/repository"
	"github.com/Aman-CERP/bigindex/internal/schema"
)

// Model is the indexing facade for records of type T.
type Model[T adapter.Record] struct {
	name      string
	indexType string
	cfg       *schema.Configuration
	registry  *repository.Registry
	repoName  string
	source    any
	finders   map[string]*schema.Field
	disabled  atomic.Bool
	logger    *slog.Logger
}

var _ adapter.Model = (*Model[adapter.Record])(nil)

type options struct {
	registry  *repository.Registry
	repoName  string
	adapter   adapter.Adapter
	indexType string
	source    any
	parent    *schema.Configuration
	logger    *slog.Logger
}

// Option configures a Model.
type Option func(*options)

// WithRegistry resolves the model's adapter through reg.
func WithRegistry(reg *repository.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithRepository pins the model to a named repository. Without it the
// model follows the context's repository scope and then the default.
func WithRepository(name string) Option {
	return func(o *options) { o.repoName = name }
}

// WithAdapter binds the model to a single adapter.
func WithAdapter(a adapter.Adapter) Option {
	return func(o *options) { o.adapter = a }
}

// WithIndexType overrides the document type, the model name by default.
func WithIndexType(t string) Option {
	return func(o *options) { o.indexType = t }
}

// WithSource sets the primary store. It should implement Scanner[T] or
// PagedFinder[T] for rebuilds and IDFinder[T] for hydration.
func WithSource(src any) Option {
	return func(o *options) { o.source = src }
}

// DerivedFrom starts the model from a snapshot of parent, the way a
// subtype inherits its parent's index definition. Later changes to either
// side do not leak into the other.
func DerivedFrom(parent *schema.Configuration) Option {
	return func(o *options) { o.parent = parent }
}

// WithLogger sets the logger, slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a model named name. The type and primary key field names are
// taken from the adapter the model resolves to at creation.
func New[T adapter.Record](name string, opts ...Option) (*Model[T], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if name == "" {
		return nil, errors.Newf(errors.ErrCodeConfigInvalid, "model name is required")
	}

	reg := o.registry
	if o.adapter != nil {
		reg = repository.NewRegistry()
		reg.Add(repository.DefaultName, o.adapter)
		o.repoName = ""
	}
	if reg == nil {
		return nil, errors.Newf(errors.ErrCodeConfigInvalid, "model %s has no registry or adapter", name).
			WithSuggestion("pass model.WithRegistry or model.WithAdapter")
	}

	repo, err := reg.Resolve(context.Background(), o.repoName)
	if err != nil {
		return nil, err
	}

	var cfg *schema.Configuration
	if o.parent != nil {
		cfg = o.parent.Derive()
	} else {
		cfg = schema.NewConfiguration(repo.Adapter.DefaultTypeField(), repo.Adapter.DefaultPrimaryKeyField())
	}

	m := &Model[T]{
		name:      name,
		indexType: o.indexType,
		cfg:       cfg,
		registry:  reg,
		repoName:  o.repoName,
		source:    o.source,
		finders:   make(map[string]*schema.Field),
		logger:    o.logger,
	}
	if m.indexType == "" {
		m.indexType = name
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	for _, f := range cfg.Fields() {
		m.finders[f.FinderName()] = f
	}
	return m, nil
}

// Name returns the model name.
func (m *Model[T]) Name() string { return m.name }

func (m *Model[T]) IndexType() string { return m.indexType }

func (m *Model[T]) Configuration() *schema.Configuration { return m.cfg }

// IndexID returns "{IndexType}:{RecordID}".
func (m *Model[T]) IndexID(r adapter.Record) string {
	return m.indexType + ":" + r.RecordID()
}

// Adapter resolves the adapter for ctx.
func (m *Model[T]) Adapter(ctx context.Context) (adapter.Adapter, error) {
	repo, err := m.registry.Resolve(ctx, m.repoName)
	if err != nil {
		return nil, err
	}
	return repo.Adapter, nil
}

// Repository resolves the repository for ctx.
func (m *Model[T]) Repository(ctx context.Context) (*repository.Repository, error) {
	return m.registry.Resolve(ctx, m.repoName)
}

// Disable turns save indexing off or back on.
func (m *Model[T]) Disable(disabled bool) { m.disabled.Store(disabled) }

// Disabled reports whether save indexing is off.
func (m *Model[T]) Disabled() bool { return m.disabled.Load() }

// RequiredFields names the fields every index document carries.
func (m *Model[T]) RequiredFields() []string {
	out := make([]string, 0, 3)
	seen := make(map[string]bool, 3)
	for _, name := range []string{m.cfg.TypeField, m.cfg.PrimaryKeyField, "id"} {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// IndexView declares a named subset of fields.
func (m *Model[T]) IndexView(name string, fields ...string) {
	m.cfg.DefineView(name, fields)
}

// Document returns the default view's field values for r.
func (m *Model[T]) Document(r adapter.Record) (map[string]any, error) {
	return m.document(r, schema.DefaultView)
}

func (m *Model[T]) document(r adapter.Record, view string) (map[string]any, error) {
	fields, err := m.cfg.FieldsForView(view)
	if err != nil {
		return nil, err
	}
	doc := make(map[string]any, len(fields))
	for _, f := range fields {
		if m.cfg.Excluded(f.Name()) {
			continue
		}
		v, err := f.Value(r)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", m.indexType, r.RecordID(), err)
		}
		doc[f.Name()] = v
	}
	if view == schema.DefaultView {
		for _, name := range m.cfg.Associations() {
			if v, ok := schema.Attribute(r, name); ok {
				doc[name] = v
			}
		}
	}
	return doc, nil
}

// Hydrate loads records by primary key through the source's IDFinder, in
// the order of ids.
func (m *Model[T]) Hydrate(ctx context.Context, ids []string) ([]adapter.Record, error) {
	records, err := m.findByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]adapter.Record, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out, nil
}

func (m *Model[T]) findByIDs(ctx context.Context, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	finder, ok := m.source.(IDFinder[T])
	if !ok {
		return nil, errors.Newf(errors.ErrCodeNoIterationCapability, "%s source cannot load records by id", m.name).
			WithSuggestion("implement model.IDFinder on the source")
	}
	found, err := finder.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]T, len(found))
	for _, r := range found {
		byID[r.RecordID()] = r
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// DropIndex removes every document of the model's type.
func (m *Model[T]) DropIndex(ctx context.Context) error {
	a, err := m.Adapter(ctx)
	if err != nil {
		return err
	}
	return a.DropIndex(ctx, m)
}

// OptimizeIndex asks the backend to compact its index.
func (m *Model[T]) OptimizeIndex(ctx context.Context) error {
	a, err := m.Adapter(ctx)
	if err != nil {
		return err
	}
	return a.OptimizeIndex(ctx)
}

// Indexed reports whether v is an indexable model.
func Indexed(v any) bool {
	_, ok := v.(adapter.Model)
	return ok
}

// viewModel presents a model to the adapter with documents restricted to
// one view.
type viewModel[T adapter.Record] struct {
	*Model[T]
	view string
}

func (v viewModel[T]) Document(r adapter.Record) (map[string]any, error) {
	return v.document(r, v.view)
}
