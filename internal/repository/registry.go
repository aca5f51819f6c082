// Package repository binds names to configured adapters.
//
// A Registry maps repository names to adapters. Scoped overrides are
// carried in a context.Context: With runs a function against a child
// context whose stack has one more repository on top, so overrides are
// request scoped and unwind with the context.
package repository

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/Aman-CERP/bigindex/internal/adapter"
	"github.com/Aman-CERP/bigindex/internal/errors"
	"github.com/Aman-CERP/bigindex/internal/store"
)

// DefaultName is the repository used when nothing else is selected.
const DefaultName = "default"

// Repository is a named adapter instance.
type Repository struct {
	Name    string
	Adapter adapter.Adapter
}

// Opener builds an adapter from its configuration.
type Opener func(cfg adapter.Config) (adapter.Adapter, error)

// Registry holds the name to repository map.
type Registry struct {
	mu          sync.RWMutex
	repos       map[string]*Repository
	defaultName string
	open        Opener
}

// Option configures a Registry.
type Option func(*Registry)

// WithOpener replaces the adapter factory, store.Open by default.
func WithOpener(open Opener) Option {
	return func(r *Registry) {
		r.open = open
	}
}

// WithDefault sets the default repository name.
func WithDefault(name string) Option {
	return func(r *Registry) {
		r.defaultName = name
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		repos:       make(map[string]*Repository),
		defaultName: DefaultName,
		open:        store.Open,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register builds an adapter from cfg and stores it under name, replacing
// any existing entry. The replaced adapter is closed.
func (r *Registry) Register(name string, cfg adapter.Config) (*Repository, error) {
	a, err := r.open(cfg)
	if err != nil {
		return nil, err
	}
	repo := r.Add(name, a)
	slog.Debug("repository_registered",
		slog.String("repository", name),
		slog.String("adapter", a.Name()),
		slog.String("path", cfg.Path))
	return repo, nil
}

// Add stores an already built adapter under name, replacing any existing
// entry. The replaced adapter is closed unless it is the same adapter.
func (r *Registry) Add(name string, a adapter.Adapter) *Repository {
	repo := &Repository{Name: name, Adapter: a}

	r.mu.Lock()
	old := r.repos[name]
	r.repos[name] = repo
	r.mu.Unlock()

	if old != nil && old.Adapter != a {
		if err := old.Adapter.Close(); err != nil {
			slog.Warn("repository_close_failed",
				slog.String("repository", name),
				slog.String("error", err.Error()))
		}
	}
	return repo
}

// Get returns the repository registered under name.
func (r *Registry) Get(name string) (*Repository, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	repo, ok := r.repos[name]
	return repo, ok
}

// Remove unregisters name and closes its adapter. Removing an absent name
// is a no-op.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	repo, ok := r.repos[name]
	delete(r.repos, name)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return repo.Adapter.Close()
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.repos))
	for name := range r.repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultName returns the name Resolve falls back to.
func (r *Registry) DefaultName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultName
}

// SetDefault changes the default repository name.
func (r *Registry) SetDefault(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultName = name
}

// Resolve picks a repository: the named one when name is set, else the top
// of ctx's stack, else the default.
func (r *Registry) Resolve(ctx context.Context, name string) (*Repository, error) {
	if name == "" {
		if repo, ok := Current(ctx); ok {
			return repo, nil
		}
		name = r.DefaultName()
	}

	repo, ok := r.Get(name)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnknownRepository, "unknown repository: %s", name).
			WithDetail("repository", name).
			WithSuggestion("register the repository or check the environment's repositories")
	}
	return repo, nil
}

// With runs fn against a child of ctx with repo on top of the stack. ctx
// itself is never modified, so the stack is restored on every exit path.
func (r *Registry) With(ctx context.Context, repo *Repository, fn func(ctx context.Context) error) error {
	return fn(push(ctx, repo))
}

// WithName is With for a registered repository name.
func (r *Registry) WithName(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	repo, err := r.Resolve(ctx, name)
	if err != nil {
		return err
	}
	return r.With(ctx, repo, fn)
}

// Close closes every registered adapter and empties the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	repos := r.repos
	r.repos = make(map[string]*Repository)
	r.mu.Unlock()

	var first error
	for _, repo := range repos {
		if err := repo.Adapter.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
