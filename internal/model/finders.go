package model

import (
	"context"
	"sort"
	"strings"

	"github.com/Aman-CERP/bigindex/internal/errors"
	"github.com/Aman-CERP/bigindex/internal/schema"
)

// Index registers a field and its finder. Registering a name twice keeps
// the first field and returns it.
func (m *Model[T]) Index(name string, opts ...schema.FieldOption) (*schema.Field, error) {
	f, err := schema.NewField(name, opts...)
	if err != nil {
		return nil, err
	}
	if !m.cfg.Register(f) {
		existing, _ := m.cfg.Field(name)
		return existing, nil
	}
	m.finders[f.FinderName()] = f
	return f, nil
}

// MustIndex is Index for static definitions; it panics on an invalid field.
func (m *Model[T]) MustIndex(name string, opts ...schema.FieldOption) *schema.Field {
	f, err := m.Index(name, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Finders returns the registered finder names in sorted order.
func (m *Model[T]) Finders() []string {
	names := make([]string, 0, len(m.finders))
	for name := range m.finders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FinderQuery builds the query string the named finder runs for
// userQuery. Values of exact (string) fields are quoted so they match as
// a whole; other values are matched term by term. An unknown finder passes
// userQuery through. A blank userQuery would match every document of the
// type and fails with InvalidFindOption.
func (m *Model[T]) FinderQuery(finder, userQuery string) (string, error) {
	if strings.TrimSpace(userQuery) == "" {
		return "", errors.Newf(errors.ErrCodeInvalidFindOption, "finder %s needs a non-empty query", finder).
			WithDetail("finder", finder)
	}
	f, ok := m.finders[finder]
	if !ok {
		return userQuery, nil
	}
	if f.Type().Exact() {
		return f.Name() + `:"` + strings.ReplaceAll(userQuery, `"`, `\"`) + `"`, nil
	}
	terms := strings.Fields(userQuery)
	for i, t := range terms {
		terms[i] = f.Name() + ":" + t
	}
	return strings.Join(terms, " "), nil
}

// FindAllBy runs the named finder. Conditions in opts are ignored.
func (m *Model[T]) FindAllBy(ctx context.Context, finder, userQuery string, opts FindOptions) (*Found[T], error) {
	opts.Conditions = nil
	opts.BypassIndex = false
	if err := opts.validate(); err != nil {
		return nil, err
	}
	q, err := m.FinderQuery(finder, userQuery)
	if err != nil {
		return nil, err
	}
	return m.search(ctx, q, opts)
}

// FindBy runs the named finder and returns the first match.
func (m *Model[T]) FindBy(ctx context.Context, finder, userQuery string, opts FindOptions) (T, bool, error) {
	opts.Limit = 1
	found, err := m.FindAllBy(ctx, finder, userQuery, opts)
	if err != nil {
		var zero T
		return zero, false, err
	}
	r, ok := found.First()
	return r, ok, nil
}
