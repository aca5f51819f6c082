// Package schema describes what gets indexed for a model: the fields, their
// types and options, and the per-model policy that governs indexing.
package schema

import (
	"github.com/Aman-CERP/bigindex/internal/errors"
)

// FieldType is the logical type of an indexed field. Adapters map it to a
// backend type with Adapter.FieldType.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldTextArray   FieldType = "text_array"
	FieldString      FieldType = "string"
	FieldStringArray FieldType = "string_array"
	FieldInteger     FieldType = "integer"
	FieldFloat       FieldType = "float"
	FieldBoolean     FieldType = "boolean"
	FieldDate        FieldType = "date"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldTextArray, FieldString, FieldStringArray,
		FieldInteger, FieldFloat, FieldBoolean, FieldDate:
		return true
	}
	return false
}

// Exact reports whether values of this type are matched verbatim (not
// analyzed), so queries against them must be quoted.
func (t FieldType) Exact() bool {
	return t == FieldString || t == FieldStringArray
}

// ValueFunc computes a field value from a record.
type ValueFunc func(record any) (any, error)

// FieldOptions are the recognized per-field options.
type FieldOptions struct {
	// FinderName names the derived finder. Defaults to the field name.
	FinderName string
	// Boost is the relevance multiplier. Zero means the configuration's default boost.
	Boost float64
	// Facet marks the field as facetable.
	Facet bool
	// Extra holds backend-specific keys.
	Extra map[string]any
}

// Field describes one indexable attribute. It is immutable once built.
type Field struct {
	name    string
	typ     FieldType
	options FieldOptions
	value   ValueFunc
}

// FieldOption configures a Field under construction.
type FieldOption func(*Field)

// WithType sets the field type (default text).
func WithType(t FieldType) FieldOption {
	return func(f *Field) { f.typ = t }
}

// WithFinderName overrides the derived finder name.
func WithFinderName(name string) FieldOption {
	return func(f *Field) { f.options.FinderName = name }
}

// WithBoost sets the field boost.
func WithBoost(boost float64) FieldOption {
	return func(f *Field) { f.options.Boost = boost }
}

// WithFacet marks the field as a facet.
func WithFacet() FieldOption {
	return func(f *Field) { f.options.Facet = true }
}

// WithExtra sets a backend-specific option.
func WithExtra(key string, value any) FieldOption {
	return func(f *Field) {
		if f.options.Extra == nil {
			f.options.Extra = make(map[string]any)
		}
		f.options.Extra[key] = value
	}
}

// WithValue computes the field value with fn instead of reading the record
// attribute named after the field.
func WithValue(fn ValueFunc) FieldOption {
	return func(f *Field) { f.value = fn }
}

// NewField builds a Field. It fails with InvalidFieldSpec when name is
// empty or the type is unknown.
func NewField(name string, opts ...FieldOption) (*Field, error) {
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidFieldSpec, "field requires at least a name", nil)
	}

	f := &Field{name: name, typ: FieldText}
	for _, opt := range opts {
		opt(f)
	}

	if !f.typ.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidFieldSpec, "field %q has unknown type %q", name, f.typ).
			WithDetail("field", name)
	}
	if f.options.FinderName == "" {
		f.options.FinderName = name
	}
	if f.options.Extra != nil {
		extra := make(map[string]any, len(f.options.Extra))
		for k, v := range f.options.Extra {
			extra[k] = v
		}
		f.options.Extra = extra
	}
	return f, nil
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Type returns the field type.
func (f *Field) Type() FieldType { return f.typ }

// FinderName returns the name of the derived finder.
func (f *Field) FinderName() string { return f.options.FinderName }

// Boost returns the field boost, or 0 when unset.
func (f *Field) Boost() float64 { return f.options.Boost }

// Facet reports whether the field is a facet.
func (f *Field) Facet() bool { return f.options.Facet }

// Computed reports whether the value comes from a block rather than an attribute.
func (f *Field) Computed() bool { return f.value != nil }

// Option looks up an option by key. Recognized keys are finder_name, boost
// and facet; anything else is read from the extension map. Unknown keys,
// a zero boost and an unset facet return nil, false.
func (f *Field) Option(key string) (any, bool) {
	switch key {
	case "finder_name":
		return f.options.FinderName, true
	case "boost":
		if f.options.Boost == 0 {
			return nil, false
		}
		return f.options.Boost, true
	case "facet":
		if !f.options.Facet {
			return nil, false
		}
		return true, true
	}
	v, ok := f.options.Extra[key]
	return v, ok
}

// Value extracts the field value from record, using the value block when
// one was supplied and the record attribute otherwise.
func (f *Field) Value(record any) (any, error) {
	if f.value != nil {
		return f.value(record)
	}
	v, ok := Attribute(record, f.name)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeInvalidFieldSpec, "record %T has no attribute %q", record, f.name).
			WithDetail("field", f.name).
			WithSuggestion("add a matching field or method, implement schema.Attributer, or pass schema.WithValue")
	}
	return v, nil
}
