package schema

import (
	"slices"

	"github.com/Aman-CERP/bigindex/internal/errors"
)

// DefaultView is the view every configuration has. Unless declared
// explicitly it covers all registered fields.
const DefaultView = "default"

// Configuration aggregates a model's fields and its indexing policy.
type Configuration struct {
	fields        []*Field
	excludeFields map[string]struct{}
	views         map[string][]string
	include       []string

	// TypeField and PrimaryKeyField name the document fields that carry the
	// model type and record key. Taken from the adapter defaults.
	TypeField       string
	PrimaryKeyField string

	// AutoSave enables save/destroy synchronization.
	AutoSave bool
	// AutoCommit asks the backend to commit single-record writes immediately.
	AutoCommit bool
	// Background marks the model for off-request indexing. Informational;
	// scheduling belongs to the host.
	Background bool
	// Condition, when set, must accept a record for it to be indexed on save.
	Condition func(record any) bool
	// DefaultBoost applies to fields without an explicit boost.
	DefaultBoost float64
}

// NewConfiguration returns a configuration with the default policy: auto
// save, auto commit and background on, boost 1.0.
func NewConfiguration(typeField, primaryKeyField string) *Configuration {
	return &Configuration{
		excludeFields:   make(map[string]struct{}),
		views:           make(map[string][]string),
		TypeField:       typeField,
		PrimaryKeyField: primaryKeyField,
		AutoSave:        true,
		AutoCommit:      true,
		Background:      true,
		DefaultBoost:    1.0,
	}
}

// Register appends field unless a field with the same name exists, in which
// case the first registration is kept. Reports whether field was added.
func (c *Configuration) Register(field *Field) bool {
	if field == nil {
		return false
	}
	if _, ok := c.Field(field.Name()); ok {
		return false
	}
	c.fields = append(c.fields, field)
	return true
}

// Fields returns the registered fields in registration order.
func (c *Configuration) Fields() []*Field {
	return slices.Clone(c.fields)
}

// Field returns the field called name.
func (c *Configuration) Field(name string) (*Field, bool) {
	for _, f := range c.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// FieldByFinder returns the field whose finder is called finderName.
func (c *Configuration) FieldByFinder(finderName string) (*Field, bool) {
	for _, f := range c.fields {
		if f.FinderName() == finderName {
			return f, true
		}
	}
	return nil, false
}

// Exclude keeps the named fields out of indexed documents.
func (c *Configuration) Exclude(names ...string) {
	for _, n := range names {
		c.excludeFields[n] = struct{}{}
	}
}

// Excluded reports whether name is excluded.
func (c *Configuration) Excluded(name string) bool {
	_, ok := c.excludeFields[name]
	return ok
}

// ExcludedFields returns the excluded names, sorted.
func (c *Configuration) ExcludedFields() []string {
	names := make([]string, 0, len(c.excludeFields))
	for n := range c.excludeFields {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// IncludeAssociations records related attributes indexed as text next to
// the fields of the default view.
func (c *Configuration) IncludeAssociations(names ...string) {
	for _, n := range names {
		if n != "" && !slices.Contains(c.include, n) {
			c.include = append(c.include, n)
		}
	}
}

// Included returns the associations recorded with IncludeAssociations.
func (c *Configuration) Included() []string {
	return slices.Clone(c.include)
}

// Associations returns the included names that add content to a document:
// those that are neither registered fields nor excluded.
func (c *Configuration) Associations() []string {
	var out []string
	for _, n := range c.include {
		if _, isField := c.Field(n); isField || c.Excluded(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Boost returns the effective boost of field.
func (c *Configuration) Boost(field *Field) float64 {
	if field.Boost() != 0 {
		return field.Boost()
	}
	return c.DefaultBoost
}

// Derive returns an independent copy for a sub-model. Later changes to
// either configuration do not affect the other. Fields are shared because
// they are immutable.
func (c *Configuration) Derive() *Configuration {
	child := *c
	child.fields = slices.Clone(c.fields)
	child.include = slices.Clone(c.include)
	child.excludeFields = make(map[string]struct{}, len(c.excludeFields))
	for n := range c.excludeFields {
		child.excludeFields[n] = struct{}{}
	}
	child.views = make(map[string][]string, len(c.views))
	for name, fields := range c.views {
		child.views[name] = slices.Clone(fields)
	}
	return &child
}

// Validate checks what a rebuild needs.
func (c *Configuration) Validate() error {
	if c.TypeField == "" || c.PrimaryKeyField == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "type and primary key field names are required", nil).
			WithDetail("type_field", c.TypeField).
			WithDetail("primary_key_field", c.PrimaryKeyField)
	}
	return nil
}
