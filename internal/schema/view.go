package schema

import (
	"slices"

	"github.com/Aman-CERP/bigindex/internal/errors"
)

// DefineView declares a named subset of fields. Redefining a view replaces
// it. Declaring DefaultView pins the default view to the given fields.
func (c *Configuration) DefineView(name string, fields []string) {
	c.views[name] = slices.Clone(fields)
}

// HasView reports whether name is usable.
func (c *Configuration) HasView(name string) bool {
	if name == DefaultView {
		return true
	}
	_, ok := c.views[name]
	return ok
}

// ViewNames returns every usable view name, sorted, DefaultView included.
func (c *Configuration) ViewNames() []string {
	names := []string{DefaultView}
	for n := range c.views {
		if n != DefaultView {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}

// ViewFieldNames returns the field names of a view. The default view is all
// registered field names unless it was declared. Unknown views fail with
// UnknownView.
func (c *Configuration) ViewFieldNames(name string) ([]string, error) {
	if name == "" {
		name = DefaultView
	}
	if names, ok := c.views[name]; ok {
		return slices.Clone(names), nil
	}
	if name == DefaultView {
		names := make([]string, len(c.fields))
		for i, f := range c.fields {
			names[i] = f.Name()
		}
		return names, nil
	}
	return nil, errors.Newf(errors.ErrCodeUnknownView, "view %q is not registered", name).
		WithDetail("view", name)
}

// FieldsForView returns the registered fields that belong to the view, in
// registration order.
func (c *Configuration) FieldsForView(name string) ([]*Field, error) {
	names, err := c.ViewFieldNames(name)
	if err != nil {
		return nil, err
	}
	out := make([]*Field, 0, len(names))
	for _, f := range c.fields {
		if slices.Contains(names, f.Name()) {
			out = append(out, f)
		}
	}
	return out, nil
}
