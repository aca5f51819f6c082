package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/Aman-CERP/bigindex/internal/adapter"
	"github.com/Aman-CERP/bigindex/internal/errors"
	"github.com/Aman-CERP/bigindex/internal/schema"
)

const (
	defaultSearchLimit = 1000
	defaultFacetSize   = 10
)

// buildDocument returns the indexed document for r: its field values,
// included associations as text, and the type and primary key fields.
func buildDocument(m adapter.Model, r adapter.Record) (map[string]any, error) {
	doc, err := m.Document(r)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	cfg := m.Configuration()
	for _, name := range cfg.Associations() {
		if v, ok := doc[name]; ok {
			doc[name] = flatten(v)
		}
	}
	doc[cfg.TypeField] = m.IndexType()
	doc[cfg.PrimaryKeyField] = r.RecordID()
	return doc, nil
}

// facetFields returns the indexed fields declared as facets.
func facetFields(cfg *schema.Configuration) []string {
	var names []string
	for _, f := range cfg.Fields() {
		if f.Facet() && !cfg.Excluded(f.Name()) {
			names = append(names, f.Name())
		}
	}
	return names
}

// recordID strips the "{type}:" prefix from an index document ID.
func recordID(m adapter.Model, docID string) string {
	return strings.TrimPrefix(docID, m.IndexType()+":")
}

// flatten renders a field value as text for backends that store strings.
func flatten(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, " ")
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = flatten(p)
		}
		return strings.Join(parts, " ")
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func backendErr(op string, err error) error {
	return errors.Backend(op, err)
}
