// Package source provides primary stores that models can rebuild from:
// a Badger key/value store that streams rows and a SQL table read in pages.
// Both hold schemaless Rows.
package source

import "maps"

// Row is a schemaless record: a primary key and attribute values.
type Row struct {
	ID     string         `msgpack:"id"`
	Values map[string]any `msgpack:"values"`
}

// RecordID returns the primary key.
func (r Row) RecordID() string { return r.ID }

// Attribute returns a named value. "id" falls back to the primary key.
func (r Row) Attribute(name string) (any, bool) {
	if v, ok := r.Values[name]; ok {
		return v, true
	}
	if name == "id" {
		return r.ID, true
	}
	return nil, false
}

// project keeps only fields. An empty list keeps everything.
func (r Row) project(fields []string) Row {
	if len(fields) == 0 {
		return r
	}
	out := Row{ID: r.ID, Values: make(map[string]any, len(fields))}
	for _, f := range fields {
		if v, ok := r.Values[f]; ok {
			out.Values[f] = v
		}
	}
	return out
}

// Clone returns a copy whose Values map can be modified independently.
func (r Row) Clone() Row {
	return Row{ID: r.ID, Values: maps.Clone(r.Values)}
}
