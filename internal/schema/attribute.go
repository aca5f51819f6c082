package schema

import (
	"reflect"
	"strings"
	"unicode"
)

// Attributer lets a record expose attributes by name without reflection.
type Attributer interface {
	Attribute(name string) (any, bool)
}

// Attribute reads the attribute called name from record. Records
// implementing Attributer are asked directly. Otherwise a zero-argument
// method or an exported struct field is looked up, matching either the
// exact name, its CamelCase form ("published_at" -> PublishedAt) or its
// upper-case form ("id" -> ID). A nil record, typed or not, has no
// attributes.
func Attribute(record any, name string) (any, bool) {
	if record == nil {
		return nil, false
	}
	v := reflect.ValueOf(record)
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, false
	}
	if a, ok := record.(Attributer); ok {
		return a.Attribute(name)
	}

	for _, candidate := range candidates(name) {
		if m := v.MethodByName(candidate); m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() >= 1 {
			return m.Call(nil)[0].Interface(), true
		}
	}

	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	for _, candidate := range candidates(name) {
		sf, ok := v.Type().FieldByName(candidate)
		if ok && sf.IsExported() {
			return v.FieldByIndex(sf.Index).Interface(), true
		}
	}
	return nil, false
}

func candidates(name string) []string {
	return []string{name, camelCase(name), strings.ToUpper(name)}
}

func camelCase(name string) string {
	var sb strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' || r == '-' {
			upper = true
			continue
		}
		if upper {
			sb.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
