package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Aman-CERP/bigindex/internal/errors"
)

// Where builds a template condition: each '?' in template is replaced by
// the next argument.
func Where(template string, args ...any) []any {
	return append([]any{template}, args...)
}

// renderConditions turns FindOptions.Conditions into a query string.
// Accepted forms: a raw string, a template with its arguments ([]any or
// []string, template first), or a map rendered as "key:value " pairs in
// key order.
func renderConditions(c any) (string, error) {
	switch v := c.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []any:
		return renderTemplate(v)
	case []string:
		parts := make([]any, len(v))
		for i, s := range v {
			parts[i] = s
		}
		return renderTemplate(parts)
	case map[string]any:
		return renderPairs(v), nil
	case map[string]string:
		pairs := make(map[string]any, len(v))
		for k, s := range v {
			pairs[k] = s
		}
		return renderPairs(pairs), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidFindOption, "unsupported conditions type %T", c).
			WithSuggestion("use a string, model.Where(template, args...) or a map")
	}
}

func renderTemplate(parts []any) (string, error) {
	if len(parts) == 0 {
		return "", nil
	}
	tmpl, ok := parts[0].(string)
	if !ok {
		return "", errors.Newf(errors.ErrCodeInvalidFindOption, "condition template must be a string, got %T", parts[0])
	}
	args := parts[1:]

	var b strings.Builder
	next := 0
	for _, r := range tmpl {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		if next >= len(args) {
			return "", errors.Newf(errors.ErrCodeMissingConditionArgument,
				"missing condition argument %d for %q", next+1, tmpl).
				WithDetail("placeholders", fmt.Sprint(strings.Count(tmpl, "?"))).
				WithDetail("arguments", fmt.Sprint(len(args)))
		}
		fmt.Fprint(&b, args[next])
		next++
	}
	return b.String(), nil
}

func renderPairs(pairs map[string]any) string {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s:%v ", k, pairs[k])
	}
	return b.String()
}
