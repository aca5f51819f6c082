package store

import (
	"strings"
	"unicode"

	"github.com/Aman-CERP/bigindex/internal/adapter"
)

// term is one whitespace-separated clause of a query string.
type term struct {
	// Prefix is "+" or "-" when the clause carried one.
	Prefix string
	Field  string
	Value  string
	// Phrase is set when Value was double-quoted.
	Phrase bool
}

func (t term) String() string {
	var b strings.Builder
	b.WriteString(t.Prefix)
	if t.Field != "" {
		b.WriteString(t.Field)
		b.WriteByte(':')
	}
	if t.Phrase {
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(t.Value, `"`, `\"`))
		b.WriteByte('"')
	} else {
		b.WriteString(t.Value)
	}
	return b.String()
}

// splitClauses splits s on whitespace outside double quotes.
// Backslash escapes the next rune inside quotes.
func splitClauses(s string) []string {
	var (
		out     []string
		cur     strings.Builder
		quoted  bool
		escaped bool
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quoted:
			cur.WriteRune(r)
			escaped = true
		case r == '"':
			cur.WriteRune(r)
			quoted = !quoted
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// parseTerms parses a query string into clauses.
func parseTerms(s string) []term {
	clauses := splitClauses(s)
	terms := make([]term, 0, len(clauses))
	for _, c := range clauses {
		var t term
		if c[0] == '+' || c[0] == '-' {
			t.Prefix, c = c[:1], c[1:]
		}
		if i := strings.IndexByte(c, ':'); i > 0 && !strings.HasPrefix(c, `"`) {
			t.Field, c = c[:i], c[i+1:]
		}
		if len(c) >= 2 && c[0] == '"' && c[len(c)-1] == '"' {
			t.Phrase = true
			c = strings.ReplaceAll(c[1:len(c)-1], `\"`, `"`)
		}
		t.Value = c
		if t.Value == "" && t.Field == "" {
			continue
		}
		terms = append(terms, t)
	}
	return terms
}

// requireAll marks every unprefixed clause as required so the clauses are
// combined with AND.
func requireAll(qs string) string {
	terms := parseTerms(qs)
	parts := make([]string, len(terms))
	for i, t := range terms {
		if t.Prefix == "" {
			t.Prefix = "+"
		}
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

func operatorOf(q adapter.Query) adapter.Operator {
	if q.Operator == adapter.OperatorAnd {
		return adapter.OperatorAnd
	}
	return adapter.OperatorOr
}

// parseOrder splits "-field" into ("field", true).
func parseOrder(key string) (field string, desc bool) {
	if strings.HasPrefix(key, "-") {
		return key[1:], true
	}
	return strings.TrimPrefix(key, "+"), false
}
