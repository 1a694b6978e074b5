package decode

import (
	"fmt"
	"regexp"
	"strings"
)

// Field is a positional field in a delimited log message.
type Field struct {
	Name    string
	Index   int
	Default string // used when the field is absent or empty
}

// Grammar describes a delimited message as data: the separator, how many
// parts it must split into, and which positions carry which fields.
type Grammar struct {
	Name  string
	Sep   string
	Exact int // if > 0, the message must split into exactly this many parts
	Min   int // if > 0, the message must split into at least this many parts

	Fields []Field
}

// Fields holds the values extracted by a Grammar, keyed by field name.
type Fields map[string]string

// Split applies the grammar to s. Fields whose index is beyond the parts
// present get their default. Count violations produce a *DecodeError
// wrapping ErrFieldCount.
func (g Grammar) Split(s string) (Fields, error) {
	parts := strings.Split(s, g.Sep)
	if g.Exact > 0 && len(parts) != g.Exact {
		return nil, &DecodeError{
			Category: g.Name,
			Err:      ErrFieldCount,
			Detail:   fmt.Sprintf("got %d, want %d", len(parts), g.Exact),
		}
	}
	if g.Min > 0 && len(parts) < g.Min {
		return nil, &DecodeError{
			Category: g.Name,
			Err:      ErrFieldCount,
			Detail:   fmt.Sprintf("got %d, want at least %d", len(parts), g.Min),
		}
	}

	out := make(Fields, len(g.Fields))
	for _, f := range g.Fields {
		v := ""
		if f.Index < len(parts) {
			v = parts[f.Index]
		}
		if v == "" {
			v = f.Default
		}
		out[f.Name] = v
	}
	return out, nil
}

// Pattern is a regexp whose named groups become fields.
type Pattern struct {
	grammar string
	field   string
	re      *regexp.Regexp
}

// MustPattern compiles expr. It panics on an invalid expression, so it is
// only used for package-level patterns.
func MustPattern(grammar, field, expr string) Pattern {
	return Pattern{grammar: grammar, field: field, re: regexp.MustCompile(expr)}
}

// Match applies the pattern to s and merges the named groups into dst.
// Optional groups that did not participate are set to "".
func (p Pattern) Match(s string, dst Fields) error {
	m := p.re.FindStringSubmatch(s)
	if m == nil {
		return &DecodeError{Category: p.grammar, Field: p.field, Err: ErrPattern, Detail: truncate(s, 120)}
	}
	for i, name := range p.re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		dst[name] = m[i]
	}
	return nil
}

// lastGroup returns the contents of the last balanced parenthesized group
// in s, scanning back from the final ')'. When a stray ')' inside the group
// leaves it unbalanced, the span from the first '(' to the final ')' is used.
func lastGroup(s string) (string, bool) {
	end := strings.LastIndexByte(s, ')')
	if end < 0 {
		return "", false
	}
	depth := 0
	for i := end; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return s[i+1 : end], true
			}
		}
	}
	if start := strings.IndexByte(s, '('); start >= 0 && start < end {
		return s[start+1 : end], true
	}
	return "", false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
