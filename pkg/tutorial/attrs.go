package tutorial

import (
	"strings"

	"github.com/arthur-debert/guiderails/pkg/errors"
)

// Annotation classes recognized by the engine. Other classes are carried
// through in the AttrSet but have no effect.
const (
	ClassStep = "gr-step"
	ClassRun  = "gr-run"
	ClassFile = "gr-file"
)

// AttrSet is the decoded form of one {...} annotation. Unknown keys are
// preserved; only recognized keys drive behavior.
type AttrSet struct {
	Classes []string
	ID      string
	Keys    map[string]string
}

// HasClass reports whether the annotation carries the given class token.
func (a AttrSet) HasClass(name string) bool {
	for _, c := range a.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// Get returns the raw value for key and whether it was present.
func (a AttrSet) Get(key string) (string, bool) {
	v, ok := a.Keys[key]
	return v, ok
}

// ParseAttrs decodes an annotation of the form
//
//	{.class #id key=value key2="quoted value"}
//
// into an AttrSet. Class and id names use letters, digits, underscore and
// hyphen. Values are bare tokens or double-quoted strings; inside quotes,
// \" and \\ are the only escapes. Anything else, an unterminated quote,
// or content after the closing brace fails with ErrMalformedAttributes.
func ParseAttrs(s string) (AttrSet, error) {
	attrs := AttrSet{Keys: make(map[string]string)}

	i := skipSpace(s, 0)
	if i >= len(s) || s[i] != '{' {
		return attrs, errors.New(errors.ErrMalformedAttributes, `annotation must start with "{"`)
	}
	i++

	closed := false
scan:
	for i < len(s) {
		switch c := s[i]; {
		case c == '}':
			closed = true
			i++
			break scan

		case c == ' ' || c == '\t':
			i++

		case c == '.':
			name, next := readName(s, i+1)
			if name == "" {
				return attrs, errors.New(errors.ErrMalformedAttributes, "empty class name")
			}
			attrs.Classes = append(attrs.Classes, name)
			i = next

		case c == '#':
			name, next := readName(s, i+1)
			if name == "" {
				return attrs, errors.New(errors.ErrMalformedAttributes, "empty id")
			}
			if attrs.ID != "" {
				return attrs, errors.Newf(errors.ErrMalformedAttributes, "duplicate id %q", name)
			}
			attrs.ID = name
			i = next

		default:
			key, next := readName(s, i)
			if key == "" || next >= len(s) || s[next] != '=' {
				return attrs, errors.Newf(errors.ErrMalformedAttributes,
					"unrecognized token at %q, expected .class, #id or key=value", s[i:])
			}
			value, after, err := readValue(s, key, next+1)
			if err != nil {
				return attrs, err
			}
			attrs.Keys[key] = value
			i = after
		}
	}

	if !closed {
		return attrs, errors.New(errors.ErrMalformedAttributes, `missing closing "}"`)
	}
	if rest := strings.TrimSpace(s[i:]); rest != "" {
		return attrs, errors.Newf(errors.ErrMalformedAttributes, "unexpected content after annotation: %q", rest)
	}
	return attrs, nil
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '-'
}

func readName(s string, i int) (string, int) {
	start := i
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	return s[start:i], i
}

func readValue(s, key string, i int) (string, int, error) {
	if i >= len(s) {
		return "", i, errors.Newf(errors.ErrMalformedAttributes, "missing value for %q", key)
	}

	if s[i] == '"' {
		var b strings.Builder
		i++
		for i < len(s) {
			switch c := s[i]; c {
			case '"':
				return b.String(), i + 1, nil
			case '\\':
				if i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
					b.WriteByte(s[i+1])
					i += 2
					continue
				}
				b.WriteByte(c)
				i++
			default:
				b.WriteByte(c)
				i++
			}
		}
		return "", i, errors.Newf(errors.ErrMalformedAttributes, "unterminated quoted value for %q", key)
	}

	start := i
	for i < len(s) && s[i] != ' ' && s[i] != '\t' && s[i] != '}' {
		i++
	}
	if i == start {
		return "", i, errors.Newf(errors.ErrMalformedAttributes,
			"missing value for %q, quote empty values as \"\"", key)
	}
	return s[start:i], i, nil
}
