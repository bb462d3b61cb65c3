// Package jsonrepair recovers JSON values from chatty language-model output.
package jsonrepair

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

var ErrNotFound = errors.New("no JSON value found")

// FindObject returns the first balanced {...} span of s. Brackets inside
// string literals are ignored. When the output was cut off before the object
// closed, the span from the first '{' to the last '}' is returned instead.
func FindObject(s string) (string, bool) {
	return findSpan(s, '{', '}')
}

// FindArray is FindObject for [...] spans.
func FindArray(s string) (string, bool) {
	return findSpan(s, '[', ']')
}

func findSpan(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}
	depth := 0
	var quote byte
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if n := escapedQuoteLen(s, i); n > 0 && escaped {
				quote, escaped = 0, false
				i += n - 1
				continue
			}
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		if n := escapedQuoteLen(s, i); n > 0 {
			quote, escaped = '"', true
			i += n - 1
			continue
		}
		switch c {
		case '"':
			quote = c
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	end := strings.LastIndexByte(s, close)
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// Repair rewrites the usual model mistakes into parseable JSON:
// over-escaped quotes ({\"a\": 1} or "a": \"b\"), single-quoted strings,
// Python literals True/False/None and trailing commas. String contents are
// left untouched apart from quoting.
func Repair(s string) string {
	s = strings.TrimSpace(s)
	if isOverEscaped(s) {
		s = strings.ReplaceAll(s, `\\"`, `\"`)
		s = strings.ReplaceAll(s, `\"`, `"`)
	}

	var b strings.Builder
	b.Grow(len(s))

	const (
		outside = iota
		inDouble
		inSingle
	)
	state := outside
	// set while inside a string opened by \" so the matching \" closes it
	escapedOpen := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case inDouble:
			if n := escapedQuoteLen(s, i); n > 0 && escapedOpen {
				b.WriteByte('"')
				i += n - 1
				state = outside
				escapedOpen = false
				continue
			}
			b.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			} else if c == '"' {
				state = outside
			}

		case inSingle:
			switch c {
			case '\\':
				if i+1 < len(s) && s[i+1] == '\'' {
					b.WriteByte('\'')
					i++
				} else {
					b.WriteByte(c)
					if i+1 < len(s) {
						i++
						b.WriteByte(s[i])
					}
				}
			case '"':
				b.WriteString(`\"`)
			case '\'':
				// A quote followed by structure closes the string; anything
				// else is an apostrophe (O'Brien, Jane's).
				if next := nextNonSpace(s, i+1); next == 0 || strings.IndexByte(":,}]", next) >= 0 {
					b.WriteByte('"')
					state = outside
				} else {
					b.WriteByte('\'')
				}
			default:
				b.WriteByte(c)
			}

		default:
			if n := escapedQuoteLen(s, i); n > 0 {
				b.WriteByte('"')
				i += n - 1
				state = inDouble
				escapedOpen = true
				continue
			}
			switch {
			case c == '"':
				b.WriteByte(c)
				state = inDouble
			case c == '\'':
				b.WriteByte('"')
				state = inSingle
			case c == ',':
				if next := nextNonSpace(s, i+1); next == '}' || next == ']' {
					continue
				}
				b.WriteByte(c)
			case isWordStart(s, i):
				if lit, repl, ok := pythonLiteral(s, i); ok {
					b.WriteString(repl)
					i += len(lit) - 1
					continue
				}
				b.WriteByte(c)
			default:
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

// ParseObject decodes a repaired object with the lenient JSON5 grammar.
func ParseObject(s string) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := json5.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("parse object: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("parse object: %w", ErrNotFound)
	}
	return out, nil
}

// ParseArray decodes a repaired array with the lenient JSON5 grammar.
func ParseArray(s string) ([]interface{}, error) {
	var out []interface{}
	if err := json5.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("parse array: %w", err)
	}
	return out, nil
}

// ExtractObject runs FindObject, Repair and ParseObject. The repaired span is
// returned even when parsing fails so callers can keep it for diagnostics.
func ExtractObject(raw string) (map[string]interface{}, string, error) {
	span, ok := FindObject(raw)
	if !ok {
		return nil, "", ErrNotFound
	}
	repaired := Repair(span)
	obj, err := ParseObject(repaired)
	return obj, repaired, err
}

// ExtractArray is ExtractObject for arrays.
func ExtractArray(raw string) ([]interface{}, string, error) {
	span, ok := FindArray(raw)
	if !ok {
		return nil, "", ErrNotFound
	}
	repaired := Repair(span)
	arr, err := ParseArray(repaired)
	return arr, repaired, err
}

func isOverEscaped(s string) bool {
	body := strings.TrimSpace(strings.TrimPrefix(s, "{"))
	return strings.HasPrefix(body, `\"`) || strings.HasPrefix(body, `\\"`)
}

// escapedQuoteLen reports the width of a \" or \\" sequence at i, or 0.
func escapedQuoteLen(s string, i int) int {
	switch {
	case strings.HasPrefix(s[i:], `\"`):
		return 2
	case strings.HasPrefix(s[i:], `\\"`):
		return 3
	}
	return 0
}

func nextNonSpace(s string, from int) byte {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return s[i]
		}
	}
	return 0
}

func isWordStart(s string, i int) bool {
	return i == 0 || !isIdentByte(s[i-1])
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

var pythonLiterals = [...]struct{ from, to string }{
	{"True", "true"},
	{"False", "false"},
	{"None", "null"},
}

func pythonLiteral(s string, i int) (string, string, bool) {
	for _, lit := range pythonLiterals {
		end := i + len(lit.from)
		if end <= len(s) && s[i:end] == lit.from && (end == len(s) || !isIdentByte(s[end])) {
			return lit.from, lit.to, true
		}
	}
	return "", "", false
}
