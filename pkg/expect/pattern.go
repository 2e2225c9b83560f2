package expect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// BuildPattern turns an expected-output template into the matcher used
// against program output. The stages run in order:
//
//  1. EscapeArgs quotes regexp metacharacters in the arguments.
//  2. Substitute fills the template's placeholders with them.
//  3. CollapseWhitespace makes every whitespace run match any whitespace.
//  4. Compile makes the result case-insensitive and tolerant of leading
//     and trailing whitespace.
func BuildPattern(template string, args []string) (*regexp.Regexp, error) {
	filled, err := Substitute(template, EscapeArgs(args))
	if err != nil {
		return nil, err
	}
	return Compile(CollapseWhitespace(filled))
}

// EscapeArgs returns a copy of args with regexp metacharacters quoted.
func EscapeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = regexp.QuoteMeta(a)
	}
	return out
}

// Substitute fills "{}" (next value) and "{N}" (value N) placeholders in
// template. "{{" and "}}" stand for literal braces, so regexp repetition
// counts are written "\d{{3}}".
func Substitute(template string, values []string) (string, error) {
	var b strings.Builder
	next := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{' && i+1 < len(template) && template[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(template) && template[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("template %q: unclosed placeholder at offset %d", template, i)
			}
			field := template[i+1 : i+end]
			idx := next
			if field != "" {
				n, err := strconv.Atoi(field)
				if err != nil || n < 0 {
					return "", fmt.Errorf("template %q: bad placeholder {%s}", template, field)
				}
				idx = n
			} else {
				next++
			}
			if idx >= len(values) {
				return "", fmt.Errorf("template %q: placeholder %d has no argument (%d given)", template, idx, len(values))
			}
			b.WriteString(values[idx])
			i += end
		case c == '}':
			return "", fmt.Errorf("template %q: single '}' at offset %d", template, i)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// CollapseWhitespace trims pattern and replaces each inner run of
// whitespace with `\s+`.
func CollapseWhitespace(pattern string) string {
	return whitespaceRun.ReplaceAllLiteralString(strings.TrimSpace(pattern), `\s+`)
}

// Compile compiles pattern case-insensitively, allowing any whitespace
// around it.
func Compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`(?i)\s*` + pattern + `\s*`)
	if err != nil {
		return nil, fmt.Errorf("compile expected pattern: %w", err)
	}
	return re, nil
}
