package header

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"
)

// minHeaderLines is the number of comment lines needed to hold every field.
const minHeaderLines = 4

// Field positions within the header block.
const (
	nameLine     = 1
	emailLine    = 2
	githubLine   = 3
	partnersLine = 4
)

const exampleGitHub = "an example GitHub username is: @AdaLovelace"

var (
	anyEmailRe  = regexp.MustCompile(`^[\p{L}\p{N}_][.\-_\p{L}\p{N}]*@.+$`)
	csufEmailRe = regexp.MustCompile(`(?i)^[\p{L}\p{N}_][.\-_\p{L}\p{N}]*@(csu\.)?fullerton\.edu$`)

	// GitHub logins: 1-39 alphanumerics or single inner hyphens. The
	// look-ahead keeps RE2 out of the picture.
	githubRe = regexp2.MustCompile(`^@[a-zA-Z0-9](?:[a-zA-Z0-9]|-(?=[a-zA-Z0-9])){0,38}\z`, regexp2.None)
)

// IsGitHubHandle reports whether s is "@" followed by a GitHub login.
func IsGitHubHandle(s string) bool {
	ok, err := githubRe.MatchString(s)
	return err == nil && ok
}

// Option configures a parse.
type Option func(*parser)

// WithLogger routes diagnostics to log. Without it parsing is silent.
func WithLogger(log *zap.Logger) Option {
	return func(p *parser) {
		if log != nil {
			p.log = log
		}
	}
}

type parser struct {
	file   string
	prefix string
	log    *zap.Logger
}

// ParseFile reads path and parses the header that opens it.
func ParseFile(path, prefix string, opts ...Option) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		p := newParser(filepath.Base(path), prefix, opts)
		return nil, p.fail(&ParseError{
			Kind:    ReadFailure,
			Message: fmt.Sprintf("cannot read source file: %v", err),
			Err:     err,
		})
	}
	defer f.Close()
	return Parse(filepath.Base(path), f, prefix, opts...)
}

// Parse parses the header at the top of r. name labels diagnostics.
// Any failure yields a *ParseError and no record.
func Parse(name string, r io.Reader, prefix string, opts ...Option) (*Record, error) {
	p := newParser(name, prefix, opts)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, p.fail(&ParseError{
			Kind:    ReadFailure,
			Message: fmt.Sprintf("cannot read source file: %v", err),
			Err:     err,
		})
	}
	return p.parse(splitLines(string(data)))
}

// Check reports whether path opens with a valid header.
func Check(path, prefix string, log *zap.Logger) bool {
	_, err := ParseFile(path, prefix, WithLogger(log))
	return err == nil
}

func newParser(name, prefix string, opts []Option) *parser {
	p := &parser{file: name, prefix: prefix, log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *parser) parse(lines []string) (*Record, error) {
	if len(lines) == 0 {
		return nil, p.fail(&ParseError{
			Kind:    EmptyFile,
			Message: "header missing because source file is empty",
		})
	}
	if isBlank(lines[0]) {
		return nil, p.fail(&ParseError{
			Kind:    MissingHeader,
			Line:    1,
			Message: fmt.Sprintf("expected a %s comment holding a header, but found whitespace instead", p.prefix),
		})
	}

	// Leading and trailing whitespace is tolerated here so the more
	// important problems get reported first; it is rejected at the end.
	var comments []string
	for _, line := range lines {
		if !strings.HasPrefix(trimLeft(line), p.prefix) {
			break
		}
		comments = append(comments, line)
	}

	// offset maps an index into comments back to a source line number.
	offset := 1
	if p.prefix == PythonPrefix && len(comments) > 0 && strings.HasPrefix(comments[0], "#!") {
		comments = comments[1:]
		offset = 2
	}

	if len(comments) == 0 {
		found := "end of file"
		if offset-1 < len(lines) {
			found = lines[offset-1]
		}
		return nil, p.fail(&ParseError{
			Kind:    MissingHeader,
			Line:    offset,
			Message: fmt.Sprintf("expected a %s comment holding a header, but instead found: %s", p.prefix, found),
		})
	}

	header := make([]string, len(comments))
	for i, line := range comments {
		header[i] = strings.TrimSpace(line)
	}
	if len(header) < minHeaderLines {
		return nil, p.fail(&ParseError{
			Kind:    HeaderTooShort,
			Line:    len(header) + offset,
			Message: fmt.Sprintf("header is only %d lines long", len(header)),
			Hint:    fmt.Sprintf("a header must be at least %d lines long to contain all required information", minHeaderLines),
		})
	}

	field := func(pos int, label string) (string, error) {
		return p.field(header[pos-1], pos-1+offset, label)
	}

	name, err := field(nameLine, "name")
	if err != nil {
		return nil, err
	}
	email, err := field(emailLine, "email")
	if err != nil {
		return nil, err
	}
	github, err := field(githubLine, "GitHub")
	if err != nil {
		return nil, err
	}
	partners := PartnersNotApplicable
	if p.prefix == CPPPrefix {
		if partners, err = field(partnersLine, partnersLabel); err != nil {
			return nil, err
		}
	}

	if !strings.ContainsFunc(name, unicode.IsLetter) {
		return nil, p.fail(&ParseError{
			Kind:    InvalidName,
			Line:    nameLine - 1 + offset,
			Field:   "name",
			Message: "does not resemble a name",
			Hint:    "a name is expected to have at least one letter",
		})
	}

	if !anyEmailRe.MatchString(email) {
		return nil, p.fail(&ParseError{
			Kind:    InvalidEmail,
			Line:    emailLine - 1 + offset,
			Field:   "email",
			Message: "does not resemble an email address",
			Hint:    "an example email address is: adalovelace@csu.fullerton.edu",
		})
	}
	if !csufEmailRe.MatchString(email) {
		return nil, p.fail(&ParseError{
			Kind:    InvalidEmail,
			Line:    emailLine - 1 + offset,
			Field:   "email",
			Message: "email address is not CSUF-issued",
			Hint:    "use your CSUF-issued email ending in @csu.fullerton.edu or @fullerton.edu",
		})
	}

	if !IsGitHubHandle(github) {
		return nil, p.fail(&ParseError{
			Kind:    InvalidGithub,
			Line:    githubLine - 1 + offset,
			Field:   "GitHub",
			Message: "does not resemble a GitHub username starting with @",
			Hint:    exampleGitHub,
		})
	}

	if p.prefix == CPPPrefix {
		if err := p.checkPartners(partners, partnersLine-1+offset); err != nil {
			return nil, err
		}
	}

	// Stray whitespace is judged on the untrimmed lines.
	for i, line := range comments {
		if line != trimLeft(line) {
			return nil, p.fail(&ParseError{
				Kind:    StrayWhitespace,
				Line:    i + offset,
				Message: fmt.Sprintf("unexpected leading whitespace; delete whitespace before %s", p.prefix),
			})
		}
	}

	return &Record{
		Name:     name,
		Email:    email,
		GitHub:   github,
		Partners: partners,
	}, nil
}

// field extracts the value of a trimmed header line of the exact form
// "<prefix> <value>".
func (p *parser) field(line string, lineNo int, label string) (string, error) {
	if line == p.prefix {
		return "", p.fail(&ParseError{
			Kind:    FieldMissing,
			Line:    lineNo,
			Field:   label,
			Message: fmt.Sprintf("should contain %s, but it is missing", label),
		})
	}
	rest := line[len(p.prefix):]
	if rest[0] != ' ' {
		return "", p.fail(&ParseError{
			Kind:    FieldSpacing,
			Line:    lineNo,
			Field:   label,
			Message: fmt.Sprintf("there must be a space between %s and %s", p.prefix, label),
		})
	}
	value := rest[1:]
	if strings.TrimSpace(value) == "" {
		return "", p.fail(&ParseError{
			Kind:    FieldEmpty,
			Line:    lineNo,
			Field:   label,
			Message: fmt.Sprintf("%s field is empty", label),
		})
	}
	if value != trimLeft(value) {
		return "", p.fail(&ParseError{
			Kind:    FieldSpacing,
			Line:    lineNo,
			Field:   label,
			Message: fmt.Sprintf("there must be exactly one space between %s and %s", p.prefix, label),
		})
	}
	return value, nil
}

// checkPartners validates a "Partners: @a, @b" field. The partner count is
// advisory; a malformed handle is not.
func (p *parser) checkPartners(partners string, lineNo int) error {
	if !strings.HasPrefix(partners, partnersLabel) {
		return p.fail(&ParseError{
			Kind:    InvalidPartners,
			Line:    lineNo,
			Field:   partnersLabel,
			Message: "does not contain a Partners: list",
		})
	}
	handles := splitPartners(strings.TrimPrefix(partners, partnersLabel))
	switch n := len(handles); {
	case n == 0:
		p.log.Warn("partners list is empty; expected you to have a pair-programming partner",
			zap.String("file", p.file), zap.Int("line", lineNo))
	case n > 2:
		p.log.Warn(fmt.Sprintf("expected only one or two partners, but you have %d", n),
			zap.String("file", p.file), zap.Int("line", lineNo))
	}
	for _, h := range handles {
		if !IsGitHubHandle(h) {
			return p.fail(&ParseError{
				Kind:    InvalidPartnerGithub,
				Line:    lineNo,
				Field:   partnersLabel,
				Message: fmt.Sprintf("partner %q does not resemble a GitHub username starting with @", h),
				Hint:    exampleGitHub + "; leave the space blank if you do not have a partner",
			})
		}
	}
	return nil
}

func (p *parser) fail(e *ParseError) *ParseError {
	e.File = p.file
	fields := []zap.Field{zap.String("file", e.File), zap.Stringer("kind", e.Kind)}
	if e.Line > 0 {
		fields = append(fields, zap.Int("line", e.Line))
	}
	if e.Field != "" {
		fields = append(fields, zap.String("field", e.Field))
	}
	if e.Hint != "" {
		fields = append(fields, zap.String("hint", e.Hint))
	}
	p.log.Warn(e.Message, fields...)
	return e
}

// splitLines splits on any line terminator; a trailing terminator does not
// start a new line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

func trimLeft(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
