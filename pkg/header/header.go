// Package header parses and validates the authorship comment block that
// opens every graded source file.
//
// A C++ header looks like:
//
//	// Ada Lovelace
//	// adalovelace@csu.fullerton.edu
//	// @AdaLovelace
//	// Partners: @charlesbabbage
//
// Headers written with a comment prefix other than "//" carry only the first
// three fields; their partners field is fixed to PartnersNotApplicable.
package header

import (
	"errors"
	"fmt"
	"strings"
)

// CPPPrefix is the comment prefix of C and C++ sources.
const CPPPrefix = "//"

// PythonPrefix is the comment prefix of Python and shell sources.
const PythonPrefix = "#"

// PartnersNotApplicable is stored in Record.Partners when the comment style
// does not declare partners.
const PartnersNotApplicable = "None"

// partnersLabel starts the fourth header line of a "//" header.
const partnersLabel = "Partners:"

// Record is the authorship metadata extracted from one file.
// A Record is only ever returned fully populated and validated.
type Record struct {
	Name     string `yaml:"name"     json:"name"`
	Email    string `yaml:"email"    json:"email"`
	GitHub   string `yaml:"github"   json:"github"`
	Partners string `yaml:"partners" json:"partners"`
}

// Null returns the placeholder record used when no file of a submission
// carries a valid header.
func Null() Record {
	return Record{
		Name:     "~Unknown_Name",
		Email:    "~no-reply@csu.fullerton.edu",
		GitHub:   "~Unknown_GitHub",
		Partners: "~Unknown_Partners",
	}
}

// PartnerHandles splits the partners field into its trimmed, non-empty
// handles. It returns nil for PartnersNotApplicable.
func (r Record) PartnerHandles() []string {
	if r.Partners == PartnersNotApplicable {
		return nil
	}
	return splitPartners(strings.TrimPrefix(r.Partners, partnersLabel))
}

// Identify returns the line the grader logs before and after checking a
// submission.
func (r *Record) Identify() string {
	if r == nil {
		return "(Malformed Header)"
	}
	return fmt.Sprintf("Testing %s %s %s", r.Name, r.Email, r.GitHub)
}

func splitPartners(list string) []string {
	var handles []string
	for _, tok := range strings.Split(list, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			handles = append(handles, tok)
		}
	}
	return handles
}

// ErrInvalidHeader is wrapped by every ParseError. Callers that only need
// a yes/no answer test for it with errors.Is.
var ErrInvalidHeader = errors.New("invalid header")

// Kind classifies a header parse failure.
type Kind int

const (
	ReadFailure Kind = iota
	EmptyFile
	MissingHeader
	HeaderTooShort
	FieldMissing
	FieldSpacing
	FieldEmpty
	InvalidName
	InvalidEmail
	InvalidGithub
	InvalidPartners
	InvalidPartnerGithub
	StrayWhitespace
)

var kindNames = [...]string{
	ReadFailure:          "read_failure",
	EmptyFile:            "empty_file",
	MissingHeader:        "missing_header",
	HeaderTooShort:       "header_too_short",
	FieldMissing:         "field_missing",
	FieldSpacing:         "field_spacing",
	FieldEmpty:           "field_empty",
	InvalidName:          "invalid_name",
	InvalidEmail:         "invalid_email",
	InvalidGithub:        "invalid_github",
	InvalidPartners:      "invalid_partners",
	InvalidPartnerGithub: "invalid_partner_github",
	StrayWhitespace:      "stray_whitespace",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseError describes which line and field of a header broke the format.
type ParseError struct {
	Kind    Kind   `json:"kind"`
	File    string `json:"file"`
	Line    int    `json:"line"`            // 1-based source line, 0 when not tied to a line
	Field   string `json:"field,omitempty"` // name, email, GitHub, Partners:
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
	Err     error  `json:"-"`
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Unwrap exposes ErrInvalidHeader and, for read failures, the I/O error.
func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidHeader, e.Err}
	}
	return []error{ErrInvalidHeader}
}
