package header

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const validCPP = `// Ada Lovelace
// adalovelace@csu.fullerton.edu
// @AdaLovelace
// Partners: @charlesbabbage, @mary-somerville

#include <iostream>
`

func parseString(t *testing.T, src, prefix string) (*Record, error) {
	t.Helper()
	return Parse("main.cc", strings.NewReader(src), prefix)
}

func wantKind(t *testing.T, err error, kind Kind, line int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s failure, got nil", kind)
	}
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("error %v does not wrap ErrInvalidHeader", err)
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error %T is not a *ParseError", err)
	}
	if pe.Kind != kind {
		t.Errorf("kind = %s, want %s (%v)", pe.Kind, kind, err)
	}
	if line > 0 && pe.Line != line {
		t.Errorf("line = %d, want %d (%v)", pe.Line, line, err)
	}
}

func TestParseValidCPP(t *testing.T) {
	rec, err := parseString(t, validCPP, CPPPrefix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Record{
		Name:     "Ada Lovelace",
		Email:    "adalovelace@csu.fullerton.edu",
		GitHub:   "@AdaLovelace",
		Partners: "Partners: @charlesbabbage, @mary-somerville",
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
	if got := rec.PartnerHandles(); !cmp.Equal(got, []string{"@charlesbabbage", "@mary-somerville"}) {
		t.Errorf("PartnerHandles = %v", got)
	}
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		prefix string
		kind   Kind
		line   int
	}{
		{"empty file", "", CPPPrefix, EmptyFile, 0},
		{"blank first line", "\n// Ada\n", CPPPrefix, MissingHeader, 1},
		{"whitespace first line", "   \t\n", CPPPrefix, MissingHeader, 1},
		{"no comment", "#include <iostream>\n", CPPPrefix, MissingHeader, 1},
		{"three lines", "// Ada\n// ada@csu.fullerton.edu\n// @ada\nint x;\n", CPPPrefix, HeaderTooShort, 4},
		{"one line", "// Ada\n", CPPPrefix, HeaderTooShort, 2},
		{"missing name", "//\n// ada@csu.fullerton.edu\n// @ada\n// Partners:\n", CPPPrefix, FieldMissing, 1},
		{"no space", "//Ada\n// ada@csu.fullerton.edu\n// @ada\n// Partners:\n", CPPPrefix, FieldSpacing, 1},
		{"two spaces", "// Ada\n//  ada@csu.fullerton.edu\n// @ada\n// Partners:\n", CPPPrefix, FieldSpacing, 2},
		{"name without letters", "// 1234\n// ada@csu.fullerton.edu\n// @ada\n// Partners:\n", CPPPrefix, InvalidName, 1},
		{"not an email", "// Ada\n// ada at fullerton\n// @ada\n// Partners:\n", CPPPrefix, InvalidEmail, 2},
		{"gmail", "// Ada\n// ada@gmail.com\n// @ada\n// Partners:\n", CPPPrefix, InvalidEmail, 2},
		{"github without at", "// Ada\n// ada@csu.fullerton.edu\n// ada\n// Partners:\n", CPPPrefix, InvalidGithub, 3},
		{"github double hyphen", "// Ada\n// ada@csu.fullerton.edu\n// @ada--l\n// Partners:\n", CPPPrefix, InvalidGithub, 3},
		{"github trailing hyphen", "// Ada\n// ada@csu.fullerton.edu\n// @ada-\n// Partners:\n", CPPPrefix, InvalidGithub, 3},
		{"github too long", "// Ada\n// ada@csu.fullerton.edu\n// @" + strings.Repeat("a", 40) + "\n// Partners:\n", CPPPrefix, InvalidGithub, 3},
		{"partners label", "// Ada\n// ada@csu.fullerton.edu\n// @ada\n// Partner: @bob\n", CPPPrefix, InvalidPartners, 4},
		{"partner handle", "// Ada\n// ada@csu.fullerton.edu\n// @ada\n// Partners: @bob, carol\n", CPPPrefix, InvalidPartnerGithub, 4},
		{"indented line", "// Ada\n  // ada@csu.fullerton.edu\n// @ada\n// Partners:\n", CPPPrefix, StrayWhitespace, 2},
		{"shebang only", "#!/bin/sh\n", PythonPrefix, MissingHeader, 2},
		{"shebang then code", "#!/bin/sh\necho hi\n", PythonPrefix, MissingHeader, 2},
		{"python shebang short", "#!/usr/bin/env python3\n# Ada\n# ada@csu.fullerton.edu\n# @ada\n", PythonPrefix, HeaderTooShort, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := parseString(t, tt.src, tt.prefix)
			if rec != nil {
				t.Errorf("expected no record, got %+v", rec)
			}
			wantKind(t, err, tt.kind, tt.line)
		})
	}
}

func TestParseFewerThanFourCommentLines(t *testing.T) {
	lines := []string{"// Ada", "// ada@csu.fullerton.edu", "// @ada"}
	for n := 1; n < minHeaderLines; n++ {
		src := strings.Join(lines[:n], "\n") + "\nint main() {}\n"
		rec, err := parseString(t, src, CPPPrefix)
		if rec != nil {
			t.Fatalf("n=%d: partial record returned: %+v", n, rec)
		}
		wantKind(t, err, HeaderTooShort, n+1)
	}
}

func TestParseEmptyPartnersIsAdvisory(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	src := "// Ada\n// ada@csu.fullerton.edu\n// @ada\n// Partners:\n"
	rec, err := Parse("main.cc", strings.NewReader(src), CPPPrefix, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Partners != "Partners:" {
		t.Errorf("partners = %q, want %q", rec.Partners, "Partners:")
	}
	if n := len(rec.PartnerHandles()); n != 0 {
		t.Errorf("partner count = %d, want 0", n)
	}
	if logs.FilterMessageSnippet("partners list is empty").Len() != 1 {
		t.Errorf("expected one empty-partners warning, got %v", logs.All())
	}
}

func TestParseManyPartnersIsAdvisory(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	src := "// Ada\n// ada@csu.fullerton.edu\n// @ada\n// Partners: @b, @c, @d\n"
	rec, err := Parse("main.cc", strings.NewReader(src), CPPPrefix, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(rec.PartnerHandles()); got != 3 {
		t.Errorf("partner count = %d, want 3", got)
	}
	if logs.FilterMessageSnippet("but you have 3").Len() != 1 {
		t.Errorf("expected a partner count warning, got %v", logs.All())
	}
}

func TestParsePythonHeader(t *testing.T) {
	src := "#!/usr/bin/env python3\n# Ada Lovelace\n# ada@fullerton.edu\n# @ada\n# Solves lab 4\n\nimport sys\n"
	rec, err := parseString(t, src, PythonPrefix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Partners != PartnersNotApplicable {
		t.Errorf("partners = %q, want %q", rec.Partners, PartnersNotApplicable)
	}
	if rec.PartnerHandles() != nil {
		t.Errorf("PartnerHandles = %v, want nil", rec.PartnerHandles())
	}
	if rec.Email != "ada@fullerton.edu" {
		t.Errorf("email = %q", rec.Email)
	}
}

func TestParseEmailCaseInsensitiveDomain(t *testing.T) {
	src := "// Ada\n// Ada.Lovelace-1@CSU.Fullerton.EDU\n// @ada\n// Partners: @bob\n"
	if _, err := parseString(t, src, CPPPrefix); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseShebangOnlyMessage(t *testing.T) {
	_, err := parseString(t, "#!/bin/sh\n", PythonPrefix)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if !strings.HasSuffix(pe.Message, "but instead found: end of file") {
		t.Errorf("message = %q", pe.Message)
	}
}

func TestParseUnicodeEmail(t *testing.T) {
	for _, email := range []string{"josé@csu.fullerton.edu", "ñandú.2@fullerton.edu"} {
		src := "// José\n// " + email + "\n// @jose\n// Partners:\n"
		rec, err := parseString(t, src, CPPPrefix)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", email, err)
		}
		if rec.Email != email {
			t.Errorf("email = %q, want %q", rec.Email, email)
		}
	}
}

func TestParseCRLF(t *testing.T) {
	src := strings.ReplaceAll(validCPP, "\n", "\r\n")
	rec, err := parseString(t, src, CPPPrefix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Name != "Ada Lovelace" {
		t.Errorf("name = %q", rec.Name)
	}
}

func TestParseTrailingWhitespaceTolerated(t *testing.T) {
	src := "// Ada   \n// ada@csu.fullerton.edu\t\n// @ada\n// Partners: @bob \n"
	rec, err := parseString(t, src, CPPPrefix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Name != "Ada" || rec.Partners != "Partners: @bob" {
		t.Errorf("record = %+v", rec)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sandwich.cc")
	if err := os.WriteFile(path, []byte(validCPP), 0644); err != nil {
		t.Fatal(err)
	}
	if !Check(path, CPPPrefix, nil) {
		t.Error("Check = false, want true")
	}

	_, err := ParseFile(filepath.Join(dir, "missing.cc"), CPPPrefix)
	wantKind(t, err, ReadFailure, 0)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("read failure should wrap os.ErrNotExist: %v", err)
	}
}

func TestParseErrorMessage(t *testing.T) {
	_, err := parseString(t, "// Ada\n// ada@gmail.com\n// @ada\n// Partners:\n", CPPPrefix)
	want := "main.cc: line 2: email address is not CSUF-issued"
	if err == nil || err.Error() != want {
		t.Errorf("error = %v, want %q", err, want)
	}
}

func TestIsGitHubHandle(t *testing.T) {
	tests := map[string]bool{
		"@a":                           true,
		"@Ada-Lovelace":                true,
		"@a1-b2-c3":                    true,
		"@" + strings.Repeat("x", 39):  true,
		"@" + strings.Repeat("x", 40):  false,
		"@-ada":                        false,
		"@ada-":                        false,
		"@ada--b":                      false,
		"ada":                          false,
		"@":                            false,
		"@ada_b":                       false,
		"@ada\n":                       false,
	}
	for in, want := range tests {
		if got := IsGitHubHandle(in); got != want {
			t.Errorf("IsGitHubHandle(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRecordIdentify(t *testing.T) {
	var nilRec *Record
	if got := nilRec.Identify(); got != "(Malformed Header)" {
		t.Errorf("Identify(nil) = %q", got)
	}
	rec := &Record{Name: "Ada", Email: "ada@csu.fullerton.edu", GitHub: "@ada"}
	if got := rec.Identify(); got != "Testing Ada ada@csu.fullerton.edu @ada" {
		t.Errorf("Identify = %q", got)
	}
}
