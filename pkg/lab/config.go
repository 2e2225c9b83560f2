// Package lab defines the lab configuration YAML schema and provides
// strict parsing, validation and lookups over it.
package lab

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/labcheck/pkg/expect"
	"github.com/ormasoftchile/labcheck/pkg/suites"
	"github.com/ormasoftchile/labcheck/pkg/toolchain"
)

// Config describes one lab: its parts, due dates and grading settings. It
// is loaded once and treated as read-only.
type Config struct {
	Name string `yaml:"name" json:"name" jsonschema:"required"`
	// DueDate is the default due date, YYYY-MM-DD.
	DueDate string `yaml:"due_date" json:"due_date" jsonschema:"required,pattern=^[0-9]{4}-[0-9]{2}-[0-9]{2}$"`
	// SectionDueDates override DueDate per lab section (e.g. "tues").
	SectionDueDates map[string]string `yaml:"section_due_dates,omitempty" json:"section_due_dates,omitempty"`
	MakefileName    string            `yaml:"makefile_name,omitempty" json:"makefile_name,omitempty"`
	// HiddenMakefiles prefixes generated makefile names with a period.
	HiddenMakefiles bool `yaml:"hidden_makefiles,omitempty" json:"hidden_makefiles,omitempty"`
	// PassPolicy is an expression over the grading facts deciding the
	// process status. Empty means DefaultPassPolicy.
	PassPolicy string                `yaml:"pass_policy,omitempty" json:"pass_policy,omitempty"`
	Tidy       toolchain.TidyOptions `yaml:"tidy,omitempty" json:"tidy,omitempty"`
	Build      BuildSettings         `yaml:"build,omitempty" json:"build,omitempty"`
	Parts      []Part                `yaml:"parts" json:"parts" jsonschema:"required,minItems=1"`
}

// Part is one directory of the lab repository and the program built in it.
type Part struct {
	// Dir is the part's directory relative to the repository root.
	Dir    string `yaml:"dir" json:"dir" jsonschema:"required"`
	Target string `yaml:"target" json:"target" jsonschema:"required"`
	// Src and Headers are graded for header, format and lint.
	Src     []string `yaml:"src" json:"src" jsonschema:"required,minItems=1"`
	Headers []string `yaml:"headers,omitempty" json:"headers,omitempty"`
	// OtherSrc and OtherHeaders are needed to build but are not graded.
	OtherSrc     []string `yaml:"other_src,omitempty" json:"other_src,omitempty"`
	OtherHeaders []string `yaml:"other_headers,omitempty" json:"other_headers,omitempty"`
	// Suite names a registered test suite; Cases are appended to it.
	Suite string            `yaml:"suite,omitempty" json:"suite,omitempty"`
	Cases []expect.TestCase `yaml:"cases,omitempty" json:"cases,omitempty"`

	FormatCheck *bool `yaml:"format_check,omitempty" json:"format_check,omitempty"`
	LintCheck   *bool `yaml:"lint_check,omitempty" json:"lint_check,omitempty"`
	UnitTests   bool  `yaml:"unit_tests,omitempty" json:"unit_tests,omitempty"`
	// Tidy replaces the lab-wide clang-tidy options for this part.
	Tidy *toolchain.TidyOptions `yaml:"tidy,omitempty" json:"tidy,omitempty"`
}

// BuildSettings feed the generated makefiles.
type BuildSettings struct {
	CXX       string              `yaml:"cxx,omitempty" json:"cxx,omitempty"`
	CXXFlags  string              `yaml:"cxxflags,omitempty" json:"cxxflags,omitempty"`
	LDFlags   string              `yaml:"ldflags,omitempty" json:"ldflags,omitempty"`
	Platforms map[string]Platform `yaml:"platforms,omitempty" json:"platforms,omitempty"`
}

// Platform holds per-OS additions keyed by `uname -s` in lower case.
type Platform struct {
	CXXFlags      string `yaml:"cxxflags,omitempty" json:"cxxflags,omitempty"`
	LDFlags       string `yaml:"ldflags,omitempty" json:"ldflags,omitempty"`
	Sed           string `yaml:"sed,omitempty" json:"sed,omitempty"`
	GTestIncludes string `yaml:"gtest_includes,omitempty" json:"gtest_includes,omitempty"`
	GTestLibs     string `yaml:"gtest_libs,omitempty" json:"gtest_libs,omitempty"`
}

// DoFormatCheck reports whether the part's files are format checked.
func (p Part) DoFormatCheck() bool { return p.FormatCheck == nil || *p.FormatCheck }

// DoLintCheck reports whether the part's files are linted.
func (p Part) DoLintCheck() bool { return p.LintCheck == nil || *p.LintCheck }

// GradedFiles lists Src then Headers.
func (p Part) GradedFiles() []string {
	files := make([]string, 0, len(p.Src)+len(p.Headers))
	files = append(files, p.Src...)
	return append(files, p.Headers...)
}

// TestCases returns the part's test table: its suite followed by inline
// cases.
func (p Part) TestCases() ([]expect.TestCase, error) {
	return suites.Cases(p.Suite, p.Cases)
}

// Makefile returns the makefile name used in every part directory.
func (c *Config) Makefile() string {
	name := c.MakefileName
	if name == "" {
		name = "Makefile"
	}
	if c.HiddenMakefiles {
		return "." + name
	}
	return name
}

// TidyFor returns the clang-tidy options that apply to p.
func (c *Config) TidyFor(p Part) toolchain.TidyOptions {
	if p.Tidy != nil {
		return *p.Tidy
	}
	return c.Tidy
}

// Part finds a part by directory name.
func (c *Config) Part(dir string) (Part, bool) {
	for _, p := range c.Parts {
		if p.Dir == dir {
			return p, true
		}
	}
	return Part{}, false
}

// Due returns the due date for section, falling back to DueDate.
func (c *Config) Due(section string) (time.Time, error) {
	s := c.DueDate
	if d, ok := c.SectionDueDates[section]; ok && section != "" {
		s = d
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("due date %q: %w", s, err)
	}
	return t, nil
}

// LoadFile reads a lab configuration from path with strict unknown-field
// rejection.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lab config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a lab configuration from r with strict unknown-field
// rejection.
func Load(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Config
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode lab config: %w", err)
	}
	return &c, nil
}
