package lab

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ormasoftchile/labcheck/pkg/suites"
)

// ValidationError is a single validation finding with its location.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`  // e.g. "parts[1].suite"
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// HasErrors reports whether any finding has error severity.
func HasErrors(errs []*ValidationError) bool {
	for _, e := range errs {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

// ValidateFile loads path and validates it in three phases: structural
// (strict YAML decode), semantic (JSON Schema) and domain (Go rules).
func ValidateFile(path string) (*Config, []*ValidationError) {
	c, err := LoadFile(path)
	if err != nil {
		return nil, []*ValidationError{{
			Phase:    "structural",
			Message:  err.Error(),
			Severity: "error",
		}}
	}
	return c, Validate(c)
}

// Validate runs the semantic and domain phases on an already decoded
// configuration. It returns nil when c is valid.
func Validate(c *Config) []*ValidationError {
	errs := validateSemantic(c)
	errs = append(errs, ValidateDomain(c)...)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func semanticError(format string, args ...any) []*ValidationError {
	return []*ValidationError{{
		Phase:    "semantic",
		Message:  fmt.Sprintf(format, args...),
		Severity: "error",
	}}
}

func validateSemantic(c *Config) []*ValidationError {
	data, err := json.Marshal(c)
	if err != nil {
		return semanticError("marshal for schema validation: %v", err)
	}
	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return semanticError("generate schema: %v", err)
	}
	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return semanticError("unmarshal schema: %v", err)
	}

	compiler := sjsonschema.NewCompiler()
	if err := compiler.AddResource("lab-v1.json", schemaDoc); err != nil {
		return semanticError("add schema resource: %v", err)
	}
	sch, err := compiler.Compile("lab-v1.json")
	if err != nil {
		return semanticError("compile schema: %v", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return semanticError("unmarshal document: %v", err)
	}
	err = sch.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return semanticError("%v", err)
	}
	var errs []*ValidationError
	for _, cause := range flatten(ve) {
		errs = append(errs, &ValidationError{
			Phase:    "semantic",
			Path:     strings.Join(cause.InstanceLocation, "/"),
			Message:  fmt.Sprintf("%v", cause.ErrorKind),
			Severity: "error",
		})
	}
	return errs
}

func flatten(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flatten(cause)...)
	}
	return flat
}

// ValidateDomain checks the rules a schema cannot express.
func ValidateDomain(c *Config) []*ValidationError {
	var errs []*ValidationError
	add := func(path, severity, format string, args ...any) {
		errs = append(errs, &ValidationError{
			Phase:    "domain",
			Path:     path,
			Message:  fmt.Sprintf(format, args...),
			Severity: severity,
		})
	}

	if _, err := time.Parse(time.DateOnly, c.DueDate); err != nil {
		add("due_date", "error", "due date %q is not YYYY-MM-DD", c.DueDate)
	}
	for section, d := range c.SectionDueDates {
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			add("section_due_dates."+section, "error", "due date %q is not YYYY-MM-DD", d)
		}
	}
	if strings.ContainsAny(c.MakefileName, `/\`) {
		add("makefile_name", "error", "makefile name %q must not contain a path separator", c.MakefileName)
	}
	if _, err := CompilePolicy(c.PassPolicy); err != nil {
		add("pass_policy", "error", "%v", err)
	}

	if len(c.Parts) == 0 {
		add("parts", "error", "a lab needs at least one part")
	}
	seen := map[string]int{}
	for i, p := range c.Parts {
		at := fmt.Sprintf("parts[%d]", i)
		if p.Dir == "" {
			add(at+".dir", "error", "part directory is empty")
		} else if j, dup := seen[p.Dir]; dup {
			add(at+".dir", "error", "directory %q already used by parts[%d]", p.Dir, j)
		} else {
			seen[p.Dir] = i
		}
		if p.Target == "" {
			add(at+".target", "error", "target is empty")
		}
		if len(p.Src) == 0 {
			add(at+".src", "error", "a part needs at least one graded source file")
		}
		if p.Suite == "" && len(p.Cases) == 0 {
			add(at, "warning", "no suite and no cases; the program is built but never run")
		}
		if p.Suite != "" {
			if _, err := suites.Lookup(p.Suite); err != nil {
				add(at+".suite", "error", "%v", err)
			}
		}
		for j, tc := range p.Cases {
			if _, err := tc.Matcher(); err != nil {
				add(fmt.Sprintf("%s.cases[%d].expect", at, j), "error", "%v", err)
			}
		}
	}
	return errs
}
