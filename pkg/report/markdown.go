package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/ormasoftchile/labcheck/pkg/expect"
)

// Markdown renders a row and its program-run outcomes as a markdown report.
func Markdown(r Row, outcomes []expect.Outcome, passed bool) string {
	var b strings.Builder
	verdict := "FAIL"
	if passed {
		verdict = "PASS"
	}
	fmt.Fprintf(&b, "# %s %s: %s\n\n", r.RepoName, r.Part, verdict)
	if r.Author != "" {
		fmt.Fprintf(&b, "Author: `%s`", r.Author)
		if len(r.Partners) > 0 {
			fmt.Fprintf(&b, ", partners: `%s`", strings.Join(r.Partners, "`, `"))
		}
		b.WriteString("\n\n")
	}

	b.WriteString("| Check | Result |\n|---|---|\n")
	for _, c := range r.checks() {
		v := c.value
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(&b, "| %s %s | %s |\n", CellStatus(c.value).Glyph(), c.label, v)
	}
	fmt.Fprintf(&b, "| DaysLate | %d |\n", r.DaysLate)

	if len(outcomes) > 0 {
		b.WriteString("\n## Program runs\n\n")
		for i, o := range outcomes {
			glyph := GlyphPassed
			if !o.Passed {
				glyph = GlyphFailed
			}
			fmt.Fprintf(&b, "%d. %s `%s` %s", i+1, glyph, o.Case.String(), o.Case.Kind)
			if o.Failure != expect.NoFailure {
				fmt.Fprintf(&b, ": %s", o.Failure)
				if o.Detail != "" {
					fmt.Fprintf(&b, " (%s)", o.Detail)
				}
			}
			b.WriteByte('\n')
		}
	}

	notes := append(append([]string(nil), r.Notes...), r.UnitTestNotes...)
	if len(notes) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, n := range notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	return b.String()
}

// RenderMarkdown styles md for the terminal, wrapping at width columns
// (0 disables wrapping). It returns md unchanged when rendering fails.
func RenderMarkdown(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
