package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Check status glyphs.
const (
	GlyphPassed  = "✓"
	GlyphFailed  = "✗"
	GlyphSkipped = "○"
)

var (
	colorGreen = lipgloss.Color("42")
	colorRed   = lipgloss.Color("196")
	colorCyan  = lipgloss.Color("51")
	colorDim   = lipgloss.Color("240")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	passedStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	failedStyle  = lipgloss.NewStyle().Foreground(colorRed)
	skippedStyle = lipgloss.NewStyle().Faint(true)
	noteStyle    = lipgloss.NewStyle().Foreground(colorDim)
	verdictPass  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	verdictFail  = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	panelBorder  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

// Status classifies a grade log cell.
type Status int

const (
	StatusSkipped Status = iota
	StatusPassed
	StatusFailed
)

// Glyph returns the status glyph.
func (s Status) Glyph() string {
	switch s {
	case StatusPassed:
		return GlyphPassed
	case StatusFailed:
		return GlyphFailed
	default:
		return GlyphSkipped
	}
}

func (s Status) style() lipgloss.Style {
	switch s {
	case StatusPassed:
		return passedStyle
	case StatusFailed:
		return failedStyle
	default:
		return skippedStyle
	}
}

// CellStatus classifies a Header, Build or ratio cell. "1" passes and "0"
// fails; "a/b" passes when a == b and b > 0. Anything else is skipped.
func CellStatus(v string) Status {
	switch v {
	case "1":
		return StatusPassed
	case "0":
		return StatusFailed
	}
	a, b, ok := ParseRatio(v)
	switch {
	case !ok || b == 0:
		return StatusSkipped
	case a == b:
		return StatusPassed
	default:
		return StatusFailed
	}
}

// Ratio formats a passed/total cell.
func Ratio(passed, total int) string {
	return fmt.Sprintf("%d/%d", passed, total)
}

// ParseRatio parses a cell written by Ratio.
func ParseRatio(v string) (passed, total int, ok bool) {
	a, b, found := strings.Cut(v, "/")
	if !found {
		return 0, 0, false
	}
	p, err1 := strconv.Atoi(a)
	t, err2 := strconv.Atoi(b)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return p, t, true
}

type check struct {
	label string
	value string
}

func (r Row) checks() []check {
	return []check{
		{"Header", r.Header},
		{"Formatting", r.Formatting},
		{"Linting", r.Linting},
		{"Build", r.Build},
		{"Tests", r.Tests},
		{"UnitTests", r.UnitTests},
	}
}

// padRight pads s to width display columns.
func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// Summary renders one row as a bordered terminal panel.
func Summary(r Row, passed bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", r.RepoName, r.Part)))
	b.WriteByte('\n')
	if r.Author != "" {
		who := r.Author
		if len(r.Partners) > 0 {
			who += " with " + strings.Join(r.Partners, ", ")
		}
		b.WriteString(noteStyle.Render(who))
		b.WriteByte('\n')
	}
	for _, c := range r.checks() {
		st := CellStatus(c.value)
		value := c.value
		if value == "" {
			value = "-"
		}
		line := fmt.Sprintf("%s %s %s", st.Glyph(), padRight(c.label, 10), value)
		b.WriteString(st.style().Render(line))
		b.WriteByte('\n')
	}
	if r.DaysLate > 0 {
		b.WriteString(failedStyle.Render(fmt.Sprintf("%s %s %d", GlyphFailed, padRight("DaysLate", 10), r.DaysLate)))
		b.WriteByte('\n')
	}
	for _, n := range append(append([]string(nil), r.Notes...), r.UnitTestNotes...) {
		b.WriteString(noteStyle.Render("  " + n))
		b.WriteByte('\n')
	}
	if passed {
		b.WriteString(verdictPass.Render("PASS"))
	} else {
		b.WriteString(verdictFail.Render("FAIL"))
	}
	return panelBorder.Render(b.String())
}

// Table renders rows as an aligned plain-text table, one row per part.
func Table(rows []Row) string {
	header := []string{"Repo", "Part", "Author", "Header", "Format", "Lint", "Build", "Tests", "Unit", "Late"}
	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, header)
	for _, r := range rows {
		cells = append(cells, []string{
			r.RepoName, r.Part, r.Author,
			cell(r.Header), cell(r.Formatting), cell(r.Linting),
			cell(r.Build), cell(r.Tests), cell(r.UnitTests),
			strconv.Itoa(r.DaysLate),
		})
	}
	widths := make([]int, len(header))
	for _, row := range cells {
		for i, c := range row {
			if w := runewidth.StringWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	var b strings.Builder
	for n, row := range cells {
		for i, c := range row {
			if i == len(row)-1 {
				b.WriteString(c)
			} else {
				b.WriteString(padRight(c, widths[i]+2))
			}
		}
		b.WriteByte('\n')
		if n == 0 {
			total := 0
			for _, w := range widths {
				total += w + 2
			}
			b.WriteString(strings.Repeat("─", total-2))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func cell(v string) string {
	st := CellStatus(v)
	if v == "" {
		return st.Glyph()
	}
	return st.Glyph() + " " + v
}
