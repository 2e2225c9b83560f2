package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormasoftchile/labcheck/pkg/expect"
)

func sampleRow() Row {
	return Row{
		RepoName:      "lab-05-octocat",
		Part:          "part-1",
		Author:        "octocat",
		Partners:      []string{"hubot", "monalisa", "defunkt", "mojombo", "wycats"},
		Header:        "1",
		Formatting:    "1/1",
		Linting:       "0/1",
		Build:         "1",
		Tests:         "7/8",
		UnitTests:     Skipped,
		Notes:         []string{"sandwich.cc, line 12: warning: use nullptr", "Program runs failed: 1"},
		UnitTestNotes: []string{"Unit tests disabled."},
		DaysLate:      2,
	}
}

func TestRecordPartners(t *testing.T) {
	rec := sampleRow().Record()
	require.Len(t, rec, len(Columns))
	assert.Equal(t, []string{"hubot", "monalisa", "defunkt", "mojombo;wycats"}, rec[3:7])
	assert.Equal(t, "sandwich.cc, line 12: warning: use nullptr\nProgram runs failed: 1\n", rec[13])
	assert.Equal(t, "2", rec[15])
}

func TestRecordFewPartners(t *testing.T) {
	r := Row{Partners: []string{"hubot"}}
	rec := r.Record()
	assert.Equal(t, []string{"hubot", "", "", ""}, rec[3:7])
	assert.Equal(t, "", rec[13])
	assert.Equal(t, "0", rec[15])
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	row := sampleRow()
	require.NoError(t, WriteCSV(&buf, row))
	assert.True(t, strings.HasPrefix(buf.String(), "Repo Name,Part,Author,Partner1"))

	rows, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, row, rows[0])
}

func TestReadCSVRejectsForeignHeader(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2\n"))
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, ".lab-05-octocat_part-2_gradelog.csv", FileName("lab-05-octocat", "part-2"))
}

func TestWriteFileAndReadDir(t *testing.T) {
	dir := t.TempDir()
	a := sampleRow()
	b := sampleRow()
	b.Part = "part-2"
	for _, r := range []Row{b, a} {
		path, err := WriteFile(dir, r)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, FileName(r.RepoName, r.Part)), path)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.csv"), []byte("x\n"), 0o644))

	rows, err := ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "part-1", rows[0].Part)
	assert.Equal(t, "part-2", rows[1].Part)
}

func TestCellStatus(t *testing.T) {
	tests := map[string]Status{
		"1":       StatusPassed,
		"0":       StatusFailed,
		"3/3":     StatusPassed,
		"2/3":     StatusFailed,
		"0/0":     StatusSkipped,
		Skipped:   StatusSkipped,
		"":        StatusSkipped,
		"garbage": StatusSkipped,
	}
	for in, want := range tests {
		assert.Equal(t, want, CellStatus(in), "CellStatus(%q)", in)
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, "4/6", Ratio(4, 6))
	p, total, ok := ParseRatio("4/6")
	assert.True(t, ok)
	assert.Equal(t, 4, p)
	assert.Equal(t, 6, total)
	_, _, ok = ParseRatio("4of6")
	assert.False(t, ok)
}

func TestSummary(t *testing.T) {
	out := Summary(sampleRow(), false)
	for _, want := range []string{
		"lab-05-octocat part-1",
		GlyphPassed + " Header",
		GlyphFailed + " Linting",
		GlyphFailed + " Tests",
		GlyphSkipped + " UnitTests",
		"Unit tests disabled.",
		"FAIL",
	} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, Summary(Row{RepoName: "r", Part: "p"}, true), "PASS")
}

func TestTableAligns(t *testing.T) {
	a := sampleRow()
	b := sampleRow()
	b.Author = "名前"
	out := Table([]Row{a, b})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	// Columns after the wide author start at the same display offset.
	idx := func(s string) int {
		i := strings.Index(s, GlyphPassed+" 1")
		return runewidthPrefix(s[:i])
	}
	assert.Equal(t, idx(lines[2]), idx(lines[3]))
}

func runewidthPrefix(s string) int {
	return len([]rune(strings.ReplaceAll(s, "名前", "xxxx")))
}

func TestMarkdown(t *testing.T) {
	outcomes := []expect.Outcome{
		{Case: expect.TestCase{Kind: expect.SuccessCase, Arguments: []string{"ham"}}, Passed: true},
		{Case: expect.TestCase{Kind: expect.ErrorCase}, Failure: expect.Timeout, Detail: "expected \"error\""},
	}
	md := Markdown(sampleRow(), outcomes, false)
	assert.True(t, strings.HasPrefix(md, "# lab-05-octocat part-1: FAIL\n"))
	assert.Contains(t, md, "| "+GlyphFailed+" Tests | 7/8 |")
	assert.Contains(t, md, "1. "+GlyphPassed+" `['ham']` success")
	assert.Contains(t, md, "2. "+GlyphFailed)
	assert.Contains(t, md, "- Unit tests disabled.")
}

func TestRenderMarkdown(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown("", 80))
	out := RenderMarkdown("# Title\n\nsandwich report", 80)
	assert.Contains(t, out, "sandwich report")
}
