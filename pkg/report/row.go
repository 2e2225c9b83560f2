// Package report writes grading results: the CSV grade log, a terminal
// summary and a markdown report.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Columns is the grade log header, in order.
var Columns = []string{
	"Repo Name",
	"Part",
	"Author",
	"Partner1",
	"Partner2",
	"Partner3",
	"PartnerN",
	"Header",
	"Formatting",
	"Linting",
	"Build",
	"Tests",
	"UnitTests",
	"Notes",
	"UnitTestNotes",
	"DaysLate",
}

// Skipped marks a check the lab configuration turned off.
const Skipped = "Skipped"

// Row is one grade log entry for one part of one repository.
type Row struct {
	RepoName string
	Part     string
	Author   string
	// Partners are lower-case GitHub logins without "@". The first three
	// get their own columns; the rest share PartnerN.
	Partners      []string
	Header        string
	Formatting    string
	Linting       string
	Build         string
	Tests         string
	UnitTests     string
	Notes         []string
	UnitTestNotes []string
	DaysLate      int
}

// Note appends a line to the row's notes.
func (r *Row) Note(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// Record renders the row in Columns order.
func (r Row) Record() []string {
	partner := func(i int) string {
		if i < len(r.Partners) {
			return r.Partners[i]
		}
		return ""
	}
	var rest string
	if len(r.Partners) > 3 {
		rest = strings.Join(r.Partners[3:], ";")
	}
	return []string{
		r.RepoName,
		r.Part,
		r.Author,
		partner(0),
		partner(1),
		partner(2),
		rest,
		r.Header,
		r.Formatting,
		r.Linting,
		r.Build,
		r.Tests,
		r.UnitTests,
		joinLines(r.Notes),
		joinLines(r.UnitTestNotes),
		strconv.Itoa(r.DaysLate),
	}
}

func joinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// FileName is the grade log name for a repository part.
func FileName(repo, part string) string {
	return fmt.Sprintf(".%s_%s_gradelog.csv", repo, part)
}

// WriteCSV writes the header and rows.
func WriteCSV(w io.Writer, rows ...Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write grade log header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return fmt.Errorf("write grade log row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes row to its grade log in dir and returns the path.
func WriteFile(dir string, row Row) (string, error) {
	path := filepath.Join(dir, FileName(row.RepoName, row.Part))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create grade log: %w", err)
	}
	if err := WriteCSV(f, row); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close grade log: %w", err)
	}
	return path, nil
}

// ReadCSV parses a grade log written by WriteCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read grade log: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if strings.Join(records[0], ",") != strings.Join(Columns, ",") {
		return nil, fmt.Errorf("read grade log: unexpected header %q", records[0])
	}
	var rows []Row
	for i, rec := range records[1:] {
		if len(rec) != len(Columns) {
			return nil, fmt.Errorf("read grade log: row %d has %d fields", i+1, len(rec))
		}
		late, err := strconv.Atoi(rec[15])
		if err != nil {
			return nil, fmt.Errorf("read grade log: row %d DaysLate: %w", i+1, err)
		}
		row := Row{
			RepoName:      rec[0],
			Part:          rec[1],
			Author:        rec[2],
			Header:        rec[7],
			Formatting:    rec[8],
			Linting:       rec[9],
			Build:         rec[10],
			Tests:         rec[11],
			UnitTests:     rec[12],
			Notes:         splitLines(rec[13]),
			UnitTestNotes: splitLines(rec[14]),
			DaysLate:      late,
		}
		for _, p := range rec[3:6] {
			if p != "" {
				row.Partners = append(row.Partners, p)
			}
		}
		if rec[6] != "" {
			row.Partners = append(row.Partners, strings.Split(rec[6], ";")...)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadDir reads every grade log in dir, sorted by file name.
func ReadDir(dir string) ([]Row, error) {
	paths, err := filepath.Glob(filepath.Join(dir, ".*_gradelog.csv"))
	if err != nil {
		return nil, fmt.Errorf("find grade logs: %w", err)
	}
	var rows []Row
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open grade log: %w", err)
		}
		got, err := ReadCSV(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		rows = append(rows, got...)
	}
	return rows, nil
}
