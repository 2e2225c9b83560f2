package lab

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var makefiles = template.Must(template.New("makefiles").Funcs(template.FuncMap{
	// join concatenates file lists with single spaces.
	"join": func(lists ...[]string) string {
		var all []string
		for _, l := range lists {
			all = append(all, l...)
		}
		return strings.Join(all, " ")
	},
}).ParseFS(templateFS, "templates/*.tmpl"))

type partData struct {
	Lab   string
	Part  Part
	Build BuildSettings
}

type rootData struct {
	Lab      string
	Parts    []Part
	Makefile string
}

// RenderPartMakefile writes the makefile that builds, cleans and tests p.
func RenderPartMakefile(w io.Writer, c *Config, p Part) error {
	if err := makefiles.ExecuteTemplate(w, "part.mk.tmpl", partData{Lab: c.Name, Part: p, Build: c.Build}); err != nil {
		return fmt.Errorf("render makefile for %s: %w", p.Dir, err)
	}
	return nil
}

// RenderRootMakefile writes the makefile that runs a target in every part.
func RenderRootMakefile(w io.Writer, c *Config) error {
	if err := makefiles.ExecuteTemplate(w, "root.mk.tmpl", rootData{Lab: c.Name, Parts: c.Parts, Makefile: c.Makefile()}); err != nil {
		return fmt.Errorf("render root makefile: %w", err)
	}
	return nil
}

// WriteMakefiles generates the root makefile in root and one makefile in
// each part directory, creating directories as needed. It returns the
// paths written.
func WriteMakefiles(root string, c *Config) ([]string, error) {
	var written []string
	write := func(dir string, render func(io.Writer) error) error {
		var buf bytes.Buffer
		if err := render(&buf); err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		path := filepath.Join(dir, c.Makefile())
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	if err := write(root, func(w io.Writer) error { return RenderRootMakefile(w, c) }); err != nil {
		return written, err
	}
	for _, p := range c.Parts {
		if err := write(filepath.Join(root, p.Dir), func(w io.Writer) error { return RenderPartMakefile(w, c, p) }); err != nil {
			return written, err
		}
	}
	return written, nil
}
