package lab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderPartMakefile(t *testing.T) {
	c := Default()
	var b strings.Builder
	if err := RenderPartMakefile(&b, c, c.Parts[1]); err != nil {
		t.Fatal(err)
	}
	mk := b.String()
	for _, want := range []string{
		"TARGET = blackjack\n",
		"SRC = blackjack.cc blackjack_functions.cc\n",
		"HEADERS = blackjack_functions.h\n",
		"CXX = clang++\n",
		"ifeq ($(UNAME_S),darwin)\nCXXFLAGS += -D OSX",
		"SED = gsed\n",
		"unittest: $(TARGET)_functions.o $(TARGET)_unittest.cc\n",
		"\t@./unittest --gtest_output=$(GTEST_OUTPUT_FORMAT):$(GTEST_OUTPUT_FILE)\n",
		"spotless: clean\n\trm -f $(GTEST_OUTPUT_FILE) *~\n",
		"test: all\n\t$(LABCHECK) check part-2\n",
	} {
		if !strings.Contains(mk, want) {
			t.Errorf("makefile missing %q:\n%s", want, mk)
		}
	}
}

func TestRenderPartMakefileWithoutUnitTests(t *testing.T) {
	c := Default()
	p := c.Parts[0]
	p.UnitTests = false
	var b strings.Builder
	if err := RenderPartMakefile(&b, c, p); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(b.String(), "unittest:") {
		t.Errorf("unexpected unittest target:\n%s", b.String())
	}
}

func TestWriteMakefiles(t *testing.T) {
	c := Default()
	c.HiddenMakefiles = true
	root := t.TempDir()
	written, err := WriteMakefiles(root, c)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, ".Makefile"),
		filepath.Join(root, "part-1", ".Makefile"),
		filepath.Join(root, "part-2", ".Makefile"),
	}
	if strings.Join(written, "\n") != strings.Join(want, "\n") {
		t.Errorf("written = %v, want %v", written, want)
	}
	data, err := os.ReadFile(want[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "PARTS = part-1 part-2\nMAKEFILE = .Makefile\n") {
		t.Errorf("root makefile:\n%s", data)
	}
}
