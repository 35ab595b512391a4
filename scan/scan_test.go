package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/intern"
)

func TestReaderCounts(t *testing.T) {
	tbl := intern.NewTable()
	in := "the cat sat on the mat the end"

	res, err := Reader(strings.NewReader(in), tbl, DefaultProfile())
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}

	r := res.Report
	if r.Tokens != 8 {
		t.Errorf("Tokens = %d, want 8", r.Tokens)
	}
	if r.Distinct != 6 {
		t.Errorf("Distinct = %d, want 6", r.Distinct)
	}
	// "the" appears three times: two repeats of three bytes saved.
	if got := r.Savings(); got != 6 {
		t.Errorf("Savings = %d, want 6", got)
	}
	if len(res.Vocabulary) != 6 {
		t.Errorf("Vocabulary size = %d, want 6", len(res.Vocabulary))
	}
}

// TestScannerCanonical verifies repeated tokens resolve to one payload.
func TestScannerCanonical(t *testing.T) {
	tbl := intern.NewTable()

	s := New(strings.NewReader("alpha beta alpha"), tbl, DefaultProfile())
	var toks []intern.Value
	for s.Scan() {
		toks = append(toks, s.Token())
	}
	if err := s.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}

	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3", len(toks))
	}
	if toks[0] != toks[2] {
		t.Errorf("repeated token not canonical")
	}
	if toks[0] == toks[1] {
		t.Errorf("distinct tokens share a payload")
	}
	if allocs := tbl.Stats().Allocations; allocs != 2 {
		t.Errorf("Allocations = %d, want 2", allocs)
	}
}

func TestDelimiters(t *testing.T) {
	prof := DefaultProfile()
	prof.Delimiters = ",;"

	res, err := Reader(strings.NewReader("a,b;c a"), intern.NewTable(), prof)
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	if res.Report.Tokens != 4 || res.Report.Distinct != 3 {
		t.Errorf("Tokens = %d, Distinct = %d, want 4, 3",
			res.Report.Tokens, res.Report.Distinct)
	}
}

func TestFoldCase(t *testing.T) {
	prof := DefaultProfile()
	prof.FoldCase = true

	res, err := Reader(strings.NewReader("Word word WORD"), intern.NewTable(), prof)
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	if res.Report.Distinct != 1 {
		t.Errorf("Distinct = %d with case folding, want 1", res.Report.Distinct)
	}
}

func TestLengthBounds(t *testing.T) {
	prof := DefaultProfile()
	prof.MinLength = 3
	prof.MaxLength = 5

	res, err := Reader(strings.NewReader("a ab abc abcde abcdef"), intern.NewTable(), prof)
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	if res.Report.Tokens != 2 {
		t.Errorf("Tokens = %d, want 2 (abc, abcde)", res.Report.Tokens)
	}
	if res.Report.Oversized != 1 {
		t.Errorf("Oversized = %d, want 1", res.Report.Oversized)
	}
}

func TestReportAdd(t *testing.T) {
	a := Report{Tokens: 10, Distinct: 4, TokenBytes: 50, DistinctBytes: 20}
	b := Report{Tokens: 5, Distinct: 2, TokenBytes: 25, DistinctBytes: 10, Oversized: 1}

	a.Add(b)
	if a.Tokens != 15 || a.Distinct != 6 || a.TokenBytes != 75 ||
		a.DistinctBytes != 30 || a.Oversized != 1 {
		t.Errorf("merged report = %+v", a)
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(path, []byte("x y x\nz x\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	res, err := File(path, intern.NewTable(), DefaultProfile())
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if res.Report.Tokens != 5 || res.Report.Distinct != 3 {
		t.Errorf("Tokens = %d, Distinct = %d, want 5, 3",
			res.Report.Tokens, res.Report.Distinct)
	}
}

func TestFileMissing(t *testing.T) {
	if _, err := File(filepath.Join(t.TempDir(), "absent"), nil, DefaultProfile()); err == nil {
		t.Errorf("File on missing path succeeded")
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.toml")
	src := `
delimiters = ",|"
min-length = 2
max-length = 64
fold-case = true
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.Delimiters != ",|" || p.MinLength != 2 || p.MaxLength != 64 || !p.FoldCase {
		t.Errorf("profile = %+v", p)
	}
}

func TestLoadProfileDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.toml")
	if err := os.WriteFile(path, []byte("min-length = -3\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.MinLength != 1 {
		t.Errorf("MinLength = %d, want clamped to 1", p.MinLength)
	}
	if p.MaxLength != 256 {
		t.Errorf("MaxLength = %d, want default 256", p.MaxLength)
	}
}

func TestLoadProfileMissing(t *testing.T) {
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Errorf("LoadProfile on missing path succeeded")
	}
}
