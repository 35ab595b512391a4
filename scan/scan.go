package scan

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/chazu/intern"
)

// Report accumulates what a scan saw and what interning saved.
type Report struct {
	Tokens        uint64 // tokens accepted by the profile
	Distinct      uint64 // distinct interned tokens
	TokenBytes    uint64 // total bytes across all accepted tokens
	DistinctBytes uint64 // bytes across distinct tokens (what is actually held)
	Oversized     uint64 // tokens skipped by MaxLength
}

// Savings returns how many token bytes deduplication avoided holding.
func (r Report) Savings() uint64 {
	if r.TokenBytes < r.DistinctBytes {
		return 0
	}
	return r.TokenBytes - r.DistinctBytes
}

// Add merges o into r, summing every counter. Distinct counts are additive
// only when the scans used separate vocabularies; for scans sharing a table
// the merged Distinct overcounts tokens seen by both.
func (r *Report) Add(o Report) {
	r.Tokens += o.Tokens
	r.Distinct += o.Distinct
	r.TokenBytes += o.TokenBytes
	r.DistinctBytes += o.DistinctBytes
	r.Oversized += o.Oversized
}

// Result is the outcome of a scan: the report plus the distinct vocabulary.
// The vocabulary handles keep the scanned tokens canonical; drop the Result
// and the table entries for tokens nobody else holds go stale.
type Result struct {
	Report     Report
	Vocabulary []intern.Value
}

// Scanner tokenizes a stream and interns each accepted token.
type Scanner struct {
	tbl  *intern.Table
	prof Profile
	sc   *bufio.Scanner
	tok  intern.Value
	seen map[intern.Value]struct{}
	rep  Report
}

// New creates a Scanner reading from r into tbl. A nil tbl uses the
// process-wide table.
func New(r io.Reader, tbl *intern.Table, prof Profile) *Scanner {
	if tbl == nil {
		tbl = intern.Default()
	}
	sc := bufio.NewScanner(r)
	sc.Split(prof.splitFunc())
	return &Scanner{
		tbl:  tbl,
		prof: prof,
		sc:   sc,
		seen: make(map[intern.Value]struct{}),
	}
}

// Scan advances to the next accepted token. It returns false at end of
// input or on a read error; check Err afterwards.
func (s *Scanner) Scan() bool {
	for s.sc.Scan() {
		tok := s.sc.Bytes()
		if len(tok) < s.prof.MinLength {
			continue
		}
		if s.prof.MaxLength > 0 && len(tok) > s.prof.MaxLength {
			s.rep.Oversized++
			continue
		}
		if s.prof.FoldCase {
			tok = bytes.ToLower(tok)
		}

		v := s.tbl.InternBytes(tok)
		s.rep.Tokens++
		s.rep.TokenBytes += uint64(len(tok))
		if _, ok := s.seen[v]; !ok {
			s.seen[v] = struct{}{}
			s.rep.Distinct++
			s.rep.DistinctBytes += uint64(len(tok))
		}
		s.tok = v
		return true
	}
	return false
}

// Token returns the handle for the last token accepted by Scan.
func (s *Scanner) Token() intern.Value {
	return s.tok
}

// Err returns the first error encountered by the underlying reader.
func (s *Scanner) Err() error {
	return s.sc.Err()
}

// Report returns the counters so far.
func (s *Scanner) Report() Report {
	return s.rep
}

// Result returns the counters and the distinct vocabulary so far.
func (s *Scanner) Result() *Result {
	vocab := make([]intern.Value, 0, len(s.seen))
	for v := range s.seen {
		vocab = append(vocab, v)
	}
	return &Result{Report: s.rep, Vocabulary: vocab}
}

// Reader scans r to completion.
func Reader(r io.Reader, tbl *intern.Table, prof Profile) (*Result, error) {
	s := New(r, tbl, prof)
	for s.Scan() {
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return s.Result(), nil
}

// File scans the named file to completion.
func File(path string, tbl *intern.Table, prof Profile) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	defer f.Close()
	return Reader(f, tbl, prof)
}
