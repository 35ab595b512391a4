// Package scan tokenizes byte streams and interns every token, measuring
// how much a workload benefits from deduplication. It is the producing side
// of the intern package: many scanners can feed one table concurrently.
package scan

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
)

// Profile configures tokenization. The zero value is not useful; start from
// DefaultProfile or LoadProfile.
type Profile struct {
	// Delimiters lists runes that split tokens in addition to Unicode
	// whitespace.
	Delimiters string `toml:"delimiters"`

	// MinLength drops tokens shorter than this many bytes.
	MinLength int `toml:"min-length"`

	// MaxLength stops tokens longer than this many bytes from being
	// interned, so one pathological input line cannot grow the table
	// unboundedly. 0 means no limit. Oversized tokens still count toward
	// the totals.
	MaxLength int `toml:"max-length"`

	// FoldCase lowercases tokens before interning.
	FoldCase bool `toml:"fold-case"`
}

// DefaultProfile returns the profile used when no configuration file is
// given: whitespace-separated tokens up to 256 bytes.
func DefaultProfile() Profile {
	return Profile{
		MinLength: 1,
		MaxLength: 256,
	}
}

// LoadProfile parses a TOML profile file.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("cannot read %s: %w", path, err)
	}

	p := DefaultProfile()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if p.MinLength < 1 {
		p.MinLength = 1
	}
	if p.MaxLength < 0 {
		p.MaxLength = 0
	}
	return p, nil
}

func (p Profile) isDelim(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(p.Delimiters, r)
}

// splitFunc generalizes bufio.ScanWords to the profile's delimiter set.
func (p Profile) splitFunc() bufio.SplitFunc {
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		// Skip leading delimiters.
		start := 0
		for width := 0; start < len(data); start += width {
			var r rune
			r, width = utf8.DecodeRune(data[start:])
			if !p.isDelim(r) {
				break
			}
		}
		// Scan until the next delimiter.
		for width, i := 0, start; i < len(data); i += width {
			var r rune
			r, width = utf8.DecodeRune(data[i:])
			if p.isDelim(r) {
				return i + width, data[start:i], nil
			}
		}
		if atEOF && len(data) > start {
			return len(data), data[start:], nil
		}
		// Request more data.
		return start, nil, nil
	}
}
