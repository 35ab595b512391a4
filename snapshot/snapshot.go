// Package snapshot captures the live contents of an intern table as a
// CBOR document and restores them later. A parser that faces the same
// vocabulary every run can pre-load a snapshot at startup so its hot tokens
// resolve on the read path from the first line onward.
package snapshot

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/chazu/intern"
)

// ErrDigestMismatch indicates snapshot content does not match its digest.
var ErrDigestMismatch = errors.New("snapshot digest mismatch")

// cborEncMode uses canonical options so equal snapshots encode to equal
// bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot is a vocabulary dump: every string that was live in a table at
// capture time, plus a content digest for integrity checking.
type Snapshot struct {
	ID        string    `cbor:"1,keyasint"`
	CreatedAt time.Time `cbor:"2,keyasint"`
	Digest    [32]byte  `cbor:"3,keyasint"`
	Strings   []string  `cbor:"4,keyasint"`
}

// Capture collects the live entries of tbl into a new snapshot. Entries are
// sorted so capture is deterministic for a given vocabulary.
func Capture(tbl *intern.Table) *Snapshot {
	vals := tbl.All()
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = v.String()
	}
	sort.Strings(strs)

	return &Snapshot{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Digest:    digest(strs),
		Strings:   strs,
	}
}

// digest hashes the length-prefixed concatenation of strs.
func digest(strs []string) [32]byte {
	h := sha256.New()
	var buf [binary.MaxVarintLen64]byte
	for _, s := range strs {
		n := binary.PutUvarint(buf[:], uint64(len(s)))
		h.Write(buf[:n])
		io.WriteString(h, s)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// Verify recomputes the content digest and checks it against the recorded
// one.
func (s *Snapshot) Verify() error {
	if digest(s.Strings) != s.Digest {
		return ErrDigestMismatch
	}
	return nil
}

// Restore verifies the snapshot and interns every string into tbl. The
// returned handles are the only thing keeping the restored vocabulary
// canonical; the caller must hold them for as long as the warm table is
// wanted.
func (s *Snapshot) Restore(tbl *intern.Table) ([]intern.Value, error) {
	if err := s.Verify(); err != nil {
		return nil, err
	}
	vals := make([]intern.Value, len(s.Strings))
	for i, str := range s.Strings {
		vals[i] = tbl.Intern(str)
	}
	return vals, nil
}

// Encode serializes the snapshot to CBOR bytes.
func (s *Snapshot) Encode() ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// Decode deserializes a snapshot from CBOR bytes.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return &s, nil
}

// Write encodes the snapshot to w.
func Write(w io.Writer, s *Snapshot) error {
	data, err := s.Encode()
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("snapshot: write: %w", err)
	}
	return nil
}

// Read decodes a snapshot from r.
func Read(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read: %w", err)
	}
	return Decode(data)
}
