package intern

import (
	"hash/maphash"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Value: the interned handle
// ---------------------------------------------------------------------------

// Value is an owning handle over one canonical payload. Copying a Value is
// the clone operation: it is a plain pointer copy, costs nothing, takes no
// lock, and shares the backing allocation. A Value stays readable for its
// whole lifetime regardless of what happens to the table it came from.
//
// Values are comparable with ==, which compares payload identity. For two
// handles obtained from the same table that is exactly content equality.
// Handles from different tables (or a zero Value next to an interned empty
// string) can be identity-distinct yet content-equal; use Equal when that
// distinction matters.
//
// The zero Value behaves as the empty string.
type Value struct {
	p *payload
}

var hashSeed = maphash.MakeSeed()

func hashString(s string) uint64 {
	return maphash.String(hashSeed, s)
}

// String returns the content. Value implements fmt.Stringer, so printing a
// handle renders its content directly.
func (v Value) String() string {
	if v.p == nil {
		return ""
	}
	return v.p.s
}

// GoString returns the content quoted, for %#v and debug output.
func (v Value) GoString() string {
	return strconv.Quote(v.String())
}

// Len returns the content length in bytes.
func (v Value) Len() int {
	if v.p == nil {
		return 0
	}
	return len(v.p.s)
}

// IsZero reports whether v is the zero Value. Note that the zero Value is
// still a valid handle for the empty string.
func (v Value) IsZero() bool {
	return v.p == nil
}

// Bytes returns a copy of the content. The backing allocation is never
// exposed mutably.
func (v Value) Bytes() []byte {
	return []byte(v.String())
}

// Equal reports whether v and o hold byte-for-byte equal content. Payload
// identity is used as a fast path; content comparison keeps the result
// correct for handles that did not come from the same table.
func (v Value) Equal(o Value) bool {
	if v.p == o.p {
		return true
	}
	return v.String() == o.String()
}

// Compare returns -1, 0, or +1 ordering v and o lexicographically by
// content, consistent with Equal.
func (v Value) Compare(o Value) int {
	if v.p == o.p {
		return 0
	}
	return strings.Compare(v.String(), o.String())
}

// Hash returns a 64-bit content hash, computed once at allocation time.
// Equal handles hash equal. The hash is seeded per process; do not persist
// it.
func (v Value) Hash() uint64 {
	if v.p == nil {
		return hashString("")
	}
	return v.p.hash
}

// MarshalText implements encoding.TextMarshaler.
func (v Value) MarshalText() ([]byte, error) {
	return v.Bytes(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The decoded content is
// re-interned through the default table, so handles deduplicate on decode
// exactly as they do on first construction.
func (v *Value) UnmarshalText(b []byte) error {
	*v = InternBytes(b)
	return nil
}
