package intern

import (
	"strings"
	"sync"
	"sync/atomic"
	"weak"
)

// ---------------------------------------------------------------------------
// Table: the canonical store
// ---------------------------------------------------------------------------

// payload is the backing allocation for one distinct content value. Exactly
// one live payload exists per distinct string; every Value sharing that
// content points at the same payload. The content is never mutated after
// construction.
type payload struct {
	s    string
	hash uint64
}

func newPayload(s string) *payload {
	return &payload{s: s, hash: hashString(s)}
}

// Table maps string content to a weak reference to the single live payload
// holding that content. The table never keeps a payload alive; only Values
// do. Safe for any number of concurrent Intern calls.
//
// A slot whose weak pointer no longer resolves is stale. Stale slots are
// replaced when a later Intern call for the same content takes the write
// path, or removed in bulk by Cleanup. Dropping a Value never touches the
// table.
type Table struct {
	mu      sync.RWMutex
	entries map[string]weak.Pointer[payload]

	hits    atomic.Uint64
	misses  atomic.Uint64
	allocs  atomic.Uint64
	swept   atomic.Uint64
}

// NewTable creates a new empty canonical store.
func NewTable() *Table {
	return &Table{
		entries: make(map[string]weak.Pointer[payload]),
	}
}

// Intern returns the canonical Value for s, creating it if absent.
//
// The common case (s already interned and live) takes only the read lock,
// so concurrent readers do not block each other. The rare case (first
// insertion, or a stale slot) re-checks under the write lock before
// allocating, so two callers racing to intern identical content observe
// exactly one payload: the loser of the race never allocates.
func (t *Table) Intern(s string) Value {
	t.mu.RLock()
	if wp, ok := t.entries[s]; ok {
		if p := wp.Value(); p != nil {
			t.mu.RUnlock()
			t.hits.Add(1)
			return Value{p: p}
		}
	}
	t.mu.RUnlock()

	// Detach from any larger backing array the caller's string may share.
	return t.insert(strings.Clone(s))
}

// InternBytes returns the canonical Value for the content of b. On the hit
// path the lookup does not allocate (the compiler elides the string
// conversion for map index expressions); b is copied only on first insertion.
func (t *Table) InternBytes(b []byte) Value {
	t.mu.RLock()
	if wp, ok := t.entries[string(b)]; ok {
		if p := wp.Value(); p != nil {
			t.mu.RUnlock()
			t.hits.Add(1)
			return Value{p: p}
		}
	}
	t.mu.RUnlock()

	return t.insert(string(b))
}

// InternRunes interns the string formed by rs.
func (t *Table) InternRunes(rs []rune) Value {
	s := string(rs)
	if v, ok := t.Lookup(s); ok {
		t.hits.Add(1)
		return v
	}
	return t.insert(s)
}

// insert is the write path. s must not share a backing array with caller
// memory that outlives the call.
func (t *Table) insert(s string) Value {
	t.mu.Lock()

	// Double-check after acquiring the write lock: another goroutine may
	// have inserted the same content between the read and write phases.
	if wp, ok := t.entries[s]; ok {
		if p := wp.Value(); p != nil {
			t.mu.Unlock()
			t.hits.Add(1)
			return Value{p: p}
		}
	}

	p := newPayload(s)
	// Overwrites a stale slot for the same key, if any.
	t.entries[p.s] = weak.Make(p)
	t.mu.Unlock()

	t.misses.Add(1)
	t.allocs.Add(1)
	return Value{p: p}
}

// Lookup returns the canonical Value for s if one is live. It never inserts.
func (t *Table) Lookup(s string) (Value, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if wp, ok := t.entries[s]; ok {
		if p := wp.Value(); p != nil {
			return Value{p: p}, true
		}
	}
	return Value{}, false
}

// Cleanup removes all stale slots and returns how many were removed.
//
// Calling it is never required for correctness: stale slots are also
// replaced lazily on the next insertion that collides with them. It exists
// for callers that churn through many distinct keys and want the slot
// memory back before such a collision happens.
func (t *Table) Cleanup() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for k, wp := range t.entries {
		if wp.Value() == nil {
			delete(t.entries, k)
			removed++
		}
	}
	t.swept.Add(uint64(removed))
	return removed
}

// Len returns the number of slots in the table, stale slots included.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Live returns the number of slots whose payload is still reachable.
func (t *Table) Live() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, wp := range t.entries {
		if wp.Value() != nil {
			n++
		}
	}
	return n
}

// All returns a Value for every live entry. The returned handles keep their
// payloads alive until the caller drops them.
func (t *Table) All() []Value {
	t.mu.RLock()
	defer t.mu.RUnlock()

	vals := make([]Value, 0, len(t.entries))
	for _, wp := range t.entries {
		if p := wp.Value(); p != nil {
			vals = append(vals, Value{p: p})
		}
	}
	return vals
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats is a point-in-time snapshot of a table's counters.
type Stats struct {
	Hits        uint64 // Intern calls resolved from an existing live entry
	Misses      uint64 // Intern calls that inserted a new entry
	Allocations uint64 // payloads created (equals Misses)
	Swept       uint64 // stale slots removed by Cleanup
	Slots       int    // current table size, stale slots included
}

// Stats returns the table's counters.
func (t *Table) Stats() Stats {
	return Stats{
		Hits:        t.hits.Load(),
		Misses:      t.misses.Load(),
		Allocations: t.allocs.Load(),
		Swept:       t.swept.Load(),
		Slots:       t.Len(),
	}
}
