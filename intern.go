// Package intern provides a process-wide deduplication table for immutable
// string values.
//
// When many independent producers parse or construct strings that repeat the
// same character sequence (column names, tags, tokens in a large file),
// interning guarantees that logically equal sequences share exactly one
// backing allocation. That cuts peak memory and turns most equality checks
// into a single pointer comparison.
//
// The table maps content to a weak reference to the single live allocation
// for that content. It never keeps an allocation alive on its own: once the
// last handle for a string is dropped, the allocation is reclaimable by the
// garbage collector and its table slot goes stale. Stale slots are cleaned
// up lazily, on the next insertion that collides with them or by an explicit
// Cleanup pass; there is no background sweeper.
//
// The table is guarded by a reader/writer lock. Interning content that is
// already present takes only the read lock, so readers do not block each
// other. First-time insertion takes the write lock and re-checks the table
// before allocating, so concurrent first-time interning of identical content
// produces exactly one allocation.
//
// The single process-wide lock serializes all insertions. That is a known
// bound on throughput under heavy first-time-interning workloads; the target
// workload is repeated content, where lookups dominate.
package intern

// defaultTable is the process-wide canonical store. It is reachable only
// through the package-level functions below, never as a raw mutable handle,
// and lives for the lifetime of the process.
var defaultTable = NewTable()

// Intern returns the canonical Value for s from the process-wide table.
func Intern(s string) Value {
	return defaultTable.Intern(s)
}

// InternBytes returns the canonical Value for the content of b from the
// process-wide table, without allocating on the hit path.
func InternBytes(b []byte) Value {
	return defaultTable.InternBytes(b)
}

// InternRunes interns the string formed by rs into the process-wide table.
func InternRunes(rs []rune) Value {
	return defaultTable.InternRunes(rs)
}

// Lookup probes the process-wide table without inserting.
func Lookup(s string) (Value, bool) {
	return defaultTable.Lookup(s)
}

// Default returns the process-wide table, for stats, cleanup, and snapshot
// capture. The Table API cannot violate canonicity, so handing it out is
// safe; there is no way to mutate an entry through it.
func Default() *Table {
	return defaultTable
}
