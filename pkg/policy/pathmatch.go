package policy

// PathTable is one of the six paths_* tables: an arbitrary u32 slot
// key mapping to a fixed-width path entry.
type PathTable = Table[uint32, Path]

// Match scans every occupied slot of table for an entry that is a
// byte-prefix of probe: entry E matches probe P iff E is non-empty and
// P[0:len(E)] == E[0:len(E)]. Empty entries never match, so a
// zero-valued slot can never vacuously match every probe. Iteration
// order is unspecified but the result never depends on it, since every
// table here is an allowlist or denylist consulted independently.
func Match(table *PathTable, probe string) bool {
	matched := false
	table.Range(func(_ uint32, entry Path) bool {
		n := entry.Len()
		if n == 0 {
			return true
		}
		if len(probe) < n {
			return true
		}
		if string(entry[:n]) == probe[:n] {
			matched = true
			return false
		}
		return true
	})
	return matched
}
