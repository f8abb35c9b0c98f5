package policy

// RuntimesTable maps a hashed runtime init command name to a sentinel
// value. It is populated by the collaborator and, today, read-only:
// no handler branches on it. Reserved for future unwrapped-runtime
// detection — the table shape is kept exactly so that extension does
// not require a schema migration.
type RuntimesTable = Table[uint32, uint32]

// HashComm is the additive-sum-truncated-at-NUL hash the collaborator
// uses to key the runtimes table. It is adequate for a 16-entry table
// and nothing else; it is not collision-resistant, and is kept this
// simple deliberately rather than reaching for a real hash function.
func HashComm(comm string) uint32 {
	var sum uint32
	for i := 0; i < len(comm); i++ {
		if comm[i] == 0 {
			break
		}
		sum += uint32(comm[i])
	}
	return sum
}

// LookupRuntime reports whether comm's hash has an entry in table.
// This exists purely to give the runtimes table a read path; no
// handler currently calls it. Wiring it into a handler (e.g. denying
// a raw, unwrapped container runtime binary from executing directly)
// is the extension point described in DESIGN.md.
func LookupRuntime(table *RuntimesTable, comm string) bool {
	_, ok := table.Get(HashComm(comm))
	return ok
}
