package policy

// Engine composes the shared state tables, the lineage tracker, the
// policy resolver and the path matcher into the per-hook decision
// procedures (mount, syslog, setuid, open). It is the type both the
// real kernel-event adapters (internal/hooks) and the in-process
// collaborator/tests drive.
type Engine struct {
	Runtimes   *RuntimesTable
	Containers *Table[ContainerID, Container]
	Processes  *Table[PID, Process]

	AllowedPathsMountRestricted  *PathTable
	AllowedPathsMountBaseline    *PathTable
	AllowedPathsAccessRestricted *PathTable
	AllowedPathsAccessBaseline   *PathTable
	DeniedPathsAccessRestricted  *PathTable
	DeniedPathsAccessBaseline    *PathTable

	Lineage  *LineageTracker
	resolver *Resolver
}

// NewEngine builds an Engine over freshly allocated, spec-capacity
// tables. Use this for an in-process (test, or userspace-only daemon)
// engine; NewEngineFromTables builds one over caller-supplied tables
// of the same field types.
func NewEngine() *Engine {
	containers := NewTable[ContainerID, Container](PIDMaxLimit)
	processes := NewTable[PID, Process](PIDMaxLimit)
	e := &Engine{
		Runtimes:   NewTable[uint32, uint32](RuntimesCap),
		Containers: containers,
		Processes:  processes,

		AllowedPathsMountRestricted:  NewTable[uint32, Path](PathsCap),
		AllowedPathsMountBaseline:    NewTable[uint32, Path](PathsCap),
		AllowedPathsAccessRestricted: NewTable[uint32, Path](PathsCap),
		AllowedPathsAccessBaseline:   NewTable[uint32, Path](PathsCap),
		DeniedPathsAccessRestricted:  NewTable[uint32, Path](PathsCap),
		DeniedPathsAccessBaseline:    NewTable[uint32, Path](PathsCap),
	}
	e.Lineage = NewLineageTracker(processes, containers)
	e.resolver = NewResolver(processes, containers)
	return e
}

// NewEngineFromTables builds an Engine over already-constructed
// tables, e.g. ones filled from the pinned kernel maps with
// internal/ebpfmaps' Pull* helpers.
func NewEngineFromTables(
	runtimes *RuntimesTable,
	containers *Table[ContainerID, Container],
	processes *Table[PID, Process],
	allowedMountRestricted, allowedMountBaseline *PathTable,
	allowedAccessRestricted, allowedAccessBaseline *PathTable,
	deniedAccessRestricted, deniedAccessBaseline *PathTable,
) *Engine {
	e := &Engine{
		Runtimes:                     runtimes,
		Containers:                   containers,
		Processes:                    processes,
		AllowedPathsMountRestricted:  allowedMountRestricted,
		AllowedPathsMountBaseline:    allowedMountBaseline,
		AllowedPathsAccessRestricted: allowedAccessRestricted,
		AllowedPathsAccessBaseline:   allowedAccessBaseline,
		DeniedPathsAccessRestricted:  deniedAccessRestricted,
		DeniedPathsAccessBaseline:    deniedAccessBaseline,
	}
	e.Lineage = NewLineageTracker(processes, containers)
	e.resolver = NewResolver(processes, containers)
	return e
}

// Resolve exposes the Policy Resolver for callers (e.g. the
// collaborator's diagnostics) that need it without touching a handler.
func (e *Engine) Resolve(pid PID) Resolution {
	return e.resolver.GetPolicyLevel(pid)
}
