package policy

// ResolutionKind tags the outcome of a policy lookup, including the
// two sentinels that are not policy tiers at all: NotFound (the pid is
// a host process, never bound) and LookupErr (the process row exists
// but references a missing container — an (I1) violation).
type ResolutionKind uint8

const (
	ResolvedLevel ResolutionKind = iota
	ResolvedNotFound
	ResolvedLookupErr
)

// Resolution is the tagged result of GetPolicyLevel. Lifting the
// sentinels out of PolicyLevel and into this wrapper means a handler
// cannot accidentally treat LookupErr as a legitimate tier by
// forgetting a case.
type Resolution struct {
	Kind  ResolutionKind
	Level PolicyLevel
}

// IsHostProcess reports whether the resolution says the pid is not
// containerized at all.
func (r Resolution) IsHostProcess() bool {
	return r.Kind == ResolvedNotFound
}

// IsInconsistent reports whether the resolution hit an (I1) violation.
func (r Resolution) IsInconsistent() bool {
	return r.Kind == ResolvedLookupErr
}

// Resolver implements the single lookup path from a pid to its
// container's policy tier: pid -> process -> container -> policy tier.
// It is a pure function of table state: repeated calls without an
// intervening table write return the same Resolution.
type Resolver struct {
	processes  *Table[PID, Process]
	containers *Table[ContainerID, Container]
}

// NewResolver builds a Resolver over the given processes and
// containers tables.
func NewResolver(processes *Table[PID, Process], containers *Table[ContainerID, Container]) *Resolver {
	return &Resolver{processes: processes, containers: containers}
}

// GetPolicyLevel performs the two-table lookup and has no side
// effects.
func (r *Resolver) GetPolicyLevel(pid PID) Resolution {
	proc, ok := r.processes.Get(pid)
	if !ok {
		return Resolution{Kind: ResolvedNotFound}
	}
	container, ok := r.containers.Get(proc.ContainerID)
	if !ok {
		return Resolution{Kind: ResolvedLookupErr}
	}
	return Resolution{Kind: ResolvedLevel, Level: container.PolicyLevel}
}
