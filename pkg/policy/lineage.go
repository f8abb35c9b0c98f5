package policy

import "github.com/pkg/errors"

// ErrInconsistentParent is returned by OnNewTask when the parent is
// bound to a container id that no longer has a row in containers.
// It is non-fatal to the child: the child is simply left unbound.
var ErrInconsistentParent = errors.New("policy: parent bound to missing container")

// LineageTracker maintains the processes table as new tasks are
// created. It is invoked from two independent event sources (a
// fork-style tracepoint and a task-allocation security hook) that are
// expected to overlap; OnNewTask is idempotent so that overlap is
// harmless.
type LineageTracker struct {
	processes  *Table[PID, Process]
	containers *Table[ContainerID, Container]
}

// NewLineageTracker builds a tracker over the given processes and
// containers tables.
func NewLineageTracker(processes *Table[PID, Process], containers *Table[ContainerID, Container]) *LineageTracker {
	return &LineageTracker{processes: processes, containers: containers}
}

// OnNewTask binds child to its parent's container, if any:
//
//   - if processes[parent] is absent, do nothing (the child is a host
//     process) and return (false, nil);
//   - otherwise resolve the parent's container id and confirm it still
//     exists; if not, return (false, ErrInconsistentParent);
//   - if processes[child] already exists, return (false, nil) — this
//     is the idempotent path that absorbs duplicate delivery from the
//     two event sources;
//   - otherwise insert processes[child] = {container_id} and return
//     (true, nil), or propagate a table-insert failure.
func (t *LineageTracker) OnNewTask(parent, child PID) (bool, error) {
	parentProc, ok := t.processes.Get(parent)
	if !ok {
		return false, nil
	}

	if _, ok := t.containers.Get(parentProc.ContainerID); !ok {
		return false, ErrInconsistentParent
	}

	if _, ok := t.processes.Get(child); ok {
		return false, nil
	}

	inserted, err := t.processes.Insert(child, Process{ContainerID: parentProc.ContainerID})
	if err != nil {
		return false, errors.Wrap(err, "policy: inserting child process")
	}
	return inserted, nil
}
