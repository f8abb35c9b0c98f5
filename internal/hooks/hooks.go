// Package hooks translates decoded kernel hook payloads into calls
// against a policy.Engine. This is the boundary a real ring-buffer or
// perf-event consumer sits behind; the event structs here match what
// internal/ebpfmaps would decode off a perf/ring buffer for each
// attach point.
package hooks

import (
	"context"

	"github.com/cloudnative-sec/kpolicyd/pkg/policy"
)

// ForkEvent is the fork-style tracepoint's payload: (parent_task,
// child_task).
type ForkEvent struct {
	Parent policy.PID
	Child  policy.PID
}

// TaskAllocEvent is the task-allocation security hook's payload:
// (new_task, clone_flags), plus the parent pid the Lineage Tracker
// needs. The hook's prev_verdict is not carried. It feeds the same
// Lineage Tracker as ForkEvent — the two sources are expected to
// overlap.
type TaskAllocEvent struct {
	Parent     policy.PID
	New        policy.PID
	CloneFlags uint64
}

// Adapter drives a policy.Engine from decoded hook events. Every
// method is a thin translation layer: the decision logic lives in
// policy.Engine, not here.
type Adapter struct {
	Engine *policy.Engine
}

// NewAdapter builds an Adapter over the given engine.
func NewAdapter(e *policy.Engine) *Adapter {
	return &Adapter{Engine: e}
}

// OnFork handles the fork-style tracepoint source.
func (a *Adapter) OnFork(ctx context.Context, ev ForkEvent) error {
	_, err := a.Engine.Lineage.OnNewTask(ev.Parent, ev.Child)
	return err
}

// OnTaskAlloc handles the task-allocation security hook source. Its
// prev_verdict is not meaningful for lineage tracking (task_alloc does
// not itself veto process creation in this design) so TaskAllocEvent
// has no field for it and nothing is threaded through.
func (a *Adapter) OnTaskAlloc(ctx context.Context, ev TaskAllocEvent) error {
	_, err := a.Engine.Lineage.OnNewTask(ev.Parent, ev.New)
	return err
}

// OnSyslog handles the syslog security hook.
func (a *Adapter) OnSyslog(ctx context.Context, pid policy.PID, logType int32, prevVerdict policy.Verdict) policy.Verdict {
	return a.Engine.HandleSyslog(ctx, policy.SyslogEvent{PID: pid, Type: logType}, prevVerdict)
}

// OnMount handles the mount security hook.
func (a *Adapter) OnMount(ctx context.Context, pid policy.PID, devName, path, mountType *string, flags uint64, prevVerdict policy.Verdict) policy.Verdict {
	ev := policy.MountEvent{PID: pid, DevName: devName, Type: mountType, Flags: flags}
	if path != nil {
		ev.Path = *path
	}
	return a.Engine.HandleMount(ctx, ev, prevVerdict)
}

// OnSetuid handles the setuid security hook.
func (a *Adapter) OnSetuid(ctx context.Context, pid policy.PID, newUID, oldUID uint32, prevVerdict policy.Verdict) policy.Verdict {
	ev := policy.SetuidEvent{PID: pid, New: policy.Credential{UID: newUID}, Old: policy.Credential{UID: oldUID}}
	return a.Engine.HandleSetuid(ctx, ev, prevVerdict)
}

// OnOpen handles the file-open security hook.
func (a *Adapter) OnOpen(ctx context.Context, pid policy.PID, resolvedPath *string, prevVerdict policy.Verdict) policy.Verdict {
	return a.Engine.HandleOpen(ctx, policy.OpenEvent{PID: pid, ResolvedPath: resolvedPath}, prevVerdict)
}
