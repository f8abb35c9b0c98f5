package policy

import (
	"context"

	"github.com/cloudnative-sec/kpolicyd/internal/trace"
)

// rootUID and containerizedUIDFloor bound the setuid rule: a non-root
// containerized process (uid >= 1000) transitioning to uid 0 is
// denied.
const (
	rootUID               = 0
	containerizedUIDFloor = 1000
)

// Credential mirrors the fields of the kernel's cred struct that the
// setuid hook's decision depends on.
type Credential struct {
	UID uint32
}

// SetuidEvent carries the setuid security hook's inputs.
type SetuidEvent struct {
	PID PID
	New Credential
	Old Credential
}

// HandleSetuid decides whether a uid transition may proceed: a
// non-root containerized process escalating to uid 0 is denied,
// PRIVILEGED containers and host processes always allow.
func (e *Engine) HandleSetuid(ctx context.Context, ev SetuidEvent, prev Verdict) Verdict {
	res := e.resolver.GetPolicyLevel(ev.PID)

	var cur Verdict
	switch res.Kind {
	case ResolvedLookupErr:
		cur = DenyPolicy
	case ResolvedNotFound:
		cur = Allow
	case ResolvedLevel:
		if res.Level == Privileged {
			cur = Allow
			break
		}
		if ev.New.UID == rootUID && ev.Old.UID >= containerizedUIDFloor {
			cur = DenyPolicy
		} else {
			cur = Allow
		}
	default:
		panic("unreachable")
	}

	out := Fold(prev, cur)
	fields := trace.Fields{"pid": ev.PID, "old_uid": ev.Old.UID, "new_uid": ev.New.UID, "verdict": int32(out)}
	if out == Allow {
		trace.Allowed(ctx, "setuid", fields)
	} else {
		trace.Denied(ctx, "setuid", fields)
	}
	return out
}
