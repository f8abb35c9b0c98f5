package policy

import (
	"context"

	"github.com/cloudnative-sec/kpolicyd/internal/trace"
)

// bindMountType is the only mount type the engine polices; every other
// mount type (tmpfs, overlay, proc, ...) passes through unchecked.
const bindMountType = "bind"

// mountTypeReadLen is the bounded buffer length the mount handler
// reads the type string into before comparing it against "bind".
const mountTypeReadLen = 5

// MountEvent carries the mount security hook's inputs. DevName, Type
// and Data are pointers because each is independently allowed to be
// NULL at the kernel boundary.
type MountEvent struct {
	PID     PID
	DevName *string
	Path    string
	Type    *string
	Flags   uint64
	Data    *string
}

// HandleMount decides whether a bind mount may proceed: PRIVILEGED
// containers and host processes pass through, everything else is
// checked against the calling tier's mount allowlist.
func (e *Engine) HandleMount(ctx context.Context, ev MountEvent, prev Verdict) Verdict {
	res := e.resolver.GetPolicyLevel(ev.PID)
	fields := trace.Fields{"pid": ev.PID}

	cur := func() Verdict {
		switch res.Kind {
		case ResolvedLookupErr:
			return DenyPolicy
		case ResolvedNotFound:
			return Allow
		case ResolvedLevel:
			if res.Level == Privileged {
				return Allow
			}
		default:
			panic("unreachable")
		}

		// Step 2: empty-type mounts (sandboxing tools rely on these)
		// must never be broken.
		if ev.Type == nil {
			trace.Anomaly(ctx, "mount", "null mount type", fields)
			return Allow
		}

		// Step 3: only bind mounts are policed.
		typ := readBounded(ev.Type, mountTypeReadLen)
		if typ != bindMountType {
			return Allow
		}

		// Step 4: a NULL dev_name on a bind mount is a fault.
		if ev.DevName == nil {
			return DenyFault
		}

		// Step 5: prefix-match dev_name against the tier's allowlist.
		devName := readBounded(ev.DevName, PathLen)
		var table *PathTable
		switch res.Level {
		case Restricted:
			table = e.AllowedPathsMountRestricted
		case Baseline:
			table = e.AllowedPathsMountBaseline
		default:
			panic("unreachable")
		}
		fields["dev_name"] = devName
		if Match(table, devName) {
			return Allow
		}
		return DenyPolicy
	}()

	out := Fold(prev, cur)
	fields["verdict"] = int32(out)
	if out == Allow {
		trace.Allowed(ctx, "mount", fields)
	} else {
		trace.Denied(ctx, "mount", fields)
	}
	return out
}
