package policy

import (
	"context"

	"github.com/cloudnative-sec/kpolicyd/internal/trace"
)

// rootPath always allows, called out as its own case rather than left
// to the table match below — a prefix check against "/" would
// trivially match every path.
const rootPath = "/"

// OpenEvent carries the file-open security hook's inputs. ResolvedPath
// is nil when the kernel's path-resolution helper failed to render an
// absolute path for the file (an unusual filesystem); that case is
// allowed rather than denied, to avoid over-blocking on paths the
// engine cannot even name.
type OpenEvent struct {
	PID          PID
	ResolvedPath *string
}

// HandleOpen decides whether a file open may proceed for a RESTRICTED
// or BASELINE process: deny if the tier's deny table matches the
// resolved path, else allow if the tier's allow table matches, else
// deny. PRIVILEGED containers and host processes always allow.
func (e *Engine) HandleOpen(ctx context.Context, ev OpenEvent, prev Verdict) Verdict {
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

		// Step 2: path resolution failure allows, to avoid
		// over-blocking on unusual filesystems.
		if ev.ResolvedPath == nil {
			trace.Anomaly(ctx, "open", "path resolution failed", fields)
			return Allow
		}
		path := readBounded(ev.ResolvedPath, PathLen)
		fields["path"] = path

		// Step 3: "/" always allows.
		if path == rootPath {
			return Allow
		}

		var allowTable, denyTable *PathTable
		switch res.Level {
		case Restricted:
			allowTable, denyTable = e.AllowedPathsAccessRestricted, e.DeniedPathsAccessRestricted
		case Baseline:
			allowTable, denyTable = e.AllowedPathsAccessBaseline, e.DeniedPathsAccessBaseline
		default:
			panic("unreachable")
		}

		if Match(denyTable, path) {
			return DenyPolicy
		}
		if Match(allowTable, path) {
			return Allow
		}
		return DenyPolicy
	}()

	out := Fold(prev, cur)
	fields["verdict"] = int32(out)
	if out == Allow {
		trace.Allowed(ctx, "open", fields)
	} else {
		trace.Denied(ctx, "open", fields)
	}
	return out
}
