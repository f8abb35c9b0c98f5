package policy

import (
	"context"

	"github.com/cloudnative-sec/kpolicyd/internal/trace"
)

// SyslogEvent carries the syslog security hook's inputs. Type is the
// log access type; the decision does not depend on its value, but it
// is threaded through for tracing.
type SyslogEvent struct {
	PID  PID
	Type int32
}

// HandleSyslog decides whether a process may read the kernel ring
// buffer: RESTRICTED and BASELINE tiers deny it outright, PRIVILEGED
// allows it.
func (e *Engine) HandleSyslog(ctx context.Context, ev SyslogEvent, prev Verdict) Verdict {
	res := e.resolver.GetPolicyLevel(ev.PID)

	var cur Verdict
	switch res.Kind {
	case ResolvedLookupErr:
		cur = DenyPolicy
	case ResolvedNotFound:
		cur = Allow
	case ResolvedLevel:
		switch res.Level {
		case Privileged:
			cur = Allow
		case Restricted, Baseline:
			cur = DenyPolicy
		default:
			panic("unreachable")
		}
	default:
		panic("unreachable")
	}

	out := Fold(prev, cur)
	fields := trace.Fields{"pid": ev.PID, "type": ev.Type, "verdict": int32(out)}
	if out == Allow {
		trace.Allowed(ctx, "syslog", fields)
	} else {
		trace.Denied(ctx, "syslog", fields)
	}
	return out
}
