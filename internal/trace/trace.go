// Package trace is the decision engine's debug trace channel:
// diagnostics are emitted here and nowhere else, at logrus.DebugLevel
// through containerd/log's context-scoped logger, and never to
// syslog, a persistent log file, or an audit trail.
package trace

import (
	"context"

	"github.com/containerd/log"
	"github.com/sirupsen/logrus"
)

// Fields is a shorthand for the structured fields every trace call
// attaches.
type Fields = logrus.Fields

// Allowed logs a hook allowing an operation.
func Allowed(ctx context.Context, hook string, fields Fields) {
	entry(ctx, hook, fields).Debug("allow")
}

// Denied logs a hook denying an operation.
func Denied(ctx context.Context, hook string, fields Fields) {
	entry(ctx, hook, fields).Debug("deny")
}

// Anomaly logs a non-critical anomaly (NULL optional input, a path the
// resolver could not render, ...) that the handler chose to allow
// through rather than treat as a policy decision.
func Anomaly(ctx context.Context, hook string, reason string, fields Fields) {
	entry(ctx, hook, fields).WithField("reason", reason).Debug("anomaly")
}

func entry(ctx context.Context, hook string, fields Fields) *logrus.Entry {
	e := log.G(ctx).WithField("hook", hook)
	if len(fields) > 0 {
		e = e.WithFields(fields)
	}
	return e
}
