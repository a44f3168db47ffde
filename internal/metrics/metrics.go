// Package metrics provides interfaces and implementations for collecting
// gitam patch-application metrics. It defines the Collector interface for
// recording metrics and the Server interface for exposing them over HTTP.
package metrics

import "context"

// Collector defines the interface for recording patch-application metrics.
type Collector interface {
	// SessionStarted records a fresh am session being set up.
	SessionStarted(patchCount int)

	// SessionResumed records an existing session being loaded for another run.
	SessionResumed(remaining int)

	// PatchApplied increments the successfully-applied patch counter.
	PatchApplied()

	// PatchSkipped increments the counter for patches skipped without a
	// commit (numbered mail file removed, or skip heuristic matched).
	PatchSkipped()

	// PatchFailed increments the counter for patches that failed to apply,
	// tagged with the error kind (e.g. "empty-patch", "apply-conflict").
	PatchFailed(kind string)

	// CommitCreated increments the commit counter and observes message size.
	CommitCreated(messageBytes int)

	// SessionDestroyed records a session directory being torn down.
	SessionDestroyed()
}

// Server defines the interface for a metrics HTTP server.
type Server interface {
	// Start begins serving metrics. It blocks until the context is canceled
	// or an error occurs.
	Start(ctx context.Context) error

	// Shutdown gracefully stops the metrics server.
	Shutdown(ctx context.Context) error
}
