package metrics

// NoopCollector is a no-op implementation of the Collector interface.
// All methods are empty stubs that do nothing.
type NoopCollector struct{}

// SessionStarted is a no-op.
func (n *NoopCollector) SessionStarted(patchCount int) {}

// SessionResumed is a no-op.
func (n *NoopCollector) SessionResumed(remaining int) {}

// PatchApplied is a no-op.
func (n *NoopCollector) PatchApplied() {}

// PatchSkipped is a no-op.
func (n *NoopCollector) PatchSkipped() {}

// PatchFailed is a no-op.
func (n *NoopCollector) PatchFailed(kind string) {}

// CommitCreated is a no-op.
func (n *NoopCollector) CommitCreated(messageBytes int) {}

// SessionDestroyed is a no-op.
func (n *NoopCollector) SessionDestroyed() {}
