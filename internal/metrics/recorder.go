package metrics

import "time"

// ResultLabel enumerates step result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel is the final outcome of one project build.
type BuildOutcomeLabel string

const (
	BuildOutcomeBuilt    BuildOutcomeLabel = "built"
	BuildOutcomeSkipped  BuildOutcomeLabel = "skipped"
	BuildOutcomeFailed   BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks. Implementations may forward to
// Prometheus or anything else.
type Recorder interface {
	// IncDecision counts one gate verdict. reason is empty for up-to-date verdicts.
	IncDecision(verdict, reason string)
	ObserveMaterializeDuration(kind string, d time.Duration)
	IncMaterializeResult(kind string, result ResultLabel)
	AddFilesWritten(kind string, n int)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	SetBuildConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncDecision(string, string)                       {}
func (NoopRecorder) ObserveMaterializeDuration(string, time.Duration) {}
func (NoopRecorder) IncMaterializeResult(string, ResultLabel)         {}
func (NoopRecorder) AddFilesWritten(string, int)                      {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)               {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)                {}
func (NoopRecorder) SetBuildConcurrency(int)                          {}
