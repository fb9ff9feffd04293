package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

// Event type names.
const (
	TypeBuildStarted   = "BuildStarted"
	TypeGateDecided    = "GateDecided"
	TypeCompiled       = "Compiled"
	TypeMaterialized   = "Materialized"
	TypeBuildCompleted = "BuildCompleted"
	TypeBuildFailed    = "BuildFailed"
)

// BuildTarget identifies what a build invocation builds.
type BuildTarget struct {
	Project       string `json:"project"`
	Framework     string `json:"framework"`
	Runtime       string `json:"runtime,omitempty"`
	Configuration string `json:"configuration"`
}

// BuildStarted is emitted when a project build begins.
type BuildStarted struct {
	BaseEvent
	Target BuildTarget `json:"target"`
}

// GateDecided records the incremental gate verdict.
type GateDecided struct {
	BaseEvent
	Verdict string `json:"verdict"`
	Reason  string `json:"reason,omitempty"`
	Path    string `json:"path,omitempty"`
	Forced  bool   `json:"forced,omitempty"`
}

// Compiled is emitted after the external compiler ran successfully.
type Compiled struct {
	BaseEvent
	DurationMS int64 `json:"duration_ms"`
}

// Materialized is emitted after the runnable output was assembled.
type Materialized struct {
	BaseEvent
	OutputDir  string `json:"output_dir"`
	FileCount  int    `json:"file_count"`
	Digest     string `json:"digest,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// BuildCompleted is emitted when a project build finishes; Outcome is
// "built" or "skipped".
type BuildCompleted struct {
	BaseEvent
	Outcome    string `json:"outcome"`
	DurationMS int64  `json:"duration_ms"`
}

// BuildFailed is emitted when a project build fails.
type BuildFailed struct {
	BaseEvent
	Stage string `json:"stage"`
	Error string `json:"error"`
}

func newBase(buildID, eventType string, payload any) (BaseEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return BaseEvent{}, errors.HistoryError("failed to marshal "+eventType+" payload").
			WithCause(err).
			WithContext("build_id", buildID).
			Build()
	}
	return BaseEvent{
		EventBuildID:   buildID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   data,
	}, nil
}

// NewBuildStarted creates a BuildStarted event.
func NewBuildStarted(buildID string, target BuildTarget) (*BuildStarted, error) {
	ev := &BuildStarted{Target: target}
	base, err := newBase(buildID, TypeBuildStarted, ev)
	if err != nil {
		return nil, err
	}
	ev.BaseEvent = base
	ev.EventMetadata = map[string]string{"project": target.Project}
	return ev, nil
}

// NewGateDecided creates a GateDecided event.
func NewGateDecided(buildID, verdict, reason, path string, forced bool) (*GateDecided, error) {
	ev := &GateDecided{Verdict: verdict, Reason: reason, Path: path, Forced: forced}
	base, err := newBase(buildID, TypeGateDecided, ev)
	if err != nil {
		return nil, err
	}
	ev.BaseEvent = base
	return ev, nil
}

// NewCompiled creates a Compiled event.
func NewCompiled(buildID string, duration time.Duration) (*Compiled, error) {
	ev := &Compiled{DurationMS: duration.Milliseconds()}
	base, err := newBase(buildID, TypeCompiled, ev)
	if err != nil {
		return nil, err
	}
	ev.BaseEvent = base
	return ev, nil
}

// NewMaterialized creates a Materialized event.
func NewMaterialized(buildID, outputDir string, fileCount int, digest string, duration time.Duration) (*Materialized, error) {
	ev := &Materialized{OutputDir: outputDir, FileCount: fileCount, Digest: digest, DurationMS: duration.Milliseconds()}
	base, err := newBase(buildID, TypeMaterialized, ev)
	if err != nil {
		return nil, err
	}
	ev.BaseEvent = base
	return ev, nil
}

// NewBuildCompleted creates a BuildCompleted event.
func NewBuildCompleted(buildID, outcome string, duration time.Duration) (*BuildCompleted, error) {
	ev := &BuildCompleted{Outcome: outcome, DurationMS: duration.Milliseconds()}
	base, err := newBase(buildID, TypeBuildCompleted, ev)
	if err != nil {
		return nil, err
	}
	ev.BaseEvent = base
	return ev, nil
}

// NewBuildFailed creates a BuildFailed event.
func NewBuildFailed(buildID, stage string, cause error) (*BuildFailed, error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	ev := &BuildFailed{Stage: stage, Error: msg}
	base, err := newBase(buildID, TypeBuildFailed, ev)
	if err != nil {
		return nil, err
	}
	ev.BaseEvent = base
	return ev, nil
}
