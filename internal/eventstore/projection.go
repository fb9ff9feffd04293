// Package eventstore records the history of project builds in SQLite and
// folds it into per-build summaries.
package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusRunning = "running"
	StatusBuilt   = "built"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// BuildSummary is a read model summarizing one project build.
type BuildSummary struct {
	BuildID     string      `json:"build_id"`
	Target      BuildTarget `json:"target"`
	Status      string      `json:"status"`
	Verdict     string      `json:"verdict,omitempty"`
	Reason      string      `json:"reason,omitempty"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	DurationMS  int64       `json:"duration_ms,omitempty"`
	OutputDir   string      `json:"output_dir,omitempty"`
	Digest      string      `json:"digest,omitempty"`
	FileCount   int         `json:"file_count,omitempty"`
	ErrorStage  string      `json:"error_stage,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// History rebuilds build summaries from every stored event, newest first,
// limited to limit entries (all when limit <= 0).
func History(ctx context.Context, store Store, limit int) ([]*BuildSummary, error) {
	events, err := store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*BuildSummary)
	for _, ev := range events {
		s, ok := byID[ev.BuildID()]
		if !ok {
			s = &BuildSummary{BuildID: ev.BuildID(), Status: StatusRunning, StartedAt: ev.Timestamp()}
			byID[ev.BuildID()] = s
		}
		apply(s, ev)
	}

	out := make([]*BuildSummary, 0, len(byID))
	for _, s := range byID {
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].BuildID > out[j].BuildID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// apply folds one event into s. Undecodable payloads are skipped.
func apply(s *BuildSummary, ev Event) {
	switch ev.Type() {
	case TypeBuildStarted:
		var p BuildStarted
		if json.Unmarshal(ev.Payload(), &p) == nil {
			s.Target = p.Target
		}
		s.StartedAt = ev.Timestamp()
	case TypeGateDecided:
		var p GateDecided
		if json.Unmarshal(ev.Payload(), &p) == nil {
			s.Verdict = p.Verdict
			s.Reason = p.Reason
		}
	case TypeMaterialized:
		var p Materialized
		if json.Unmarshal(ev.Payload(), &p) == nil {
			s.OutputDir = p.OutputDir
			s.Digest = p.Digest
			s.FileCount = p.FileCount
		}
	case TypeBuildCompleted:
		var p BuildCompleted
		if json.Unmarshal(ev.Payload(), &p) == nil {
			s.Status = p.Outcome
			s.DurationMS = p.DurationMS
		}
		t := ev.Timestamp()
		s.CompletedAt = &t
	case TypeBuildFailed:
		var p BuildFailed
		if json.Unmarshal(ev.Payload(), &p) == nil {
			s.ErrorStage = p.Stage
			s.Error = p.Error
		}
		s.Status = StatusFailed
		t := ev.Timestamp()
		s.CompletedAt = &t
	}
}
