package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/runbuild/internal/framework"
	"git.home.luguber.info/inful/runbuild/internal/incremental"
	"git.home.luguber.info/inful/runbuild/internal/materialize"
	"git.home.luguber.info/inful/runbuild/internal/project"
)

// BuildService is the canonical interface for building one project.
type BuildService interface {
	// Run executes resolve → gate → compile → materialize.
	// The result is returned even when err is non-nil.
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request contains the inputs of one project build.
type Request struct {
	// ProjectPath is a project.yaml file or the directory holding it.
	ProjectPath string
	// Project is a preloaded descriptor; it wins over ProjectPath.
	Project *project.Project

	Env framework.Descriptor

	// OutputPath overrides the runtime directory.
	OutputPath string

	// Force rebuilds regardless of timestamps.
	Force bool
}

// Result contains the outcome of a build execution.
type Result struct {
	BuildID string
	Status  Status

	Plan    *Plan
	Verdict incremental.Verdict

	// InputSignature fingerprints the input metadata the gate saw.
	InputSignature string

	// Materialized is nil when the build failed before materialization.
	Materialized *materialize.Result
	// Digest is the content digest of the output tree.
	Digest string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Status represents the outcome of a build execution.
type Status string

const (
	// StatusBuilt means the compiler ran and the output was materialized.
	StatusBuilt Status = "built"

	// StatusSkipped means the gate found the outputs up to date; the output
	// tree was still refreshed.
	StatusSkipped Status = "skipped"

	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// IsSuccess returns true if the build completed successfully.
func (s Status) IsSuccess() bool {
	return s == StatusBuilt || s == StatusSkipped
}
