package build

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/runbuild/internal/config"
	"git.home.luguber.info/inful/runbuild/internal/eventstore"
	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/runbuild/internal/framework"
	"git.home.luguber.info/inful/runbuild/internal/incremental"
	"git.home.luguber.info/inful/runbuild/internal/lockfile"
	"git.home.luguber.info/inful/runbuild/internal/logfields"
	"git.home.luguber.info/inful/runbuild/internal/materialize"
	"git.home.luguber.info/inful/runbuild/internal/metrics"
	"git.home.luguber.info/inful/runbuild/internal/outputpath"
	"git.home.luguber.info/inful/runbuild/internal/project"
)

// Plan is a resolved build target: the project, its output location and the
// lock file the gate consults.
type Plan struct {
	Project  *project.Project
	Env      framework.Descriptor
	Location *outputpath.Location
	Lock     lockfile.Handle
}

// Inputs returns the gate inputs of the plan.
func (p *Plan) Inputs() incremental.Inputs {
	return incremental.Inputs{ManifestPath: p.Project.ManifestPath, SourceFiles: p.Project.SourceFiles}
}

// Outputs returns the compilation files the gate checks.
func (p *Plan) Outputs() []string {
	return p.Location.CompilationFiles().All()
}

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	cfg          *config.Config
	compiler     Compiler
	materializer *materialize.Materializer
	oracle       *incremental.Oracle
	history      eventstore.Store
	logger       *slog.Logger
	recorder     metrics.Recorder
	newID        func() string
}

// NewBuildService creates a build service. A nil cfg uses config.Default().
func NewBuildService(cfg *config.Config, compiler Compiler, m *materialize.Materializer) *DefaultBuildService {
	if cfg == nil {
		cfg = config.Default()
	}
	return &DefaultBuildService{
		cfg:          cfg,
		compiler:     compiler,
		materializer: m,
		oracle:       incremental.NewOracle(),
		logger:       slog.Default(),
		recorder:     metrics.NoopRecorder{},
		newID:        uuid.NewString,
	}
}

// WithLogger sets the logger of the service and its gate.
func (s *DefaultBuildService) WithLogger(logger *slog.Logger) *DefaultBuildService {
	if logger != nil {
		s.logger = logger
		s.oracle.WithLogger(logger)
	}
	return s
}

// WithRecorder sets the metrics recorder of the service and its gate.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r != nil {
		s.recorder = r
		s.oracle.WithRecorder(r)
	}
	return s
}

// WithHistory records build events in store.
func (s *DefaultBuildService) WithHistory(store eventstore.Store) *DefaultBuildService {
	s.history = store
	return s
}

// Plan loads the project and resolves its output location.
func (s *DefaultBuildService) Plan(req Request) (*Plan, error) {
	p := req.Project
	if p == nil {
		if req.ProjectPath == "" {
			return nil, errors.ValidationError("project path is required").Build()
		}
		var err error
		if p, err = project.Load(req.ProjectPath); err != nil {
			return nil, err
		}
	}

	loc, err := outputpath.Resolve(outputpath.Request{
		ProjectDir:    p.Directory,
		ProjectName:   p.Name,
		Env:           req.Env,
		Configuration: s.cfg.Configuration,
		SolutionRoot:  s.cfg.SolutionRoot,
		BuildBasePath: s.cfg.BuildBasePath,
		OutputPath:    req.OutputPath,
		Options:       p.FileOptions(),
	})
	if err != nil {
		return nil, err
	}
	return &Plan{Project: p, Env: req.Env, Location: loc, Lock: lockfile.ForProject(p.Directory)}, nil
}

// Check plans the request and asks the gate whether compilation is needed.
func (s *DefaultBuildService) Check(req Request) (*Plan, incremental.Verdict, error) {
	plan, err := s.Plan(req)
	if err != nil {
		return nil, incremental.Verdict{}, err
	}
	v, err := s.oracle.Decide(plan.Inputs(), plan.Outputs(), plan.Lock, req.Force)
	if err != nil {
		return plan, incremental.Verdict{}, err
	}
	return plan, v, nil
}

// Materialize reads the plan's lock file and assembles the runnable output.
func (s *DefaultBuildService) Materialize(ctx context.Context, plan *Plan) (*materialize.Result, error) {
	if s.materializer == nil {
		return nil, errors.InvalidState("build service has no materializer").Build()
	}
	exists, err := plan.Lock.Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, MissingLockFileError(plan.Project.Name, plan.Lock.Path)
	}
	exports, err := lockfile.ReadExports(plan.Lock, lockfile.Roots{Packages: s.cfg.PackagesRoot})
	if err != nil {
		return nil, err
	}
	return s.materializer.Materialize(ctx, materialize.Request{
		Project:  plan.Project,
		Env:      plan.Env,
		Location: plan.Location,
		Exports:  exports,
	})
}

// Run executes the complete build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	result := &Result{BuildID: s.newID(), StartTime: start}
	logger := s.logger.With(logfields.BuildID(result.BuildID))

	fail := func(stage string, err error) (*Result, error) {
		result.Status = StatusFailed
		outcome := metrics.BuildOutcomeFailed
		if ctx.Err() != nil {
			result.Status = StatusCanceled
			outcome = metrics.BuildOutcomeCanceled
		}
		s.finish(result, outcome)
		s.emit(ctx, logger, func() (eventstore.Event, error) {
			return eventstore.NewBuildFailed(result.BuildID, stage, err)
		})
		logger.Error("Build failed", slog.String("stage", stage), logfields.Error(err))
		return result, err
	}

	plan, err := s.Plan(req)
	if err != nil {
		return fail(StageResolve, err)
	}
	result.Plan = plan
	logger = logger.With(
		logfields.Project(plan.Project.Name),
		logfields.Framework(plan.Env.Framework.String()),
		logfields.Configuration(s.cfg.Configuration))
	if plan.Env.HasRuntime() {
		logger = logger.With(logfields.Runtime(plan.Env.RuntimeIdentifier))
	}

	s.emit(ctx, logger, func() (eventstore.Event, error) {
		return eventstore.NewBuildStarted(result.BuildID, eventstore.BuildTarget{
			Project:       plan.Project.Name,
			Framework:     plan.Env.Framework.String(),
			Runtime:       plan.Env.RuntimeIdentifier,
			Configuration: s.cfg.Configuration,
		})
	})

	// Stage 1: gate
	result.InputSignature = incremental.InputSignature(plan.Inputs(), plan.Lock.Path)
	verdict, err := s.oracle.Decide(plan.Inputs(), plan.Outputs(), plan.Lock, req.Force)
	if err != nil {
		return fail(StageGate, err)
	}
	result.Verdict = verdict
	s.emit(ctx, logger, func() (eventstore.Event, error) {
		return eventstore.NewGateDecided(result.BuildID, verdict.Label(), string(verdict.Reason()), verdict.Path(), req.Force)
	})
	if verdict.Reason() == incremental.ReasonMissingLockFile {
		return fail(StageGate, MissingLockFileError(plan.Project.Name, plan.Lock.Path))
	}

	// Stage 2: compile
	result.Status = StatusSkipped
	if verdict.IsStale() {
		if err := s.compile(ctx, logger, result.BuildID, plan); err != nil {
			return fail(StageCompile, err)
		}
		result.Status = StatusBuilt
	} else {
		logger.Info("Outputs up to date, skipping compilation")
	}

	// Stage 3: materialize
	matStart := time.Now()
	mat, err := s.Materialize(ctx, plan)
	if err != nil {
		return fail(StageMaterialize, err)
	}
	result.Materialized = mat
	digest, err := incremental.TreeDigest(mat.OutputDir)
	if err != nil {
		return fail(StageMaterialize, err)
	}
	result.Digest = digest
	s.emit(ctx, logger, func() (eventstore.Event, error) {
		return eventstore.NewMaterialized(result.BuildID, mat.OutputDir, len(mat.Written), digest, time.Since(matStart))
	})

	outcome := metrics.BuildOutcomeSkipped
	if result.Status == StatusBuilt {
		outcome = metrics.BuildOutcomeBuilt
	}
	s.finish(result, outcome)
	s.emit(ctx, logger, func() (eventstore.Event, error) {
		return eventstore.NewBuildCompleted(result.BuildID, string(result.Status), result.Duration)
	})
	logger.Info("Build completed",
		slog.String("status", string(result.Status)),
		logfields.Path(mat.OutputDir),
		logfields.Duration(result.Duration))
	return result, nil
}

func (s *DefaultBuildService) compile(ctx context.Context, logger *slog.Logger, buildID string, plan *Plan) error {
	if s.compiler == nil {
		return errors.ConfigError("outputs are stale but no compiler is configured").
			WithContext("project", plan.Project.Name).
			Build()
	}
	start := time.Now()
	err := s.compiler.Compile(ctx, CompileRequest{
		Project:       plan.Project,
		Env:           plan.Env,
		Configuration: s.cfg.Configuration,
		Location:      plan.Location,
	})
	if err != nil {
		return err
	}

	for _, out := range plan.Outputs() {
		if _, err := os.Stat(out); err != nil {
			return errors.BuildError("compiler did not produce an expected output").
				WithCause(err).
				WithContext("project", plan.Project.Name).
				WithContext("path", out).
				Build()
		}
	}

	d := time.Since(start)
	logger.Info("Compiled", logfields.Duration(d))
	s.emit(ctx, logger, func() (eventstore.Event, error) {
		return eventstore.NewCompiled(buildID, d)
	})
	return nil
}

func (s *DefaultBuildService) finish(result *Result, outcome metrics.BuildOutcomeLabel) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	s.recorder.ObserveBuildDuration(result.Duration)
	s.recorder.IncBuildOutcome(outcome)
}

// emit records an event. History failures are logged and never fail a build.
func (s *DefaultBuildService) emit(ctx context.Context, logger *slog.Logger, build func() (eventstore.Event, error)) {
	if s.history == nil {
		return
	}
	ev, err := build()
	if err == nil {
		err = eventstore.Emit(context.WithoutCancel(ctx), s.history, ev)
	}
	if err != nil {
		logger.Warn("Failed to record build event", logfields.Error(err))
	}
}
