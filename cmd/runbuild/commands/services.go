package commands

import (
	"log/slog"
	"os"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/runbuild/internal/build"
	"git.home.luguber.info/inful/runbuild/internal/config"
	"git.home.luguber.info/inful/runbuild/internal/eventstore"
	"git.home.luguber.info/inful/runbuild/internal/host"
	"git.home.luguber.info/inful/runbuild/internal/logfields"
	"git.home.luguber.info/inful/runbuild/internal/materialize"
	"git.home.luguber.info/inful/runbuild/internal/metrics"
)

// services bundles the wired build service and the resources it holds.
type services struct {
	build    *build.DefaultBuildService
	history  *eventstore.SQLiteStore
	registry *prom.Registry
	cfg      *config.Config
	logger   *slog.Logger
}

// newServices wires the build service from configuration. Close must be
// called to flush metrics and release the history database.
func newServices(root *CLI) (*services, error) {
	cfg := root.Settings()
	logger := root.Logger()
	s := &services{cfg: cfg, logger: logger}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Textfile != "" {
		s.registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(s.registry)
	}

	var compiler build.Compiler
	if cfg.Compiler.Command != "" {
		compiler = &build.CommandCompiler{
			Command: cfg.Compiler.Command,
			Args:    cfg.Compiler.Args,
			Stdout:  os.Stderr,
			Logger:  logger,
		}
	}

	mat := materialize.New(host.NewDirProvider(cfg.Host.Directory)).
		WithLogger(logger).
		WithRecorder(recorder)
	s.build = build.NewBuildService(cfg, compiler, mat).
		WithLogger(logger).
		WithRecorder(recorder)

	if cfg.History.IsEnabled() {
		store, err := eventstore.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		s.history = store
		s.build.WithHistory(store)
	}
	return s, nil
}

// Close writes the metrics textfile and closes the history database.
func (s *services) Close() {
	if s.registry != nil {
		if err := metrics.WriteTextfile(s.cfg.Metrics.Textfile, s.registry); err != nil {
			s.logger.Warn("Failed to write metrics textfile", logfields.Path(s.cfg.Metrics.Textfile), logfields.Error(err))
		}
	}
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			s.logger.Warn("Failed to close history database", logfields.Error(err))
		}
	}
}
