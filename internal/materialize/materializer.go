// Package materialize turns compiled artifacts into a runnable output tree.
//
// Two strategies exist, selected by the framework kind of the target:
//
//   - legacy targets get every runtime asset copied next to the binary and a
//     binding-redirect manifest (<binary>.config) when assembly versions conflict;
//   - hosted targets get a dependency manifest (<name>.deps.json), the assets of
//     project dependencies and a native host binary named after the project.
//
// Materialization is idempotent and overwrites destination files. It never
// deletes files, so assets left over from an earlier dependency set stay.
package materialize

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/runbuild/internal/framework"
	"git.home.luguber.info/inful/runbuild/internal/host"
	"git.home.luguber.info/inful/runbuild/internal/lockfile"
	"git.home.luguber.info/inful/runbuild/internal/logfields"
	"git.home.luguber.info/inful/runbuild/internal/metrics"
	"git.home.luguber.info/inful/runbuild/internal/outputpath"
	"git.home.luguber.info/inful/runbuild/internal/project"
)

// Request describes one materialization.
type Request struct {
	Project  *project.Project
	Env      framework.Descriptor
	Location *outputpath.Location
	Exports  []lockfile.DependencyExport
}

// Result lists what a materialization produced.
type Result struct {
	OutputDir string
	// Written lists every file written, in write order.
	Written []string
	// DepsManifest is set for hosted targets.
	DepsManifest string
	// ConfigManifest is set for legacy targets when a manifest was written.
	ConfigManifest string
	// HostBinary is set for hosted targets.
	HostBinary string
	// Redirects lists the binding redirects merged into ConfigManifest.
	Redirects []Redirect
}

// Materializer assembles runnable output trees.
type Materializer struct {
	hosts    host.Provider
	logger   *slog.Logger
	recorder metrics.Recorder
}

// New returns a materializer using hosts for hosted targets.
func New(hosts host.Provider) *Materializer {
	return &Materializer{hosts: hosts, logger: slog.Default(), recorder: metrics.NoopRecorder{}}
}

// WithLogger sets a custom logger.
func (m *Materializer) WithLogger(logger *slog.Logger) *Materializer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithRecorder sets the metrics recorder.
func (m *Materializer) WithRecorder(r metrics.Recorder) *Materializer {
	if r != nil {
		m.recorder = r
	}
	return m
}

// Materialize copies compilation outputs, content files and dependency assets
// into the output directory (the runtime directory when set, else the
// compilation directory) and writes the manifests of the target kind.
func (m *Materializer) Materialize(ctx context.Context, req Request) (*Result, error) {
	if req.Project == nil || req.Location == nil {
		return nil, errors.InvalidState("materialize request needs a project and a location").Build()
	}
	kind := req.Env.Kind()
	start := time.Now()

	res, err := m.materialize(ctx, req)

	m.recorder.ObserveMaterializeDuration(kind.String(), time.Since(start))
	switch {
	case err == nil:
		m.recorder.IncMaterializeResult(kind.String(), metrics.ResultSuccess)
		m.recorder.AddFilesWritten(kind.String(), len(res.Written))
		m.logger.Info("Materialized runnable output",
			logfields.Project(req.Project.Name),
			logfields.Framework(req.Env.String()),
			logfields.Kind(kind.String()),
			logfields.Path(res.OutputDir),
			logfields.Count(len(res.Written)),
			logfields.Duration(time.Since(start)))
	case ctx.Err() != nil:
		m.recorder.IncMaterializeResult(kind.String(), metrics.ResultCanceled)
	default:
		m.recorder.IncMaterializeResult(kind.String(), metrics.ResultFailed)
	}
	return res, err
}

func (m *Materializer) materialize(ctx context.Context, req Request) (*Result, error) {
	loc := req.Location
	out := loc.OutputFiles()
	res := &Result{OutputDir: loc.OutputDir()}
	w := &writer{logger: m.logger, result: res}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if filepath.Clean(res.OutputDir) != filepath.Clean(loc.CompilationDir) {
		src := loc.CompilationFiles()
		pairs := [][2]string{{src.Assembly, out.Assembly}, {src.PDB, out.PDB}}
		if src.XMLDoc != "" {
			pairs = append(pairs, [2]string{src.XMLDoc, out.XMLDoc})
		}
		for _, p := range pairs {
			if err := w.copyIfExists(p[0], p[1]); err != nil {
				return nil, err
			}
		}
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	for _, cf := range req.Project.ContentFiles {
		if err := w.copy(cf.Source, filepath.Join(res.OutputDir, cf.Target)); err != nil {
			return nil, err
		}
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	switch kind := req.Env.Kind(); kind {
	case framework.KindLegacy:
		if err := m.legacy(w, req, out); err != nil {
			return nil, err
		}
	case framework.KindHosted:
		if err := m.hosted(w, req, out); err != nil {
			return nil, err
		}
	default:
		return nil, errors.InvalidState("unknown framework kind").
			WithContext("kind", kind.String()).
			Build()
	}
	return res, nil
}

// legacy copies every export's runtime assets and writes binding redirects.
// Assets sharing a file name resolve to the highest version.
func (m *Materializer) legacy(w *writer, req Request, out outputpath.RuntimeFiles) error {
	for _, asset := range highestAssets(req.Exports) {
		if err := w.copy(asset.Path, filepath.Join(w.result.OutputDir, asset.FileName())); err != nil {
			return err
		}
	}

	redirects := ComputeRedirects(req.Exports)
	base, err := loadBaseConfig(req.Project.Directory)
	if err != nil {
		return err
	}
	doc := MergeRedirects(base, redirects)
	if doc == nil {
		return nil
	}
	if err := w.writeXML(doc, out.Config); err != nil {
		return err
	}
	w.result.ConfigManifest = out.Config
	w.result.Redirects = redirects
	return nil
}

// hosted writes the deps manifest, copies project assets and places the host.
func (m *Materializer) hosted(w *writer, req Request, out outputpath.RuntimeFiles) error {
	data, err := DepsManifest(req.Env, req.Exports)
	if err != nil {
		return err
	}
	if err := w.writeFile(out.Deps, data); err != nil {
		return err
	}
	w.result.DepsManifest = out.Deps

	for _, export := range lockfile.OfKind(req.Exports, lockfile.KindProject) {
		if err := w.copyAssets(export, w.result.OutputDir); err != nil {
			return err
		}
	}

	if m.hosts == nil {
		return errors.ConfigError("no host provider configured for hosted target").
			WithContext("env", req.Env.String()).
			Build()
	}
	hostPath, err := m.hosts.HostFor(req.Env)
	if err != nil {
		return err
	}
	if err := w.copyExecutable(hostPath, out.Executable); err != nil {
		return err
	}
	w.result.HostBinary = out.Executable
	return nil
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "materialization canceled").
			WithRetry(errors.RetryRerun).
			Build()
	}
	return nil
}
