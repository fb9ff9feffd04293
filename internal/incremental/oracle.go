package incremental

import (
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/runbuild/internal/lockfile"
	"git.home.luguber.info/inful/runbuild/internal/logfields"
	"git.home.luguber.info/inful/runbuild/internal/metrics"
)

// Inputs are the files whose changes require recompilation, besides the lock file.
type Inputs struct {
	ManifestPath string
	SourceFiles  []string
}

// Paths lists the manifest followed by the sources.
func (in Inputs) Paths() []string {
	paths := make([]string, 0, len(in.SourceFiles)+1)
	if in.ManifestPath != "" {
		paths = append(paths, in.ManifestPath)
	}
	return append(paths, in.SourceFiles...)
}

// Oracle decides whether compiled outputs reflect the current inputs.
// It only reads file metadata and never touches the filesystem otherwise.
type Oracle struct {
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewOracle creates an oracle logging to slog.Default with no metrics.
func NewOracle() *Oracle {
	return &Oracle{logger: slog.Default(), recorder: metrics.NoopRecorder{}}
}

// WithLogger sets a custom logger.
func (o *Oracle) WithLogger(logger *slog.Logger) *Oracle {
	if logger != nil {
		o.logger = logger
	}
	return o
}

// WithRecorder sets the metrics recorder.
func (o *Oracle) WithRecorder(r metrics.Recorder) *Oracle {
	if r != nil {
		o.recorder = r
	}
	return o
}

// Decide applies the gate rules in order:
//
//  1. force                                   -> Stale(Forced)
//  2. lock file absent                        -> Stale(MissingLockFile)
//  3. any output missing                      -> Stale(MissingOutput)
//  4. newest input >= oldest output           -> Stale(InputNewerOrEqual)
//  5. otherwise                               -> UpToDate
//
// The lock file counts as an input in rule 4. A listed input that no longer
// exists yields InputNewerOrEqual. An empty output set is an InvalidState
// error once rules 1 and 2 do not apply.
func (o *Oracle) Decide(inputs Inputs, outputs []string, lock lockfile.Handle, force bool) (Verdict, error) {
	v, err := o.decide(inputs, outputs, lock, force)
	if err != nil {
		return Verdict{}, err
	}

	o.recorder.IncDecision(v.Label(), string(v.Reason()))
	if v.IsStale() {
		o.logger.Debug("Build is stale",
			logfields.Verdict(v.Label()),
			logfields.Reason(string(v.Reason())),
			logfields.Path(v.Path()))
	} else {
		o.logger.Debug("Build is up to date", logfields.Count(len(outputs)))
	}
	return v, nil
}

func (o *Oracle) decide(inputs Inputs, outputs []string, lock lockfile.Handle, force bool) (Verdict, error) {
	if force {
		return Stale(ReasonForced, ""), nil
	}

	exists, err := lock.Exists()
	if err != nil {
		return Verdict{}, err
	}
	if !exists {
		return Stale(ReasonMissingLockFile, lock.Path), nil
	}

	if len(outputs) == 0 {
		return Verdict{}, errors.InvalidState("no expected outputs given to the build gate").Build()
	}

	var earliestOutput time.Time
	for i, out := range outputs {
		mt, ok, err := modTime(out)
		if err != nil {
			return Verdict{}, err
		}
		if !ok {
			return Stale(ReasonMissingOutput, out), nil
		}
		if i == 0 || mt.Before(earliestOutput) {
			earliestOutput = mt
		}
	}

	for _, in := range append(inputs.Paths(), lock.Path) {
		mt, ok, err := modTime(in)
		if err != nil {
			return Verdict{}, err
		}
		if !ok || !mt.Before(earliestOutput) {
			return Stale(ReasonInputNewerOrEqual, in), nil
		}
	}

	return UpToDate(), nil
}

// modTime returns the file's mtime, false when it does not exist.
func modTime(path string) (time.Time, bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.ModTime(), true, nil
	}
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	}
	return time.Time{}, false, errors.WrapError(err, errors.CategoryFileSystem, "stat build gate file").
		WithContext("path", path).
		Build()
}
