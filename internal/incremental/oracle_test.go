package incremental

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/runbuild/internal/lockfile"
	"git.home.luguber.info/inful/runbuild/internal/metrics"
)

var base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// fixture is a project "App" with one source, a lock file and two outputs.
type fixture struct {
	inputs  Inputs
	outputs []string
	lock    lockfile.Handle
}

func touch(t *testing.T, path string, at time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		require.NoError(t, os.WriteFile(path, []byte(filepath.Base(path)), 0o600))
	}
	require.NoError(t, os.Chtimes(path, at, at))
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		inputs: Inputs{
			ManifestPath: filepath.Join(dir, "project.yaml"),
			SourceFiles:  []string{filepath.Join(dir, "Program.cs")},
		},
		outputs: []string{
			filepath.Join(dir, "bin", "Debug", "netcoreapp1.0", "App.dll"),
			filepath.Join(dir, "bin", "Debug", "netcoreapp1.0", "App.pdb"),
		},
		lock: lockfile.ForProject(dir),
	}
	touch(t, f.inputs.ManifestPath, base)
	touch(t, f.inputs.SourceFiles[0], base)
	touch(t, f.lock.Path, base)
	for _, out := range f.outputs {
		touch(t, out, base.Add(time.Minute))
	}
	return f
}

func (f fixture) decide(t *testing.T, force bool) Verdict {
	t.Helper()
	v, err := NewOracle().Decide(f.inputs, f.outputs, f.lock, force)
	require.NoError(t, err)
	return v
}

func TestDecide_UpToDate(t *testing.T) {
	f := newFixture(t)
	v := f.decide(t, false)
	assert.False(t, v.IsStale())
	assert.Equal(t, UpToDate(), v)
	assert.Equal(t, "up to date", v.String())
}

func TestDecide_ForcedOverridesEverything(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, ReasonForced, f.decide(t, true).Reason())

	require.NoError(t, os.Remove(f.lock.Path))
	require.NoError(t, os.Remove(f.outputs[0]))
	v := f.decide(t, true)
	assert.True(t, v.IsStale())
	assert.Equal(t, ReasonForced, v.Reason())
}

func TestDecide_MissingLockFileBeforeEverythingElse(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.lock.Path))
	// Outputs are also missing and sources newer; the lock file still wins.
	require.NoError(t, os.Remove(f.outputs[1]))
	touch(t, f.inputs.SourceFiles[0], base.Add(time.Hour))

	v := f.decide(t, false)
	assert.Equal(t, ReasonMissingLockFile, v.Reason())
	assert.Equal(t, f.lock.Path, v.Path())
}

func TestDecide_MissingOutput(t *testing.T) {
	for i := range 2 {
		f := newFixture(t)
		require.NoError(t, os.Remove(f.outputs[i]))
		v := f.decide(t, false)
		assert.Equal(t, ReasonMissingOutput, v.Reason())
		assert.Equal(t, f.outputs[i], v.Path())
	}
}

func TestDecide_MissingOutputIsMonotonic(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.outputs[0]))
	first := f.decide(t, false)
	require.True(t, first.IsStale())

	// Removing more outputs never makes the verdict up to date.
	require.NoError(t, os.Remove(f.outputs[1]))
	assert.True(t, f.decide(t, false).IsStale())
}

func TestDecide_TimestampTieRebuilds(t *testing.T) {
	f := newFixture(t)
	touch(t, f.inputs.SourceFiles[0], base.Add(time.Minute))

	v := f.decide(t, false)
	assert.Equal(t, ReasonInputNewerOrEqual, v.Reason())
	assert.Equal(t, f.inputs.SourceFiles[0], v.Path())
}

func TestDecide_InputNewer(t *testing.T) {
	tests := []struct {
		name  string
		path  func(f fixture) string
		after time.Duration
	}{
		{name: "manifest", path: func(f fixture) string { return f.inputs.ManifestPath }, after: 2 * time.Minute},
		{name: "source", path: func(f fixture) string { return f.inputs.SourceFiles[0] }, after: time.Hour},
		{name: "lock file", path: func(f fixture) string { return f.lock.Path }, after: 2 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			touch(t, tt.path(f), base.Add(tt.after))
			v := f.decide(t, false)
			assert.Equal(t, ReasonInputNewerOrEqual, v.Reason())
			assert.Equal(t, tt.path(f), v.Path())
		})
	}
}

func TestDecide_EarliestOutputIsCompared(t *testing.T) {
	f := newFixture(t)
	// One output is older than the source, the other newer.
	touch(t, f.inputs.SourceFiles[0], base.Add(2*time.Minute))
	touch(t, f.outputs[1], base.Add(3*time.Minute))

	assert.Equal(t, ReasonInputNewerOrEqual, f.decide(t, false).Reason())
}

func TestDecide_DeletedSourceIsStale(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.inputs.SourceFiles[0]))

	v := f.decide(t, false)
	assert.Equal(t, ReasonInputNewerOrEqual, v.Reason())
}

func TestDecide_NoOutputsIsInvalidState(t *testing.T) {
	f := newFixture(t)
	_, err := NewOracle().Decide(f.inputs, nil, f.lock, false)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidState(err))

	v, err := NewOracle().Decide(f.inputs, nil, f.lock, true)
	require.NoError(t, err)
	assert.Equal(t, ReasonForced, v.Reason())

	require.NoError(t, os.Remove(f.lock.Path))
	v, err = NewOracle().Decide(f.inputs, nil, f.lock, false)
	require.NoError(t, err)
	assert.Equal(t, ReasonMissingLockFile, v.Reason())
}

func TestDecide_DoesNotMutate(t *testing.T) {
	f := newFixture(t)
	before := InputSignature(f.inputs, f.lock.Path)
	digestBefore, err := TreeDigest(filepath.Dir(f.lock.Path))
	require.NoError(t, err)

	f.decide(t, false)

	assert.Equal(t, before, InputSignature(f.inputs, f.lock.Path))
	digestAfter, err := TreeDigest(filepath.Dir(f.lock.Path))
	require.NoError(t, err)
	assert.Equal(t, digestBefore, digestAfter)
}

type countingRecorder struct {
	metrics.NoopRecorder
	decisions map[string]int
}

func (c *countingRecorder) IncDecision(verdict, reason string) {
	c.decisions[verdict+"/"+reason]++
}

func TestDecide_RecordsMetrics(t *testing.T) {
	f := newFixture(t)
	rec := &countingRecorder{decisions: map[string]int{}}
	oracle := NewOracle().WithRecorder(rec)

	_, err := oracle.Decide(f.inputs, f.outputs, f.lock, false)
	require.NoError(t, err)
	_, err = oracle.Decide(f.inputs, f.outputs, f.lock, true)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"up_to_date/": 1, "stale/forced": 1}, rec.decisions)
}

func TestTreeDigest_IgnoresTimestamps(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a", "x.dll"), base)
	first, err := TreeDigest(dir)
	require.NoError(t, err)

	touch(t, filepath.Join(dir, "a", "x.dll"), base.Add(time.Hour))
	second, err := TreeDigest(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "x.dll"), []byte("changed"), 0o600))
	third, err := TreeDigest(dir)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}
