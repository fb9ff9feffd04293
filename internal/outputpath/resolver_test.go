package outputpath

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/runbuild/internal/framework"
)

const sep = string(os.PathSeparator)

func descriptor(t *testing.T, moniker, rid string) framework.Descriptor {
	t.Helper()
	d, err := framework.NewDescriptor(moniker, rid)
	require.NoError(t, err)
	return d
}

func TestResolve_DefaultsToProjectDirectory(t *testing.T) {
	root := t.TempDir()
	projectDir := filepath.Join(root, "App")

	loc, err := Resolve(Request{
		ProjectDir:    projectDir,
		ProjectName:   "App",
		Env:           descriptor(t, "netcoreapp1.0", ""),
		Configuration: "Debug",
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(projectDir, "bin", "Debug", "netcoreapp1.0")+sep, loc.CompilationDir)
	assert.Equal(t, filepath.Join(projectDir, "obj", "Debug", "netcoreapp10")+sep, loc.IntermediateDir)
	assert.False(t, loc.HasRuntimeDir())
	assert.Equal(t, loc.CompilationDir, loc.OutputDir())
}

func TestResolve_RuntimeIdentifierNestsUnderCompilationDir(t *testing.T) {
	projectDir := filepath.Join(t.TempDir(), "App")

	loc, err := Resolve(Request{
		ProjectDir:    projectDir,
		ProjectName:   "App",
		Env:           descriptor(t, "netcoreapp1.0", "linux-x64"),
		Configuration: "Release",
	})
	require.NoError(t, err)

	runtimeDir, err := loc.RuntimeDir()
	require.NoError(t, err)
	assert.Equal(t, loc.CompilationDir+"linux-x64"+sep, runtimeDir)
	assert.Equal(t, runtimeDir, loc.OutputDir())
}

func TestResolve_ExplicitOutputPathWins(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "publish") + sep + sep

	loc, err := Resolve(Request{
		ProjectDir:    filepath.Join(root, "App"),
		ProjectName:   "App",
		Env:           descriptor(t, "netcoreapp1.0", "linux-x64"),
		Configuration: "Debug",
		OutputPath:    out,
	})
	require.NoError(t, err)

	runtimeDir, err := loc.RuntimeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "publish")+sep, runtimeDir)
	assert.True(t, strings.HasPrefix(loc.CompilationDir, filepath.Join(root, "App")))
}

func TestResolve_BuildBasePathWithoutSolutionRoot(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "artifacts")

	loc, err := Resolve(Request{
		ProjectDir:    filepath.Join(root, "src", "App"),
		ProjectName:   "App",
		Env:           descriptor(t, "net451", ""),
		Configuration: "Debug",
		BuildBasePath: base,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "App", "bin", "Debug", "net451")+sep, loc.CompilationDir)
	assert.Equal(t, filepath.Join(base, "App", "obj", "Debug", "net451")+sep, loc.IntermediateDir)
}

func TestResolve_BuildBasePathRemapsSolutionRoot(t *testing.T) {
	root := t.TempDir()
	solution := filepath.Join(root, "sln")
	base := filepath.Join(root, "out")

	loc, err := Resolve(Request{
		ProjectDir:    filepath.Join(solution, "src", "Lib"),
		ProjectName:   "Lib",
		Env:           descriptor(t, "netstandard1.5", ""),
		Configuration: "Debug",
		SolutionRoot:  solution + sep,
		BuildBasePath: base,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "src", "Lib", "bin", "Debug", "netstandard1.5")+sep, loc.CompilationDir)
	assert.Equal(t, filepath.Join(base, "src", "Lib", "obj", "Debug", "netstandard15")+sep, loc.IntermediateDir)
}

func TestResolve_RelativeSolutionRoot(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	t.Chdir(root)
	base := filepath.Join(root, "out")

	loc, err := Resolve(Request{
		ProjectDir:    filepath.Join(root, "src", "sln", "src", "App"),
		ProjectName:   "App",
		Env:           descriptor(t, "net451", ""),
		Configuration: "Debug",
		SolutionRoot:  filepath.Join("src", "sln"),
		BuildBasePath: base,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "src", "App", "bin", "Debug", "net451")+sep, loc.CompilationDir)
}

func TestResolve_SolutionRootMustBePrefix(t *testing.T) {
	root := t.TempDir()

	for _, solution := range []string{
		filepath.Join(root, "sln", "src"),
		filepath.Join(root, "src", "sl"),
	} {
		_, err := Resolve(Request{
			ProjectDir:    filepath.Join(root, "src", "sln", "src", "App"),
			ProjectName:   "App",
			Env:           descriptor(t, "net451", ""),
			Configuration: "Debug",
			SolutionRoot:  solution,
			BuildBasePath: filepath.Join(root, "out"),
		})
		require.Error(t, err, solution)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation), solution)
	}
}

func TestResolve_IsIdempotent(t *testing.T) {
	req := Request{
		ProjectDir:    filepath.Join(t.TempDir(), "App"),
		ProjectName:   "App",
		Env:           descriptor(t, "netcoreapp1.0", "osx.10.11-x64"),
		Configuration: "Debug",
		Options:       FileOptions{EmitEntryPoint: true, GenerateXMLDoc: true},
	}

	first, err := Resolve(req)
	require.NoError(t, err)
	second, err := Resolve(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// Re-resolving with an already normalized directory does not grow separators.
	req.ProjectDir = first.CompilationDir
	third, err := Resolve(req)
	require.NoError(t, err)
	assert.False(t, strings.Contains(third.CompilationDir, sep+sep))
}

func TestResolve_NoRuntimeTargetIsInvalidState(t *testing.T) {
	loc, err := Resolve(Request{
		ProjectDir:    filepath.Join(t.TempDir(), "App"),
		ProjectName:   "App",
		Env:           descriptor(t, "netcoreapp1.0", ""),
		Configuration: "Debug",
	})
	require.NoError(t, err)

	_, err = loc.RuntimeDir()
	require.Error(t, err)
	assert.True(t, errors.IsInvalidState(err))
	assert.Contains(t, err.Error(), "no runtime target set")

	_, err = loc.RuntimeFiles()
	require.ErrorIs(t, err, ErrNoRuntimeTarget)

	files := loc.OutputFiles()
	assert.Equal(t, loc.CompilationDir, files.Dir)
}

func TestResolve_Validation(t *testing.T) {
	env := descriptor(t, "net451", "")
	valid := Request{ProjectDir: t.TempDir(), ProjectName: "App", Env: env, Configuration: "Debug"}

	cases := map[string]func(r *Request){
		"missing name":          func(r *Request) { r.ProjectName = "" },
		"missing directory":     func(r *Request) { r.ProjectDir = " " },
		"missing configuration": func(r *Request) { r.Configuration = "" },
		"missing framework":     func(r *Request) { r.Env = framework.Descriptor{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := valid
			mutate(&req)
			_, err := Resolve(req)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
		})
	}
}

func TestCompilationFiles(t *testing.T) {
	projectDir := filepath.Join(t.TempDir(), "App")

	t.Run("hosted library", func(t *testing.T) {
		loc, err := Resolve(Request{ProjectDir: projectDir, ProjectName: "App", Env: descriptor(t, "netcoreapp1.0", "win7-x64"), Configuration: "Debug"})
		require.NoError(t, err)

		files := loc.CompilationFiles()
		assert.Equal(t, []string{
			filepath.Join(loc.CompilationDir, "App.dll"),
			filepath.Join(loc.CompilationDir, "App.pdb"),
		}, files.All())

		rt, err := loc.RuntimeFiles()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(rt.Dir, "App.deps.json"), rt.Deps)
		assert.Equal(t, filepath.Join(rt.Dir, "App.exe"), rt.Executable)
		assert.Empty(t, rt.Config)
	})

	t.Run("legacy executable with docs", func(t *testing.T) {
		loc, err := Resolve(Request{
			ProjectDir: projectDir, ProjectName: "App", Env: descriptor(t, "net451", "win7-x86"), Configuration: "Debug",
			Options: FileOptions{EmitEntryPoint: true, GenerateXMLDoc: true},
		})
		require.NoError(t, err)

		files := loc.CompilationFiles()
		assert.Equal(t, filepath.Join(loc.CompilationDir, "App.exe"), files.Assembly)
		assert.Len(t, files.All(), 3)
		assert.Equal(t, filepath.Join(loc.CompilationDir, "App.xml"), files.XMLDoc)

		rt, err := loc.RuntimeFiles()
		require.NoError(t, err)
		assert.Equal(t, rt.Assembly+".config", rt.Config)
		assert.Equal(t, rt.Assembly, rt.Executable)
		assert.Empty(t, rt.Deps)
	})
}

func TestEnsureTrailingSeparator(t *testing.T) {
	assert.Equal(t, "", EnsureTrailingSeparator(""))
	assert.Equal(t, filepath.Join("a", "b")+sep, EnsureTrailingSeparator(filepath.Join("a", "b")))
	assert.Equal(t, filepath.Join("a", "b")+sep, EnsureTrailingSeparator(filepath.Join("a", "b")+sep+sep))
	once := EnsureTrailingSeparator(filepath.Join("x", ".", "y"))
	assert.Equal(t, once, EnsureTrailingSeparator(once))
}
