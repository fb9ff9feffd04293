package outputpath

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/runbuild/internal/framework"
)

const (
	objDirectoryName = "obj"
	binDirectoryName = "bin"
)

// ErrNoRuntimeTarget is returned when the runtime view of a Location is
// requested but neither a platform identifier nor an output path was given.
var ErrNoRuntimeTarget = errors.InvalidState("no runtime target set").Build()

// Request holds the inputs of a resolution.
type Request struct {
	ProjectDir    string
	ProjectName   string
	Env           framework.Descriptor
	Configuration string

	// SolutionRoot, when set together with BuildBasePath, is remapped onto
	// BuildBasePath so a solution builds into a mirrored tree.
	SolutionRoot string
	// BuildBasePath redirects generated output away from the project directory.
	BuildBasePath string
	// OutputPath overrides the runtime directory verbatim.
	OutputPath string

	Options FileOptions
}

// Location is the resolved, immutable set of output directories for one build.
type Location struct {
	IntermediateDir string
	CompilationDir  string

	runtimeDir       string
	compilationFiles CompilationFiles
	outputFiles      RuntimeFiles
}

// Resolve computes the output location for req.
func Resolve(req Request) (*Location, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	projectDir, err := filepath.Abs(req.ProjectDir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "resolve project directory").
			WithContext("path", req.ProjectDir).
			Build()
	}

	base, err := baseDirectory(projectDir, req)
	if err != nil {
		return nil, err
	}

	fw := req.Env.Framework
	loc := &Location{
		CompilationDir:  EnsureTrailingSeparator(filepath.Join(base, binDirectoryName, req.Configuration, fw.ShortFolderName())),
		IntermediateDir: EnsureTrailingSeparator(filepath.Join(base, objDirectoryName, req.Configuration, fw.TwoDigitShortFolderName())),
	}

	switch {
	case req.OutputPath != "":
		out, err := filepath.Abs(req.OutputPath)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryValidation, "resolve output path").
				WithContext("path", req.OutputPath).
				Build()
		}
		loc.runtimeDir = EnsureTrailingSeparator(out)
	case req.Env.HasRuntime():
		loc.runtimeDir = EnsureTrailingSeparator(filepath.Join(loc.CompilationDir, req.Env.RuntimeIdentifier))
	}

	loc.compilationFiles = newCompilationFiles(loc.CompilationDir, req.ProjectName, req.Env, req.Options)
	loc.outputFiles = newRuntimeFiles(loc.OutputDir(), req.ProjectName, req.Env, req.Options)
	return loc, nil
}

func validate(req Request) error {
	switch {
	case strings.TrimSpace(req.ProjectName) == "":
		return errors.ValidationError("project name is required").Build()
	case strings.TrimSpace(req.ProjectDir) == "":
		return errors.ValidationError("project directory is required").
			WithContext("project", req.ProjectName).
			Build()
	case strings.TrimSpace(req.Configuration) == "":
		return errors.ValidationError("configuration is required").
			WithContext("project", req.ProjectName).
			Build()
	case req.Env.Framework.IsZero():
		return errors.ValidationError("target framework is required").
			WithContext("project", req.ProjectName).
			Build()
	}
	return nil
}

// baseDirectory picks the root under which bin/ and obj/ are created.
func baseDirectory(projectDir string, req Request) (string, error) {
	if req.BuildBasePath == "" {
		return projectDir, nil
	}
	buildBase, err := filepath.Abs(req.BuildBasePath)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryValidation, "resolve build base path").
			WithContext("path", req.BuildBasePath).
			Build()
	}
	if req.SolutionRoot == "" {
		return filepath.Join(buildBase, req.ProjectName), nil
	}
	root, err := filepath.Abs(req.SolutionRoot)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryValidation, "resolve solution root").
			WithContext("path", req.SolutionRoot).
			Build()
	}
	rel, err := filepath.Rel(root, projectDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.ValidationError("project directory is not inside the solution root").
			WithContext("project", req.ProjectName).
			WithContext("path", projectDir).
			WithContext("solution_root", root).
			Build()
	}
	return filepath.Join(buildBase, rel), nil
}

// RuntimeDir returns the runtime output directory.
func (l *Location) RuntimeDir() (string, error) {
	if l.runtimeDir == "" {
		return "", ErrNoRuntimeTarget
	}
	return l.runtimeDir, nil
}

// HasRuntimeDir reports whether RuntimeDir would succeed.
func (l *Location) HasRuntimeDir() bool {
	return l.runtimeDir != ""
}

// OutputDir is where a runnable tree is assembled: the runtime directory when
// one is set, the compilation directory otherwise.
func (l *Location) OutputDir() string {
	if l.runtimeDir != "" {
		return l.runtimeDir
	}
	return l.CompilationDir
}

// CompilationFiles returns the artifacts expected in the compilation directory.
func (l *Location) CompilationFiles() CompilationFiles {
	return l.compilationFiles
}

// RuntimeFiles returns the runtime view of the artifacts.
func (l *Location) RuntimeFiles() (RuntimeFiles, error) {
	if l.runtimeDir == "" {
		return RuntimeFiles{}, ErrNoRuntimeTarget
	}
	return l.outputFiles, nil
}

// OutputFiles returns the runnable view rooted at OutputDir. Unlike
// RuntimeFiles it never fails.
func (l *Location) OutputFiles() RuntimeFiles {
	return l.outputFiles
}
