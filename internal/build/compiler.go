package build

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/runbuild/internal/framework"
	"git.home.luguber.info/inful/runbuild/internal/logfields"
	"git.home.luguber.info/inful/runbuild/internal/outputpath"
	"git.home.luguber.info/inful/runbuild/internal/project"
)

// CompileRequest describes one compiler invocation.
type CompileRequest struct {
	Project       *project.Project
	Env           framework.Descriptor
	Configuration string
	Location      *outputpath.Location
}

// Compiler produces the compilation files of a location.
type Compiler interface {
	Compile(ctx context.Context, req CompileRequest) error
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(ctx context.Context, req CompileRequest) error

func (f CompilerFunc) Compile(ctx context.Context, req CompileRequest) error { return f(ctx, req) }

// Variables exported to the compiler process. Arguments may reference them
// as ${NAME}.
const (
	VarProject       = "RUNBUILD_PROJECT"
	VarProjectDir    = "RUNBUILD_PROJECT_DIR"
	VarManifest      = "RUNBUILD_MANIFEST"
	VarFramework     = "RUNBUILD_FRAMEWORK"
	VarRuntime       = "RUNBUILD_RUNTIME"
	VarBuildConfig   = "RUNBUILD_BUILD_CONFIGURATION"
	VarIntermediate  = "RUNBUILD_INTERMEDIATE_DIR"
	VarCompilation   = "RUNBUILD_COMPILATION_DIR"
	VarOutput        = "RUNBUILD_OUTPUT_DIR"
	VarAssembly      = "RUNBUILD_ASSEMBLY"
	VarEmitEntry     = "RUNBUILD_EMIT_ENTRY_POINT"
	VarXMLDoc        = "RUNBUILD_XML_DOC"
	VarSourcesFile   = "RUNBUILD_SOURCES_FILE"
	sourcesFileExtra = ".sources.rsp"
)

// CommandCompiler runs an external command in the project directory.
// The source file list is written one path per line to a response file in
// the intermediate directory.
type CommandCompiler struct {
	Command string
	Args    []string

	// Stdout and Stderr receive the process output. When nil, output is
	// captured and attached to the error on failure.
	Stdout io.Writer
	Stderr io.Writer

	Logger *slog.Logger
}

// NewCommandCompiler returns a compiler running command with args.
func NewCommandCompiler(command string, args ...string) *CommandCompiler {
	return &CommandCompiler{Command: command, Args: args}
}

// Compile runs the command and waits for it to exit.
func (c *CommandCompiler) Compile(ctx context.Context, req CompileRequest) error {
	if c.Command == "" {
		return errors.ConfigError("no compiler command configured").
			WithContext("project", req.Project.Name).
			Build()
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	vars, err := compileVars(req)
	if err != nil {
		return err
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = os.Expand(a, func(k string) string {
			if v, ok := vars[k]; ok {
				return v
			}
			return os.Getenv(k)
		})
	}

	// #nosec G204 - the compiler command comes from the user's configuration
	cmd := exec.CommandContext(ctx, c.Command, args...)
	cmd.Dir = req.Project.Directory
	cmd.Env = os.Environ()
	for k, v := range vars {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var captured bytes.Buffer
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = &captured
	}
	if cmd.Stderr == nil {
		cmd.Stderr = &captured
	}

	logger.Debug("Running compiler",
		logfields.Project(req.Project.Name),
		slog.String("command", c.Command),
		slog.Any("args", args))

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return errors.WrapError(ctx.Err(), errors.CategoryRuntime, "compiler canceled").
				WithContext("project", req.Project.Name).
				WithRetry(errors.RetryRerun).
				Build()
		}
		b := errors.BuildError("compiler failed").
			WithCause(err).
			WithContext("project", req.Project.Name).
			WithContext("command", c.Command)
		if out := strings.TrimSpace(captured.String()); out != "" {
			b = b.WithContext("output", out)
		}
		return b.Build()
	}
	logger.Debug("Compiler finished", logfields.Project(req.Project.Name), logfields.Duration(time.Since(start)))
	return nil
}

// compileVars builds the process variables and writes the sources file.
func compileVars(req CompileRequest) (map[string]string, error) {
	loc := req.Location
	p := req.Project

	sourcesFile := filepath.Join(loc.IntermediateDir, p.Name+sourcesFileExtra)
	if err := os.MkdirAll(loc.IntermediateDir, 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "create intermediate directory").
			WithContext("path", loc.IntermediateDir).
			Build()
	}
	var list strings.Builder
	for _, src := range p.SourceFiles {
		list.WriteString(src)
		list.WriteByte('\n')
	}
	if err := os.WriteFile(sourcesFile, []byte(list.String()), 0o600); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "write sources file").
			WithContext("path", sourcesFile).
			Build()
	}

	return map[string]string{
		VarProject:      p.Name,
		VarProjectDir:   p.Directory,
		VarManifest:     p.ManifestPath,
		VarFramework:    req.Env.Framework.String(),
		VarRuntime:      req.Env.RuntimeIdentifier,
		VarBuildConfig:  req.Configuration,
		VarIntermediate: loc.IntermediateDir,
		VarCompilation:  loc.CompilationDir,
		VarOutput:       loc.OutputDir(),
		VarAssembly:     loc.CompilationFiles().Assembly,
		VarEmitEntry:    strconv.FormatBool(p.EmitEntryPoint),
		VarXMLDoc:       strconv.FormatBool(p.GenerateXMLDoc),
		VarSourcesFile:  sourcesFile,
	}, nil
}
