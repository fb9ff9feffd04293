package outputpath

import (
	"path/filepath"

	"git.home.luguber.info/inful/runbuild/internal/framework"
)

// File name suffixes of the artifacts a build produces.
const (
	DLLSuffix    = ".dll"
	ExeSuffix    = ".exe"
	PDBSuffix    = ".pdb"
	XMLSuffix    = ".xml"
	DepsSuffix   = ".deps.json"
	ConfigSuffix = ".config"
)

// FileOptions carries the compiler options that change the artifact set.
type FileOptions struct {
	// EmitEntryPoint marks an executable project.
	EmitEntryPoint bool
	// GenerateXMLDoc makes the compiler write <name>.xml.
	GenerateXMLDoc bool
}

// CompilationFiles names the artifacts the compiler writes into a directory.
type CompilationFiles struct {
	Dir      string
	Assembly string
	PDB      string
	// XMLDoc is empty when documentation generation is off.
	XMLDoc string
}

func newCompilationFiles(dir, projectName string, env framework.Descriptor, opts FileOptions) CompilationFiles {
	ext := DLLSuffix
	if opts.EmitEntryPoint && env.Kind() == framework.KindLegacy {
		ext = ExeSuffix
	}
	files := CompilationFiles{
		Dir:      dir,
		Assembly: filepath.Join(dir, projectName+ext),
		PDB:      filepath.Join(dir, projectName+PDBSuffix),
	}
	if opts.GenerateXMLDoc {
		files.XMLDoc = filepath.Join(dir, projectName+XMLSuffix)
	}
	return files
}

// All lists every file the compiler must produce.
func (c CompilationFiles) All() []string {
	all := []string{c.Assembly, c.PDB}
	if c.XMLDoc != "" {
		all = append(all, c.XMLDoc)
	}
	return all
}

// RuntimeFiles is the compilation set re-rooted at the runtime directory plus
// the files that make it runnable.
type RuntimeFiles struct {
	CompilationFiles

	// Executable is what a user launches: the host binary for hosted targets,
	// the assembly itself for legacy executables, empty for legacy libraries.
	Executable string
	// Deps is the dependency manifest of hosted targets.
	Deps string
	// Config is the binding-redirect manifest of legacy targets.
	Config string
}

func newRuntimeFiles(dir, projectName string, env framework.Descriptor, opts FileOptions) RuntimeFiles {
	files := RuntimeFiles{CompilationFiles: newCompilationFiles(dir, projectName, env, opts)}
	switch env.Kind() {
	case framework.KindLegacy:
		files.Config = files.Assembly + ConfigSuffix
		if opts.EmitEntryPoint {
			files.Executable = files.Assembly
		}
	case framework.KindHosted:
		files.Deps = filepath.Join(dir, projectName+DepsSuffix)
		files.Executable = filepath.Join(dir, projectName+env.ExecutableSuffix())
	}
	return files
}
