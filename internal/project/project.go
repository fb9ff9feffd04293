// Package project reads the project descriptor (project.yaml) that names a
// project, its compile inputs and the content files copied into runnable output.
package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/runbuild/internal/outputpath"
)

// FileName is the conventional descriptor name.
const FileName = "project.yaml"

// DefaultCompile matches sources when the descriptor lists none.
var DefaultCompile = []string{"**/*.cs"}

// defaultExclude keeps build output out of the input set.
var defaultExclude = []string{"bin/**", "obj/**"}

// ContentFile is a file copied verbatim into the runnable output.
type ContentFile struct {
	// Source is absolute.
	Source string
	// Target is relative to the output directory.
	Target string
}

// Project is the resolved descriptor.
type Project struct {
	Name           string
	Directory      string
	ManifestPath   string
	EmitEntryPoint bool
	GenerateXMLDoc bool
	Frameworks     []string
	SourceFiles    []string
	ContentFiles   []ContentFile
}

// FileOptions returns the options that shape the compiled artifact set.
func (p *Project) FileOptions() outputpath.FileOptions {
	return outputpath.FileOptions{EmitEntryPoint: p.EmitEntryPoint, GenerateXMLDoc: p.GenerateXMLDoc}
}

type descriptor struct {
	Name           string   `yaml:"name"`
	EmitEntryPoint bool     `yaml:"emitEntryPoint"`
	GenerateXMLDoc bool     `yaml:"generateXmlDoc"`
	Frameworks     []string `yaml:"frameworks"`
	Compile        []string `yaml:"compile"`
	CompileExclude []string `yaml:"compileExclude"`
	Content        []string `yaml:"content"`
	ContentExclude []string `yaml:"contentExclude"`
}

// Load reads a descriptor. path may name the file or the directory holding it.
func Load(path string) (*Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "resolve project path").
			WithContext("path", path).
			Build()
	}
	if info, statErr := os.Stat(abs); statErr == nil && info.IsDir() {
		abs = filepath.Join(abs, FileName)
	}

	// #nosec G304 - descriptor path is supplied by the user
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError("project descriptor not found").
				WithCause(err).
				WithContext("path", abs).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read project descriptor").
			WithContext("path", abs).
			Build()
	}

	var d descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.ValidationError("invalid project descriptor").
			WithCause(err).
			WithContext("path", abs).
			Build()
	}

	dir := filepath.Dir(abs)
	p := &Project{
		Name:           strings.TrimSpace(d.Name),
		Directory:      dir,
		ManifestPath:   abs,
		EmitEntryPoint: d.EmitEntryPoint,
		GenerateXMLDoc: d.GenerateXMLDoc,
		Frameworks:     d.Frameworks,
	}
	if p.Name == "" {
		p.Name = filepath.Base(dir)
	}

	compile := d.Compile
	if len(compile) == 0 {
		compile = DefaultCompile
	}
	sources, err := expand(dir, compile, append(d.CompileExclude, defaultExclude...))
	if err != nil {
		return nil, err
	}
	for _, rel := range sources {
		p.SourceFiles = append(p.SourceFiles, filepath.Join(dir, filepath.FromSlash(rel)))
	}

	content, err := expand(dir, d.Content, append(d.ContentExclude, defaultExclude...))
	if err != nil {
		return nil, err
	}
	for _, rel := range content {
		p.ContentFiles = append(p.ContentFiles, ContentFile{
			Source: filepath.Join(dir, filepath.FromSlash(rel)),
			Target: filepath.FromSlash(rel),
		})
	}
	return p, nil
}

// expand returns the sorted, de-duplicated regular files under dir matching
// any include pattern and no exclude pattern. Results are slash separated.
func expand(dir string, include, exclude []string) ([]string, error) {
	for _, pattern := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.ValidationError("invalid glob pattern").
				WithContext("pattern", pattern).
				Build()
		}
	}

	fsys := os.DirFS(dir)
	seen := make(map[string]struct{})
	var out []string
	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "expand glob").
				WithContext("pattern", pattern).
				WithContext("path", dir).
				Build()
		}
		for _, m := range matches {
			if _, dup := seen[m]; dup || excluded(m, exclude) {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

func excluded(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if doublestar.MatchUnvalidated(pattern, name) {
			return true
		}
	}
	return false
}
