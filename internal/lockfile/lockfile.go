// Package lockfile is the boundary to the dependency-resolution collaborator.
//
// It exposes the persisted resolution snapshot as an opaque Handle (existence
// and last-write time only) and reads the resolved library list the snapshot
// carries into DependencyExport values. Resolution itself happens elsewhere;
// nothing in this package writes a lock file.
package lockfile

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

// FileName is the conventional snapshot name next to a project manifest.
const FileName = "project.lock.json"

// Kind classifies a resolved library.
type Kind string

const (
	KindPackage     Kind = "package"
	KindProject     Kind = "project"
	KindEnvironment Kind = "environment"
)

// Identity names one resolved library.
type Identity struct {
	Name    string
	Version string
	Kind    Kind
}

func (i Identity) String() string {
	return fmt.Sprintf("%s/%s (%s)", i.Name, i.Version, i.Kind)
}

// RuntimeAsset is a file a library contributes to the runnable output.
type RuntimeAsset struct {
	// Path is absolute.
	Path string
	// RelativePath is the asset path inside its library, slash separated.
	RelativePath string

	AssemblyName    string
	AssemblyVersion string
	PublicKeyToken  string
}

// DependencyExport is one resolved library with the runtime assets it exports.
type DependencyExport struct {
	Identity
	RuntimeAssets []RuntimeAsset
}

// Handle references a resolution snapshot on disk. It is read-only.
type Handle struct {
	Path string
}

// NewHandle returns the handle of the snapshot at path.
func NewHandle(path string) Handle {
	return Handle{Path: path}
}

// ForProject returns the handle of the conventional snapshot in projectDir.
func ForProject(projectDir string) Handle {
	return Handle{Path: filepath.Join(projectDir, FileName)}
}

// Stat returns the snapshot's file info.
func (h Handle) Stat() (fs.FileInfo, error) {
	return os.Stat(h.Path)
}

// Exists reports whether the snapshot is present. Errors other than
// "not exist" are returned.
func (h Handle) Exists() (bool, error) {
	_, err := h.Stat()
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.WrapError(err, errors.CategoryFileSystem, "stat lock file").
		WithContext("path", h.Path).
		Build()
}

// ModTime returns the snapshot's last-write time.
func (h Handle) ModTime() (time.Time, error) {
	info, err := h.Stat()
	if err != nil {
		return time.Time{}, errors.WrapError(err, errors.CategoryFileSystem, "stat lock file").
			WithContext("path", h.Path).
			Build()
	}
	return info.ModTime(), nil
}

type snapshot struct {
	Version   int            `json:"version"`
	Libraries []libraryEntry `json:"libraries"`
}

type libraryEntry struct {
	Name    string       `json:"name"`
	Version string       `json:"version"`
	Type    string       `json:"type"`
	Path    string       `json:"path,omitempty"`
	Runtime []assetEntry `json:"runtime,omitempty"`
}

type assetEntry struct {
	Path            string `json:"path"`
	AssemblyName    string `json:"assemblyName,omitempty"`
	AssemblyVersion string `json:"assemblyVersion,omitempty"`
	PublicKeyToken  string `json:"publicKeyToken,omitempty"`
}

// Roots anchors relative asset paths of a snapshot.
type Roots struct {
	// Packages is the package cache; package assets live under Packages/<library path>.
	Packages string
	// Projects anchors project and environment assets, normally the directory
	// holding the snapshot.
	Projects string
}

// ReadExports reads the resolved library list from the snapshot.
func ReadExports(h Handle, roots Roots) ([]DependencyExport, error) {
	// #nosec G304 - the snapshot path is supplied by the caller
	data, err := os.ReadFile(h.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError("lock file not found").
				WithCause(err).
				WithContext("path", h.Path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read lock file").
			WithContext("path", h.Path).
			Build()
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.LockFileError("parse lock file").
			WithCause(err).
			WithContext("path", h.Path).
			Build()
	}

	if roots.Projects == "" {
		roots.Projects = filepath.Dir(h.Path)
	}

	exports := make([]DependencyExport, 0, len(snap.Libraries))
	for _, lib := range snap.Libraries {
		kind, err := parseKind(lib.Type)
		if err != nil {
			return nil, errors.LockFileError("unknown library type").
				WithContext("path", h.Path).
				WithContext("library", lib.Name).
				WithContext("type", lib.Type).
				Build()
		}
		if lib.Name == "" {
			return nil, errors.LockFileError("library without name").
				WithContext("path", h.Path).
				Build()
		}

		export := DependencyExport{
			Identity: Identity{Name: lib.Name, Version: lib.Version, Kind: kind},
		}
		for _, a := range lib.Runtime {
			export.RuntimeAssets = append(export.RuntimeAssets, RuntimeAsset{
				Path:            resolveAsset(roots, kind, lib.Path, a.Path),
				RelativePath:    filepath.ToSlash(a.Path),
				AssemblyName:    a.AssemblyName,
				AssemblyVersion: a.AssemblyVersion,
				PublicKeyToken:  a.PublicKeyToken,
			})
		}
		exports = append(exports, export)
	}
	return exports, nil
}

func parseKind(raw string) (Kind, error) {
	switch strings.ToLower(raw) {
	case "package", "":
		return KindPackage, nil
	case "project":
		return KindProject, nil
	case "environment", "reference", "frameworkassembly":
		return KindEnvironment, nil
	default:
		return "", fmt.Errorf("unknown library type %q", raw)
	}
}

func resolveAsset(roots Roots, kind Kind, libPath, assetPath string) string {
	p := filepath.FromSlash(assetPath)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	if kind == KindPackage {
		return filepath.Join(roots.Packages, filepath.FromSlash(libPath), p)
	}
	return filepath.Join(roots.Projects, p)
}

// OfKind filters exports by kind, preserving order.
func OfKind(exports []DependencyExport, kind Kind) []DependencyExport {
	var out []DependencyExport
	for _, e := range exports {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Name returns the assembly name, defaulting to the asset file name without extension.
func (a RuntimeAsset) Name() string {
	if a.AssemblyName != "" {
		return a.AssemblyName
	}
	base := filepath.Base(a.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FileName is the asset's name inside the output directory.
func (a RuntimeAsset) FileName() string {
	return filepath.Base(a.Path)
}
