package materialize

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/cases"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/runbuild/internal/lockfile"
)

// BaseConfigName is the project-level manifest merged into legacy outputs.
// It is matched case-insensitively.
const BaseConfigName = "app.config"

const asmV1Namespace = "urn:schemas-microsoft-com:asm.v1"

// Redirect binds every version of an assembly up to NewVersion to NewVersion.
type Redirect struct {
	Name           string
	PublicKeyToken string
	OldVersion     string
	NewVersion     string
}

// fold returns the case-folded form used to compare assembly and file names.
// A Caser is stateful, so a fresh one is used per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// ComputeRedirects returns one redirect per assembly name that resolves to
// more than one version across exports, targeting the highest version.
// Results are sorted by name.
func ComputeRedirects(exports []lockfile.DependencyExport) []Redirect {
	type seen struct {
		name     string
		token    string
		highest  string
		versions map[string]struct{}
	}
	byName := make(map[string]*seen)
	var order []string

	for _, export := range exports {
		for _, asset := range export.RuntimeAssets {
			ver := assetVersion(asset, export)
			if ver == "" {
				continue
			}
			key := fold(asset.Name())
			s, ok := byName[key]
			if !ok {
				s = &seen{name: asset.Name(), versions: make(map[string]struct{})}
				byName[key] = s
				order = append(order, key)
			}
			s.versions[ver] = struct{}{}
			if s.highest == "" || compareVersions(ver, s.highest) > 0 {
				s.highest = ver
				s.token = asset.PublicKeyToken
			}
		}
	}

	sort.Strings(order)
	var redirects []Redirect
	for _, key := range order {
		s := byName[key]
		if len(s.versions) < 2 {
			continue
		}
		redirects = append(redirects, Redirect{
			Name:           s.name,
			PublicKeyToken: s.token,
			OldVersion:     "0.0.0.0-" + s.highest,
			NewVersion:     s.highest,
		})
	}
	return redirects
}

// assetVersion is the asset's assembly version, falling back to the library
// version padded to four components.
func assetVersion(asset lockfile.RuntimeAsset, export lockfile.DependencyExport) string {
	if asset.AssemblyVersion != "" {
		return asset.AssemblyVersion
	}
	v := export.Version
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	if v == "" {
		return ""
	}
	parts := strings.Split(v, ".")
	for len(parts) < 4 {
		parts = append(parts, "0")
	}
	return strings.Join(parts, ".")
}

// highestAssets returns one asset per output file name, keeping the highest
// assembly version so the copied binary is the one redirects bind to. Names
// keep the order of their first occurrence.
func highestAssets(exports []lockfile.DependencyExport) []lockfile.RuntimeAsset {
	type pick struct {
		asset   lockfile.RuntimeAsset
		version string
	}
	byFile := make(map[string]*pick)
	var order []string

	for _, export := range exports {
		for _, asset := range export.RuntimeAssets {
			ver := assetVersion(asset, export)
			key := fold(asset.FileName())
			p, ok := byFile[key]
			if !ok {
				byFile[key] = &pick{asset: asset, version: ver}
				order = append(order, key)
				continue
			}
			if compareVersions(ver, p.version) > 0 {
				p.asset, p.version = asset, ver
			}
		}
	}

	assets := make([]lockfile.RuntimeAsset, 0, len(order))
	for _, key := range order {
		assets = append(assets, byFile[key].asset)
	}
	return assets
}

// compareVersions compares dotted versions numerically component by component.
// Non-numeric components compare lexically.
func compareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		x, y := "0", "0"
		if i < len(as) {
			x = as[i]
		}
		if i < len(bs) {
			y = bs[i]
		}
		xi, errX := strconv.Atoi(x)
		yi, errY := strconv.Atoi(y)
		switch {
		case errX == nil && errY == nil:
			if xi != yi {
				if xi < yi {
					return -1
				}
				return 1
			}
		case x != y:
			return strings.Compare(x, y)
		}
	}
	return 0
}

// loadBaseConfig reads the project's app.config, or returns nil when there is none.
func loadBaseConfig(projectDir string) (*etree.Document, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.FileSystemError("list project directory").
			WithCause(err).
			WithContext("path", projectDir).
			Build()
	}

	want := fold(BaseConfigName)
	for _, e := range entries {
		if e.IsDir() || fold(e.Name()) != want {
			continue
		}
		path := filepath.Join(projectDir, e.Name())
		doc := etree.NewDocument()
		if err := doc.ReadFromFile(path); err != nil {
			return nil, errors.ValidationError("invalid base application manifest").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
		return doc, nil
	}
	return nil, nil
}

// MergeRedirects merges redirects into base as dependentAssembly entries under
// configuration/runtime/assemblyBinding. Existing entries for the same
// assembly are replaced; everything else in base is kept as is. base is
// modified in place. It returns nil when there is neither a base nor a
// redirect.
func MergeRedirects(base *etree.Document, redirects []Redirect) *etree.Document {
	if base == nil && len(redirects) == 0 {
		return nil
	}
	doc := base
	if doc == nil {
		doc = etree.NewDocument()
		doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	}

	root := doc.SelectElement("configuration")
	if root == nil {
		root = doc.CreateElement("configuration")
	}
	if len(redirects) == 0 {
		return doc
	}

	runtimeEl := root.SelectElement("runtime")
	if runtimeEl == nil {
		runtimeEl = root.CreateElement("runtime")
	}
	binding := runtimeEl.SelectElement("assemblyBinding")
	if binding == nil {
		binding = runtimeEl.CreateElement("assemblyBinding")
		binding.CreateAttr("xmlns", asmV1Namespace)
	}

	for _, r := range redirects {
		dep := findDependentAssembly(binding, r.Name)
		if dep == nil {
			dep = binding.CreateElement("dependentAssembly")
			identity := dep.CreateElement("assemblyIdentity")
			identity.CreateAttr("name", r.Name)
			if r.PublicKeyToken != "" {
				identity.CreateAttr("publicKeyToken", r.PublicKeyToken)
			}
			identity.CreateAttr("culture", "neutral")
		}
		for _, old := range dep.SelectElements("bindingRedirect") {
			dep.RemoveChild(old)
		}
		redirect := dep.CreateElement("bindingRedirect")
		redirect.CreateAttr("oldVersion", r.OldVersion)
		redirect.CreateAttr("newVersion", r.NewVersion)
	}
	return doc
}

func findDependentAssembly(binding *etree.Element, name string) *etree.Element {
	want := fold(name)
	for _, dep := range binding.SelectElements("dependentAssembly") {
		identity := dep.SelectElement("assemblyIdentity")
		if identity != nil && fold(identity.SelectAttrValue("name", "")) == want {
			return dep
		}
	}
	return nil
}
