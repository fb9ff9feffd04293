package materialize

import (
	"encoding/json"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/runbuild/internal/framework"
	"git.home.luguber.info/inful/runbuild/internal/lockfile"
)

// DepsFile is the dependency manifest hosted targets load at startup.
type DepsFile struct {
	RuntimeTarget string        `json:"runtimeTarget"`
	Libraries     []DepsLibrary `json:"libraries"`
}

// DepsLibrary is one package-kind dependency with its runtime asset paths
// relative to the package root.
type DepsLibrary struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Type    string   `json:"type"`
	Assets  []string `json:"assets"`
}

// DepsManifest renders the deps manifest listing every package-kind export
// in export order.
func DepsManifest(env framework.Descriptor, exports []lockfile.DependencyExport) ([]byte, error) {
	deps := DepsFile{RuntimeTarget: env.String(), Libraries: []DepsLibrary{}}
	for _, export := range lockfile.OfKind(exports, lockfile.KindPackage) {
		lib := DepsLibrary{
			Name:    export.Name,
			Version: export.Version,
			Type:    string(export.Kind),
			Assets:  []string{},
		}
		for _, asset := range export.RuntimeAssets {
			lib.Assets = append(lib.Assets, asset.RelativePath)
		}
		deps.Libraries = append(deps.Libraries, lib)
	}

	data, err := json.MarshalIndent(deps, "", "  ")
	if err != nil {
		return nil, errors.InternalError("encode deps manifest").WithCause(err).Build()
	}
	return append(data, '\n'), nil
}
