// Package host locates the native host binary copied into hosted runnable
// outputs.
package host

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/runbuild/internal/framework"
)

// BinaryName is the host base name without platform suffix.
const BinaryName = "corehost"

// Provider resolves the host binary for an execution environment.
type Provider interface {
	HostFor(env framework.Descriptor) (string, error)
}

// DirProvider looks the host up in a directory, preferring a platform
// specific subdirectory: <Root>/<rid>/corehost[.exe], then <Root>/corehost[.exe].
type DirProvider struct {
	Root string
}

// NewDirProvider returns a provider rooted at dir.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{Root: dir}
}

func (p *DirProvider) HostFor(env framework.Descriptor) (string, error) {
	if p.Root == "" {
		return "", errors.ConfigError("host directory not configured").
			WithContext("env", env.String()).
			Build()
	}

	name := BinaryName + env.ExecutableSuffix()
	var candidates []string
	if env.HasRuntime() {
		candidates = append(candidates, filepath.Join(p.Root, env.RuntimeIdentifier, name))
	}
	candidates = append(candidates, filepath.Join(p.Root, name))

	for _, c := range candidates {
		info, err := os.Stat(c)
		if err == nil && info.Mode().IsRegular() {
			return c, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", errors.WrapError(err, errors.CategoryFileSystem, "stat host binary").
				WithContext("path", c).
				Build()
		}
	}
	return "", errors.NotFoundError("host binary not found").
		WithContext("env", env.String()).
		WithContext("candidates", candidates).
		Build()
}

// Static always returns the same path.
type Static string

func (s Static) HostFor(framework.Descriptor) (string, error) {
	if s == "" {
		return "", errors.ConfigError("host binary not configured").Build()
	}
	return string(s), nil
}
