package lockfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

const sampleSnapshot = `{
  "version": 1,
  "libraries": [
    {
      "name": "Newtonsoft.Json",
      "version": "9.0.1",
      "type": "package",
      "path": "newtonsoft.json/9.0.1",
      "runtime": [
        {"path": "lib/net45/Newtonsoft.Json.dll", "assemblyVersion": "9.0.0.0", "publicKeyToken": "30ad4fe6b2a6aeed"}
      ]
    },
    {
      "name": "Lib",
      "version": "1.0.0",
      "type": "project",
      "runtime": [{"path": "../Lib/bin/Debug/net451/Lib.dll"}]
    },
    {
      "name": "System.Xml",
      "version": "4.0.0.0",
      "type": "reference"
    }
  ]
}`

func TestHandle(t *testing.T) {
	dir := t.TempDir()
	h := ForProject(dir)
	assert.Equal(t, filepath.Join(dir, FileName), h.Path)

	exists, err := h.Exists()
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = h.ModTime()
	require.Error(t, err)

	require.NoError(t, os.WriteFile(h.Path, []byte("{}"), 0o600))
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(h.Path, stamp, stamp))

	exists, err = h.Exists()
	require.NoError(t, err)
	assert.True(t, exists)

	mt, err := h.ModTime()
	require.NoError(t, err)
	assert.True(t, mt.Equal(stamp))
}

func TestReadExports(t *testing.T) {
	dir := t.TempDir()
	projectDir := filepath.Join(dir, "App")
	require.NoError(t, os.MkdirAll(projectDir, 0o750))
	h := ForProject(projectDir)
	require.NoError(t, os.WriteFile(h.Path, []byte(sampleSnapshot), 0o600))

	packages := filepath.Join(dir, "packages")
	exports, err := ReadExports(h, Roots{Packages: packages})
	require.NoError(t, err)
	require.Len(t, exports, 3)

	pkg := exports[0]
	assert.Equal(t, Identity{Name: "Newtonsoft.Json", Version: "9.0.1", Kind: KindPackage}, pkg.Identity)
	require.Len(t, pkg.RuntimeAssets, 1)
	asset := pkg.RuntimeAssets[0]
	assert.Equal(t, filepath.Join(packages, "newtonsoft.json", "9.0.1", "lib", "net45", "Newtonsoft.Json.dll"), asset.Path)
	assert.Equal(t, "lib/net45/Newtonsoft.Json.dll", asset.RelativePath)
	assert.Equal(t, "Newtonsoft.Json", asset.Name())
	assert.Equal(t, "Newtonsoft.Json.dll", asset.FileName())
	assert.Equal(t, "30ad4fe6b2a6aeed", asset.PublicKeyToken)

	proj := exports[1]
	assert.Equal(t, KindProject, proj.Kind)
	assert.Equal(t, filepath.Join(dir, "Lib", "bin", "Debug", "net451", "Lib.dll"), proj.RuntimeAssets[0].Path)

	assert.Equal(t, KindEnvironment, exports[2].Kind)
	assert.Empty(t, exports[2].RuntimeAssets)

	assert.Len(t, OfKind(exports, KindPackage), 1)
	assert.Len(t, OfKind(exports, KindProject), 1)
}

func TestReadExportsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadExports(NewHandle(filepath.Join(dir, "missing.json")), Roots{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
	_, err = ReadExports(NewHandle(bad), Roots{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryLockFile))

	unknown := filepath.Join(dir, "unknown.json")
	require.NoError(t, os.WriteFile(unknown, []byte(`{"libraries":[{"name":"X","type":"alien"}]}`), 0o600))
	_, err = ReadExports(NewHandle(unknown), Roots{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryLockFile))
}
