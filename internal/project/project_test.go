package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "App")
	write(t, filepath.Join(dir, FileName), `
name: App
emitEntryPoint: true
generateXmlDoc: true
frameworks: [netcoreapp1.0, net451]
content:
  - wwwroot/**
  - appsettings.json
contentExclude:
  - "**/*.map"
`)
	write(t, filepath.Join(dir, "Program.cs"), "")
	write(t, filepath.Join(dir, "Models", "User.cs"), "")
	write(t, filepath.Join(dir, "obj", "Debug", "Generated.cs"), "")
	write(t, filepath.Join(dir, "appsettings.json"), "{}")
	write(t, filepath.Join(dir, "wwwroot", "css", "site.css"), "")
	write(t, filepath.Join(dir, "wwwroot", "css", "site.css.map"), "")

	p, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "App", p.Name)
	assert.Equal(t, dir, p.Directory)
	assert.Equal(t, filepath.Join(dir, FileName), p.ManifestPath)
	assert.True(t, p.EmitEntryPoint)
	assert.True(t, p.FileOptions().GenerateXMLDoc)
	assert.Equal(t, []string{"netcoreapp1.0", "net451"}, p.Frameworks)

	assert.Equal(t, []string{
		filepath.Join(dir, "Models", "User.cs"),
		filepath.Join(dir, "Program.cs"),
	}, p.SourceFiles)

	assert.Equal(t, []ContentFile{
		{Source: filepath.Join(dir, "appsettings.json"), Target: "appsettings.json"},
		{Source: filepath.Join(dir, "wwwroot", "css", "site.css"), Target: filepath.Join("wwwroot", "css", "site.css")},
	}, p.ContentFiles)
}

func TestLoad_NameDefaultsToDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Lib")
	write(t, filepath.Join(dir, FileName), "compile: ['src/*.cs']\n")
	write(t, filepath.Join(dir, "src", "A.cs"), "")
	write(t, filepath.Join(dir, "B.cs"), "")

	p, err := Load(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, "Lib", p.Name)
	assert.Equal(t, []string{filepath.Join(dir, "src", "A.cs")}, p.SourceFiles)
	assert.Empty(t, p.ContentFiles)
	assert.False(t, p.EmitEntryPoint)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing", FileName))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))

	write(t, filepath.Join(dir, "bad", FileName), "name: [unterminated\n")
	_, err = Load(filepath.Join(dir, "bad"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	write(t, filepath.Join(dir, "glob", FileName), "compile: ['src/[*.cs']\n")
	_, err = Load(filepath.Join(dir, "glob"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}
