package materialize

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/runbuild/internal/lockfile"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0.0", "2.0.0.0", -1},
		{"10.0.0.0", "9.0.0.0", 1},
		{"1.2", "1.2.0.0", 0},
		{"4.0.10.0", "4.0.9.0", 1},
		{"1.0.0.0", "1.0.0.0", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, compareVersions(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func asset(name, version string) lockfile.DependencyExport {
	return lockfile.DependencyExport{
		Identity:      lockfile.Identity{Name: name, Version: version, Kind: lockfile.KindPackage},
		RuntimeAssets: []lockfile.RuntimeAsset{{Path: "/pkg/" + name + "/" + version + "/" + name + ".dll"}},
	}
}

func TestComputeRedirects(t *testing.T) {
	redirects := ComputeRedirects([]lockfile.DependencyExport{
		asset("Zeta", "1.0.0"),
		asset("Alpha", "2.0.0"),
		asset("alpha", "10.0.0"),
		asset("Zeta", "1.0.0"),
		asset("Single", "3.0.0"),
	})

	require.Len(t, redirects, 1)
	assert.Equal(t, "Alpha", redirects[0].Name)
	assert.Equal(t, "0.0.0.0-10.0.0.0", redirects[0].OldVersion)
	assert.Equal(t, "10.0.0.0", redirects[0].NewVersion)
}

func TestHighestAssets(t *testing.T) {
	assets := highestAssets([]lockfile.DependencyExport{
		asset("Alpha", "2.0.0"),
		asset("Zeta", "1.0.0"),
		asset("alpha", "10.0.0"),
		asset("Alpha", "1.0.0"),
	})

	require.Len(t, assets, 2)
	assert.Equal(t, "/pkg/alpha/10.0.0/alpha.dll", assets[0].Path)
	assert.Equal(t, "/pkg/Zeta/1.0.0/Zeta.dll", assets[1].Path)
}

func TestMergeRedirects(t *testing.T) {
	assert.Nil(t, MergeRedirects(nil, nil))

	base := etree.NewDocument()
	require.NoError(t, base.ReadFromString(`<configuration>
  <runtime>
    <assemblyBinding xmlns="urn:schemas-microsoft-com:asm.v1">
      <dependentAssembly>
        <assemblyIdentity name="shared" publicKeyToken="aa"/>
        <bindingRedirect oldVersion="0.0.0.0-1.0.0.0" newVersion="1.0.0.0"/>
      </dependentAssembly>
      <dependentAssembly>
        <assemblyIdentity name="Untouched"/>
        <bindingRedirect oldVersion="0.0.0.0-5.0.0.0" newVersion="5.0.0.0"/>
      </dependentAssembly>
    </assemblyBinding>
  </runtime>
</configuration>`))

	doc := MergeRedirects(base, []Redirect{
		{Name: "Shared", OldVersion: "0.0.0.0-2.0.0.0", NewVersion: "2.0.0.0"},
		{Name: "New", PublicKeyToken: "bb", OldVersion: "0.0.0.0-3.0.0.0", NewVersion: "3.0.0.0"},
	})
	require.NotNil(t, doc)

	deps := doc.FindElements("//dependentAssembly")
	require.Len(t, deps, 3)

	shared := deps[0]
	redirects := shared.SelectElements("bindingRedirect")
	require.Len(t, redirects, 1)
	assert.Equal(t, "2.0.0.0", redirects[0].SelectAttrValue("newVersion", ""))

	assert.Equal(t, "5.0.0.0", deps[1].SelectElement("bindingRedirect").SelectAttrValue("newVersion", ""))

	identity := deps[2].SelectElement("assemblyIdentity")
	assert.Equal(t, "New", identity.SelectAttrValue("name", ""))
	assert.Equal(t, "bb", identity.SelectAttrValue("publicKeyToken", ""))
}

func TestMergeRedirects_NewDocument(t *testing.T) {
	doc := MergeRedirects(nil, []Redirect{{Name: "A", OldVersion: "0.0.0.0-2.0.0.0", NewVersion: "2.0.0.0"}})
	require.NotNil(t, doc)
	out, err := doc.WriteToString()
	require.NoError(t, err)
	assert.Contains(t, out, `<?xml version="1.0" encoding="utf-8"?>`)
	assert.NotNil(t, doc.FindElement("/configuration/runtime/assemblyBinding/dependentAssembly/bindingRedirect"))
}
