package bindgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest(strings.NewReader(`
out_dir: generated
cdylib: combined
components:
  - metadata: crates/counter/ktbind.json
  - metadata: crates/todolist/ktbind.json
    config: configs/todolist.toml
`))
	require.NoError(t, err)

	assert.Equal(t, "generated", m.OutDir)
	assert.Equal(t, "combined", m.Cdylib)
	require.Len(t, m.Components, 2)
	assert.Equal(t, "configs/todolist.toml", m.Components[1].Config)
}

func TestParseManifestDefaultsOutDir(t *testing.T) {
	m, err := ParseManifest(strings.NewReader(`
components:
  - metadata: ktbind.json
`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("build", "generated"), m.OutDir)
}

func TestParseManifestRejectsEmpty(t *testing.T) {
	_, err := ParseManifest(strings.NewReader(`out_dir: generated`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no components")
}

func TestResolveMetadataGlob(t *testing.T) {
	root := t.TempDir()
	writeTestComponent(t, filepath.Join(root, "crates", "alpha"), "alpha", "")
	writeTestComponent(t, filepath.Join(root, "crates", "beta"), "beta", "")

	paths, err := resolveMetadataPaths(ComponentSpec{Metadata: "crates/**/ktbind.json"}, root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "crates", "alpha", MetadataFilename),
		filepath.Join(root, "crates", "beta", MetadataFilename),
	}, paths)
}

func TestResolveMetadataNoMatches(t *testing.T) {
	_, err := resolveMetadataPaths(ComponentSpec{Metadata: "nowhere/**/ktbind.json"}, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matched no files")
}

func TestLoadComponentsReadsConfigNextToMetadata(t *testing.T) {
	root := t.TempDir()
	writeTestComponent(t, filepath.Join(root, "counter"), "counter", `
[bindings.kotlin]
package_name = "com.example.counter"
`)

	m := &Manifest{Components: []ComponentSpec{{Metadata: "counter/ktbind.json"}}}
	components, err := loadComponents(m, root, false)
	require.NoError(t, err)
	require.Len(t, components, 1)
	assert.Equal(t, "com.example.counter", components[0].Config.PackageName)
	assert.Equal(t, filepath.Join(root, "counter"), components[0].Dir)
}

func TestLoadComponentsBadMetadata(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "broken")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFilename), []byte(`{"crate_name": "x"}`), 0o644))

	m := &Manifest{Components: []ComponentSpec{{Metadata: "broken/ktbind.json"}}}
	_, err := loadComponents(m, root, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "namespace")
}
