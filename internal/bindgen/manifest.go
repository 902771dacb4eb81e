package bindgen

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// ManifestFilename is the build manifest read from the build root. It lists
// the components of one multi-component build and build-wide settings.
const ManifestFilename = "ktbind.yaml"

type Manifest struct {
	// OutDir is where the generated source tree goes, relative to the build
	// root unless absolute. Defaults to build/generated.
	OutDir string `yaml:"out_dir"`
	// Cdylib, when set, is the build-wide native artifact name used for every
	// component that does not name its own.
	Cdylib     string          `yaml:"cdylib"`
	Components []ComponentSpec `yaml:"components"`
}

// ComponentSpec names one component's interface metadata: a local path, a
// doublestar glob matching several metadata files, or a remote source
// (`gh:owner/repo`, `git:https://...`) fetched into the component cache.
type ComponentSpec struct {
	Metadata string `yaml:"metadata"`
	// Config optionally points at the component's TOML config; defaults to
	// uniffi.toml next to the metadata file.
	Config string `yaml:"config,omitempty"`
}

func ParseManifest(rdr io.Reader) (*Manifest, error) {
	m := new(Manifest)
	if err := yaml.NewDecoder(bufio.NewReader(rdr)).Decode(m); err != nil {
		return nil, err
	}
	if m.OutDir == "" {
		m.OutDir = filepath.Join("build", "generated")
	}
	if len(m.Components) == 0 {
		return nil, fmt.Errorf("manifest lists no components")
	}
	return m, nil
}

func ParseManifestFromFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ParseManifest(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return m, nil
}

// resolveMetadataPaths expands one component spec into the metadata files it
// names. Remote sources are fetched first; local entries are globbed relative
// to the build root, absolute paths are taken verbatim.
func resolveMetadataPaths(spec ComponentSpec, basedir string) ([]string, error) {
	if isRemoteSource(spec.Metadata) {
		dir, err := fetchComponent(spec.Metadata)
		if err != nil {
			return nil, err
		}
		return []string{filepath.Join(dir, MetadataFilename)}, nil
	}

	if filepath.IsAbs(spec.Metadata) {
		return []string{filepath.Clean(spec.Metadata)}, nil
	}

	matches, err := doublestar.Glob(os.DirFS(basedir), filepath.ToSlash(spec.Metadata), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("bad metadata pattern %q: %w", spec.Metadata, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("metadata pattern %q matched no files", spec.Metadata)
	}

	paths := make([]string, len(matches))
	for i, match := range matches {
		paths[i] = filepath.Join(basedir, match)
	}
	return paths, nil
}

// loadComponents resolves every manifest entry into a Component with a parsed
// interface description and a resolved (but not yet linked) config.
func loadComponents(m *Manifest, basedir string, forceMultiplatform bool) ([]*Component, error) {
	var components []*Component

	for _, spec := range m.Components {
		paths, err := resolveMetadataPaths(spec, basedir)
		if err != nil {
			return nil, err
		}

		for _, metadataPath := range paths {
			ci, err := LoadComponentInterface(metadataPath)
			if err != nil {
				return nil, err
			}

			dir := filepath.Dir(metadataPath)
			configPath := filepath.Join(dir, ConfigFilename)
			if spec.Config != "" {
				configPath = spec.Config
				if !filepath.IsAbs(configPath) {
					configPath = filepath.Join(basedir, configPath)
				}
			}

			env := NewGenEnv(dir, ci)
			raw, err := ParseRawConfigFile(configPath, env)
			if err != nil {
				return nil, fmt.Errorf("component %q: %w", ci.Namespace, err)
			}
			cfg, err := NewConfig(raw, forceMultiplatform)
			if err != nil {
				return nil, fmt.Errorf("component %q: %w", ci.Namespace, err)
			}

			components = append(components, &Component{CI: ci, Config: cfg, Dir: dir})
		}
	}

	return components, nil
}
