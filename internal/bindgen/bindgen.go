package bindgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ktbind-build/ktbind/internal/msg"
)

// Bundle is the text a renderer produced for one component: the mandatory
// ABI-agnostic common blob, optional per-target specializations, an optional
// stub for unsupported platforms, and an optional C header for cinterop.
type Bundle struct {
	Common  string
	Jvm     string
	Android string
	Native  string
	Stub    string
	Header  string
}

// Renderer turns one component's interface description into binding text.
// The built-in Kotlin renderer lives in the kotlin subpackage; alternative
// template engines plug in here.
type Renderer interface {
	Render(cfg *Config, ci *ComponentInterface) (*Bundle, error)
}

type Bindgen struct {
	manifest *Manifest
	basedir  string

	Renderer           Renderer
	ForceMultiplatform bool
	Formatter          string // formatter command; empty disables formatting
	Jobs               int
}

// NewBindgenInDirectory loads the build manifest from the given directory (or
// manifest file path) and prepares a generation run.
func NewBindgenInDirectory(path string, renderer Renderer) (*Bindgen, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	manifestPath := path
	if stat, err := os.Stat(path); err == nil && stat.IsDir() {
		manifestPath = filepath.Join(path, ManifestFilename)
	}

	m, err := ParseManifestFromFile(manifestPath)
	if err != nil {
		return nil, err
	}

	return &Bindgen{
		manifest: m,
		basedir:  filepath.Dir(manifestPath),
		Renderer: renderer,
		Jobs:     runtime.NumCPU(),
	}, nil
}

// SetOutDir overrides the manifest's output directory (CLI flag wins).
func (b *Bindgen) SetOutDir(dir string) { b.manifest.OutDir = dir }

// SetCdylib overrides the manifest's build-wide native artifact name.
func (b *Bindgen) SetCdylib(name string) { b.manifest.Cdylib = name }

// OutDir returns the resolved output directory of this run.
func (b *Bindgen) OutDir() string {
	if filepath.IsAbs(b.manifest.OutDir) {
		return b.manifest.OutDir
	}
	return filepath.Join(b.basedir, b.manifest.OutDir)
}

// Generate runs the whole pipeline: load components, resolve configs, link
// cross-component package names, then render and write every component.
func (b *Bindgen) Generate(ctx context.Context) error {
	components, err := loadComponents(b.manifest, b.basedir, b.ForceMultiplatform)
	if err != nil {
		return err
	}

	UpdateComponentConfigs(components, b.manifest.Cdylib)

	if err := b.WriteBindings(ctx, components); err != nil {
		return err
	}

	msg.Step("Generated", "bindings for %d component(s) in %s", len(components), b.OutDir())
	return nil
}

// WriteBindings renders and writes all components. Components are independent
// once linking is done (they share only frozen configs), so they are dispatched
// in parallel; a failure on any component aborts the run.
func (b *Bindgen) WriteBindings(ctx context.Context, components []*Component) error {
	outDir := b.OutDir()
	writer := &Writer{OutDir: outDir, Formatter: b.Formatter}
	state := NewRunState()

	jobs := b.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)

	for _, c := range components {
		eg.Go(func() error {
			// skip components queued after cancellation or a sibling failure
			if err := ctx.Err(); err != nil {
				return err
			}

			bundle, err := b.Renderer.Render(c.Config, c.CI)
			if err != nil {
				return fmt.Errorf("failed to generate bindings for namespace %q: %w", c.CI.Namespace, err)
			}

			files, err := writer.WriteBundle(c, bundle)
			if err != nil {
				return fmt.Errorf("failed to write bindings for namespace %q: %w", c.CI.Namespace, err)
			}

			state.Record(c.CI.Namespace, files)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	// the state file is advisory; failing to write it never fails the run
	if err := state.Save(outDir); err != nil {
		msg.Warn("could not write %s: %v", StateFilename, err)
	}
	return nil
}
