package bindgen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ktbind-build/ktbind/internal/msg"
)

// Writer lays generated binding text out on disk following the Kotlin
// source-set conventions.
type Writer struct {
	OutDir    string
	Formatter string // formatter command name; empty disables formatting
}

// WrittenFile records one file the writer produced.
type WrittenFile struct {
	Path   string
	Sha256 string
}

// WriteBundle routes every present blob of the bundle to its destination.
// Kotlin sources go through writeTarget; the cinterop header has its own tree.
func (w *Writer) WriteBundle(c *Component, bundle *Bundle) ([]WrittenFile, error) {
	var files []WrittenFile

	write := func(target, content string) error {
		wf, err := w.writeTarget(c, target, content)
		if err != nil {
			return err
		}
		files = append(files, wf)
		return nil
	}

	if err := write("common", bundle.Common); err != nil {
		return files, err
	}
	for _, blob := range []struct {
		target  string
		content string
	}{
		{"jvm", bundle.Jvm},
		{"android", bundle.Android},
		{"native", bundle.Native},
		{"stub", bundle.Stub},
	} {
		if blob.content == "" {
			continue
		}
		if err := write(blob.target, blob.content); err != nil {
			return files, err
		}
	}

	if bundle.Header != "" {
		wf, err := w.writeCInterop(c.CI.Namespace, bundle.Header)
		if err != nil {
			return files, err
		}
		files = append(files, wf)
	}

	return files, nil
}

// destPath computes the destination of one (component, target) source file:
// `<outDir>/<target>Main|main/kotlin/<package dirs>/<namespace>.<target>.kt`.
// In single-target mode all targets collapse into the `main` source set; the
// target suffix in the file name keeps them from colliding there.
func destPath(outDir, namespace, pkg, target string, multiplatform bool) string {
	sourceSet := "main"
	if multiplatform {
		sourceSet = target + "Main"
	}

	elems := []string{outDir, sourceSet, "kotlin"}
	elems = append(elems, strings.Split(pkg, ".")...)
	elems = append(elems, namespace+"."+target+".kt")
	return filepath.Join(elems...)
}

// cinteropPath computes the destination of the native-interop header, keyed by
// namespace only: `<outDir>/nativeInterop/cinterop/headers/<ns>/<ns>.h`.
func cinteropPath(outDir, namespace string) string {
	return filepath.Join(outDir, "nativeInterop", "cinterop", "headers", namespace, namespace+".h")
}

func (w *Writer) writeTarget(c *Component, target, content string) (WrittenFile, error) {
	pkg := c.Config.EffectivePackage(c.CI.Namespace)
	path := destPath(w.OutDir, c.CI.Namespace, pkg, target, c.Config.Multiplatform)

	wf, err := writeFile(path, content)
	if err != nil {
		return wf, err
	}

	if w.Formatter != "" {
		formatFile(w.Formatter, path)
	}
	return wf, nil
}

func (w *Writer) writeCInterop(namespace, content string) (WrittenFile, error) {
	return writeFile(cinteropPath(w.OutDir, namespace), content)
}

// writeFile creates missing parent directories (succeeding if they already
// exist, even concurrently) and fully overwrites the destination.
func writeFile(path, content string) (WrittenFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return WrittenFile{}, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return WrittenFile{}, fmt.Errorf("failed to write %s: %w", path, err)
	}

	sum := sha256.Sum256([]byte(content))
	return WrittenFile{Path: path, Sha256: hex.EncodeToString(sum[:])}, nil
}

// formatFile runs the external formatter on one written file. Formatting is
// cosmetic: a missing executable or a non-zero exit is a warning, never an
// error for the run.
func formatFile(formatter, path string) {
	bin := findFormatter(formatter)
	if bin == "" {
		msg.Warn("formatter %q not found in PATH, skipping %s", formatter, filepath.Base(path))
		return
	}

	var args []string
	if formatter == "ktlint" {
		args = []string{"-F", path}
	} else {
		args = []string{path}
	}

	if out, err := exec.Command(bin, args...).CombinedOutput(); err != nil {
		msg.Warn("unable to auto-format %s using %s: %v", filepath.Base(path), formatter, err)
		if trimmed := strings.TrimSpace(string(out)); trimmed != "" {
			iw := &msg.IndentWriter{Indent: "    ", W: os.Stdout}
			fmt.Fprintln(iw, trimmed)
		}
	}
}

// findFormatter resolves a formatter command, honoring an environment override
// (e.g. KTLINT=/opt/ktlint/bin/ktlint) before falling back to PATH lookup.
func findFormatter(name string) string {
	if override := os.Getenv(strings.ToUpper(name)); override != "" {
		return override
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return ""
	}
	return path
}
