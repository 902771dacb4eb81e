package bindgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDestPathMultiplatform(t *testing.T) {
	path := destPath("out", "counter", "com.example.counter", "jvm", true)
	want := filepath.Join("out", "jvmMain", "kotlin", "com", "example", "counter", "counter.jvm.kt")
	assert.Equal(t, want, path)
}

func TestDestPathSingleTarget(t *testing.T) {
	path := destPath("out", "counter", "com.example.counter", "common", false)
	want := filepath.Join("out", "main", "kotlin", "com", "example", "counter", "counter.common.kt")
	assert.Equal(t, want, path)
}

func TestDestPathDeterministic(t *testing.T) {
	first := destPath("out", "ns", "a.b.c", "native", true)
	for range 10 {
		assert.Equal(t, first, destPath("out", "ns", "a.b.c", "native", true))
	}
}

func TestCInteropPath(t *testing.T) {
	path := cinteropPath("out", "counter")
	want := filepath.Join("out", "nativeInterop", "cinterop", "headers", "counter", "counter.h")
	assert.Equal(t, want, path)
}

func TestSingleTargetVariantsDoNotCollide(t *testing.T) {
	outDir := t.TempDir()
	w := &Writer{OutDir: outDir}
	c := component("counter", &Config{PackageName: "com.example.counter"})

	files, err := w.WriteBundle(c, &Bundle{Common: "// common", Jvm: "// jvm"})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.NotEqual(t, files[0].Path, files[1].Path)

	// both land in the same main source set
	for _, f := range files {
		assert.Equal(t, filepath.Join(outDir, "main", "kotlin", "com", "example", "counter"), filepath.Dir(f.Path))
	}
}

func TestWriteBundleRoutesAllBlobs(t *testing.T) {
	outDir := t.TempDir()
	w := &Writer{OutDir: outDir}
	c := component("counter", &Config{
		PackageName:   "com.example.counter",
		Multiplatform: true,
		Targets:       []Target{TargetJvm, TargetNative},
	})

	files, err := w.WriteBundle(c, &Bundle{
		Common: "// common",
		Jvm:    "// jvm",
		Native: "// native",
		Header: "// header",
	})
	require.NoError(t, err)
	require.Len(t, files, 4)

	pkgDir := filepath.Join("kotlin", "com", "example", "counter")
	wantPaths := []string{
		filepath.Join(outDir, "commonMain", pkgDir, "counter.common.kt"),
		filepath.Join(outDir, "jvmMain", pkgDir, "counter.jvm.kt"),
		filepath.Join(outDir, "nativeMain", pkgDir, "counter.native.kt"),
		filepath.Join(outDir, "nativeInterop", "cinterop", "headers", "counter", "counter.h"),
	}
	for i, want := range wantPaths {
		assert.Equal(t, want, files[i].Path)
		content, err := os.ReadFile(want)
		require.NoError(t, err)
		assert.NotEmpty(t, content)
	}
}

func TestWriteOverwritesExisting(t *testing.T) {
	outDir := t.TempDir()
	w := &Writer{OutDir: outDir}
	c := component("counter", &Config{})

	_, err := w.WriteBundle(c, &Bundle{Common: "// old"})
	require.NoError(t, err)
	files, err := w.WriteBundle(c, &Bundle{Common: "// new"})
	require.NoError(t, err)

	content, err := os.ReadFile(files[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "// new", string(content))
}

func TestMissingFormatterIsNotFatal(t *testing.T) {
	outDir := t.TempDir()
	w := &Writer{OutDir: outDir, Formatter: "definitely-not-a-real-formatter"}
	c := component("counter", &Config{})

	files, err := w.WriteBundle(c, &Bundle{Common: "// content"})
	require.NoError(t, err)

	content, err := os.ReadFile(files[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "// content", string(content))
}

func TestFailingFormatterIsNotFatal(t *testing.T) {
	if _, err := os.Stat("/bin/false"); err != nil {
		t.Skip("/bin/false not available")
	}
	t.Setenv("FAKEFMT", "/bin/false")

	outDir := t.TempDir()
	w := &Writer{OutDir: outDir, Formatter: "fakefmt"}
	c := component("counter", &Config{})

	files, err := w.WriteBundle(c, &Bundle{Common: "// content"})
	require.NoError(t, err)

	content, err := os.ReadFile(files[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "// content", string(content))
}

func TestWrittenFileHashes(t *testing.T) {
	outDir := t.TempDir()
	w := &Writer{OutDir: outDir}
	c := component("counter", &Config{})

	files, err := w.WriteBundle(c, &Bundle{Common: "// content"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Len(t, files[0].Sha256, 64)
}
