// Package cache tracks remote component sources that were fetched into the
// user cache directory, so repeated generation runs do not re-clone them.
package cache

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
)

const IndexFilename = "ktbind_cache.json"

type Cache struct {
	// on windows: %LocalAppData%/ktbind/components
	// on linux: ~/.cache/ktbind/components
	basePath string
	// component source URL -> directory relative to basePath
	Entries map[string]string
}

// DefaultDir returns the default cache root for fetched components.
func DefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "ktbind", "components"), nil
}

func Parse(rdr io.Reader, basePath string) (*Cache, error) {
	var entries map[string]string
	if err := json.NewDecoder(bufio.NewReader(rdr)).Decode(&entries); err != nil {
		return nil, err
	}
	return &Cache{basePath: basePath, Entries: entries}, nil
}

// Load opens the cache rooted at basePath, creating it if needed. A missing
// index file yields an empty cache.
func Load(basePath string) (*Cache, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(basePath, IndexFilename))
	if errors.Is(err, os.ErrNotExist) {
		return &Cache{basePath: basePath, Entries: map[string]string{}}, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(bufio.NewReader(f), basePath)
}

func (c *Cache) Save() error {
	f, err := os.Create(filepath.Join(c.basePath, IndexFilename))
	if err != nil {
		return err
	}
	defer f.Close()

	bufw := bufio.NewWriter(f)
	defer bufw.Flush()

	enc := json.NewEncoder(bufw)
	enc.SetIndent("", "  ")
	return enc.Encode(c.Entries)
}

func (c *Cache) BasePath() string { return c.basePath }

// Dir returns the absolute directory a source was fetched into, if the entry
// exists and the directory is still present on disk.
func (c *Cache) Dir(source string) (string, bool) {
	rel, ok := c.Entries[source]
	if !ok {
		return "", false
	}
	dir := filepath.Join(c.basePath, rel)
	if stat, err := os.Stat(dir); err != nil || !stat.IsDir() {
		return "", false
	}
	return dir, true
}

func (c *Cache) Set(source, rel string) {
	if c.Entries == nil {
		c.Entries = make(map[string]string)
	}
	c.Entries[source] = rel
}

// Clean removes the whole cache directory, index included.
func Clean(basePath string) error {
	return os.RemoveAll(basePath)
}
