// Package imagecache is a bounded, disk-backed cache for transient image
// bytes. Entries are content-addressed by a hash of the source URL and
// evicted one at a time, oldest modification first, once the directory is at
// capacity. A cache directory that cannot be created degrades to a
// permanently empty cache rather than an error.
package imagecache

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultMaxEntries is the steady-state capacity of the cache.
const DefaultMaxEntries = 20

// Cache is a disk-backed LRU-ish cache keyed by hashed source URL.
type Cache struct {
	dir        string
	maxEntries int
	logger     *slog.Logger
}

// New creates a cache rooted at dir holding at most maxEntries files.
// A non-positive maxEntries falls back to DefaultMaxEntries.
func New(dir string, maxEntries int, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{dir: dir, maxEntries: maxEntries, logger: logger}
}

// hashKey maps an arbitrary source string to a fixed-length, filesystem-safe
// name. The digest is not reversible and does not need to be.
func hashKey(sourceURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return hex.EncodeToString(sum[:])
}

// ensureDir creates the cache directory if absent. Failures are swallowed:
// the cache then behaves as permanently empty.
func (c *Cache) ensureDir() bool {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		c.logger.Warn("cache directory unavailable", "dir", c.dir, "error", err)
		return false
	}
	return true
}

func (c *Cache) path(sourceURL string) string {
	return filepath.Join(c.dir, hashKey(sourceURL))
}

// Load returns the cached bytes for sourceURL. A miss is not an error.
func (c *Cache) Load(sourceURL string) ([]byte, bool) {
	if !c.ensureDir() {
		return nil, false
	}
	data, err := os.ReadFile(c.path(sourceURL))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Save writes data under sourceURL's hashed name, evicting the single oldest
// entry first when the cache is at capacity. Saving the same URL twice
// overwrites the same entry.
func (c *Cache) Save(sourceURL string, data []byte) {
	if !c.ensureDir() {
		return
	}

	c.enforceLimit()

	if err := os.WriteFile(c.path(sourceURL), data, 0644); err != nil {
		c.logger.Warn("cache write failed", "key", sourceURL, "error", err)
	}
}

// enforceLimit deletes exactly one entry, the one with the oldest
// modification time, when the entry count has reached capacity. An entry
// whose timestamp cannot be read sorts before every readable entry.
func (c *Cache) enforceLimit() {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}

	type candidate struct {
		name  string
		mtime time.Time
	}
	var files []candidate
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		var mtime time.Time // zero time when unreadable, so it evicts first
		if info, err := e.Info(); err == nil {
			mtime = info.ModTime()
		}
		files = append(files, candidate{name: e.Name(), mtime: mtime})
	}

	if len(files) < c.maxEntries {
		return
	}

	oldest := files[0]
	for _, f := range files[1:] {
		if f.mtime.Before(oldest.mtime) {
			oldest = f
		}
	}

	if err := os.Remove(filepath.Join(c.dir, oldest.name)); err != nil {
		c.logger.Warn("cache eviction failed", "entry", oldest.name, "error", err)
	}
}

// Len reports the number of entries currently on disk.
func (c *Cache) Len() int {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		n++
	}
	return n
}
