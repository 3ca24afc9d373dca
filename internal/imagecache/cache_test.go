package imagecache

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-gallery/lumen/internal/logging"
)

func newTestCache(t *testing.T, maxEntries int) *Cache {
	t.Helper()
	return New(t.TempDir(), maxEntries, logging.NullLogger())
}

func TestLoadMiss(t *testing.T) {
	c := newTestCache(t, 5)

	data, ok := c.Load("https://example.com/missing.jpg")
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := newTestCache(t, 5)

	c.Save("https://example.com/a.jpg", []byte("payload-a"))

	data, ok := c.Load("https://example.com/a.jpg")
	require.True(t, ok)
	assert.Equal(t, []byte("payload-a"), data)
}

func TestOverwriteSameKey(t *testing.T) {
	c := newTestCache(t, 5)

	c.Save("https://example.com/a.jpg", []byte("first"))
	c.Save("https://example.com/a.jpg", []byte("second"))

	assert.Equal(t, 1, c.Len())

	data, ok := c.Load("https://example.com/a.jpg")
	require.True(t, ok)
	assert.Equal(t, []byte("second"), data)
}

func TestCapacityInvariant(t *testing.T) {
	const capacity = 4
	c := newTestCache(t, capacity)

	for i := 0; i < 20; i++ {
		c.Save(fmt.Sprintf("https://example.com/%d.jpg", i), []byte("x"))
		if i >= capacity {
			assert.Equal(t, capacity, c.Len(), "save %d exceeded capacity", i)
		}
	}
}

func TestEvictionOrderScenario(t *testing.T) {
	// Capacity 2: u1, u2 fill the cache, u3 evicts u1 as the oldest entry.
	c := newTestCache(t, 2)

	c.Save("u1", []byte("b1"))
	setMtime(t, c.path("u1"), time.Now().Add(-2*time.Hour))
	c.Save("u2", []byte("b2"))
	setMtime(t, c.path("u2"), time.Now().Add(-1*time.Hour))
	assert.Equal(t, 2, c.Len())

	c.Save("u3", []byte("b3"))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Load("u1")
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = c.Load("u2")
	assert.True(t, ok)
	_, ok = c.Load("u3")
	assert.True(t, ok)
}

func TestEvictsOldestModificationTime(t *testing.T) {
	c := newTestCache(t, 3)

	c.Save("a", []byte("a"))
	c.Save("b", []byte("b"))
	c.Save("c", []byte("c"))

	// Make "b" the oldest even though it was written second.
	setMtime(t, c.path("a"), time.Now().Add(-1*time.Hour))
	setMtime(t, c.path("b"), time.Now().Add(-3*time.Hour))
	setMtime(t, c.path("c"), time.Now().Add(-2*time.Hour))

	c.Save("d", []byte("d"))

	_, ok := c.Load("b")
	assert.False(t, ok, "entry with oldest mtime should be evicted")
	for _, key := range []string{"a", "c", "d"} {
		_, ok := c.Load(key)
		assert.True(t, ok, "entry %q should survive", key)
	}
}

func TestHiddenFilesIgnored(t *testing.T) {
	c := newTestCache(t, 2)
	c.Save("a", []byte("a"))

	// A hidden file must not count toward capacity or be evicted.
	hidden := filepath.Join(c.dir, ".DS_Store")
	require.NoError(t, os.WriteFile(hidden, []byte("junk"), 0644))

	c.Save("b", []byte("b"))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Load("a")
	assert.True(t, ok)
	_, err := os.Stat(hidden)
	assert.NoError(t, err, "hidden file must not be evicted")
}

func TestUnwritableDirectorySoftFails(t *testing.T) {
	// A file where the directory should be makes MkdirAll fail; the cache
	// must behave as permanently empty instead of erroring.
	base := t.TempDir()
	blocked := filepath.Join(base, "occupied")
	require.NoError(t, os.WriteFile(blocked, []byte("file"), 0644))

	c := New(filepath.Join(blocked, "cache"), 5, logging.NullLogger())
	c.Save("a", []byte("a"))

	data, ok := c.Load("a")
	assert.False(t, ok)
	assert.Nil(t, data)
	assert.Equal(t, 0, c.Len())
}

func setMtime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}
