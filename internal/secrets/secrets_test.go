package secrets

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-gallery/lumen/internal/logging"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(t.TempDir(), logging.NullLogger())
}

func TestSaveGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.True(t, s.Save("unsplash_api_key", "tok-123"))

	got, ok := s.Get("unsplash_api_key")
	require.True(t, ok)
	assert.Equal(t, "tok-123", got)
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)

	got, ok := s.Get("nope")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestDeleteMissingKeySucceeds(t *testing.T) {
	s := newTestStore(t)

	assert.True(t, s.Delete("never-stored"))

	require.True(t, s.Save("k", "v"))
	assert.True(t, s.Delete("k"))
	assert.False(t, s.Exists("k"))
}

func TestUpdateCreatesWhenAbsent(t *testing.T) {
	s := newTestStore(t)

	require.True(t, s.Update("k", "v1"))
	require.True(t, s.Update("k", "v2"))

	got, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", got)
}

func TestUnsafeKeysAreHashed(t *testing.T) {
	s := newTestStore(t)

	key := "password:al/ice@example"
	require.True(t, s.Save(key, "hunter2"))

	got, ok := s.Get(key)
	require.True(t, ok)
	assert.Equal(t, "hunter2", got)

	// The raw key must not appear as a file name.
	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "al/ice")
	}
}

func TestTrimsTrailingWhitespace(t *testing.T) {
	s := newTestStore(t)
	require.True(t, s.Save("k", "value\n"))

	got, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestResolveCredentialEnvOverride(t *testing.T) {
	s := newTestStore(t)
	require.True(t, s.Save("unsplash_api_key", "from-store"))

	t.Setenv("LUMEN_API_KEY", "from-env")
	got, ok := ResolveCredential(s, "unsplash_api_key")
	require.True(t, ok)
	assert.Equal(t, "from-env", got)

	t.Setenv("LUMEN_API_KEY", "")
	got, ok = ResolveCredential(s, "unsplash_api_key")
	require.True(t, ok)
	assert.Equal(t, "from-store", got)
}
