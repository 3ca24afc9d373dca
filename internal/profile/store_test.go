package profile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-gallery/lumen/internal/domain"
	"github.com/lumen-gallery/lumen/internal/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "profile.db"), logging.NullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateUserUnique(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("alice", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.CreatedAt.IsZero())

	_, err = s.CreateUser("alice", "other@example.com")
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestGetUser(t *testing.T) {
	s := newTestStore(t)

	_, found := s.GetUser("ghost")
	assert.False(t, found)

	_, err := s.CreateUser("alice", "alice@example.com")
	require.NoError(t, err)

	user, found := s.GetUser("alice")
	require.True(t, found)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestUsernames(t *testing.T) {
	s := newTestStore(t)

	names, err := s.Usernames()
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = s.CreateUser("alice", "a@example.com")
	require.NoError(t, err)
	_, err = s.CreateUser("bob", "b@example.com")
	require.NoError(t, err)

	names, err = s.Usernames()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, names)
}

func TestFavoriteRecordLifecycle(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateUser("alice", "a@example.com")
	require.NoError(t, err)

	rec := domain.FavoriteRecord{
		ImageID:          "img-1",
		ImageURL:         "https://img.example.com/img-1/regular",
		ThumbnailURL:     "https://img.example.com/img-1/small",
		PhotographerName: "Ada",
		Username:         "alice",
	}
	require.NoError(t, s.AddFavorite(rec))

	got, found := s.GetFavorite("alice", "img-1")
	require.True(t, found)
	assert.NotEmpty(t, got.ID, "record id assigned on insert")
	assert.False(t, got.AddedAt.IsZero())
	assert.Equal(t, "Ada", got.PhotographerName)

	require.NoError(t, s.RemoveFavorite("alice", "img-1"))
	_, found = s.GetFavorite("alice", "img-1")
	assert.False(t, found)
}

func TestFavoritesOrderedNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().Add(-time.Hour)

	for i, id := range []string{"img-1", "img-2", "img-3"} {
		require.NoError(t, s.AddFavorite(domain.FavoriteRecord{
			ImageID:  id,
			Username: "alice",
			AddedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recs, err := s.FavoritesFor("alice")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "img-3", recs[0].ImageID)
	assert.Equal(t, "img-1", recs[2].ImageID)
}

func TestSearchRecordsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().Add(-time.Hour)

	for i, q := range []string{"cat", "dog", "bird"} {
		require.NoError(t, s.AddSearchRecord(domain.SearchRecord{
			Query:       q,
			Username:    "alice",
			SearchedAt:  base.Add(time.Duration(i) * time.Minute),
			ResultCount: i,
		}))
	}

	recs, err := s.SearchRecordsFor("alice")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "bird", recs[0].Query)
	assert.Equal(t, "cat", recs[2].Query)
}

func TestDeleteUserCascades(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateUser("alice", "a@example.com")
	require.NoError(t, err)
	_, err = s.CreateUser("bob", "b@example.com")
	require.NoError(t, err)

	require.NoError(t, s.AddFavorite(domain.FavoriteRecord{ImageID: "img-1", Username: "alice"}))
	require.NoError(t, s.AddFavorite(domain.FavoriteRecord{ImageID: "img-1", Username: "bob"}))
	require.NoError(t, s.AddSearchRecord(domain.SearchRecord{Query: "cat", Username: "alice"}))

	require.NoError(t, s.DeleteUser("alice"))

	_, found := s.GetUser("alice")
	assert.False(t, found)

	recs, err := s.FavoritesFor("alice")
	require.NoError(t, err)
	assert.Empty(t, recs)

	hist, err := s.SearchRecordsFor("alice")
	require.NoError(t, err)
	assert.Empty(t, hist)

	// Bob's records must be untouched.
	bobRecs, err := s.FavoritesFor("bob")
	require.NoError(t, err)
	assert.Len(t, bobRecs, 1)
}

func TestDeleteMissingUser(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.DeleteUser("ghost"), domain.ErrUserNotFound)
}
