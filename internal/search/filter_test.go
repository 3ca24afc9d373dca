package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-gallery/lumen/internal/domain"
)

func TestFavoritesFilterMatch(t *testing.T) {
	f := NewFavoritesFilter()
	f.Index([]domain.Image{
		{ID: "1", AltDescription: "sunset over mountains", Author: domain.Author{Name: "Ada"}},
		{ID: "2", AltDescription: "city skyline at night", Author: domain.Author{Name: "Grace"}},
		{ID: "3", Description: "mountain lake", Author: domain.Author{Name: "Linus"}},
	})

	results := f.Match("mountain")
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Contains(t, []string{"1", "3"}, r.Image.ID)
	}
}

func TestFavoritesFilterDeduplicates(t *testing.T) {
	f := NewFavoritesFilter()
	img := domain.Image{ID: "1", AltDescription: "sunset", Author: domain.Author{Name: "Ada"}}

	f.Index([]domain.Image{img})
	f.Index([]domain.Image{img})

	results := f.Match("sunset")
	assert.Len(t, results, 1)
}

func TestFavoritesFilterEmptyQuery(t *testing.T) {
	f := NewFavoritesFilter()
	f.Index([]domain.Image{{ID: "1", AltDescription: "sunset"}})

	assert.Nil(t, f.Match(""))
}

func TestFavoritesFilterClear(t *testing.T) {
	f := NewFavoritesFilter()
	f.Index([]domain.Image{{ID: "1", AltDescription: "sunset"}})

	f.Clear()
	assert.Nil(t, f.Match("sunset"))

	// Re-indexing after clear must work.
	f.Index([]domain.Image{{ID: "1", AltDescription: "sunset"}})
	assert.Len(t, f.Match("sunset"), 1)
}

func TestSuggest(t *testing.T) {
	client := &fakeClient{pages: map[string][][]domain.Image{}}
	s, _ := newTestSession(client)

	for _, q := range []string{"mountain lake", "mountains", "city"} {
		s.Search(context.Background(), q, "alice")
	}

	suggestions := s.Suggest("alice", "mount")
	require.NotEmpty(t, suggestions)
	for _, got := range suggestions {
		assert.Contains(t, []string{"mountain lake", "mountains"}, got)
	}

	// Empty input returns the whole history, most recent first.
	all := s.Suggest("alice", "")
	assert.Equal(t, []string{"city", "mountains", "mountain lake"}, all)
}
