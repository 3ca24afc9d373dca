package search

import (
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/lumen-gallery/lumen/internal/domain"
)

// filterIndex implements sahilm/fuzzy.Source over favorite images,
// pre-computing lowercase search text at index time.
type filterIndex struct {
	images     []domain.Image
	lowerTexts []string
}

// String returns the searchable text at index i (implements fuzzy.Source)
func (idx *filterIndex) String(i int) string { return idx.lowerTexts[i] }

// Len returns the number of indexed images (implements fuzzy.Source)
func (idx *filterIndex) Len() int { return len(idx.images) }

// FilterResult is a filter match with metadata for highlighting.
type FilterResult struct {
	Image          domain.Image
	MatchedIndexes []int
	Score          int
}

// FavoritesFilter fuzzy-filters a user's favorites by caption and
// photographer name.
type FavoritesFilter struct {
	mu      sync.RWMutex
	index   *filterIndex
	indexed map[string]bool // image ids already indexed
}

// NewFavoritesFilter creates an empty filter.
func NewFavoritesFilter() *FavoritesFilter {
	return &FavoritesFilter{
		index:   &filterIndex{},
		indexed: make(map[string]bool),
	}
}

// Index adds images to the filter, deduplicating by image id.
func (f *FavoritesFilter) Index(images []domain.Image) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, img := range images {
		if f.indexed[img.ID] {
			continue
		}
		f.indexed[img.ID] = true
		f.index.images = append(f.index.images, img)
		text := strings.ToLower(img.DisplayTitle() + " " + img.Author.Name)
		f.index.lowerTexts = append(f.index.lowerTexts, text)
	}
}

// Match returns favorites matching query, best score first.
func (f *FavoritesFilter) Match(query string) []FilterResult {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if query == "" || f.index.Len() == 0 {
		return nil
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), f.index)

	results := make([]FilterResult, len(matches))
	for i, m := range matches {
		results[i] = FilterResult{
			Image:          f.index.images[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// Clear empties the filter index.
func (f *FavoritesFilter) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.index = &filterIndex{}
	f.indexed = make(map[string]bool)
}
