// Package favorites keeps the per-user favorite-id lists and the shared
// denormalized image-metadata cache. Both structures live in memory, are
// loaded once from BoltDB at construction, and are flushed back after every
// mutation. A blob that fails to decode is replaced by its empty default
// instead of failing startup.
package favorites

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/lumen-gallery/lumen/internal/domain"
)

var bucketFavorites = []byte("favorites")

// Blob keys inside the favorites bucket.
const (
	keyUserFavorites = "user_favorites"        // username -> ordered image ids
	keyImageCache    = "favorites_image_cache" // shared image metadata list
)

// Index mediates between UI-level favorite toggles and the persisted
// favorite state. Metadata-cache entries are reference-counted across users:
// an image's metadata stays as long as any user still lists its id.
type Index struct {
	db     *bolt.DB
	logger *slog.Logger

	mu            sync.Mutex
	userFavorites map[string][]string
	imageCache    []domain.Image
}

// NewIndex opens (or creates) the index database at path and loads both
// persisted blobs.
func NewIndex(path string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open favorites db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketFavorites)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	ix := &Index{
		db:            db,
		logger:        logger,
		userFavorites: make(map[string][]string),
	}
	ix.load()
	return ix, nil
}

// load reads both blobs into memory. Decode failures leave the corresponding
// structure at its empty default.
func (ix *Index) load() {
	ix.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketFavorites)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(keyUserFavorites)); v != nil {
			var lists map[string][]string
			if err := json.Unmarshal(v, &lists); err == nil {
				ix.userFavorites = lists
			} else {
				ix.logger.Warn("favorite lists blob corrupt, starting empty", "error", err)
			}
		}
		if v := b.Get([]byte(keyImageCache)); v != nil {
			var images []domain.Image
			if err := json.Unmarshal(v, &images); err == nil {
				ix.imageCache = images
			} else {
				ix.logger.Warn("image metadata blob corrupt, starting empty", "error", err)
			}
		}
		return nil
	})
	if ix.userFavorites == nil {
		ix.userFavorites = make(map[string][]string)
	}
}

// persist flushes both blobs. Called with ix.mu held.
func (ix *Index) persist() {
	lists, err := json.Marshal(ix.userFavorites)
	if err != nil {
		ix.logger.Warn("favorite lists marshal failed", "error", err)
		return
	}
	images, err := json.Marshal(ix.imageCache)
	if err != nil {
		ix.logger.Warn("image metadata marshal failed", "error", err)
		return
	}

	err = ix.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketFavorites)
		if err := b.Put([]byte(keyUserFavorites), lists); err != nil {
			return err
		}
		return b.Put([]byte(keyImageCache), images)
	})
	if err != nil {
		ix.logger.Warn("favorites persist failed", "error", err)
	}
}

// IsFavorite reports whether imageID is in username's favorite list.
func (ix *Index) IsFavorite(imageID, username string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, id := range ix.userFavorites[username] {
		if id == imageID {
			return true
		}
	}
	return false
}

// Toggle flips img's favorite state for username and persists both
// structures. New favorites go to the front of the list (most recent first);
// lists never hold duplicate ids.
func (ix *Index) Toggle(img domain.Image, username string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	list := ix.userFavorites[username]
	if containsID(list, img.ID) {
		ix.userFavorites[username] = removeID(list, img.ID)
		// Drop metadata only once no user references the image anymore.
		if !ix.referencedLocked(img.ID) {
			ix.imageCache = removeImage(ix.imageCache, img.ID)
		}
		ix.logger.Debug("removed favorite", "image", img.ID, "user", username)
	} else {
		ix.userFavorites[username] = append([]string{img.ID}, list...)
		if !containsImage(ix.imageCache, img.ID) {
			ix.imageCache = append([]domain.Image{img}, ix.imageCache...)
		}
		ix.logger.Debug("added favorite", "image", img.ID, "user", username)
	}

	ix.persist()
}

// FavoritesFor resolves username's id list through the shared metadata
// cache, in list order. Ids without metadata are skipped.
func (ix *Index) FavoritesFor(username string) []domain.Image {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ids := ix.userFavorites[username]
	results := make([]domain.Image, 0, len(ids))
	for _, id := range ids {
		for _, img := range ix.imageCache {
			if img.ID == id {
				results = append(results, img)
				break
			}
		}
	}
	return results
}

// referencedLocked reports whether any user list still contains imageID.
// Called with ix.mu held.
func (ix *Index) referencedLocked(imageID string) bool {
	for _, list := range ix.userFavorites {
		if containsID(list, imageID) {
			return true
		}
	}
	return false
}

// Close releases the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func containsID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(list []string, id string) []string {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func containsImage(images []domain.Image, id string) bool {
	for _, img := range images {
		if img.ID == id {
			return true
		}
	}
	return false
}

func removeImage(images []domain.Image, id string) []domain.Image {
	out := images[:0]
	for _, img := range images {
		if img.ID != id {
			out = append(out, img)
		}
	}
	return out
}
