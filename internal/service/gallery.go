// Package service ties the stores and the API client into the flows the UI
// calls: cache-first image loading and the favorite toggle that keeps asset
// bytes and profile records in lockstep.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumen-gallery/lumen/internal/assetstore"
	"github.com/lumen-gallery/lumen/internal/domain"
	"github.com/lumen-gallery/lumen/internal/favorites"
	"github.com/lumen-gallery/lumen/internal/imagecache"
)

// Gallery serves image bytes and favorite state.
type Gallery struct {
	cache    *imagecache.Cache
	assets   *assetstore.Store
	profiles domain.ProfileStore
	index    *favorites.Index
	client   domain.Downloader
	logger   *slog.Logger
}

// NewGallery wires the gallery flows. Stores are constructed by the caller,
// before the index and session that depend on them.
func NewGallery(cache *imagecache.Cache, assets *assetstore.Store, profiles domain.ProfileStore, index *favorites.Index, client domain.Downloader, logger *slog.Logger) *Gallery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gallery{
		cache:    cache,
		assets:   assets,
		profiles: profiles,
		index:    index,
		client:   client,
		logger:   logger,
	}
}

// Image returns the bytes for a display URL: ephemeral cache first, then
// network with a cache fill. A network failure with no cached copy is the
// only error path.
func (g *Gallery) Image(ctx context.Context, rawURL string) ([]byte, error) {
	if data, ok := g.cache.Load(rawURL); ok {
		return data, nil
	}

	data, err := g.client.Download(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("image fetch failed: %w", err)
	}

	g.cache.Save(rawURL, data)
	return data, nil
}

// IsFavorite reports whether username has img favorited in the profile
// store (the authoritative record).
func (g *Gallery) IsFavorite(imageID, username string) bool {
	_, found := g.profiles.GetFavorite(username, imageID)
	return found
}

// ToggleFavorite flips img's favorite state for username. Adding downloads
// the full-resolution bytes, re-encodes them into the asset store, and only
// then writes the profile record; an encode or store failure leaves no
// favorite recorded anywhere and surfaces an error. Removing deletes the
// record and the stored bytes. The favorites index is updated as the
// parallel bookkeeping path over the same ids.
//
// Returns the new favorite state.
func (g *Gallery) ToggleFavorite(ctx context.Context, img domain.Image, username string) (bool, error) {
	if _, found := g.profiles.GetFavorite(username, img.ID); found {
		if err := g.profiles.RemoveFavorite(username, img.ID); err != nil {
			return true, fmt.Errorf("failed to remove favorite record: %w", err)
		}
		g.assets.Delete(img.ID)
		g.index.Toggle(img, username)
		g.logger.Info("removed favorite", "image", img.ID, "user", username)
		return false, nil
	}

	data, err := g.client.Download(ctx, img.URLs.Regular)
	if err != nil {
		return false, fmt.Errorf("favorite download failed: %w", err)
	}

	if !g.assets.Save(img.ID, data) {
		return false, domain.ErrEncodeFailed
	}

	desc := img.Description
	if desc == "" {
		desc = img.AltDescription
	}
	rec := domain.FavoriteRecord{
		ImageID:          img.ID,
		ImageURL:         img.URLs.Regular,
		ThumbnailURL:     img.URLs.Small,
		PhotographerName: img.Author.Name,
		Description:      desc,
		Username:         username,
	}
	if err := g.profiles.AddFavorite(rec); err != nil {
		// Keep bytes and records in lockstep: a record we cannot write
		// means the bytes must go too.
		g.assets.Delete(img.ID)
		return false, fmt.Errorf("failed to record favorite: %w", err)
	}

	g.index.Toggle(img, username)
	g.logger.Info("added favorite", "image", img.ID, "user", username)
	return true, nil
}

// FavoriteImage returns the stored bytes for a favorited image, falling
// back to the network when the asset is missing or unreadable.
func (g *Gallery) FavoriteImage(ctx context.Context, rec domain.FavoriteRecord) ([]byte, error) {
	if data, ok := g.assets.Load(rec.ImageID); ok {
		return data, nil
	}

	g.logger.Debug("favorite asset missing, refetching", "image", rec.ImageID)
	data, err := g.client.Download(ctx, rec.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("favorite refetch failed: %w", err)
	}
	g.assets.Save(rec.ImageID, data)
	return data, nil
}

// Favorites returns username's favorite records, newest first.
func (g *Gallery) Favorites(username string) ([]domain.FavoriteRecord, error) {
	return g.profiles.FavoritesFor(username)
}

// FavoritesSize reports the disk footprint of stored favorite assets.
func (g *Gallery) FavoritesSize() int64 {
	return g.assets.TotalSize()
}
