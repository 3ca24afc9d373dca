// Package assetstore is the unbounded, id-addressed disk store for favorited
// image bytes. Assets are re-encoded as fixed-quality JPEG on save and are
// never evicted, only explicitly deleted when a favorite is removed.
package assetstore

import (
	"bytes"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	// Register decoders for the formats the API serves.
	_ "image/gif"
	_ "image/png"
)

// jpegQuality is the fixed re-encode quality for stored favorites.
const jpegQuality = 85

// Store holds favorite image bytes on disk, one file per asset id.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a store rooted at dir. Directory creation is lazy and
// idempotent; a directory that cannot be created degrades to an empty,
// read-nothing store.
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

func (s *Store) ensureDir() bool {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		s.logger.Warn("favorites directory unavailable", "dir", s.dir, "error", err)
		return false
	}
	return true
}

// path returns the fixed location for an asset. Asset ids are stable API
// identifiers, assumed unique and filesystem-safe, so no hashing.
func (s *Store) path(assetID string) string {
	return filepath.Join(s.dir, assetID+".jpg")
}

// Save decodes data, re-encodes it as JPEG, and writes it at assetID's fixed
// path, overwriting any previous bytes. Returns false on decode, encode, or
// write failure.
func (s *Store) Save(assetID string, data []byte) bool {
	if !s.ensureDir() {
		return false
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.logger.Warn("favorite image not decodable", "asset", assetID, "error", err)
		return false
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		s.logger.Warn("favorite image encode failed", "asset", assetID, "error", err)
		return false
	}

	if err := os.WriteFile(s.path(assetID), buf.Bytes(), 0644); err != nil {
		s.logger.Warn("favorite image write failed", "asset", assetID, "error", err)
		return false
	}

	s.logger.Debug("saved favorite image", "asset", assetID, "kb", buf.Len()/1024)
	return true
}

// Load returns the stored bytes for assetID if the file exists and holds a
// decodable image.
func (s *Store) Load(assetID string) ([]byte, bool) {
	data, err := os.ReadFile(s.path(assetID))
	if err != nil {
		return nil, false
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		s.logger.Warn("stored favorite not decodable", "asset", assetID, "error", err)
		return nil, false
	}
	return data, true
}

// Delete removes assetID's bytes. Deleting an absent asset is a safe no-op
// reported as false.
func (s *Store) Delete(assetID string) bool {
	path := s.path(assetID)
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if err := os.Remove(path); err != nil {
		s.logger.Warn("favorite image delete failed", "asset", assetID, "error", err)
		return false
	}
	return true
}

// Exists reports whether assetID has bytes on disk.
func (s *Store) Exists(assetID string) bool {
	_, err := os.Stat(s.path(assetID))
	return err == nil
}

// TotalSize returns the summed size in bytes of every stored asset.
// Unreadable sizes count as zero; the walk never fails.
func (s *Store) TotalSize() int64 {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if info, err := e.Info(); err == nil {
			total += info.Size()
		}
	}
	return total
}
