// Package profile is the persisted per-user graph: accounts, their favorite
// records, and their search-history records. Keys encode ownership
// (user:{username}:...) so deleting a user cascades via prefix deletion.
package profile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/lumen-gallery/lumen/internal/domain"
)

// Bucket names
var (
	bucketUsers     = []byte("users")
	bucketFavorites = []byte("favorites")
	bucketHistory   = []byte("history")
)

// Store implements domain.ProfileStore using BoltDB.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger
}

// NewStore opens (or creates) the profile database at path.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open profile db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketUsers, bucketFavorites, bucketHistory} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// === Users ===

// CreateUser registers a new account. Usernames are unique.
func (s *Store) CreateUser(username, email string) (domain.User, error) {
	user := domain.User{Username: username, Email: email, CreatedAt: time.Now()}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		if b.Get([]byte(username)) != nil {
			return domain.ErrUserExists
		}
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return b.Put([]byte(username), data)
	})
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("created user", "username", username)
	return user, nil
}

// GetUser looks up an account by username.
func (s *Store) GetUser(username string) (domain.User, bool) {
	var user domain.User
	found := false
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketUsers).Get([]byte(username)); v != nil {
			found = json.Unmarshal(v, &user) == nil
		}
		return nil
	})
	return user, found
}

// Usernames lists every known account name.
func (s *Store) Usernames() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUsers).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// DeleteUser removes an account and cascades to its favorite and history
// records.
func (s *Store) DeleteUser(username string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		if b.Get([]byte(username)) == nil {
			return domain.ErrUserNotFound
		}
		if err := b.Delete([]byte(username)); err != nil {
			return err
		}
		prefix := userPrefix(username)
		if err := deletePrefix(tx.Bucket(bucketFavorites), prefix); err != nil {
			return err
		}
		return deletePrefix(tx.Bucket(bucketHistory), prefix)
	})
}

// === Favorites ===

// AddFavorite stores rec, assigning a record id when the caller left it
// empty. One record per (user, image): re-adding overwrites.
func (s *Store) AddFavorite(rec domain.FavoriteRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.AddedAt.IsZero() {
		rec.AddedAt = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	key := favoriteKey(rec.Username, rec.ImageID)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFavorites).Put([]byte(key), data)
	})
}

// RemoveFavorite deletes the record for (username, imageID) if present.
func (s *Store) RemoveFavorite(username, imageID string) error {
	key := favoriteKey(username, imageID)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFavorites).Delete([]byte(key))
	})
}

// GetFavorite returns username's record for imageID.
func (s *Store) GetFavorite(username, imageID string) (domain.FavoriteRecord, bool) {
	var rec domain.FavoriteRecord
	found := false
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketFavorites).Get([]byte(favoriteKey(username, imageID))); v != nil {
			found = json.Unmarshal(v, &rec) == nil
		}
		return nil
	})
	return rec, found
}

// FavoritesFor returns username's favorite records, newest first.
func (s *Store) FavoritesFor(username string) ([]domain.FavoriteRecord, error) {
	var recs []domain.FavoriteRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return scanPrefix(tx.Bucket(bucketFavorites), userPrefix(username), func(v []byte) {
			var rec domain.FavoriteRecord
			if json.Unmarshal(v, &rec) == nil {
				recs = append(recs, rec)
			}
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].AddedAt.After(recs[j].AddedAt)
	})
	return recs, nil
}

// === Search history ===

// AddSearchRecord appends a history record for rec.Username.
func (s *Store) AddSearchRecord(rec domain.SearchRecord) error {
	if rec.SearchedAt.IsZero() {
		rec.SearchedAt = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	// Nanosecond key keeps records in search order under a prefix scan.
	key := fmt.Sprintf("%s%020d", userPrefix(rec.Username), rec.SearchedAt.UnixNano())
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketHistory).Put([]byte(key), data)
	})
}

// SearchRecordsFor returns username's history records, newest first.
func (s *Store) SearchRecordsFor(username string) ([]domain.SearchRecord, error) {
	var recs []domain.SearchRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return scanPrefix(tx.Bucket(bucketHistory), userPrefix(username), func(v []byte) {
			var rec domain.SearchRecord
			if json.Unmarshal(v, &rec) == nil {
				recs = append(recs, rec)
			}
		})
	})
	if err != nil {
		return nil, err
	}

	// Prefix scans yield oldest first; callers want newest first.
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
}

// === Key helpers ===

func userPrefix(username string) string {
	return "user:" + username + ":"
}

func favoriteKey(username, imageID string) string {
	return userPrefix(username) + "img:" + imageID
}

func scanPrefix(b *bolt.Bucket, prefix string, fn func(v []byte)) error {
	c := b.Cursor()
	p := []byte(prefix)
	for k, v := c.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, v = c.Next() {
		fn(v)
	}
	return nil
}

func deletePrefix(b *bolt.Bucket, prefix string) error {
	c := b.Cursor()
	p := []byte(prefix)
	for k, _ := c.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
