package domain

import "context"

// SearchClient provides paginated network search against the photo API.
type SearchClient interface {
	// SearchPhotos returns one page of results for query. Page numbering
	// starts at 1.
	SearchPhotos(ctx context.Context, query string, page, perPage int, apiKey string) ([]Image, error)
}

// Downloader fetches raw image bytes from a display URL.
type Downloader interface {
	Download(ctx context.Context, rawURL string) ([]byte, error)
}

// SecretStore holds opaque secrets keyed by string: the API credential and
// per-account password hashes. Boolean returns follow keychain semantics:
// Delete of a missing key reports success.
type SecretStore interface {
	Save(key, secret string) bool
	Get(key string) (string, bool)
	Delete(key string) bool
	Update(key, secret string) bool
	Exists(key string) bool
}

// ProfileStore is the persisted per-user graph: accounts, favorite records,
// and search-history records. Deleting a user cascades to everything the
// user owns.
type ProfileStore interface {
	CreateUser(username, email string) (User, error)
	GetUser(username string) (User, bool)
	Usernames() ([]string, error)
	DeleteUser(username string) error

	AddFavorite(rec FavoriteRecord) error
	RemoveFavorite(username, imageID string) error
	GetFavorite(username, imageID string) (FavoriteRecord, bool)
	FavoritesFor(username string) ([]FavoriteRecord, error)

	AddSearchRecord(rec SearchRecord) error
	SearchRecordsFor(username string) ([]SearchRecord, error)

	Close() error
}
