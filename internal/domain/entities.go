package domain

import (
	"strings"
	"time"
	"unicode"
)

// Image represents a single photo returned by the search API.
type Image struct {
	ID             string    `json:"id"`
	Description    string    `json:"description,omitempty"`
	AltDescription string    `json:"alt_description,omitempty"`
	CreatedAt      string    `json:"created_at"` // ISO 8601 string as delivered by the API
	URLs           ImageURLs `json:"urls"`
	Author         Author    `json:"user"`
}

// ImageURLs holds the display variants of an image.
type ImageURLs struct {
	Small   string `json:"small"`   // Thumbnail/grid size
	Regular string `json:"regular"` // Full display size
}

// Author is the photographer credited for an image.
type Author struct {
	Name string `json:"name"`
}

// DisplayTitle returns the best available caption, capitalized.
// Falls back from alt description to description to a placeholder.
func (i Image) DisplayTitle() string {
	title := i.AltDescription
	if title == "" {
		title = i.Description
	}
	if title == "" {
		return "Untitled Image"
	}
	return capitalizeFirst(title)
}

// CreatedDate parses the API's creation timestamp.
// Returns the zero time if the string is not valid ISO 8601.
func (i Image) CreatedDate() time.Time {
	t, err := time.Parse(time.RFC3339, i.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

func capitalizeFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// User is an account known to the profile store.
type User struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteRecord is the authoritative per-user favorite entry held by the
// profile store. Created and destroyed in lockstep with the favorite's bytes
// in the asset store.
type FavoriteRecord struct {
	ID               string    `json:"id"` // Record id, distinct from the image id
	ImageID          string    `json:"image_id"`
	ImageURL         string    `json:"image_url"`
	ThumbnailURL     string    `json:"thumbnail_url"`
	PhotographerName string    `json:"photographer_name"`
	Description      string    `json:"description,omitempty"`
	AddedAt          time.Time `json:"added_at"`
	Username         string    `json:"username"`
}

// SearchRecord is a persisted search-history entry owned by a user.
type SearchRecord struct {
	Query       string    `json:"query"`
	SearchedAt  time.Time `json:"searched_at"`
	ResultCount int       `json:"result_count"`
	Username    string    `json:"username"`
}

// NormalizeQuery trims surrounding whitespace from a search query. Kept here
// so the session, history, and profile store all apply the same rule.
func NormalizeQuery(q string) string {
	return strings.TrimSpace(q)
}
