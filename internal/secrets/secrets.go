// Package secrets provides the secret-store collaborator: the remote API
// credential and per-account password hashes live here, never in the config
// file or the profile database.
//
// Secrets are stored one per file with owner-only permissions. Values are
// never logged. Boolean results follow keychain semantics: deleting a key
// that does not exist is a success.
package secrets

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// maxSecretSize limits secret file reads. Secrets are tokens and
	// password hashes, not payloads.
	maxSecretSize = 64 * 1024

	secretFileMode = 0o600
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// FileStore implements domain.SecretStore on a directory of 0600 files.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore creates a secret store rooted at dir.
func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{dir: dir, logger: logger}
}

// path maps a key to its file. Keys with filesystem-unsafe characters are
// hashed so arbitrary strings (usernames) remain valid keys.
func (s *FileStore) path(key string) string {
	name := key
	if unsafeKeyChars.MatchString(key) {
		sum := sha256.Sum256([]byte(key))
		name = hex.EncodeToString(sum[:8])
	}
	return filepath.Join(s.dir, name+".secret")
}

// Save stores secret under key, replacing any existing value.
func (s *FileStore) Save(key, secret string) bool {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.logger.Warn("secrets directory unavailable", "error", err)
		return false
	}
	if err := os.WriteFile(s.path(key), []byte(secret), secretFileMode); err != nil {
		s.logger.Warn("secret write failed", "key", key, "error", err)
		return false
	}
	return true
}

// Get returns the secret stored under key.
func (s *FileStore) Get(key string) (string, bool) {
	path := s.path(key)
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxSecretSize {
		return "", false
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		s.logger.Warn("secret file has overly permissive mode", "key", key, "mode", mode)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	// Secrets often carry a trailing newline when written by hand.
	return strings.TrimSpace(string(data)), true
}

// Delete removes the secret under key. A missing key is a success.
func (s *FileStore) Delete(key string) bool {
	err := os.Remove(s.path(key))
	return err == nil || os.IsNotExist(err)
}

// Update replaces the secret under key, creating it if absent.
func (s *FileStore) Update(key, secret string) bool {
	return s.Save(key, secret)
}

// Exists reports whether a secret is stored under key.
func (s *FileStore) Exists(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// ResolveCredential looks up the API credential: the LUMEN_API_KEY
// environment variable wins, then the secret store.
func ResolveCredential(store interface {
	Get(string) (string, bool)
}, key string) (string, bool) {
	if v := os.Getenv("LUMEN_API_KEY"); v != "" {
		return v, true
	}
	return store.Get(key)
}
