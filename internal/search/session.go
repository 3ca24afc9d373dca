// Package search drives the paginated remote search flow: per-query result
// accumulation and caching, duplicate-request suppression, and a capped
// per-user recent-query history.
package search

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lumen-gallery/lumen/internal/domain"
	"github.com/lumen-gallery/lumen/internal/secrets"
)

const (
	// DefaultPerPage is the fixed page size for remote fetches.
	DefaultPerPage = 20

	// historyLimit caps each user's recent-query list.
	historyLimit = 4
)

// Recorder receives history side effects so the profile store can keep its
// own durable search records. Optional.
type Recorder interface {
	AddSearchRecord(rec domain.SearchRecord) error
}

// Session is the pagination state machine over the remote search API. All
// state is guarded by one mutex; the in-flight check and set happen under
// the lock, network I/O happens outside it, so two overlapping LoadMore
// calls produce exactly one request.
type Session struct {
	client        domain.SearchClient
	secrets       domain.SecretStore
	recorder      Recorder
	credentialKey string
	perPage       int
	logger        *slog.Logger

	mu           sync.Mutex
	currentQuery string
	currentPage  int
	isLoading    bool
	loadingMore  bool // UI-visible flag, distinct from the internal guard
	results      []domain.Image
	cached       map[string][]domain.Image
	histories    map[string][]string
}

// Option configures a Session.
type Option func(*Session)

// WithPerPage overrides the fixed page size.
func WithPerPage(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.perPage = n
		}
	}
}

// WithRecorder attaches a durable history recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// NewSession creates a search session. credentialKey names the secret-store
// entry holding the API credential.
func NewSession(client domain.SearchClient, secrets domain.SecretStore, credentialKey string, logger *slog.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		client:        client,
		secrets:       secrets,
		credentialKey: credentialKey,
		perPage:       DefaultPerPage,
		logger:        logger,
		currentPage:   1,
		cached:        make(map[string][]domain.Image),
		histories:     make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search starts (or resumes) a search for query on behalf of username.
// Blank queries are ignored. A cached query is adopted without a network
// call; the resumed page is len(cached)/perPage+1, a known approximation
// that can skip or refetch a short final page.
func (s *Session) Search(ctx context.Context, query, username string) {
	trimmed := domain.NormalizeQuery(query)
	if trimmed == "" {
		return
	}

	s.mu.Lock()
	s.currentQuery = trimmed
	s.addToHistoryLocked(trimmed, username)

	if cached, ok := s.cached[trimmed]; ok {
		s.results = append([]domain.Image(nil), cached...)
		s.currentPage = len(cached)/s.perPage + 1
		s.mu.Unlock()
		s.logger.Debug("search served from query cache", "query", trimmed, "results", len(cached))
		s.record(trimmed, username, len(cached))
		return
	}

	s.results = nil
	s.currentPage = 1
	s.mu.Unlock()

	s.record(trimmed, username, 0)
	s.LoadMore(ctx)
}

// LoadMore fetches the next page for the current query. It is a no-op while
// a request is in flight or when no query is active. Fetch failures leave
// the results untouched; the next user-triggered call retries.
func (s *Session) LoadMore(ctx context.Context) {
	s.mu.Lock()
	if s.isLoading || s.currentQuery == "" {
		s.mu.Unlock()
		return
	}
	s.isLoading = true
	s.loadingMore = true
	query := s.currentQuery
	page := s.currentPage
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isLoading = false
		s.loadingMore = false
		s.mu.Unlock()
	}()

	apiKey, ok := secrets.ResolveCredential(s.secrets, s.credentialKey)
	if !ok {
		s.logger.Warn("aborting fetch", "error", domain.ErrMissingCredential)
		return
	}

	pageResults, err := s.client.SearchPhotos(ctx, query, page, s.perPage, apiKey)
	if err != nil {
		s.logger.Warn("search page fetch failed", "query", query, "page", page, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A slow response for a query the user has since left must not leak
	// into the new query's results.
	if query != s.currentQuery {
		s.logger.Debug("dropping stale search response", "query", query)
		return
	}

	s.results = append(s.results, pageResults...)
	s.cached[query] = append([]domain.Image(nil), s.results...)
	s.currentPage++
}

// Results returns the accumulated, UI-visible result list.
func (s *Session) Results() []domain.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Image(nil), s.results...)
}

// IsLoadingMore reports the UI-visible loading flag.
func (s *Session) IsLoadingMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingMore
}

// Reset clears the visible results, query, page, and loading flags for a
// fresh login cycle. Histories survive on purpose.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
	s.currentPage = 1
	s.currentQuery = ""
	s.isLoading = false
	s.loadingMore = false
}

// History returns username's recent queries, most recent first. Never nil.
func (s *Session) History(username string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.histories[username]...)
}

// addToHistoryLocked promotes query to the front of username's history,
// deduplicated by exact match and capped at historyLimit entries. Called
// with s.mu held.
func (s *Session) addToHistoryLocked(query, username string) {
	history := s.histories[username]

	out := make([]string, 0, len(history)+1)
	out = append(out, query)
	for _, q := range history {
		if q != query {
			out = append(out, q)
		}
	}
	if len(out) > historyLimit {
		out = out[:historyLimit]
	}
	s.histories[username] = out
}

// record forwards the search to the durable history recorder, if any.
func (s *Session) record(query, username string, resultCount int) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.AddSearchRecord(domain.SearchRecord{
		Query:       query,
		Username:    username,
		ResultCount: resultCount,
	}); err != nil {
		s.logger.Warn("history record failed", "query", query, "error", err)
	}
}
