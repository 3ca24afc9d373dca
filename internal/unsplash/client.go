// Package unsplash is the remote photo-search API client. It owns no wire
// format: the JSON shapes in dto.go mirror the API's contract and are mapped
// to domain types at the boundary.
package unsplash

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/lumen-gallery/lumen/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Lumen/1.0"

	// Search responses are memoized briefly to stay inside the API's
	// hourly request quota when the same page is requested back to back.
	responseCacheTTL = 5 * time.Minute
)

// Client talks to the photo search API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	respCache  *gocache.Cache
	logger     *slog.Logger
}

// NewClient creates a new API client rooted at baseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		respCache: gocache.New(responseCacheTTL, 2*responseCacheTTL),
		logger:    logger,
	}
}

// SearchPhotos returns one page of results for query. Page numbering starts
// at 1. The credential travels as the client_id query parameter.
func (c *Client) SearchPhotos(ctx context.Context, query string, page, perPage int, apiKey string) ([]domain.Image, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("client_id", apiKey)

	body, err := c.doRequest(ctx, "/search/photos", params)
	if err != nil {
		return nil, err
	}

	resp, err := parseSearchResponse(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("search page fetched", "query", query, "page", page, "results", len(resp.Results))
	return mapPhotos(resp.Results), nil
}

// Download fetches raw image bytes from a display URL. Image payloads are
// never memoized; the disk caches own that concern.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrServerUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// doRequest performs a GET against the API, serving recent responses from
// the in-memory cache.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	if cached, ok := c.respCache.Get(reqURL); ok {
		c.logger.Debug("api response served from memory", "path", path)
		return cached.([]byte), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("api request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, domain.ErrAuthFailed
	case http.StatusForbidden, http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	default:
		c.logger.Error("api request error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	c.respCache.Set(reqURL, body, gocache.DefaultExpiration)
	return body, nil
}
