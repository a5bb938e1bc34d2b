package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"topmovies/pkg/models"
)

const (
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	defaultTimeout      = 10 * time.Second
	defaultRetryBackoff = 250 * time.Millisecond
)

// SearchResult is a single TMDB search match.
type SearchResult struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	Overview      string `json:"overview"`
	ReleaseDate   string `json:"release_date"`
	PosterPath    string `json:"poster_path"`
}

type searchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
}

type detailsResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	Overview      string `json:"overview"`
	ReleaseDate   string `json:"release_date"`
	PosterPath    string `json:"poster_path"`
}

// Details holds the movie fields resolved from a TMDB id.
type Details struct {
	ExternalID  int64
	Title       string
	Year        int
	Description string
	PosterURL   string
}

// Searcher is the metadata surface the web handlers depend on.
type Searcher interface {
	Search(ctx context.Context, title string) ([]SearchResult, error)
	FetchDetails(ctx context.Context, externalID int64) (*Details, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	httpClient   *http.Client
	retries      int
	retryBackoff time.Duration
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds one Search or FetchDetails call, retries included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithImageBaseURL overrides the prefix joined with poster paths.
func WithImageBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimSpace(base); base != "" {
			c.imageBaseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithRetries sets how many extra attempts a request gets after an unavailable
// response. Zero disables retrying.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
		if backoff > 0 {
			c.retryBackoff = backoff
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: DefaultImageBaseURL,
		language:     strings.TrimSpace(language),
		httpClient:   &http.Client{Timeout: defaultTimeout},
		retries:      1,
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search looks up movies by title. No matches is an empty slice, not an error.
func (c *Client) Search(ctx context.Context, title string) ([]SearchResult, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidQuery)
	}

	params := url.Values{}
	params.Set("query", title)

	var payload searchResponse
	if err := c.get(ctx, "/search/movie", params, &payload); err != nil {
		return nil, err
	}
	if payload.Results == nil {
		return []SearchResult{}, nil
	}
	return payload.Results, nil
}

// FetchDetails resolves a TMDB id into the fields stored for a new movie.
func (c *Client) FetchDetails(ctx context.Context, externalID int64) (*Details, error) {
	if externalID <= 0 {
		return nil, fmt.Errorf("%w: movie id must be positive", ErrInvalidQuery)
	}

	params := url.Values{}
	if c.language != "" {
		params.Set("language", c.language)
	}

	var payload detailsResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", externalID), params, &payload); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(payload.OriginalTitle)
	if title == "" {
		title = strings.TrimSpace(payload.Title)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: movie %d has no title", ErrMalformedMetadata, externalID)
	}
	year, err := ReleaseYear(payload.ReleaseDate)
	if err != nil {
		return nil, fmt.Errorf("movie %d: %w", externalID, err)
	}
	poster, err := c.PosterURL(payload.PosterPath)
	if err != nil {
		return nil, fmt.Errorf("movie %d: %w", externalID, err)
	}
	overview := strings.TrimSpace(payload.Overview)
	if overview == "" {
		return nil, fmt.Errorf("%w: movie %d has no overview", ErrMalformedMetadata, externalID)
	}

	return &Details{
		ExternalID:  externalID,
		Title:       title,
		Year:        year,
		Description: overview,
		PosterURL:   poster,
	}, nil
}

var yearToken = regexp.MustCompile(`\b(\d{4})\b`)

// ReleaseYear takes the first 4-digit token of a "YYYY-MM-DD" release date.
func ReleaseYear(releaseDate string) (int, error) {
	releaseDate = strings.TrimSpace(releaseDate)
	if releaseDate == "" {
		return 0, fmt.Errorf("%w: release date missing", ErrMalformedMetadata)
	}
	m := yearToken.FindStringSubmatch(releaseDate)
	if m == nil {
		return 0, fmt.Errorf("%w: release date %q has no year", ErrMalformedMetadata, releaseDate)
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: release date %q: %v", ErrMalformedMetadata, releaseDate, err)
	}
	if year <= 0 {
		return 0, fmt.Errorf("%w: release date %q has year zero", ErrMalformedMetadata, releaseDate)
	}
	return year, nil
}

// PosterURL joins the image host prefix with a TMDB poster path.
func (c *Client) PosterURL(posterPath string) (string, error) {
	posterPath = strings.TrimSpace(posterPath)
	if posterPath == "" {
		return "", fmt.Errorf("%w: poster path missing", ErrMalformedMetadata)
	}
	if !strings.HasPrefix(posterPath, "/") {
		posterPath = "/" + posterPath
	}
	return c.imageBaseURL + posterPath, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	// the timeout covers every attempt, so a retry only spends what is left
	if c.httpClient.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retryBackoff):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrMetadataUnavailable, ctx.Err())
			}
			slog.Debug("retrying tmdb request", "path", path, "attempt", attempt+1)
		}

		retry, err := c.do(ctx, endpoint.String(), path, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return lastErr
}

// do performs one request. The bool reports whether the failure is worth retrying.
func (c *Client) do(ctx context.Context, endpoint, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		// the error string carries the api key in the url; keep only the cause
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return ctx.Err() == nil, fmt.Errorf("%w: %s (latency=%v): %v", ErrMetadataUnavailable, path, latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode >= 500, fmt.Errorf("%w: %s returned %d (latency=%v)", ErrMetadataUnavailable, path, resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", ErrMalformedMetadata, path, err)
	}
	return false, nil
}

// NewMovie maps the details onto the record the movie list stores.
func (d Details) NewMovie() models.NewMovie {
	return models.NewMovie{
		Title:       d.Title,
		Year:        d.Year,
		Description: d.Description,
		ImgURL:      d.PosterURL,
	}
}
