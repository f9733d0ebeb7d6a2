package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound indicates the API explicitly reported no match for the title.
// It is a stable negative outcome, distinct from transport failures.
var ErrNotFound = errors.New("omdb: movie not found")

// Record contains the normalized metadata fields returned by a lookup.
// Nil pointers mean the API had no value (or reported its "N/A" marker).
type Record struct {
	IMDbID         *string
	Director       *string
	Plot           *string
	PosterURL      *string
	RuntimeMinutes *int
	BoxOffice      *int64
	Metascore      *int
	IMDbRating     *float64
}

// payload models the raw OMDb by-title response.
type payload struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	IMDbID     string `json:"imdbID"`
	Director   string `json:"Director"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	Runtime    string `json:"Runtime"`
	BoxOffice  string `json:"BoxOffice"`
	Metascore  string `json:"Metascore"`
	IMDbRating string `json:"imdbRating"`
}

// Lookuper defines the lookup operation used by the enrichment stage.
type Lookuper interface {
	Lookup(ctx context.Context, title string, year *int) (*Record, error)
}

// Client provides access to the OMDb API for by-title lookups.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Lookuper = (*Client)(nil)

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

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates an OMDb client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("omdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Lookup queries OMDb by title and optional release year. A "not found"
// response returns ErrNotFound; transport failures, non-200 statuses, and
// malformed bodies return ordinary errors.
func (c *Client) Lookup(ctx context.Context, title string, year *int) (*Record, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	params := url.Values{}
	params.Set("t", title)
	if year != nil {
		params.Set("y", strconv.Itoa(*year))
	}
	params.Set("plot", "short")
	params.Set("r", "json")
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb lookup returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var body payload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}

	if !strings.EqualFold(body.Response, "True") {
		reason := strings.TrimSpace(body.Error)
		if reason == "" {
			reason = "no match"
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, reason)
	}

	return &Record{
		IMDbID:         cleanString(body.IMDbID),
		Director:       cleanString(body.Director),
		Plot:           cleanString(body.Plot),
		PosterURL:      cleanString(body.Poster),
		RuntimeMinutes: parseRuntime(body.Runtime),
		BoxOffice:      parseDollars(body.BoxOffice),
		Metascore:      parseInt(body.Metascore),
		IMDbRating:     parseFloat(body.IMDbRating),
	}, nil
}
