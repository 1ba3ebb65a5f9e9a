package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/Paintersrp/mdview/internal/record"
)

// ErrNoBaseURL is returned when the catalog has no address configured.
var ErrNoBaseURL = errors.New("catalog base url not configured")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Query describes a catalog search request.
type Query struct {
	UUID        string
	Any         string
	Fast        string
	ContentType string
	From        int
	To          int
}

// Values encodes the query as search parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.UUID != "" {
		v.Set("uuid", q.UUID)
	}
	if q.Any != "" {
		v.Set("any", q.Any)
	}
	if q.Fast != "" {
		v.Set("fast", q.Fast)
	}
	contentType := q.ContentType
	if contentType == "" {
		contentType = "json"
	}
	v.Set("_content_type", contentType)
	if q.From > 0 {
		v.Set("from", strconv.Itoa(q.From))
	}
	if q.To > 0 {
		v.Set("to", strconv.Itoa(q.To))
	}
	return v
}

// QueryFromValues reads a query back from search parameters.
func QueryFromValues(v url.Values) Query {
	from, _ := strconv.Atoi(v.Get("from"))
	to, _ := strconv.Atoi(v.Get("to"))
	return Query{
		UUID:        v.Get("uuid"),
		Any:         v.Get("any"),
		Fast:        v.Get("fast"),
		ContentType: v.Get("_content_type"),
		From:        from,
		To:          to,
	}
}

// SearchResponse is one page of catalog records.
type SearchResponse struct {
	Summary  Summary
	Metadata []*record.Metadata
}

// Summary carries the hit count reported by the catalog.
type Summary struct {
	Count int
}

// UnmarshalJSON accepts the catalog emitting a single record as an object
// rather than a one element list, and counts as strings.
func (r *SearchResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Summary struct {
			Count json.Number `json:"@count"`
		} `json:"summary"`
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Summary = Summary{}
	if raw.Summary.Count != "" {
		if n, err := strconv.Atoi(raw.Summary.Count.String()); err == nil {
			r.Summary.Count = n
		}
	}

	r.Metadata = nil
	trimmed := strings.TrimSpace(string(raw.Metadata))
	switch {
	case trimmed == "" || trimmed == "null":
	case strings.HasPrefix(trimmed, "["):
		if err := json.Unmarshal(raw.Metadata, &r.Metadata); err != nil {
			return fmt.Errorf("decode metadata list: %w", err)
		}
	default:
		var single record.Metadata
		if err := json.Unmarshal(raw.Metadata, &single); err != nil {
			return fmt.Errorf("decode metadata: %w", err)
		}
		r.Metadata = []*record.Metadata{&single}
	}
	if r.Summary.Count == 0 {
		r.Summary.Count = len(r.Metadata)
	}
	return nil
}

// Client talks to the catalog's search and formatter endpoints.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	searchPath string

	http   *http.Client
	logger *slog.Logger
}

// NewClient returns a client for the catalog at baseURL. A nil httpClient
// uses http.DefaultClient, leaving timeouts to the transport.
func NewClient(baseURL, searchPath string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		searchPath: searchPath,
		http:       httpClient,
		logger:     logger,
	}
}

// SetEndpoint swaps the catalog address, for example after a config reload.
func (c *Client) SetEndpoint(baseURL, searchPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = baseURL
	c.searchPath = searchPath
}

// SearchURL returns the address a query is sent to.
func (c *Client) SearchURL(q Query) (string, error) {
	c.mu.RLock()
	base, path := c.baseURL, c.searchPath
	c.mu.RUnlock()

	if strings.TrimSpace(base) == "" {
		return "", ErrNoBaseURL
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parse search url: %w", err)
	}
	u.RawQuery = q.Values().Encode()
	return u.String(), nil
}

// Search runs q against the catalog.
func (c *Client) Search(ctx context.Context, q Query) (*SearchResponse, error) {
	target, err := c.SearchURL(q)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, target, "application/json")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var resp SearchResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	c.logger.Debug("catalog: search", "url", target, "records", len(resp.Metadata))
	return &resp, nil
}

// Fetch retrieves a formatter fragment as text.
func (c *Client) Fetch(ctx context.Context, target string) (string, error) {
	body, err := c.get(ctx, target, "text/html")
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read fragment: %w", err)
	}
	c.logger.Debug("catalog: fragment", "url", target, "bytes", len(data))
	return string(data), nil
}

func (c *Client) get(ctx context.Context, target, accept string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}
