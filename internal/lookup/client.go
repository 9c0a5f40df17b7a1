package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/baaaaaaaka/jdeps/internal/deps"
)

const (
	DefaultEndpoint    = "https://search.maven.org/solrsearch/select"
	DefaultRows        = 100
	DefaultTimeout     = 10 * time.Second
	DefaultRetries     = 2
	DefaultMinInterval = 250 * time.Millisecond
	DefaultBackoff     = 200 * time.Millisecond

	maxBackoff = 2 * time.Second
)

type Options struct {
	Endpoint    string
	Rows        int
	Timeout     time.Duration
	Retries     int
	MinInterval time.Duration

	// Backoff is the delay before the first retry; it doubles per attempt.
	Backoff time.Duration

	// Proxy is a socks5://, socks5h://, http:// or https:// URL. Empty means
	// the environment proxy settings.
	Proxy string
}

// StatusError reports a non-2xx response from the search endpoint.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search request failed: %s", e.Status)
}

func (e *StatusError) retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Client resolves a query string into the artifacts whose id matches it.
type Client struct {
	endpoint string
	rows     int
	retries  int
	backoff  time.Duration
	http     *http.Client
	limiter  *rate.Limiter
}

type searchResponse struct {
	Response struct {
		Docs []searchDoc `json:"docs"`
	} `json:"response"`
}

type searchDoc struct {
	G             string `json:"g"`
	A             string `json:"a"`
	LatestVersion string `json:"latestVersion"`
}

func New(opts Options) (*Client, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("endpoint %q must be an absolute URL", endpoint)
	}
	rows := opts.Rows
	if rows <= 0 {
		rows = DefaultRows
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	transport, err := newTransport(opts.Proxy, timeout)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &Client{
		endpoint: endpoint,
		rows:     rows,
		retries:  retries,
		backoff:  backoff,
		http:     &http.Client{Timeout: timeout, Transport: transport},
		limiter:  rate.NewLimiter(limit, 1),
	}, nil
}

// Lookup performs the search, retrying transport failures and 5xx/429
// responses up to the configured number of times with exponential backoff.
func (c *Client) Lookup(ctx context.Context, query string) ([]deps.Dependency, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.retryDelay(attempt)); err != nil {
				return nil, lastErr
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, err
		}
		found, retry, err := c.fetch(ctx, query)
		if err == nil {
			return found, nil
		}
		if !retry || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) retryDelay(attempt int) time.Duration {
	d := c.backoff
	for i := 1; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	return min(d, maxBackoff)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) searchURL(query string) string {
	v := url.Values{}
	v.Set("q", "a:"+query)
	v.Set("rows", strconv.Itoa(c.rows))
	v.Set("wt", "json")
	return c.endpoint + "?" + v.Encode()
}

func (c *Client) fetch(ctx context.Context, query string) ([]deps.Dependency, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(query), nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", "jdeps")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		se := &StatusError{Code: resp.StatusCode, Status: resp.Status}
		return nil, se.retryable(), se
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read search response: %w", err)
	}
	found, err := parseResponse(body)
	if err != nil {
		return nil, false, err
	}
	return found, false, nil
}

func parseResponse(body []byte) ([]deps.Dependency, error) {
	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	out := make([]deps.Dependency, 0, len(parsed.Response.Docs))
	for _, doc := range parsed.Response.Docs {
		out = append(out, deps.Dependency{
			GroupID:    doc.G,
			ArtifactID: doc.A,
			Version:    doc.LatestVersion,
		})
	}
	return out, nil
}
