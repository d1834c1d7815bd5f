package geoclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/evyataryagoni/iplocator/internal/metrics"
)

var (
	// ErrRateLimited means the upstream answered 429 Too Many Requests
	ErrRateLimited = errors.New("upstream rate limit exceeded")

	// ErrRejected means the upstream refused the query (4xx or status=fail)
	ErrRejected = errors.New("upstream rejected the query")

	// ErrTimeout means no answer arrived within the configured timeout
	ErrTimeout = errors.New("upstream request timed out")

	// ErrIncomplete means the answer lacked city or country
	ErrIncomplete = errors.New("upstream response is missing mandatory fields")
)

// fields requested from ip-api.com; "query" echoes the IP back
const ipAPIFields = "status,message,continent,country,city,lat,lon,timezone,query"

// Result is the geolocation data for one IP
type Result struct {
	City      string
	Country   string
	Continent string
	Latitude  *float64
	Longitude *float64
	Timezone  string
}

// Client resolves an IP address through a third-party API
type Client interface {
	Lookup(ctx context.Context, ip string) (*Result, error)
}

// ipAPIResponse mirrors the JSON body of GET /json/{ip}
type ipAPIResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Continent string   `json:"continent"`
	Country   string   `json:"country"`
	City      string   `json:"city"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Timezone  string   `json:"timezone"`
	Query     string   `json:"query"`
}

// IPAPIClient talks to ip-api.com (or a compatible server)
type IPAPIClient struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures an IPAPIClient
type Option func(*IPAPIClient)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *IPAPIClient) {
		c.httpClient = client
	}
}

// WithMetrics records request latency in upstream_request_duration_seconds
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *IPAPIClient) {
		if m == nil {
			return
		}
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.httpClient.Transport = NewInstrumentedTransport(base, m.UpstreamRequestDuration)
	}
}

// New creates a client for baseURL (e.g. "http://ip-api.com").
// Every request is bounded by timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *IPAPIClient {
	c := &IPAPIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: NewHTTPClient(WithTimeout(timeout)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Lookup implements Client
func (c *IPAPIClient) Lookup(ctx context.Context, ip string) (*Result, error) {
	endpoint := fmt.Sprintf("%s/json/%s?fields=%s", c.baseURL, url.PathEscape(ip), ipAPIFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build a request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("cannot send a request: %w", err)
	}

	defer func() {
		io.Copy(io.Discard, resp.Body) // nolint: errcheck
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("cannot parse a response: %w", err)
	}

	// ip-api.com reports bad queries (private ranges, garbage) with HTTP 200
	if body.Status == "fail" {
		return nil, fmt.Errorf("%w: %s", ErrRejected, body.Message)
	}

	if strings.TrimSpace(body.City) == "" || strings.TrimSpace(body.Country) == "" {
		return nil, ErrIncomplete
	}

	return &Result{
		City:      body.City,
		Country:   body.Country,
		Continent: body.Continent,
		Latitude:  body.Lat,
		Longitude: body.Lon,
		Timezone:  body.Timezone,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
