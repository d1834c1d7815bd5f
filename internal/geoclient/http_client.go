package geoclient

import (
	"net"
	"net/http"
	"time"
)

// NewDefaultHTTPClient creates an HTTP client with sensible timeout defaults
func NewDefaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second, // Overall request timeout
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   3 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,

			TLSHandshakeTimeout:   3 * time.Second,
			ResponseHeaderTimeout: 5 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,

			// A single upstream host
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// ClientOption is a function that configures an HTTP client
type ClientOption func(*http.Client)

// WithTimeout sets the overall request timeout. Non-positive values keep
// the default.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *http.Client) {
		if timeout <= 0 {
			return
		}
		c.Timeout = timeout
		if transport, ok := c.Transport.(*http.Transport); ok && transport.ResponseHeaderTimeout > timeout {
			transport.ResponseHeaderTimeout = timeout
		}
	}
}

// NewHTTPClient creates an HTTP client with options pattern
func NewHTTPClient(opts ...ClientOption) *http.Client {
	client := NewDefaultHTTPClient()

	for _, opt := range opts {
		opt(client)
	}

	return client
}
