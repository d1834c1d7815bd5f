package geoclient

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InstrumentedTransport wraps http.RoundTripper to measure request duration
type InstrumentedTransport struct {
	base      http.RoundTripper
	histogram *prometheus.HistogramVec
}

// NewInstrumentedTransport creates a transport that records metrics.
// histogram must have the labels endpoint, status, method.
func NewInstrumentedTransport(base http.RoundTripper, histogram *prometheus.HistogramVec) *InstrumentedTransport {
	return &InstrumentedTransport{
		base:      base,
		histogram: histogram,
	}
}

func (t *InstrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start).Seconds()

	status := "error"
	if err == nil {
		status = statusCategory(resp.StatusCode)
	}

	t.histogram.WithLabelValues(extractEndpoint(req.URL.Path), status, req.Method).Observe(duration)

	return resp, err
}

// extractEndpoint keeps only the first path segment so that the IP in
// /json/8.8.8.8 does not become a label value.
func extractEndpoint(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "root"
	}
	return strings.SplitN(trimmed, "/", 2)[0]
}

// statusCategory converts HTTP status code to category
func statusCategory(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code == http.StatusTooManyRequests:
		return "429"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "other"
	}
}
