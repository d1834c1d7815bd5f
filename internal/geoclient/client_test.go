package geoclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evyataryagoni/iplocator/internal/metrics"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestLookup_Success(t *testing.T) {
	var gotPath, gotFields string
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFields = r.URL.Query().Get("fields")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","continent":"North America","country":"United States",` +
			`"city":"Mountain View","lat":37.386,"lon":-122.0838,"timezone":"America/Los_Angeles","query":"8.8.8.8"}`))
	})

	client := New(server.URL, time.Second)
	result, err := client.Lookup(context.Background(), "8.8.8.8")
	require.NoError(t, err)

	assert.Equal(t, "/json/8.8.8.8", gotPath)
	assert.Equal(t, ipAPIFields, gotFields)
	assert.Equal(t, "Mountain View", result.City)
	assert.Equal(t, "United States", result.Country)
	assert.Equal(t, "North America", result.Continent)
	assert.Equal(t, "America/Los_Angeles", result.Timezone)
	require.NotNil(t, result.Latitude)
	require.NotNil(t, result.Longitude)
	assert.InDelta(t, 37.386, *result.Latitude, 1e-9)
	assert.InDelta(t, -122.0838, *result.Longitude, 1e-9)
}

func TestLookup_MissingCoordinates(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","country":"Israel","city":"Tel Aviv"}`))
	})

	result, err := New(server.URL, time.Second).Lookup(context.Background(), "2.2.2.2")
	require.NoError(t, err)
	assert.Nil(t, result.Latitude)
	assert.Nil(t, result.Longitude)
	assert.Empty(t, result.Continent)
}

func TestLookup_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"rate limited", http.StatusTooManyRequests, ``, ErrRateLimited},
		{"bad request", http.StatusBadRequest, ``, ErrRejected},
		{"status fail", http.StatusOK, `{"status":"fail","message":"private range","query":"10.0.0.1"}`, ErrRejected},
		{"missing city", http.StatusOK, `{"status":"success","country":"Germany","city":""}`, ErrIncomplete},
		{"missing country", http.StatusOK, `{"status":"success","country":" ","city":"Berlin"}`, ErrIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := New(server.URL, time.Second).Lookup(context.Background(), "10.0.0.1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLookup_ServerError(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := New(server.URL, time.Second).Lookup(context.Background(), "8.8.8.8")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRejected))
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.Contains(t, err.Error(), "502")
}

func TestLookup_MalformedBody(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	})

	_, err := New(server.URL, time.Second).Lookup(context.Background(), "8.8.8.8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot parse a response")
}

func TestLookup_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	start := time.Now()
	_, err := New(server.URL, 50*time.Millisecond).Lookup(context.Background(), "8.8.8.8")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestLookup_ContextDeadline(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := New(server.URL, 5*time.Second).Lookup(ctx, "8.8.8.8")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestLookup_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(url, time.Second).Lookup(context.Background(), "8.8.8.8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot send a request")
}

func TestWithMetrics_RecordsUpstreamDuration(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","country":"Australia","city":"Sydney"}`))
	})

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	_, err := New(server.URL, time.Second, WithMetrics(m)).Lookup(context.Background(), "1.1.1.1")
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "iplocator_upstream_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestExtractEndpoint(t *testing.T) {
	assert.Equal(t, "json", extractEndpoint("/json/8.8.8.8"))
	assert.Equal(t, "root", extractEndpoint("/"))
	assert.Equal(t, "batch", extractEndpoint("batch"))
}

func TestStatusCategory(t *testing.T) {
	assert.Equal(t, "2xx", statusCategory(200))
	assert.Equal(t, "429", statusCategory(429))
	assert.Equal(t, "4xx", statusCategory(404))
	assert.Equal(t, "5xx", statusCategory(503))
	assert.Equal(t, "other", statusCategory(302))
}

func TestMockClient(t *testing.T) {
	mock := NewMockClient()

	result, err := mock.Lookup(context.Background(), "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, "Mountain View", result.City)

	_, err = mock.Lookup(context.Background(), "9.9.9.9")
	assert.ErrorIs(t, err, ErrRejected)

	mock.Err = ErrRateLimited
	_, err = mock.Lookup(context.Background(), "8.8.8.8")
	assert.ErrorIs(t, err, ErrRateLimited)

	assert.Equal(t, 3, mock.Calls())
	assert.Equal(t, []string{"8.8.8.8", "9.9.9.9", "8.8.8.8"}, mock.LookupCalls)
}
