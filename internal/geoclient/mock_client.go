package geoclient

import (
	"context"
	"sync"
)

// MockClient is a test double for the Client interface
type MockClient struct {
	mu sync.Mutex

	// Results maps IP -> answer; unknown IPs get ErrRejected
	Results map[string]*Result

	// Err, when set, is returned for every lookup
	Err error

	// LookupCalls lists the IPs Lookup was called with
	LookupCalls []string
}

// NewMockClient creates a mock answering for 8.8.8.8 and 1.1.1.1
func NewMockClient() *MockClient {
	lat1, lon1 := 37.386, -122.0838
	lat2, lon2 := -33.494, 143.2104

	return &MockClient{
		Results: map[string]*Result{
			"8.8.8.8": {
				City:      "Mountain View",
				Country:   "United States",
				Continent: "North America",
				Latitude:  &lat1,
				Longitude: &lon1,
				Timezone:  "America/Los_Angeles",
			},
			"1.1.1.1": {
				City:      "Sydney",
				Country:   "Australia",
				Continent: "Oceania",
				Latitude:  &lat2,
				Longitude: &lon2,
				Timezone:  "Australia/Sydney",
			},
		},
		LookupCalls: []string{},
	}
}

// Lookup implements Client
func (m *MockClient) Lookup(ctx context.Context, ip string) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LookupCalls = append(m.LookupCalls, ip)

	if m.Err != nil {
		return nil, m.Err
	}

	result, ok := m.Results[ip]
	if !ok {
		return nil, ErrRejected
	}

	copied := *result
	return &copied, nil
}

// Calls returns how many lookups were made
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.LookupCalls)
}
