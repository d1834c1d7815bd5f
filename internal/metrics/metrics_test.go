package metrics

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_SeparateRegistries(t *testing.T) {
	// Two instances must not collide when each has its own registry
	m1 := New(prometheus.NewRegistry())
	m2 := New(prometheus.NewRegistry())

	m1.LocationResolutionsTotal.WithLabelValues("fetched").Inc()

	if got := testutil.ToFloat64(m1.LocationResolutionsTotal.WithLabelValues("fetched")); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(m2.LocationResolutionsTotal.WithLabelValues("fetched")); got != 0 {
		t.Errorf("expected 0 on second instance, got %v", got)
	}
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	New(reg)
}

func TestNew_CollectorsRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/locations", "200").Inc()
	m.CacheLookupsTotal.WithLabelValues("memory", "hit").Inc()

	count, err := testutil.GatherAndCount(reg, "iplocator_http_requests_total", "iplocator_cache_lookups_total")
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 series, got %d", count)
	}
}

func TestRegisterDBStats(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	m := New(reg)

	if err := m.RegisterDBStats(db, "mysql"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := testutil.GatherAndCount(reg, "go_sql_open_connections")
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 pool series, got %d", count)
	}

	// registering the same pool twice is an error, not a panic
	if err := m.RegisterDBStats(db, "mysql"); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestRegisterDBStats_NilMetrics(t *testing.T) {
	var m *Metrics
	if err := m.RegisterDBStats(nil, "mysql"); err != nil {
		t.Errorf("expected nil metrics to be a no-op, got %v", err)
	}
}
