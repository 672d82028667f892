package middleware

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestMetrics_Register(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()

	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	m.IncRateLimitRequests("/recommendations", "user")
	m.IncRateLimitBlocked("/recommendations", "user")

	for _, name := range []string{MetricRateLimitRequests, MetricRateLimitBlocked} {
		if gatherFamily(t, reg, name) == nil {
			t.Errorf("metric %s not found in registry", name)
		}
	}
}

func TestMetrics_NamesCarryServicePrefix(t *testing.T) {
	names := []string{
		MetricRateLimitRequests,
		MetricRateLimitBlocked,
		MetricRateLimitRedisErrors,
		MetricHTTPRequestDuration,
		MetricHTTPRequestsTotal,
		MetricHTTPResponseSize,
	}
	for _, name := range names {
		if !strings.HasPrefix(name, "gigfeed_") {
			t.Errorf("metric %s missing gigfeed_ prefix", name)
		}
	}
}

func TestMetrics_IncRateLimitRequests(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	m.IncRateLimitRequests("/recommendations", "user")
	m.IncRateLimitRequests("/recommendations", "user")
	m.IncRateLimitRequests("/profiles", "ip")

	mf := gatherFamily(t, reg, MetricRateLimitRequests)
	if mf == nil {
		t.Fatalf("%s not found", MetricRateLimitRequests)
	}
	if got := len(mf.GetMetric()); got != 2 {
		t.Errorf("expected 2 label combinations, got %d", got)
	}
}

func TestMetrics_IncRateLimitBlocked(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	m.IncRateLimitBlocked("/admin/events", "ip")
	m.IncRateLimitBlocked("/admin/events", "ip")

	mf := gatherFamily(t, reg, MetricRateLimitBlocked)
	if mf == nil {
		t.Fatalf("%s not found", MetricRateLimitBlocked)
	}
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Errorf("expected counter value 2, got %g", got)
	}
}

func TestMetrics_ObserveHTTPRequest(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	m.ObserveHTTPRequest("POST", "/recommendations", "200", 0.012, 2048)
	m.ObserveHTTPRequest("POST", "/recommendations", "200", 0.030, 1024)
	m.ObserveHTTPRequest("GET", "/events/{id}", "404", 0.002, 87)

	total := gatherFamily(t, reg, MetricHTTPRequestsTotal)
	if total == nil {
		t.Fatalf("%s not found", MetricHTTPRequestsTotal)
	}
	if got := len(total.GetMetric()); got != 2 {
		t.Errorf("expected 2 label combinations, got %d", got)
	}

	dur := gatherFamily(t, reg, MetricHTTPRequestDuration)
	if dur == nil {
		t.Fatalf("%s not found", MetricHTTPRequestDuration)
	}
	for _, metric := range dur.GetMetric() {
		for _, lbl := range metric.GetLabel() {
			if lbl.GetName() == "path" && lbl.GetValue() == "/recommendations" {
				if got := metric.GetHistogram().GetSampleCount(); got != 2 {
					t.Errorf("expected 2 duration samples, got %d", got)
				}
			}
		}
	}

	size := gatherFamily(t, reg, MetricHTTPResponseSize)
	if size == nil {
		t.Fatalf("%s not found", MetricHTTPResponseSize)
	}
}

func TestMetrics_Collectors(t *testing.T) {
	m := NewMetrics()
	if got := len(m.Collectors()); got != 6 {
		t.Errorf("expected 6 collectors, got %d", got)
	}
}
