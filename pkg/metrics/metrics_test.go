package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func gatherNames(t *testing.T, registry *prometheus.Registry) map[string]bool {
	t.Helper()

	mfs, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	names := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	return names
}

func TestNewAdmissionMetrics_CreatesAllMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewAdmissionMetrics(registry)

	if m == nil {
		t.Fatal("NewAdmissionMetrics returned nil")
	}

	if m.enqueuedTotal == nil {
		t.Error("enqueuedTotal not initialized")
	}
	if m.completedTotal == nil {
		t.Error("completedTotal not initialized")
	}
	if m.waitDuration == nil {
		t.Error("waitDuration not initialized")
	}
	if m.runDuration == nil {
		t.Error("runDuration not initialized")
	}
	if m.queueDepth == nil {
		t.Error("queueDepth not initialized")
	}
	if m.active == nil {
		t.Error("active not initialized")
	}
}

func TestNewAdmissionMetrics_NilRegistry(t *testing.T) {
	m := NewAdmissionMetrics(nil)
	if m == nil {
		t.Fatal("NewAdmissionMetrics returned nil")
	}

	// Must not panic without a registry.
	m.ObserveEnqueued("normal")
	m.ObserveDispatched(time.Millisecond)
	m.ObserveCompleted(true, time.Millisecond)
	m.SetQueueDepth(3)
	m.SetActive(1)
}

func TestAdmissionMetrics_RecordsObservations(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewAdmissionMetrics(registry)

	m.ObserveEnqueued("high")
	m.ObserveEnqueued("normal")
	m.ObserveDispatched(10 * time.Millisecond)
	m.ObserveCompleted(true, 50*time.Millisecond)
	m.ObserveCompleted(false, 5*time.Millisecond)
	m.SetQueueDepth(2)
	m.SetActive(1)

	names := gatherNames(t, registry)

	for _, want := range []string{
		"chunkstream_admission_enqueued_total",
		"chunkstream_admission_completed_total",
		"chunkstream_admission_wait_duration_seconds",
		"chunkstream_admission_run_duration_seconds",
		"chunkstream_admission_queue_depth",
		"chunkstream_admission_active",
	} {
		if !names[want] {
			t.Errorf("Expected %s metric", want)
		}
	}
}

func TestNewEngineMetrics_CreatesAllMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewEngineMetrics(registry)

	if m == nil {
		t.Fatal("NewEngineMetrics returned nil")
	}

	if m.cacheTotal == nil {
		t.Error("cacheTotal not initialized")
	}
	if m.fetchTotal == nil {
		t.Error("fetchTotal not initialized")
	}
	if m.fetchDuration == nil {
		t.Error("fetchDuration not initialized")
	}
	if m.fetchBytes == nil {
		t.Error("fetchBytes not initialized")
	}
	if m.verifyFailures == nil {
		t.Error("verifyFailures not initialized")
	}
}

func TestEngineMetrics_RecordsObservations(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewEngineMetrics(registry)

	m.ObserveCacheHit()
	m.ObserveCacheMiss()
	m.ObserveFetch(true, 1048576, 20*time.Millisecond)
	m.ObserveFetch(false, 0, time.Millisecond)
	m.ObserveVerifyFailure()

	names := gatherNames(t, registry)

	for _, want := range []string{
		"chunkstream_engine_cache_lookups_total",
		"chunkstream_engine_fetch_total",
		"chunkstream_engine_fetch_duration_seconds",
		"chunkstream_engine_fetch_bytes",
		"chunkstream_engine_verify_failures_total",
	} {
		if !names[want] {
			t.Errorf("Expected %s metric", want)
		}
	}
}

func TestEngineMetrics_DoubleRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewEngineMetrics(registry)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate registration")
		}
	}()
	NewEngineMetrics(registry)
}
