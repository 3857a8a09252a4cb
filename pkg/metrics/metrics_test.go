package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveCompileIncrementsCountersByOutcome(t *testing.T) {
	m := New("gbsc_test_observe")
	m.ObserveCompile("ok", 0.25, 42)
	m.ObserveCompile("error", 0.01, 0)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, `gbsc_test_observe_compiles_total{outcome="ok"} 1`)
	assert.Contains(t, body, `gbsc_test_observe_compiles_total{outcome="error"} 1`)
	assert.Contains(t, body, "gbsc_test_observe_instructions_emitted")
}

func TestMetrics_ObserveCacheHitAndMiss(t *testing.T) {
	m := New("gbsc_test_cache")
	m.ObserveCacheHit()
	m.ObserveCacheHit()
	m.ObserveCacheMiss()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	require.True(t, strings.Contains(body, "gbsc_test_cache_cache_hits_total 2"))
	require.True(t, strings.Contains(body, "gbsc_test_cache_cache_misses_total 1"))
}
