package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveUpstream(t *testing.T) {
	m := New()

	m.ObserveUpstream("venues.list", 200, 20*time.Millisecond)
	m.ObserveUpstream("venues.list", 200, 10*time.Millisecond)
	m.ObserveUpstream("venues.list", 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("venues.list", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("venues.list", "error")))
}

func TestMutationOutcome(t *testing.T) {
	m := New()

	m.Mutation("booking.create", nil)
	m.Mutation("booking.create", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("booking.create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("booking.create", "failed")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveUpstream("x", 200, time.Second)
		m.PageFetched()
		m.DirectorySize(3)
		m.SessionChanged(true)
		m.Mutation("x", nil)
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.PageFetched()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "holidaze_directory_pages_fetched_total 1"))
}
