package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.Transition("approved")
	m.Notification("new_submission")
	m.Search()
	m.Login("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `awakened_submission_transitions_total{status="approved"} 1`)
	assert.Contains(t, string(body), `awakened_notifications_total{type="new_submission"} 1`)
	assert.Contains(t, string(body), `awakened_search_queries_total 1`)
	assert.Contains(t, string(body), `awakened_logins_total{outcome="ok"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Transition("approved")
		m.Notification("demo")
		m.Search()
		m.Login("invalid")
	})
}
