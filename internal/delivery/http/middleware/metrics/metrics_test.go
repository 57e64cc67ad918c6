package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	mwMetrics "chatterbox/internal/delivery/http/middleware/metrics"
	"chatterbox/internal/pkg/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(mwMetrics.PrometheusMiddleware)
	r.Delete("/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues("/messages/{id}", http.MethodDelete, "204")
	before := testutil.ToFloat64(counter)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/messages/7", nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}

func TestPrometheusMiddlewareWithoutRouter(t *testing.T) {
	h := mwMetrics.PrometheusMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	counter := metrics.HTTPRequestsTotal.WithLabelValues("unknown", http.MethodGet, "200")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
