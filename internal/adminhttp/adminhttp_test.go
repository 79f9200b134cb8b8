package adminhttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/tsengine/store"
)

func TestHealthzReportsNoContentWhenStorePresent(t *testing.T) {
	st := store.New(16)
	api := New(st, time.Now())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	api.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestHealthzReportsUnavailableWithNoStore(t *testing.T) {
	api := New(nil, time.Now())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	api.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestStatsReportsStoreSize(t *testing.T) {
	st := store.New(16)
	start := time.Now().Add(-5 * time.Second)
	api := New(st, start)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	api.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.False(t, resp.ReadOnly)
	require.Equal(t, 0, resp.NumEdges)
	require.GreaterOrEqual(t, resp.UptimeSecond, int64(5))
}
