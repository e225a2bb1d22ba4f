// Package restapi exposes read-only operational visibility into the
// router: which tenants are currently indexed and under which profile,
// and aggregate publish counters, plus a POST /api/publish ingest
// endpoint that drives the publisher. Grounded on internal/api.Server's
// ServeMux-based route registration and writeJSON/writeError helpers.
package restapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ndrandal/odds-router/internal/tenantindex"
)

// ClientCounter reports how many operational-feed clients are currently
// connected. Satisfied by *opsfeed.Manager; accepted as an interface so
// this package doesn't import opsfeed.
type ClientCounter interface {
	ClientCount() int
}

// Server provides REST introspection endpoints over the tenant index and
// publish statistics, plus the HTTP ingest surface that drives the
// publisher.
type Server struct {
	index     *tenantindex.Index
	stats     *Stats
	feed      ClientCounter
	publisher Publisher
	startAt   time.Time
}

// NewServer creates a restapi Server. feed may be nil if the operational
// feed is disabled.
func NewServer(index *tenantindex.Index, stats *Stats, feed ClientCounter, publisher Publisher) *Server {
	return &Server{index: index, stats: stats, feed: feed, publisher: publisher, startAt: time.Now()}
}

// Register attaches restapi routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tenants", s.handleTenants)
	mux.HandleFunc("GET /api/tenants/{id}", s.handleTenantDetail)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/publish", s.handleIngest)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
