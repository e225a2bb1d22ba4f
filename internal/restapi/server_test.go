package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndrandal/odds-router/internal/oddsmodel"
	"github.com/ndrandal/odds-router/internal/router"
	"github.com/ndrandal/odds-router/internal/tenantindex"
)

type fakeStore struct {
	tenants []oddsmodel.Tenant
}

func (f *fakeStore) FindAllTenants(_ context.Context) ([]oddsmodel.Tenant, error) {
	return f.tenants, nil
}

type fakeFeed struct{ count int }

func (f fakeFeed) ClientCount() int { return f.count }

type fakePublisher struct {
	lastRoute oddsmodel.RouteParameters
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, _ oddsmodel.Message, _ string, route oddsmodel.RouteParameters, _ map[string]string) error {
	f.lastRoute = route
	return f.err
}

func newTestServer(t *testing.T) (*Server, *http.ServeMux) {
	t.Helper()
	idx := tenantindex.New(&fakeStore{tenants: []oddsmodel.Tenant{
		{ID: "t1", ProfileID: "p1"},
		{ID: "t2", ProfileID: "p1"},
	}})
	if err := idx.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	s := NewServer(idx, NewStats(), fakeFeed{count: 2}, &fakePublisher{})
	mux := http.NewServeMux()
	s.Register(mux)
	return s, mux
}

func TestHandleTenants(t *testing.T) {
	_, mux := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tenants", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out []tenantInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 || out[0].ID != "t1" || out[1].ID != "t2" {
		t.Fatalf("got %+v, want sorted t1,t2", out)
	}
}

func TestHandleTenantDetailNotFound(t *testing.T) {
	_, mux := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tenants/unknown", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleStatsReflectsEmittedEvents(t *testing.T) {
	s, mux := newTestServer(t)
	s.stats.Emit(router.Event{Route: router.RouteBroadcast, TenantCount: 2, Boosted: true})

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var out statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.PublishCount != 1 || out.TenantCalls != 2 || out.BoostedCount != 1 {
		t.Fatalf("got %+v", out)
	}
	if out.OpsFeedCount != 2 {
		t.Fatalf("opsFeedClients = %d, want 2", out.OpsFeedCount)
	}
	if out.TenantCount != 2 {
		t.Fatalf("tenantCount = %d, want 2", out.TenantCount)
	}
}

func TestHandleIngestBroadcast(t *testing.T) {
	s, mux := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"message":  oddsmodel.Message{EventID: "sr:match:1", Product: oddsmodel.ProductPrematch},
		"sportUrn": "sr:sport:1",
		"route":    map[string]string{"kind": "broadcast"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/publish", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	fp := s.publisher.(*fakePublisher)
	if fp.lastRoute.Kind != oddsmodel.RouteBroadcast {
		t.Fatalf("route kind = %v, want broadcast", fp.lastRoute.Kind)
	}
}

func TestHandleIngestUnknownRouteKind(t *testing.T) {
	_, mux := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"message":  oddsmodel.Message{EventID: "sr:match:1"},
		"sportUrn": "sr:sport:1",
		"route":    map[string]string{"kind": "bogus"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/publish", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
