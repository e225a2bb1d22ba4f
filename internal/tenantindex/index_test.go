package tenantindex

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/ndrandal/odds-router/internal/oddsmodel"
)

type fakeTenantStore struct {
	tenants []oddsmodel.Tenant
	err     error
}

func (f *fakeTenantStore) FindAllTenants(ctx context.Context) ([]oddsmodel.Tenant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tenants, nil
}

func TestRefreshExcludesUnroutableTenants(t *testing.T) {
	store := &fakeTenantStore{tenants: []oddsmodel.Tenant{
		{ID: "t1", ProfileID: "p1"},
		{ID: "t2", ProfileID: ""},
		{ID: "t3", ProfileID: "p2"},
	}}
	idx := New(store)

	if err := idx.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if _, ok := idx.Get("t2"); ok {
		t.Fatal("t2 has no profile and should not be indexed")
	}
	if p, ok := idx.Get("t1"); !ok || p != "p1" {
		t.Fatalf("Get(t1) = %q, %v", p, ok)
	}

	tenants := idx.Tenants()
	sort.Strings(tenants)
	if len(tenants) != 2 {
		t.Fatalf("want 2 routable tenants, got %v", tenants)
	}
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	store := &fakeTenantStore{tenants: []oddsmodel.Tenant{{ID: "t1", ProfileID: "p1"}}}
	idx := New(store)
	if err := idx.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	store.err = errors.New("store unavailable")
	if err := idx.Refresh(context.Background()); err == nil {
		t.Fatal("expected Refresh to surface the store error")
	}

	if p, ok := idx.Get("t1"); !ok || p != "p1" {
		t.Fatalf("previous snapshot should remain in effect, got %q, %v", p, ok)
	}
}

func TestGroupByProfile(t *testing.T) {
	store := &fakeTenantStore{tenants: []oddsmodel.Tenant{
		{ID: "t1", ProfileID: "p1"},
		{ID: "t2", ProfileID: "p1"},
		{ID: "t3", ProfileID: "p2"},
	}}
	idx := New(store)
	if err := idx.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	groups := idx.GroupByProfile()
	p1 := groups["p1"]
	sort.Strings(p1)
	if len(p1) != 2 || p1[0] != "t1" || p1[1] != "t2" {
		t.Fatalf("GroupByProfile()[p1] = %v", p1)
	}

	byProfile := idx.TenantsByProfile("p2")
	if len(byProfile) != 1 || byProfile[0] != "t3" {
		t.Fatalf("TenantsByProfile(p2) = %v", byProfile)
	}
}
