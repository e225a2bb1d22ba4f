package relstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ndrandal/odds-router/internal/oddsmodel"
)

// TenantStore implements tenantindex.TenantStore using PostgreSQL.
type TenantStore struct {
	pool *pgxpool.Pool
}

// NewTenantStore creates a TenantStore backed by the given connection pool.
func NewTenantStore(pool *pgxpool.Pool) *TenantStore {
	return &TenantStore{pool: pool}
}

// FindAllTenants returns every tenant row, including those with a null
// profile; the caller (tenantindex.Index.Refresh) is responsible for
// filtering to routable tenants.
func (s *TenantStore) FindAllTenants(ctx context.Context) ([]oddsmodel.Tenant, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, profile_id FROM tenants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("relstore: find all tenants: %w", err)
	}
	defer rows.Close()

	var tenants []oddsmodel.Tenant
	for rows.Next() {
		var t oddsmodel.Tenant
		var profileID *string
		if err := rows.Scan(&t.ID, &profileID); err != nil {
			return nil, fmt.Errorf("relstore: scan tenant: %w", err)
		}
		if profileID != nil {
			t.ProfileID = *profileID
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("relstore: find all tenants rows: %w", err)
	}
	return tenants, nil
}
