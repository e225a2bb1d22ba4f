package relstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ndrandal/odds-router/internal/oddsmodel"
)

// BoostStore implements the two boost-catalog queries spec §6 names:
// ForProfileAndFixture and FindByFixtures. Both order by the boost row's
// primary key so that "first-seen" duplicate-marketKey dedup downstream is
// deterministic, per spec §9(c).
type BoostStore struct {
	pool *pgxpool.Pool
}

// NewBoostStore creates a BoostStore backed by the given connection pool.
func NewBoostStore(pool *pgxpool.Pool) *BoostStore {
	return &BoostStore{pool: pool}
}

const boostCols = `profile_id, market_id, market_specifier, strategy, percent`

func scanBoost(row pgx.Row) (oddsmodel.BoostConfig, error) {
	var b oddsmodel.BoostConfig
	var percent string
	if err := row.Scan(&b.ProfileID, &b.MarketID, &b.MarketSpecifier, &b.Strategy, &percent); err != nil {
		return oddsmodel.BoostConfig{}, err
	}
	dec, err := decimal.NewFromString(percent)
	if err != nil {
		return oddsmodel.BoostConfig{}, fmt.Errorf("relstore: parse percent %q: %w", percent, err)
	}
	b.Percent = dec
	return b, nil
}

// ForProfileAndFixture returns every boost configured for profileID
// against the given fixture URN, ordered by id (insertion order),
// implementing router.BoostCatalog.
func (s *BoostStore) ForProfileAndFixture(ctx context.Context, profileID, fixtureURN string) ([]oddsmodel.BoostConfig, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+boostCols+` FROM boost_configs WHERE profile_id = $1 AND fixture_urn = $2 ORDER BY id`,
		profileID, fixtureURN)
	if err != nil {
		return nil, fmt.Errorf("relstore: find boosts for profile %s fixture %s: %w", profileID, fixtureURN, err)
	}
	defer rows.Close()
	return scanBoosts(rows)
}

// ForFixtureAllProfiles returns every boost configured for the given
// fixture URN across all profiles, ordered by id, implementing
// router.BoostCatalog. It also satisfies spec §6's findByFixtures(urns)
// contract for the (common) single-fixture case the router calls.
func (s *BoostStore) ForFixtureAllProfiles(ctx context.Context, fixtureURN string) ([]oddsmodel.BoostConfig, error) {
	return s.FindByFixtures(ctx, []string{fixtureURN})
}

// FindByFixtures returns every boost configured for any of the given
// fixture URNs, across all profiles, ordered by id. This is spec §6's
// "Boost store" collaborator contract; ForFixtureAllProfiles narrows it to
// the single-fixture shape the router's BoostCatalog interface expects.
func (s *BoostStore) FindByFixtures(ctx context.Context, fixtureURNs []string) ([]oddsmodel.BoostConfig, error) {
	if len(fixtureURNs) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+boostCols+` FROM boost_configs WHERE fixture_urn = ANY($1) ORDER BY id`,
		fixtureURNs)
	if err != nil {
		return nil, fmt.Errorf("relstore: find boosts for fixtures %v: %w", fixtureURNs, err)
	}
	defer rows.Close()
	return scanBoosts(rows)
}

func scanBoosts(rows pgx.Rows) ([]oddsmodel.BoostConfig, error) {
	var out []oddsmodel.BoostConfig
	for rows.Next() {
		b, err := scanBoost(rows)
		if err != nil {
			return nil, fmt.Errorf("relstore: scan boost config: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("relstore: boost rows: %w", err)
	}
	return out, nil
}
