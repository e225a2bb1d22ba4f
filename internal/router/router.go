// Package router implements the top-level publish entry point: it
// inspects RouteParameters, resolves boosts, selects the target tenant
// set, and emits one broker call per (message, tenant) pair. Grounded on
// internal/session.Manager.Broadcast's fan-out-with-lazy-shared-work
// pattern (compute an encoded/boosted form once, reuse across targets).
package router

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ndrandal/odds-router/internal/boostapply"
	"github.com/ndrandal/odds-router/internal/oddsmodel"
	"github.com/ndrandal/odds-router/internal/routererr"
	"github.com/ndrandal/odds-router/internal/urn"
)

// BoostCatalog is the read-through adapter over the boost-config store
// spec §6 names: two queries, one scoped to a single profile's view of a
// fixture, one spanning every profile for a set of fixtures.
type BoostCatalog interface {
	ForProfileAndFixture(ctx context.Context, profileID, fixtureURN string) ([]oddsmodel.BoostConfig, error)
	ForFixtureAllProfiles(ctx context.Context, fixtureURN string) ([]oddsmodel.BoostConfig, error)
}

// MarketMappingCache answers "is market M primary for sport S?".
type MarketMappingCache interface {
	IsPrimaryMarket(ctx context.Context, marketID int, sportURN string) bool
}

// TenantIndex is the subset of tenantindex.Index the router consults.
// Router calls every method against the same Index value within one
// Publish call, which is sufficient for snapshot consistency since the
// Index itself captures a single snapshot per call internally.
type TenantIndex interface {
	Get(tenantID string) (profileID string, ok bool)
	Tenants() []string
	TenantsByProfile(profileID string) []string
	GroupByProfile() map[string][]string
}

// Broker is the downstream contract the publisher calls once per target
// tenant.
type Broker interface {
	Publish(ctx context.Context, message oddsmodel.Message, sportID int64, nodeID, tenantID string, headers map[string]string) error
}

// Archiver is the optional feed-log sink. profileID is empty for the
// "null" profile case (broadcast of a non-boosted or boost-unavailable
// message).
type Archiver interface {
	Archive(profileID string, message oddsmodel.Message)
}

// Telemetry receives one Event per completed Publish call, for the
// operational feed. Optional — Publisher works with a nil Telemetry.
type Telemetry interface {
	Emit(Event)
}

// Publisher is the router/publish entry point, constructed with handles
// to every collaborator spec §9 says should be wired, not global.
type Publisher struct {
	Index      TenantIndex
	Boosts     BoostCatalog
	MarketMap  MarketMappingCache
	Applicator *boostapply.Applicator
	Broker     Broker
	Archiver   Archiver // nil disables archival (feed.log.enabled=false)
	Telemetry  Telemetry
}

// TenantError associates a per-tenant publish failure with the tenant it
// affected, so callers can tell which targets in a fan-out failed.
type TenantError struct {
	TenantID string
	Err      error
}

func (e *TenantError) Error() string {
	return fmt.Sprintf("tenant %s: %v", e.TenantID, e.Err)
}

func (e *TenantError) Unwrap() error { return e.Err }

// Publish dispatches on route.Kind. It returns nil when every targeted
// tenant was published successfully (or, for single-tenant routes, when
// the tenant was simply unknown — that path is a logged drop, not a
// caller-visible failure). Per-tenant BrokerFailure/UnknownStrategy errors
// are joined and returned but never abort fan-out to the remaining
// targets.
func (p *Publisher) Publish(ctx context.Context, message oddsmodel.Message, sportURN string, route oddsmodel.RouteParameters, headers map[string]string) error {
	sport, err := urn.Parse(sportURN)
	if err != nil {
		return fmt.Errorf("router: publish: %w", err)
	}

	switch route.Kind {
	case oddsmodel.RouteSingleTenant:
		return p.publishSingleTenant(ctx, message, sportURN, sport.ID, route, headers)
	case oddsmodel.RouteProfile:
		return p.publishProfile(ctx, message, sportURN, sport.ID, route, headers)
	case oddsmodel.RouteBroadcast:
		return p.publishBroadcast(ctx, message, sportURN, sport.ID, headers)
	default:
		return fmt.Errorf("router: publish: unrecognized route kind %d", route.Kind)
	}
}

func (p *Publisher) publishSingleTenant(ctx context.Context, message oddsmodel.Message, sportURN string, sportID int64, route oddsmodel.RouteParameters, headers map[string]string) error {
	profileID, ok := p.Index.Get(route.TenantID)
	if !ok {
		log.Printf("router: publish: unknown tenant %q, dropping message for event %s", route.TenantID, message.EventID)
		p.emit(Event{Route: RouteSingleTenant, TenantCount: 0, Dropped: true})
		return nil
	}

	msg, err := p.resolveBoosted(ctx, message, sportURN, profileID)
	if err != nil {
		return &TenantError{TenantID: route.TenantID, Err: err}
	}

	if err := p.Broker.Publish(ctx, msg, sportID, route.NodeID, route.TenantID, headers); err != nil {
		p.emit(Event{Route: RouteSingleTenant, TenantCount: 0})
		return &TenantError{TenantID: route.TenantID, Err: fmt.Errorf("%w: %v", routererr.ErrBrokerFailure, err)}
	}

	// Spec §9(a): the single-tenant path does not archive, preserved here
	// as specified even though it is asymmetric with the other two paths.
	p.emit(Event{Route: RouteSingleTenant, TenantCount: 1, Boosted: msg.EventID == message.EventID && boosted(message, msg)})
	return nil
}

func (p *Publisher) publishProfile(ctx context.Context, message oddsmodel.Message, sportURN string, sportID int64, route oddsmodel.RouteParameters, headers map[string]string) error {
	msg, err := p.resolveBoosted(ctx, message, sportURN, route.ProfileID)
	if err != nil {
		return fmt.Errorf("router: publish profile %s: %w", route.ProfileID, err)
	}

	tenants := p.Index.TenantsByProfile(route.ProfileID)

	var errs []error
	for _, tenantID := range tenants {
		if err := p.Broker.Publish(ctx, msg, sportID, oddsmodel.BroadcastNode, tenantID, headers); err != nil {
			errs = append(errs, &TenantError{TenantID: tenantID, Err: fmt.Errorf("%w: %v", routererr.ErrBrokerFailure, err)})
		}
	}

	if p.Archiver != nil {
		p.Archiver.Archive(route.ProfileID, msg)
	}

	p.emit(Event{Route: RouteProfile, TenantCount: len(tenants), Boosted: boosted(message, msg)})
	return errors.Join(errs...)
}

func (p *Publisher) publishBroadcast(ctx context.Context, message oddsmodel.Message, sportURN string, sportID int64, headers map[string]string) error {
	applicable := p.isBoostApplicable(ctx, message, sportURN)
	if !applicable {
		return p.broadcastUnboosted(ctx, message, sportID, headers)
	}

	allBoosts, err := p.Boosts.ForFixtureAllProfiles(ctx, message.EventID)
	if err != nil {
		return fmt.Errorf("%w: %v", routererr.ErrBoostLookupFailure, err)
	}
	if len(allBoosts) == 0 {
		return p.broadcastUnboosted(ctx, message, sportID, headers)
	}

	profileBoosts := groupBoostsByProfile(allBoosts)
	tenantsByProfile := p.Index.GroupByProfile()

	var errs []error
	totalTenants := 0
	for profileID, tenants := range tenantsByProfile {
		msg := message
		if boostMap, ok := profileBoosts[profileID]; ok {
			boostedMsg, err := p.Applicator.Apply(message, boostMap)
			if err != nil {
				errs = append(errs, fmt.Errorf("router: profile %s: %w", profileID, err))
				continue
			}
			msg = boostedMsg
		}

		for _, tenantID := range tenants {
			if err := p.Broker.Publish(ctx, msg, sportID, oddsmodel.BroadcastNode, tenantID, headers); err != nil {
				errs = append(errs, &TenantError{TenantID: tenantID, Err: fmt.Errorf("%w: %v", routererr.ErrBrokerFailure, err)})
			}
		}
		totalTenants += len(tenants)

		if p.Archiver != nil {
			p.Archiver.Archive(profileID, msg)
		}
	}

	p.emit(Event{Route: RouteBroadcast, TenantCount: totalTenants, Boosted: true})
	return errors.Join(errs...)
}

func (p *Publisher) broadcastUnboosted(ctx context.Context, message oddsmodel.Message, sportID int64, headers map[string]string) error {
	tenants := p.Index.Tenants()

	var errs []error
	for _, tenantID := range tenants {
		if err := p.Broker.Publish(ctx, message, sportID, oddsmodel.BroadcastNode, tenantID, headers); err != nil {
			errs = append(errs, &TenantError{TenantID: tenantID, Err: fmt.Errorf("%w: %v", routererr.ErrBrokerFailure, err)})
		}
	}

	if p.Archiver != nil {
		p.Archiver.Archive("", message)
	}

	p.emit(Event{Route: RouteBroadcast, TenantCount: len(tenants), Boosted: false})
	return errors.Join(errs...)
}

// resolveBoosted implements spec §4.2: returns message unchanged when
// boosting does not apply or the profile has no matching boosts.
func (p *Publisher) resolveBoosted(ctx context.Context, message oddsmodel.Message, sportURN, profileID string) (oddsmodel.Message, error) {
	if !p.isBoostApplicable(ctx, message, sportURN) {
		return message, nil
	}

	boosts, err := p.Boosts.ForProfileAndFixture(ctx, profileID, message.EventID)
	if err != nil {
		return oddsmodel.Message{}, fmt.Errorf("%w: %v", routererr.ErrBoostLookupFailure, err)
	}
	if len(boosts) == 0 {
		return message, nil
	}

	boostMap := oddsmodel.BoostMap(boosts)
	return p.Applicator.Apply(message, boostMap)
}

// isBoostApplicable implements spec §4.4.
func (p *Publisher) isBoostApplicable(ctx context.Context, message oddsmodel.Message, sportURN string) bool {
	if message.Product != oddsmodel.ProductPrematch {
		return false
	}
	for _, m := range message.Markets {
		if p.MarketMap.IsPrimaryMarket(ctx, m.ID, sportURN) {
			return true
		}
	}
	return false
}

// groupBoostsByProfile groups an ordered slice of boosts by profile id into
// a marketKey -> BoostConfig map per profile, keeping first-seen on
// duplicate marketKeys within a profile (spec §9(c)).
func groupBoostsByProfile(boosts []oddsmodel.BoostConfig) map[string]map[string]oddsmodel.BoostConfig {
	out := make(map[string]map[string]oddsmodel.BoostConfig)
	for _, b := range boosts {
		m, ok := out[b.ProfileID]
		if !ok {
			m = make(map[string]oddsmodel.BoostConfig)
			out[b.ProfileID] = m
		}
		key := b.MarketKey()
		if _, exists := m[key]; exists {
			continue
		}
		m[key] = b
	}
	return out
}

func boosted(original, result oddsmodel.Message) bool {
	if len(original.Markets) != len(result.Markets) {
		return false
	}
	for i := range original.Markets {
		for j := range original.Markets[i].Outcomes {
			if !original.Markets[i].Outcomes[j].Odds.Equal(result.Markets[i].Outcomes[j].Odds) {
				return true
			}
		}
	}
	return false
}

func (p *Publisher) emit(e Event) {
	if p.Telemetry != nil {
		p.Telemetry.Emit(e)
	}
}
