package router

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndrandal/odds-router/internal/boostapply"
	"github.com/ndrandal/odds-router/internal/booststrategy"
	"github.com/ndrandal/odds-router/internal/broker"
	"github.com/ndrandal/odds-router/internal/oddsmodel"
	"github.com/ndrandal/odds-router/internal/routererr"
)

// fakeIndex is a fixed tenantId -> profileId mapping for tests; it does
// not swap, so a refresh landing in the middle of a publish is not
// exercised here.
type fakeIndex struct {
	byTenant map[string]string
}

func (f *fakeIndex) Get(tenantID string) (string, bool) {
	p, ok := f.byTenant[tenantID]
	return p, ok
}

func (f *fakeIndex) Tenants() []string {
	out := make([]string, 0, len(f.byTenant))
	for t := range f.byTenant {
		out = append(out, t)
	}
	return out
}

func (f *fakeIndex) TenantsByProfile(profileID string) []string {
	var out []string
	for t, p := range f.byTenant {
		if p == profileID {
			out = append(out, t)
		}
	}
	return out
}

func (f *fakeIndex) GroupByProfile() map[string][]string {
	out := make(map[string][]string)
	for t, p := range f.byTenant {
		out[p] = append(out[p], t)
	}
	return out
}

type fakeBoostCatalog struct {
	byProfileFixture map[string][]oddsmodel.BoostConfig // key: profileID+"|"+fixtureURN
	allProfiles      map[string][]oddsmodel.BoostConfig // key: fixtureURN
}

func (f *fakeBoostCatalog) ForProfileAndFixture(_ context.Context, profileID, fixtureURN string) ([]oddsmodel.BoostConfig, error) {
	return f.byProfileFixture[profileID+"|"+fixtureURN], nil
}

func (f *fakeBoostCatalog) ForFixtureAllProfiles(_ context.Context, fixtureURN string) ([]oddsmodel.BoostConfig, error) {
	return f.allProfiles[fixtureURN], nil
}

type alwaysPrimary struct{ primary bool }

func (a alwaysPrimary) IsPrimaryMarket(_ context.Context, _ int, _ string) bool { return a.primary }

func sampleMessage(product oddsmodel.Product) oddsmodel.Message {
	return oddsmodel.Message{
		EventID:   "sr:match:1",
		Product:   product,
		Timestamp: 1000,
		Markets: []oddsmodel.Market{
			{
				ID:         10,
				Specifiers: map[string]string{"total": "2.5"},
				Outcomes: []oddsmodel.Outcome{
					{ID: "1", Odds: decimal.NewFromFloat(2.00)},
					{ID: "2", Odds: decimal.NewFromFloat(1.80)},
				},
			},
		},
	}
}

func newPublisher(index TenantIndex, catalog BoostCatalog, market MarketMappingCache, mem *broker.Memory) *Publisher {
	return &Publisher{
		Index:      index,
		Boosts:     catalog,
		MarketMap:  market,
		Applicator: boostapply.New(booststrategy.NewDefault()),
		Broker:     mem,
	}
}

// S1: broadcast, applicable message, no boosts configured -> every tenant
// gets the original message.
func TestScenarioS1BroadcastNoBoosts(t *testing.T) {
	index := &fakeIndex{byTenant: map[string]string{"t1": "p1", "t2": "p1", "t3": "p2"}}
	catalog := &fakeBoostCatalog{}
	mem := broker.NewMemory()
	p := newPublisher(index, catalog, alwaysPrimary{primary: true}, mem)

	msg := sampleMessage(oddsmodel.ProductPrematch)
	if err := p.Publish(context.Background(), msg, "sr:sport:1", oddsmodel.BroadcastRoute(), map[string]string{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	calls := mem.Calls()
	if len(calls) != 3 {
		t.Fatalf("got %d broker calls, want 3", len(calls))
	}
	seen := map[string]bool{}
	for _, c := range calls {
		seen[c.TenantID] = true
		if c.NodeID != "-" {
			t.Errorf("nodeId = %q, want \"-\"", c.NodeID)
		}
		if !c.Message.Markets[0].Outcomes[0].Odds.Equal(decimal.NewFromFloat(2.00)) {
			t.Errorf("tenant %s got a boosted message, want unchanged", c.TenantID)
		}
	}
	for _, want := range []string{"t1", "t2", "t3"} {
		if !seen[want] {
			t.Errorf("missing broker call for tenant %s", want)
		}
	}
}

// S2: broadcast with a boost configured for p1 only -> t1/t2 boosted,
// t3 gets the original message.
func TestScenarioS2BroadcastPartialBoost(t *testing.T) {
	index := &fakeIndex{byTenant: map[string]string{"t1": "p1", "t2": "p1", "t3": "p2"}}
	catalog := &fakeBoostCatalog{
		allProfiles: map[string][]oddsmodel.BoostConfig{
			"sr:match:1": {
				{ProfileID: "p1", MarketID: 10, MarketSpecifier: "total=2.5", Strategy: booststrategy.AdditivePercent, Percent: decimal.NewFromInt(10)},
			},
		},
	}
	mem := broker.NewMemory()
	p := newPublisher(index, catalog, alwaysPrimary{primary: true}, mem)

	msg := sampleMessage(oddsmodel.ProductPrematch)
	if err := p.Publish(context.Background(), msg, "sr:sport:1", oddsmodel.BroadcastRoute(), map[string]string{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	for _, c := range mem.CallsForTenant("t1") {
		if !c.Message.Markets[0].Outcomes[0].Odds.Equal(decimal.NewFromFloat(2.20)) {
			t.Errorf("t1 odds = %s, want 2.20", c.Message.Markets[0].Outcomes[0].Odds)
		}
	}
	for _, c := range mem.CallsForTenant("t3") {
		if !c.Message.Markets[0].Outcomes[0].Odds.Equal(decimal.NewFromFloat(2.00)) {
			t.Errorf("t3 odds = %s, want unchanged 2.00", c.Message.Markets[0].Outcomes[0].Odds)
		}
	}
}

// S3: profile route with a LIVE message -> no boost lookup; tenants get
// the message unchanged.
func TestScenarioS3ProfileLiveSkipsBoost(t *testing.T) {
	index := &fakeIndex{byTenant: map[string]string{"t1": "p1", "t2": "p1"}}
	catalog := &fakeBoostCatalog{
		byProfileFixture: map[string][]oddsmodel.BoostConfig{
			"p1|sr:match:1": {{ProfileID: "p1", MarketID: 10, MarketSpecifier: "total=2.5", Strategy: booststrategy.AdditivePercent, Percent: decimal.NewFromInt(10)}},
		},
	}
	mem := broker.NewMemory()
	p := newPublisher(index, catalog, alwaysPrimary{primary: true}, mem)

	msg := sampleMessage(oddsmodel.ProductLive)
	if err := p.Publish(context.Background(), msg, "sr:sport:1", oddsmodel.ProfileRoute("p1"), map[string]string{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	calls := mem.Calls()
	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(calls))
	}
	for _, c := range calls {
		if !c.Message.Markets[0].Outcomes[0].Odds.Equal(decimal.NewFromFloat(2.00)) {
			t.Errorf("LIVE message should never be boosted, got %s", c.Message.Markets[0].Outcomes[0].Odds)
		}
	}
}

// S4: single-tenant publish to an unknown tenant -> zero broker calls,
// no error surfaced to the caller.
func TestScenarioS4UnknownTenantDropped(t *testing.T) {
	index := &fakeIndex{byTenant: map[string]string{"t1": "p1"}}
	mem := broker.NewMemory()
	p := newPublisher(index, &fakeBoostCatalog{}, alwaysPrimary{primary: true}, mem)

	msg := sampleMessage(oddsmodel.ProductPrematch)
	err := p.Publish(context.Background(), msg, "sr:sport:1", oddsmodel.TenantRoute("tX", "node-7"), map[string]string{})
	if err != nil {
		t.Fatalf("Publish should succeed (drop) for unknown tenant, got %v", err)
	}
	if len(mem.Calls()) != 0 {
		t.Fatalf("expected zero broker calls, got %d", len(mem.Calls()))
	}
}

// S6: single-tenant publish with applicable boost -> exactly one boosted
// call, input message never mutated.
func TestScenarioS6SingleTenantBoosted(t *testing.T) {
	index := &fakeIndex{byTenant: map[string]string{"t1": "p1"}}
	catalog := &fakeBoostCatalog{
		byProfileFixture: map[string][]oddsmodel.BoostConfig{
			"p1|sr:match:1": {{ProfileID: "p1", MarketID: 10, MarketSpecifier: "total=2.5", Strategy: booststrategy.AdditivePercent, Percent: decimal.NewFromInt(10)}},
		},
	}
	mem := broker.NewMemory()
	p := newPublisher(index, catalog, alwaysPrimary{primary: true}, mem)

	msg := sampleMessage(oddsmodel.ProductPrematch)
	originalOdds := msg.Markets[0].Outcomes[0].Odds

	if err := p.Publish(context.Background(), msg, "sr:sport:1", oddsmodel.TenantRoute("t1", "n"), map[string]string{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	calls := mem.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if calls[0].TenantID != "t1" || calls[0].NodeID != "n" {
		t.Fatalf("call = %+v, want tenant t1 node n", calls[0])
	}
	if !calls[0].Message.Markets[0].Outcomes[0].Odds.Equal(decimal.NewFromFloat(2.20)) {
		t.Errorf("boosted odds = %s, want 2.20", calls[0].Message.Markets[0].Outcomes[0].Odds)
	}
	if !msg.Markets[0].Outcomes[0].Odds.Equal(originalOdds) {
		t.Errorf("input message mutated: odds now %s", msg.Markets[0].Outcomes[0].Odds)
	}
}

// Invariant: a per-tenant broker failure is isolated and does not prevent
// fan-out to other tenants, but is surfaced to the caller.
func TestBrokerFailureIsolatedPerTenant(t *testing.T) {
	index := &fakeIndex{byTenant: map[string]string{"t1": "p1", "t2": "p1"}}
	mem := broker.NewMemory()
	mem.FailFor("t1", errors.New("boom"))
	p := newPublisher(index, &fakeBoostCatalog{}, alwaysPrimary{primary: false}, mem)

	msg := sampleMessage(oddsmodel.ProductPrematch)
	err := p.Publish(context.Background(), msg, "sr:sport:1", oddsmodel.ProfileRoute("p1"), map[string]string{})
	if err == nil {
		t.Fatal("expected an error surfaced for t1's broker failure")
	}
	if !errors.Is(err, routererr.ErrBrokerFailure) {
		t.Fatalf("error = %v, want wrapping ErrBrokerFailure", err)
	}
	if len(mem.CallsForTenant("t2")) != 1 {
		t.Fatal("t2 should still have received its publish despite t1's failure")
	}
}

// Unknown strategy referenced by a boost fails that tenant/profile's
// publication without crashing the whole call.
func TestUnknownStrategyFailsPublication(t *testing.T) {
	index := &fakeIndex{byTenant: map[string]string{"t1": "p1"}}
	catalog := &fakeBoostCatalog{
		byProfileFixture: map[string][]oddsmodel.BoostConfig{
			"p1|sr:match:1": {{ProfileID: "p1", MarketID: 10, MarketSpecifier: "total=2.5", Strategy: "NOPE", Percent: decimal.NewFromInt(10)}},
		},
	}
	mem := broker.NewMemory()
	p := newPublisher(index, catalog, alwaysPrimary{primary: true}, mem)

	msg := sampleMessage(oddsmodel.ProductPrematch)
	err := p.Publish(context.Background(), msg, "sr:sport:1", oddsmodel.TenantRoute("t1", "n"), map[string]string{})
	if !errors.Is(err, routererr.ErrUnknownStrategy) {
		t.Fatalf("error = %v, want ErrUnknownStrategy", err)
	}
	if len(mem.Calls()) != 0 {
		t.Fatalf("expected no broker call when boost resolution fails, got %d", len(mem.Calls()))
	}
}

func TestMalformedURNPreventsAnyPublication(t *testing.T) {
	index := &fakeIndex{byTenant: map[string]string{"t1": "p1"}}
	mem := broker.NewMemory()
	p := newPublisher(index, &fakeBoostCatalog{}, alwaysPrimary{primary: true}, mem)

	err := p.Publish(context.Background(), sampleMessage(oddsmodel.ProductPrematch), "not-a-urn", oddsmodel.BroadcastRoute(), map[string]string{})
	if !errors.Is(err, routererr.ErrMalformedURN) {
		t.Fatalf("error = %v, want ErrMalformedURN", err)
	}
	if len(mem.Calls()) != 0 {
		t.Fatalf("expected zero broker calls for malformed urn, got %d", len(mem.Calls()))
	}
}
