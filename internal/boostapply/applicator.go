// Package boostapply joins an odds-change message against a resolved
// marketKey -> BoostConfig map and produces a deep-cloned message whose
// matched markets have been transformed in place, leaving unmatched
// markets and the original message untouched.
package boostapply

import (
	"fmt"

	"github.com/ndrandal/odds-router/internal/booststrategy"
	"github.com/ndrandal/odds-router/internal/oddsmodel"
)

// Applicator resolves strategies via a booststrategy.Registry and applies
// them to deep-cloned markets.
type Applicator struct {
	strategies *booststrategy.Registry
}

// New creates an Applicator backed by the given strategy registry.
func New(strategies *booststrategy.Registry) *Applicator {
	return &Applicator{strategies: strategies}
}

// Apply returns a deep clone of message with every market whose marketKey
// appears in boostMap transformed according to that boost's strategy and
// percent. The input message is never mutated. An unknown strategy name
// referenced by a boost fails the whole call — the caller is expected to
// treat this as the offending tenant/profile's publication failure while
// other tenants are unaffected.
func (a *Applicator) Apply(message oddsmodel.Message, boostMap map[string]oddsmodel.BoostConfig) (oddsmodel.Message, error) {
	clone := message.Clone()

	for i := range clone.Markets {
		m := &clone.Markets[i]
		boost, ok := boostMap[m.MarketKey()]
		if !ok {
			continue
		}

		fn, err := a.strategies.Resolve(boost.Strategy)
		if err != nil {
			return oddsmodel.Message{}, fmt.Errorf("boostapply: market %s: %w", m.MarketKey(), err)
		}

		built := buildMarket(m)
		fn(&built, boost.Percent)
		foldBack(m, built)
	}

	return clone, nil
}

// buildMarket strips a market down to the flat outcome-odds form a
// strategy operates on.
func buildMarket(m *oddsmodel.Market) booststrategy.BuiltMarket {
	built := booststrategy.BuiltMarket{Outcomes: make([]booststrategy.BuiltOutcome, len(m.Outcomes))}
	for i, o := range m.Outcomes {
		built.Outcomes[i] = booststrategy.BuiltOutcome{ID: o.ID, Odds: o.Odds}
	}
	return built
}

// foldBack writes the built form's odds back into m, preserving every
// other field (ids, status, cashout status) untouched.
func foldBack(m *oddsmodel.Market, built booststrategy.BuiltMarket) {
	for i := range m.Outcomes {
		m.Outcomes[i].Odds = built.Outcomes[i].Odds
	}
}
