// Package booststrategy resolves a boost's strategy name to a numeric
// transformation over a market's outcome odds. The registry is the single
// source of truth the spec requires: an unrecognized strategy name is a
// caller error, never silently ignored.
package booststrategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ndrandal/odds-router/internal/routererr"
)

// BuiltOutcome exposes one outcome's odds to a strategy function.
type BuiltOutcome struct {
	ID   string
	Odds decimal.Decimal
}

// BuiltMarket is the form a market is converted to before a strategy runs:
// a flat list of outcome odds, stripped of every field the strategy has no
// business touching.
type BuiltMarket struct {
	Outcomes []BuiltOutcome
}

// Func mutates built.Outcomes[i].Odds in place according to percent.
// Rounding, min/max caps, and negative-odds handling are strategy-internal;
// nothing outside the strategy second-guesses them.
type Func func(built *BuiltMarket, percent decimal.Decimal)

const (
	AdditivePercent       = "ADDITIVE_PERCENT"
	MultiplicativePercent = "MULTIPLICATIVE_PERCENT"
)

// Registry resolves strategy names to Funcs. The zero value is empty;
// use NewDefault for the compiled-in set spec §6 calls "implicit."
type Registry struct {
	funcs map[string]Func
}

// NewDefault returns a Registry pre-populated with the two strategies
// spec §2 names by example.
func NewDefault() *Registry {
	r := &Registry{funcs: make(map[string]Func)}
	r.Register(AdditivePercent, additivePercent)
	r.Register(MultiplicativePercent, multiplicativePercent)
	return r
}

// Register adds or replaces the Func for a strategy name.
func (r *Registry) Register(name string, fn Func) {
	if r.funcs == nil {
		r.funcs = make(map[string]Func)
	}
	r.funcs[name] = fn
}

// Resolve looks up the Func for a strategy name. Returns
// routererr.ErrUnknownStrategy, wrapped with the offending name, when no
// such strategy is registered.
func (r *Registry) Resolve(name string) (Func, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", routererr.ErrUnknownStrategy, name)
	}
	return fn, nil
}

// additivePercent adds percent% of each outcome's current odds to itself:
// odds' = odds * (1 + percent/100).
func additivePercent(built *BuiltMarket, percent decimal.Decimal) {
	factor := decimal.NewFromInt(1).Add(percent.Div(decimal.NewFromInt(100)))
	for i := range built.Outcomes {
		built.Outcomes[i].Odds = built.Outcomes[i].Odds.Mul(factor).Round(2)
	}
}

// multiplicativePercent scales each outcome's odds by percent treated as a
// multiplier expressed in percent: odds' = odds * (percent/100).
func multiplicativePercent(built *BuiltMarket, percent decimal.Decimal) {
	factor := percent.Div(decimal.NewFromInt(100))
	for i := range built.Outcomes {
		built.Outcomes[i].Odds = built.Outcomes[i].Odds.Mul(factor).Round(2)
	}
}
