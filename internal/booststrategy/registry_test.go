package booststrategy

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndrandal/odds-router/internal/routererr"
)

func TestResolveUnknownStrategy(t *testing.T) {
	r := NewDefault()
	if _, err := r.Resolve("NOT_A_STRATEGY"); !errors.Is(err, routererr.ErrUnknownStrategy) {
		t.Fatalf("Resolve(unknown) error = %v, want ErrUnknownStrategy", err)
	}
}

func TestAdditivePercent(t *testing.T) {
	r := NewDefault()
	fn, err := r.Resolve(AdditivePercent)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	built := &BuiltMarket{Outcomes: []BuiltOutcome{
		{ID: "1", Odds: decimal.NewFromFloat(2.00)},
		{ID: "2", Odds: decimal.NewFromFloat(1.80)},
	}}
	fn(built, decimal.NewFromInt(10))

	want := []string{"2.2", "1.98"}
	for i, o := range built.Outcomes {
		if o.Odds.String() != want[i] {
			t.Errorf("outcome %d odds = %s, want %s", i, o.Odds.String(), want[i])
		}
	}
}

func TestMultiplicativePercent(t *testing.T) {
	r := NewDefault()
	fn, err := r.Resolve(MultiplicativePercent)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	built := &BuiltMarket{Outcomes: []BuiltOutcome{
		{ID: "1", Odds: decimal.NewFromFloat(2.00)},
	}}
	fn(built, decimal.NewFromInt(150))

	if built.Outcomes[0].Odds.String() != "3.00" {
		t.Fatalf("odds = %s, want 3.00", built.Outcomes[0].Odds.String())
	}
}
