package oddsmodel

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BoostConfig is a single boost rule: a named strategy and percent applied
// to a specific market of a specific profile's fixture view.
type BoostConfig struct {
	ProfileID       string
	MarketID        int
	MarketSpecifier string
	Strategy        string
	Percent         decimal.Decimal
}

// MarketKey mirrors Market.MarketKey for join purposes:
// "{marketId}|{marketSpecifier}".
func (b BoostConfig) MarketKey() string {
	return fmt.Sprintf("%d|%s", b.MarketID, b.MarketSpecifier)
}

// BoostMap builds a marketKey -> BoostConfig map from an ordered slice,
// keeping the first-seen entry on duplicate keys (spec §9(c)).
func BoostMap(configs []BoostConfig) map[string]BoostConfig {
	m := make(map[string]BoostConfig, len(configs))
	for _, b := range configs {
		key := b.MarketKey()
		if _, exists := m[key]; exists {
			continue
		}
		m[key] = b
	}
	return m
}
