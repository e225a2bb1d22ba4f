package marketmap

import (
	"context"
	"strconv"
)

// StaticCache is an in-process MarketMappingCache fixture for tests and
// for deployments small enough not to need Redis.
type StaticCache struct {
	primary map[string]bool // "{sportUrn}:{marketId}" -> primary
}

// NewStaticCache creates an empty StaticCache; every market is "not
// primary" until marked with MarkPrimary.
func NewStaticCache() *StaticCache {
	return &StaticCache{primary: make(map[string]bool)}
}

// MarkPrimary flags marketID as a primary market for sportURN.
func (c *StaticCache) MarkPrimary(marketID int, sportURN string) {
	c.primary[staticKey(marketID, sportURN)] = true
}

// IsPrimaryMarket reports whether marketID is flagged primary for sportURN.
func (c *StaticCache) IsPrimaryMarket(_ context.Context, marketID int, sportURN string) bool {
	return c.primary[staticKey(marketID, sportURN)]
}

func staticKey(marketID int, sportURN string) string {
	return sportURN + ":" + strconv.Itoa(marketID)
}
