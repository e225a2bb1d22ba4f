// Package marketmap answers "is market M a primary market for sport S?",
// the read-mostly MarketMappingCache the boost-applicability check (spec
// §4.4) consults. It is populated out-of-band; this package only reads.
package marketmap

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const entryTTL = 30 * time.Minute

// RedisCache implements the primary-market lookup using Redis strings
// keyed by (sport, market). A cache miss is treated as "not primary"
// rather than an error — population is out-of-band and a cold entry is a
// normal, expected state, not a fault.
//
// Key schema:
//
//	marketmap:{sportUrn}:{marketId} -> "1" | "0"
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache wraps an already-connected *redis.Client.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func mappingKey(sportURN string, marketID int) string {
	return "marketmap:" + sportURN + ":" + strconv.Itoa(marketID)
}

// IsPrimaryMarket reports whether marketID is flagged primary for the
// given sport URN.
func (c *RedisCache) IsPrimaryMarket(ctx context.Context, marketID int, sportURN string) bool {
	// A cache miss (redis.Nil) or any transient error both resolve to "not
	// primary" — population is out-of-band, so a cold or unreachable entry
	// is normal, not a fault to propagate into the router.
	val, err := c.rdb.Get(ctx, mappingKey(sportURN, marketID)).Result()
	if err != nil {
		return false
	}
	return val == "1"
}

// Set marks marketID as primary (or not) for sportURN. Used by the
// out-of-band population job, not by the router's read path.
func (c *RedisCache) Set(ctx context.Context, marketID int, sportURN string, primary bool) error {
	val := "0"
	if primary {
		val = "1"
	}
	if err := c.rdb.Set(ctx, mappingKey(sportURN, marketID), val, entryTTL).Err(); err != nil {
		return fmt.Errorf("marketmap: set %s/%d: %w", sportURN, marketID, err)
	}
	return nil
}
