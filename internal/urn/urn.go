// Package urn parses Sportradar-style URNs of the form "sr:sport:1" or
// "sr:match:12345" into their numeric id component. Grounded on the
// EventURN/Producer string-splitting idiom in the Unified Odds Feed SDK
// reference (odds_change.go): URNs here are treated as plain colon-
// delimited strings, not as a generic RFC 8141 URN.
package urn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ndrandal/odds-router/internal/routererr"
)

// URN is a parsed Sportradar-style URN: prefix "sr", a type segment
// ("sport", "match", "tournament", ...), and a numeric id.
type URN struct {
	Prefix string
	Type   string
	ID     int64
}

// Parse splits s on ':' and requires exactly three segments with a
// parseable trailing integer id.
func Parse(s string) (URN, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return URN{}, fmt.Errorf("%w: %q: expected 3 colon-delimited segments", routererr.ErrMalformedURN, s)
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return URN{}, fmt.Errorf("%w: %q: non-numeric id segment: %v", routererr.ErrMalformedURN, s, err)
	}
	return URN{Prefix: parts[0], Type: parts[1], ID: id}, nil
}

// MustParse is a convenience for call sites that have already validated s,
// such as literal test fixtures.
func MustParse(s string) URN {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}
