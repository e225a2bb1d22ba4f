// Package routererr names the error kinds spec §7 distinguishes, following
// the sentinel-error convention used for domain.ErrNotFound elsewhere in
// this dependency pack.
package routererr

import "errors"

var (
	// ErrUnknownTenant: single-tenant publish with an id not in the
	// current index. Callers log at WARN and drop the publication.
	ErrUnknownTenant = errors.New("routererr: unknown tenant")

	// ErrUnknownStrategy: a boost references a strategy name not in the
	// registry. Surfaced as a per-tenant/profile publication failure.
	ErrUnknownStrategy = errors.New("routererr: unknown boost strategy")

	// ErrStoreUnavailable: the tenant refresher could not reach the
	// relational store; the previous snapshot remains in effect.
	ErrStoreUnavailable = errors.New("routererr: tenant store unavailable")

	// ErrBoostLookupFailure: the boost catalog could not distinguish
	// "no boosts" from a query error.
	ErrBoostLookupFailure = errors.New("routererr: boost lookup failure")

	// ErrBrokerFailure: the broker adapter failed a publish for one
	// tenant; fan-out to other tenants is unaffected.
	ErrBrokerFailure = errors.New("routererr: broker failure")

	// ErrArchiveFailure: the feed archiver failed to serialize or write
	// a FeedLogEntry; always logged and swallowed by callers.
	ErrArchiveFailure = errors.New("routererr: archive failure")

	// ErrMalformedURN: the sportUrn/fixtureUrn could not be parsed.
	ErrMalformedURN = errors.New("routererr: malformed urn")
)
