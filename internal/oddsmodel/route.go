package oddsmodel

// BroadcastNode is the reserved node id denoting broadcast within a tenant.
const BroadcastNode = "-"

// RouteKind discriminates the three RouteParameters cases.
type RouteKind int

const (
	RouteSingleTenant RouteKind = iota
	RouteProfile
	RouteBroadcast
)

// RouteParameters is a tagged union of exactly one of:
// singleTenant(tenantId, nodeId), profile(profileId), broadcast.
//
// Single-tenant routes always carry an explicit nodeId; profile and
// broadcast routes force nodeId = BroadcastNode.
type RouteParameters struct {
	Kind      RouteKind
	TenantID  string
	NodeID    string
	ProfileID string
}

// TenantRoute targets a single tenant with the caller's explicit nodeId.
func TenantRoute(tenantID, nodeID string) RouteParameters {
	return RouteParameters{Kind: RouteSingleTenant, TenantID: tenantID, NodeID: nodeID}
}

func ProfileRoute(profileID string) RouteParameters {
	return RouteParameters{Kind: RouteProfile, ProfileID: profileID, NodeID: BroadcastNode}
}

func BroadcastRoute() RouteParameters {
	return RouteParameters{Kind: RouteBroadcast, NodeID: BroadcastNode}
}

// Tenant is a feed consumer, routable only when ProfileID is non-empty.
type Tenant struct {
	ID        string
	ProfileID string // empty means "no profile"
}

// Routable reports whether t has a non-null profile.
func (t Tenant) Routable() bool {
	return t.ProfileID != ""
}

// FeedLogEntry is the archived record written to the document store.
type FeedLogEntry struct {
	EventID   string `bson:"event_id"`
	Timestamp int64  `bson:"timestamp"`
	Payload   []byte `bson:"payload"`
	ProfileID string `bson:"profile_id,omitempty"`
}
