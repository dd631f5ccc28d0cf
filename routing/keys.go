package routing

import "fmt"

// EndpointID identifies one side of one pathway in the identity-addressed
// scheme. Identities are chosen at setup time and must be unique per
// registration.
type EndpointID string

// LinkID names a logical bidirectional relationship between two endpoints.
// Within one link, each payload type maps to exactly one pathway, so the
// direction of a send is implied by the type being sent.
type LinkID string

// DispatchKey derives the registry key for a pathway under the link
// addressing scheme. The key is human-readable, stable across registration
// and lookup, and injective for unique (link, source, target) triples.
func DispatchKey(link LinkID, source, target string) string {
	return fmt.Sprintf("%s/%s_to_%s", link, source, target)
}

// EndpointKey derives the conventional endpoint identity for one side of a
// link, used by builders that register link receivers by identity.
func EndpointKey(link LinkID, endpoint string) EndpointID {
	return EndpointID(fmt.Sprintf("%s/%s", link, endpoint))
}
