// Package link turns declarative link specifications into populated routing
// registrations and typed endpoint handles.
//
// A Spec names a link, its two endpoints, and the pathway capacity. Bind
// builds both pathways, performs the registration protocol against the
// router, and hands each side a typed Endpoint with Send/Receive
// convenience methods. BindOneWay does the same for a single-direction
// link. Binding happens during single-threaded setup, before the router is
// shared.
package link
