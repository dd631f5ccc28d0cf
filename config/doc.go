// Package config loads declarative link specifications from TOML and
// materializes them into a populated dispatch core.
//
// A declaration file lists links:
//
//	[[links]]
//	name = "exchange"
//	source = "pinger"
//	target = "ponger"
//	capacity = 8
//	forward_type = "Ping"
//	reverse_type = "Pong"
//
// Payload type names refer to types registered in a registry.TypeRegistry.
// Load then Validate fail fast on structural mistakes (duplicate links,
// unknown type names, bad capacities) before any pathway exists; Build
// performs the registrations and returns a Topology whose Send selects the
// direction by the payload's registered type name.
//
// Because configuration cannot name compile-time Go types, config-driven
// pathways carry Envelope values: the registered type name as an explicit
// discriminant alongside the payload. Typed, compile-time-checked links are
// available through the link package instead.
package config
