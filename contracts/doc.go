// Package contracts defines the optional message metadata contract shared
// by components that exchange traceable payloads over in-process links.
//
// Payload types embed BaseMessage to gain a generated ID, a UTC timestamp,
// and a correlation ID for request/reply pairing over two pathways of one
// link. The dispatch core does not require payloads to implement Message;
// only configuration-driven setup and diagnostics rely on it.
package contracts
