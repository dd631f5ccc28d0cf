// Package routing implements the dispatch core: a registry of type-erased
// pathway endpoints that lets independently written components inside one
// process exchange strongly-typed messages over bounded queues without
// holding references to each other's channels.
//
// The package provides:
//   - Pathway: a bounded FIFO carrying one payload type between exactly one
//     producer and one consumer, with context-aware blocking send/receive
//   - SenderEndpoint / ReceiverEndpoint: type-erased wrappers around a
//     pathway's ports, tagged with the payload's runtime type
//   - Router: the registry mapping endpoint identities or (link, type)
//     pairs to endpoints, with runtime type verification on every send
//   - TakeReceiver: one-time exclusive transfer of a registered receiver
//     to the caller that will drain it
//
// Setup is a single-threaded phase: build pathways, register each side into
// the Router, then share the Router across goroutines. After setup the
// registries are read-only; the one-shot receiver claims are the only
// remaining mutation and are safe under concurrent racing claimers.
//
// Within one link, each payload type selects exactly one pathway, so the
// direction of a SendLink call is implied by the type being sent. A link
// that needs the same type in both directions should use identity
// addressing instead; registering the type twice under one link fails with
// ErrAmbiguousDispatch.
//
// Example usage:
//
//	send, recv := routing.NewPathway[OrderPlaced](16)
//	router := routing.NewRouter()
//
//	err := router.RegisterSender("orders.in", routing.NewSenderEndpoint(send))
//	err = router.RegisterReceiver("orders.out", routing.NewReceiverEndpoint(recv))
//
//	// concurrently, after setup:
//	err = router.Send(ctx, "orders.in", OrderPlaced{ID: "o-1"})
//
//	port, err := routing.TakeReceiver[OrderPlaced](router, "orders.out")
//	msg, err := port.Receive(ctx)
package routing
