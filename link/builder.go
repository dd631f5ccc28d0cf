package link

import (
	"context"
	"fmt"

	"github.com/meshwire/meshwire-go/routing"
)

// Spec declares one bidirectional link: a logical name, the names of its two
// endpoints, and the capacity of each underlying pathway. A Spec replaces
// the per-link setup code the application would otherwise write by hand.
type Spec struct {
	Name     string
	Source   string
	Target   string
	Capacity int
}

func (s Spec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("link spec: name cannot be empty")
	}
	if s.Source == "" || s.Target == "" {
		return fmt.Errorf("link spec %q: source and target names cannot be empty", s.Name)
	}
	if s.Source == s.Target {
		return fmt.Errorf("link spec %q: source and target must differ", s.Name)
	}
	if s.Capacity < 0 {
		return fmt.Errorf("link spec %q: capacity cannot be negative", s.Name)
	}
	return nil
}

// BindOption configures a Bind call.
type BindOption func(*bindConfig)

type bindConfig struct {
	capacityOverride *int
}

// WithCapacityOverride replaces the spec's capacity for this bind.
func WithCapacityOverride(capacity int) BindOption {
	return func(c *bindConfig) {
		c.capacityOverride = &capacity
	}
}

// Endpoint is the typed handle one side of a bidirectional link holds: it
// sends S values and receives R values over the link's two pathways. The
// receiver is already claimed, so the handle drains independently of the
// router.
type Endpoint[S, R any] struct {
	router *routing.Router
	link   routing.LinkID
	id     routing.EndpointID
	recv   *routing.ReceivePort[R]
}

// Send forwards msg on the link; the payload type selects the direction.
// It suspends while the pathway is at capacity.
func (e *Endpoint[S, R]) Send(ctx context.Context, msg S) error {
	return e.router.SendLink(ctx, e.link, msg)
}

// Receive returns the next inbound value in FIFO order, suspending while
// the pathway is empty. It returns routing.ErrPathwayClosed at end of
// stream.
func (e *Endpoint[S, R]) Receive(ctx context.Context) (R, error) {
	return e.recv.Receive(ctx)
}

// Close drops this side's consumer. The peer observes
// routing.ErrSendFailed on subsequent sends toward this endpoint.
func (e *Endpoint[S, R]) Close() {
	e.recv.Close()
}

// Identity returns the endpoint identity this handle's receiver was
// registered under.
func (e *Endpoint[S, R]) Identity() routing.EndpointID {
	return e.id
}

// Bind materializes spec on router: it builds the two pathways (F flowing
// source to target, R flowing back), performs the four registrations of the
// registration protocol, claims both receivers, and returns the typed
// endpoint handles for each side.
//
// F and R must be distinct types; a link whose directions carry the same
// payload type fails with routing.ErrAmbiguousDispatch. Use identity
// addressing for symmetric links.
func Bind[F, R any](router *routing.Router, spec Spec, opts ...BindOption) (*Endpoint[F, R], *Endpoint[R, F], error) {
	if router == nil {
		return nil, nil, fmt.Errorf("router cannot be nil")
	}
	if err := spec.validate(); err != nil {
		return nil, nil, err
	}

	cfg := bindConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	capacity := spec.Capacity
	if cfg.capacityOverride != nil {
		capacity = *cfg.capacityOverride
	}

	linkID := routing.LinkID(spec.Name)

	fwdSend, fwdRecv := routing.NewPathway[F](capacity)
	revSend, revRecv := routing.NewPathway[R](capacity)

	if err := router.RegisterPathway(linkID, spec.Source, spec.Target, routing.NewSenderEndpoint(fwdSend)); err != nil {
		return nil, nil, err
	}
	if err := router.RegisterPathway(linkID, spec.Target, spec.Source, routing.NewSenderEndpoint(revSend)); err != nil {
		return nil, nil, err
	}

	sourceID := routing.EndpointKey(linkID, spec.Source)
	targetID := routing.EndpointKey(linkID, spec.Target)

	if err := router.RegisterReceiver(sourceID, routing.NewReceiverEndpoint(revRecv)); err != nil {
		return nil, nil, err
	}
	if err := router.RegisterReceiver(targetID, routing.NewReceiverEndpoint(fwdRecv)); err != nil {
		return nil, nil, err
	}

	sourcePort, err := routing.TakeReceiver[R](router, sourceID)
	if err != nil {
		return nil, nil, err
	}
	targetPort, err := routing.TakeReceiver[F](router, targetID)
	if err != nil {
		return nil, nil, err
	}

	source := &Endpoint[F, R]{router: router, link: linkID, id: sourceID, recv: sourcePort}
	target := &Endpoint[R, F]{router: router, link: linkID, id: targetID, recv: targetPort}
	return source, target, nil
}

// Sender is the typed handle for the producing side of a one-way link.
type Sender[T any] struct {
	router *routing.Router
	link   routing.LinkID
}

// Send forwards msg on the link, suspending while the pathway is full.
func (s *Sender[T]) Send(ctx context.Context, msg T) error {
	return s.router.SendLink(ctx, s.link, msg)
}

// BindOneWay materializes a unidirectional link carrying T from source to
// target: one pathway, one link-addressed sender, one claimed receiver.
func BindOneWay[T any](router *routing.Router, spec Spec, opts ...BindOption) (*Sender[T], *routing.ReceivePort[T], error) {
	if router == nil {
		return nil, nil, fmt.Errorf("router cannot be nil")
	}
	if err := spec.validate(); err != nil {
		return nil, nil, err
	}

	cfg := bindConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	capacity := spec.Capacity
	if cfg.capacityOverride != nil {
		capacity = *cfg.capacityOverride
	}

	linkID := routing.LinkID(spec.Name)

	send, recv := routing.NewPathway[T](capacity)

	if err := router.RegisterPathway(linkID, spec.Source, spec.Target, routing.NewSenderEndpoint(send)); err != nil {
		return nil, nil, err
	}

	targetID := routing.EndpointKey(linkID, spec.Target)
	if err := router.RegisterReceiver(targetID, routing.NewReceiverEndpoint(recv)); err != nil {
		return nil, nil, err
	}

	port, err := routing.TakeReceiver[T](router, targetID)
	if err != nil {
		return nil, nil, err
	}

	return &Sender[T]{router: router, link: linkID}, port, nil
}
