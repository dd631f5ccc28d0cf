package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meshwire/meshwire-go/contracts"
	"github.com/meshwire/meshwire-go/registry"
	"github.com/meshwire/meshwire-go/routing"
)

// Envelope is the closed payload carrier used by configuration-driven
// pathways. Every value carries the discriminant decided at registration
// time, so receivers can branch on TypeName without reflection.
type Envelope struct {
	TypeName string
	Message  contracts.Message
}

// Topology is a router populated from declarative link configuration,
// together with the discriminant routing that replaces compile-time payload
// types on the config-driven path: each declared (link, type name) pair
// resolves to one identity-addressed pathway.
type Topology struct {
	router    *routing.Router
	registry  registry.TypeRegistry
	routes    map[string]map[string]routing.EndpointID // link -> type name -> sender identity
	receivers map[routing.EndpointID]string            // receiver identity -> inbound type name
	logger    *slog.Logger
}

// TopologyOption configures Build.
type TopologyOption func(*Topology)

// WithLogger sets the logger for the topology and its router.
func WithLogger(logger *slog.Logger) TopologyOption {
	return func(t *Topology) {
		t.logger = logger
	}
}

// Build validates cfg against reg and materializes it: one Envelope pathway
// per declared direction, senders registered under the direction's dispatch
// key, receivers registered under the receiving endpoint's identity and
// left unclaimed for their owners to take. Build is part of single-threaded
// setup; registration failures are configuration errors.
func Build(cfg LinksConfig, reg registry.TypeRegistry, opts ...TopologyOption) (*Topology, error) {
	if reg == nil {
		return nil, fmt.Errorf("type registry cannot be nil")
	}
	if err := cfg.Validate(reg); err != nil {
		return nil, err
	}

	t := &Topology{
		registry:  reg,
		routes:    make(map[string]map[string]routing.EndpointID, len(cfg.Links)),
		receivers: make(map[routing.EndpointID]string),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	t.router = routing.NewRouter(routing.WithLogger(t.logger))

	for _, l := range cfg.Links {
		if err := t.addDirection(l.Name, l.Source, l.Target, l.ForwardType, l.Capacity); err != nil {
			return nil, err
		}
		if l.ReverseType != "" {
			if err := t.addDirection(l.Name, l.Target, l.Source, l.ReverseType, l.Capacity); err != nil {
				return nil, err
			}
		}
	}

	t.logger.Info("topology built",
		"links", len(cfg.Links),
		"pathways", len(t.receivers),
	)

	return t, nil
}

func (t *Topology) addDirection(link, from, to, typeName string, capacity int) error {
	send, recv := routing.NewPathway[Envelope](capacity)

	linkID := routing.LinkID(link)
	senderID := routing.EndpointID(routing.DispatchKey(linkID, from, to))
	receiverID := routing.EndpointKey(linkID, to)

	if err := t.router.RegisterSender(senderID, routing.NewSenderEndpoint(send)); err != nil {
		return err
	}
	if err := t.router.RegisterReceiver(receiverID, routing.NewReceiverEndpoint(recv)); err != nil {
		return err
	}

	routes, ok := t.routes[link]
	if !ok {
		routes = make(map[string]routing.EndpointID, 2)
		t.routes[link] = routes
	}
	routes[typeName] = senderID
	t.receivers[receiverID] = typeName

	return nil
}

// Router returns the populated dispatch core.
func (t *Topology) Router() *routing.Router {
	return t.router
}

// Send forwards msg on the named link. The direction is selected by the
// payload's registered type name, the config-driven counterpart of typed
// link addressing. It fails with routing.ErrLinkNotFound when the link does
// not carry the payload's type, and with the registry's error when the
// payload type was never registered.
func (t *Topology) Send(ctx context.Context, link string, msg contracts.Message) error {
	if msg == nil {
		return fmt.Errorf("message cannot be nil")
	}

	typeName, err := t.registry.GetTypeName(msg)
	if err != nil {
		return fmt.Errorf("send on link %q: %w", link, err)
	}

	routes, ok := t.routes[link]
	if !ok {
		return fmt.Errorf("send of %s on link %q: %w", typeName, link, routing.ErrLinkNotFound)
	}
	senderID, ok := routes[typeName]
	if !ok {
		return fmt.Errorf("send of %s on link %q: %w", typeName, link, routing.ErrLinkNotFound)
	}

	return t.router.Send(ctx, senderID, Envelope{TypeName: typeName, Message: msg})
}

// TakeReceiver claims the inbound pathway of the named endpoint on the
// named link. Exactly one caller per endpoint succeeds.
func (t *Topology) TakeReceiver(link, endpoint string) (*routing.ReceivePort[Envelope], error) {
	id := routing.EndpointKey(routing.LinkID(link), endpoint)
	if _, ok := t.receivers[id]; !ok {
		return nil, fmt.Errorf("no receiver declared for endpoint %q on link %q: %w",
			endpoint, link, routing.ErrPathwayNotFound)
	}
	return routing.TakeReceiver[Envelope](t.router, id)
}

// InboundType returns the declared payload type name an endpoint receives
// on a link, for diagnostics and receiver-side dispatch.
func (t *Topology) InboundType(link, endpoint string) (string, bool) {
	typeName, ok := t.receivers[routing.EndpointKey(routing.LinkID(link), endpoint)]
	return typeName, ok
}
