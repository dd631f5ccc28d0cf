package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// Router is the dispatch core: the registry that stores type-erased pathway
// endpoints and hands out typed access to them. It supports two addressing
// schemes. Identity addressing binds one EndpointID to one pathway side.
// Link addressing binds a LinkID to several payload types, each selecting a
// direction, resolved through a derived dispatch key.
//
// Registration is a single-threaded setup phase and must complete before the
// Router is shared; after that the registries are read-mostly and every
// operation is safe for concurrent use. The only post-setup mutation is the
// one-shot claim of each registered receiver.
type Router struct {
	mu        sync.RWMutex
	senders   map[EndpointID]SenderEndpoint
	receivers map[EndpointID]*claimSlot
	pathways  map[string]SenderEndpoint
	links     map[LinkID]map[reflect.Type]string

	logger *slog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// NewRouter creates an empty dispatch core.
func NewRouter(options ...RouterOption) *Router {
	r := &Router{
		senders:   make(map[EndpointID]SenderEndpoint),
		receivers: make(map[EndpointID]*claimSlot),
		pathways:  make(map[string]SenderEndpoint),
		links:     make(map[LinkID]map[reflect.Type]string),
		logger:    slog.Default(),
	}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// RegisterSender stores endpoint under id for identity-addressed sends.
// It fails with ErrDuplicateRegistration if id already holds a sender.
func (r *Router) RegisterSender(id EndpointID, endpoint SenderEndpoint) error {
	if id == "" {
		return fmt.Errorf("endpoint identity cannot be empty")
	}
	if endpoint == nil {
		return fmt.Errorf("sender endpoint cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.senders[id]; exists {
		return &RegistrationError{
			Op:       "RegisterSender",
			Identity: string(id),
			TypeName: endpoint.TypeName(),
			Err:      ErrDuplicateRegistration,
		}
	}

	r.senders[id] = endpoint

	r.logger.Info("registered sender endpoint",
		"identity", string(id),
		"messageType", endpoint.TypeName(),
	)

	return nil
}

// RegisterReceiver stores endpoint under id, unclaimed. It fails with
// ErrDuplicateRegistration if id already holds a receiver.
func (r *Router) RegisterReceiver(id EndpointID, endpoint ReceiverEndpoint) error {
	if id == "" {
		return fmt.Errorf("endpoint identity cannot be empty")
	}
	if endpoint == nil {
		return fmt.Errorf("receiver endpoint cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.receivers[id]; exists {
		return &RegistrationError{
			Op:       "RegisterReceiver",
			Identity: string(id),
			TypeName: endpoint.TypeName(),
			Err:      ErrDuplicateRegistration,
		}
	}

	r.receivers[id] = newClaimSlot(endpoint)

	r.logger.Info("registered receiver endpoint",
		"identity", string(id),
		"messageType", endpoint.TypeName(),
	)

	return nil
}

// RegisterPathway stores endpoint under the dispatch key derived from
// (link, source, target) and maps the endpoint's payload type to that key
// within link. It fails with ErrDuplicateRegistration if the key exists and
// with ErrAmbiguousDispatch if the payload type is already mapped anywhere
// under link: each (link, type) pair must resolve to exactly one pathway.
func (r *Router) RegisterPathway(link LinkID, source, target string, endpoint SenderEndpoint) error {
	if link == "" {
		return fmt.Errorf("link identity cannot be empty")
	}
	if source == "" || target == "" {
		return fmt.Errorf("source and target names cannot be empty")
	}
	if endpoint == nil {
		return fmt.Errorf("sender endpoint cannot be nil")
	}

	key := DispatchKey(link, source, target)
	msgType := endpoint.MessageType()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pathways[key]; exists {
		return &RegistrationError{
			Op:       "RegisterPathway",
			Identity: key,
			Link:     string(link),
			TypeName: endpoint.TypeName(),
			Err:      ErrDuplicateRegistration,
		}
	}

	typeMap, exists := r.links[link]
	if !exists {
		typeMap = make(map[reflect.Type]string)
		r.links[link] = typeMap
	}

	if existingKey, mapped := typeMap[msgType]; mapped {
		return &RegistrationError{
			Op:       "RegisterPathway",
			Identity: existingKey,
			Link:     string(link),
			TypeName: endpoint.TypeName(),
			Err:      ErrAmbiguousDispatch,
		}
	}

	r.pathways[key] = endpoint
	typeMap[msgType] = key

	r.logger.Info("registered link pathway",
		"link", string(link),
		"dispatchKey", key,
		"messageType", endpoint.TypeName(),
	)

	return nil
}

// Send forwards msg to the identity-addressed sender registered under id.
// It verifies that the runtime type of msg matches the registration, then
// erases and forwards it, suspending while the pathway is at capacity. It
// fails with ErrPathwayNotFound when id holds no sender, ErrTypeMismatch on
// a payload of the wrong type, and ErrSendFailed once the consumer side has
// been dropped. A send that returns an error has not enqueued anything.
func (r *Router) Send(ctx context.Context, id EndpointID, msg any) error {
	if msg == nil {
		return fmt.Errorf("message cannot be nil")
	}

	r.mu.RLock()
	endpoint, exists := r.senders[id]
	r.mu.RUnlock()

	if !exists {
		r.logger.Warn("no sender registered for identity", "identity", string(id))
		return &DispatchError{
			Identity: string(id),
			TypeName: reflect.TypeOf(msg).String(),
			Err:      ErrPathwayNotFound,
		}
	}

	return r.deliver(ctx, endpoint, string(id), "", msg)
}

// SendLink forwards msg on link, selecting the pathway mapped for the
// runtime type of msg. It fails with ErrLinkNotFound when link is unknown
// or does not carry that type, and otherwise behaves like Send.
func (r *Router) SendLink(ctx context.Context, link LinkID, msg any) error {
	if msg == nil {
		return fmt.Errorf("message cannot be nil")
	}

	msgType := reflect.TypeOf(msg)

	r.mu.RLock()
	typeMap, linkExists := r.links[link]
	var (
		endpoint  SenderEndpoint
		key       string
		keyExists bool
	)
	if linkExists {
		key, keyExists = typeMap[msgType]
		if keyExists {
			endpoint = r.pathways[key]
		}
	}
	r.mu.RUnlock()

	if !linkExists || !keyExists {
		r.logger.Warn("no pathway mapped for link and message type",
			"link", string(link),
			"messageType", msgType.String(),
		)
		return &DispatchError{
			Link:     string(link),
			TypeName: msgType.String(),
			Err:      ErrLinkNotFound,
		}
	}

	if endpoint == nil {
		// A mapped key without a stored sender means the registries
		// disagree with each other.
		return &DispatchError{
			Identity: key,
			Link:     string(link),
			TypeName: msgType.String(),
			Err:      ErrInternalInconsistency,
		}
	}

	return r.deliver(ctx, endpoint, key, string(link), msg)
}

// deliver runs the shared verification and erasure discipline for both
// addressing schemes.
func (r *Router) deliver(ctx context.Context, endpoint SenderEndpoint, identity, link string, msg any) error {
	msgType := reflect.TypeOf(msg)

	if endpoint.MessageType() != msgType {
		return &DispatchError{
			Identity: identity,
			Link:     link,
			TypeName: msgType.String(),
			Expected: endpoint.TypeName(),
			Err:      ErrTypeMismatch,
		}
	}

	if err := endpoint.Deliver(ctx, msg); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &DispatchError{
			Identity: identity,
			Link:     link,
			TypeName: msgType.String(),
			Err:      err,
		}
	}

	return nil
}

// takeReceiverEndpoint claims the receiver registered under id after
// verifying it carries expected. Claim state is only consumed once the type
// check has passed, so a mismatched claim does not burn the slot.
func (r *Router) takeReceiverEndpoint(id EndpointID, expected reflect.Type) (ReceiverEndpoint, error) {
	r.mu.RLock()
	slot, exists := r.receivers[id]
	r.mu.RUnlock()

	if !exists {
		return nil, &ClaimError{
			Identity: string(id),
			TypeName: expected.String(),
			Err:      ErrPathwayNotFound,
		}
	}

	if slot.typ != expected {
		return nil, &ClaimError{
			Identity: string(id),
			TypeName: expected.String(),
			Expected: slot.typeName,
			Err:      ErrTypeMismatch,
		}
	}

	endpoint, err := slot.take()
	if err != nil {
		return nil, &ClaimError{
			Identity: string(id),
			TypeName: expected.String(),
			Err:      err,
		}
	}

	r.logger.Debug("receiver claimed",
		"identity", string(id),
		"messageType", slot.typeName,
	)

	return endpoint, nil
}

// TakeReceiver atomically claims the receiver registered under id and
// returns its concretely-typed consumer port. Exactly one caller per
// identity succeeds; later calls fail with ErrAlreadyClaimed. The Router
// retains no access to the port after a successful claim. TakeReceiver
// never blocks beyond the slot's own mutex.
func TakeReceiver[T any](r *Router, id EndpointID) (*ReceivePort[T], error) {
	expected := reflect.TypeOf((*T)(nil)).Elem()

	endpoint, err := r.takeReceiverEndpoint(id, expected)
	if err != nil {
		return nil, err
	}

	port, ok := endpoint.port().(*ReceivePort[T])
	if !ok {
		return nil, &ClaimError{
			Identity: string(id),
			TypeName: expected.String(),
			Err:      ErrInternalInconsistency,
		}
	}

	return port, nil
}

// Shutdown closes every registered sender endpoint, identity-addressed and
// link-addressed alike. In-flight values stay receivable; once drained,
// every claimed receiver observes end-of-stream. Subsequent sends through
// the router fail. Closing is idempotent per endpoint.
func (r *Router) Shutdown() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, endpoint := range r.senders {
		endpoint.Close()
	}
	for _, endpoint := range r.pathways {
		endpoint.Close()
	}

	r.logger.Info("router shut down",
		"senders", len(r.senders),
		"pathways", len(r.pathways),
	)
}

// SenderIdentities returns the identities currently holding a sender, in no
// particular order.
func (r *Router) SenderIdentities() []EndpointID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]EndpointID, 0, len(r.senders))
	for id := range r.senders {
		ids = append(ids, id)
	}
	return ids
}

// ReceiverIdentities returns the identities currently holding a receiver
// registration, claimed or not, in no particular order.
func (r *Router) ReceiverIdentities() []EndpointID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]EndpointID, 0, len(r.receivers))
	for id := range r.receivers {
		ids = append(ids, id)
	}
	return ids
}

// Claimed reports whether the receiver registered under id has been taken.
// It returns false when no receiver is registered under id.
func (r *Router) Claimed(id EndpointID) bool {
	r.mu.RLock()
	slot, exists := r.receivers[id]
	r.mu.RUnlock()

	return exists && slot.claimed()
}

// LinkTypes returns the payload types mapped under link with their dispatch
// keys. It returns nil for an unknown link.
func (r *Router) LinkTypes(link LinkID) map[reflect.Type]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typeMap, exists := r.links[link]
	if !exists {
		return nil
	}

	result := make(map[reflect.Type]string, len(typeMap))
	for t, key := range typeMap {
		result[t] = key
	}
	return result
}
