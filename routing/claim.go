package routing

import (
	"reflect"
	"sync"
)

// claimSlot guards a registered receiver endpoint behind a one-shot
// ownership transfer. The slot holds the endpoint until exactly one caller
// takes it; every later take fails. take is the slot's only mutator, so
// concurrent claimers racing on the same identity see exactly one winner.
type claimSlot struct {
	typ      reflect.Type
	typeName string

	mu       sync.Mutex
	endpoint ReceiverEndpoint // nil once claimed
}

func newClaimSlot(endpoint ReceiverEndpoint) *claimSlot {
	return &claimSlot{
		typ:      endpoint.MessageType(),
		typeName: endpoint.TypeName(),
		endpoint: endpoint,
	}
}

// take atomically tests and clears the slot. It returns the stored endpoint
// on the first call and ErrAlreadyClaimed afterwards. It never blocks beyond
// the slot's own mutex.
func (s *claimSlot) take() (ReceiverEndpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.endpoint == nil {
		return nil, ErrAlreadyClaimed
	}

	ep := s.endpoint
	s.endpoint = nil
	return ep, nil
}

// claimed reports whether the slot has been taken.
func (s *claimSlot) claimed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpoint == nil
}
