package routing

import (
	"context"
	"fmt"
	"reflect"
)

// SenderEndpoint is the type-erased producer side of a pathway as the
// Router stores it. Construct one with NewSenderEndpoint.
type SenderEndpoint interface {
	// Deliver downcasts msg to the endpoint's concrete payload type and
	// forwards it into the pathway. The Router verifies the type before
	// calling Deliver, so a failed downcast is an internal inconsistency.
	Deliver(ctx context.Context, msg any) error

	// MessageType returns the runtime tag of the payload type.
	MessageType() reflect.Type

	// TypeName returns a human-readable payload type name for diagnostics.
	TypeName() string

	// Close ends the pathway's stream: buffered values remain receivable,
	// then the consumer observes end-of-stream. Idempotent.
	Close()
}

// ReceiverEndpoint is the type-erased consumer side of a pathway as the
// Router stores it until claimed. Construct one with NewReceiverEndpoint.
type ReceiverEndpoint interface {
	// MessageType returns the runtime tag of the payload type.
	MessageType() reflect.Type

	// TypeName returns a human-readable payload type name for diagnostics.
	TypeName() string

	// port returns the erased *ReceivePort[T]; recovered by TakeReceiver.
	port() any
}

type typedSender[T any] struct {
	send     *SendPort[T]
	typ      reflect.Type
	typeName string
}

// NewSenderEndpoint wraps a producer port for registration with a Router.
func NewSenderEndpoint[T any](send *SendPort[T]) SenderEndpoint {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	return &typedSender[T]{
		send:     send,
		typ:      typ,
		typeName: typ.String(),
	}
}

func (e *typedSender[T]) Deliver(ctx context.Context, msg any) error {
	v, ok := msg.(T)
	if !ok {
		return fmt.Errorf("%w: endpoint carries %s, got %T", ErrInternalInconsistency, e.typeName, msg)
	}
	return e.send.Send(ctx, v)
}

func (e *typedSender[T]) MessageType() reflect.Type {
	return e.typ
}

func (e *typedSender[T]) TypeName() string {
	return e.typeName
}

func (e *typedSender[T]) Close() {
	e.send.Close()
}

type typedReceiver[T any] struct {
	recv     *ReceivePort[T]
	typ      reflect.Type
	typeName string
}

// NewReceiverEndpoint wraps a consumer port for registration with a Router.
func NewReceiverEndpoint[T any](recv *ReceivePort[T]) ReceiverEndpoint {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	return &typedReceiver[T]{
		recv:     recv,
		typ:      typ,
		typeName: typ.String(),
	}
}

func (e *typedReceiver[T]) MessageType() reflect.Type {
	return e.typ
}

func (e *typedReceiver[T]) TypeName() string {
	return e.typeName
}

func (e *typedReceiver[T]) port() any {
	return e.recv
}
