package routing

import (
	"context"
	"sync"
)

// pathway is the shared state behind one SendPort/ReceivePort pair: a
// bounded FIFO plus two signal channels, one telling producers the consumer
// is gone and one telling the consumer the stream has ended. The data
// channel itself is never closed, so teardown cannot race a suspended send.
type pathway[T any] struct {
	ch   chan T
	done chan struct{} // consumer dropped
	eos  chan struct{} // producer closed the stream

	closeSend sync.Once
	closeRecv sync.Once
}

// NewPathway creates a bounded FIFO pathway of the given capacity carrying
// values of type T and returns its producer and consumer ports. Capacity 0
// yields rendezvous semantics: every send waits for a matching receive.
func NewPathway[T any](capacity int) (*SendPort[T], *ReceivePort[T]) {
	if capacity < 0 {
		capacity = 0
	}

	p := &pathway[T]{
		ch:   make(chan T, capacity),
		done: make(chan struct{}),
		eos:  make(chan struct{}),
	}

	return &SendPort[T]{p: p}, &ReceivePort[T]{p: p}
}

// SendPort is the producer side of a pathway. A pathway has exactly one
// producer side; Send and Close are safe to call from multiple goroutines.
type SendPort[T any] struct {
	p *pathway[T]
}

// Send enqueues msg, waiting while the pathway is at capacity. It returns
// ErrSendFailed once the consumer side has been dropped, ErrPathwayClosed
// after Close, and ctx.Err() if the context ends first. A send that returns
// an error has not enqueued the message.
func (s *SendPort[T]) Send(ctx context.Context, msg T) error {
	// Fail fast on an already-ended pathway rather than racing the
	// buffered enqueue against the signal channels.
	select {
	case <-s.p.done:
		return ErrSendFailed
	case <-s.p.eos:
		return ErrPathwayClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case s.p.ch <- msg:
		return nil
	case <-s.p.done:
		return ErrSendFailed
	case <-s.p.eos:
		return ErrPathwayClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the stream. Buffered values remain receivable; once drained
// the consumer observes end-of-stream. Safe to call more than once.
func (s *SendPort[T]) Close() {
	s.p.closeSend.Do(func() {
		close(s.p.eos)
	})
}

// Capacity returns the pathway's fixed capacity.
func (s *SendPort[T]) Capacity() int {
	return cap(s.p.ch)
}

// ReceivePort is the consumer side of a pathway. A pathway has exactly one
// consumer.
type ReceivePort[T any] struct {
	p *pathway[T]
}

// Receive dequeues the next value in FIFO order, waiting while the pathway
// is empty. It returns ErrPathwayClosed once the producer has closed the
// pathway and all buffered values are drained, and ctx.Err() if the context
// ends first.
func (r *ReceivePort[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	select {
	case v := <-r.p.ch:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-r.p.eos:
		// Drain buffered values before reporting end-of-stream.
		select {
		case v := <-r.p.ch:
			return v, nil
		default:
			return zero, ErrPathwayClosed
		}
	}
}

// Close drops the consumer side. Producers observe ErrSendFailed on
// subsequent sends, including sends currently suspended on a full pathway.
// Safe to call more than once.
func (r *ReceivePort[T]) Close() {
	r.p.closeRecv.Do(func() {
		close(r.p.done)
	})
}

// Capacity returns the pathway's fixed capacity.
func (r *ReceivePort[T]) Capacity() int {
	return cap(r.p.ch)
}

// Len returns the number of values currently buffered.
func (r *ReceivePort[T]) Len() int {
	return len(r.p.ch)
}
