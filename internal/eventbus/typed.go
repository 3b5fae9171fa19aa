// Package eventbus fans run lifecycle events out to in-process consumers.
package eventbus

import (
	"slices"
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 8

// Filter selects the events a subscriber receives.
type Filter[T any] func(T) bool

type subscriber[T any] struct {
	ch      chan T
	filters []Filter[T]
}

func (s subscriber[T]) wants(e T) bool {
	for _, f := range s.filters {
		if !f(e) {
			return false
		}
	}
	return true
}

// TypedBus delivers events of type T to every matching subscriber without
// ever blocking the publisher. Events a full subscriber cannot take are
// dropped and counted.
type TypedBus[T any] struct {
	mu      sync.RWMutex
	subs    []subscriber[T]
	closed  bool
	buffer  int
	dropped atomic.Uint64
}

// NewTyped returns a bus using DefaultBuffer.
func NewTyped[T any]() *TypedBus[T] { return NewTypedWithBuffer[T](DefaultBuffer) }

// NewTypedWithBuffer returns a bus whose subscribers buffer n events.
func NewTypedWithBuffer[T any](n int) *TypedBus[T] {
	return &TypedBus[T]{buffer: max(n, 0)}
}

func (b *TypedBus[T]) Publish(e T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		if !s.wants(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped counts deliveries skipped because a subscriber was full.
func (b *TypedBus[T]) Dropped() uint64 { return b.dropped.Load() }

// Subscribe returns a channel receiving the events accepted by all filters.
// On a closed bus the channel is already closed.
func (b *TypedBus[T]) Subscribe(filters ...Filter[T]) <-chan T {
	ch := make(chan T, b.buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, subscriber[T]{ch: ch, filters: filters})
	return ch
}

func (b *TypedBus[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Unsubscribe detaches sub and closes it. Unknown channels are ignored.
func (b *TypedBus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.subs, func(s subscriber[T]) bool { return s.ch == sub })
	if i < 0 {
		return
	}
	close(b.subs[i].ch)
	b.subs = slices.Delete(b.subs, i, i+1)
}

// Close closes every subscriber channel. Later publishes are discarded.
func (b *TypedBus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
}
