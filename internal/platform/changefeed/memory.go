package changefeed

import (
	"context"
	"errors"
	"sync"
)

const defaultSubscriberBuffer = 32

// ErrClosed is returned after the broker has been closed.
var ErrClosed = errors.New("changefeed: closed")

// MemoryBroker fans changes out to in-process subscribers. Slow subscribers drop changes
// rather than blocking publishers.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[chan Change]struct{}
	buffer int
	closed bool
}

var _ Broker = (*MemoryBroker)(nil)

// NewMemoryBroker creates a broker. buffer <= 0 uses the default per-subscriber buffer.
func NewMemoryBroker(buffer int) *MemoryBroker {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &MemoryBroker{subs: make(map[chan Change]struct{}), buffer: buffer}
}

func (b *MemoryBroker) Publish(_ context.Context, change Change) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	for ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context) (<-chan Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	ch := make(chan Change, b.buffer)
	b.subs[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		b.unsubscribe(ch)
	}()
	return ch, nil
}

func (b *MemoryBroker) unsubscribe(ch chan Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Close closes every subscriber channel.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
	return nil
}
