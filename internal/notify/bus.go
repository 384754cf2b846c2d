// Package notify delivers committed datasets to their consumers.
//
// A [Notifier] is wired as the commit hook of a table engine. For every
// commit it publishes the normalized snapshot on a [Publisher] and hands it
// to a background cache writer. Publishers shipped here are the in-process
// [Bus] and [Discard]; [NewHandler] exposes a Bus over HTTP as a
// server-sent event stream.
package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/calvinalkan/progress-table/internal/dataset"
)

// EventData is the name of the event published for every commit.
const EventData = "data"

// Publisher sends a named event carrying a dataset to an external consumer.
type Publisher interface {
	Publish(ctx context.Context, event string, ds dataset.Dataset) error
}

// PublisherFunc adapts a function to [Publisher].
type PublisherFunc func(ctx context.Context, event string, ds dataset.Dataset) error

func (f PublisherFunc) Publish(ctx context.Context, event string, ds dataset.Dataset) error {
	return f(ctx, event, ds)
}

// Discard is a Publisher that drops every event.
var Discard Publisher = PublisherFunc(func(context.Context, string, dataset.Dataset) error { return nil })

// Event is a published dataset as seen by [Bus] subscribers.
type Event struct {
	Name string
	Data dataset.Dataset
}

// DefaultSubscriberBuffer is the per-subscriber queue length of a [Bus].
const DefaultSubscriberBuffer = 16

// Bus fans published events out to subscribers. Publish never blocks: a
// subscriber whose queue is full misses the event. The last event is
// retained so late subscribers can start from the current snapshot.
type Bus struct {
	buffer int

	mu      sync.RWMutex
	subs    map[string]chan Event
	last    Event
	hasLast bool

	dropped atomic.Int64
}

// NewBus returns an empty Bus. A buffer <= 0 selects
// [DefaultSubscriberBuffer].
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}

	return &Bus{buffer: buffer, subs: make(map[string]chan Event)}
}

// Subscribe registers a subscriber and returns its id, its event channel and
// a cancel func. Cancel closes the channel and is safe to call twice.
func (b *Bus) Subscribe() (string, <-chan Event, func()) {
	id := uuid.NewString()
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once

	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()

			close(ch)
		})
	}

	return id, ch, cancel
}

// Publish records the event as the latest and offers it to every subscriber.
func (b *Bus) Publish(ctx context.Context, event string, ds dataset.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ev := Event{Name: event, Data: ds}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.last = ev
	b.hasLast = true

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.dropped.Add(1)
		}
	}

	return nil
}

// Latest returns the most recently published event.
func (b *Bus) Latest() (Event, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.last, b.hasLast
}

// Subscribers returns the number of active subscribers.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber
// queue was full.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

var _ Publisher = (*Bus)(nil)
