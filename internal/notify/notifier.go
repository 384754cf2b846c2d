package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/calvinalkan/progress-table/internal/dataset"
)

// ErrNotification wraps a failed publish. The commit that triggered it is
// not rolled back.
var ErrNotification = errors.New("notification failed")

// TaskKind tags a [Result].
type TaskKind int

const (
	// TaskPublish is the synchronous publish of a commit.
	TaskPublish TaskKind = iota + 1
	// TaskCache is a background cache write.
	TaskCache
)

func (k TaskKind) String() string {
	switch k {
	case TaskPublish:
		return "publish"
	case TaskCache:
		return "cache"
	default:
		return fmt.Sprintf("TaskKind(%d)", int(k))
	}
}

// Result is the outcome of one notifier task.
type Result struct {
	Kind    TaskKind
	Dataset dataset.Dataset
	Err     error
}

// CacheWriter persists a snapshot to the background cache.
type CacheWriter interface {
	WriteCache(ds dataset.Dataset) error
}

// Options configures a [Notifier].
type Options struct {
	// Publisher receives every commit. Nil means [Discard].
	Publisher Publisher
	// Cache receives coalesced snapshots in the background. Nil disables the
	// cache writer.
	Cache CacheWriter
	// Report is called with publish failures (wrapped in ErrNotification).
	// These are meant for the user.
	Report func(err error)
	// Logger receives cache failures. Nil discards them.
	Logger *slog.Logger
	// ResultBuffer is the capacity of the [Notifier.Results] channel.
	// Results are dropped while it is full. Zero selects 64.
	ResultBuffer int
}

// Notifier reacts to committed datasets.
//
// Publishing happens on the caller's goroutine. Cache writes happen on a
// single worker goroutine that keeps one pending snapshot: commits that
// arrive while a write is in flight replace the pending snapshot, so the
// newest one is always the next to be written.
type Notifier struct {
	pub    Publisher
	cache  CacheWriter
	report func(error)
	logger *slog.Logger

	results chan Result
	wake    chan struct{}
	done    chan struct{}

	mu      sync.Mutex
	pending *dataset.Dataset
	closed  bool
}

// New starts a Notifier. Call [Notifier.Close] to flush and stop it.
func New(opts Options) *Notifier {
	if opts.Publisher == nil {
		opts.Publisher = Discard
	}

	if opts.Report == nil {
		opts.Report = func(error) {}
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.ResultBuffer <= 0 {
		opts.ResultBuffer = 64
	}

	n := &Notifier{
		pub:     opts.Publisher,
		cache:   opts.Cache,
		report:  opts.Report,
		logger:  opts.Logger.With("component", "notify"),
		results: make(chan Result, opts.ResultBuffer),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	go n.run()

	return n
}

// Results delivers task outcomes. The channel is closed by [Notifier.Close].
func (n *Notifier) Results() <-chan Result {
	return n.results
}

// Committed handles one committed snapshot: it normalizes ds, publishes it
// as [EventData] and schedules a cache write. It returns once the publish
// has finished; the cache write may still be pending.
func (n *Notifier) Committed(ctx context.Context, ds dataset.Dataset) {
	prepared := dataset.PrepareForPersistence(ds)

	err := n.pub.Publish(ctx, EventData, prepared)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrNotification, err)
		n.report(err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}

	n.emit(Result{Kind: TaskPublish, Dataset: prepared, Err: err})

	if n.cache == nil {
		return
	}

	n.pending = &prepared

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// Close writes any pending snapshot, stops the worker and closes the
// results channel. Later commits are still published but no longer cached.
func (n *Notifier) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()

		return nil
	}

	n.closed = true
	close(n.wake)
	n.mu.Unlock()

	<-n.done
	close(n.results)

	return nil
}

func (n *Notifier) run() {
	defer close(n.done)

	for range n.wake {
		n.flush()
	}

	n.flush()
}

func (n *Notifier) flush() {
	n.mu.Lock()
	pending := n.pending
	n.pending = nil
	n.mu.Unlock()

	if pending == nil {
		return
	}

	err := n.cache.WriteCache(*pending)
	if err != nil {
		n.logger.Warn("cache write failed", "error", err)
	}

	n.mu.Lock()
	n.emit(Result{Kind: TaskCache, Dataset: *pending, Err: err})
	n.mu.Unlock()
}

// emit must be called with mu held.
func (n *Notifier) emit(r Result) {
	select {
	case n.results <- r:
	default:
	}
}
