// Package publisher delivers audit events to a store and optional sinks.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"willgate/pkg/domain"
	"willgate/pkg/platform/audit"
)

// ErrBufferFull is returned in async mode when the buffer cannot take another event.
var ErrBufferFull = errors.New("audit buffer full")

// ErrClosed is returned when emitting after Close.
var ErrClosed = errors.New("audit publisher closed")

// Publisher writes events synchronously, or through a bounded buffer drained by
// a single goroutine when WithAsyncBuffer is set.
type Publisher struct {
	store  audit.Store
	sinks  []audit.Appender
	logger *slog.Logger

	bufferSize int
	events     chan audit.Event
	done       chan struct{}

	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with a buffer of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

// WithSink adds a best-effort downstream sink. Sink failures are logged, not returned.
func WithSink(sink audit.Appender) Option {
	return func(p *Publisher) {
		p.sinks = append(p.sinks, sink)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.events = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit stamps ID, timestamp and category when missing and delivers the event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if p.events == nil {
		return p.deliver(ctx, event)
	}

	select {
	case p.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"account", event.Account,
		)
		return ErrBufferFull
	}
}

// List returns an account's events from the backing store.
func (p *Publisher) List(ctx context.Context, account domain.Address) ([]audit.Event, error) {
	return p.store.ListByAccount(ctx, account)
}

// Close stops accepting events and, in async mode, drains the buffer.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.events != nil {
		close(p.events)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
	}
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.events {
		if err := p.deliver(context.Background(), event); err != nil {
			p.logger.Error("failed to persist audit event",
				"action", event.Action,
				"account", event.Account,
				"error", err,
			)
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		if err := sink.Append(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "audit sink append failed",
				"action", event.Action,
				"account", event.Account,
				"error", err,
			)
		}
	}
	return nil
}
