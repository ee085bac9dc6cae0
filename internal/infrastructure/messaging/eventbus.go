// Package messaging implements the in-process event bus that fans domain
// events out to handlers (cache invalidation, metrics, audit logging).
package messaging

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scholarstream/scholarstream-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEventBusClosed is returned when operations are attempted on a closed bus.
	ErrEventBusClosed = errors.New("event bus is closed")

	// ErrNilHandler is returned when a nil handler is subscribed.
	ErrNilHandler = errors.New("handler cannot be nil")
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// EventBus is a simple in-memory publisher. Suitable for single-instance
// deployments and testing.
type EventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	asyncMode   bool
	workerPool  chan struct{}
	logger      *zap.Logger
	closed      bool
	closeCh     chan struct{}
	wg          sync.WaitGroup
}

// Config contains configuration for the event bus.
type Config struct {
	// AsyncMode enables asynchronous handler execution.
	AsyncMode bool

	// WorkerPoolSize is the number of concurrent workers for async processing.
	WorkerPoolSize int

	// Logger for structured logging.
	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		AsyncMode:      true,
		WorkerPoolSize: 10,
	}
}

// NewEventBus creates a new in-memory event bus.
func NewEventBus(config Config) *EventBus {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 10
	}

	return &EventBus{
		handlers:    make(map[shared.EventType][]shared.EventHandler),
		allHandlers: make([]shared.EventHandler, 0),
		asyncMode:   config.AsyncMode,
		workerPool:  make(chan struct{}, config.WorkerPoolSize),
		logger:      config.Logger,
		closeCh:     make(chan struct{}),
	}
}

var _ shared.EventPublisher = (*EventBus)(nil)

// Subscribe registers a handler for the event types it declares interest in.
// A handler with no interests receives every event.
func (b *EventBus) Subscribe(handler shared.EventHandler) error {
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	interests := handler.Interests()
	if len(interests) == 0 {
		b.allHandlers = append(b.allHandlers, handler)
		b.logger.Debug("subscribed global handler")
		return nil
	}

	for _, eventType := range interests {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
		b.logger.Debug("subscribed handler", zap.String("event_type", string(eventType)))
	}

	return nil
}

// Publish sends an event to all subscribed handlers.
func (b *EventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}

	handlers := make([]shared.EventHandler, 0, len(b.handlers[event.EventType()])+len(b.allHandlers))
	handlers = append(handlers, b.handlers[event.EventType()]...)
	handlers = append(handlers, b.allHandlers...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Debug("no handlers for event", zap.String("event_type", string(event.EventType())))
		return nil
	}

	if b.asyncMode {
		for _, handler := range handlers {
			b.executeAsync(event, handler)
		}
		return nil
	}

	for _, handler := range handlers {
		if err := b.executeSync(event, handler); err != nil {
			b.logger.Error("handler error",
				zap.String("event_type", string(event.EventType())),
				zap.Error(err))
		}
	}
	return nil
}

// executeAsync executes a handler asynchronously using the worker pool.
func (b *EventBus) executeAsync(event shared.Event, handler shared.EventHandler) {
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()

		select {
		case b.workerPool <- struct{}{}:
			defer func() { <-b.workerPool }()
		case <-b.closeCh:
			return
		}

		start := time.Now()
		if err := handler.Handle(event); err != nil {
			b.logger.Error("async handler error",
				zap.String("event_type", string(event.EventType())),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err))
		}
	}()
}

// executeSync executes a handler synchronously.
func (b *EventBus) executeSync(event shared.Event, handler shared.EventHandler) error {
	return handler.Handle(event)
}

// Close drains pending handlers and shuts the bus down.
func (b *EventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.closeCh)
	b.mu.Unlock()

	b.wg.Wait()

	b.logger.Info("event bus closed")
	return nil
}
