package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryEventEmitter dispatches events synchronously to handlers
// registered in memory.
type InMemoryEventEmitter struct {
	handlers []EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates a new instance of InMemoryEventEmitter.
// If logger is nil, a default logger will be used.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		handlers: make([]EventHandler, 0),
		logger:   logger.With("component", "in_memory_event_emitter"),
	}
}

// RegisterHandler adds a new event handler to receive events.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered new event handler", "handler_count", len(e.handlers))
}

// EmitEvent publishes the given event to all registered handlers.
// If any handler returns an error, the event will still be sent to all other handlers,
// and the first error encountered will be returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *ProgressEvent) error {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	e.logger.Debug("emitting event",
		"event_id", event.ID,
		"event_type", event.Type,
		"user_id", event.UserID,
		"handler_count", len(handlers))

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"event_type", event.Type)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// NewLogHandler returns a handler that records every event at info level.
func NewLogHandler(logger *slog.Logger) EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "progress_events")
	return HandlerFunc(func(ctx context.Context, event *ProgressEvent) error {
		logger.InfoContext(ctx, "progress event",
			"event_id", event.ID,
			"event_type", event.Type,
			"user_id", event.UserID,
			"payload", string(event.Payload))
		return nil
	})
}
