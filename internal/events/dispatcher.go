package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Event represents a domain event that can be dispatched to observers.
type Event struct {
	// Type is the event type (e.g., "deck:updated")
	Type string

	// UserID limits delivery to one user's clients. Empty means everyone.
	UserID string

	// Data contains the event payload.
	Data any

	// Context provides execution context for the event
	Context context.Context
}

// Observer defines the interface for objects that want to be notified of events.
type Observer interface {
	// OnEvent is called when an event is dispatched.
	// Returns an error if the observer fails to handle the event.
	OnEvent(event Event) error

	// GetName returns a human-readable name for this observer (for logging/debugging).
	GetName() string

	// ShouldHandle returns true if this observer should handle the given event type.
	ShouldHandle(eventType string) bool
}

// EventDispatcher implements the Observer pattern for event distribution.
// Thread-safe for concurrent use.
type EventDispatcher struct {
	observers []Observer
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewEventDispatcher creates a new EventDispatcher.
func NewEventDispatcher(logger *zap.Logger) *EventDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventDispatcher{
		observers: make([]Observer, 0),
		logger:    logger,
	}
}

// Register adds an observer to the dispatcher.
func (d *EventDispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.observers = append(d.observers, observer)
	d.logger.Debug("Registered event observer", zap.String("observer", observer.GetName()))
}

// Unregister removes an observer from the dispatcher.
func (d *EventDispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, obs := range d.observers {
		if obs == observer {
			d.observers[i] = d.observers[len(d.observers)-1]
			d.observers = d.observers[:len(d.observers)-1]
			d.logger.Debug("Unregistered event observer", zap.String("observer", observer.GetName()))
			return
		}
	}
}

// Dispatch sends an event to all registered observers in registration order.
// An observer error is logged and does not stop delivery to the others.
func (d *EventDispatcher) Dispatch(event Event) {
	d.mu.RLock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	d.mu.RUnlock()

	for _, observer := range observers {
		if !observer.ShouldHandle(event.Type) {
			continue
		}

		if err := observer.OnEvent(event); err != nil {
			d.logger.Warn("Observer failed to handle event",
				zap.String("observer", observer.GetName()),
				zap.String("event", event.Type),
				zap.Error(err))
		}
	}
}

// Publish dispatches an event of eventType addressed to userID.
func (d *EventDispatcher) Publish(eventType, userID string, data any) {
	d.Dispatch(Event{
		Type:    eventType,
		UserID:  userID,
		Data:    data,
		Context: context.Background(),
	})
}

// ObserverCount returns the number of registered observers.
func (d *EventDispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}
