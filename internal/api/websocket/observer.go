package websocket

import (
	"github.com/ramonehamilton/mana-tomb/internal/events"
)

// WebSocketObserver forwards domain events to WebSocket clients, honouring
// the event's addressed user.
type WebSocketObserver struct {
	name string
	hub  *Hub
}

// NewWebSocketObserver creates a new observer that forwards events to WebSocket clients.
func NewWebSocketObserver(hub *Hub) *WebSocketObserver {
	return &WebSocketObserver{
		name: "WebSocketObserver",
		hub:  hub,
	}
}

// OnEvent forwards the event to the hub.
func (o *WebSocketObserver) OnEvent(event events.Event) error {
	if o.hub == nil {
		return nil
	}

	o.hub.SendEvent(Event{Type: event.Type, Data: event.Data}, event.UserID)
	return nil
}

// GetName returns the observer's name.
func (o *WebSocketObserver) GetName() string {
	return o.name
}

// ShouldHandle returns true for all events.
func (o *WebSocketObserver) ShouldHandle(eventType string) bool {
	return true
}

var _ events.Observer = (*WebSocketObserver)(nil)
