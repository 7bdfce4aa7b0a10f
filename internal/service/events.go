package service

import (
	"sync"
	"sync/atomic"
)

// EventType defines the type of event
type EventType string

const (
	EventComponentAdded        EventType = "component_added"
	EventComponentDeleted      EventType = "component_deleted"
	EventParametersSaved       EventType = "parameters_saved"
	EventEditorChanged         EventType = "editor_changed"
	EventConnectionAdded       EventType = "connection_added"
	EventConnectionRemoved     EventType = "connection_removed"
	EventOverlayAttached       EventType = "overlay_attached"
	EventOverlaysCleared       EventType = "overlays_cleared"
	EventNotificationShown     EventType = "notification_shown"
	EventNotificationDismissed EventType = "notification_dismissed"
	EventSolveStarted          EventType = "solve_started"
	EventSolveFinished         EventType = "solve_finished"
)

// Event is one change to the session, as published on the bus
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventBus fans session events out to subscriber channels. A nil bus
// discards everything.
type EventBus struct {
	mu      sync.RWMutex
	subs    map[chan<- Event]struct{}
	dropped atomic.Uint64
}

// NewEventBus creates an empty bus
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan<- Event]struct{})}
}

// Subscribe registers ch. Events are offered without blocking, so ch should
// be buffered.
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subs[ch] = struct{}{}
}

// Unsubscribe removes ch without closing it
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	delete(eb.subs, ch)
}

// Publish offers event to every subscriber; full channels miss it
func (eb *EventBus) Publish(event Event) {
	if eb == nil {
		return
	}
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for ch := range eb.subs {
		select {
		case ch <- event:
		default:
			eb.dropped.Add(1)
		}
	}
}

// Dropped counts deliveries skipped because a subscriber was full
func (eb *EventBus) Dropped() uint64 {
	if eb == nil {
		return 0
	}
	return eb.dropped.Load()
}
