// Package events implements the in-process notification channel used to
// stream order updates to kitchen and waitstaff clients over SSE.
// Delivery is best effort: publishing never blocks, and events for slow
// or absent subscribers are dropped.
package events

import (
	"fmt"
	"sync"
)

// Event is a single named event on a channel, e.g. "new_item" on
// "kitchen" or "item_ready" on "table-5".
type Event struct {
	Channel string `json:"channel"`
	Type    string `json:"type"`
	Data    any    `json:"data"`
}

// Publisher is the publish side of the notification channel.
type Publisher interface {
	Publish(channel, eventType string, data any) error
}

// Hub fans published events out to per-channel subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	buffer      int
	closed      bool
}

// NewHub creates a hub whose subscriber channels buffer up to `buffer`
// undelivered events each.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		buffer:      buffer,
	}
}

// Subscribe registers a new listener on the given channel.
func (h *Hub) Subscribe(channel string) chan Event {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[channel] == nil {
		h.subscribers[channel] = make(map[chan Event]struct{})
	}
	h.subscribers[channel][ch] = struct{}{}
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(channel string, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.subscribers[channel]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	if len(subs) == 0 {
		delete(h.subscribers, channel)
	}
	close(ch)
}

// Publish delivers an event to every current subscriber of the channel.
// Subscribers whose buffers are full miss the event.
func (h *Hub) Publish(channel, eventType string, data any) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return fmt.Errorf("hub is closed")
	}

	ev := Event{Channel: channel, Type: eventType, Data: data}
	for ch := range h.subscribers[channel] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// Close shuts the hub down and closes all subscriber channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for channel, subs := range h.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(h.subscribers, channel)
	}
}

// TableChannel returns the channel name waitstaff clients listen on for
// a specific table.
func TableChannel(tableID int64) string {
	return fmt.Sprintf("table-%d", tableID)
}

// KitchenChannel is the channel kitchen clients listen on.
const KitchenChannel = "kitchen"
