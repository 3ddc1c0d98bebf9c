// Package realtime fans backend change notifications out to in-process
// subscribers. One Subscription is opened per table per consumer.
package realtime

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Op is the kind of row change
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
	// OpResync is published after a lost connection when changes may have been missed
	OpResync Op = "RESYNC"
)

// Event announces that a row in Table changed. Consumers do not rely on the
// payload and refetch the whole table.
type Event struct {
	Table string    `json:"table"`
	Op    Op        `json:"op"`
	At    time.Time `json:"at"`
}

// Publisher accepts change events
type Publisher interface {
	Publish(ev Event)
}

const subscriptionBuffer = 16

// Subscription receives events for one table until closed
type Subscription struct {
	hub    *Hub
	id     uint64
	table  string
	events chan Event
	once   sync.Once
}

// Events returns the delivery channel. It is closed when the subscription is.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Table returns the subscribed table, or "" for all tables
func (s *Subscription) Table() string {
	return s.table
}

// Close cancels the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub routes events to subscriptions by table
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]*Subscription
	closed bool
	logger *zap.Logger
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[uint64]*Subscription),
		logger: logger,
	}
}

// Subscribe opens a subscription for table. An empty table receives every event.
func (h *Hub) Subscribe(table string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		hub:    h,
		id:     h.nextID,
		table:  table,
		events: make(chan Event, subscriptionBuffer),
	}
	if h.closed {
		close(sub.events)
		return sub
	}
	if h.subs[table] == nil {
		h.subs[table] = make(map[uint64]*Subscription)
	}
	h.subs[table][sub.id] = sub
	return sub
}

// Publish delivers ev to every subscriber of ev.Table and to wildcard
// subscribers. Delivery never blocks: when a subscriber's buffer is full the
// event is dropped, since a refetch is already pending for that consumer.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for _, key := range []string{ev.Table, ""} {
		for _, sub := range h.subs[key] {
			select {
			case sub.events <- ev:
			default:
				h.logger.Debug("dropping change event for busy subscriber",
					zap.String("table", ev.Table),
					zap.Uint64("subscription", sub.id))
			}
		}
		if ev.Table == "" {
			break
		}
	}
}

// SubscriberCount returns the number of open subscriptions for table
func (h *Hub) SubscriberCount(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[table])
}

// Close closes every subscription. Later subscriptions are born closed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, byID := range h.subs {
		for _, sub := range byID {
			close(sub.events)
		}
	}
	h.subs = make(map[string]map[uint64]*Subscription)
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	byID, ok := h.subs[s.table]
	if !ok {
		return
	}
	if _, ok := byID[s.id]; !ok {
		return
	}
	delete(byID, s.id)
	if len(byID) == 0 {
		delete(h.subs, s.table)
	}
	close(s.events)
}
