package liveevents

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// Collections whose changes are broadcast to subscribed viewers. Each
// successful mutation publishes one event so every open screen can
// refetch and re-render from the authoritative records.
const (
	CollectionCustomers    = "customers"
	CollectionBills        = "bills"
	CollectionTransactions = "transactions"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

const (
	DefaultBufferSize       = 50
	DefaultSubscriberBuffer = 16
)

// ChangeEvent describes one committed mutation against a collection.
type ChangeEvent struct {
	Collection string    `json:"collection"`
	Action     string    `json:"action"`
	EntityID   string    `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func IsCollection(name string) bool {
	switch name {
	case CollectionCustomers, CollectionBills, CollectionTransactions:
		return true
	default:
		return false
	}
}

type Hub struct {
	mu               sync.RWMutex
	streams          map[string]*stream
	bufferSize       int
	subscriberBuffer int
}

type stream struct {
	mu     sync.Mutex
	buffer []ChangeEvent
	subs   map[uint64]chan ChangeEvent
	nextID uint64
}

type Subscription struct {
	hub        *Hub
	collection string
	id         uint64
	ch         chan ChangeEvent
	once       sync.Once
}

func NewHub() *Hub {
	return &Hub{
		streams:          make(map[string]*stream),
		bufferSize:       DefaultBufferSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

func (h *Hub) Publish(event ChangeEvent) {
	if h == nil {
		return
	}
	collection := strings.TrimSpace(event.Collection)
	if !IsCollection(collection) {
		return
	}

	stream := h.ensureStream(collection)
	stream.mu.Lock()
	stream.buffer = append(stream.buffer, event)
	if len(stream.buffer) > h.bufferSize {
		stream.buffer = stream.buffer[len(stream.buffer)-h.bufferSize:]
	}
	subs := make([]chan ChangeEvent, 0, len(stream.subs))
	for _, ch := range stream.subs {
		subs = append(subs, ch)
	}
	stream.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) Subscribe(collection string) (*Subscription, []ChangeEvent, error) {
	if h == nil {
		return nil, nil, errors.New("hub_unavailable")
	}
	collection = strings.TrimSpace(collection)
	if !IsCollection(collection) {
		return nil, nil, errors.New("invalid_collection")
	}

	stream := h.ensureStream(collection)
	stream.mu.Lock()
	if stream.subs == nil {
		stream.subs = make(map[uint64]chan ChangeEvent)
	}
	id := stream.nextID
	stream.nextID++
	ch := make(chan ChangeEvent, h.subscriberBuffer)
	stream.subs[id] = ch
	buffer := append([]ChangeEvent(nil), stream.buffer...)
	stream.mu.Unlock()

	return &Subscription{
		hub:        h,
		collection: collection,
		id:         id,
		ch:         ch,
	}, buffer, nil
}

func (h *Hub) ensureStream(collection string) *stream {
	h.mu.RLock()
	current := h.streams[collection]
	h.mu.RUnlock()
	if current != nil {
		return current
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	current = h.streams[collection]
	if current == nil {
		current = &stream{subs: make(map[uint64]chan ChangeEvent)}
		h.streams[collection] = current
	}
	return current
}

func (h *Hub) unsubscribe(collection string, id uint64) {
	if h == nil {
		return
	}

	h.mu.RLock()
	stream := h.streams[collection]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	stream.mu.Lock()
	delete(stream.subs, id)
	stream.mu.Unlock()
}

func (s *Subscription) Events() <-chan ChangeEvent {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.collection, s.id)
	})
}
