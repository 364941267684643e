// Package realtime is an in-process publish/subscribe hub that fans diary
// change notifications out to live searches (websocket sessions, the CLI
// watch loop).
//
// Delivery is best effort: each listener has its own buffered channel and an
// event that does not fit is dropped for that listener only. There is no
// persistence or replay.
package realtime

import (
	"sync"
	"time"
)

// ChangeKind says what happened to the diary.
type ChangeKind string

const (
	EntryPut     ChangeKind = "put"
	EntryDeleted ChangeKind = "delete"
	// StoreChanged is emitted when the database changed outside this process
	// and the affected day is unknown.
	StoreChanged ChangeKind = "store"
	// SettingsChanged is emitted after the persisted search settings change.
	SettingsChanged ChangeKind = "settings"
)

// ChangeEvent describes a single change. Day is the YYYY-MM-DD key of the
// touched entry and is empty for StoreChanged and SettingsChanged.
type ChangeEvent struct {
	Kind ChangeKind `json:"kind"`
	Day  string     `json:"day,omitempty"`
	At   time.Time  `json:"at"`
}

// NewChangeEvent stamps an event with the current time.
func NewChangeEvent(kind ChangeKind, day string) ChangeEvent {
	return ChangeEvent{Kind: kind, Day: day, At: time.Now()}
}

// Hub is a concurrency-safe fan-out dispatcher.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]chan ChangeEvent
	nextID    uint64
	bufSize   int
}

// NewHub constructs a hub with the given per-listener buffer size.
// If bufSize <= 0, a default of 32 is used.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 32
	}
	return &Hub{
		listeners: make(map[uint64]chan ChangeEvent),
		bufSize:   bufSize,
	}
}

// Register adds a listener and returns its id and receive channel.
// Callers must later Unregister(id) to release resources.
func (h *Hub) Register() (uint64, <-chan ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan ChangeEvent, h.bufSize)
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes the listener and closes its channel. Unknown ids are
// ignored.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Publish delivers ev to every listener without blocking.
func (h *Hub) Publish(ev ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- ev:
		default:
			// Drop for slow listener.
		}
	}
}

// Size returns the current number of listeners.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
