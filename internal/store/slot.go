package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"factorydesk/internal/bus"
)

// Slot is the single-object counterpart of Collection: one JSON object
// (or scalar) per key, used for the session and the preference slots.
type Slot[T any] struct {
	key string
	kv  KeyValueStore
	pub bus.Publisher

	mu     sync.Mutex
	value  *T
	loaded bool
}

func NewSlot[T any](key string, kv KeyValueStore, pub bus.Publisher) *Slot[T] {
	return &Slot[T]{key: key, kv: kv, pub: pub}
}

func (s *Slot[T]) Key() string {
	return s.key
}

// Get returns the current value and whether one is present.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.value = s.readLocked()
		s.loaded = true
	}
	if s.value == nil {
		var zero T
		return zero, false
	}
	return *s.value, true
}

func (s *Slot[T]) readLocked() *T {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		log.Printf("store: read %q: %v", s.key, err)
		return nil
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Printf("store: slot %q is corrupt, treating as empty: %v", s.key, err)
		return nil
	}
	return &v
}

// Set persists the value and broadcasts the change.
func (s *Slot[T]) Set(actorID string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", s.key, err)
	}
	if err := s.kv.Set(s.key, data); err != nil {
		return err
	}
	if s.pub != nil {
		s.pub.Publish(bus.SyncReload(actorID, s.key, data))
	}
	s.value = &v
	s.loaded = true
	return nil
}

// Clear removes the value without broadcasting; the session lifecycle
// announces itself through notifications instead.
func (s *Slot[T]) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Remove(s.key); err != nil {
		return err
	}
	s.value = nil
	s.loaded = true
	return nil
}

func (s *Slot[T]) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = s.readLocked()
	s.loaded = true
}

func (s *Slot[T]) ApplyStorage(raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(raw) == 0 {
		s.value = nil
		s.loaded = true
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Printf("store: storage event for %q is corrupt: %v", s.key, err)
		s.value = nil
		s.loaded = true
		return
	}
	s.value = &v
	s.loaded = true
}

func (s *Slot[T]) ApplyBus(payload []byte) bool {
	stored, ok, err := s.kv.Get(s.key)
	if err == nil && ok && bytes.Equal(stored, payload) {
		return false
	}
	s.ApplyStorage(payload)
	return true
}
