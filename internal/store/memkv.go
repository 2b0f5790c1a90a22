package store

import (
	"fmt"
	"sync"
)

// MemStore is the in-memory KeyValueStore used by tests and the seed
// tool. Plain Set never notifies watchers (a context does not receive
// storage events for its own writes); SimulateExternalWrite stands in
// for a write arriving from another context.
type MemStore struct {
	mu       sync.Mutex
	docs     map[string][]byte
	watchers map[int]func(key string, value []byte)
	nextID   int
	maxBytes int
}

func NewMemStore() *MemStore {
	return &MemStore{
		docs:     map[string][]byte{},
		watchers: map[int]func(string, []byte){},
	}
}

// SetQuota caps document size, mirroring GormStore's WithQuota.
func (s *MemStore) SetQuota(maxBytes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxBytes = maxBytes
}

func (s *MemStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.docs[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (s *MemStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxBytes > 0 && len(value) > s.maxBytes {
		return fmt.Errorf("document %q is %d bytes (budget %d): %w",
			key, len(value), s.maxBytes, ErrQuotaExceeded)
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.docs[key] = cp
	return nil
}

func (s *MemStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	return nil
}

func (s *MemStore) Watch(fn func(key string, value []byte)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}

// SimulateExternalWrite applies a write as if another context made it
// and fires every watcher, the way the browser storage event fires in
// every tab except the writer.
func (s *MemStore) SimulateExternalWrite(key string, value []byte) {
	s.mu.Lock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.docs[key] = cp
	watchers := make([]func(string, []byte), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(key, value)
	}
}
