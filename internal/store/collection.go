package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"factorydesk/internal/bus"
)

// Collection is the typed accessor over one named KV document. All
// collection writes go through Write so the store, the in-memory
// mirror and the SYNC_RELOAD broadcast stay mutually consistent;
// direct KV writes bypassing it bypass synchronization and are a
// defect.
type Collection[T any] struct {
	key  string
	kv   KeyValueStore
	pub  bus.Publisher
	seed func() []T

	mu     sync.Mutex
	mirror []T
	loaded bool
}

func NewCollection[T any](key string, kv KeyValueStore, pub bus.Publisher, seed func() []T) *Collection[T] {
	return &Collection[T]{key: key, kv: kv, pub: pub, seed: seed}
}

func (c *Collection[T]) Key() string {
	return c.key
}

// LoadAll re-reads the document from the KV store and replaces the
// mirror. Absent, corrupt or empty documents fall back to the seed
// when the collection carries one; parse failures are logged, never
// surfaced.
func (c *Collection[T]) LoadAll() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mirror = c.readLocked()
	c.loaded = true
	return cloneSlice(c.mirror)
}

func (c *Collection[T]) readLocked() []T {
	raw, ok, err := c.kv.Get(c.key)
	if err != nil {
		log.Printf("store: read %q: %v", c.key, err)
	}
	if ok && len(raw) > 0 {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			log.Printf("store: document %q is corrupt, falling back: %v", c.key, err)
		} else if len(items) > 0 || c.seed == nil {
			return items
		}
	}
	if c.seed == nil {
		return nil
	}
	// seeded collection with no usable data: materialize the seed so
	// every context converges on the same document
	items := c.seed()
	if data, err := json.Marshal(items); err == nil {
		if err := c.kv.Set(c.key, data); err != nil {
			log.Printf("store: seeding %q: %v", c.key, err)
		}
	}
	return items
}

// Snapshot returns the current in-memory mirror without touching the
// KV store, cold-loading on first use.
func (c *Collection[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		c.mirror = c.readLocked()
		c.loaded = true
	}
	return cloneSlice(c.mirror)
}

// Write applies the pure updater to the current sequence, persists the
// result, broadcasts SYNC_RELOAD with the new payload and only then
// replaces the mirror. On a storage failure nothing is applied and the
// error is returned for the caller to surface.
func (c *Collection[T]) Write(actorID string, update func(prev []T) []T) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		c.mirror = c.readLocked()
		c.loaded = true
	}
	next := update(cloneSlice(c.mirror))
	data, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", c.key, err)
	}
	if err := c.kv.Set(c.key, data); err != nil {
		return nil, err
	}
	if c.pub != nil {
		c.pub.Publish(bus.SyncReload(actorID, c.key, data))
	}
	c.mirror = next
	return cloneSlice(next), nil
}

// Reload satisfies the coordinator's Synced surface.
func (c *Collection[T]) Reload() {
	c.LoadAll()
}

// ApplyStorage replaces the mirror with a raw document delivered by a
// storage-change event. Empty or invalid payloads fall back to the
// seed for seeded collections, to the empty sequence otherwise.
func (c *Collection[T]) ApplyStorage(raw []byte) {
	var items []T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			log.Printf("store: storage event for %q is corrupt: %v", c.key, err)
			items = nil
		}
	}
	if len(items) == 0 && c.seed != nil {
		items = c.seed()
	}
	c.mu.Lock()
	c.mirror = items
	c.loaded = true
	c.mu.Unlock()
}

// ApplyBus handles a SYNC_RELOAD payload: if it is byte-identical to
// the currently stored document the update is skipped and false is
// returned, otherwise the mirror is replaced.
func (c *Collection[T]) ApplyBus(payload []byte) bool {
	stored, ok, err := c.kv.Get(c.key)
	if err == nil && ok && bytes.Equal(stored, payload) {
		return false
	}
	c.ApplyStorage(payload)
	return true
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
