package store

import (
	"context"
	"log"
	"sync"

	"factorydesk/internal/bus"
	"factorydesk/internal/domain"
)

// Synced is the collection surface the coordinator drives. Both
// Collection[T] and Slot[T] satisfy it.
type Synced interface {
	Key() string
	Reload()
	ApplyStorage(raw []byte)
	ApplyBus(payload []byte) bool
}

// Coordinator reconciles the three asynchronous update sources into
// the per-key mirrors: storage-change events from the KV store, bus
// SYNC_RELOAD messages from other contexts, and bus NEW_NOTIFICATION
// messages. Startup is strictly cold-load-then-subscribe so early
// events cannot race the initial read.
type Coordinator struct {
	kv      KeyValueStore
	conn    bus.Conn
	actorID func() string
	viewer  func() *domain.User

	mu        sync.RWMutex
	synced    map[string]Synced
	listeners []func(key string)
	toasts    []func(domain.Notification)

	stopWatch func()
	started   bool
}

func NewCoordinator(kv KeyValueStore, conn bus.Conn, actorID func() string, viewer func() *domain.User) *Coordinator {
	return &Coordinator{
		kv:      kv,
		conn:    conn,
		actorID: actorID,
		viewer:  viewer,
		synced:  map[string]Synced{},
	}
}

// Register adds a collection to the managed set. Must happen before
// Start.
func (c *Coordinator) Register(s Synced) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.synced[s.Key()] = s
}

// OnChange registers a listener called with the collection key after
// any mirror replacement that actually changed data.
func (c *Coordinator) OnChange(fn func(key string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// OnToast registers a sink for notifications that pass the viewer's
// visibility filter.
func (c *Coordinator) OnToast(fn func(domain.Notification)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toasts = append(c.toasts, fn)
}

// Start cold-loads every registered collection, then subscribes to
// storage-change events and the bus — never the reverse order.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	synced := make([]Synced, 0, len(c.synced))
	for _, s := range c.synced {
		synced = append(synced, s)
	}
	c.mu.Unlock()

	for _, s := range synced {
		s.Reload()
	}

	c.stopWatch = c.kv.Watch(c.handleStorage)
	go c.run(ctx)
}

// ColdLoad re-reads every collection from the KV store, used after a
// backup import or an ALL_SYNC broadcast.
func (c *Coordinator) ColdLoad() {
	c.mu.RLock()
	synced := make([]Synced, 0, len(c.synced))
	for _, s := range c.synced {
		synced = append(synced, s)
	}
	c.mu.RUnlock()
	for _, s := range synced {
		s.Reload()
		c.notifyChange(s.Key())
	}
}

func (c *Coordinator) run(ctx context.Context) {
	defer func() {
		if c.stopWatch != nil {
			c.stopWatch()
		}
		c.conn.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.conn.Receive():
			if !ok {
				return
			}
			c.HandleBus(msg)
		}
	}
}

func (c *Coordinator) handleStorage(key string, raw []byte) {
	c.mu.RLock()
	s, ok := c.synced[key]
	c.mu.RUnlock()
	if !ok {
		return
	}
	s.ApplyStorage(raw)
	c.notifyChange(key)
}

// HandleBus processes one bus message. Exported so tests can simulate
// loopback delivery: even though the bus never delivers to self, the
// originId check still drops echoes.
func (c *Coordinator) HandleBus(msg bus.Message) {
	if msg.OriginID != "" && msg.OriginID == c.actorID() {
		return
	}
	switch msg.Kind {
	case bus.KindNewNotification:
		if msg.Notification == nil {
			return
		}
		if !msg.Notification.VisibleTo(c.viewer()) {
			return
		}
		// the writer already persisted the notification; refresh the
		// mirror from storage before surfacing the toast
		c.mu.RLock()
		s, ok := c.synced[KeyNotifications]
		c.mu.RUnlock()
		if ok {
			s.Reload()
			c.notifyChange(KeyNotifications)
		}
		c.notifyToast(*msg.Notification)
	case bus.KindSyncReload:
		if msg.CollectionKey == KeyAllSync {
			c.ColdLoad()
			return
		}
		c.mu.RLock()
		s, ok := c.synced[msg.CollectionKey]
		c.mu.RUnlock()
		if !ok {
			return
		}
		if s.ApplyBus(msg.Payload) {
			c.notifyChange(msg.CollectionKey)
		}
	default:
		log.Printf("sync: unknown bus message kind %q", msg.Kind)
	}
}

func (c *Coordinator) notifyChange(key string) {
	c.mu.RLock()
	listeners := append([]func(string){}, c.listeners...)
	c.mu.RUnlock()
	for _, fn := range listeners {
		fn(key)
	}
}

func (c *Coordinator) notifyToast(n domain.Notification) {
	c.mu.RLock()
	toasts := append([]func(domain.Notification){}, c.toasts...)
	c.mu.RUnlock()
	for _, fn := range toasts {
		fn(n)
	}
}
