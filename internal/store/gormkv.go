package store

import (
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document is one persisted KV row.
type Document struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Value     []byte    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Document) TableName() string {
	return "documents"
}

// GormStore persists documents through gorm (sqlite for a single
// terminal, postgres when several terminals share one database). A
// polling watcher stands in for the browser's storage-change event:
// it fires for rows updated by a different store handle.
type GormStore struct {
	db       *gorm.DB
	maxBytes int
	pollMu   sync.Mutex
	watchers map[int]func(key string, value []byte)
	nextID   int
	lastSeen time.Time
	// last value written through this handle, used to tell foreign
	// writes apart from our own during polling
	ownWrites map[string]string
	stopPoll  chan struct{}
	pollEvery time.Duration
}

type GormStoreOption func(*GormStore)

// WithQuota caps the serialized size of a single document. 0 disables
// the cap.
func WithQuota(maxBytes int) GormStoreOption {
	return func(s *GormStore) { s.maxBytes = maxBytes }
}

func WithPollInterval(d time.Duration) GormStoreOption {
	return func(s *GormStore) { s.pollEvery = d }
}

func NewGormStore(db *gorm.DB, opts ...GormStoreOption) (*GormStore, error) {
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	s := &GormStore{
		db:        db,
		watchers:  map[int]func(string, []byte){},
		ownWrites: map[string]string{},
		lastSeen:  time.Now(),
		pollEvery: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *GormStore) Get(key string) ([]byte, bool, error) {
	var doc Document
	err := s.db.First(&doc, "key = ?", key).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc.Value, true, nil
}

func (s *GormStore) Set(key string, value []byte) error {
	if s.maxBytes > 0 && len(value) > s.maxBytes {
		return fmt.Errorf("document %q is %d bytes (budget %d): %w",
			key, len(value), s.maxBytes, ErrQuotaExceeded)
	}
	doc := Document{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("write document %q: %w", key, err)
	}
	s.pollMu.Lock()
	s.ownWrites[key] = string(value)
	s.pollMu.Unlock()
	return nil
}

func (s *GormStore) Remove(key string) error {
	if err := s.db.Delete(&Document{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("remove document %q: %w", key, err)
	}
	s.pollMu.Lock()
	delete(s.ownWrites, key)
	s.pollMu.Unlock()
	return nil
}

func (s *GormStore) Watch(fn func(key string, value []byte)) func() {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	if s.stopPoll == nil {
		s.stopPoll = make(chan struct{})
		go s.poll(s.stopPoll)
	}
	return func() {
		s.pollMu.Lock()
		defer s.pollMu.Unlock()
		delete(s.watchers, id)
		if len(s.watchers) == 0 && s.stopPoll != nil {
			close(s.stopPoll)
			s.stopPoll = nil
		}
	}
}

func (s *GormStore) poll(stop <-chan struct{}) {
	ticker := time.NewTicker(s.pollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.pollOnce()
		}
	}
}

func (s *GormStore) pollOnce() {
	var docs []Document
	s.pollMu.Lock()
	since := s.lastSeen
	s.pollMu.Unlock()

	if err := s.db.Where("updated_at > ?", since).Find(&docs).Error; err != nil {
		log.Printf("store: poll failed: %v", err)
		return
	}
	for _, doc := range docs {
		s.pollMu.Lock()
		if doc.UpdatedAt.After(s.lastSeen) {
			s.lastSeen = doc.UpdatedAt
		}
		own := s.ownWrites[doc.Key] == string(doc.Value)
		watchers := make([]func(string, []byte), 0, len(s.watchers))
		for _, fn := range s.watchers {
			watchers = append(watchers, fn)
		}
		s.pollMu.Unlock()
		if own {
			continue
		}
		for _, fn := range watchers {
			fn(doc.Key, doc.Value)
		}
	}
}
