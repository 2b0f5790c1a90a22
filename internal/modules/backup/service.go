package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"factorydesk/internal/bus"
	"factorydesk/internal/domain"
	"factorydesk/internal/store"
)

var ErrInvalidBackup = errors.New("invalid backup payload")

// Archive is the exported form: every persisted document keyed by its
// logical name, plus a small header.
type Archive struct {
	ExportedAt time.Time                  `json:"exportedAt"`
	Data       map[string]json.RawMessage `json:"data"`
}

// Service exports and imports the whole terminal database. Import is
// all-or-nothing at the validation stage, then writes key by key and
// finishes with a full-reload broadcast.
type Service struct {
	kv   store.KeyValueStore
	pub  bus.Publisher
	cold func()
}

func NewService(kv store.KeyValueStore, pub bus.Publisher, coldLoad func()) *Service {
	return &Service{kv: kv, pub: pub, cold: coldLoad}
}

func (s *Service) Export() (*Archive, error) {
	a := &Archive{
		ExportedAt: time.Now(),
		Data:       make(map[string]json.RawMessage, len(store.AllKeys())),
	}
	for _, key := range store.AllKeys() {
		raw, ok, err := s.kv.Get(key)
		if err != nil {
			return nil, fmt.Errorf("export %q: %w", key, err)
		}
		if ok && len(raw) > 0 {
			a.Data[key] = json.RawMessage(raw)
		}
	}
	return a, nil
}

// Import replaces the stored documents with the archive's and tells
// every context to reload everything. Unknown keys in the archive are
// ignored; documents that are not valid JSON reject the whole import
// before anything is written.
func (s *Service) Import(actor *domain.User, a *Archive) error {
	if a == nil || len(a.Data) == 0 {
		return ErrInvalidBackup
	}
	known := make(map[string]struct{}, len(store.AllKeys()))
	for _, key := range store.AllKeys() {
		known[key] = struct{}{}
	}
	for key, raw := range a.Data {
		if _, ok := known[key]; !ok {
			continue
		}
		if !json.Valid(raw) {
			return fmt.Errorf("%w: document %q", ErrInvalidBackup, key)
		}
	}

	for _, key := range store.AllKeys() {
		raw, ok := a.Data[key]
		if !ok {
			continue
		}
		if err := s.kv.Set(key, raw); err != nil {
			return fmt.Errorf("import %q: %w", key, err)
		}
	}

	s.cold()
	s.pub.Publish(bus.SyncReload(actor.EffectiveID(), store.KeyAllSync, nil))
	return nil
}
