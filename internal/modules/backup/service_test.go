package backup

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factorydesk/internal/bus"
	"factorydesk/internal/domain"
	"factorydesk/internal/store"
)

func adminUser() *domain.User {
	return &domain.User{ID: domain.AdminID, Role: domain.RoleAdmin}
}

func TestExportCollectsAllDocuments(t *testing.T) {
	kv := store.NewMemStore()
	require.NoError(t, kv.Set(store.KeyMachines, []byte(`[{"id":"M-1"}]`)))
	require.NoError(t, kv.Set(store.KeyLanguage, []byte(`"TH"`)))

	b := bus.NewLocalBus()
	svc := NewService(kv, b.Connect(), func() {})

	a, err := svc.Export()
	require.NoError(t, err)
	assert.False(t, a.ExportedAt.IsZero())
	assert.JSONEq(t, `[{"id":"M-1"}]`, string(a.Data[store.KeyMachines]))
	assert.JSONEq(t, `"TH"`, string(a.Data[store.KeyLanguage]))
	_, hasTasks := a.Data[store.KeyTasks]
	assert.False(t, hasTasks)
}

func TestImportWritesKnownKeysAndBroadcasts(t *testing.T) {
	kv := store.NewMemStore()
	b := bus.NewLocalBus()
	listener := b.Connect()

	coldLoaded := false
	svc := NewService(kv, b.Connect(), func() { coldLoaded = true })

	a := &Archive{Data: map[string]json.RawMessage{
		store.KeyMachines: json.RawMessage(`[{"id":"M-9"}]`),
		"unknown-key":     json.RawMessage(`123`),
	}}
	require.NoError(t, svc.Import(adminUser(), a))
	assert.True(t, coldLoaded)

	raw, ok, err := kv.Get(store.KeyMachines)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"M-9"}]`, string(raw))

	_, ok, err = kv.Get("unknown-key")
	require.NoError(t, err)
	assert.False(t, ok)

	select {
	case msg := <-listener.Receive():
		assert.Equal(t, bus.KindSyncReload, msg.Kind)
		assert.Equal(t, store.KeyAllSync, msg.CollectionKey)
		assert.Equal(t, domain.AdminID, msg.OriginID)
	case <-time.After(time.Second):
		t.Fatal("expected a full-reload broadcast")
	}
}

func TestImportRejectsInvalidPayloads(t *testing.T) {
	kv := store.NewMemStore()
	b := bus.NewLocalBus()
	svc := NewService(kv, b.Connect(), func() {})

	assert.ErrorIs(t, svc.Import(adminUser(), nil), ErrInvalidBackup)
	assert.ErrorIs(t, svc.Import(adminUser(), &Archive{}), ErrInvalidBackup)

	bad := &Archive{Data: map[string]json.RawMessage{
		store.KeyMachines: json.RawMessage(`{broken`),
	}}
	assert.ErrorIs(t, svc.Import(adminUser(), bad), ErrInvalidBackup)

	// nothing written on rejection
	_, ok, err := kv.Get(store.KeyMachines)
	require.NoError(t, err)
	assert.False(t, ok)
}
