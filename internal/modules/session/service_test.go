package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factorydesk/internal/domain"
	"factorydesk/internal/modules/notification"
	jwtsvc "factorydesk/internal/pkg/jwt"
	"factorydesk/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Collection[domain.Personnel], *notification.Service) {
	t.Helper()
	kv := store.NewMemStore()
	slot := store.NewSlot[domain.User](store.KeySession, kv, nil)
	roster := store.NewCollection[domain.Personnel](store.KeyPersonnel, kv, nil, domain.SeedPersonnel)
	notifs := notification.NewService(
		store.NewCollection[domain.Notification](store.KeyNotifications, kv, nil, nil), nil)
	tokens := jwtsvc.New("test-secret", time.Hour)
	return NewService(slot, roster, notifs, tokens), roster, notifs
}

func TestLoginAdmin(t *testing.T) {
	svc, _, notifs := newTestService(t)

	user, token, err := svc.LoginAdmin()
	require.NoError(t, err)
	assert.Equal(t, domain.AdminID, user.ID)
	assert.Equal(t, domain.AdminDisplayName, user.Name)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.Equal(t, "Control", user.Department)
	assert.NotEmpty(t, token)

	current, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, domain.AdminID, current.ID)

	visible, _ := notifs.ListVisible(user)
	require.Len(t, visible, 1)
	assert.Equal(t, domain.CategorySystem, visible[0].Category)
}

func TestLoginPersonnel(t *testing.T) {
	svc, roster, _ := newTestService(t)
	seeded := roster.LoadAll()
	require.NotEmpty(t, seeded)

	user, token, err := svc.LoginPersonnel(seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, seeded[0].ID, user.ID)
	assert.Equal(t, seeded[0].Name, user.Name)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, seeded[0].Info, user.Department)
	assert.NotEmpty(t, token)

	_, _, err = svc.LoginPersonnel("P-404")
	assert.ErrorIs(t, err, ErrPersonnelNotFound)
}

func TestLogoutClearsSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	user, _, err := svc.LoginAdmin()
	require.NoError(t, err)
	require.NoError(t, svc.Logout(user))

	_, ok := svc.Current()
	assert.False(t, ok)
}

func TestReconcileRosterUpdatesSession(t *testing.T) {
	svc, roster, _ := newTestService(t)
	seeded := roster.LoadAll()
	user, _, err := svc.LoginPersonnel(seeded[0].ID)
	require.NoError(t, err)

	_, err = roster.Write("ADMIN", func(prev []domain.Personnel) []domain.Personnel {
		prev[0].FirstName = "ใหม่"
		prev[0].Name = domain.ComposeName(prev[0].Title, "ใหม่", prev[0].LastName)
		prev[0].Info = "Maintenance"
		return prev
	})
	require.NoError(t, err)

	require.NoError(t, svc.ReconcileRoster())

	current, ok := svc.Current()
	require.True(t, ok)
	assert.NotEqual(t, user.Name, current.Name)
	assert.Equal(t, "Maintenance", current.Department)
}

func TestReconcileRosterSkipsAdmin(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, _, err := svc.LoginAdmin()
	require.NoError(t, err)

	require.NoError(t, svc.ReconcileRoster())
	current, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, domain.AdminDisplayName, current.Name)
}
