package notification

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factorydesk/internal/domain"
	"factorydesk/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Collection[domain.Notification]) {
	t.Helper()
	kv := store.NewMemStore()
	col := store.NewCollection[domain.Notification](store.KeyNotifications, kv, nil, nil)
	return NewService(col, nil), col
}

func admin() *domain.User {
	return &domain.User{ID: domain.AdminID, Name: domain.AdminDisplayName, Role: domain.RoleAdmin, Department: "Control"}
}

func TestPushPrependsAndCaps(t *testing.T) {
	svc, col := newTestService(t)

	for i := 0; i < maxStored+10; i++ {
		_, err := svc.Push(admin(), domain.Notification{
			Title:    fmt.Sprintf("แจ้งเตือน %d", i),
			Category: domain.CategorySystem,
		})
		require.NoError(t, err)
	}

	stored := col.LoadAll()
	require.Len(t, stored, maxStored)
	// newest first
	assert.Equal(t, fmt.Sprintf("แจ้งเตือน %d", maxStored+9), stored[0].Title)
}

func TestPushFillsDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	n, err := svc.Push(admin(), domain.Notification{Title: "x", Category: domain.CategorySystem})
	require.NoError(t, err)
	assert.Contains(t, n.ID, "NOTIF-")
	assert.Equal(t, domain.AdminID, n.SenderID)
	assert.False(t, n.Timestamp.IsZero())

	system, err := svc.Push(nil, domain.Notification{Title: "boot", Category: domain.CategorySystem})
	require.NoError(t, err)
	assert.Equal(t, "SYSTEM", system.SenderID)
}

func TestListVisibleFiltersByViewer(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Push(admin(), domain.Notification{
		Title: "งานของสมหญิง", Category: domain.CategoryTask, TargetID: "P-002",
	})
	require.NoError(t, err)
	_, err = svc.Push(admin(), domain.Notification{
		Title: "งานฝ่ายผลิต", Category: domain.CategoryTask, TargetDepartment: "Production",
	})
	require.NoError(t, err)
	_, err = svc.Push(admin(), domain.Notification{
		Title: "ประกาศ", Category: domain.CategorySystem,
	})
	require.NoError(t, err)

	p2 := &domain.User{ID: "P-002", Name: "สมหญิง", Role: domain.RoleUser, Department: "Production"}
	visible, unread := svc.ListVisible(p2)
	assert.Len(t, visible, 3)
	assert.Equal(t, 3, unread)

	p3 := &domain.User{ID: "P-003", Name: "สมชาย", Role: domain.RoleUser, Department: "Maintenance"}
	visible, unread = svc.ListVisible(p3)
	assert.Len(t, visible, 1)
	assert.Equal(t, 1, unread)
	assert.Equal(t, "ประกาศ", visible[0].Title)
}

func TestAdminAliasAddressing(t *testing.T) {
	svc, _ := newTestService(t)
	actor := &domain.User{ID: "P-001", Name: "สมศรี", Role: domain.RoleUser}

	_, err := svc.Push(actor, domain.Notification{
		Title: "รับทราบงานแล้ว", Category: domain.CategoryTask,
		TargetUserName: "admin tmc", TargetDepartment: "Control",
	})
	require.NoError(t, err)

	visible, _ := svc.ListVisible(admin())
	require.Len(t, visible, 1)
	assert.Equal(t, "รับทราบงานแล้ว", visible[0].Title)
}

func TestMarkReadAndClearAll(t *testing.T) {
	svc, col := newTestService(t)

	n, err := svc.Push(admin(), domain.Notification{Title: "x", Category: domain.CategorySystem})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(admin(), n.ID))
	_, unread := svc.ListVisible(admin())
	assert.Equal(t, 0, unread)

	assert.ErrorIs(t, svc.MarkRead(admin(), "NOTIF-404"), ErrNotFound)

	require.NoError(t, svc.ClearAll(admin()))
	assert.Empty(t, col.LoadAll())
}

func TestOnToastFiresLocally(t *testing.T) {
	svc, _ := newTestService(t)

	var got []domain.Notification
	svc.OnToast(func(n domain.Notification) { got = append(got, n) })

	_, err := svc.Push(admin(), domain.Notification{Title: "x", Category: domain.CategorySystem})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Title)
}
