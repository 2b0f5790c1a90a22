package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factorydesk/internal/bus"
	"factorydesk/internal/domain"
	"factorydesk/internal/middleware"
	"factorydesk/internal/modules/backup"
	"factorydesk/internal/modules/inspection"
	"factorydesk/internal/modules/machine"
	"factorydesk/internal/modules/notification"
	"factorydesk/internal/modules/personnel"
	"factorydesk/internal/modules/session"
	"factorydesk/internal/modules/task"
	"factorydesk/internal/modules/trash"
	jwtsvc "factorydesk/internal/pkg/jwt"
	"factorydesk/internal/store"
)

type suite struct {
	router *gin.Engine
	kv     *store.MemStore
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *errorDetail    `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newSuite(t *testing.T) *suite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kv := store.NewMemStore()
	b := bus.NewLocalBus()
	pub := b.Connect()

	machines := store.NewCollection[domain.Machine](store.KeyMachines, kv, pub, domain.SeedMachines)
	records := store.NewCollection[domain.InspectionRecord](store.KeyRecords, kv, pub, nil)
	trashRecords := store.NewCollection[domain.InspectionRecord](store.KeyTrashRecords, kv, pub, nil)
	trashTasks := store.NewCollection[domain.Task](store.KeyTrashTasks, kv, pub, nil)
	trashMachines := store.NewCollection[domain.Machine](store.KeyTrashMachines, kv, pub, nil)
	trashPersonnel := store.NewCollection[domain.Personnel](store.KeyTrashPersonnel, kv, pub, nil)
	roster := store.NewCollection[domain.Personnel](store.KeyPersonnel, kv, pub, domain.SeedPersonnel)
	departments := store.NewCollection[string](store.KeyDepartments, kv, pub, domain.SeedDepartments)
	notifications := store.NewCollection[domain.Notification](store.KeyNotifications, kv, pub, nil)
	tasks := store.NewCollection[domain.Task](store.KeyTasks, kv, pub, nil)
	sessionSlot := store.NewSlot[domain.User](store.KeySession, kv, pub)

	j := jwtsvc.New("e2e_test_secret", time.Hour)
	notifSvc := notification.NewService(notifications, pub)
	machineSvc := machine.NewService(machines, records, notifSvc)
	inspectionSvc := inspection.NewService(records, machineSvc, notifSvc)
	taskSvc := task.NewService(tasks, notifSvc)
	personnelSvc := personnel.NewService(roster, departments, notifSvc)
	sessionSvc := session.NewService(sessionSlot, roster, notifSvc, j)
	personnelSvc.OnRosterChange(sessionSvc.ReconcileRoster)
	trashSvc := trash.NewService(
		records, trashRecords,
		tasks, trashTasks,
		machines, trashMachines,
		roster, trashPersonnel,
		2*time.Minute, notifSvc,
	)
	trashSvc.OnRecordsChange(machineSvc.SyncDerived)
	backupSvc := backup.NewService(kv, pub, func() {})

	r := gin.New()
	v1 := r.Group("/api/v1")
	protected := v1.Group("/")
	protected.Use(middleware.Auth(j))

	session.NewHandler(sessionSvc).RegisterRoutes(v1, protected)
	personnel.NewHandler(personnelSvc).RegisterRoutes(v1, protected)
	machine.NewHandler(machineSvc).RegisterRoutes(protected)
	inspection.NewHandler(inspectionSvc).RegisterRoutes(protected)
	task.NewHandler(taskSvc).RegisterRoutes(protected)
	notification.NewHandler(notifSvc).RegisterRoutes(protected)
	trash.NewHandler(trashSvc).RegisterRoutes(protected)
	backup.NewHandler(backupSvc).RegisterRoutes(protected)

	return &suite{router: r, kv: kv}
}

func (s *suite) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp),
		"response was not an envelope: %s", w.Body.String())
	return w, resp
}

func (s *suite) login(t *testing.T, body map[string]any) (string, domain.User) {
	t.Helper()
	w, resp := s.do(t, http.MethodPost, "/api/v1/auth/login", "", body)
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	var data struct {
		User  domain.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token, data.User
}

func TestFullInspectionFlow(t *testing.T) {
	s := newSuite(t)

	adminToken, adminUser := s.login(t, map[string]any{"role": "ADMIN"})
	assert.Equal(t, domain.AdminDisplayName, adminUser.Name)

	// operator logs in from the seeded roster
	opToken, opUser := s.login(t, map[string]any{"role": "USER", "personnelId": "P-001"})
	assert.Equal(t, "Production", opUser.Department)

	// operator submits a checklist run against a seeded machine
	w, resp := s.do(t, http.MethodPost, "/api/v1/inspections", opToken, map[string]any{
		"machineId": "M-001",
		"values": map[string]any{
			"chk-estop":    map[string]any{"status": "NORMAL"},
			"chk-guard":    map[string]any{"status": "NORMAL"},
			"chk-leak":     map[string]any{"status": "WARNING", "note": "ซึมเล็กน้อย"},
			"chk-pressure": "180",
			"chk-oil-temp": "55",
		},
		"operatorName":      opUser.Name,
		"operatorSignature": "data:image/png;base64,sig",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var rec domain.InspectionRecord
	require.NoError(t, json.Unmarshal(resp.Data, &rec))
	assert.Equal(t, domain.StatusWarning, rec.OverallStatus)
	assert.Equal(t, domain.ApprovalPending, rec.ApprovalStatus)

	// derived fields landed on the machine
	w, resp = s.do(t, http.MethodGet, "/api/v1/machines/M-001", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var m domain.Machine
	require.NoError(t, json.Unmarshal(resp.Data, &m))
	assert.Equal(t, domain.StatusWarning, m.Status)
	assert.Equal(t, time.Now().Format("2006-01-02"), m.LastInspection)

	// incomplete submission is rejected
	w, resp = s.do(t, http.MethodPost, "/api/v1/inspections", opToken, map[string]any{
		"machineId": "M-001",
		"values": map[string]any{
			"chk-estop": map[string]any{"status": "NORMAL"},
		},
		"operatorSignature": "sig",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestTrashLifecycleOverHTTP(t *testing.T) {
	s := newSuite(t)

	adminToken, _ := s.login(t, map[string]any{"role": "ADMIN"})
	opToken, opUser := s.login(t, map[string]any{"role": "USER", "personnelId": "P-001"})

	// submit a record to have something to trash
	w, resp := s.do(t, http.MethodPost, "/api/v1/inspections", opToken, map[string]any{
		"machineId": "M-002",
		"values": map[string]any{
			"chk-vibration":     map[string]any{"status": "NORMAL"},
			"chk-spindle-temp":  "40",
			"chk-coolant-level": map[string]any{"status": "NORMAL"},
			"chk-coolant-conc":  "8",
		},
		"operatorName":      opUser.Name,
		"operatorSignature": "sig",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rec domain.InspectionRecord
	require.NoError(t, json.Unmarshal(resp.Data, &rec))

	// the operator may not trash records
	w, _ = s.do(t, http.MethodPost, "/api/v1/trash/records/"+rec.ID, opToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the admin may
	w, _ = s.do(t, http.MethodPost, "/api/v1/trash/records/"+rec.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// with its only record in the trash the machine reverts to defaults
	w, resp = s.do(t, http.MethodGet, "/api/v1/machines/M-002", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var m domain.Machine
	require.NoError(t, json.Unmarshal(resp.Data, &m))
	assert.Equal(t, "-", m.LastInspection)
	assert.Equal(t, 100, m.Efficiency)

	w, resp = s.do(t, http.MethodGet, "/api/v1/trash/records", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Entries     []trash.Entry `json:"entries"`
		RetentionMs int64         `json:"retentionMs"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &listing))
	require.Len(t, listing.Entries, 1)
	assert.Equal(t, (2 * time.Minute).Milliseconds(), listing.RetentionMs)
	assert.Greater(t, listing.Entries[0].RemainingMs, int64(0))

	// restore brings it back into history
	w, _ = s.do(t, http.MethodPost, "/api/v1/trash/records/"+rec.ID+"/restore", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = s.do(t, http.MethodGet, "/api/v1/inspections?machine_id=M-002", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []domain.InspectionRecord
	require.NoError(t, json.Unmarshal(resp.Data, &history))
	require.Len(t, history, 1)
	assert.Nil(t, history[0].DeletedAt)

	// the restored record drives the derived fields again
	w, resp = s.do(t, http.MethodGet, "/api/v1/machines/M-002", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &m))
	assert.Equal(t, time.Now().Format("2006-01-02"), m.LastInspection)
}

func TestTaskAssignmentAndNotifications(t *testing.T) {
	s := newSuite(t)

	adminToken, _ := s.login(t, map[string]any{"role": "ADMIN"})
	opToken, opUser := s.login(t, map[string]any{"role": "USER", "personnelId": "P-001"})

	w, resp := s.do(t, http.MethodPost, "/api/v1/tasks", adminToken, map[string]any{
		"title":        "เปลี่ยนสายพานลำเลียง",
		"assigneeName": opUser.Name,
		"priority":     "HIGH",
		"dueDate":      "2026-09-15",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created domain.Task
	require.NoError(t, json.Unmarshal(resp.Data, &created))

	// the assignee sees the task notification
	w, resp = s.do(t, http.MethodGet, "/api/v1/notifications", opToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inbox struct {
		Notifications []domain.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unread_count"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &inbox))
	found := false
	for _, n := range inbox.Notifications {
		if n.Category == domain.CategoryTask && n.TargetUserName == opUser.Name {
			found = true
		}
	}
	assert.True(t, found, "assignee did not receive the task notification")

	// non-admin task creation is rejected
	w, _ = s.do(t, http.MethodPost, "/api/v1/tasks", opToken, map[string]any{
		"title":        "x",
		"assigneeName": "ใครสักคน",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// acknowledging moves it forward
	w, resp = s.do(t, http.MethodPatch, "/api/v1/tasks/"+created.ID, opToken, map[string]any{
		"status": "IN_PROGRESS",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated domain.Task
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Equal(t, domain.TaskInProgress, updated.Status)
}

func TestBackupExportImportRoundTrip(t *testing.T) {
	s := newSuite(t)
	adminToken, _ := s.login(t, map[string]any{"role": "ADMIN"})
	opToken, _ := s.login(t, map[string]any{"role": "USER", "personnelId": "P-001"})

	// backup surface is admin-only
	w, _ := s.do(t, http.MethodGet, "/api/v1/backup/export", opToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp := s.do(t, http.MethodGet, "/api/v1/backup/export", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var archive backup.Archive
	require.NoError(t, json.Unmarshal(resp.Data, &archive))
	assert.NotEmpty(t, archive.Data[store.KeyPersonnel])

	// wipe one document, then import the archive to bring it back
	require.NoError(t, s.kv.Set(store.KeyPersonnel, []byte(`[]`)))
	w, _ = s.do(t, http.MethodPost, "/api/v1/backup/import", adminToken, archive)
	require.Equal(t, http.StatusOK, w.Code)

	raw, ok, err := s.kv.Get(store.KeyPersonnel)
	require.NoError(t, err)
	require.True(t, ok)
	var people []domain.Personnel
	require.NoError(t, json.Unmarshal(raw, &people))
	assert.Len(t, people, len(domain.SeedPersonnel()))
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	s := newSuite(t)
	for _, path := range []string{"/api/v1/machines", "/api/v1/tasks", "/api/v1/notifications"} {
		w, resp := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
	}

	// the roster listing backs the login screen and stays public
	w, _ := s.do(t, http.MethodGet, "/api/v1/personnel", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
