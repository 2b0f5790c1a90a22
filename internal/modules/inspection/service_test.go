package inspection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factorydesk/internal/domain"
	"factorydesk/internal/modules/machine"
	"factorydesk/internal/modules/notification"
	"factorydesk/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Collection[domain.Machine]) {
	t.Helper()
	kv := store.NewMemStore()
	machines := store.NewCollection[domain.Machine](store.KeyMachines, kv, nil, nil)
	records := store.NewCollection[domain.InspectionRecord](store.KeyRecords, kv, nil, nil)
	notifs := notification.NewService(
		store.NewCollection[domain.Notification](store.KeyNotifications, kv, nil, nil), nil)
	machineSvc := machine.NewService(machines, records, notifs)
	return NewService(records, machineSvc, notifs), machines
}

func registerPress(t *testing.T, machines *store.Collection[domain.Machine]) {
	t.Helper()
	_, err := machines.Write("ADMIN", func(prev []domain.Machine) []domain.Machine {
		return append(prev, domain.Machine{
			ID: "M-1", Name: "Press", Status: domain.StatusOperational,
			ChecklistTemplate: []domain.ChecklistSection{{
				ID: "s1", Title: "ทั่วไป",
				Items: []domain.ChecklistItem{
					{ID: "i1", Label: "เสียงผิดปกติ", Type: domain.ItemTypeBoolean},
					{ID: "i2", Label: "อุณหภูมิ", Type: domain.ItemTypeNumeric, Unit: "°C"},
				},
			}},
		})
	})
	require.NoError(t, err)
}

func operator() *domain.User {
	return &domain.User{ID: "P-001", Name: "สมศรี", Role: domain.RoleUser, PersonnelRole: domain.RoleOperator}
}

func validRecord() domain.InspectionRecord {
	return domain.InspectionRecord{
		MachineID: "M-1",
		Values: map[string]domain.ItemValue{
			"i1": domain.StatusValue(domain.ItemStatusNormal, ""),
			"i2": domain.NumericValue("65"),
		},
		OperatorName:      "สมศรี",
		OperatorSignature: "data:image/png;base64,sig",
	}
}

func TestSubmitRequiresMachine(t *testing.T) {
	svc, machines := newTestService(t)
	registerPress(t, machines)

	rec := validRecord()
	rec.MachineID = ""
	_, err := svc.Submit(operator(), rec)
	assert.ErrorIs(t, err, ErrNoMachine)

	rec = validRecord()
	rec.MachineID = "M-404"
	_, err = svc.Submit(operator(), rec)
	assert.ErrorIs(t, err, ErrNoMachine)
}

func TestSubmitRequiresCompleteChecklist(t *testing.T) {
	svc, machines := newTestService(t)
	registerPress(t, machines)

	rec := validRecord()
	delete(rec.Values, "i2")
	_, err := svc.Submit(operator(), rec)
	assert.ErrorIs(t, err, ErrChecklistIncomplete)
}

func TestSubmitRequiresNoteOnAbnormalItem(t *testing.T) {
	svc, machines := newTestService(t)
	registerPress(t, machines)

	rec := validRecord()
	rec.Values["i1"] = domain.StatusValue(domain.ItemStatusWarning, "")
	_, err := svc.Submit(operator(), rec)
	assert.ErrorIs(t, err, ErrMissingAbnormalNote)

	rec.Values["i1"] = domain.StatusValue(domain.ItemStatusWarning, "มีเสียงดัง")
	saved, err := svc.Submit(operator(), rec)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWarning, saved.OverallStatus)
}

func TestSubmitRequiresOperatorSignature(t *testing.T) {
	svc, machines := newTestService(t)
	registerPress(t, machines)

	rec := validRecord()
	rec.OperatorSignature = ""
	_, err := svc.Submit(operator(), rec)
	assert.ErrorIs(t, err, ErrMissingOperatorSign)
}

func TestSubmitComputesWorstWinsStatus(t *testing.T) {
	svc, machines := newTestService(t)
	registerPress(t, machines)

	rec := validRecord()
	rec.Values["i1"] = domain.StatusValue(domain.ItemStatusCritical, "ไหม้")
	saved, err := svc.Submit(operator(), rec)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCritical, saved.OverallStatus)

	// derived machine fields follow the submitted record
	m := machines.LoadAll()[0]
	assert.Equal(t, domain.StatusCritical, m.Status)
	assert.Equal(t, saved.Date.Format("2006-01-02"), m.LastInspection)
}

func TestSubmitApprovalNeedsAllThreeSignatures(t *testing.T) {
	svc, machines := newTestService(t)
	registerPress(t, machines)

	rec := validRecord()
	rec.SupervisorSignature = "sig"
	saved, err := svc.Submit(operator(), rec)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalPending, saved.ApprovalStatus)

	rec = validRecord()
	rec.SupervisorSignature = "sig"
	rec.EngineerSignature = "sig"
	saved, err = svc.Submit(operator(), rec)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalApproved, saved.ApprovalStatus)
}

func TestEditRequiresSeniorRole(t *testing.T) {
	svc, machines := newTestService(t)
	registerPress(t, machines)

	saved, err := svc.Submit(operator(), validRecord())
	require.NoError(t, err)

	edit := validRecord()
	edit.ID = saved.ID
	edit.Notes = "แก้ไข"
	_, err = svc.Submit(operator(), edit)
	assert.ErrorIs(t, err, ErrEditForbidden)

	engineer := &domain.User{ID: "P-003", Role: domain.RoleUser, PersonnelRole: domain.RoleEngineer}
	updated, err := svc.Submit(engineer, edit)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Len(t, svc.History("M-1"), 1)
}
