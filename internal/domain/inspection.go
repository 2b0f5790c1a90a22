package domain

import (
	"encoding/json"
	"time"
)

type ItemStatus string

const (
	ItemStatusNormal   ItemStatus = "NORMAL"
	ItemStatusWarning  ItemStatus = "WARNING"
	ItemStatusCritical ItemStatus = "CRITICAL"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
)

// ItemValue is the recorded result for a single checklist item. The
// stored form is polymorphic: boolean checklist items carry a
// {status, note} object, numeric items carry the raw string from the
// gauge reading, and very old documents may carry a bare bool.
type ItemValue struct {
	Status ItemStatus `json:"-"`
	Note   string     `json:"-"`
	Number string     `json:"-"`
	Bool   *bool      `json:"-"`
}

type itemValueObject struct {
	Status ItemStatus `json:"status,omitempty"`
	Note   string     `json:"note,omitempty"`
}

func StatusValue(status ItemStatus, note string) ItemValue {
	return ItemValue{Status: status, Note: note}
}

func NumericValue(n string) ItemValue {
	return ItemValue{Number: n}
}

// IsStatus reports whether the value carries an item status, as
// opposed to a numeric reading or a legacy bool.
func (v ItemValue) IsStatus() bool {
	return v.Status != ""
}

func (v ItemValue) MarshalJSON() ([]byte, error) {
	switch {
	case v.Status != "":
		return json.Marshal(itemValueObject{Status: v.Status, Note: v.Note})
	case v.Bool != nil:
		return json.Marshal(*v.Bool)
	default:
		return json.Marshal(v.Number)
	}
}

func (v *ItemValue) UnmarshalJSON(data []byte) error {
	var obj itemValueObject
	if err := json.Unmarshal(data, &obj); err == nil {
		*v = ItemValue{Status: obj.Status, Note: obj.Note}
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = ItemValue{Bool: &b}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = ItemValue{Number: s}
	return nil
}

// InspectionRecord is one completed checklist run against a machine.
// Sections snapshots the template that was in force at submission so
// later template edits do not rewrite history.
type InspectionRecord struct {
	ID        string               `json:"id"`
	MachineID string               `json:"machineId"`
	Date      time.Time            `json:"date"`
	Sections  []ChecklistSection   `json:"sections"`
	Values    map[string]ItemValue `json:"values"`
	Notes     string               `json:"notes,omitempty"`

	OperatorName        string `json:"operatorName,omitempty"`
	SupervisorName      string `json:"supervisorName,omitempty"`
	EngineerName        string `json:"engineerName,omitempty"`
	OperatorSignature   string `json:"operatorSignature,omitempty"`
	SupervisorSignature string `json:"supervisorSignature,omitempty"`
	EngineerSignature   string `json:"engineerSignature,omitempty"`

	OverallStatus  MachineStatus  `json:"overallStatus"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
	DeletedAt      *time.Time     `json:"deletedAt,omitempty"`
}

// ComputeOverallStatus folds item statuses with worst-wins semantics:
// CRITICAL > WARNING > OPERATIONAL.
func ComputeOverallStatus(values map[string]ItemValue) MachineStatus {
	overall := StatusOperational
	for _, v := range values {
		switch v.Status {
		case ItemStatusCritical:
			return StatusCritical
		case ItemStatusWarning:
			overall = StatusWarning
		}
	}
	return overall
}

// ComputeApprovalStatus approves a record only when all three
// signatures are present.
func ComputeApprovalStatus(operatorSig, supervisorSig, engineerSig string) ApprovalStatus {
	if operatorSig != "" && supervisorSig != "" && engineerSig != "" {
		return ApprovalApproved
	}
	return ApprovalPending
}
