package domain

import "time"

type MachineStatus string

const (
	StatusOperational MachineStatus = "OPERATIONAL"
	StatusWarning     MachineStatus = "WARNING"
	StatusCritical    MachineStatus = "CRITICAL"
)

type ChecklistItemType string

const (
	ItemTypeBoolean ChecklistItemType = "boolean"
	ItemTypeNumeric ChecklistItemType = "numeric"
)

type ChecklistItem struct {
	ID    string            `json:"id"`
	Label string            `json:"label"`
	Type  ChecklistItemType `json:"type"`
	Unit  string            `json:"unit,omitempty"`
}

type ChecklistSection struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Items []ChecklistItem `json:"items"`
}

// Machine is a registered factory asset. Status, Efficiency and
// LastInspection are derived from the latest non-deleted inspection
// record and are never edited by hand.
type Machine struct {
	ID                string             `json:"id" validate:"required"`
	Name              string             `json:"name" validate:"required"`
	Model             string             `json:"model"`
	Location          string             `json:"location"`
	Status            MachineStatus      `json:"status"`
	Efficiency        int                `json:"efficiency"`
	LastInspection    string             `json:"lastInspection"`
	ChecklistTemplate []ChecklistSection `json:"checklistTemplate"`
	DeletedAt         *time.Time         `json:"deletedAt,omitempty"`
}
