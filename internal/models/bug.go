package models

import "time"

// Bug represents a bug report scoped to one project and authored by one
// reporter. Status and priority are closed enums; new bugs always start as
// Pending / Not yet assigned.
type Bug struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ProjectID       uint      `gorm:"index;not null" json:"project_id"`
	Project         *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	ReporterID      uint      `gorm:"index;not null" json:"reporter_id"`
	Reporter        *User     `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	Title           string    `gorm:"size:200;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	StepsToRecreate string    `gorm:"type:text;not null" json:"steps_to_recreate"`
	ErrorURL        string    `gorm:"size:500" json:"error_url,omitempty"`
	PriorityLevel   string    `gorm:"size:50;not null" json:"priority_level"`
	Status          string    `gorm:"size:50;not null" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Bug) TableName() string { return "bugs" }

// Bug status values.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusTesting    = "Testing"
	StatusFixed      = "Fixed"
)

// Bug priority values.
const (
	PriorityUnassigned = "Not yet assigned"
	PriorityVeryLow    = "Very low"
	PriorityLow        = "Low"
	PriorityMid        = "Mid"
	PriorityHigh       = "High"
	PriorityVeryHigh   = "Very high"
)

// FieldDefault is the sentinel meaning "field not submitted, leave unchanged"
// in status/priority update requests.
const FieldDefault = "Default"

// ValidStatus reports whether s is one of the closed status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusTesting, StatusFixed:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the closed priority values.
func ValidPriority(p string) bool {
	switch p {
	case PriorityUnassigned, PriorityVeryLow, PriorityLow, PriorityMid, PriorityHigh, PriorityVeryHigh:
		return true
	}
	return false
}
