package models

import "time"

// Membership links a user to a project through a role. While HasAccepted is
// false the record is an invitation: it is visible in listings but grants no
// capability flags. The composite unique index guarantees at most one
// membership per (project, user) pair even under concurrent invites.
type Membership struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	Project     *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID      uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RoleID      uint      `gorm:"not null" json:"role_id"`
	Role        *Role     `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	HasAccepted bool      `gorm:"default:false" json:"has_accepted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Membership) TableName() string { return "memberships" }
