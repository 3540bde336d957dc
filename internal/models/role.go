package models

// Role is a named bundle of capability flags. Roles are immutable reference
// data seeded once; they are global, not per-project.
type Role struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Name              string `gorm:"uniqueIndex;size:50;not null" json:"name"`
	CanUpdateStatus   bool   `gorm:"not null" json:"can_update_status"`
	CanUpdatePriority bool   `gorm:"not null" json:"can_update_priority"`
	CanDeleteBug      bool   `gorm:"not null" json:"can_delete_bug"`
	CanDeleteMembers  bool   `gorm:"not null" json:"can_delete_members"`
}

func (Role) TableName() string { return "roles" }

// Seeded role names.
const (
	RoleTester    = "tester"
	RoleDeveloper = "developer"
	RoleAdmin     = "admin"
)
