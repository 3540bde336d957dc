package models

import "time"

// Project represents a posted project. The manager is the user who created
// it; manager authority is implicit and never expressed as a Membership.
// The title carries a unique index so concurrent creates/renames with the
// same title are settled by the database, not just the application check.
type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ManagerID   uint      `gorm:"index;not null" json:"manager_id"`
	Manager     *User     `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Title       string    `gorm:"uniqueIndex;size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Languages   []string  `gorm:"serializer:json;type:text" json:"languages"`
	Frameworks  []string  `gorm:"serializer:json;type:text" json:"frameworks"`
	HostedURL   string    `gorm:"size:500" json:"hosted_url,omitempty"`
	RepoURL     string    `gorm:"size:500;not null" json:"repo_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }
