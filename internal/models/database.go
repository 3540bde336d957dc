package models

import (
	"fmt"

	"github.com/bugtrail/bugtrail/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Unique-constraint violations must surface as gorm.ErrDuplicatedKey
		// so the services can map them to Conflict.
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&Project{},
		&Role{},
		&Membership{},
		&Bug{},
		&RefreshToken{},
		&AuditLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedRoles inserts the three canonical roles if none exist yet. It is
// idempotent and safe to call outside of process startup (e.g. from a
// migration step).
func SeedRoles(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Role{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	roles := []Role{
		{Name: RoleTester},
		{Name: RoleDeveloper, CanUpdateStatus: true},
		{Name: RoleAdmin, CanUpdateStatus: true, CanUpdatePriority: true, CanDeleteBug: true, CanDeleteMembers: true},
	}
	return db.Create(&roles).Error
}
