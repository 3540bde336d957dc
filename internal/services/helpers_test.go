package services

import (
	"errors"
	"testing"

	"github.com/bugtrail/bugtrail/internal/models"
	"github.com/bugtrail/bugtrail/pkg/response"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A second pooled connection would see its own empty in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Role{},
		&models.Membership{},
		&models.Bug{},
		&models.RefreshToken{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	if err := models.SeedRoles(db); err != nil {
		t.Fatalf("failed to seed roles: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username, Password: "hashed"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}
	return user
}

func createTestProject(t *testing.T, db *gorm.DB, managerID uint, title string) *models.Project {
	t.Helper()

	project := &models.Project{
		ManagerID:   managerID,
		Title:       title,
		Description: "test project",
		RepoURL:     "https://github.com/example/" + title,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create project %q: %v", title, err)
	}
	return project
}

func createTestBug(t *testing.T, db *gorm.DB, projectID, reporterID uint, title string) *models.Bug {
	t.Helper()

	bug := &models.Bug{
		ProjectID:       projectID,
		ReporterID:      reporterID,
		Title:           title,
		StepsToRecreate: "open the page",
		PriorityLevel:   models.PriorityUnassigned,
		Status:          models.StatusPending,
	}
	if err := db.Create(bug).Error; err != nil {
		t.Fatalf("failed to create bug %q: %v", title, err)
	}
	return bug
}

func roleByName(t *testing.T, db *gorm.DB, name string) *models.Role {
	t.Helper()

	var role models.Role
	if err := db.Where("name = ?", name).First(&role).Error; err != nil {
		t.Fatalf("failed to load role %q: %v", name, err)
	}
	return &role
}

func assertAppError(t *testing.T, err error, httpStatus int) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with status %d, got nil", httpStatus)
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *response.AppError, got %T: %v", err, err)
	}
	if appErr.HTTPStatus != httpStatus {
		t.Fatalf("HTTPStatus = %d, expected %d (message: %s)", appErr.HTTPStatus, httpStatus, appErr.Message)
	}
}

func addMember(t *testing.T, db *gorm.DB, projectID, userID, roleID uint, accepted bool) *models.Membership {
	t.Helper()

	m := &models.Membership{
		ProjectID:   projectID,
		UserID:      userID,
		RoleID:      roleID,
		HasAccepted: accepted,
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to create membership: %v", err)
	}
	return m
}
