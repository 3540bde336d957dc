package services

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bugtrail/bugtrail/internal/models"
	"gorm.io/gorm"
)

func TestProjectService_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)

	manager := createTestUser(t, db, "manager")

	project, err := svc.Create(&CreateProjectRequest{
		Title:       "tracker",
		Description: "a bug tracker",
		Languages:   []string{"Go", "TypeScript"},
		Frameworks:  []string{"Gin"},
		RepoURL:     "https://github.com/example/tracker",
	}, manager.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if project.ManagerID != manager.ID {
		t.Errorf("ManagerID = %d, expected %d", project.ManagerID, manager.ID)
	}

	loaded, err := svc.GetByID(project.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(loaded.Languages) != 2 || loaded.Languages[0] != "Go" {
		t.Errorf("Languages = %v, expected [Go TypeScript]", loaded.Languages)
	}
	if loaded.Manager == nil || loaded.Manager.Username != "manager" {
		t.Error("manager should be preloaded")
	}

	_, err = svc.GetByID(9999)
	assertAppError(t, err, http.StatusNotFound)
}

func TestProjectService_DuplicateTitle(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)

	manager := createTestUser(t, db, "manager")
	other := createTestUser(t, db, "other")
	createTestProject(t, db, manager.ID, "tracker")

	// The title is globally unique, even across managers.
	_, err := svc.Create(&CreateProjectRequest{
		Title:       "tracker",
		Description: "duplicate",
		RepoURL:     "https://github.com/example/dup",
	}, other.ID)
	assertAppError(t, err, http.StatusConflict)
}

func TestProjectService_UpdateManagerOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)

	manager := createTestUser(t, db, "manager")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, manager.ID, "tracker")
	adminRole := roleByName(t, db, models.RoleAdmin)
	addMember(t, db, project.ID, member.ID, adminRole.ID, true)

	// Even an admin member cannot edit the project itself.
	_, err := svc.Update(project.ID, member.ID, &UpdateProjectRequest{Description: "new"})
	assertAppError(t, err, http.StatusForbidden)

	updated, err := svc.Update(project.ID, manager.ID, &UpdateProjectRequest{Description: "new"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Description != "new" {
		t.Errorf("Description = %q, expected %q", updated.Description, "new")
	}
}

func TestProjectService_UpdateTagLists(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)

	manager := createTestUser(t, db, "manager")
	project := createTestProject(t, db, manager.ID, "tracker")

	updated, err := svc.Update(project.ID, manager.ID, &UpdateProjectRequest{
		Description: "with tags",
		Languages:   []string{"Go", "Python"},
		Frameworks:  []string{"Gin"},
	})
	if err != nil {
		t.Fatalf("tag list update failed: %v", err)
	}
	if len(updated.Languages) != 2 || updated.Languages[0] != "Go" || updated.Languages[1] != "Python" {
		t.Errorf("Languages = %v, expected [Go Python]", updated.Languages)
	}
	if len(updated.Frameworks) != 1 || updated.Frameworks[0] != "Gin" {
		t.Errorf("Frameworks = %v, expected [Gin]", updated.Frameworks)
	}
	if updated.Description != "with tags" {
		t.Errorf("Description = %q, expected %q", updated.Description, "with tags")
	}

	// Reload from storage: the lists must round-trip through the serializer.
	reloaded, err := svc.GetByID(project.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(reloaded.Languages) != 2 || reloaded.Languages[1] != "Python" {
		t.Errorf("stored Languages = %v, expected [Go Python]", reloaded.Languages)
	}

	// Clearing to an empty list sticks; a nil list leaves the stored one alone.
	updated, err = svc.Update(project.ID, manager.ID, &UpdateProjectRequest{Frameworks: []string{}})
	if err != nil {
		t.Fatalf("empty list update failed: %v", err)
	}
	if len(updated.Frameworks) != 0 {
		t.Errorf("Frameworks = %v, expected empty", updated.Frameworks)
	}
	if len(updated.Languages) != 2 {
		t.Errorf("Languages = %v, expected untouched", updated.Languages)
	}
}

func TestProject_TitleIndexSettlesConcurrentWrites(t *testing.T) {
	db := newTestDB(t)

	manager := createTestUser(t, db, "manager")
	createTestProject(t, db, manager.ID, "alpha")
	beta := createTestProject(t, db, manager.ID, "beta")

	// Two racing creates can both pass the application-level count check;
	// the unique index must then reject the loser as a duplicated key, which
	// the service maps to Conflict.
	dup := &models.Project{ManagerID: manager.ID, Title: "alpha", RepoURL: "https://github.com/example/dup"}
	err := db.Create(dup).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate create error = %v, expected gorm.ErrDuplicatedKey", err)
	}

	// Same discipline for a racing rename.
	err = db.Model(&models.Project{}).Where("id = ?", beta.ID).Update("title", "alpha").Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate rename error = %v, expected gorm.ErrDuplicatedKey", err)
	}

	var stored models.Project
	if err := db.First(&stored, beta.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.Title != "beta" {
		t.Errorf("Title = %q, expected %q after rejected rename", stored.Title, "beta")
	}
}

func TestProjectService_RenameConflictLeavesTitles(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)

	manager := createTestUser(t, db, "manager")
	createTestProject(t, db, manager.ID, "alpha")
	beta := createTestProject(t, db, manager.ID, "beta")

	_, err := svc.Update(beta.ID, manager.ID, &UpdateProjectRequest{Title: "alpha"})
	assertAppError(t, err, http.StatusConflict)

	var stored models.Project
	if err := db.First(&stored, beta.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.Title != "beta" {
		t.Errorf("Title = %q, expected %q after failed rename", stored.Title, "beta")
	}

	// Renaming to the project's own current title is a no-op, not a conflict.
	if _, err := svc.Update(beta.ID, manager.ID, &UpdateProjectRequest{Title: "beta"}); err != nil {
		t.Errorf("same-title update failed: %v", err)
	}
}

func TestProjectService_DeleteRequiresTitleConfirmation(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)

	manager := createTestUser(t, db, "manager")
	project := createTestProject(t, db, manager.ID, "tracker")

	assertAppError(t, svc.Delete(project.ID, manager.ID, "wrong"), http.StatusConflict)
	assertAppError(t, svc.Delete(project.ID, manager.ID, ""), http.StatusConflict)

	if _, err := svc.GetByID(project.ID); err != nil {
		t.Fatalf("project should survive failed confirmation: %v", err)
	}

	if err := svc.Delete(project.ID, manager.ID, "tracker"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, err := svc.GetByID(project.ID)
	assertAppError(t, err, http.StatusNotFound)
}

func TestProjectService_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)

	manager := createTestUser(t, db, "manager")
	member := createTestUser(t, db, "member")
	project := createTestProject(t, db, manager.ID, "tracker")
	keep := createTestProject(t, db, manager.ID, "keeper")
	tester := roleByName(t, db, models.RoleTester)
	addMember(t, db, project.ID, member.ID, tester.ID, true)
	createTestBug(t, db, project.ID, member.ID, "crash on save")
	keepBug := createTestBug(t, db, keep.ID, member.ID, "unrelated bug")

	if err := svc.Delete(project.ID, manager.ID, "tracker"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var bugCount, memberCount int64
	db.Model(&models.Bug{}).Where("project_id = ?", project.ID).Count(&bugCount)
	db.Model(&models.Membership{}).Where("project_id = ?", project.ID).Count(&memberCount)
	if bugCount != 0 {
		t.Errorf("orphaned bugs = %d, expected 0", bugCount)
	}
	if memberCount != 0 {
		t.Errorf("orphaned memberships = %d, expected 0", memberCount)
	}

	// The sibling project and its bug are untouched.
	var stored models.Bug
	if err := db.First(&stored, keepBug.ID).Error; err != nil {
		t.Errorf("sibling project's bug should survive: %v", err)
	}
}

func TestProjectService_ListSearchAndPaging(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)

	manager := createTestUser(t, db, "manager")
	createTestProject(t, db, manager.ID, "payments api")
	createTestProject(t, db, manager.ID, "payments dashboard")
	createTestProject(t, db, manager.ID, "inventory")

	resp, err := svc.List(&ProjectListRequest{Search: "payments"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("Total = %d, expected 2", resp.Total)
	}

	paged, err := svc.List(&ProjectListRequest{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if paged.Total != 3 {
		t.Errorf("Total = %d, expected 3", paged.Total)
	}
	if len(paged.Items) != 2 {
		t.Errorf("Items = %d, expected 2", len(paged.Items))
	}
}
