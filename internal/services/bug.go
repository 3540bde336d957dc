package services

import (
	"errors"

	"github.com/bugtrail/bugtrail/internal/models"
	"github.com/bugtrail/bugtrail/pkg/response"
	"gorm.io/gorm"
)

type BugService struct {
	db    *gorm.DB
	authz *AuthzService
}

func NewBugService(db *gorm.DB) *BugService {
	return &BugService{db: db, authz: NewAuthzService(db)}
}

type CreateBugRequest struct {
	Title           string `json:"title" binding:"required,max=200"`
	Description     string `json:"description"`
	StepsToRecreate string `json:"steps_to_recreate" binding:"required"`
	ErrorURL        string `json:"error_url"`
}

type UpdateBugRequest struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	StepsToRecreate string  `json:"steps_to_recreate"`
	ErrorURL        *string `json:"error_url"`
}

// StatusPriorityRequest carries the two independently-updatable fields.
// An omitted field (or the Default sentinel) means "leave unchanged".
type StatusPriorityRequest struct {
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// Per-field outcome of a status/priority update.
const (
	FieldUpdated   = "updated"
	FieldUnchanged = "unchanged"
	FieldDenied    = "denied"
)

// StatusPriorityResult reports per-field which changes took effect. Partial
// success is a valid outcome: one field may update while the other is denied.
type StatusPriorityResult struct {
	Status   string      `json:"status"`
	Priority string      `json:"priority"`
	Bug      *models.Bug `json:"bug"`
}

// Create files a bug against a project. New bugs always start as
// Pending / Not yet assigned regardless of the request.
func (s *BugService) Create(projectID, reporterID uint, req *CreateBugRequest) (*models.Bug, error) {
	var count int64
	if err := s.db.Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, response.NewNotFound("project not found")
	}

	bug := models.Bug{
		ProjectID:       projectID,
		ReporterID:      reporterID,
		Title:           req.Title,
		Description:     req.Description,
		StepsToRecreate: req.StepsToRecreate,
		ErrorURL:        req.ErrorURL,
		PriorityLevel:   models.PriorityUnassigned,
		Status:          models.StatusPending,
	}
	if err := s.db.Create(&bug).Error; err != nil {
		return nil, err
	}
	return &bug, nil
}

// GetByID returns a bug with its reporter preloaded.
func (s *BugService) GetByID(id uint) (*models.Bug, error) {
	var bug models.Bug
	if err := s.db.Preload("Reporter").First(&bug, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("bug not found")
		}
		return nil, err
	}
	return &bug, nil
}

// ListByProject returns a project's bugs, oldest first. Search filters on
// title or description.
func (s *BugService) ListByProject(projectID uint, search string) ([]models.Bug, error) {
	var count int64
	if err := s.db.Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, response.NewNotFound("project not found")
	}

	query := s.db.Preload("Reporter").Where("project_id = ?", projectID)
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var bugs []models.Bug
	if err := query.Order("created_at ASC").Find(&bugs).Error; err != nil {
		return nil, err
	}
	return bugs, nil
}

// ListReportedBy returns the bugs a user reported, newest first.
func (s *BugService) ListReportedBy(userID uint) ([]models.Bug, error) {
	var bugs []models.Bug
	if err := s.db.Preload("Project").
		Where("reporter_id = ?", userID).
		Order("created_at DESC").
		Find(&bugs).Error; err != nil {
		return nil, err
	}
	return bugs, nil
}

// Update edits a bug's descriptive fields; reporter or project manager only.
func (s *BugService) Update(bugID, actorID uint, req *UpdateBugRequest) (*models.Bug, error) {
	bug, project, err := s.getWithProject(bugID)
	if err != nil {
		return nil, err
	}

	if actorID == 0 {
		return nil, response.NewUnauthorized("authentication required")
	}
	if actorID != bug.ReporterID && actorID != project.ManagerID {
		return nil, response.NewForbidden("only the reporter or the project manager can edit this bug")
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.StepsToRecreate != "" {
		updates["steps_to_recreate"] = req.StepsToRecreate
	}
	if req.ErrorURL != nil {
		updates["error_url"] = *req.ErrorURL
	}

	if len(updates) > 0 {
		if err := s.db.Model(bug).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(bugID)
}

// UpdateStatusPriority applies the two-field state machine: for each field,
// a change is attempted only when the submitted value differs from the
// current one and is not the Default sentinel, and each change needs its own
// authorization decision. Approved changes are applied in one write;
// unapproved or unchanged fields are skipped, not errors.
func (s *BugService) UpdateStatusPriority(bugID, actorID uint, req *StatusPriorityRequest) (*StatusPriorityResult, error) {
	bug, project, err := s.getWithProject(bugID)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.FieldDefault
	}
	priority := req.Priority
	if priority == "" {
		priority = models.FieldDefault
	}

	if status != models.FieldDefault && !models.ValidStatus(status) {
		return nil, response.NewBadRequest("invalid status value")
	}
	if priority != models.FieldDefault && !models.ValidPriority(priority) {
		return nil, response.NewBadRequest("invalid priority value")
	}

	// One membership lookup serves both field decisions.
	var membership *models.Membership
	if actorID != 0 && actorID != project.ManagerID {
		membership, err = s.authz.FindMembership(actorID, project.ID)
		if err != nil {
			return nil, err
		}
	}

	result := &StatusPriorityResult{Status: FieldUnchanged, Priority: FieldUnchanged}
	updates := make(map[string]interface{})

	if status != models.FieldDefault && status != bug.Status {
		if denial := Decide(actorID, ActionUpdateStatus, project, bug, membership); denial != nil {
			result.Status = FieldDenied
		} else {
			updates["status"] = status
			result.Status = FieldUpdated
		}
	}

	if priority != models.FieldDefault && priority != bug.PriorityLevel {
		if denial := Decide(actorID, ActionUpdatePriority, project, bug, membership); denial != nil {
			result.Priority = FieldDenied
		} else {
			updates["priority_level"] = priority
			result.Priority = FieldUpdated
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(bug).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	refreshed, err := s.GetByID(bugID)
	if err != nil {
		return nil, err
	}
	result.Bug = refreshed
	return result, nil
}

// Delete removes a bug. Allowed for the reporter, the project manager, or an
// accepted member whose role carries the delete-bug flag. The caller must
// confirm explicitly.
func (s *BugService) Delete(bugID, actorID uint, confirm bool) error {
	bug, project, err := s.getWithProject(bugID)
	if err != nil {
		return err
	}

	if err := s.authz.Can(actorID, ActionDeleteBug, project, bug); err != nil {
		return err
	}

	if !confirm {
		return response.NewConflict("bug deletion must be confirmed")
	}

	return s.db.Delete(&models.Bug{}, bug.ID).Error
}

func (s *BugService) getWithProject(bugID uint) (*models.Bug, *models.Project, error) {
	var bug models.Bug
	if err := s.db.First(&bug, bugID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFound("bug not found")
		}
		return nil, nil, err
	}

	var project models.Project
	if err := s.db.First(&project, bug.ProjectID).Error; err != nil {
		return nil, nil, err
	}
	return &bug, &project, nil
}
