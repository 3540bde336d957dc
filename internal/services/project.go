package services

import (
	"errors"

	"github.com/bugtrail/bugtrail/internal/models"
	"github.com/bugtrail/bugtrail/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db    *gorm.DB
	authz *AuthzService
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db, authz: NewAuthzService(db)}
}

type ProjectListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
}

type ProjectListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []models.Project `json:"items"`
}

type CreateProjectRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Description string   `json:"description" binding:"required"`
	Languages   []string `json:"languages"`
	Frameworks  []string `json:"frameworks"`
	HostedURL   string   `json:"hosted_url"`
	RepoURL     string   `json:"repo_url" binding:"required"`
}

type UpdateProjectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Languages   []string `json:"languages"`
	Frameworks  []string `json:"frameworks"`
	HostedURL   *string  `json:"hosted_url"`
	RepoURL     string   `json:"repo_url"`
}

// List returns paginated projects, newest first. Search filters on title or
// description.
func (s *ProjectService) List(req *ProjectListRequest) (*ProjectListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	var projects []models.Project
	var total int64

	query := s.db.Model(&models.Project{})
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Manager").
		Order("created_at DESC").
		Offset(offset).Limit(req.PageSize).
		Find(&projects).Error; err != nil {
		return nil, err
	}

	return &ProjectListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    projects,
	}, nil
}

// GetByID returns a project by ID with its manager preloaded.
func (s *ProjectService) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Manager").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}

// ListManagedBy returns the projects managed by a user, newest first.
func (s *ProjectService) ListManagedBy(userID uint) ([]models.Project, error) {
	var projects []models.Project
	if err := s.db.Where("manager_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Create creates a new project with the actor as manager. Title collisions
// are rejected with Conflict; the unique index settles concurrent creates.
func (s *ProjectService) Create(req *CreateProjectRequest, managerID uint) (*models.Project, error) {
	var count int64
	if err := s.db.Model(&models.Project{}).Where("title = ?", req.Title).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("a project with this title already exists")
	}

	project := models.Project{
		ManagerID:   managerID,
		Title:       req.Title,
		Description: req.Description,
		Languages:   req.Languages,
		Frameworks:  req.Frameworks,
		HostedURL:   req.HostedURL,
		RepoURL:     req.RepoURL,
	}

	if err := s.db.Create(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("a project with this title already exists")
		}
		return nil, err
	}

	return &project, nil
}

// Update edits a project; manager only. A rename that collides with another
// project's title fails with Conflict and leaves the record untouched.
func (s *ProjectService) Update(id uint, actorID uint, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.authz.Can(actorID, ActionEditProject, project, nil); err != nil {
		return nil, err
	}

	// Changes are applied through the model with an explicit column list so
	// the tag lists go through the JSON serializer.
	var cols []string

	if req.Title != "" && req.Title != project.Title {
		var count int64
		if err := s.db.Model(&models.Project{}).
			Where("title = ? AND id <> ?", req.Title, project.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, response.NewConflict("a project with this title already exists")
		}
		project.Title = req.Title
		cols = append(cols, "title")
	}
	if req.Description != "" {
		project.Description = req.Description
		cols = append(cols, "description")
	}
	if req.Languages != nil {
		project.Languages = req.Languages
		cols = append(cols, "languages")
	}
	if req.Frameworks != nil {
		project.Frameworks = req.Frameworks
		cols = append(cols, "frameworks")
	}
	if req.HostedURL != nil {
		project.HostedURL = *req.HostedURL
		cols = append(cols, "hosted_url")
	}
	if req.RepoURL != "" {
		project.RepoURL = req.RepoURL
		cols = append(cols, "repo_url")
	}

	if len(cols) == 0 {
		return project, nil
	}

	if err := s.db.Model(project).Select(cols).Updates(project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("a project with this title already exists")
		}
		return nil, err
	}

	return s.GetByID(id)
}

// Delete removes a project and everything it owns; manager only. The caller
// must confirm with the project's exact current title — deletion cascades
// and cannot be undone.
func (s *ProjectService) Delete(id uint, actorID uint, confirmTitle string) error {
	project, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.authz.Can(actorID, ActionDeleteProject, project, nil); err != nil {
		return err
	}

	if confirmTitle != project.Title {
		return response.NewConflict("confirmation title does not match the project title")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Bug{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, project.ID).Error
	})
}
