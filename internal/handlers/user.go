package handlers

import (
	"github.com/bugtrail/bugtrail/internal/middleware"
	"github.com/bugtrail/bugtrail/internal/services"
	"github.com/bugtrail/bugtrail/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	userService       *services.UserService
	projectService    *services.ProjectService
	bugService        *services.BugService
	membershipService *services.MembershipService
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{
		userService:       services.NewUserService(db),
		projectService:    services.NewProjectService(db),
		bugService:        services.NewBugService(db),
		membershipService: services.NewMembershipService(db),
	}
}

// List returns all users as public summaries
// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, users)
}

// UpdateProfile edits the current user's profile
// PUT /api/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// DeleteAccount removes the current user and everything the account owns
// DELETE /api/users/me
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.userService.DeleteAccount(middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "account deleted"})
}

// ListManagedProjects returns the projects managed by the current user
// GET /api/users/me/projects
func (h *UserHandler) ListManagedProjects(c *gin.Context) {
	projects, err := h.projectService.ListManagedBy(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, projects)
}

// ListReportedBugs returns the bugs reported by the current user
// GET /api/users/me/bugs
func (h *UserHandler) ListReportedBugs(c *gin.Context) {
	bugs, err := h.bugService.ListReportedBy(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, bugs)
}

// ListInvites returns the current user's memberships split by acceptance
// GET /api/users/me/invites
func (h *UserHandler) ListInvites(c *gin.Context) {
	parts, err := h.membershipService.ListForUser(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, parts)
}
