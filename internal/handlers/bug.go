package handlers

import (
	"strconv"

	"github.com/bugtrail/bugtrail/internal/middleware"
	"github.com/bugtrail/bugtrail/internal/services"
	"github.com/bugtrail/bugtrail/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BugHandler struct {
	bugService *services.BugService
}

func NewBugHandler(db *gorm.DB) *BugHandler {
	return &BugHandler{
		bugService: services.NewBugService(db),
	}
}

// ListByProject returns a project's bugs; ?search= filters title/description
// GET /api/projects/:id/bugs
func (h *BugHandler) ListByProject(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	bugs, err := h.bugService.ListByProject(uint(projectID), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, bugs)
}

// GetByID returns a bug by ID
// GET /api/bugs/:id
func (h *BugHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid bug id")
		return
	}

	bug, err := h.bugService.GetByID(uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, bug)
}

// Create files a bug against a project
// POST /api/projects/:id/bugs
func (h *BugHandler) Create(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req services.CreateBugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bug, err := h.bugService.Create(uint(projectID), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, bug)
}

// Update edits a bug's content fields; reporter or manager only
// PUT /api/bugs/:id
func (h *BugHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid bug id")
		return
	}

	var req services.UpdateBugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bug, err := h.bugService.Update(uint(id), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, bug)
}

// UpdateStatusPriority updates status and/or priority with per-field outcomes
// PATCH /api/bugs/:id/status
func (h *BugHandler) UpdateStatusPriority(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid bug id")
		return
	}

	var req services.StatusPriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bugService.UpdateStatusPriority(uint(id), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Delete removes a bug; requires ?confirm=true
// DELETE /api/bugs/:id
func (h *BugHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid bug id")
		return
	}

	confirm := c.Query("confirm") == "true"
	if err := h.bugService.Delete(uint(id), middleware.GetUserID(c), confirm); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "bug deleted successfully"})
}
