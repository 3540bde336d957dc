package handlers

import (
	"errors"
	"strconv"

	"github.com/bugtrail/bugtrail/internal/models"
	"github.com/bugtrail/bugtrail/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RoleHandler serves the seeded role catalog. Roles are reference data, so
// the handler reads the table directly.
type RoleHandler struct {
	db *gorm.DB
}

func NewRoleHandler(db *gorm.DB) *RoleHandler {
	return &RoleHandler{db: db}
}

// List returns all roles
// GET /api/roles
func (h *RoleHandler) List(c *gin.Context) {
	var roles []models.Role
	if err := h.db.Order("id ASC").Find(&roles).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, roles)
}

// GetByID returns a role by ID
// GET /api/roles/:id
func (h *RoleHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid role id")
		return
	}

	var role models.Role
	if err := h.db.First(&role, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "role not found")
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, role)
}
