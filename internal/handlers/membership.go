package handlers

import (
	"strconv"

	"github.com/bugtrail/bugtrail/internal/middleware"
	"github.com/bugtrail/bugtrail/internal/services"
	"github.com/bugtrail/bugtrail/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MembershipHandler struct {
	membershipService *services.MembershipService
}

func NewMembershipHandler(db *gorm.DB) *MembershipHandler {
	return &MembershipHandler{
		membershipService: services.NewMembershipService(db),
	}
}

// Invite creates a pending membership; manager only
// POST /api/projects/:id/members
func (h *MembershipHandler) Invite(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req services.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	membership, err := h.membershipService.Invite(uint(projectID), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, membership)
}

// ListMembers returns a project's memberships split by acceptance
// GET /api/projects/:id/members
func (h *MembershipHandler) ListMembers(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	parts, err := h.membershipService.ListForProject(uint(projectID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, parts)
}

// Accept marks an invitation accepted; invited user only
// POST /api/memberships/:id/accept
func (h *MembershipHandler) Accept(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid membership id")
		return
	}

	membership, err := h.membershipService.Accept(uint(id), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, membership)
}

// Remove deletes a membership: self-leave, manager removal, or removal by a
// member whose role allows it
// DELETE /api/memberships/:id
func (h *MembershipHandler) Remove(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid membership id")
		return
	}

	if err := h.membershipService.Remove(uint(id), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "membership removed"})
}
