package services

import (
	"errors"

	"github.com/bugtrail/bugtrail/internal/models"
	"github.com/bugtrail/bugtrail/pkg/response"
	"gorm.io/gorm"
)

// MembershipService is the invitation ledger: it owns the
// pending → accepted → removed lifecycle.
type MembershipService struct {
	db    *gorm.DB
	authz *AuthzService
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db, authz: NewAuthzService(db)}
}

type InviteRequest struct {
	UserID uint `json:"user_id" binding:"required"`
	RoleID uint `json:"role_id" binding:"required"`
}

// MembershipPartitions splits memberships by acceptance state.
type MembershipPartitions struct {
	Accepted []models.Membership `json:"accepted"`
	Pending  []models.Membership `json:"pending"`
}

// Invite creates a pending membership for a user on a project. Only the
// project manager may invite. The manager cannot be invited, and a second
// invite for the same (user, project) pair is a Conflict — the composite
// unique index settles concurrent invites.
func (s *MembershipService) Invite(projectID, inviterID uint, req *InviteRequest) (*models.Membership, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	if err := s.authz.Can(inviterID, ActionManageInvites, &project, nil); err != nil {
		return nil, err
	}

	var invitee models.User
	if err := s.db.First(&invitee, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	if invitee.ID == project.ManagerID {
		return nil, response.NewConflict("the project manager cannot be invited")
	}

	var role models.Role
	if err := s.db.First(&role, req.RoleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("role not found")
		}
		return nil, err
	}

	existing, err := s.authz.FindMembership(invitee.ID, project.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, response.NewConflict("user already has a membership on this project")
	}

	membership := models.Membership{
		ProjectID: project.ID,
		UserID:    invitee.ID,
		RoleID:    role.ID,
	}
	if err := s.db.Create(&membership).Error; err != nil {
		// Lost the race against a concurrent invite for the same pair.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("user already has a membership on this project")
		}
		return nil, err
	}

	if err := s.db.Preload("User").Preload("Role").First(&membership, membership.ID).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

// Accept marks an invitation accepted. Only the invited user may accept;
// re-accepting is a no-op.
func (s *MembershipService) Accept(membershipID, actorID uint) (*models.Membership, error) {
	membership, err := s.getByID(membershipID)
	if err != nil {
		return nil, err
	}

	if actorID == 0 {
		return nil, response.NewUnauthorized("authentication required")
	}
	if actorID != membership.UserID {
		return nil, response.NewForbidden("only the invited user can accept this invite")
	}

	if membership.HasAccepted {
		return membership, nil
	}

	if err := s.db.Model(membership).Update("has_accepted", true).Error; err != nil {
		return nil, err
	}
	membership.HasAccepted = true
	return membership, nil
}

// Remove deletes a membership. The member may always leave on their own;
// anyone else needs manager authority or an accepted membership whose role
// carries the delete-members flag.
func (s *MembershipService) Remove(membershipID, actorID uint) error {
	membership, err := s.getByID(membershipID)
	if err != nil {
		return err
	}

	if actorID == 0 {
		return response.NewUnauthorized("authentication required")
	}

	// Self-leave needs no further checks.
	if actorID != membership.UserID {
		if err := s.authz.Can(actorID, ActionDeleteMember, membership.Project, nil); err != nil {
			return err
		}
	}

	return s.db.Delete(&models.Membership{}, membership.ID).Error
}

// ListForUser returns the user's memberships partitioned by acceptance.
func (s *MembershipService) ListForUser(userID uint) (*MembershipPartitions, error) {
	var memberships []models.Membership
	if err := s.db.Preload("Project").Preload("Project.Manager").Preload("Role").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return partition(memberships), nil
}

// ListForProject returns a project's memberships partitioned by acceptance.
func (s *MembershipService) ListForProject(projectID uint) (*MembershipPartitions, error) {
	var count int64
	if err := s.db.Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, response.NewNotFound("project not found")
	}

	var memberships []models.Membership
	if err := s.db.Preload("User").Preload("Role").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return partition(memberships), nil
}

// Find returns the membership of user on project, or (nil, nil) when absent.
func (s *MembershipService) Find(userID, projectID uint) (*models.Membership, error) {
	return s.authz.FindMembership(userID, projectID)
}

func (s *MembershipService) getByID(id uint) (*models.Membership, error) {
	var membership models.Membership
	if err := s.db.Preload("Project").Preload("Role").First(&membership, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("membership not found")
		}
		return nil, err
	}
	return &membership, nil
}

func partition(memberships []models.Membership) *MembershipPartitions {
	parts := &MembershipPartitions{
		Accepted: []models.Membership{},
		Pending:  []models.Membership{},
	}
	for _, m := range memberships {
		if m.HasAccepted {
			parts.Accepted = append(parts.Accepted, m)
		} else {
			parts.Pending = append(parts.Pending, m)
		}
	}
	return parts
}
