package services

import (
	"errors"

	"github.com/bugtrail/bugtrail/internal/models"
	"github.com/bugtrail/bugtrail/pkg/response"
	"gorm.io/gorm"
)

// Action is a mutating operation subject to authorization.
type Action int

const (
	ActionUpdateStatus Action = iota
	ActionUpdatePriority
	ActionDeleteBug
	ActionDeleteMember
	ActionEditProject
	ActionDeleteProject
	ActionManageInvites
)

func (a Action) String() string {
	switch a {
	case ActionUpdateStatus:
		return "update bug status"
	case ActionUpdatePriority:
		return "update bug priority"
	case ActionDeleteBug:
		return "delete bug"
	case ActionDeleteMember:
		return "remove project member"
	case ActionEditProject:
		return "edit project"
	case ActionDeleteProject:
		return "delete project"
	case ActionManageInvites:
		return "manage invites"
	}
	return "unknown action"
}

// Decide is the authorization evaluator: a pure decision over the actor, the
// requested action and the already-resolved state. It returns nil on allow,
// or the denial to surface. membership is the actor's membership on the
// project in question and may be nil ("not a member") — the nil case must
// never reach a role flag dereference.
//
// Manager authority is absolute for project-scoped actions and is never
// mediated by a Membership. A pending (unaccepted) membership grants nothing.
func Decide(actorID uint, action Action, project *models.Project, bug *models.Bug, membership *models.Membership) *response.AppError {
	if actorID == 0 {
		return response.NewUnauthorized("authentication required")
	}

	isManager := project != nil && actorID == project.ManagerID

	hasFlag := func(flag func(*models.Role) bool) bool {
		return membership != nil && membership.HasAccepted && membership.Role != nil && flag(membership.Role)
	}

	switch action {
	case ActionEditProject, ActionDeleteProject, ActionManageInvites:
		if isManager {
			return nil
		}
	case ActionDeleteBug:
		if bug != nil && actorID == bug.ReporterID {
			return nil
		}
		if isManager || hasFlag(func(r *models.Role) bool { return r.CanDeleteBug }) {
			return nil
		}
	case ActionUpdateStatus:
		if isManager || hasFlag(func(r *models.Role) bool { return r.CanUpdateStatus }) {
			return nil
		}
	case ActionUpdatePriority:
		if isManager || hasFlag(func(r *models.Role) bool { return r.CanUpdatePriority }) {
			return nil
		}
	case ActionDeleteMember:
		if isManager || hasFlag(func(r *models.Role) bool { return r.CanDeleteMembers }) {
			return nil
		}
	}

	return response.NewForbidden("not allowed to " + action.String())
}

// AuthzService resolves the actor's membership and delegates to Decide.
type AuthzService struct {
	db *gorm.DB
}

func NewAuthzService(db *gorm.DB) *AuthzService {
	return &AuthzService{db: db}
}

// FindMembership returns the membership of user on project with its role
// preloaded, or (nil, nil) when the user is not a member.
func (s *AuthzService) FindMembership(userID, projectID uint) (*models.Membership, error) {
	var m models.Membership
	err := s.db.Preload("Role").
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Can evaluates action for actorID against project (and bug, when the action
// is bug-scoped). The actor's membership is looked up only when it can matter.
func (s *AuthzService) Can(actorID uint, action Action, project *models.Project, bug *models.Bug) error {
	var membership *models.Membership
	if actorID != 0 && project != nil && actorID != project.ManagerID {
		m, err := s.FindMembership(actorID, project.ID)
		if err != nil {
			return err
		}
		membership = m
	}

	if denial := Decide(actorID, action, project, bug, membership); denial != nil {
		return denial
	}
	return nil
}
