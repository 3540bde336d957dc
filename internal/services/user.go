package services

import (
	"errors"

	"github.com/bugtrail/bugtrail/internal/models"
	"github.com/bugtrail/bugtrail/internal/utils"
	"github.com/bugtrail/bugtrail/pkg/response"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// UpdateProfileRequest edits a subset of the profile. Bio is a pointer so an
// omitted field is distinguishable from clearing the bio.
type UpdateProfileRequest struct {
	Username        string  `json:"username" binding:"omitempty,min=3,max=100"`
	Bio             *string `json:"bio"`
	Password        string  `json:"password" binding:"omitempty,min=6"`
	ConfirmPassword string  `json:"confirm_password"`
}

// UserSummary is the public listing shape: no timestamps, no credentials.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
}

// GetByID returns a user by ID.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername returns a user by username.
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// List returns all users as public summaries. Search filters on username.
func (s *UserService) List(search string) ([]UserSummary, error) {
	query := s.db.Model(&models.User{})
	if search != "" {
		query = query.Where("username LIKE ?", "%"+search+"%")
	}

	var users []UserSummary
	if err := query.Select("id", "username", "bio").
		Order("username ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile edits the user's own username, bio or password. A username
// change that collides with another account fails with Conflict.
func (s *UserService) UpdateProfile(userID uint, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Username != "" && req.Username != user.Username {
		var count int64
		if err := s.db.Model(&models.User{}).
			Where("username = ? AND id <> ?", req.Username, user.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, response.NewConflict("username already taken")
		}
		updates["username"] = req.Username
	}
	if req.Bio != nil && *req.Bio != user.Bio {
		updates["bio"] = *req.Bio
	}
	if req.Password != "" {
		if req.Password != req.ConfirmPassword {
			return nil, response.NewBadRequest("passwords do not match")
		}
		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("username already taken")
		}
		return nil, err
	}

	return s.GetByID(userID)
}

// DeleteAccount removes a user and everything hanging off the account: the
// projects they manage (with those projects' bugs and memberships), the bugs
// they reported elsewhere, their own memberships and their refresh tokens.
// All in one transaction so a failure leaves no half-deleted account.
func (s *UserService) DeleteAccount(userID uint) error {
	if _, err := s.GetByID(userID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var managedIDs []uint
		if err := tx.Model(&models.Project{}).
			Where("manager_id = ?", userID).
			Pluck("id", &managedIDs).Error; err != nil {
			return err
		}

		if len(managedIDs) > 0 {
			if err := tx.Where("project_id IN ?", managedIDs).Delete(&models.Bug{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id IN ?", managedIDs).Delete(&models.Membership{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Project{}, managedIDs).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("reporter_id = ?", userID).Delete(&models.Bug{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
}
