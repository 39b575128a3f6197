package services

import (
	"context"
	"errors"

	"farm-feed/internal/adapters/persistence/models"
	"farm-feed/internal/adapters/persistence/repositories"
	"farm-feed/internal/core/domain"
	"farm-feed/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
)

// UserService handles profile and admin user management
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateProfileRequest is the profile update input
type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Phone    string `json:"phone" validate:"omitempty,min=10,max=20"`
	Province string `json:"province" validate:"omitempty,max=50"`
}

// ChangePasswordRequest is the password change input
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// AddRolesRequest adds marketplace roles to an account
type AddRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1"`
}

// GetProfile returns a user's profile
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// UpdateProfile updates the editable profile fields
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Province != "" {
		user.Province = req.Province
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// ChangePassword verifies the current password and sets a new one
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !password.Verify(req.CurrentPassword, user.Password) {
		return ErrWrongCurrentPassword
	}
	if !password.ValidatePassword(req.NewPassword) {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed

	return s.userRepo.Update(ctx, user)
}

// AddRoles grants additional marketplace roles and re-derives capabilities
func (s *UserService) AddRoles(ctx context.Context, userID uuid.UUID, req *AddRolesRequest) (*models.UserResponse, error) {
	for _, r := range req.Roles {
		if !domain.ValidRole(r) {
			return nil, ErrInvalidRole
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	merged := append([]string{}, user.Roles...)
	for _, r := range req.Roles {
		found := false
		for _, existing := range merged {
			if existing == r {
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, r)
		}
	}

	user.Roles = models.StringList(merged)
	user.Capabilities = models.StringList(domain.CapabilitiesForRoles(merged))

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// ListUsers lists users with pagination (admin)
func (s *UserService) ListUsers(ctx context.Context, offset, limit int) ([]*models.UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	return responses, total, nil
}

// SetActive activates or deactivates a user account (admin)
func (s *UserService) SetActive(ctx context.Context, userID uuid.UUID, active bool) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}
