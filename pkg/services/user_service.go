package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/star-emergency/alert-gateway/pkg/auth"
	"github.com/star-emergency/alert-gateway/pkg/models"
	"github.com/star-emergency/alert-gateway/pkg/store"
)

// UserService owns console user administration and credential checks.
type UserService struct {
	store store.Store
}

// NewUserService creates a user service.
func NewUserService(s store.Store) *UserService {
	return &UserService{store: s}
}

// CreateUser registers a console user with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("username, email and password are required")
	}
	if !req.RoleID.Valid() {
		return nil, fmt.Errorf("unknown role %q", req.RoleID)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:            req.Username,
		Email:               req.Email,
		PasswordHash:        hash,
		RoleID:              req.RoleID,
		FirstName:           req.FirstName,
		MiddleName:          req.MiddleName,
		LastName:            req.LastName,
		ContactNumber:       req.ContactNumber,
		EmergencyContactNum: req.EmergencyContactNum,
		Birthdate:           req.Birthdate,
		AddressLine1:        req.AddressLine1,
		AddressLine2:        req.AddressLine2,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	logrus.Infof("User %s created with role %s", user.Username, user.RoleID)
	return user, nil
}

// GetUser fetches a user by username.
func (s *UserService) GetUser(ctx context.Context, username string) (*models.User, error) {
	return s.store.GetUserByUsername(ctx, username)
}

// UpdateUser applies the non-nil fields of the request to the stored user.
func (s *UserService) UpdateUser(ctx context.Context, req *models.UpdateUserRequest) (*models.User, error) {
	if req.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if req.RoleID != nil {
		if !req.RoleID.Valid() {
			return nil, fmt.Errorf("unknown role %q", *req.RoleID)
		}
		user.RoleID = *req.RoleID
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.MiddleName != nil {
		user.MiddleName = *req.MiddleName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.ContactNumber != nil {
		user.ContactNumber = *req.ContactNumber
	}
	if req.EmergencyContactNum != nil {
		user.EmergencyContactNum = *req.EmergencyContactNum
	}
	if req.Birthdate != nil {
		user.Birthdate = *req.Birthdate
	}
	if req.AddressLine1 != nil {
		user.AddressLine1 = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		user.AddressLine2 = *req.AddressLine2
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user by username.
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	return s.store.DeleteUser(ctx, username)
}

// Authenticate verifies a username/password pair and returns the user.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("invalid credentials")
	}
	return user, nil
}

// AuthenticateByEmail resolves an SSO-verified email to a local user.
func (s *UserService) AuthenticateByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("no user registered for email %s", email)
	}
	return user, nil
}
