// Package auth implements administrator authentication: bcrypt-hashed
// credentials, stateless JWT bearer tokens and the gin middleware that
// guards protected routes.
package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/titangym/gymdesk/internal/config"
	"github.com/titangym/gymdesk/internal/entities"
)

var (
	ErrBadCredentials  = errors.New("invalid username or password")
	ErrMissingFields   = errors.New("username and password are required")
	ErrNothingToChange = errors.New("no credential changes requested")
	ErrUsernameTaken   = errors.New("username already taken")
)

// Service handles admin authentication and credential management.
type Service struct {
	db     *gorm.DB
	tokens *TokenMaker
	config config.Auth
}

func NewService(db *gorm.DB, tokens *TokenMaker, cfg config.Auth) *Service {
	return &Service{db: db, tokens: tokens, config: cfg}
}

// Login validates the credentials and issues a bearer token.
func (s *Service) Login(username, password string) (string, *entities.Admin, error) {
	if username == "" || password == "" {
		return "", nil, ErrMissingFields
	}

	var admin entities.Admin
	err := s.db.Where("username = ?", username).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrBadCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	if err := CheckPassword(password, admin.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, err
	}

	token, err := s.tokens.Generate(admin.ID, admin.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, &admin, nil
}

// ChangeCredentials updates the admin's username and/or password after
// re-verifying the current password.
func (s *Service) ChangeCredentials(adminID uint, currentPassword, newUsername, newPassword string) (*entities.Admin, error) {
	if newUsername == "" && newPassword == "" {
		return nil, ErrNothingToChange
	}

	var admin entities.Admin
	if err := s.db.First(&admin, adminID).Error; err != nil {
		return nil, err
	}

	if err := CheckPassword(currentPassword, admin.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if newUsername != "" && newUsername != admin.Username {
		var existing entities.Admin
		err := s.db.Where("username = ? AND id <> ?", newUsername, adminID).First(&existing).Error
		if err == nil {
			return nil, ErrUsernameTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		admin.Username = newUsername
	}

	if newPassword != "" {
		hash, err := HashPassword(newPassword, s.config.BcryptCost)
		if err != nil {
			return nil, err
		}
		admin.PasswordHash = hash
	}

	if err := s.db.Save(&admin).Error; err != nil {
		return nil, fmt.Errorf("failed to update admin: %w", err)
	}
	return &admin, nil
}

// GetAdmin loads an admin account by id.
func (s *Service) GetAdmin(id uint) (*entities.Admin, error) {
	var admin entities.Admin
	if err := s.db.First(&admin, id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}
