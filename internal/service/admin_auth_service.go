package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// AdminUserStore is the admin persistence used by AdminAuthService.
type AdminUserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) error
	TouchLastLogin(ctx context.Context, id int) error
}

type AdminAuthService struct {
	adminRepo AdminUserStore
	tokens    *utils.TokenIssuer
}

func NewAdminAuthService(adminRepo AdminUserStore, tokens *utils.TokenIssuer) *AdminAuthService {
	return &AdminAuthService{adminRepo: adminRepo, tokens: tokens}
}

// Login verifies credentials and returns a signed admin token.
func (s *AdminAuthService) Login(ctx context.Context, email, password string) (string, *models.AdminUser, error) {
	log.Debug().Str("email", email).Msg("Login attempt")

	user, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, utils.ErrNotFound) {
			log.Error().Err(err).Str("email", email).Msg("Failed to get user by email")
			return "", nil, err
		}
		return "", nil, utils.ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("Account is inactive")
		return "", nil, utils.ErrAccountInactive
	}

	// Verify password using bcrypt
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Password verification failed")
		return "", nil, utils.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}

	if err := s.adminRepo.TouchLastLogin(ctx, user.ID); err != nil {
		log.Warn().Err(err).Int("user_id", user.ID).Msg("Failed to record last login")
	}

	log.Info().Str("email", email).Msg("Login successful")
	return token, user, nil
}

func (s *AdminAuthService) CreateAdmin(ctx context.Context, email, password, name string) (*models.AdminUser, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.AdminUser{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		IsActive:     true,
	}
	if err := s.adminRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
