package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"tokenbook/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenTTL is how long an admin login stays valid.
const TokenTTL = 12 * time.Hour

type AdminAuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	EnsureAdmin(ctx context.Context, username, password string) error
}

type adminAuthService struct {
	repo   repository.AdminAuthRepository
	secret []byte
	now    func() time.Time
}

func NewAdminAuthService(repo repository.AdminAuthRepository, secret string) AdminAuthService {
	return &adminAuthService{repo: repo, secret: []byte(secret), now: time.Now}
}

func (s *adminAuthService) Login(ctx context.Context, username, password string) (string, error) {
	admin, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if admin == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"admin_id": admin.ID,
		"sub":      admin.Username,
		"exp":      s.now().Add(TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// EnsureAdmin creates the admin account if it does not exist yet.
func (s *adminAuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errors.New("username and password cannot be empty")
	}
	admin, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("error looking up admin: %w", err)
	}
	if admin != nil {
		return nil
	}
	if err := s.repo.CreateNewUser(ctx, username, password); err != nil {
		return err
	}
	log.Printf("Seeded admin user %q", username)
	return nil
}
