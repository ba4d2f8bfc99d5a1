package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type AuthService interface {
	Login(ctx context.Context, password string) (string, error)
}

type authService struct {
	adminPassword string
	jwtSecret     string
}

func NewAuthService(adminPassword, jwtSecret string) AuthService {
	return &authService{
		adminPassword: adminPassword,
		jwtSecret:     jwtSecret,
	}
}

// Login checks the admin password and returns a signed token. The configured
// password may be either a bcrypt hash or plain text.
func (s *authService) Login(_ context.Context, password string) (string, error) {
	if !s.passwordMatches(password) {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) passwordMatches(password string) bool {
	if strings.HasPrefix(s.adminPassword, "$2a$") || strings.HasPrefix(s.adminPassword, "$2b$") {
		return bcrypt.CompareHashAndPassword([]byte(s.adminPassword), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.adminPassword), []byte(password)) == 1
}
