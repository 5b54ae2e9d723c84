// internal/auth/auth.go
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/alexpetro/campaign-notifier/internal/apperrors"
	"github.com/alexpetro/campaign-notifier/internal/model"
	"github.com/alexpetro/campaign-notifier/internal/repository"
)

// Service issues and verifies credentials for the HTTP surface. Workers
// authenticate with a fixed token instead of a user account.
type Service struct {
	Users       repository.UserRepositoryInterface
	Secret      []byte
	TokenTTL    time.Duration
	WorkerToken string
}

func NewService(users repository.UserRepositoryInterface, secret string, ttl time.Duration, workerToken string) *Service {
	return &Service{
		Users:       users,
		Secret:      []byte(secret),
		TokenTTL:    ttl,
		WorkerToken: workerToken,
	}
}

func (s *Service) Register(ctx context.Context, email, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{Email: email, PasswordHash: string(hash)}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the password and returns a signed token. Wrong password and
// unknown email are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", apperrors.NewNotFound("invalid email or password")
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", apperrors.NewNotFound("invalid email or password")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.Email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// VerifyToken accepts either the static worker token or a valid user JWT and
// returns the authenticated subject.
func (s *Service) VerifyToken(token string) (string, error) {
	if s.WorkerToken != "" && token == s.WorkerToken {
		return "worker", nil
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	claims := parsed.Claims.(*jwt.RegisteredClaims)
	return claims.Subject, nil
}
