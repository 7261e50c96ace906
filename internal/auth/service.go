// Package auth implements registration, login, session tokens and password
// reset. Session tokens are HS256 JWTs with the user id as subject;
// revocation goes through a Redis denylist consulted on every verify.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/brainsait/docuscan/internal/apierror"
	"github.com/brainsait/docuscan/internal/models"
	"github.com/brainsait/docuscan/internal/repository"
)

const (
	TokenTTL       = 7 * 24 * time.Hour
	resetTokenTTL  = time.Hour
	initialCredits = 10
)

type Service struct {
	users    repository.UserStore
	denylist Denylist
	secret   []byte
}

func NewService(users repository.UserStore, denylist Denylist, jwtSecret string) *Service {
	return &Service{users: users, denylist: denylist, secret: []byte(jwtSecret)}
}

func (s *Service) Register(ctx context.Context, email, password, fullName, phone string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", apierror.Validation("email and password are required")
	}
	if len(password) < 8 {
		return nil, "", apierror.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Phone:        phone,
		Credits:      initialCredits,
		Tier:         models.TierFree,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apierror.Conflict("an account with this email already exists")
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login returns the same error for unknown email and wrong password so
// responses do not reveal which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", apierror.Unauthorized("invalid email or password")
		}
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", apierror.Unauthorized("invalid email or password")
	}
	if !u.Active {
		return nil, "", apierror.Unauthorized("invalid email or password")
	}

	if err := s.users.UpdateLastLogin(ctx, u.ID); err != nil {
		return nil, "", fmt.Errorf("update last login: %w", err)
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout denylists the token for its remaining validity.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return apierror.Unauthorized("invalid token")
	}

	remaining := TokenTTL
	if claims.ExpiresAt != nil {
		remaining = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.denylist.Revoke(ctx, token, remaining); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Verify yields the subject user id for a valid, non-revoked token.
func (s *Service) Verify(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return uuid.Nil, apierror.Unauthorized("invalid or expired token")
	}

	revoked, err := s.denylist.IsRevoked(ctx, token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("check denylist: %w", err)
	}
	if revoked {
		return uuid.Nil, apierror.Unauthorized("token has been revoked")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apierror.Unauthorized("invalid token subject")
	}
	return userID, nil
}

// RequestPasswordReset stores a single-use token when the account exists.
// The response shape is identical either way.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := s.users.SetResetToken(ctx, u.ID, token, time.Now().UTC().Add(resetTokenTTL)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return apierror.Validation("password must be at least 8 characters")
	}

	u, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierror.Validation("invalid or expired reset token")
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}
	if u.ResetTokenExpires == nil || u.ResetTokenExpires.Before(time.Now()) {
		return apierror.Validation("invalid or expired reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.ResetPassword(ctx, u.ID, string(hash)); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

func (s *Service) issueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) parseToken(tokenStr string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("token expired")
	}
	return claims, nil
}
