package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ftgifting/backoffice/internal/shared"
)

// ErrTokenInvalid marks a missing or expired bearer token.
var ErrTokenInvalid = errors.New("auth: invalid token")

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenStore
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenStore) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// StartSession issues a bearer token and records the login for auditing.
func (s *Service) StartSession(ctx context.Context, user *User, ip, ua string) (string, time.Time, error) {
	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := time.Now().Add(s.tokens.TTL())
	// An audit row failure must not invalidate the issued token.
	_ = s.repo.RecordSession(ctx, token, user.ID, expiresAt, ip, ua)
	return token, expiresAt, nil
}

// EndSession revokes the token and deletes the audit record.
func (s *Service) EndSession(ctx context.Context, token string) error {
	if err := s.tokens.Revoke(ctx, token); err != nil {
		return err
	}
	return s.repo.RemoveSession(ctx, token)
}

// ResolveToken maps a bearer token to the user it belongs to.
func (s *Service) ResolveToken(ctx context.Context, token string) (uuid.UUID, error) {
	return s.tokens.Resolve(ctx, token)
}
