package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ftgifting/backoffice/internal/shared"
)

type memoryAuthRepo struct {
	users    map[string]*User
	sessions map[string]uuid.UUID
}

func newMemoryAuthRepo() *memoryAuthRepo {
	return &memoryAuthRepo{users: make(map[string]*User), sessions: make(map[string]uuid.UUID)}
}

func (r *memoryAuthRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (r *memoryAuthRepo) RecordSession(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time, ip, ua string) error {
	r.sessions[token] = userID
	return nil
}

func (r *memoryAuthRepo) RemoveSession(ctx context.Context, token string) error {
	delete(r.sessions, token)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryAuthRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryAuthRepo()
	return NewService(repo, NewTokenStore(client, time.Hour)), repo
}

func addUser(repo *memoryAuthRepo, email, password string, active bool) *User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     active,
	}
	repo.users[email] = user
	return user
}

func TestAuthenticate(t *testing.T) {
	svc, repo := newTestService(t)
	user := addUser(repo, "admin@ftgifting.local", "admin123", true)
	ctx := context.Background()

	got, err := svc.Authenticate(ctx, "admin@ftgifting.local", "admin123")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "admin@ftgifting.local", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@ftgifting.local", "admin123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	svc, repo := newTestService(t)
	addUser(repo, "former@ftgifting.local", "former123", false)

	_, err := svc.Authenticate(context.Background(), "former@ftgifting.local", "former123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestSessionLifecycle(t *testing.T) {
	svc, repo := newTestService(t)
	user := addUser(repo, "admin@ftgifting.local", "admin123", true)
	ctx := context.Background()

	token, expiresAt, err := svc.StartSession(ctx, user, "127.0.0.1", "test-agent")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, expiresAt.After(time.Now()))
	require.Equal(t, user.ID, repo.sessions[token])

	resolved, err := svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved)

	require.NoError(t, svc.EndSession(ctx, token))
	_, err = svc.ResolveToken(ctx, token)
	require.ErrorIs(t, err, ErrTokenInvalid)
	require.NotContains(t, repo.sessions, token)
}

func TestResolveUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ResolveToken(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
