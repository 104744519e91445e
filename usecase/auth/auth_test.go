package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studyflow/backend/domain"
)

type fakeUserRepo struct {
	byUsername map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byUsername: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range r.byUsername {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.byUsername[user.Username]; ok {
		return nil, domain.ErrUserExists
	}
	stored := *user
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now()
	r.byUsername[stored.Username] = &stored
	return &stored, nil
}

type fakeSessionRepo struct {
	byID map[string]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byID: make(map[string]*domain.Session)}
}

func (r *fakeSessionRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	session, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (r *fakeSessionRepo) Save(_ context.Context, session *domain.Session) error {
	clone := *session
	r.byID[session.ID] = &clone
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeSessionRepo) Extend(_ context.Context, id string, ttlSeconds int) error {
	session, ok := r.byID[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.ExpiresAt = time.Now().Add(time.Duration(ttlSeconds) * time.Second)
	return nil
}

const testSecret = "test-secret"

func newUseCase() (*UseCase, *fakeUserRepo, *fakeSessionRepo) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	return New(users, sessions, testSecret, "studyflow", zap.NewNop()), users, sessions
}

func TestRegister(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()

	user, err := uc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)

	_, err = uc.Register(ctx, "alice", "alice2@example.com", "another password")
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestRegisterValidation(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()

	_, err := uc.Register(ctx, "", "a@example.com", "long enough password")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.Register(ctx, "bob", "b@example.com", "short")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestLogin(t *testing.T) {
	uc, _, sessions := newUseCase()
	ctx := context.Background()

	user, err := uc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	session, token, err := uc.Login(ctx, "alice", "correct horse battery", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.Contains(t, sessions.byID, session.ID)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, "studyflow", claims["iss"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()

	_, err := uc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	_, _, err = uc.Login(ctx, "alice", "wrong password", time.Hour)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// unknown users get the same answer as bad passwords
	_, _, err = uc.Login(ctx, "mallory", "correct horse battery", time.Hour)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefreshSession(t *testing.T) {
	uc, _, sessions := newUseCase()
	ctx := context.Background()

	_, err := uc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	session, _, err := uc.Login(ctx, "alice", "correct horse battery", time.Hour)
	require.NoError(t, err)

	refreshed, token, err := uc.RefreshSession(ctx, session.ID, 2*time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, refreshed.ExpiresAt.After(session.ExpiresAt))

	_, _, err = uc.RefreshSession(ctx, "missing", time.Hour)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// expired sessions are purged on refresh
	sessions.byID[session.ID].ExpiresAt = time.Now().Add(-time.Minute)
	_, _, err = uc.RefreshSession(ctx, session.ID, time.Hour)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.NotContains(t, sessions.byID, session.ID)
}

func TestRevokeSession(t *testing.T) {
	uc, _, sessions := newUseCase()
	ctx := context.Background()

	_, err := uc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	session, _, err := uc.Login(ctx, "alice", "correct horse battery", time.Hour)
	require.NoError(t, err)

	require.NoError(t, uc.RevokeSession(ctx, session.ID))
	assert.NotContains(t, sessions.byID, session.ID)
}
