package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderhub/platform/internal/model"
	"github.com/siderhub/platform/internal/repository"
	"github.com/siderhub/platform/internal/utils"
)

// --- fakes ---

type fakeUserStore struct {
	users       map[string]model.User // keyed by email
	lastLoginAt map[string]time.Time
}

func newFakeUserStore(users ...model.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]model.User{}, lastLoginAt: map[string]time.Time{}}
	for _, u := range users {
		s.users[u.Email] = u
	}
	return s
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := s.users[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *fakeUserStore) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	s.lastLoginAt[id] = at
	return nil
}

type fakeSessionStore struct {
	sessions map[string]model.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]model.Session{}}
}

func (s *fakeSessionStore) Create(_ context.Context, sess model.Session) error {
	sess.CreatedAt = time.Now().UTC()
	sess.LastSeenAt = sess.CreatedAt
	s.sessions[sess.ID] = sess
	return nil
}

func (s *fakeSessionStore) GetByID(_ context.Context, id string) (model.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return model.Session{}, repository.ErrNotFound
	}
	return sess, nil
}

func (s *fakeSessionStore) ListActiveByUser(_ context.Context, userID string) ([]model.Session, error) {
	now := time.Now().UTC()
	var out []model.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.Active(now) {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *fakeSessionStore) Rotate(_ context.Context, id, newHash string, newExpiry time.Time) error {
	sess, ok := s.sessions[id]
	if !ok || sess.InvalidatedAt != nil {
		return repository.ErrNotFound
	}
	sess.RefreshTokenHash = newHash
	sess.ExpiresAt = newExpiry
	sess.LastSeenAt = time.Now().UTC()
	s.sessions[id] = sess
	return nil
}

func (s *fakeSessionStore) Invalidate(_ context.Context, id string) error {
	sess, ok := s.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	sess.InvalidatedAt = &now
	s.sessions[id] = sess
	return nil
}

func (s *fakeSessionStore) InvalidateAllForUser(_ context.Context, userID string) error {
	now := time.Now().UTC()
	for id, sess := range s.sessions {
		if sess.UserID == userID && sess.InvalidatedAt == nil {
			sess.InvalidatedAt = &now
			s.sessions[id] = sess
		}
	}
	return nil
}

type fakeAccessStore struct {
	entries map[string][]model.AccessEntry
}

func newFakeAccessStore() *fakeAccessStore {
	return &fakeAccessStore{entries: map[string][]model.AccessEntry{}}
}

func (s *fakeAccessStore) ReplaceForUser(_ context.Context, userID string, entries []model.AccessEntry) error {
	s.entries[userID] = entries
	return nil
}

func (s *fakeAccessStore) ListByUser(_ context.Context, userID string) ([]model.AccessEntry, error) {
	return s.entries[userID], nil
}

// --- helpers ---

func testUser() model.User {
	hash, err := utils.HashPassword("correct horse", 4)
	if err != nil {
		panic(err)
	}
	return model.User{
		ID:           "user-1",
		Email:        "member@siderhub.io",
		PasswordHash: hash,
		Role:         model.RoleMember,
		DisplayName:  "Member",
		IsActive:     true,
	}
}

func newAuthFixture(t *testing.T, users ...model.User) (*AuthService, *fakeUserStore, *fakeSessionStore, *fakeAccessStore) {
	t.Helper()
	us := newFakeUserStore(users...)
	ss := newFakeSessionStore()
	as := newFakeAccessStore()
	codec := utils.NewTokenCodec("access-secret", "refresh-secret", "siderhub", "siderhub-web", 15*time.Minute, 7*24*time.Hour)
	return NewAuthService(us, ss, as, codec), us, ss, as
}

// --- tests ---

func TestAuthService_Login(t *testing.T) {
	svc, us, ss, as := newAuthFixture(t, testUser())
	ctx := context.Background()

	res, err := svc.Login(ctx, "member@siderhub.io", "correct horse", "ua-1", "1.2.3.4")
	require.NoError(t, err)

	assert.Equal(t, "user-1", res.User.ID)
	require.NotNil(t, res.User.LastLoginAt)
	assert.NotEmpty(t, res.Tokens.Access.Token)
	assert.NotEmpty(t, res.Tokens.Refresh.Token)
	require.Len(t, res.Sessions, 1)

	// Only the hash of the refresh token is persisted.
	sess := res.Sessions[0]
	assert.Equal(t, utils.HashRefreshRaw(res.Tokens.Refresh.Token), sess.RefreshTokenHash)
	assert.NotContains(t, sess.RefreshTokenHash, res.Tokens.Refresh.Token)
	assert.Equal(t, "ua-1", sess.UserAgent)
	assert.Equal(t, "1.2.3.4", sess.IP)

	// Access map was recomputed from the MEMBER role.
	assert.Equal(t, model.AccessMapForRole("user-1", model.RoleMember), res.AccessMap)
	assert.Equal(t, res.AccessMap, as.entries["user-1"])
	assert.False(t, us.lastLoginAt["user-1"].IsZero())

	// A second device gets its own session; both stay active.
	res2, err := svc.Login(ctx, "member@siderhub.io", "correct horse", "ua-2", "5.6.7.8")
	require.NoError(t, err)
	assert.Len(t, res2.Sessions, 2)
	assert.Len(t, ss.sessions, 2)
}

func TestAuthService_Login_rejects(t *testing.T) {
	inactive := testUser()
	inactive.Email = "gone@siderhub.io"
	inactive.IsActive = false
	svc, _, _, _ := newAuthFixture(t, testUser(), inactive)
	ctx := context.Background()

	_, err := svc.Login(ctx, "nobody@siderhub.io", "correct horse", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "member@siderhub.io", "wrong password", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "gone@siderhub.io", "correct horse", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Refresh_rotates(t *testing.T) {
	svc, _, ss, _ := newAuthFixture(t, testUser())
	ctx := context.Background()

	login, err := svc.Login(ctx, "member@siderhub.io", "correct horse", "", "")
	require.NoError(t, err)
	sessionID := login.Sessions[0].ID

	pair, err := svc.Refresh(ctx, login.Tokens.Refresh.Token)
	require.NoError(t, err)
	assert.NotEqual(t, login.Tokens.Refresh.Token, pair.Refresh.Token)

	// The stored hash moved to the new token.
	sess := ss.sessions[sessionID]
	assert.Equal(t, utils.HashRefreshRaw(pair.Refresh.Token), sess.RefreshTokenHash)

	// The new token keeps working against the same session.
	_, err = svc.Refresh(ctx, pair.Refresh.Token)
	require.NoError(t, err)
}

func TestAuthService_Refresh_replayKillsSession(t *testing.T) {
	svc, _, ss, _ := newAuthFixture(t, testUser())
	ctx := context.Background()

	login, err := svc.Login(ctx, "member@siderhub.io", "correct horse", "", "")
	require.NoError(t, err)
	sessionID := login.Sessions[0].ID
	old := login.Tokens.Refresh.Token

	_, err = svc.Refresh(ctx, old)
	require.NoError(t, err)

	// Replaying the already-rotated token invalidates the session.
	_, err = svc.Refresh(ctx, old)
	assert.ErrorIs(t, err, ErrRefreshTokenMismatch)
	assert.NotNil(t, ss.sessions[sessionID].InvalidatedAt)

	// The whole session is dead, current token included.
	_, err = svc.Refresh(ctx, old)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAuthService_Refresh_expiredSession(t *testing.T) {
	svc, _, ss, _ := newAuthFixture(t, testUser())
	ctx := context.Background()

	login, err := svc.Login(ctx, "member@siderhub.io", "correct horse", "", "")
	require.NoError(t, err)
	sessionID := login.Sessions[0].ID

	sess := ss.sessions[sessionID]
	sess.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	ss.sessions[sessionID] = sess

	_, err = svc.Refresh(ctx, login.Tokens.Refresh.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestAuthService_Refresh_garbageToken(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t, testUser())

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, utils.ErrTokenVerificationFailed)
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, ss, _ := newAuthFixture(t, testUser())
	ctx := context.Background()

	first, err := svc.Login(ctx, "member@siderhub.io", "correct horse", "ua-1", "")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "member@siderhub.io", "correct horse", "ua-2", "")
	require.NoError(t, err)
	require.Len(t, second.Sessions, 2)

	firstID := first.Sessions[0].ID
	require.NoError(t, svc.Logout(ctx, "user-1", firstID))
	assert.NotNil(t, ss.sessions[firstID].InvalidatedAt)

	active, err := ss.ListActiveByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, active, 1)

	// A member cannot log out someone else's session.
	err = svc.Logout(ctx, "someone-else", active[0].ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Empty session id means "log out everywhere".
	require.NoError(t, svc.Logout(ctx, "user-1", ""))
	active, err = ss.ListActiveByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestAuthService_Me(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t, testUser())
	ctx := context.Background()

	_, err := svc.Login(ctx, "member@siderhub.io", "correct horse", "", "")
	require.NoError(t, err)

	me, err := svc.Me(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", me.User.ID)
	assert.Empty(t, me.User.PasswordHash)
	assert.Len(t, me.Sessions, 1)
	assert.Equal(t, model.AccessMapForRole("user-1", model.RoleMember), me.AccessMap)
}
