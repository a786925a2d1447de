package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(accessTTL, refreshTTL time.Duration) *TokenCodec {
	// Equal secrets on purpose: the type discriminator, not the key,
	// must be what keeps the two token kinds apart.
	return NewTokenCodec("shared-secret", "shared-secret", "siderhub", "siderhub-web", accessTTL, refreshTTL)
}

func TestTokenCodec_roundTrip(t *testing.T) {
	codec := newTestCodec(15*time.Minute, 7*24*time.Hour)

	issued, err := codec.IssueAccess("user-1", "sess-1", "MEMBER")
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), issued.ExpiresAt, 5*time.Second)

	claims, err := codec.VerifyAccess(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "MEMBER", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, "siderhub", claims.Issuer)
}

func TestTokenCodec_refreshRejectedAsAccess(t *testing.T) {
	codec := newTestCodec(15*time.Minute, 7*24*time.Hour)

	refresh, err := codec.IssueRefresh("user-1", "sess-1", "MEMBER")
	require.NoError(t, err)

	_, err = codec.VerifyAccess(refresh.Token)
	assert.ErrorIs(t, err, ErrTokenInvalidType)

	access, err := codec.IssueAccess("user-1", "sess-1", "MEMBER")
	require.NoError(t, err)
	_, err = codec.VerifyRefresh(access.Token)
	assert.ErrorIs(t, err, ErrTokenInvalidType)
}

func TestTokenCodec_distinctSecrets(t *testing.T) {
	codec := NewTokenCodec("access-secret", "refresh-secret", "siderhub", "siderhub-web", time.Minute, time.Hour)

	refresh, err := codec.IssueRefresh("user-1", "sess-1", "MEMBER")
	require.NoError(t, err)

	// Signature check fires before the discriminator is ever read.
	_, err = codec.VerifyAccess(refresh.Token)
	assert.ErrorIs(t, err, ErrTokenVerificationFailed)
}

func TestTokenCodec_expired(t *testing.T) {
	codec := newTestCodec(-time.Minute, -time.Minute)

	issued, err := codec.IssueAccess("user-1", "sess-1", "MEMBER")
	require.NoError(t, err)

	_, err = codec.VerifyAccess(issued.Token)
	assert.ErrorIs(t, err, ErrTokenVerificationFailed)
}

func TestTokenCodec_tampered(t *testing.T) {
	codec := newTestCodec(time.Minute, time.Hour)

	issued, err := codec.IssueAccess("user-1", "sess-1", "MEMBER")
	require.NoError(t, err)

	tampered := issued.Token[:len(issued.Token)-2] + "xx"
	_, err = codec.VerifyAccess(tampered)
	assert.ErrorIs(t, err, ErrTokenVerificationFailed)

	other := NewTokenCodec("other", "other", "siderhub", "siderhub-web", time.Minute, time.Hour)
	_, err = other.VerifyAccess(issued.Token)
	assert.ErrorIs(t, err, ErrTokenVerificationFailed)
}

func TestTokenCodec_wrongAudience(t *testing.T) {
	codec := newTestCodec(time.Minute, time.Hour)
	other := NewTokenCodec("shared-secret", "shared-secret", "siderhub", "other-audience", time.Minute, time.Hour)

	issued, err := codec.IssueAccess("user-1", "sess-1", "MEMBER")
	require.NoError(t, err)

	_, err = other.VerifyAccess(issued.Token)
	assert.ErrorIs(t, err, ErrTokenVerificationFailed)
}

func TestHashRefreshRaw(t *testing.T) {
	h := HashRefreshRaw("some-refresh-token")
	assert.Equal(t, HashRefreshRaw("some-refresh-token"), h)
	assert.NotEqual(t, HashRefreshRaw("another-token"), h)

	want := sha256.Sum256([]byte("some-refresh-token"))
	assert.Equal(t, hex.EncodeToString(want[:]), h)
}
