package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA-256 hashing for refresh tokens
	"encoding/hex"  // hex encoding of digests
	"errors"        // sentinel errors for verification failures
	"time"          // expiry calculations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token type discriminators embedded in the signed payload.  Verification
// checks the discriminator before trusting any other claim, so a refresh
// token can never be replayed as an access token even if both secrets are
// configured to the same value.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrTokenInvalidType is returned when a token's embedded type does not
// match the expected use (e.g. a refresh token presented as an access
// token).
var ErrTokenInvalidType = errors.New("token type mismatch")

// ErrTokenVerificationFailed is returned on any signature, expiry, issuer
// or audience mismatch.  The underlying cause is deliberately not
// distinguished to the caller.
var ErrTokenVerificationFailed = errors.New("token verification failed")

// Claims is the signed payload carried by both token kinds.
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// IssuedToken pairs a serialized JWT with its expiration time.  Access
// tokens are short-lived and sent in the Authorization header; refresh
// tokens live longer and are only exchanged at the refresh endpoint.
type IssuedToken struct {
	Token     string    // the serialized JWT string
	ExpiresAt time.Time // the UTC expiration time
}

// TokenCodec signs and verifies the access/refresh token pair.  The two
// kinds are signed with distinct secrets and tagged with a type
// discriminator so neither can be used in place of the other.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	audience      string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenCodec builds a codec from the configured secrets, issuer,
// audience and TTLs.
func NewTokenCodec(accessSecret, refreshSecret, issuer, audience string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		audience:      audience,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess signs a short-lived access token for the given identity.
func (c *TokenCodec) IssueAccess(userID, sessionID, role string) (IssuedToken, error) {
	return c.issue(TokenTypeAccess, c.accessSecret, c.accessTTL, userID, sessionID, role)
}

// IssueRefresh signs a long-lived refresh token for the given identity.
func (c *TokenCodec) IssueRefresh(userID, sessionID, role string) (IssuedToken, error) {
	return c.issue(TokenTypeRefresh, c.refreshSecret, c.refreshTTL, userID, sessionID, role)
}

func (c *TokenCodec) issue(tokenType string, secret []byte, ttl time.Duration, userID, sessionID, role string) (IssuedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		UserID:    userID,
		SessionID: sessionID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: signed, ExpiresAt: exp}, nil
}

// VerifyAccess parses and validates an access token and returns its claims.
func (c *TokenCodec) VerifyAccess(token string) (Claims, error) {
	return c.verify(token, TokenTypeAccess, c.accessSecret)
}

// VerifyRefresh parses and validates a refresh token and returns its claims.
func (c *TokenCodec) VerifyRefresh(token string) (Claims, error) {
	return c.verify(token, TokenTypeRefresh, c.refreshSecret)
}

func (c *TokenCodec) verify(token, wantType string, secret []byte) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything other than HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenVerificationFailed
		}
		return secret, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithAudience(c.audience), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return Claims{}, ErrTokenVerificationFailed
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return Claims{}, ErrTokenVerificationFailed
	}
	// The discriminator is checked before any other claim is trusted.
	if claims.TokenType != wantType {
		return Claims{}, ErrTokenInvalidType
	}
	return *claims, nil
}

// HashRefreshRaw returns the SHA-256 hash of the raw refresh token as a
// hex string.  Storing only the hash in the database prevents attackers
// from using stolen database entries to refresh sessions.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
