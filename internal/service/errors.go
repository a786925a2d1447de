// Package service contains the orchestration layer: the auth session
// lifecycle, the Hidra campaign workflow against the Evolution gateway,
// and the hub overview aggregator.  Services depend on narrow store
// interfaces; the sql repositories are the canonical implementations.
package service

import "errors"

// ErrInvalidCredentials covers both an unknown email and a wrong
// password.  The two cases are deliberately indistinguishable so the
// login endpoint cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrSessionNotFound is returned on refresh when the session referenced
// by the token is missing or already invalidated.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExpired is returned on refresh when the session's refresh
// token has passed its expiry.
var ErrSessionExpired = errors.New("session expired")

// ErrRefreshTokenMismatch is returned when a presented refresh token
// verifies but does not match the session's stored hash.  The session is
// forcibly invalidated as a side effect: a verified-but-superseded token
// means the token was replayed or stolen, so that device is logged out.
var ErrRefreshTokenMismatch = errors.New("refresh token mismatch")

// ErrCampaignNotFound is returned when a campaign does not exist or has
// no external gateway linkage yet.
var ErrCampaignNotFound = errors.New("campaign not found")

// ErrGatewayNotConfigured is returned when a member triggers a gateway
// operation without having saved an Evolution configuration.
var ErrGatewayNotConfigured = errors.New("evolution gateway not configured")

// ErrResourceNotFound is returned by Cybervault operations against an
// unknown resource.
var ErrResourceNotFound = errors.New("resource not found")

// ErrOverviewUnavailable is returned when every hub overview dependency
// failed.  Partial failure is tolerated; total failure is not silently
// masked as an empty payload.
var ErrOverviewUnavailable = errors.New("hub overview unavailable")
