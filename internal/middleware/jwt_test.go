package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderhub/platform/internal/model"
	"github.com/siderhub/platform/internal/utils"
)

func newMiddlewareCodec() *utils.TokenCodec {
	return utils.NewTokenCodec("access-secret", "refresh-secret", "siderhub", "siderhub-web", 15*time.Minute, 24*time.Hour)
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, handler(c))
	return rec, c
}

func TestJWTAuth(t *testing.T) {
	codec := newMiddlewareCodec()
	issued, err := codec.IssueAccess("user-1", "sess-1", model.RoleMember)
	require.NoError(t, err)

	rec, c := invoke(t, JWTAuth(codec), "Bearer "+issued.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", c.Get(ContextUserID))
	assert.Equal(t, "sess-1", c.Get(ContextSessionID))
	assert.Equal(t, model.RoleMember, c.Get(ContextRole))
}

func TestJWTAuth_missingHeader(t *testing.T) {
	rec, _ := invoke(t, JWTAuth(newMiddlewareCodec()), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_rejectsRefreshToken(t *testing.T) {
	codec := newMiddlewareCodec()
	refresh, err := codec.IssueRefresh("user-1", "sess-1", model.RoleMember)
	require.NoError(t, err)

	rec, _ := invoke(t, JWTAuth(codec), "Bearer "+refresh.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type fakeAccessReader struct {
	entries []model.AccessEntry
	err     error
}

func (f *fakeAccessReader) ListByUser(_ context.Context, _ string) ([]model.AccessEntry, error) {
	return f.entries, f.err
}

func featureRequest(t *testing.T, reader AccessReader, userID string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(ContextUserID, userID)
	}
	handler := RequireFeature(reader, model.FeatureHidra)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec
}

func TestRequireFeature(t *testing.T) {
	enabled := &fakeAccessReader{entries: []model.AccessEntry{{Feature: model.FeatureHidra, Enabled: true}}}
	assert.Equal(t, http.StatusOK, featureRequest(t, enabled, "user-1").Code)

	disabled := &fakeAccessReader{entries: []model.AccessEntry{{Feature: model.FeatureHidra, Enabled: false}}}
	assert.Equal(t, http.StatusForbidden, featureRequest(t, disabled, "user-1").Code)

	missing := &fakeAccessReader{}
	assert.Equal(t, http.StatusForbidden, featureRequest(t, missing, "user-1").Code)

	assert.Equal(t, http.StatusUnauthorized, featureRequest(t, enabled, "").Code)

	broken := &fakeAccessReader{err: errors.New("db down")}
	assert.Equal(t, http.StatusInternalServerError, featureRequest(t, broken, "user-1").Code)
}
