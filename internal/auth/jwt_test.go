package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"social-calling/internal/config"
	"social-calling/internal/pricing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:       "secret",
		JWTIssuer:       "issuer",
		JWTAudience:     "aud",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	require.NoError(t, err)
	return m
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	m := newManager(t)
	now := time.Unix(1700000000, 0).UTC()
	joined := now.Add(-5 * 24 * time.Hour)

	pair, err := m.IssuePair(now, Identity{UserID: "user-1", Gender: pricing.GenderFemale, JoinedAt: joined, Role: "user"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(time.Minute))
	require.NoError(t, err)

	id := claims.Identity()
	assert.Equal(t, "user-1", id.UserID)
	assert.Equal(t, pricing.GenderFemale, id.Gender)
	assert.Equal(t, joined, id.JoinedAt)
	assert.Equal(t, "user", id.Role)

	refresh, err := m.Verify(pair.RefreshToken, TokenTypeRefresh, now)
	require.NoError(t, err)
	assert.Empty(t, refresh.Role)
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	m, err := NewManager(config.AuthConfig{JWTSecret: "secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	require.NoError(t, err)
	now := time.Now()
	p, err := m.IssuePair(now, Identity{UserID: "u", Role: "user"})
	require.NoError(t, err)

	_, err = m.Verify(p.RefreshToken, TokenTypeAccess, now)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := newManager(t)
	now := time.Unix(1700000000, 0).UTC()
	p, err := m.IssuePair(now, Identity{UserID: "u", Role: "user"})
	require.NoError(t, err)

	_, err = m.Verify(p.AccessToken, TokenTypeAccess, now.Add(time.Hour))
	assert.Error(t, err)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager(config.AuthConfig{})
	assert.ErrorIs(t, err, ErrSecretRequired)
}

func TestIdentityFrom_Missing(t *testing.T) {
	_, err := IdentityFrom(context.Background())
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestRequireAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newManager(t)
	p, err := m.IssuePair(time.Now(), Identity{UserID: "u-9", Gender: pricing.GenderMale, Role: "user"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireAccessToken(m), func(c *gin.Context) {
		id, err := IdentityFrom(c.Request.Context())
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "gender": id.Gender})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+p.AccessToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"u-9","gender":"M"}`, w.Body.String())
}
