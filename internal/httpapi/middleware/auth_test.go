package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/projexhq/projex-api/internal/config"
	"github.com/projexhq/projex-api/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRevoker struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[jti], nil
}

func testTokenService(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.NewService(config.TokenConfig{
		Issuer:   "https://api.test.local",
		Audience: "test",
		Secret:   "test-secret",
		TTL:      time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func okHandler(t *testing.T, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		claims, ok := ClaimsFromContext(r.Context())
		assert.True(t, ok)
		assert.NotNil(t, claims)
		id, ok := UserIDFromContext(r.Context())
		assert.True(t, ok)
		assert.False(t, id.IsZero())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	svc := testTokenService(t)
	auth := NewAuth(svc, &fakeRevoker{})

	signed, _, err := svc.Mint("507f1f77bcf86cd799439011", "ada@example.com")
	require.NoError(t, err)

	called := false
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	auth.RequireAuth(okHandler(t, &called)).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	auth := NewAuth(testTokenService(t), &fakeRevoker{})

	called := false
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	auth.RequireAuth(okHandler(t, &called)).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsMalformedToken(t *testing.T) {
	auth := NewAuth(testTokenService(t), &fakeRevoker{})

	called := false
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()

	auth.RequireAuth(okHandler(t, &called)).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsRevokedToken(t *testing.T) {
	svc := testTokenService(t)

	signed, _, err := svc.Mint("507f1f77bcf86cd799439011", "ada@example.com")
	require.NoError(t, err)
	claims, err := svc.Validate(signed)
	require.NoError(t, err)

	auth := NewAuth(svc, &fakeRevoker{revoked: map[string]bool{claims.ID: true}})

	called := false
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	auth.RequireAuth(okHandler(t, &called)).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserIDFromContextWithoutClaims(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)
}
