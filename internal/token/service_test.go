package token

import (
	"testing"
	"time"

	"github.com/projexhq/projex-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.TokenConfig {
	return config.TokenConfig{
		Issuer:   "https://api.test.local",
		Audience: "test",
		Secret:   "test-secret",
		TTL:      time.Hour,
	}
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService(config.TokenConfig{Issuer: "i", Audience: "a"})
	assert.Error(t, err)
}

func TestMintAndValidate(t *testing.T) {
	svc, err := NewService(testConfig())
	require.NoError(t, err)

	signed, exp, err := svc.Mint("507f1f77bcf86cd799439011", "ada@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := svc.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	svc, err := NewService(testConfig())
	require.NoError(t, err)

	otherCfg := testConfig()
	otherCfg.Secret = "different-secret"
	other, err := NewService(otherCfg)
	require.NoError(t, err)

	signed, _, err := other.Mint("507f1f77bcf86cd799439011", "ada@example.com")
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	cfg := testConfig()
	cfg.TTL = -time.Minute
	svc, err := NewService(cfg)
	require.NoError(t, err)

	signed, _, err := svc.Mint("507f1f77bcf86cd799439011", "ada@example.com")
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongAudience(t *testing.T) {
	otherCfg := testConfig()
	otherCfg.Audience = "someone-else"
	other, err := NewService(otherCfg)
	require.NoError(t, err)

	signed, _, err := other.Mint("507f1f77bcf86cd799439011", "ada@example.com")
	require.NoError(t, err)

	svc, err := NewService(testConfig())
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc, err := NewService(testConfig())
	require.NoError(t, err)

	_, err = svc.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMintUniqueTokenIDs(t *testing.T) {
	svc, err := NewService(testConfig())
	require.NoError(t, err)

	first, _, err := svc.Mint("507f1f77bcf86cd799439011", "ada@example.com")
	require.NoError(t, err)
	second, _, err := svc.Mint("507f1f77bcf86cd799439011", "ada@example.com")
	require.NoError(t, err)

	a, err := svc.Validate(first)
	require.NoError(t, err)
	b, err := svc.Validate(second)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}
