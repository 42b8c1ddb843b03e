package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-key-with-enough-length"

func newTestTokenService(t *testing.T, accessTTL time.Duration) TokenService {
	t.Helper()
	svc, err := NewTokenService(accessTTL, 24*time.Hour, "test-issuer", "test-audience", false, "", "", testSecret)
	require.NoError(t, err)
	return svc
}

func TestGenerateAndValidateAdminTokens(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	access, refresh, err := svc.GenerateAdminTokens(42)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims, err := svc.ValidateAdminToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.AdminID)
	assert.Equal(t, "access", claims.TokenType)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))

	refreshClaims, err := svc.ValidateAdminToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenType)
	assert.NotEqual(t, claims.TokenID, refreshClaims.TokenID)
}

func TestValidateAdminTokenRejectsGarbage(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	_, err := svc.ValidateAdminToken("not-a-jwt")
	assert.Error(t, err)

	_, err = svc.ValidateAdminToken("")
	assert.Error(t, err)
}

func TestValidateAdminTokenRejectsForeignSignature(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)
	other, err := NewTokenService(time.Hour, 24*time.Hour, "test-issuer", "test-audience", false, "", "", "a-completely-different-secret-key-here")
	require.NoError(t, err)

	access, _, err := other.GenerateAdminTokens(1)
	require.NoError(t, err)

	_, err = svc.ValidateAdminToken(access)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := newTestTokenService(t, -time.Minute)

	access, _, err := svc.GenerateAdminTokens(7)
	require.NoError(t, err)

	_, err = svc.ValidateAdminToken(access)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRevokeToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	access, _, err := svc.GenerateAdminTokens(9)
	require.NoError(t, err)

	_, err = svc.ValidateAdminToken(access)
	require.NoError(t, err)
	assert.False(t, svc.IsTokenRevoked(access))

	require.NoError(t, svc.RevokeToken(access))
	assert.True(t, svc.IsTokenRevoked(access))

	_, err = svc.ValidateAdminToken(access)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRSAKeyParsingErrors(t *testing.T) {
	_, err := NewTokenService(time.Hour, 24*time.Hour, "iss", "aud", true, "not-a-pem", "not-a-pem", "")
	assert.Error(t, err)
}
