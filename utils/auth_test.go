package utils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairconnect-server/config"
)

func TestMain(m *testing.M) {
	config.Load()
	os.Exit(m.Run())
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, CheckPasswordHash("wrong password", hash))
	assert.False(t, CheckPasswordHash("correct horse battery staple", "not-a-hash"))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "provider")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "provider", claims.Role)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	_, err := VerifyToken("not.a.token")
	assert.Error(t, err)

	_, err = VerifyToken("")
	assert.Error(t, err)
}

func TestVerifyTokenRejectsTamperedSignature(t *testing.T) {
	token, err := GenerateToken(7, "customer")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = VerifyToken(tampered)
	assert.Error(t, err)
}
