package session_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-client/session"
)

func TestInspectTokenJWT(t *testing.T) {
	expiry := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"email": "a@b.com",
		"exp":   expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	info, isJWT := session.InspectToken(signed)
	require.True(t, isJWT)
	require.Equal(t, "user-1", info.Subject)
	require.Equal(t, "a@b.com", info.Email)
	require.True(t, info.ExpiresAt.Equal(expiry))
}

func TestInspectTokenOpaque(t *testing.T) {
	info, isJWT := session.InspectToken("9c4f1d2ab0e8")
	require.False(t, isJWT)
	require.Nil(t, info)
}

func TestInspectTokenEmpty(t *testing.T) {
	_, isJWT := session.InspectToken("")
	require.False(t, isJWT)
}
