package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRupees(t *testing.T) {
	tests := map[int]string{
		0:       "₹0",
		999:     "₹999",
		1999:    "₹1,999",
		19999:   "₹19,999",
		100000:  "₹1,00,000",
		1234567: "₹12,34,567",
		-5499:   "-₹5,499",
	}
	for amount, want := range tests {
		assert.Equal(t, want, FormatRupees(amount), "amount %d", amount)
	}
}

func TestToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken("r1", RoleOwner)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "r1", claims.RestaurantID)
	assert.Equal(t, RoleOwner, claims.Role)
	assert.Equal(t, "QueueApp", claims.Issuer)
}

func TestParseToken_Rejects(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{
		Role: RoleOwner,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredToken, err := expired.SignedString(JWTSecret)
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{Role: RolePlatformAdmin})
	foreignToken, err := foreign.SignedString([]byte("someone-else"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired": expiredToken,
		"foreign": foreignToken,
		"garbage": "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(token)
			assert.Error(t, err)
		})
	}
}

func TestSetJWTSecret_IgnoresEmpty(t *testing.T) {
	original := JWTSecret
	t.Cleanup(func() { JWTSecret = original })

	SetJWTSecret("")
	assert.Equal(t, original, JWTSecret)
	SetJWTSecret("rotated")
	assert.Equal(t, []byte("rotated"), JWTSecret)
}
