package utils

import (
	"regexp"
	"testing"

	"rbs/src/types"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestGenerateJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("someone@example.com", 42, types.ROLE_OWNER)
	assert.Nil(t, err)
	assert.NotEmpty(t, token)

	claims := &types.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	assert.Nil(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "someone@example.com", claims.Email)
	assert.Equal(t, types.ROLE_OWNER, claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass")
	assert.Nil(t, err)
	assert.NotEqual(t, "s3cret-pass", hashed)
	assert.True(t, CheckPassword(hashed, "s3cret-pass"))
	assert.False(t, CheckPassword(hashed, "wrong-pass"))
}

func TestNewOTPCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, pattern, NewOTPCode())
	}
}
