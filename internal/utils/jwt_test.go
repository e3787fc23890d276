package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestJWTUtil_GenerateToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)
	subject := "64f1c0ffee0000000000abcd"

	tokenString, err := jwtUtil.GenerateToken(subject)

	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := jwtUtil.ValidateToken(tokenString)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, subject, claims.Subject)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, 5*time.Second)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTUtil_RoundTripSubject(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)
	subject := "507f1f77bcf86cd799439011"

	tokenString, _ := jwtUtil.GenerateToken(subject)
	claims, err := jwtUtil.ValidateToken(tokenString)

	assert.NoError(t, err)
	assert.Equal(t, subject, claims.Subject)
}

func TestJWTUtil_ValidateToken_InvalidToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)

	_, err := jwtUtil.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTUtil_ValidateToken_ExpiredToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", -time.Hour)

	tokenString, _ := jwtUtil.GenerateToken("507f1f77bcf86cd799439011")

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTUtil_ValidateToken_WrongSecret(t *testing.T) {
	jwtUtil1 := NewJWTUtil("secret1", time.Hour)
	jwtUtil2 := NewJWTUtil("secret2", time.Hour)

	tokenString, _ := jwtUtil1.GenerateToken("507f1f77bcf86cd799439011")

	_, err := jwtUtil2.ValidateToken(tokenString)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTUtil_ValidateToken_NonHMACMethod(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)
	// alg=none tokens must be rejected by the HMAC-only keyfunc.
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "507f1f77bcf86cd799439011",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType)

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTUtil_TamperedToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)

	tokenString, _ := jwtUtil.GenerateToken("507f1f77bcf86cd799439011")
	tampered := tokenString[:len(tokenString)-2] + "xx"

	_, err := jwtUtil.ValidateToken(tampered)
	assert.Error(t, err)
}
