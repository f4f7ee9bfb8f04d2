// internal/auth/session_test.go
package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndAuthenticate(t *testing.T) {
	t.Setenv("SECRET_KEY", "unit-test-secret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	Init()

	token, err := CreateJWT(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
}

func TestInitAcceptsExplicitHS256(t *testing.T) {
	t.Setenv("SECRET_KEY", "unit-test-secret")
	t.Setenv("JWT_ALGORITHM", "HS256")
	Init()

	token, err := CreateJWT(9)
	require.NoError(t, err)

	id, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.EqualValues(t, 9, id)
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "first-secret")
	Init()
	token, err := CreateJWT(7)
	require.NoError(t, err)

	t.Setenv("SECRET_KEY", "second-secret")
	Init()
	_, err = AuthenticateJWT(token)
	assert.Error(t, err)
}

func TestAuthenticateRejectsExpired(t *testing.T) {
	t.Setenv("SECRET_KEY", "unit-test-secret")
	Init()
	TokenExpireMinutes = -1

	token, err := CreateJWT(7)
	require.NoError(t, err)

	_, err = AuthenticateJWT(token)
	assert.Error(t, err)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	t.Setenv("SECRET_KEY", "unit-test-secret")
	Init()

	_, err := AuthenticateJWT("not-a-token")
	assert.Error(t, err)
}

func TestAuthenticateRejectsNonNumericSub(t *testing.T) {
	t.Setenv("SECRET_KEY", "unit-test-secret")
	Init()

	claims := jwt.MapClaims{
		"sub": "abc",
		"exp": time.Now().Add(time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-test-secret"))
	require.NoError(t, err)

	_, err = AuthenticateJWT(token)
	assert.Error(t, err)
}

func TestAuthenticateRejectsWrongAlgorithm(t *testing.T) {
	t.Setenv("SECRET_KEY", "unit-test-secret")
	Init()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "42"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = AuthenticateJWT(signed)
	assert.Error(t, err)
}
