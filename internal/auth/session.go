// internal/auth/session.go
package auth

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSecret signs tokens when SECRET_KEY is unset. Deployments are
// expected to override it.
const DefaultSecret = "change-this-secret-key"

var (
	secret []byte

	// TokenExpireMinutes is how long minted tokens stay valid.
	TokenExpireMinutes int
)

// Init reads SECRET_KEY, JWT_ALGORITHM and ACCESS_TOKEN_EXPIRE_MINUTES and
// prepares the signing key. Call once at startup before minting or verifying
// tokens.
func Init() {
	key := os.Getenv("SECRET_KEY")
	if key == "" {
		key = DefaultSecret
	}
	secret = []byte(key)

	if alg := os.Getenv("JWT_ALGORITHM"); alg != "" && alg != jwt.SigningMethodHS256.Alg() {
		fmt.Printf("unsupported JWT_ALGORITHM %q, only HS256 is supported\n", alg)
		os.Exit(1)
	}

	TokenExpireMinutes = 1440
	if s := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			fmt.Printf("failed to parse ACCESS_TOKEN_EXPIRE_MINUTES: %v\n", err)
			os.Exit(1)
		}
		TokenExpireMinutes = v
	}
}

// CreateJWT mints a signed token with "sub" set to the decimal user id.
func CreateJWT(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"exp": time.Now().Add(time.Duration(TokenExpireMinutes) * time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// AuthenticateJWT verifies a token string and returns the numeric user id
// from its "sub" claim.
func AuthenticateJWT(tokenString string) (int64, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid jwt claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, fmt.Errorf("missing sub in jwt")
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric sub %q: %w", sub, err)
	}
	return id, nil
}
