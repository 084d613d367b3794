package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single error returned for every verification
// failure. Malformed, unsigned and badly signed tokens are indistinguishable
// to the caller so no failure cause leaks to clients.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and verifies signed bearer tokens binding an account id
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager. A zero ttl issues tokens without
// an expiry claim.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue mints a signed token carrying the account id
func (m *TokenManager) Issue(accountID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":  accountID,
		"iat": now.Unix(),
	}
	if m.ttl > 0 {
		claims["exp"] = now.Add(m.ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token and returns the bound account id
func (m *TokenManager) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	accountID, ok := claims["id"].(string)
	if !ok || accountID == "" {
		return "", ErrInvalidToken
	}

	return accountID, nil
}
