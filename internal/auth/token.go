package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// SessionClaims binds a token to one table session and the profile that
// created it.
type SessionClaims struct {
	SessionID string
	ProfileID string
	ExpiresAt time.Time
}

// IssueSessionToken signs an HS256 token for a session.
func IssueSessionToken(secret, sessionID, profileID string, ttl time.Duration) (string, error) {
	exp := time.Now().Add(ttl)
	claims := jwt.MapClaims{"session_id": sessionID, "profile_id": profileID, "exp": exp.Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates the signature and expiry and returns the claims.
func ParseSessionToken(secret, token string) (*SessionClaims, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		return nil, ErrInvalidToken
	}
	profileID, _ := claims["profile_id"].(string)

	out := &SessionClaims{SessionID: sessionID, ProfileID: profileID}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out, nil
}
