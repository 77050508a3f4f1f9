package sessions

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/bell-client/internal/errors"
)

// Claims is what the bell server encodes in its tokens. They are decoded
// without verification for display only; authorization always follows the
// held token and profile.
type Claims struct {
	UserID              int64
	Username            string
	Role                string
	ForcePasswordChange bool
	ExpiresAt           time.Time // zero when the token carries no exp
}

// Expired reports whether the token's exp lies before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ErrNoToken is returned by Claims when no token is held.
var ErrNoToken = apperrors.ErrNotAuthenticated

// Claims decodes the held token.
func (s *Session) Claims() (Claims, error) {
	token, ok := s.Token()
	if !ok {
		return Claims{}, ErrNoToken
	}
	return ParseClaims(token)
}

// ParseClaims decodes a bell server token without checking its signature.
func ParseClaims(rawToken string) (Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return Claims{}, ErrNoToken
	}
	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return Claims{}, errors.New("error extracting claims")
	}

	userID, _ := claims["user_id"].(float64)
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	force, _ := claims["force_password_change"].(bool)

	c := Claims{
		UserID:              int64(userID),
		Username:            username,
		Role:                role,
		ForcePasswordChange: force,
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
