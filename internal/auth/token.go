package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"comanda-backend/internal/model"
)

// Claims carries the principal inside the session token, so group
// membership is resolved once at login rather than on every request.
type Claims struct {
	UserID    int64    `json:"userId"`
	Username  string   `json:"username"`
	Groups    []string `json:"groups"`
	Superuser bool     `json:"is_superuser"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token for the given user.
func IssueToken(u *model.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    u.ID,
		Username:  u.Username,
		Groups:    u.GroupNames(),
		Superuser: u.Superuser,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies a session token and returns the principal it carries.
func ParseToken(tokenStr, secret string) (Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Principal{}, err
	}
	if !token.Valid {
		return Principal{}, fmt.Errorf("invalid token")
	}

	return Principal{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Groups:    claims.Groups,
		Superuser: claims.Superuser,
	}, nil
}
