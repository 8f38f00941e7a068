// Package token issues and validates the JWTs pegrun's server uses to
// authenticate API requests.
package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/corvidlang/pegrun/server/serr"
	"github.com/corvidlang/pegrun/server/store"
)

// DefaultExpiry is how long an issued token remains valid if the caller
// doesn't specify one.
const DefaultExpiry = 24 * time.Hour

// claims is the JWT payload pegrun issues: the standard registered claims
// plus the user's role, so middleware can make coarse authorization
// decisions without a DB round trip.
type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Generate issues a signed JWT for user, valid for expiry (DefaultExpiry if
// zero).
func Generate(user store.User, secret []byte, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Role: user.Role.String(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(secret)
}

// Get extracts the bearer token from req's Authorization header.
func Get(req *http.Request) (string, error) {
	header := req.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("no Authorization header present")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("Authorization header is not a bearer token")
	}
	return strings.TrimSpace(parts[1]), nil
}

// Validate parses and verifies tokStr, then looks up the user it names. It
// returns serr.ErrBadCredentials if the token is malformed, expired, or
// names a user that no longer exists, and wraps any other DB failure with
// serr.ErrDB.
func Validate(ctx context.Context, tokStr string, secret []byte, db store.UserRepository) (store.User, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(tokStr, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return store.User{}, serr.ErrBadCredentials
	}

	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return store.User{}, serr.ErrBadCredentials
	}

	user, err := db.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.User{}, serr.ErrBadCredentials
		}
		return store.User{}, serr.WrapDB("could not look up token subject", err)
	}

	// a logout after the token was issued invalidates it.
	if c.IssuedAt != nil && user.LastLogoutTime.After(c.IssuedAt.Time) {
		return store.User{}, serr.ErrBadCredentials
	}

	return user, nil
}
