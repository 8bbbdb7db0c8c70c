package store

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether a persisted bearer token is a JWT whose expiry
// has passed. The token is otherwise opaque to the client: anything that does
// not parse as a JWT, or carries no exp claim, is kept as-is and left for the
// backend to judge.
func tokenExpired(token string) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
