package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo holds claims peeked from a bearer token for display purposes.
type TokenInfo struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// InspectToken attempts an unverified JWT parse of the bearer token and
// returns any claims found. The backend issues opaque tokens, but some
// deployments hand out JWTs; surfacing their claims helps the monitor UI.
// The result is diagnostic only and must never feed authorization
// decisions: the signature is not checked.
func InspectToken(raw string) (*TokenInfo, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, false
	}

	info := &TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if email, isString := claims["email"].(string); isString {
		info.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, true
}
