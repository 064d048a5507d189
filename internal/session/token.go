// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of a backend-issued JWT. The signature
// is not checked here; the backend verifies its own tokens on every call.
// Opaque (non-JWT) tokens and tokens without exp report false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Lifetime is how long a session carrying token may live: ttl, shortened
// to the token's remaining validity when it carries an exp claim.
func Lifetime(token string, ttl time.Duration, now time.Time) time.Duration {
	exp, ok := TokenExpiry(token)
	if !ok {
		return ttl
	}
	if remaining := exp.Sub(now); remaining < ttl {
		return remaining
	}
	return ttl
}
