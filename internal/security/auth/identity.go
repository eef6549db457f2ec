// Package auth resolves opaque caller identities at the process boundary.
// Everything past this package works with domain.Identity values and never
// sees a token.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yourorg/adminstate/internal/domain"
)

// IdentityClaims carries the principal reference inside a signed token.
type IdentityClaims struct {
	Principal string `json:"principal"`
	jwt.RegisteredClaims
}

// Resolver verifies HS256 identity tokens and maps them to domain identities.
type Resolver struct {
	secret string
	issuer string
}

// NewResolver builds a resolver for tokens signed with secret and issued by
// issuer.
func NewResolver(secret, issuer string) *Resolver {
	if secret == "" {
		secret = "change-me-in-production"
	}
	if issuer == "" {
		issuer = "adminstate"
	}
	return &Resolver{secret: secret, issuer: issuer}
}

// Issue mints a token for principal, valid for expiresIn. Used by operator
// tooling to provision service identities.
func (r *Resolver) Issue(principal domain.Identity, expiresIn time.Duration) (string, error) {
	if principal == "" {
		return "", fmt.Errorf("principal required")
	}
	now := time.Now()
	claims := IdentityClaims{
		Principal: string(principal),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			Issuer:    r.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(r.secret))
}

// Resolve verifies tokenString and returns the authenticated identity.
// Failures are reported as domain.ErrUnauthorized so callers treat a bad
// token exactly like a missing grant.
func (r *Resolver) Resolve(tokenString string) (domain.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(r.secret), nil
	}, jwt.WithIssuer(r.issuer))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid || claims.Principal == "" {
		return "", fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}
	return domain.Identity(claims.Principal), nil
}

// ExtractToken pulls the bearer token out of an Authorization header value.
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("%w: invalid authorization header", domain.ErrUnauthorized)
	}
	return parts[1], nil
}
