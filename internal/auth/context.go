package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey struct{}

// WithClaims returns a copy of ctx carrying the authenticated token claims.
func WithClaims(ctx context.Context, claims *jwt.RegisteredClaims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

// ClaimsFrom returns the claims stored by WithClaims, or nil.
func ClaimsFrom(ctx context.Context) *jwt.RegisteredClaims {
	claims, _ := ctx.Value(ctxKey{}).(*jwt.RegisteredClaims)
	return claims
}

// UserID returns the authenticated user's id, or "" outside the auth guard.
func UserID(ctx context.Context) string {
	if claims := ClaimsFrom(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}
