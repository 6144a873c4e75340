package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eshitag/Dev-connector/internal/apperr"
	"github.com/eshitag/Dev-connector/internal/auth"
)

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*jwt.RegisteredClaims, error)
}

// RequireAuth is middleware that validates the bearer token and injects its
// claims into the request context. The legacy x-auth-token header is
// accepted when no Authorization header is sent.
func RequireAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				apperr.Write(w, apperr.Unauthorized("no token, authorisation denied"))
				return
			}

			claims, err := tokens.Verify(r.Context(), raw)
			if errors.Is(err, auth.ErrRevocationUnavailable) {
				apperr.Write(w, err)
				return
			}
			if err != nil {
				log.Printf("rejected token: %v", err)
				apperr.Write(w, apperr.Unauthorized("token is not valid"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(r.Header.Get("x-auth-token"))
}
