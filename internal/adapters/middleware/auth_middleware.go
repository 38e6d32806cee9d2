package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/ports"
)

// AuthMiddleware authenticates requests against the external identity
// provider. Only the verified email leaves this layer; role and status are
// resolved from the user directory by the access policy, never from claims.
type AuthMiddleware struct {
	verifier ports.IdentityVerifier
}

func NewAuthMiddleware(verifier ports.IdentityVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

type contextKey string

const emailKey contextKey = "verifiedEmail"

// EmailFromContext returns the verified email placed by Authenticate.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok && email != ""
}

// ContextWithEmail returns a context carrying a verified email, the same way
// Authenticate installs it.
func ContextWithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, email)
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Printf("Missing Authorization header")
			unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Printf("Invalid Authorization header format")
			unauthorized(w, "invalid authorization header")
			return
		}

		email, err := m.verifier.Verify(r.Context(), parts[1])
		if err != nil {
			log.Printf("Token verification failed: %v", err)
			unauthorized(w, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithEmail(r.Context(), email)))
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
