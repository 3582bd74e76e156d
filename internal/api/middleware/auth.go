package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/speaker-diarize/backend/internal/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

func deny(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// AuthMiddleware validates the bearer token and stashes its claims in the
// request context for handlers and RequireRole.
func AuthMiddleware(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				deny(w, "authentication required", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				deny(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from the Authorization header. The scheme
// comparison is case-insensitive; proxies are inconsistent about it.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireRole gates a route on the authenticated user's role. Must run after
// AuthMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r)
			if claims == nil {
				deny(w, "authentication required", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			deny(w, "insufficient role", http.StatusForbidden)
		})
	}
}

// GetClaims returns the claims AuthMiddleware stored, or nil outside an
// authenticated request.
func GetClaims(r *http.Request) *auth.Claims {
	claims, ok := r.Context().Value(claimsKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}
