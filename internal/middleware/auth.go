package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nutriscan/nutriscan-go/internal/crypto"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	infoKey   contextKey = "request_info"
)

// requestInfo is filled in by inner middleware for the logging middleware,
// which only sees the outer request.
type requestInfo struct {
	userID int64
}

// JWTAuth returns middleware that requires a valid Bearer token.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			claims, msg := parseBearer(authHeader, secret)
			if claims == nil {
				writeJSONError(w, http.StatusUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, withClaims(r, claims))
		})
	}
}

// OptionalJWTAuth attaches the token's claims when a valid token is sent
// and lets the request through either way. A malformed or expired token
// is still rejected.
func OptionalJWTAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, msg := parseBearer(authHeader, secret)
			if claims == nil {
				writeJSONError(w, http.StatusUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, withClaims(r, claims))
		})
	}
}

func withClaims(r *http.Request, claims *crypto.Claims) *http.Request {
	if info, ok := r.Context().Value(infoKey).(*requestInfo); ok {
		info.userID = claims.UserID
	}
	return r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
}

func parseBearer(header, secret string) (*crypto.Claims, string) {
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, "invalid authorization format"
	}

	claims, err := crypto.ValidateToken(token, secret)
	if err != nil {
		return nil, "invalid or expired token"
	}
	return claims, ""
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	claims, ok := ctx.Value(claimsKey).(*crypto.Claims)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

// WithUserID returns a context carrying an authenticated user ID. Used by
// tests and internal callers that bypass token parsing.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, claimsKey, &crypto.Claims{UserID: id})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
