package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/projexhq/projex-api/internal/token"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenValidator defines the capabilities required to validate JWTs.
type TokenValidator interface {
	Validate(tokenStr string) (*token.Claims, error)
}

// RevocationChecker reports whether a token id has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Auth provides JWT-backed authentication middleware.
type Auth struct {
	validator TokenValidator
	revoker   RevocationChecker
}

// NewAuth creates a new instance.
func NewAuth(validator TokenValidator, revoker RevocationChecker) *Auth {
	return &Auth{validator: validator, revoker: revoker}
}

// RequireAuth ensures incoming requests possess a valid, unrevoked
// bearer token.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		tokenStr := strings.TrimSpace(authHeader[7:])
		claims, err := a.validator.Validate(tokenStr)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		if a.revoker != nil {
			revoked, err := a.revoker.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "could not verify token")
				return
			}
			if revoked {
				writeAuthError(w, http.StatusUnauthorized, "token revoked")
				return
			}
		}

		ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": message,
		"code":  "unauthorized",
	})
}

type claimsContextKey struct{}

// ContextWithClaims returns a context carrying the given claims, the
// same way RequireAuth stores them.
func ContextWithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext extracts token claims stored by middleware.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*token.Claims)
	return claims, ok && claims != nil
}

// UserIDFromContext extracts the authenticated user's object id.
func UserIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
