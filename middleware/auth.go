package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/models"
	"shopkart/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// Auth holds the signing key for request authentication. Built once in main
// from config; there is no package-level key.
type Auth struct {
	secret []byte
}

// NewAuth builds the auth middleware set.
func NewAuth(secret []byte) *Auth {
	return &Auth{secret: secret}
}

// Authenticate verifies the bearer token and attaches the claims to the
// request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.RespondError(w, fmt.Errorf("%w: authorization header missing", models.ErrUnauthorized))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.RespondError(w, fmt.Errorf("%w: invalid authorization header format", models.ErrUnauthorized))
			return
		}

		claims, err := utils.ParseToken(a.secret, parts[1])
		if err != nil {
			utils.RespondError(w, fmt.Errorf("%w: invalid token", models.ErrUnauthorized))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin ensures that the authenticated user has admin privileges.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r)
		if !ok || claims.Role != "admin" {
			utils.RespondJSON(w, http.StatusForbidden, utils.M{
				"success": false,
				"message": "admins only",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFrom extracts the authenticated claims from the request context.
func ClaimsFrom(r *http.Request) (*utils.Claims, bool) {
	claims, ok := r.Context().Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// CustomerID resolves the authenticated customer's object id.
func CustomerID(r *http.Request) (primitive.ObjectID, error) {
	claims, ok := ClaimsFrom(r)
	if !ok {
		return primitive.NilObjectID, models.ErrUnauthorized
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, models.ErrUnauthorized
	}
	return id, nil
}
