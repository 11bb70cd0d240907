package middleware

import (
	"context"
	"fmt"
	"net/http"

	"lares/globals"
	"lares/rbac"
	"lares/rdx"
	"lares/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Email       string   `json:"email"`
	UserID      string   `json:"userId"`
	Role        []string `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Evaluator builds the permission evaluator for the authenticated user.
func (c *Claims) Evaluator() *rbac.Evaluator {
	if c == nil || c.UserID == "" {
		return rbac.NewEvaluator(nil)
	}
	return rbac.NewEvaluator(rbac.NewUser(c.UserID, c.Email, c.Role, c.Permissions, nil))
}

func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := ValidateJWT(r.Header.Get("Authorization"))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or missing token")
			return
		}

		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, globals.RoleKey, claims.Role)
		next(w, r.WithContext(ctx), ps)
	}
}

func OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if claims, err := ValidateJWT(r.Header.Get("Authorization")); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), globals.UserIDKey, claims.UserID))
		}
		// Proceed regardless of token state
		next(w, r, ps)
	}
}

// RequirePermission gates a handler behind one capability. It runs after
// Authenticate semantics: a missing or bad token is a 401, a valid token
// without the grant is a 403.
func RequirePermission(perm rbac.Permission, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := ValidateJWT(r.Header.Get("Authorization"))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or missing token")
			return
		}
		if !claims.Evaluator().HasPermission(perm) {
			utils.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
			return
		}
		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, globals.RoleKey, claims.Role)
		next(w, r.WithContext(ctx), ps)
	}
}

// sessionLookup fetches the access token on record for a user. A package
// variable so tests can stand in for Redis.
var sessionLookup = func(userID string) (string, error) {
	return rdx.RdxHget("tokki", userID)
}

// sessionActive reports whether the presented token is the one issued at
// login. Logout deletes the record, which revokes the token before its
// JWT expiry; a later login replaces it, revoking older sessions.
func sessionActive(userID, token string) bool {
	stored, err := sessionLookup(userID)
	if err != nil {
		return false
	}
	return stored == token
}

// ValidateJWT parses a "Bearer <token>" header value and checks the token
// against the session store.
func ValidateJWT(header string) (*Claims, error) {
	if len(header) < 8 || header[:7] != "Bearer " {
		return nil, fmt.Errorf("invalid token")
	}
	raw := header[7:]

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return globals.JwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("unauthorized: token invalid")
	}
	if !sessionActive(claims.UserID, raw) {
		return nil, fmt.Errorf("unauthorized: session revoked")
	}
	return claims, nil
}
