package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lares/globals"
	"lares/rbac"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, userID string) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		Role:   []string{"AGENT"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	require.NoError(t, err)
	return tok
}

// withSessions swaps the store lookup for an in-memory map for one test.
func withSessions(t *testing.T, sessions map[string]string) {
	t.Helper()
	orig := sessionLookup
	sessionLookup = func(userID string) (string, error) {
		v, ok := sessions[userID]
		if !ok {
			return "", errors.New("no session")
		}
		return v, nil
	}
	t.Cleanup(func() { sessionLookup = orig })
}

func TestValidateJWT_AcceptsActiveSession(t *testing.T) {
	tok := signToken(t, "u1")
	withSessions(t, map[string]string{"u1": tok})

	claims, err := ValidateJWT("Bearer " + tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, []string{"AGENT"}, claims.Role)
}

func TestValidateJWT_LogoutRevokesToken(t *testing.T) {
	tok := signToken(t, "u1")

	// No session on record: the token is signed and unexpired but revoked.
	withSessions(t, map[string]string{})
	_, err := ValidateJWT("Bearer " + tok)
	assert.Error(t, err)
}

func TestValidateJWT_NewerLoginRevokesOldToken(t *testing.T) {
	old := signToken(t, "u1")
	current := signToken(t, "u1")
	withSessions(t, map[string]string{"u1": current})

	_, err := ValidateJWT("Bearer " + old)
	assert.Error(t, err)

	_, err = ValidateJWT("Bearer " + current)
	assert.NoError(t, err)
}

func TestValidateJWT_BadHeader(t *testing.T) {
	withSessions(t, map[string]string{})

	for _, header := range []string{"", "Bearer", "Token abc", "Bearer "} {
		_, err := ValidateJWT(header)
		assert.Error(t, err, "header %q", header)
	}
}

func TestAuthenticate_RejectsUpgradeRequestWithoutToken(t *testing.T) {
	withSessions(t, map[string]string{})

	called := false
	h := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	})

	r := httptest.NewRequest(http.MethodGet, "/ws/agendas/g1/bookings", nil)
	r.Header.Set("Connection", "Upgrade")
	r.Header.Set("Upgrade", "websocket")
	w := httptest.NewRecorder()

	h(w, r, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called, "handler must not run without a valid token")
}

func TestRequirePermission_DeniesWithoutGrant(t *testing.T) {
	tok := signToken(t, "u1") // AGENT role, no explicit permissions in claims
	withSessions(t, map[string]string{"u1": tok})

	called := false
	h := RequirePermission(rbac.PermManageUsers, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		called = true
	})

	r := httptest.NewRequest(http.MethodGet, "/api/crm/users", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()

	h(w, r, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)
}
