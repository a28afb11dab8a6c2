package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator is a test implementation of TokenValidator for unit tests.
type testTokenValidator struct {
	validTokens   map[string]uuid.UUID
	expiredTokens map[string]bool
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{
		validTokens:   make(map[string]uuid.UUID),
		expiredTokens: make(map[string]bool),
	}
}

func (v *testTokenValidator) ValidateToken(tokenString string) (UserIDGetter, error) {
	if v.expiredTokens[tokenString] {
		return nil, fmt.Errorf("token expired: %w", jwt.ErrTokenExpired)
	}
	userID, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return &testClaims{userID: userID}, nil
}

type testClaims struct {
	userID uuid.UUID
}

func (c *testClaims) GetUserID() uuid.UUID {
	return c.userID
}

// serve runs one request through the middleware and reports whether the
// wrapped handler ran and which user it saw.
func serve(t *testing.T, v TokenValidator, authHeader string) (*httptest.ResponseRecorder, bool, uuid.UUID) {
	t.Helper()
	called := false
	var seen uuid.UUID
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		id, err := GetUserID(r)
		require.NoError(t, err)
		seen = id
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	AuthMiddleware(v)(handler).ServeHTTP(w, req)
	return w, called, seen
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	v := newTestTokenValidator()
	userID := uuid.New()
	v.validTokens["valid-test-token-123"] = userID

	w, called, seen := serve(t, v, "Bearer valid-test-token-123")

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, seen)
}

func TestAuthMiddleware_CaseInsensitiveScheme(t *testing.T) {
	v := newTestTokenValidator()
	v.validTokens["tok"] = uuid.New()

	for _, scheme := range []string{"bearer", "BeArEr", "BEARER"} {
		w, called, _ := serve(t, v, scheme+" tok")
		assert.True(t, called, scheme)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	w, called, _ := serve(t, newTestTokenValidator(), "")

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"`+MsgNoToken+`"}`, w.Body.String())
}

func TestAuthMiddleware_InvalidFormat(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
	}{
		{name: "missing Bearer prefix", authHeader: "token123"},
		{name: "only Bearer", authHeader: "Bearer"},
		{name: "basic scheme", authHeader: "Basic dXNlcjpwYXNz"},
		{name: "extra parts", authHeader: "Bearer a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, called, _ := serve(t, newTestTokenValidator(), tt.authHeader)
			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), MsgNoToken)
		})
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	w, called, _ := serve(t, newTestTokenValidator(), "Bearer not.a.valid.jwt.token")

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), MsgInvalidToken)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	v := newTestTokenValidator()
	v.expiredTokens["old"] = true

	w, called, _ := serve(t, v, "Bearer old")

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), MsgTokenExpired)
}

func TestAuthMiddleware_NilUserRejected(t *testing.T) {
	v := newTestTokenValidator()
	v.validTokens["nil-user"] = uuid.Nil

	w, called, _ := serve(t, v, "Bearer nil-user")

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetUserID_Success(t *testing.T) {
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(WithUserID(req.Context(), userID))

	extractedUserID, err := GetUserID(req)
	require.NoError(t, err)
	assert.Equal(t, userID, extractedUserID)
}

func TestGetUserID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	userID, err := GetUserID(req)
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, userID)
	assert.Contains(t, err.Error(), "user ID not found")
}

func TestGetUserID_InvalidType(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), userIDKey, "not-a-uuid"))

	userID, err := GetUserID(req)
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, userID)
}
