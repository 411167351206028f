package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savemyigcse/backend/internal/models"
	"github.com/savemyigcse/backend/internal/types"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	Init("test-secret")

	user := models.User{ID: "user-1", Email: "a@b.com", Role: types.RoleTeacher}
	token, err := GenerateJWT(user)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, types.RoleTeacher, claims.Role)
}

func TestValidateJWTRejectsWrongKey(t *testing.T) {
	Init("test-secret")
	token, err := GenerateJWT(models.User{ID: "user-1"})
	require.NoError(t, err)

	Init("another-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	Init("test-secret")

	var gotClaims *Claims
	handler := JWTMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
	}))

	// No token at all.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Bearer token.
	token, err := GenerateJWT(models.User{ID: "user-1", Role: types.RoleAdmin})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, "user-1", gotClaims.UserID)

	// Cookie fallback.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	Init("test-secret")

	protected := JWTMiddleware()(RequireRole(types.RoleAdmin)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {})))

	token, err := GenerateJWT(models.User{ID: "user-1", Role: types.RoleStudent})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	token, err = GenerateJWT(models.User{ID: "user-2", Role: types.RoleAdmin})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
