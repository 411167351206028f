package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savemyigcse/backend/internal/auth"
	"github.com/savemyigcse/backend/internal/config"
	"github.com/savemyigcse/backend/internal/database"
	"github.com/savemyigcse/backend/internal/models"
	"github.com/savemyigcse/backend/internal/services"
	"github.com/savemyigcse/backend/internal/types"
)

func newTestRouter(t *testing.T) (http.Handler, *sql.DB) {
	t.Helper()
	auth.Init("test-secret")

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Env:         config.EnvTest,
		APIVersion:  "v1",
		FrontendURL: "http://localhost:3000",
	}
	return NewRouter(cfg,
		services.NewUserService(db),
		services.NewSubjectService(db),
		services.NewQuestionService(db)), db
}

// registerAndLogin creates an account through the public endpoints and
// returns its id plus a bearer token.
func registerAndLogin(t *testing.T, router http.Handler, email string) (string, string) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"email": email, "password": "abcdef", "name": "Test Student",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	user, ok := decodeBody(t, rec)["data"].(map[string]any)
	require.True(t, ok)
	id, ok := user["id"].(string)
	require.True(t, ok)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email": email, "password": "abcdef",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := decodeBody(t, rec)["data"].(map[string]any)
	require.True(t, ok)
	token, ok := data["token"].(string)
	require.True(t, ok)

	return id, token
}

func doAuthJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Server is running", body["message"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestVersionEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "v1", body["version"])
}

func TestUnmatchedRouteReturnsUniform404(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/nonexistent", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Route not found", body["error"])
}

func TestRegisterNeverEchoesCredential(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"email":    "a@b.com",
		"password": "abcdef",
		"name":     "Test Student",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	user, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, user, "emailVerificationToken")
	assert.NotContains(t, user, "resetPasswordToken")
}

func TestRegisterValidationEnvelope(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"email":    "bad",
		"password": "x",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}

func TestRegisterDuplicateConflict(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := map[string]any{"email": "a@b.com", "password": "abcdef", "name": "One"}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	payload["email"] = "A@B.com"
	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/register", payload)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["success"])
}

func TestLoginAndGetMe(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"email": "a@b.com", "password": "abcdef", "name": "Test Student",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email": "a@b.com", "password": "abcdef",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data, ok := decodeBody(t, rec)["data"].(map[string]any)
	require.True(t, ok)
	token, ok := data["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	meRec := httptest.NewRecorder()
	router.ServeHTTP(meRec, req)
	require.Equal(t, http.StatusOK, meRec.Code)

	me, ok := decodeBody(t, meRec)["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", me["email"])
	assert.NotContains(t, me, "passwordHash")
}

func TestProtectedRouteRejectsMissingToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContentWritesRequireAdmin(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"email": "s@b.com", "password": "abcdef", "name": "Student",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email": "s@b.com", "password": "abcdef",
	})
	data := decodeBody(t, rec)["data"].(map[string]any)
	token := data["token"].(string)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{
		"name": "Maths", "code": "MATH", "examBoard": "gcse_aqa", "description": "Maths syllabus",
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/subjects", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusForbidden, rec2.Code, "students cannot create subjects")
}

func TestUserWritesRequireSelfOrAdmin(t *testing.T) {
	router, db := newTestRouter(t)

	victimID, _ := registerAndLogin(t, router, "victim@b.com")
	_, attackerToken := registerAndLogin(t, router, "attacker@b.com")

	rec := doAuthJSON(t, router, http.MethodDelete, "/api/v1/users/"+victimID, attackerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "one student cannot delete another's account")

	rec = doAuthJSON(t, router, http.MethodPut, "/api/v1/users/"+victimID, attackerToken, map[string]any{
		"name": "Hijacked",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doAuthJSON(t, router, http.MethodPut, "/api/v1/users/"+victimID+"/password", attackerToken, map[string]any{
		"currentPassword": "abcdef", "newPassword": "hijack",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The account is untouched and its owner can still sign in.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email": "victim@b.com", "password": "abcdef",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// The owner can update their own account.
	rec = doAuthJSON(t, router, http.MethodPut, "/api/v1/users/"+victimID, mustLogin(t, router, "victim@b.com"), map[string]any{
		"name": "Renamed Student",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := decodeBody(t, rec)["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Renamed Student", data["name"])

	// Admins may act on any account.
	_, err := db.Exec(`UPDATE users SET role = 'admin' WHERE email = 'attacker@b.com'`)
	require.NoError(t, err)
	_, adminToken := mustLoginFull(t, router, "attacker@b.com")

	rec = doAuthJSON(t, router, http.MethodDelete, "/api/v1/users/"+victimID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListQuestionsEchoesEffectiveLimit(t *testing.T) {
	router, db := newTestRouter(t)

	year := 2021
	_, err := services.NewQuestionService(db).CreateQuestion(models.Question{
		TopicID:    "algebra",
		Type:       types.QuestionTypeShortAnswer,
		Difficulty: types.DifficultyEasy,
		Question:   "Solve 2x = 10",
		Answer:     "x = 5",
		MarkScheme: "1 mark for x = 5",
		Marks:      1,
		ExamBoard:  types.ExamBoardGCSEAQA,
		Year:       &year,
	})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/questions?limit=150", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	pagination, ok := body["pagination"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(20), pagination["limit"], "out-of-range limits fall back to the default")
	assert.Equal(t, float64(1), pagination["totalPages"])
}

func mustLogin(t *testing.T, router http.Handler, email string) string {
	t.Helper()
	_, token := mustLoginFull(t, router, email)
	return token
}

func mustLoginFull(t *testing.T, router http.Handler, email string) (string, string) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email": email, "password": "abcdef",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := decodeBody(t, rec)["data"].(map[string]any)
	require.True(t, ok)
	user, ok := data["user"].(map[string]any)
	require.True(t, ok)
	return user["id"].(string), data["token"].(string)
}
