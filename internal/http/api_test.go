package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faccoco/web-todo/internal/auth"
	"github.com/faccoco/web-todo/internal/repository/sqlite"
	"github.com/faccoco/web-todo/internal/service"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	todoRepo := sqlite.NewTodoRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, todoRepo.Init(ctx))

	codec := auth.NewTokenCodec([]byte("test-secret"), 24*time.Hour)
	users := service.NewUserService(userRepo, codec)
	todos := service.NewTodoService(todoRepo)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router := gin.New()
	router.Use(gin.Recovery())
	NewHandler(users, todos, logger).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router *gin.Engine, username, email, password string) AuthResponse {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp
}

func TestRegisterEndpoint(t *testing.T) {
	router := setupRouter(t)

	resp := registerUser(t, router, "u1", "u1@x.com", "p1")
	assert.Positive(t, resp.User.ID)
	assert.Equal(t, "u1", resp.User.Username)
	assert.Equal(t, "u1@x.com", resp.User.Email)

	// password hash never appears in the response
	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "u2", "email": "u2@x.com", "password": "p2",
	})
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterEndpoint_Validation(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "u1", "email": "u1@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	registerUser(t, router, "u1", "u1@x.com", "p1")
	w = doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "u1", "email": "other@x.com", "password": "p2",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "User already exists")
}

func TestRegisterEndpoint_RejectedFields(t *testing.T) {
	router := setupRouter(t)

	// whitespace-only fields trim to empty and are a client error, not a 500
	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "   ", "email": "u1@x.com", "password": "p1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "u1", "email": "   ", "password": "p1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	// colons would make the token payload ambiguous
	w = doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "a:b", "email": "ab@x.com", "password": "p1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "username")
}

func TestLoginEndpoint(t *testing.T) {
	router := setupRouter(t)
	registered := registerUser(t, router, "u1", "u1@x.com", "p1")

	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "u1", "password": "p1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, registered.User.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "u1", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "nobody", "password": "p1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "u1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeEndpoint(t *testing.T) {
	router := setupRouter(t)
	resp := registerUser(t, router, "u1", "u1@x.com", "p1")

	w := doJSON(t, router, http.MethodGet, "/api/auth/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, resp.User.ID, me.ID)
	assert.Equal(t, "u1", me.Username)
	assert.NotEmpty(t, me.CreatedAt)

	w = doJSON(t, router, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/auth/me", "bogus:token:0:sig", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTodoCRUDFlow(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "u1", "u1@x.com", "p1").Token

	// create
	w := doJSON(t, router, http.MethodPost, "/api/todos", token, gin.H{"text": "buy milk"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "buy milk", created.Text)
	assert.False(t, created.Completed)
	assert.Nil(t, created.DueDate)

	// list contains it
	w = doJSON(t, router, http.MethodGet, "/api/todos", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	// update
	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/todos/%d", created.ID), token, gin.H{
		"text": "buy oat milk", "completed": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "buy oat milk", updated.Text)
	assert.True(t, updated.Completed)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	// delete
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/todos/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	// gone afterwards
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/todos/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/todos", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestTodoEndpoints_Validation(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "u1", "u1@x.com", "p1").Token

	w := doJSON(t, router, http.MethodPost, "/api/todos", token, gin.H{"text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Text field is required")

	w = doJSON(t, router, http.MethodPut, "/api/todos/notanumber", token, gin.H{"text": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/todos/9999", token, gin.H{"text": "x", "completed": false})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTodoEndpoints_DueDate(t *testing.T) {
	router := setupRouter(t)
	token := registerUser(t, router, "u1", "u1@x.com", "p1").Token

	w := doJSON(t, router, http.MethodPost, "/api/todos", token, gin.H{
		"text": "pay rent", "dueDate": "2026-10-01",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2026-10-01", *created.DueDate)
	// due_date is present (null or value) on every todo payload
	assert.Contains(t, w.Body.String(), `"due_date"`)
}

func TestTodoEndpoints_RequireAuth(t *testing.T) {
	router := setupRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/todos"},
		{http.MethodPost, "/api/todos"},
		{http.MethodPut, "/api/todos/1"},
		{http.MethodDelete, "/api/todos/1"},
	} {
		w := doJSON(t, router, tc.method, tc.path, "", gin.H{"text": "x"})
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
		assert.Contains(t, w.Body.String(), "Unauthorized")
	}
}

func TestTodoEndpoints_CrossUserIsolation(t *testing.T) {
	router := setupRouter(t)
	aliceToken := registerUser(t, router, "alice", "alice@x.com", "p1").Token
	bobToken := registerUser(t, router, "bob", "bob@x.com", "p2").Token

	w := doJSON(t, router, http.MethodPost, "/api/todos", aliceToken, gin.H{"text": "private"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	path := fmt.Sprintf("/api/todos/%d", created.ID)

	w = doJSON(t, router, http.MethodGet, path, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPut, path, bobToken, gin.H{"text": "stolen", "completed": true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, path, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// still intact for the owner
	w = doJSON(t, router, http.MethodGet, path, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "private", got.Text)
	assert.False(t, got.Completed)
}

func TestCORSPreflight(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodOptions, "/api/todos", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	// every response carries the CORS headers
	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{"username": "x", "password": "y"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDHeader(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{"username": "x", "password": "y"})
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
