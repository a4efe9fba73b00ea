package httpapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tugasku/internal/config"
	"tugasku/internal/httpapi"
	"tugasku/internal/repository"
	"tugasku/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := repository.NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)

	cfg := config.Config{
		Addr:            ":0",
		JWTSecret:       "test-secret",
		JWTExpiration:   time.Hour,
		CORSOrigins:     []string{"*"},
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	server := httpapi.New(cfg, zap.NewNop(),
		service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiration),
		service.NewTaskService(taskRepo, categoryRepo),
		service.NewCategoryService(categoryRepo, taskRepo),
		service.NewDashboardService(taskRepo, categoryRepo),
	)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func register(t *testing.T, ts *httptest.Server, username string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "alice")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/categories", token, map[string]string{
		"name": "Work",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	categoryID := body["category"].(map[string]any)["id"].(float64)

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/tasks", token, map[string]any{
		"title":       "Write report",
		"category_id": categoryID,
		"due_date":    "2026-09-15",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	task := body["task"].(map[string]any)
	taskID := task["id"].(float64)
	assert.Equal(t, "pending", task["status"])
	assert.Equal(t, "medium", task["priority"])

	// Deleting the category is blocked while the task references it.
	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/categories/%.0f", ts.URL, categoryID), token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/tasks/%.0f", ts.URL, taskID), token, map[string]any{
		"status":       "completed",
		"status_notes": "done early",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", body["task"].(map[string]any)["status"])

	resp, body = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/tasks/%.0f", ts.URL, taskID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	logs := body["logs"].([]any)
	require.Len(t, logs, 2)
	assert.Nil(t, logs[0].(map[string]any)["old_status"])
	assert.Equal(t, "pending", logs[1].(map[string]any)["old_status"])
	assert.Equal(t, "done early", logs[1].(map[string]any)["notes"])

	// Clear the category reference, then the delete goes through.
	resp, _ = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/tasks/%.0f", ts.URL, taskID), token, map[string]any{
		"category_id": nil,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/categories/%.0f", ts.URL, categoryID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListTasksPaginationOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "bob")

	for i := 1; i <= 25; i++ {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/tasks", token, map[string]string{
			"title": fmt.Sprintf("task %02d", i),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/tasks?page=1&page_size=10", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["tasks"].([]any), 10)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(25), pagination["total"])
	assert.Equal(t, float64(3), pagination["pages"])
	assert.Equal(t, true, pagination["has_next"])
	assert.Equal(t, false, pagination["has_prev"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/tasks?page=3&page_size=10", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["tasks"].([]any), 5)
	pagination = body["pagination"].(map[string]any)
	assert.Equal(t, false, pagination["has_next"])
	assert.Equal(t, true, pagination["has_prev"])
}

func TestValidationErrorsOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "carol")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/tasks", token, map[string]string{"title": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "title")

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/tasks?status=archived", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/tasks/99999", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOwnersAreIsolatedOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	alice := register(t, ts, "alice2")
	mallory := register(t, ts, "mallory")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/tasks", alice, map[string]string{"title": "secret"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	taskID := body["task"].(map[string]any)["id"].(float64)

	// Another user gets the same 404 as for a task that does not exist.
	resp, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/tasks/%.0f", ts.URL, taskID), mallory, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
