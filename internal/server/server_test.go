package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskboard/internal/auth"
	"taskboard/internal/board"
	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/handler"
	"taskboard/internal/metrics"
	"taskboard/internal/repository"
	"taskboard/internal/seed"
	"taskboard/internal/server"
	"taskboard/internal/service"
)

const testSecret = "test-secret"

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	log := zap.NewNop()
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), log)
	boards := service.NewBoardService(seed.Demo(), m, log)

	return server.NewRouter(&config.Config{JWTSecret: testSecret}, server.Dependencies{
		Logger:   log,
		Metrics:  m,
		Accounts: service.NewAccountService(repository.NewUserRepository(db), auth.NewTokenIssuer(testSecret, time.Hour), log),
		Projects: service.NewProjectService(repository.NewProjectRepository(db), boards, log),
		Boards:   boards,
	})
}

func call(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestServer_BoardWorkflow(t *testing.T) {
	r := setupRouter(t)

	// Регистрация и вход
	resp := call(t, r, http.MethodPost, "/register", "", handler.RegisterRequest{
		Email: "alex@example.com", Name: "Alex Johnson", Password: "password123",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = call(t, r, http.MethodPost, "/login", "", handler.LoginRequest{Email: "alex@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, resp.Code)
	var authResp handler.AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &authResp))
	token := authResp.Token

	// Создание проекта открывает доску с демо-данными
	resp = call(t, r, http.MethodPost, "/projects", token, handler.ProjectRequest{Name: "Developer Portal", Progress: 75})
	require.Equal(t, http.StatusCreated, resp.Code)
	var project handler.ProjectResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &project))
	base := "/projects/" + project.ID + "/board"

	resp = call(t, r, http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var snap board.Snapshot
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &snap))
	require.Len(t, snap.Columns, 4)
	assert.Equal(t, 7, snap.TaskCount())

	// Перетаскивание задачи в колонку Review
	call(t, r, http.MethodPost, base+"/drag/start", token, handler.DragStartRequest{TaskID: "task-1"})
	call(t, r, http.MethodPost, base+"/drag/over", token, handler.DragOverRequest{ColumnID: "column-3"})
	resp = call(t, r, http.MethodPost, base+"/drag/drop", token, handler.DropRequest{ColumnID: "column-3"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &snap))

	moved := false
	for _, task := range snap.TasksByColumn["column-3"] {
		if task.ID == "task-1" {
			moved = true
		}
	}
	assert.True(t, moved)
	for _, task := range snap.TasksByColumn["column-1"] {
		assert.NotEqual(t, "task-1", task.ID)
	}
	assert.Equal(t, 7, snap.TaskCount())
}

func TestServer_RequiresAuth(t *testing.T) {
	r := setupRouter(t)

	resp := call(t, r, http.MethodGet, "/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = call(t, r, http.MethodGet, "/projects", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestServer_PublicRoutes(t *testing.T) {
	r := setupRouter(t)

	resp := call(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok","boards":0}`, resp.Body.String())

	resp = call(t, r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = call(t, r, http.MethodGet, "/swagger/doc.json", "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Taskboard API")
}
