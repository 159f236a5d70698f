package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"giglink_backend/database"
	"giglink_backend/internal/app"
	"giglink_backend/internal/auth"
	"giglink_backend/internal/config"
	"giglink_backend/internal/models"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.JWT.Secret = "handler-test-secret"
	cfg.JWT.TTL = 60
	cfg.Notifications.QueueSize = 16
	cfg.CORS.AllowedOrigin = "http://localhost:5173"
	config.AppConfig = cfg

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)",
		strings.ReplaceAll(uuid.NewString(), "-", ""))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &testServer{
		router: app.SetupRouter(ctx, cfg, db),
		db:     db,
	}
}

func (ts *testServer) createUser(t *testing.T, name string, role models.UserRole) (*models.User, string) {
	t.Helper()

	user := &models.User{
		Name:   name,
		Email:  fmt.Sprintf("%s-%s@example.com", strings.ToLower(name), uuid.NewString()[:8]),
		Phone:  "+77010000000",
		Role:   role,
		Status: models.UserStatusApproved,
	}
	require.NoError(t, ts.db.Create(user).Error)

	token, err := auth.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return user, token
}

func (ts *testServer) request(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	ts.router.ServeHTTP(recorder, req)
	return recorder, recorder.Body.String()
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	res, body := ts.request(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, body, `"ok":true`)
}
