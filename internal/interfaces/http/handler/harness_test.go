package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/identity"
	"github.com/zambezimeats/backend/internal/infrastructure/auth"
	"github.com/zambezimeats/backend/internal/infrastructure/config"
	"github.com/zambezimeats/backend/internal/infrastructure/persistence"
	"github.com/zambezimeats/backend/internal/infrastructure/storage"
	"github.com/zambezimeats/backend/internal/interfaces/http/dto"
	"github.com/zambezimeats/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

// envelope mirrors dto.Response with a typed payload.
type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var resp envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decode[json.RawMessage](t, w)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}

// memoryStorage stands in for the bucket. Keys count as uploaded once put.
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string]bool
	deleted []string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string]bool)}
}

func (s *memoryStorage) put(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = true
}

func (s *memoryStorage) PresignUpload(_ context.Context, key, contentType string) (*storage.PresignedUpload, error) {
	return &storage.PresignedUpload{
		URL:       "https://uploads.test/" + key,
		Method:    http.MethodPut,
		Headers:   map[string]string{"Content-Type": contentType},
		Key:       key,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

func (s *memoryStorage) PresignDownload(_ context.Context, key string) (string, time.Time, error) {
	return "https://uploads.test/" + key + "?signed=1", time.Now().Add(5 * time.Minute), nil
}

func (s *memoryStorage) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (s *memoryStorage) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key], nil
}

func (s *memoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

// testServer is a gin engine over an in-memory sqlite database with real
// repositories and JWT authentication.
type testServer struct {
	t         *testing.T
	db        *gorm.DB
	engine    *gin.Engine
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	storage   *memoryStorage
	log       *zap.Logger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(db))

	engine := gin.New()
	engine.Use(middleware.RequestID())
	return &testServer{
		t:      t,
		db:     db,
		engine: engine,
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "handler-test-secret-0123456789abcdef",
			RefreshSecret:          "handler-test-refresh-0123456789abcdef",
			AccessTokenExpiration:  time.Hour,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "zambezi-meats-test",
		}),
		blacklist: auth.NewInMemoryTokenBlacklist(),
		storage:   newMemoryStorage(),
		log:       zap.NewNop(),
	}
}

func (s *testServer) authenticate() gin.HandlerFunc {
	return middleware.JWTAuth(middleware.JWTConfig{JWTService: s.jwt, Blacklist: s.blacklist, Logger: s.log})
}

// group returns an authenticated group, optionally restricted to roles.
func (s *testServer) group(prefix string, roles ...string) *gin.RouterGroup {
	g := s.engine.Group(prefix, s.authenticate())
	if len(roles) > 0 {
		g.Use(middleware.RequireRole(roles...))
	}
	return g
}

func (s *testServer) token(u *identity.User) string {
	s.t.Helper()
	pair, err := s.jwt.IssuePair(auth.Subject{UserID: u.ID, Email: u.Email, Role: string(u.Role)})
	require.NoError(s.t, err)
	return pair.AccessToken
}

func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.AuthHeader, middleware.BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) seedUser(role identity.Role) *identity.User {
	s.t.Helper()
	u, err := identity.NewUser("Test "+string(role), string(role)+"-"+uuid.NewString()[:8]+"@zambezimeats.com.au", "password123", role)
	require.NoError(s.t, err)
	require.NoError(s.t, persistence.NewGormUserRepository(s.db).Create(context.Background(), u))
	return u
}

func (s *testServer) seedCategory(slug string) *catalog.Category {
	s.t.Helper()
	c, err := catalog.NewCategory("Category "+slug, slug)
	require.NoError(s.t, err)
	require.NoError(s.t, persistence.NewGormCategoryRepository(s.db).Save(context.Background(), c))
	return c
}

func (s *testServer) seedProduct(category *catalog.Category, slug string, price, stock int64) *catalog.Product {
	s.t.Helper()
	p, err := catalog.NewProduct(category.ID, "Product "+slug, slug, "SKU-"+slug, catalog.UnitEach, decimal.NewFromInt(price))
	require.NoError(s.t, err)
	p.StockQuantity = decimal.NewFromInt(stock)
	p.LowStockThreshold = decimal.NewFromInt(2)
	require.NoError(s.t, persistence.NewGormProductRepository(s.db).Save(context.Background(), p))
	return p
}
