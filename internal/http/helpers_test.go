package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"memory-assistant/internal/catalog"
	"memory-assistant/internal/domain"
	"memory-assistant/internal/metrics"
	"memory-assistant/internal/repository"
	"memory-assistant/internal/service"
)

const testJWTSecret = "test-secret"

type testServer struct {
	router   *gin.Engine
	store    *repository.LocalStore
	jwt      *service.JWTService
	users    *service.UserService
	registry *prometheus.Registry
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]domain.Question{
		{ID: "ch-001", Category: "childhood", Prompt: "What is your earliest memory?", Order: 1, IsActive: true},
		{ID: "ch-002", Category: "childhood", Prompt: "Who was your best friend?", Order: 2, IsActive: true},
		{ID: "ca-001", Category: "career", Prompt: "What was your first job?", Order: 3, IsActive: true},
		{ID: "old-001", Category: "career", Prompt: "Retired prompt", Order: 4, IsActive: false},
	}, catalog.WithRandom(func(int) int { return 0 }))
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func newTestServer(t *testing.T, limiter *RateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	store := repository.NewLocalStore()
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	jwtSvc := service.NewJWTServiceWithStore(testJWTSecret, 15*time.Minute, time.Hour, service.NewMemoryRefreshTokenStore())
	userSvc := service.NewUserService(logger, store.Users(), service.NewLoginRateLimiter(time.Minute, 3))
	interviewSvc := service.NewInterviewService(logger, store.Sessions(), store.Memories(), store.Answered(), collector)
	cat := testCatalog(t)

	router := NewRouter(logger,
		RouterOptions{
			JWT:            jwtSvc,
			Recorder:       collector,
			Gatherer:       registry,
			AnswerLimiter:  limiter,
			RequestTimeout: 5 * time.Second,
		},
		NewUserHandler(logger, userSvc, jwtSvc),
		NewQuestionHandler(logger, cat),
		NewInterviewHandler(logger, interviewSvc, cat),
		NewHealthHandler(logger, store),
	)
	return &testServer{router: router, store: store, jwt: jwtSvc, users: userSvc, registry: registry}
}

// login registra un usuario y devuelve su access token.
func (s *testServer) login(t *testing.T, email string) (domain.User, string) {
	t.Helper()
	user, err := s.users.Register(context.Background(), service.RegisterInput{Email: email, Password: "password123"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	pair, err := s.jwt.GeneratePair(user)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	return user, pair.AccessToken
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	return performAuthRequest(r, method, path, "", body)
}

func performAuthRequest(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}
