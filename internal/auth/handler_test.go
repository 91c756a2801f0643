package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/starlink-stock/stockpro/internal/auth"
	"github.com/starlink-stock/stockpro/internal/shared"
	_ "github.com/starlink-stock/stockpro/testing"
)

func newAuthRouter(t *testing.T) (http.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	service, err := auth.NewServiceFromPassword("admin@starlink.com", "admin123")
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	handler := auth.NewHandler(nil, service, sessionManager, csrfManager)
	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r, sessionManager
}

func doLogin(t *testing.T, router http.Handler, sessions *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sessions.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res, sess
}

func TestLoginSuccessSetsSessionUser(t *testing.T) {
	router, sessions := newAuthRouter(t)
	res, sess := doLogin(t, router, sessions, `{"email":"admin@starlink.com","password":"admin123"}`)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if sess.User() != "admin@starlink.com" {
		t.Fatalf("expected session user set, got %q", sess.User())
	}
	var resp struct {
		Authenticated bool   `json:"authenticated"`
		CSRFToken     string `json:"csrfToken"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Authenticated || resp.CSRFToken == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router, sessions := newAuthRouter(t)
	res, sess := doLogin(t, router, sessions, `{"email":"admin@starlink.com","password":"wrongpass"}`)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if sess.User() != "" {
		t.Fatalf("session user must stay empty on failure")
	}
}

func TestLoginValidation(t *testing.T) {
	router, sessions := newAuthRouter(t)
	res, _ := doLogin(t, router, sessions, `{"email":"not-an-email","password":"x"}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestSessionEndpointPrimesCSRFToken(t *testing.T) {
	router, sessions := newAuthRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	sess, err := sessions.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if sess.Get(shared.CSRFSessionKey) == "" {
		t.Fatalf("csrf token not stored in session")
	}
}

func TestRequireUserGuardsAPI(t *testing.T) {
	guarded := auth.RequireUser(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	res := httptest.NewRecorder()
	guarded.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", res.Code)
	}

	sess := &shared.Session{}
	sess.SetUser("admin@starlink.com")
	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res = httptest.NewRecorder()
	guarded.ServeHTTP(res, req)
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204 with session, got %d", res.Code)
	}
}
