package authapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/MianAhsan577/waapi-server/internal/domain/auth"
	"github.com/MianAhsan577/waapi-server/internal/domain/store"
	platformtesting "github.com/MianAhsan577/waapi-server/internal/platform/testing"
	httptransport "github.com/MianAhsan577/waapi-server/internal/transport/http"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemory(store.Config{})
	t.Cleanup(func() {
		_ = st.Close(context.Background())
	})

	authSvc, err := auth.NewService(auth.Options{
		Store:  st,
		Tokens: auth.NewTokenIssuer("test-secret"),
		Hasher: auth.NewPasswordHasher(4),
		Logger: platformtesting.SetupTestLogger(t),
	})
	if err != nil {
		t.Fatalf("auth.NewService returned error: %v", err)
	}

	svc, err := NewService(authSvc, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	engine := gin.New()
	middleware := httptransport.NewAuthMiddleware(authSvc)
	if err := svc.Register(context.Background(), engine.Group("/auth"), middleware); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return engine
}

func postJSON(t *testing.T, engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRegisterLoginVerifyFlow(t *testing.T) {
	engine := newTestRouter(t)

	rec := postJSON(t, engine, "/auth/register",
		`{"email":"owner@example.com","password":"hunter22","name":"Owner"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var registered struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &registered); err != nil {
		t.Fatalf("invalid register response: %v", err)
	}
	if registered.Token == "" || registered.User.Role != auth.RoleAdmin {
		t.Fatalf("unexpected register payload: %s", rec.Body.String())
	}

	rec = postJSON(t, engine, "/auth/login",
		`{"email":"owner@example.com","password":"hunter22"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var loggedIn struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &loggedIn); err != nil {
		t.Fatalf("invalid login response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+loggedIn.Token)
	verifyRec := httptest.NewRecorder()
	engine.ServeHTTP(verifyRec, req)
	if verifyRec.Code != http.StatusOK {
		t.Fatalf("expected 200 from verify, got %d: %s", verifyRec.Code, verifyRec.Body.String())
	}
	if !strings.Contains(verifyRec.Body.String(), "owner@example.com") {
		t.Fatalf("expected verified identity in response: %s", verifyRec.Body.String())
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	engine := newTestRouter(t)

	rec := postJSON(t, engine, "/auth/login",
		`{"email":"nobody@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	engine := newTestRouter(t)

	body := `{"email":"owner@example.com","password":"hunter22","name":"Owner"}`
	if rec := postJSON(t, engine, "/auth/register", body); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec := postJSON(t, engine, "/auth/register", body); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate, got %d", rec.Code)
	}
}

func TestVerifyRejectsMissingAndGarbageTokens(t *testing.T) {
	engine := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
	}
}
