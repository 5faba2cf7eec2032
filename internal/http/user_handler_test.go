package http

import (
	"net/http"
	"testing"
)

type tokensResponse struct {
	Tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	} `json:"tokens"`
}

func TestUserHandlerCreateUser_Success(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := performRequest(srv.router, http.MethodPost, "/users", map[string]string{
		"email":        "ana@example.com",
		"display_name": "Ana",
		"password":     "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		User map[string]any `json:"user"`
	}
	decodeBody(t, rec, &body)
	if body.User["email"] != "ana@example.com" {
		t.Fatalf("unexpected user: %+v", body.User)
	}
	if _, leaked := body.User["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
}

func TestUserHandlerCreateUser_InvalidRequest(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := performRequest(srv.router, http.MethodPost, "/users", map[string]string{
		"email": "not-an-email",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	rec = performRequest(srv.router, http.MethodPost, "/users", map[string]string{
		"email":    "ana@example.com",
		"password": "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for weak password, got %d", rec.Code)
	}
}

func TestUserHandlerCreateUser_DuplicateEmail(t *testing.T) {
	srv := newTestServer(t, nil)
	body := map[string]string{"email": "ana@example.com", "password": "password123"}

	if rec := performRequest(srv.router, http.MethodPost, "/users", body); rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	if rec := performRequest(srv.router, http.MethodPost, "/users", body); rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestUserHandlerLoginRefreshLogout(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.login(t, "ana@example.com")

	rec := performRequest(srv.router, http.MethodPost, "/auth/login", map[string]string{
		"email":    "ana@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var login tokensResponse
	decodeBody(t, rec, &login)
	if login.Tokens.AccessToken == "" || login.Tokens.RefreshToken == "" {
		t.Fatalf("expected token pair")
	}

	rec = performRequest(srv.router, http.MethodPost, "/auth/refresh", map[string]string{
		"refresh_token": login.Tokens.RefreshToken,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected refresh 200, got %d", rec.Code)
	}
	var refreshed tokensResponse
	decodeBody(t, rec, &refreshed)

	rec = performRequest(srv.router, http.MethodPost, "/auth/logout", map[string]string{
		"refresh_token": refreshed.Tokens.RefreshToken,
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected logout 204, got %d", rec.Code)
	}

	rec = performRequest(srv.router, http.MethodPost, "/auth/refresh", map[string]string{
		"refresh_token": refreshed.Tokens.RefreshToken,
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked refresh 401, got %d", rec.Code)
	}
}

func TestUserHandlerLogin_InvalidCredentialsAndRateLimit(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.login(t, "ana@example.com")
	bad := map[string]string{"email": "ana@example.com", "password": "wrong-password"}

	// El limiter del servidor de prueba permite 3 intentos por minuto.
	for i := 0; i < 3; i++ {
		if rec := performRequest(srv.router, http.MethodPost, "/auth/login", bad); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
		}
	}
	if rec := performRequest(srv.router, http.MethodPost, "/auth/login", bad); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", rec.Code)
	}
}
