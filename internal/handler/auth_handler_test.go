package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/hitoshi/usuarios/internal/middleware"
	"github.com/hitoshi/usuarios/internal/model"
	"github.com/hitoshi/usuarios/internal/tokenstore"
	"github.com/hitoshi/usuarios/internal/view"
)

// --- POST /api/login テスト ---

func TestAuthHandler_Login_AdminRedirectsToAdmin(t *testing.T) {
	tok := tokenFor("admin@example.com")
	backend := &mockBackend{
		loginFn: func(ctx context.Context, email, password string) (*model.LoginResponse, error) {
			if email != "admin@example.com" || password != "secreto" {
				t.Errorf("Login(%q, %q)", email, password)
			}
			return &model.LoginResponse{Token: tok}, nil
		},
		userByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 1, CorreoElectronico: email, TipoUsuario: model.RoleAdmin}, nil
		},
	}
	store := tokenstore.NewMemoryStore()
	router := newTestRouter(backend, store)

	w := serve(router, newAPIRequest(http.MethodPost, "/api/login",
		`{"correoElectronico":"admin@example.com","contrasena":"secreto"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body=%s)", w.Code, http.StatusOK, w.Body.String())
	}
	var body loginResponse
	decodeBody(t, w, &body)
	if body.Redirect != view.RouteAdmin {
		t.Errorf("redirect = %q, want %q", body.Redirect, view.RouteAdmin)
	}
	if body.User == nil || body.User.CorreoElectronico != "admin@example.com" {
		t.Errorf("user = %+v", body.User)
	}
	if got, ok := tokenIn(t, store); !ok || got != tok {
		t.Errorf("stored token = (%q, %v), want (%q, true)", got, ok, tok)
	}
}

func TestAuthHandler_Login_UserRedirectsToUsuario(t *testing.T) {
	backend := &mockBackend{
		loginFn: func(ctx context.Context, email, password string) (*model.LoginResponse, error) {
			return &model.LoginResponse{Token: tokenFor(email)}, nil
		},
	}
	router := newTestRouter(backend, tokenstore.NewMemoryStore())

	w := serve(router, newAPIRequest(http.MethodPost, "/api/login",
		`{"correoElectronico":"ana@example.com","contrasena":"x"}`))

	var body loginResponse
	decodeBody(t, w, &body)
	if body.Redirect != view.RouteUsuario {
		t.Errorf("redirect = %q, want %q", body.Redirect, view.RouteUsuario)
	}
	if backend.called("detalles") != 1 {
		t.Errorf("detalles calls = %d, want 1", backend.called("detalles"))
	}
}

func TestAuthHandler_Login_NoToken_ReturnsInvalidCredentials(t *testing.T) {
	backend := &mockBackend{
		loginFn: func(ctx context.Context, email, password string) (*model.LoginResponse, error) {
			return &model.LoginResponse{Error: "bad"}, nil
		},
	}
	store := tokenstore.NewMemoryStore()
	router := newTestRouter(backend, store)

	w := serve(router, newAPIRequest(http.MethodPost, "/api/login",
		`{"correoElectronico":"ana@example.com","contrasena":"x"}`))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	var body middleware.ErrorResponseBody
	decodeBody(t, w, &body)
	if body.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidCredentials)
	}
	if len(body.Alerts) != 1 || body.Alerts[0] != "Credenciales incorrectas" {
		t.Errorf("alerts = %v", body.Alerts)
	}
	if _, ok := tokenIn(t, store); ok {
		t.Error("nothing should be persisted on credential failure")
	}
	if backend.called("detalles") != 0 {
		t.Error("details must not be fetched without a token")
	}
}

func TestAuthHandler_Login_BackendError_ReturnsLoginFailed(t *testing.T) {
	backend := &mockBackend{
		loginFn: func(ctx context.Context, email, password string) (*model.LoginResponse, error) {
			return nil, errors.New("connection refused")
		},
	}
	router := newTestRouter(backend, tokenstore.NewMemoryStore())

	w := serve(router, newAPIRequest(http.MethodPost, "/api/login",
		`{"correoElectronico":"ana@example.com","contrasena":"x"}`))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
	var body middleware.ErrorResponseBody
	decodeBody(t, w, &body)
	if len(body.Alerts) != 1 || body.Alerts[0] != "Error al iniciar sesión" {
		t.Errorf("alerts = %v", body.Alerts)
	}
}

func TestAuthHandler_Login_MissingFields_MakesNoCall(t *testing.T) {
	backend := &mockBackend{}
	router := newTestRouter(backend, tokenstore.NewMemoryStore())

	w := serve(router, newAPIRequest(http.MethodPost, "/api/login", `{"correoElectronico":""}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if backend.called("login") != 0 {
		t.Error("login must not be called with missing fields")
	}
}

func TestAuthHandler_Login_InvalidJSON(t *testing.T) {
	router := newTestRouter(&mockBackend{}, tokenstore.NewMemoryStore())

	w := serve(router, newAPIRequest(http.MethodPost, "/api/login", `{`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// TestAuthHandler_Login_UndecodableToken_StaysLoggedIn はsubを取り出せない場合に
// トークンを保持したまま遷移しないことを検証する。
func TestAuthHandler_Login_UndecodableToken_StaysLoggedIn(t *testing.T) {
	backend := &mockBackend{
		loginFn: func(ctx context.Context, email, password string) (*model.LoginResponse, error) {
			return &model.LoginResponse{Token: "opaque"}, nil
		},
	}
	store := tokenstore.NewMemoryStore()
	router := newTestRouter(backend, store)

	w := serve(router, newAPIRequest(http.MethodPost, "/api/login",
		`{"correoElectronico":"ana@example.com","contrasena":"x"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body loginResponse
	decodeBody(t, w, &body)
	if body.Redirect != "" {
		t.Errorf("redirect = %q, want none", body.Redirect)
	}
	if _, ok := tokenIn(t, store); !ok {
		t.Error("token should remain persisted")
	}
}

func TestAuthHandler_Login_WithoutCSRF_Returns403(t *testing.T) {
	backend := &mockBackend{}
	router := newTestRouter(backend, tokenstore.NewMemoryStore())

	req := newAPIRequest(http.MethodPost, "/api/login", `{"correoElectronico":"a@b.com","contrasena":"x"}`)
	req.Header.Del("X-CSRF-Token")
	w := serve(router, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if backend.called("login") != 0 {
		t.Error("login must not be called when CSRF validation fails")
	}
}

// --- POST /api/logout テスト ---

func TestAuthHandler_Logout_ClearsSlot(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	store.Save(context.Background(), tokenFor("ana@example.com"))
	router := newTestRouter(&mockBackend{}, store)

	w := serve(router, newAPIRequest(http.MethodPost, "/api/logout", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var body viewResponse
	decodeBody(t, w, &body)
	if body.Redirect != view.RouteHome {
		t.Errorf("redirect = %q, want %q", body.Redirect, view.RouteHome)
	}
	if _, ok := tokenIn(t, store); ok {
		t.Error("token should be cleared")
	}
}

// --- GET /api/session テスト ---

func TestAuthHandler_Session_ReflectsGuardDecision(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	router := newTestRouter(&mockBackend{}, store)

	var body sessionResponse
	decodeBody(t, serve(router, newAPIRequest(http.MethodGet, "/api/session", "")), &body)
	if body.Allowed {
		t.Error("allowed should be false without a token")
	}

	store.Save(context.Background(), "anything")
	body = sessionResponse{}
	decodeBody(t, serve(router, newAPIRequest(http.MethodGet, "/api/session", "")), &body)
	if !body.Allowed {
		t.Error("allowed should be true with any token")
	}
}
