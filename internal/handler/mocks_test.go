package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hitoshi/usuarios/internal/model"
	"github.com/hitoshi/usuarios/internal/tokenstore"
)

// --- モック定義 ---

// mockBackend はバックエンドAPIのモック。全クライアントのインターフェースを実装する。
// トークンの保存はリクエストごとに渡されるトークンスロットに委譲する。
type mockBackend struct {
	mu sync.Mutex

	loginFn       func(ctx context.Context, email, password string) (*model.LoginResponse, error)
	userByEmailFn func(ctx context.Context, email string) (*model.User, error)
	registerFn    func(ctx context.Context, u model.User) (*model.User, error)
	listFn        func(ctx context.Context) ([]model.User, error)
	deleteFn      func(ctx context.Context, id int64) (string, error)
	updateFn      func(ctx context.Context, u model.User) (string, error)
	photoFn       func(ctx context.Context, id int64) ([]byte, string, error)
	uploadPhotoFn func(ctx context.Context, id int64, data []byte) (string, error)
	activateFn    func(ctx context.Context, token string) (string, error)
	recoveryFn    func(ctx context.Context, email string) (string, error)
	resetFn       func(ctx context.Context, token, password string) (string, error)

	calls []string
}

func (m *mockBackend) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockBackend) called(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == call {
			n++
		}
	}
	return n
}

// factory はmockBackendを使うClientFactoryを返す。
func (m *mockBackend) factory() ClientFactory {
	return func(store tokenstore.Store) Clients {
		auth := &mockAuth{backend: m, store: store}
		return Clients{Auth: auth, Directory: m, Photos: m, Accounts: m}
	}
}

// mockAuth はトークンスロットに束縛されたAuthServiceのモック。
type mockAuth struct {
	backend *mockBackend
	store   tokenstore.Store
}

func (a *mockAuth) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	a.backend.record("login")
	if a.backend.loginFn != nil {
		return a.backend.loginFn(ctx, email, password)
	}
	return &model.LoginResponse{}, nil
}

func (a *mockAuth) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	a.backend.record("detalles")
	if a.backend.userByEmailFn != nil {
		return a.backend.userByEmailFn(ctx, email)
	}
	return &model.User{ID: 1, CorreoElectronico: email, TipoUsuario: model.RoleUser}, nil
}

func (a *mockAuth) SaveToken(ctx context.Context, token string) error { return a.store.Save(ctx, token) }
func (a *mockAuth) Token(ctx context.Context) (string, bool, error)   { return a.store.Read(ctx) }
func (a *mockAuth) Logout(ctx context.Context) error                  { return a.store.Clear(ctx) }

func (m *mockBackend) Register(ctx context.Context, u model.User) (*model.User, error) {
	m.record("register")
	if m.registerFn != nil {
		return m.registerFn(ctx, u)
	}
	return &u, nil
}

func (m *mockBackend) List(ctx context.Context) ([]model.User, error) {
	m.record("list")
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.User{}, nil
}

func (m *mockBackend) Delete(ctx context.Context, id int64) (string, error) {
	m.record("delete")
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return "Usuario eliminado", nil
}

func (m *mockBackend) Update(ctx context.Context, u model.User) (string, error) {
	m.record("update")
	if m.updateFn != nil {
		return m.updateFn(ctx, u)
	}
	return "Usuario actualizado", nil
}

func (m *mockBackend) Photo(ctx context.Context, id int64) ([]byte, string, error) {
	m.record("photo")
	if m.photoFn != nil {
		return m.photoFn(ctx, id)
	}
	return []byte{0xff, 0xd8}, "image/jpeg", nil
}

func (m *mockBackend) UploadPhoto(ctx context.Context, id int64, data []byte) (string, error) {
	m.record("uploadPhoto")
	if m.uploadPhotoFn != nil {
		return m.uploadPhotoFn(ctx, id, data)
	}
	return "Foto subida", nil
}

func (m *mockBackend) ActivateAccount(ctx context.Context, token string) (string, error) {
	m.record("activate")
	if m.activateFn != nil {
		return m.activateFn(ctx, token)
	}
	return "Cuenta activada", nil
}

func (m *mockBackend) RequestRecovery(ctx context.Context, email string) (string, error) {
	m.record("recovery")
	if m.recoveryFn != nil {
		return m.recoveryFn(ctx, email)
	}
	return "Correo enviado", nil
}

func (m *mockBackend) ResetPassword(ctx context.Context, token, password string) (string, error) {
	m.record("reset")
	if m.resetFn != nil {
		return m.resetFn(ctx, token, password)
	}
	return "Contraseña actualizada", nil
}

// --- テストヘルパー ---

const testCSRFToken = "test-csrf-token"

// newTestRouter は単一のトークンスロットを共有するルーターを返す。
func newTestRouter(backend *mockBackend, store tokenstore.Store) http.Handler {
	return NewRouter(&RouterDeps{
		StoreFor: func(r *http.Request) tokenstore.Store { return store },
		Clients:  backend.factory(),
	})
}

// newAPIRequest はCSRFトークン付きのリクエストを生成する。
func newAPIRequest(method, path, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: testCSRFToken})
	req.Header.Set("X-CSRF-Token", testCSRFToken)
	return req
}

// serve はリクエストを処理してレスポンスを返す。
func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// tokenFor はsubにemailを持つトークンを生成する。署名は検証されない。
func tokenFor(email string) string {
	payload, _ := json.Marshal(map[string]string{"sub": email})
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

// decodeBody はレスポンスボディをデコードする。
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v (body=%q)", err, w.Body.String())
	}
}

// tokenIn はトークンスロットの内容を返す。
func tokenIn(t *testing.T, store tokenstore.Store) (string, bool) {
	t.Helper()
	tok, ok, err := store.Read(context.Background())
	if err != nil {
		t.Fatalf("store.Read error: %v", err)
	}
	return tok, ok
}
