package handler

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/usuarios/internal/guard"
	"github.com/hitoshi/usuarios/internal/middleware"
	"github.com/hitoshi/usuarios/internal/model"
	"github.com/hitoshi/usuarios/internal/view"
)

// AuthRecorder はログイン結果とガード判定を記録する。
type AuthRecorder interface {
	view.LoginRecorder
	middleware.GuardRecorder
}

// AuthHandler はログイン・ログアウト・セッション判定のHTTPハンドラー。
type AuthHandler struct {
	viewDeps
	recorder AuthRecorder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(storeFor middleware.StoreResolver, clients ClientFactory, recorder AuthRecorder, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		viewDeps: newViewDeps(storeFor, clients, log),
		recorder: recorder,
	}
}

// loginResponse はログイン成功時のレスポンス。
type loginResponse struct {
	viewResponse
	User *model.User `json:"user,omitempty"`
}

// Login はメールアドレスとパスワードでログインする。
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	env, out, clients := h.begin(r)
	login := view.NewLogin(env, clients.Auth, h.recorder)
	defer login.Dispose()

	login.Email = req.CorreoElectronico
	login.Password = req.Contrasena

	state := login.Submit()
	if gone(r) {
		return
	}
	if state != view.LoginSuccess {
		writeViewError(w, out, login.Err())
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		viewResponse: newViewResponse(out),
		User:         login.User(),
	})
}

// Logout はトークンスロットを空にする。
// POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	env, out, clients := h.begin(r)
	profile := view.NewProfile(env, clients.Auth, nil)
	defer profile.Dispose()

	if err := profile.Logout(); err != nil {
		middleware.WriteInternalServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, newViewResponse(out))
}

// sessionResponse はルートガードの判定結果。
type sessionResponse struct {
	Allowed bool `json:"allowed"`
}

// Session はSPAのルーター向けにガードの判定を返す。
// GET /api/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	decision := guard.Evaluate(r.Context(), h.storeFor(r))
	if h.recorder != nil {
		h.recorder.RecordGuardDecision(decision == guard.Allow)
	}
	writeJSON(w, http.StatusOK, sessionResponse{Allowed: decision == guard.Allow})
}
