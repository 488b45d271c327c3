package handler

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/usuarios/internal/middleware"
	"github.com/hitoshi/usuarios/internal/view"
)

// AccountHandler は登録・アカウント有効化・パスワード再設定のHTTPハンドラー。
// いずれもログイン前に使う。
type AccountHandler struct {
	viewDeps
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(storeFor middleware.StoreResolver, clients ClientFactory, log *slog.Logger) *AccountHandler {
	return &AccountHandler{viewDeps: newViewDeps(storeFor, clients, log)}
}

// Register は利用者を登録する。
// POST /api/registro
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var form view.RegistrationForm
	if !decodeJSON(w, r, &form) {
		return
	}

	env, out, clients := h.begin(r)
	reg := view.NewRegistration(env, clients.Directory)
	defer reg.Dispose()
	reg.Form = form

	ok := reg.Submit()
	if gone(r) {
		return
	}
	if !ok {
		writeViewError(w, out, reg.Err())
		return
	}
	writeJSON(w, http.StatusCreated, newViewResponse(out))
}

type recoveryRequest struct {
	CorreoElectronico string `json:"correoElectronico"`
}

// RequestRecovery はパスワード再設定メールの送信を依頼する。
// POST /api/recuperar
func (h *AccountHandler) RequestRecovery(w http.ResponseWriter, r *http.Request) {
	var req recoveryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	env, out, clients := h.begin(r)
	rec := view.NewRecovery(env, clients.Accounts)
	defer rec.Dispose()

	ok := rec.Request(req.CorreoElectronico)
	if gone(r) {
		return
	}
	if !ok {
		writeViewError(w, out, rec.Err())
		return
	}
	writeJSON(w, http.StatusOK, newViewResponse(out))
}

type resetRequest struct {
	TokenRecuperacion string `json:"tokenRecuperacion"`
	NuevaContrasenia  string `json:"nuevaContrasenia"`
	NuevaContrasenia2 string `json:"nuevaContrasenia2"`
}

// ResetPassword は再設定用トークンで新しいパスワードを設定する。
// PUT /api/restablecer
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	env, out, clients := h.begin(r)
	rec := view.NewRecovery(env, clients.Accounts)
	defer rec.Dispose()

	ok := rec.Reset(req.TokenRecuperacion, req.NuevaContrasenia, req.NuevaContrasenia2)
	if gone(r) {
		return
	}
	if !ok {
		writeViewError(w, out, rec.Err())
		return
	}
	writeJSON(w, http.StatusOK, newViewResponse(out))
}

// Activate はメールで届いたトークンでアカウントを有効にする。
// PUT /api/activar?token=xxx
func (h *AccountHandler) Activate(w http.ResponseWriter, r *http.Request) {
	env, out, clients := h.begin(r)
	act := view.NewActivation(env, clients.Accounts)
	defer act.Dispose()

	ok := act.Activate(r.URL.Query().Get("token"))
	if gone(r) {
		return
	}
	if !ok {
		writeViewError(w, out, act.Err())
		return
	}
	writeJSON(w, http.StatusOK, newViewResponse(out))
}
