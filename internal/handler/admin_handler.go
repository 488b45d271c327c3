package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/usuarios/internal/middleware"
	"github.com/hitoshi/usuarios/internal/model"
	"github.com/hitoshi/usuarios/internal/view"
)

// AdminHandler は管理者画面のHTTPハンドラー。ルートガードの内側に置く。
type AdminHandler struct {
	viewDeps
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(storeFor middleware.StoreResolver, clients ClientFactory, log *slog.Logger) *AdminHandler {
	return &AdminHandler{viewDeps: newViewDeps(storeFor, clients, log)}
}

type usersResponse struct {
	viewResponse
	Users []model.User `json:"users"`
}

type deleteResponse struct {
	usersResponse
	Deleted bool `json:"deleted"`
}

// ListUsers は利用者一覧を返す。取得に失敗した場合は空の一覧を返す。
// GET /api/admin/usuarios
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	env, out, clients := h.begin(r)
	admin := view.NewAdmin(env, clients.Directory, nil)
	defer admin.Dispose()

	admin.Load()
	if gone(r) {
		return
	}
	writeJSON(w, http.StatusOK, usersResponse{viewResponse: newViewResponse(out), Users: admin.Users()})
}

// DeleteUser は利用者を削除し、再取得した一覧を返す。
// confirm=true がない場合は何も送信せずdeleted=falseを返す。
// DELETE /api/admin/usuarios/{id}?confirm=true
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}

	env, out, clients := h.begin(r)
	confirmed := view.Confirmed(r.URL.Query().Get("confirm") == "true")
	admin := view.NewAdmin(env, clients.Directory, confirmed)
	defer admin.Dispose()

	deleted := admin.Delete(id)
	if gone(r) {
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{
		usersResponse: usersResponse{viewResponse: newViewResponse(out), Users: admin.Users()},
		Deleted:       deleted,
	})
}

// UpdateUser は編集済みのレコードを送信し、再取得した一覧を返す。
// PUT /api/admin/usuarios/{id}
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}
	var edited model.User
	if !decodeJSON(w, r, &edited) {
		return
	}
	edited.ID = id

	env, out, clients := h.begin(r)
	admin := view.NewAdmin(env, clients.Directory, nil)
	defer admin.Dispose()

	admin.SelectForEdit(edited)
	saved := admin.SaveEdit()
	if gone(r) {
		return
	}
	if !saved {
		writeViewError(w, out, admin.Err())
		return
	}
	writeJSON(w, http.StatusOK, usersResponse{viewResponse: newViewResponse(out), Users: admin.Users()})
}

// userIDParam はURLパスの利用者IDを取り出す。不正な場合は400を書き込む。
func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("id no válido"))
		return 0, false
	}
	return id, true
}
