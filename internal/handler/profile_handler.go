package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hitoshi/usuarios/internal/apiclient"
	"github.com/hitoshi/usuarios/internal/middleware"
	"github.com/hitoshi/usuarios/internal/model"
	"github.com/hitoshi/usuarios/internal/view"
)

// ProfileHandler はログイン中の利用者の画面のHTTPハンドラー。
type ProfileHandler struct {
	viewDeps
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(storeFor middleware.StoreResolver, clients ClientFactory, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{viewDeps: newViewDeps(storeFor, clients, log)}
}

type profileResponse struct {
	viewResponse
	User *model.User `json:"user"`
}

// Profile はログイン中の利用者の詳細を返す。
// トークンがない場合はuserをnullで返す。
// GET /api/usuario
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	env, out, clients := h.begin(r)
	profile := view.NewProfile(env, clients.Auth, clients.Photos)
	defer profile.Dispose()

	user := profile.Load()
	if gone(r) {
		return
	}
	if user == nil && profile.Err() != nil {
		writeViewError(w, out, profile.Err())
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{viewResponse: newViewResponse(out), User: user})
}

// Photo はログイン中の利用者のプロフィール写真を返す。
// GET /api/usuario/foto
func (h *ProfileHandler) Photo(w http.ResponseWriter, r *http.Request) {
	env, out, clients := h.begin(r)
	profile := view.NewProfile(env, clients.Auth, clients.Photos)
	defer profile.Dispose()

	data, contentType, err := profile.Photo()
	if gone(r) || errors.Is(err, view.ErrDisposed) {
		return
	}
	if errors.Is(err, view.ErrNoUser) {
		writeViewError(w, out, profile.Err())
		return
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// UploadPhoto はログイン中の利用者のプロフィール写真を更新する。
// ボディは画像のバイト列そのもの。
// PUT /api/usuario/foto
func (h *ProfileHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, apiclient.MaxPhotoBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteErrorResponse(w, http.StatusRequestEntityTooLarge, model.NewInvalidRequestError("la foto supera el tamaño máximo"))
			return
		}
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("no se pudo leer la foto"))
		return
	}
	if len(data) == 0 {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("la foto está vacía"))
		return
	}

	env, out, clients := h.begin(r)
	profile := view.NewProfile(env, clients.Auth, clients.Photos)
	defer profile.Dispose()

	ok := profile.UploadPhoto(data)
	if gone(r) {
		return
	}
	if !ok {
		writeViewError(w, out, profile.Err())
		return
	}
	writeJSON(w, http.StatusOK, newViewResponse(out))
}
