// Package handler はHTTPハンドラーを提供する。
// 画面コンポーネントをリクエストごとに生成し、通知と遷移先をJSONで返す。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/usuarios/internal/apiclient"
	"github.com/hitoshi/usuarios/internal/middleware"
	"github.com/hitoshi/usuarios/internal/model"
	"github.com/hitoshi/usuarios/internal/view"
)

// maxJSONBodyBytes はJSONリクエストボディの上限。
const maxJSONBodyBytes = 64 << 10

// viewResponse は画面コンポーネントの結果。SPAが通知と遷移に使う。
type viewResponse struct {
	Alerts   []string `json:"alerts"`
	Redirect string   `json:"redirect,omitempty"`
}

func newViewResponse(out *view.Outcome) viewResponse {
	alerts := out.Alerts()
	if alerts == nil {
		alerts = []string{}
	}
	return viewResponse{Alerts: alerts, Redirect: out.Redirect()}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// decodeJSON はリクエストボディをデコードする。失敗時は400を書き込みfalseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("JSON no válido"))
		return false
	}
	return true
}

// writeViewError はコンポーネントの失敗を統一エラーフォーマットで書き込む。
// 発生した通知もあわせて返す。
func writeViewError(w http.ResponseWriter, out *view.Outcome, apiErr *model.APIError) {
	if apiErr == nil {
		apiErr = model.NewInternalError()
	}
	middleware.WriteErrorResponseWithAlerts(w, mapAPIErrorToHTTPStatus(apiErr), apiErr, out.Alerts())
}

// handleServiceError はバックエンド呼び出しのエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}
	if apiclient.IsNotFound(err) {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError())
		return
	}
	var statusErr *apiclient.StatusError
	if errors.As(err, &statusErr) {
		slog.Warn("backend rejected request",
			slog.String("operation", statusErr.Operation),
			slog.Int("status", statusErr.StatusCode),
		)
		middleware.WriteErrorResponse(w, http.StatusBadGateway, model.NewBackendUnavailableError())
		return
	}

	slog.Error("backend call failed", slog.String("error", err.Error()))
	middleware.WriteErrorResponse(w, http.StatusServiceUnavailable, model.NewBackendUnavailableError())
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorized, model.ErrCodeInvalidToken:
		return http.StatusUnauthorized
	case model.ErrCodeInvalidRequest, model.ErrCodePasswordMismatch,
		model.ErrCodeRecoveryFailed, model.ErrCodeActivationFailed:
		return http.StatusBadRequest
	case model.ErrCodeRegistrationFailed, model.ErrCodeUpdateFailed:
		return http.StatusUnprocessableEntity
	case model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeLoginFailed:
		return http.StatusBadGateway
	case model.ErrCodeBackendUnavailable:
		return http.StatusServiceUnavailable
	case model.ErrCodeCSRFInvalid:
		return http.StatusForbidden
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
