package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/usuarios/internal/model"
)

// TestWriteErrorResponse_WritesUnifiedFormat は統一エラーフォーマットでレスポンスが書き込まれることを検証する。
func TestWriteErrorResponse_WritesUnifiedFormat(t *testing.T) {
	w := httptest.NewRecorder()

	apiErr := &model.APIError{
		Code:     "TEST_ERROR",
		Message:  "Error de prueba",
		Category: "validation",
		Action:   "Introduce un valor válido.",
	}

	WriteErrorResponse(w, http.StatusBadRequest, apiErr)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}

	if body.Code != "TEST_ERROR" {
		t.Errorf("code = %q, want %q", body.Code, "TEST_ERROR")
	}
	if body.Message != "Error de prueba" {
		t.Errorf("message = %q, want %q", body.Message, "Error de prueba")
	}
	if body.Category != "validation" {
		t.Errorf("category = %q, want %q", body.Category, "validation")
	}
	if body.Action != "Introduce un valor válido." {
		t.Errorf("action = %q, want %q", body.Action, "Introduce un valor válido.")
	}
}

// TestWriteErrorResponse_DomainErrors は各ドメインエラーのコードとカテゴリがそのまま書き込まれることを検証する。
func TestWriteErrorResponse_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		apiErr     *model.APIError
		category   string
	}{
		{"ガード拒否", http.StatusUnauthorized, model.NewUnauthorizedError(), "auth"},
		{"CSRF", http.StatusForbidden, model.NewCSRFError(), "auth"},
		{"パスワード不一致", http.StatusBadRequest, model.NewPasswordMismatchError(), "validation"},
		{"ユーザーなし", http.StatusNotFound, model.NewUserNotFoundError(), "user"},
		{"レート制限", http.StatusTooManyRequests, model.NewRateLimitedError(), "system"},
		{"バックエンド停止", http.StatusServiceUnavailable, model.NewBackendUnavailableError(), "system"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			WriteErrorResponse(w, tt.statusCode, tt.apiErr)

			if w.Code != tt.statusCode {
				t.Errorf("status = %d, want %d", w.Code, tt.statusCode)
			}
			var body ErrorResponseBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if body.Code != tt.apiErr.Code {
				t.Errorf("code = %q, want %q", body.Code, tt.apiErr.Code)
			}
			if body.Category != tt.category {
				t.Errorf("category = %q, want %q", body.Category, tt.category)
			}
			if body.Message != tt.apiErr.Message {
				t.Errorf("message = %q, want %q", body.Message, tt.apiErr.Message)
			}
		})
	}
}

// TestInternalServerError_ReturnsSystemError は内部エラーが統一フォーマットで返ることを検証する。
func TestInternalServerError_ReturnsSystemError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteInternalServerError(w)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want %q", body.Code, "INTERNAL_ERROR")
	}
	if body.Category != "system" {
		t.Errorf("category = %q, want %q", body.Category, "system")
	}
	if body.Action == "" {
		t.Error("action should not be empty")
	}
}

// TestWriteErrorResponseWithAlerts_IncludesAlerts は通知がレスポンスに含まれることを検証する。
func TestWriteErrorResponseWithAlerts_IncludesAlerts(t *testing.T) {
	w := httptest.NewRecorder()

	WriteErrorResponseWithAlerts(w, http.StatusUnauthorized, model.NewInvalidCredentialsError(), []string{"Credenciales incorrectas"})

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidCredentials)
	}
	if len(body.Alerts) != 1 || body.Alerts[0] != "Credenciales incorrectas" {
		t.Errorf("alerts = %v", body.Alerts)
	}
}

// TestWriteErrorResponse_OmitsEmptyAlerts は通知がない場合にalertsを出力しないことを検証する。
func TestWriteErrorResponse_OmitsEmptyAlerts(t *testing.T) {
	w := httptest.NewRecorder()

	WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())

	var raw map[string]interface{}
	if err := json.NewDecoder(w.Result().Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if _, ok := raw["alerts"]; ok {
		t.Error("alerts should be omitted when empty")
	}
}
