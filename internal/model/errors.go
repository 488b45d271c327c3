// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, user, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeLoginFailed        = "LOGIN_FAILED"
	ErrCodePasswordMismatch   = "PASSWORD_MISMATCH"
	ErrCodeRegistrationFailed = "REGISTRATION_FAILED"
	ErrCodeUpdateFailed       = "UPDATE_FAILED"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeRecoveryFailed     = "RECOVERY_FAILED"
	ErrCodeActivationFailed   = "ACTIVATION_FAILED"
	ErrCodeCSRFInvalid        = "CSRF_INVALID"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewInvalidCredentialsError はトークンを含まないログイン応答のエラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Credenciales incorrectas",
		Category: "auth",
		Action:   "Revisa el correo electrónico y la contraseña.",
	}
}

// NewLoginFailedError はログイン呼び出し自体が失敗した場合のエラーを生成する。
func NewLoginFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeLoginFailed,
		Message:  "Error al iniciar sesión",
		Category: "auth",
		Action:   "Inténtalo de nuevo más tarde.",
	}
}

// NewPasswordMismatchError は2つのパスワード入力が一致しない場合のエラーを生成する。
func NewPasswordMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodePasswordMismatch,
		Message:  "Las contraseñas no coinciden",
		Category: "validation",
		Action:   "Escribe la misma contraseña en ambos campos.",
	}
}

// NewRegistrationFailedError は登録失敗エラーを生成する。
func NewRegistrationFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeRegistrationFailed,
		Message:  "Error al registrar usuario",
		Category: "user",
		Action:   "Revisa los datos e inténtalo de nuevo.",
	}
}

// NewUpdateFailedError は更新失敗エラーを生成する。
func NewUpdateFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeUpdateFailed,
		Message:  "Error al actualizar usuario",
		Category: "user",
		Action:   "Revisa los datos e inténtalo de nuevo.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "Usuario no encontrado",
		Category: "user",
		Action:   "Comprueba el identificador del usuario.",
	}
}

// NewBackendUnavailableError はバックエンドAPIに到達できない場合のエラーを生成する。
func NewBackendUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeBackendUnavailable,
		Message:  "El servicio de usuarios no está disponible",
		Category: "system",
		Action:   "Inténtalo de nuevo más tarde.",
	}
}

// NewUnauthorizedError はルートガードが遷移を拒否した場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Es necesario iniciar sesión",
		Category: "auth",
		Action:   "Inicia sesión para continuar.",
	}
}

// NewInvalidRequestError はリクエスト形式が不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("Solicitud no válida: %s", reason),
		Category: "validation",
		Action:   "Revisa los datos enviados.",
	}
}

// NewInvalidTokenError は保存済みトークンを解釈できない場合のエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "La sesión no es válida",
		Category: "auth",
		Action:   "Inicia sesión de nuevo.",
	}
}

// NewRecoveryFailedError はパスワード再設定の失敗エラーを生成する。
func NewRecoveryFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeRecoveryFailed,
		Message:  "Token inválido o expirado",
		Category: "auth",
		Action:   "Solicita un nuevo enlace de recuperación.",
	}
}

// NewActivationFailedError はアカウント有効化の失敗エラーを生成する。
func NewActivationFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeActivationFailed,
		Message:  "No se pudo activar la cuenta",
		Category: "auth",
		Action:   "Comprueba el enlace de activación o solicita uno nuevo.",
	}
}

// NewCSRFError はCSRFトークンの検証に失敗した場合のエラーを生成する。
func NewCSRFError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFInvalid,
		Message:  "La validación CSRF ha fallado",
		Category: "auth",
		Action:   "Recarga la página e inténtalo de nuevo.",
	}
}

// NewRateLimitedError はレート制限を超えた場合のエラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Demasiadas solicitudes",
		Category: "system",
		Action:   "Espera unos segundos y vuelve a intentarlo.",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Se ha producido un error interno",
		Category: "system",
		Action:   "Inténtalo de nuevo más tarde.",
	}
}
