package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/hitoshi/usuarios/internal/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	// maxRequestIDLength を超える受信IDは採用せず新規発行する。
	maxRequestIDLength = 128
)

// NewRequestIDMiddleware はリクエストIDをコンテキストとレスポンスヘッダーに設定するミドルウェアを返す。
// 受信したX-Request-IDがあればそれを引き継ぎ、なければUUIDを発行する。
func NewRequestIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" || len(id) > maxRequestIDLength {
				id = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
		})
	}
}
