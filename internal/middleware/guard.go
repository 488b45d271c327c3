package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/usuarios/internal/guard"
	"github.com/hitoshi/usuarios/internal/model"
	"github.com/hitoshi/usuarios/internal/tokenstore"
)

// StoreResolver はリクエストに対応するトークンストアを返す。
type StoreResolver func(r *http.Request) tokenstore.Store

// NewSessionStoreResolver はブラウザセッションごとのトークンスロットを返すStoreResolverを生成する。
// ブラウザセッションミドルウェアの内側で使う。セッションIDがない場合は常に空のスロットになる。
func NewSessionStoreResolver(repo tokenstore.SlotRepository, maxAge time.Duration) StoreResolver {
	return func(r *http.Request) tokenstore.Store {
		sessionID, _ := SessionIDFromContext(r.Context())
		return tokenstore.NewSessionStore(repo, sessionID, maxAge)
	}
}

// GuardRecorder はルートガードの判定を記録する。metrics.MetricsCollectorの部分集合。
type GuardRecorder interface {
	RecordGuardDecision(allowed bool)
}

// NewGuardMiddleware は保護されたルートへの遷移をトークンの有無で判定するミドルウェアを返す。
// DENYの場合は401を返して遷移を中止する。リダイレクト先は返さない。
func NewGuardMiddleware(storeFor StoreResolver, recorder GuardRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := guard.Evaluate(r.Context(), storeFor(r))
			if recorder != nil {
				recorder.RecordGuardDecision(decision == guard.Allow)
			}

			if decision != guard.Allow {
				slog.Warn("route guard denied navigation",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
