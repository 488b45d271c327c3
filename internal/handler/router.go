package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/usuarios/internal/metrics"
	"github.com/hitoshi/usuarios/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	// TrustProxyHeaders がtrueの場合のみX-Forwarded-For/X-Real-IPからクライアントIPを補正する。
	// 信頼できるリバースプロキシ配下でのみ有効にする。
	TrustProxyHeaders bool
	Session           middleware.SessionConfig
	CSRF              middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter

	// トークンスロットとバックエンド
	StoreFor middleware.StoreResolver
	Clients  ClientFactory

	// 運用
	Metrics       metrics.MetricsCollector
	Gatherer      prometheus.Gatherer
	HealthChecker HealthChecker
	Logger        *slog.Logger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	[RealIP] → RequestID → Logging → Metrics → Recovery → SecurityHeaders → CORS
//	  /api/*: BrowserSession → RateLimit(General) → CSRF（/api/csrf-token を除く）
//	  /api/admin/*: Guard
//
// /health と /metrics はセッションの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	recorder := deps.Metrics
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	r := chi.NewRouter()

	if deps.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(log))
	r.Use(middleware.NewMetricsMiddleware(recorder))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.StoreFor, deps.Clients, recorder, log)
	accountHandler := NewAccountHandler(deps.StoreFor, deps.Clients, log)
	profileHandler := NewProfileHandler(deps.StoreFor, deps.Clients, log)
	adminHandler := NewAdminHandler(deps.StoreFor, deps.Clients, log)

	// --- セッション不要のルート ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- ブラウザセッションが必要なルート ---
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewBrowserSessionMiddleware(deps.Session))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// CSRFトークンの発行エンドポイントはCSRF検証の対象外
		r.Get("/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRF).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.NewCSRFMiddleware(deps.CSRF))

			r.Get("/session", authHandler.Session)

			// POST /api/login - ログイン（ログイン専用レート制限を追加）
			if deps.RateLimiter != nil {
				r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
			} else {
				r.Post("/login", authHandler.Login)
			}
			r.Post("/logout", authHandler.Logout)

			r.Post("/registro", accountHandler.Register)
			r.Post("/recuperar", accountHandler.RequestRecovery)
			r.Put("/restablecer", accountHandler.ResetPassword)
			r.Put("/activar", accountHandler.Activate)

			r.Route("/usuario", func(r chi.Router) {
				r.Get("/", profileHandler.Profile)
				r.Get("/foto", profileHandler.Photo)
				r.Put("/foto", profileHandler.UploadPhoto)
			})

			// 管理者画面（ルートガード適用）
			r.Route("/admin/usuarios", func(r chi.Router) {
				r.Use(middleware.NewGuardMiddleware(deps.StoreFor, recorder))
				r.Get("/", adminHandler.ListUsers)
				r.Delete("/{id}", adminHandler.DeleteUser)
				r.Put("/{id}", adminHandler.UpdateUser)
			})
		})
	})

	return r
}
