package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/hitoshi/usuarios/internal/middleware"
	"github.com/hitoshi/usuarios/internal/tokenstore"
)

// newLimitedRouter はログイン試行を1分あたり2回に制限したルーターを返す。
func newLimitedRouter(t *testing.T, trustProxy bool) http.Handler {
	t.Helper()
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     1000,
		GeneralBurst:    1000,
		LoginRate:       1.0 / 60.0,
		LoginBurst:      2,
		CleanupInterval: time.Minute,
	})
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		TrustProxyHeaders: trustProxy,
		RateLimiter:       rl,
		StoreFor:          func(r *http.Request) tokenstore.Store { return tokenstore.NewMemoryStore() },
		Clients:           (&mockBackend{}).factory(),
	})
}

// loginFrom は同じ接続元からX-Forwarded-ForとX-Real-IPを変えながらログインを試行し、429の回数を返す。
func loginFrom(router http.Handler, attempts int) int {
	limited := 0
	for i := 0; i < attempts; i++ {
		req := newAPIRequest(http.MethodPost, "/api/login", `{"correoElectronico":"a@b.com","contrasena":"x"}`)
		req.RemoteAddr = "198.51.100.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("203.0.113.%d", i+1))
		if serve(router, req).Code == http.StatusTooManyRequests {
			limited++
		}
	}
	return limited
}

// TestRouter_LoginLimit_IgnoresForwardedHeadersByDefault は転送ヘッダーを偽装してもログイン制限を回避できないことを検証する。
func TestRouter_LoginLimit_IgnoresForwardedHeadersByDefault(t *testing.T) {
	router := newLimitedRouter(t, false)

	if got := loginFrom(router, 20); got != 18 {
		t.Errorf("limited attempts = %d, want 18", got)
	}
}

// TestRouter_LoginLimit_TrustedProxyUsesForwardedAddress は信頼するプロキシ配下では転送元IPごとに制限することを検証する。
func TestRouter_LoginLimit_TrustedProxyUsesForwardedAddress(t *testing.T) {
	router := newLimitedRouter(t, true)

	if got := loginFrom(router, 5); got != 0 {
		t.Errorf("limited attempts = %d, want 0", got)
	}
}
