// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// APIクライアント、ルートガード、HTTPミドルウェア、ワーカーから利用する。
type MetricsCollector interface {
	RecordBackendCall(operation string, statusCode int, duration time.Duration)
	RecordBackendFailure(operation string)
	RecordLogin(result string)
	RecordGuardDecision(allowed bool)
	RecordHTTPStatus(statusCode int)
	RecordSessionsExpired(count int)
}

// ログイン結果のラベル値
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginError              = "error"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	backendCalls    *prometheus.CounterVec
	backendFail     *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	logins          *prometheus.CounterVec
	guardDecisions  *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	sessionsExpired prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "usuarios_backend_calls_total",
			Help: "バックエンドAPI呼び出しの操作別・ステータス別の合計数",
		}, []string{"operation", "status_code"}),
		backendFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "usuarios_backend_failures_total",
			Help: "応答を得られなかったバックエンドAPI呼び出しの合計数",
		}, []string{"operation"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "usuarios_backend_latency_seconds",
			Help:    "バックエンドAPI呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "usuarios_logins_total",
			Help: "ログイン試行の結果別の合計数",
		}, []string{"result"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "usuarios_guard_decisions_total",
			Help: "ルートガードの判定別の合計数",
		}, []string{"decision"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "usuarios_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		sessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "usuarios_sessions_expired_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.backendCalls,
		c.backendFail,
		c.backendLatency,
		c.logins,
		c.guardDecisions,
		c.httpStatus,
		c.sessionsExpired,
	)

	return c
}

// RecordBackendCall はステータスを受け取ったバックエンド呼び出しを記録する。
func (c *Collector) RecordBackendCall(operation string, statusCode int, duration time.Duration) {
	c.backendCalls.WithLabelValues(operation, strconv.Itoa(statusCode)).Inc()
	c.backendLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordBackendFailure は接続エラーやタイムアウトを記録する。
func (c *Collector) RecordBackendFailure(operation string) {
	c.backendFail.WithLabelValues(operation).Inc()
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// RecordGuardDecision はルートガードの判定を記録する。
func (c *Collector) RecordGuardDecision(allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	c.guardDecisions.WithLabelValues(decision).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSessionsExpired は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsExpired(count int) {
	c.sessionsExpired.Add(float64(count))
}

// Nop は何も記録しないMetricsCollector。
type Nop struct{}

func (Nop) RecordBackendCall(string, int, time.Duration) {}
func (Nop) RecordBackendFailure(string)                  {}
func (Nop) RecordLogin(string)                           {}
func (Nop) RecordGuardDecision(bool)                     {}
func (Nop) RecordHTTPStatus(int)                         {}
func (Nop) RecordSessionsExpired(int)                    {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを登録したServeMuxを返す。
// ルーターを持たないワーカープロセスの運用エンドポイントに使う。
func SetupMetricsRoute(gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
