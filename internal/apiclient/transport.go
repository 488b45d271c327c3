// Package apiclient はリモートのユーザーREST APIのクライアントを提供する。
// 各呼び出しは1回だけ試行し、リトライは行わない。
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/usuarios/internal/logger"
	"github.com/hitoshi/usuarios/internal/metrics"
)

const (
	// DefaultBaseURL はユーザーAPIのベースURL。
	DefaultBaseURL = "http://localhost:8083/api/usuarios"
	// DefaultTimeout はバックエンド呼び出しのタイムアウト。
	DefaultTimeout = 10 * time.Second

	// maxResponseBytes はJSON/テキスト応答の最大サイズ。
	maxResponseBytes int64 = 1 << 20
	// MaxPhotoBytes はプロフィール写真の最大サイズ。
	MaxPhotoBytes int64 = 5 << 20

	userAgent = "Usuarios/1.0"
)

// ErrResponseTooLarge は応答ボディが上限を超えた場合のエラー。
var ErrResponseTooLarge = errors.New("response body exceeds size limit")

// StatusError はバックエンドが2xx以外のステータスを返した場合のエラー。
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

// Error はerrorインターフェースを実装する。
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: backend returned status %d", e.Operation, e.StatusCode)
}

// IsNotFound はエラーがバックエンドの404応答かどうかを返す。
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Config はTransportの設定。
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	AttachToken bool // trueの場合、保存済みトークンをAuthorizationヘッダーで送る
}

// Transport はバックエンドAPIへのHTTP呼び出しを共通化する。
// 複数のリクエストから並行して利用できる。
type Transport struct {
	httpClient  *http.Client
	logger      *slog.Logger
	metrics     metrics.MetricsCollector
	baseURL     string
	attachToken bool
}

// NewTransport はTransportを生成する。
// httpClientがnilの場合はcfg.Timeoutを設定したクライアントを使用する。
func NewTransport(httpClient *http.Client, log *slog.Logger, recorder metrics.MetricsCollector, cfg Config) *Transport {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Transport{
		httpClient:  httpClient,
		logger:      log,
		metrics:     recorder,
		baseURL:     baseURL,
		attachToken: cfg.AttachToken,
	}
}

// BaseURL は呼び出し先のベースURLを返す。
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// call は1回のバックエンド呼び出しの内容。
type call struct {
	operation   string
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	token       string
	limit       int64
}

// result は2xx応答の内容。
type result struct {
	body        []byte
	contentType string
}

// do はバックエンドを1回呼び出す。2xx以外は*StatusErrorを返す。
func (t *Transport) do(ctx context.Context, c call) (*result, error) {
	reqURL := t.baseURL + c.path
	if len(c.query) > 0 {
		reqURL += "?" + c.query.Encode()
	}

	var body io.Reader
	if c.body != nil {
		body = bytes.NewReader(c.body)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", c.operation, err)
	}
	req.Header.Set("User-Agent", userAgent)
	if c.contentType != "" {
		req.Header.Set("Content-Type", c.contentType)
	}
	if id := logger.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	if t.attachToken && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log := logger.FromContext(ctx, t.logger)
	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.metrics.RecordBackendFailure(c.operation)
		log.Error("backend call failed",
			slog.String("operation", c.operation),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", c.operation, err)
	}
	defer resp.Body.Close()

	limit := c.limit
	if limit <= 0 {
		limit = maxResponseBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	duration := time.Since(start)
	t.metrics.RecordBackendCall(c.operation, resp.StatusCode, duration)
	if err != nil {
		log.Error("failed to read backend response",
			slog.String("operation", c.operation),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s: failed to read response: %w", c.operation, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w", c.operation, ErrResponseTooLarge)
	}

	log.Info("backend call",
		slog.String("operation", c.operation),
		slog.Int("http_status", resp.StatusCode),
		slog.Int64("duration_ms", duration.Milliseconds()),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Operation:  c.operation,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	return &result{body: data, contentType: resp.Header.Get("Content-Type")}, nil
}

// doJSON はJSONボディを送り、JSON応答をoutにデコードする。
// inがnilの場合はボディを送らない。outがnilの場合や応答が空の場合はデコードしない。
func (t *Transport) doJSON(ctx context.Context, c call, in, out any) error {
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", c.operation, err)
		}
		c.body = payload
		c.contentType = "application/json"
	}

	res, err := t.do(ctx, c)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(res.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", c.operation, err)
	}
	return nil
}

// doText はテキスト応答を返す。
func (t *Transport) doText(ctx context.Context, c call) (string, error) {
	res, err := t.do(ctx, c)
	if err != nil {
		return "", err
	}
	return string(res.body), nil
}

func jsonBody(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return payload, nil
}
