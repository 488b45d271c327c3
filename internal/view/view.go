// Package view は画面コンポーネントの状態遷移を提供する。
// 描画は行わず、通知・画面遷移・確認を注入されたインターフェース経由で行う。
package view

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hitoshi/usuarios/internal/logger"
	"github.com/hitoshi/usuarios/internal/model"
)

// 画面ルート
const (
	RouteHome     = "/"
	RouteLogin    = "/login"
	RouteRegistro = "/registro"
	RouteAdmin    = "/admin"
	RouteUsuario  = "/usuario"
)

// 成功時の通知メッセージ
const (
	MsgRegistered      = "Usuario registrado correctamente"
	MsgUpdated         = "Usuario actualizado correctamente"
	MsgMissingLogin    = "Introduce el correo electrónico y la contraseña"
	MsgRecoverySent    = "Se ha enviado un enlace de recuperación a tu correo"
	MsgPasswordChanged = "Contraseña actualizada"
	MsgAccountActive   = "Cuenta activada correctamente."
	MsgPhotoUpdated    = "Foto actualizada"
	MsgConfirmDelete   = "¿Seguro que quieres eliminar este usuario?"
)

// Notifier はブロッキングなモーダル通知を表示する。
type Notifier interface {
	Alert(msg string)
}

// Navigator は画面遷移を行う。
type Navigator interface {
	Navigate(route string)
}

// Confirmer は利用者に確認を求め、承諾されたかを返す。
type Confirmer interface {
	Confirm(msg string) bool
}

// Confirmed は常に同じ回答を返すConfirmer。
// HTTP経由では確認結果がリクエストに含まれて届く。
type Confirmed bool

// Confirm はConfirmerを実装する。
func (c Confirmed) Confirm(string) bool { return bool(c) }

// Outcome は通知と遷移先を記録するNotifier兼Navigator。
// HTTPハンドラーがレスポンスに変換する。
type Outcome struct {
	mu       sync.Mutex
	alerts   []string
	redirect string
}

// Alert は通知を記録する。
func (o *Outcome) Alert(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.alerts = append(o.alerts, msg)
}

// Navigate は遷移先を記録する。最後の遷移が有効。
func (o *Outcome) Navigate(route string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.redirect = route
}

// Alerts は記録された通知を返す。
func (o *Outcome) Alerts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string{}, o.alerts...)
}

// Redirect は遷移先を返す。遷移していない場合は空文字列。
func (o *Outcome) Redirect() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.redirect
}

// Lifetime はコンポーネントの生存期間。
// Dispose後に届いた呼び出し結果は破棄される。
type Lifetime struct {
	ctx      context.Context
	cancel   context.CancelFunc
	disposed atomic.Bool
}

// NewLifetime は親コンテキストに紐づくLifetimeを生成する。
// 親がキャンセルされた場合も破棄済みとして扱う。
func NewLifetime(parent context.Context) *Lifetime {
	ctx, cancel := context.WithCancel(parent)
	return &Lifetime{ctx: ctx, cancel: cancel}
}

// Context は実行中の呼び出しに渡すコンテキストを返す。
func (l *Lifetime) Context() context.Context {
	return l.ctx
}

// Dispose は実行中の呼び出しをキャンセルし、以後の結果を破棄させる。
func (l *Lifetime) Dispose() {
	l.disposed.Store(true)
	l.cancel()
}

// Disposed は破棄済みかどうかを返す。
func (l *Lifetime) Disposed() bool {
	return l.disposed.Load() || l.ctx.Err() != nil
}

// Env はコンポーネントが共通で必要とする依存。
type Env struct {
	Lifetime  *Lifetime
	Notifier  Notifier
	Navigator Navigator
	Logger    *slog.Logger
}

// component は各コンポーネントに埋め込む共通部分。
type component struct {
	life   *Lifetime
	notify Notifier
	nav    Navigator
	logger *slog.Logger
	err    *model.APIError
}

func newComponent(env Env) component {
	life := env.Lifetime
	if life == nil {
		life = NewLifetime(context.Background())
	}
	log := env.Logger
	if log == nil {
		log = slog.Default()
	}
	return component{
		life:   life,
		notify: env.Notifier,
		nav:    env.Navigator,
		logger: log,
	}
}

// Err は直近の失敗を返す。失敗していない場合はnil。
func (c *component) Err() *model.APIError {
	return c.err
}

// Dispose はコンポーネントを破棄する。
func (c *component) Dispose() {
	c.life.Dispose()
}

func (c *component) ctx() context.Context {
	return c.life.Context()
}

func (c *component) log() *slog.Logger {
	return logger.FromContext(c.life.Context(), c.logger)
}

// stale は破棄済みの場合にtrueを返す。結果は適用せずに捨てる。
func (c *component) stale(operation string) bool {
	if !c.life.Disposed() {
		return false
	}
	c.log().Info("dropping result for disposed view", slog.String("operation", operation))
	return true
}

// fail は失敗を記録して通知する。
func (c *component) fail(err *model.APIError) {
	c.err = err
	c.alert(err.Message)
}

func (c *component) alert(msg string) {
	if c.notify != nil {
		c.notify.Alert(msg)
	}
}

func (c *component) navigate(route string) {
	if c.nav != nil {
		c.nav.Navigate(route)
	}
}
