package view

import (
	"log/slog"
	"strings"

	"github.com/hitoshi/usuarios/internal/metrics"
	"github.com/hitoshi/usuarios/internal/model"
	"github.com/hitoshi/usuarios/internal/token"
)

// LoginState はログイン画面の状態。
type LoginState int

const (
	LoginIdle LoginState = iota
	LoginSubmitting
	LoginSuccess
	LoginFailure
)

// String は状態名を返す。
func (s LoginState) String() string {
	switch s {
	case LoginSubmitting:
		return "SUBMITTING"
	case LoginSuccess:
		return "SUCCESS"
	case LoginFailure:
		return "FAILURE"
	default:
		return "IDLE"
	}
}

// Login はログイン画面。
// 成功時はトークン保存、sub取り出し、詳細取得、ロール別遷移の順に進む。
type Login struct {
	component
	auth     AuthService
	recorder LoginRecorder

	Email    string
	Password string

	state      LoginState
	redirected bool
	user       *model.User
}

// NewLogin はLoginを生成する。recorderはnilでもよい。
func NewLogin(env Env, auth AuthService, recorder LoginRecorder) *Login {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Login{
		component: newComponent(env),
		auth:      auth,
		recorder:  recorder,
	}
}

// State は現在の状態を返す。
func (l *Login) State() LoginState { return l.state }

// Redirected はロール別の遷移まで完了したかを返す。
func (l *Login) Redirected() bool { return l.redirected }

// User はログインした利用者の詳細を返す。取得できていない場合はnil。
func (l *Login) User() *model.User { return l.user }

// Submit は入力中のメールアドレスとパスワードでログインする。
// この送信の終了状態を返す。失敗後の画面状態はIDLEに戻る。
func (l *Login) Submit() LoginState {
	if l.state == LoginSubmitting {
		return l.state
	}
	l.err = nil
	l.redirected = false
	l.user = nil

	if strings.TrimSpace(l.Email) == "" || l.Password == "" {
		l.err = model.NewInvalidRequestError("correoElectronico y contrasena son obligatorios")
		l.alert(MsgMissingLogin)
		return LoginFailure
	}

	l.state = LoginSubmitting
	resp, err := l.auth.Login(l.ctx(), l.Email, l.Password)
	if l.stale("login") {
		return l.state
	}
	if err != nil {
		l.log().Error("login call failed", slog.String("error", err.Error()))
		l.recorder.RecordLogin(metrics.LoginError)
		return l.failWith(model.NewLoginFailedError())
	}
	if !resp.HasToken() {
		l.recorder.RecordLogin(metrics.LoginInvalidCredentials)
		return l.failWith(model.NewInvalidCredentialsError())
	}

	// (a) トークンを保存
	if err := l.auth.SaveToken(l.ctx(), resp.Token); err != nil {
		l.log().Error("failed to persist token", slog.String("error", err.Error()))
		l.recorder.RecordLogin(metrics.LoginError)
		return l.failWith(model.NewLoginFailedError())
	}
	l.state = LoginSuccess
	l.recorder.RecordLogin(metrics.LoginSuccess)

	// (b) subを取り出す
	email, err := token.Subject(resp.Token)
	if err != nil {
		// 認証済みのまま遷移しない
		l.log().Warn("logged in without redirect: undecodable token", slog.String("error", err.Error()))
		return l.state
	}

	// (c) 詳細を取得
	user, err := l.auth.UserByEmail(l.ctx(), email)
	if l.stale("detalles") {
		return l.state
	}
	if err != nil {
		l.log().Warn("logged in without redirect: user details unavailable",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return l.state
	}
	l.user = user

	// (d) ロールで遷移先を決める
	if user.TipoUsuario.IsAdmin() {
		l.navigate(RouteAdmin)
	} else {
		l.navigate(RouteUsuario)
	}
	l.redirected = true
	return l.state
}

func (l *Login) failWith(err *model.APIError) LoginState {
	l.fail(err)
	l.state = LoginIdle
	return LoginFailure
}
