package view

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/hitoshi/usuarios/internal/model"
)

// ErrDisposed は破棄済みのため結果を破棄したことを示す。
var ErrDisposed = errors.New("view disposed")

// Recovery はパスワード再設定画面。
type Recovery struct {
	component
	accounts AccountService
}

// NewRecovery はRecoveryを生成する。
func NewRecovery(env Env, accounts AccountService) *Recovery {
	return &Recovery{component: newComponent(env), accounts: accounts}
}

// Request は再設定用トークンの発行を依頼する。
func (r *Recovery) Request(email string) bool {
	r.err = nil
	if strings.TrimSpace(email) == "" {
		r.fail(model.NewInvalidRequestError("correoElectronico es obligatorio"))
		return false
	}

	_, err := r.accounts.RequestRecovery(r.ctx(), email)
	if r.stale("recuperar") {
		return false
	}
	if err != nil {
		r.log().Error("recovery request failed", slog.String("error", err.Error()))
		r.fail(model.NewUserNotFoundError())
		return false
	}
	r.alert(MsgRecoverySent)
	return true
}

// Reset は再設定用トークンで新しいパスワードを設定する。
// 2つの入力が一致しない場合は通信しない。
func (r *Recovery) Reset(recoveryToken, password, password2 string) bool {
	r.err = nil
	if password != password2 {
		r.fail(model.NewPasswordMismatchError())
		return false
	}
	if recoveryToken == "" || password == "" {
		r.fail(model.NewInvalidRequestError("tokenRecuperacion y nuevaContrasenia son obligatorios"))
		return false
	}

	_, err := r.accounts.ResetPassword(r.ctx(), recoveryToken, password)
	if r.stale("restablecerContrasenia") {
		return false
	}
	if err != nil {
		r.log().Error("password reset failed", slog.String("error", err.Error()))
		r.fail(model.NewRecoveryFailedError())
		return false
	}
	r.alert(MsgPasswordChanged)
	r.navigate(RouteLogin)
	return true
}

// Activation はアカウント有効化画面。
type Activation struct {
	component
	accounts AccountService
}

// NewActivation はActivationを生成する。
func NewActivation(env Env, accounts AccountService) *Activation {
	return &Activation{component: newComponent(env), accounts: accounts}
}

// Activate は有効化トークンでアカウントを有効にし、ログイン画面に遷移する。
func (a *Activation) Activate(activationToken string) bool {
	a.err = nil
	if activationToken == "" {
		a.fail(model.NewActivationFailedError())
		return false
	}

	_, err := a.accounts.ActivateAccount(a.ctx(), activationToken)
	if a.stale("activarCuenta") {
		return false
	}
	if err != nil {
		a.log().Error("account activation failed", slog.String("error", err.Error()))
		a.fail(model.NewActivationFailedError())
		return false
	}
	a.alert(MsgAccountActive)
	a.navigate(RouteLogin)
	return true
}
