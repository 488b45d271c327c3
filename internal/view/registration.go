package view

import (
	"log/slog"

	"github.com/hitoshi/usuarios/internal/model"
)

// RegistrationForm は登録フォームの入力値。
type RegistrationForm struct {
	Nombre    string `json:"nombre"`
	Apellido1 string `json:"apellido1"`
	Apellido2 string `json:"apellido2"`
	FechaNac  string `json:"fechaNac"`
	Movil     string `json:"movil"`
	Email     string `json:"email"`
	Rol       string `json:"rol"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// User はフォームの入力値から送信用のレコードを組み立てる。
func (f RegistrationForm) User() model.User {
	return model.User{
		Nombre:            f.Nombre,
		Apellidos:         model.JoinSurnames(f.Apellido1, f.Apellido2),
		FechaNacimiento:   f.FechaNac,
		Movil:             f.Movil,
		CorreoElectronico: f.Email,
		TipoUsuario:       model.Role(f.Rol),
		Contrasena:        f.Password,
	}
}

// Registration は利用者登録画面。
type Registration struct {
	component
	directory DirectoryService

	Form RegistrationForm
}

// NewRegistration はRegistrationを生成する。
func NewRegistration(env Env, directory DirectoryService) *Registration {
	return &Registration{
		component: newComponent(env),
		directory: directory,
	}
}

// Submit はフォームを送信する。
// パスワードが一致しない場合は通信せずに通知する。失敗時も入力値は保持する。
func (r *Registration) Submit() bool {
	r.err = nil
	if r.Form.Password != r.Form.Password2 {
		r.fail(model.NewPasswordMismatchError())
		return false
	}

	_, err := r.directory.Register(r.ctx(), r.Form.User())
	if r.stale("registrarUsuario") {
		return false
	}
	if err != nil {
		r.log().Error("registration failed", slog.String("error", err.Error()))
		r.fail(model.NewRegistrationFailedError())
		return false
	}

	r.alert(MsgRegistered)
	r.navigate(RouteLogin)
	return true
}
