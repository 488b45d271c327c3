// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// Role はユーザー種別（tipoUsuario）を表す。
// 列挙外の値もバックエンドから届いた文字列のまま保持し、管理者以外として扱う。
type Role string

const (
	// RoleAdmin は管理者ユーザー。
	RoleAdmin Role = "ADMIN"
	// RoleUser は一般ユーザー。
	RoleUser Role = "USER"
)

// IsAdmin は管理者ロールかどうかを返す。
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// BirthDateLayout はfchNacUsuの日付フォーマット。
const BirthDateLayout = "2006-01-02"

// User はバックエンドAPIが扱うユーザーレコードを表す。
// JSONフィールド名はバックエンドの表現に合わせる。
type User struct {
	ID                int64  `json:"idUsuario,omitempty"`
	Nombre            string `json:"nombreUsuario"`
	Apellidos         string `json:"apellidosUsuario"`
	FechaNacimiento   string `json:"fchNacUsu,omitempty"`
	Movil             string `json:"movil"`
	CorreoElectronico string `json:"correoElectronico"`
	TipoUsuario       Role   `json:"tipoUsuario"`
	// Contrasena は書き込み専用。バックエンドから読み戻した値はForDisplayで破棄する。
	Contrasena string `json:"contrasena,omitempty"`
	Activo     bool   `json:"activo"`
}

// markupPolicy は入力にHTMLタグが含まれるかを判定するためのポリシー。
var markupPolicy = bluemonday.StrictPolicy()

// ErrMarkup はテキスト項目にHTMLタグが含まれる場合のエラー。
var ErrMarkup = errors.New("text fields must not contain markup")

// JoinSurnames は登録フォームの2つの姓をapellidosUsuarioの形式に結合する。
func JoinSurnames(apellido1, apellido2 string) string {
	return strings.TrimSpace(strings.TrimSpace(apellido1) + " " + strings.TrimSpace(apellido2))
}

// Validate はAPI境界でユーザーレコードを検証する。
func (u *User) Validate() error {
	if strings.TrimSpace(u.CorreoElectronico) == "" {
		return fmt.Errorf("correoElectronico is required")
	}
	if u.FechaNacimiento != "" {
		if _, err := time.Parse(BirthDateLayout, u.FechaNacimiento); err != nil {
			return fmt.Errorf("invalid fchNacUsu %q: %w", u.FechaNacimiento, err)
		}
	}
	return nil
}

// ForDisplay は表示用のコピーを返す。
// パスワードは破棄する。テキスト項目は値を変えずにそのまま返し、
// エスケープは表示側（JSONエンコードとSPAのテンプレート）で行う。
func (u User) ForDisplay() User {
	u.Contrasena = ""
	return u
}

// CheckMarkup はバックエンドへ書き込むテキスト項目にHTMLタグが含まれないことを検証する。
// 実体参照や単独の「<」はタグではないため受け付ける。
func (u *User) CheckMarkup() error {
	fields := map[string]string{
		"nombreUsuario":     u.Nombre,
		"apellidosUsuario":  u.Apellidos,
		"movil":             u.Movil,
		"correoElectronico": u.CorreoElectronico,
		"tipoUsuario":       string(u.TipoUsuario),
	}
	for name, v := range fields {
		if containsMarkup(v) {
			return fmt.Errorf("%s: %w", name, ErrMarkup)
		}
	}
	return nil
}

// containsMarkup はポリシー適用で文字列の内容が変わるかどうかで判定する。
// 両辺の実体参照を戻してから比べるので、エスケープ済みのテキストはタグとみなさない。
func containsMarkup(s string) bool {
	if !strings.ContainsRune(s, '<') {
		return false
	}
	return html.UnescapeString(markupPolicy.Sanitize(s)) != html.UnescapeString(s)
}

// LoginRequest はPOST /loginのリクエストボディ。
type LoginRequest struct {
	CorreoElectronico string `json:"correoElectronico"`
	Contrasena        string `json:"contrasena"`
}

// LoginResponse はPOST /loginのレスポンスボディ。
// tokenを含まない200応答は認証情報の誤りとして扱う。
type LoginResponse struct {
	Token string `json:"token,omitempty"`
	Error string `json:"error,omitempty"`
}

// HasToken はレスポンスにトークンが含まれているかを返す。
func (r *LoginResponse) HasToken() bool {
	return r != nil && r.Token != ""
}

// PasswordResetRequest はPUT /restablecerContraseniaのリクエストボディ。
type PasswordResetRequest struct {
	TokenRecuperacion string `json:"tokenRecuperacion"`
	NuevaContrasenia  string `json:"nuevaContrasenia"`
}
