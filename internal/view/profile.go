package view

import (
	"errors"
	"log/slog"

	"github.com/hitoshi/usuarios/internal/model"
	"github.com/hitoshi/usuarios/internal/token"
)

// ErrNoUser はログイン中の利用者を特定できない場合のエラー。
var ErrNoUser = errors.New("no logged-in user")

// Profile は一般利用者の画面。
// 保存済みトークンのsubから利用者の詳細を取得する。
type Profile struct {
	component
	auth   AuthService
	photos PhotoService

	user *model.User
}

// NewProfile はProfileを生成する。写真を扱わない場合photosはnilでもよい。
func NewProfile(env Env, auth AuthService, photos PhotoService) *Profile {
	return &Profile{
		component: newComponent(env),
		auth:      auth,
		photos:    photos,
	}
}

// User は表示中の利用者を返す。
func (p *Profile) User() *model.User { return p.user }

// Load は利用者の詳細を読み込む。トークンがない場合は空のまま。
func (p *Profile) Load() *model.User {
	p.err = nil
	tok, ok, err := p.auth.Token(p.ctx())
	if err != nil {
		p.log().Error("failed to read token", slog.String("error", err.Error()))
		p.err = model.NewInternalError()
		return nil
	}
	if !ok {
		return nil
	}

	email, err := token.Subject(tok)
	if err != nil {
		p.log().Warn("stored token is not decodable", slog.String("error", err.Error()))
		p.err = model.NewInvalidTokenError()
		return nil
	}

	user, err := p.auth.UserByEmail(p.ctx(), email)
	if p.stale("detalles") {
		return nil
	}
	if err != nil {
		p.log().Error("failed to load user details",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		p.err = model.NewUserNotFoundError()
		return nil
	}
	p.user = user
	return user
}

// Logout はトークンを削除してトップ画面に遷移する。
func (p *Profile) Logout() error {
	if err := p.auth.Logout(p.ctx()); err != nil {
		p.log().Error("failed to clear token", slog.String("error", err.Error()))
		return err
	}
	p.user = nil
	p.navigate(RouteHome)
	return nil
}

// Photo はログイン中の利用者のプロフィール写真を返す。
func (p *Profile) Photo() ([]byte, string, error) {
	user, err := p.current()
	if err != nil {
		return nil, "", err
	}
	data, contentType, err := p.photos.Photo(p.ctx(), user.ID)
	if p.stale("foto") {
		return nil, "", ErrDisposed
	}
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}

// UploadPhoto はログイン中の利用者のプロフィール写真を更新する。
func (p *Profile) UploadPhoto(data []byte) bool {
	user, err := p.current()
	if err != nil {
		return false
	}
	_, err = p.photos.UploadPhoto(p.ctx(), user.ID, data)
	if p.stale("subirFoto") {
		return false
	}
	if err != nil {
		p.log().Error("photo upload failed",
			slog.Int64("id", user.ID),
			slog.String("error", err.Error()),
		)
		p.fail(model.NewUpdateFailedError())
		return false
	}
	p.alert(MsgPhotoUpdated)
	return true
}

// current は読み込み済みの利用者を返す。未読み込みなら読み込む。
func (p *Profile) current() (*model.User, error) {
	if p.user != nil {
		return p.user, nil
	}
	if user := p.Load(); user != nil {
		return user, nil
	}
	if p.err == nil {
		p.err = model.NewUnauthorizedError()
	}
	return nil, ErrNoUser
}
