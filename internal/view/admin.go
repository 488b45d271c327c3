package view

import (
	"log/slog"

	"github.com/hitoshi/usuarios/internal/model"
)

// Admin は管理者画面。利用者一覧の表示・削除・編集を行う。
type Admin struct {
	component
	directory DirectoryService
	confirm   Confirmer

	users   []model.User
	editing bool
	scratch *model.User
}

// NewAdmin はAdminを生成する。
func NewAdmin(env Env, directory DirectoryService, confirm Confirmer) *Admin {
	if confirm == nil {
		confirm = Confirmed(false)
	}
	return &Admin{
		component: newComponent(env),
		directory: directory,
		confirm:   confirm,
	}
}

// Users は表示中の一覧のコピーを返す。
func (a *Admin) Users() []model.User {
	return append([]model.User{}, a.users...)
}

// Editing は編集モードかどうかを返す。
func (a *Admin) Editing() bool { return a.editing }

// Scratch は編集中のコピーを返す。編集モードでない場合はnil。
// 返した値を変更しても一覧には反映されない。
func (a *Admin) Scratch() *model.User { return a.scratch }

// Load は一覧を再取得する。エラーはログに記録し、一覧は前の状態のまま。
func (a *Admin) Load() {
	users, err := a.directory.List(a.ctx())
	if a.stale("listar") {
		return
	}
	if err != nil {
		a.log().Error("failed to load users", slog.String("error", err.Error()))
		return
	}
	a.users = users
}

// Delete は確認のうえ利用者を削除し、結果にかかわらず一覧を再取得する。
// 確認が得られなかった場合はfalseを返し、何も送信しない。
func (a *Admin) Delete(id int64) bool {
	if !a.confirm.Confirm(MsgConfirmDelete) {
		return false
	}
	if _, err := a.directory.Delete(a.ctx(), id); err != nil {
		a.log().Error("delete failed",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
	}
	if a.stale("eliminar") {
		return true
	}
	a.Load()
	return true
}

// SelectForEdit は指定レコードのコピーを作って編集モードに入る。
func (a *Admin) SelectForEdit(u model.User) {
	scratch := u
	a.scratch = &scratch
	a.editing = true
}

// SaveEdit は編集中のコピーを送信する。
// 失敗時は編集モードとコピーを保持したまま通知する。
func (a *Admin) SaveEdit() bool {
	if !a.editing || a.scratch == nil {
		return false
	}
	a.err = nil

	_, err := a.directory.Update(a.ctx(), *a.scratch)
	if a.stale("actualizarUsuario") {
		return false
	}
	if err != nil {
		a.log().Error("update failed",
			slog.Int64("id", a.scratch.ID),
			slog.String("error", err.Error()),
		)
		a.fail(model.NewUpdateFailedError())
		return false
	}

	a.alert(MsgUpdated)
	a.editing = false
	a.scratch = nil
	a.Load()
	return true
}

// Home はトップ画面に遷移する。
func (a *Admin) Home() {
	a.navigate(RouteHome)
}
