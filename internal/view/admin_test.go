package view

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/usuarios/internal/model"
)

func sampleUsers() []model.User {
	return []model.User{
		{ID: 7, Nombre: "Ana", CorreoElectronico: "ana@x.com"},
		{ID: 8, Nombre: "Luis", CorreoElectronico: "luis@x.com"},
	}
}

func TestAdmin_Load(t *testing.T) {
	dir := &mockDirectoryService{listFn: func(ctx context.Context) ([]model.User, error) {
		return sampleUsers(), nil
	}}
	env, _ := newTestEnv()

	a := NewAdmin(env, dir, nil)
	a.Load()

	if got := len(a.Users()); got != 2 {
		t.Errorf("len(Users) = %d, want 2", got)
	}
}

func TestAdmin_LoadErrorKeepsPriorList(t *testing.T) {
	fail := false
	dir := &mockDirectoryService{listFn: func(ctx context.Context) ([]model.User, error) {
		if fail {
			return nil, errors.New("500")
		}
		return sampleUsers(), nil
	}}
	env, out := newTestEnv()

	a := NewAdmin(env, dir, nil)
	a.Load()
	fail = true
	a.Load()

	if got := len(a.Users()); got != 2 {
		t.Errorf("len(Users) = %d, want prior 2", got)
	}
	if len(out.Alerts()) != 0 {
		t.Errorf("load errors must not alert: %v", out.Alerts())
	}
}

// TestAdmin_DeleteThenReload は削除の成否にかかわらず一覧を再取得することを検証する。
func TestAdmin_DeleteThenReload(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"delete succeeds", nil},
		{"delete fails", errors.New("500")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var deleted int64
			dir := &mockDirectoryService{
				deleteFn: func(ctx context.Context, id int64) (string, error) {
					deleted = id
					return "", tt.err
				},
			}
			env, out := newTestEnv()

			a := NewAdmin(env, dir, Confirmed(true))
			if !a.Delete(7) {
				t.Fatal("Delete should report confirmation")
			}

			if deleted != 7 {
				t.Errorf("deleted id = %d, want 7", deleted)
			}
			if strings.Join(dir.calls, ",") != "delete,list" {
				t.Errorf("calls = %v, want [delete list]", dir.calls)
			}
			if len(out.Alerts()) != 0 {
				t.Errorf("delete must not alert: %v", out.Alerts())
			}
		})
	}
}

func TestAdmin_DeleteNotConfirmed(t *testing.T) {
	dir := &mockDirectoryService{}
	env, _ := newTestEnv()

	a := NewAdmin(env, dir, Confirmed(false))
	if a.Delete(7) {
		t.Error("Delete should report no confirmation")
	}
	if len(dir.calls) != 0 {
		t.Errorf("calls = %v, want none", dir.calls)
	}
}

func TestAdmin_SelectForEditCopies(t *testing.T) {
	dir := &mockDirectoryService{listFn: func(ctx context.Context) ([]model.User, error) {
		return sampleUsers(), nil
	}}
	env, _ := newTestEnv()

	a := NewAdmin(env, dir, nil)
	a.Load()
	a.SelectForEdit(a.Users()[0])

	if !a.Editing() {
		t.Fatal("Editing should be true")
	}
	a.Scratch().Nombre = "Cambiado"

	if a.Users()[0].Nombre != "Ana" {
		t.Errorf("list entry changed to %q before save", a.Users()[0].Nombre)
	}
}

func TestAdmin_SaveEditSuccess(t *testing.T) {
	var sent model.User
	dir := &mockDirectoryService{updateFn: func(ctx context.Context, u model.User) (string, error) {
		sent = u
		return "Usuario actualizado correctamente", nil
	}}
	env, out := newTestEnv()

	a := NewAdmin(env, dir, nil)
	a.SelectForEdit(sampleUsers()[0])
	a.Scratch().Nombre = "Ana María"

	if !a.SaveEdit() {
		t.Fatal("SaveEdit should succeed")
	}
	if sent.Nombre != "Ana María" || sent.ID != 7 {
		t.Errorf("sent = %+v", sent)
	}
	if a.Editing() {
		t.Error("Editing should be false after success")
	}
	if strings.Join(dir.calls, ",") != "update,list" {
		t.Errorf("calls = %v, want [update list]", dir.calls)
	}
	alerts := out.Alerts()
	if len(alerts) != 1 || alerts[0] != MsgUpdated {
		t.Errorf("alerts = %v, want [%s]", alerts, MsgUpdated)
	}
}

// TestAdmin_SaveEditFailureKeepsScratch は更新失敗時に編集モードとコピーが残ることを検証する。
func TestAdmin_SaveEditFailureKeepsScratch(t *testing.T) {
	dir := &mockDirectoryService{updateFn: func(ctx context.Context, u model.User) (string, error) {
		return "", errors.New("500")
	}}
	env, out := newTestEnv()

	a := NewAdmin(env, dir, nil)
	a.SelectForEdit(sampleUsers()[0])
	a.Scratch().Nombre = "Ana María"
	before := *a.Scratch()

	if a.SaveEdit() {
		t.Fatal("SaveEdit should fail")
	}
	if !a.Editing() {
		t.Error("Editing should remain true")
	}
	if *a.Scratch() != before {
		t.Errorf("scratch = %+v, want %+v", *a.Scratch(), before)
	}
	alerts := out.Alerts()
	if len(alerts) != 1 || alerts[0] != "Error al actualizar usuario" {
		t.Errorf("alerts = %v", alerts)
	}
	if strings.Join(dir.calls, ",") != "update" {
		t.Errorf("calls = %v, want [update]", dir.calls)
	}
}

func TestAdmin_SaveEditWithoutSelection(t *testing.T) {
	dir := &mockDirectoryService{}
	env, _ := newTestEnv()

	if NewAdmin(env, dir, nil).SaveEdit() {
		t.Error("SaveEdit without selection should do nothing")
	}
	if len(dir.calls) != 0 {
		t.Errorf("calls = %v, want none", dir.calls)
	}
}

func TestAdmin_DisposedDropsList(t *testing.T) {
	dir := &mockDirectoryService{}
	env, _ := newTestEnv()
	a := NewAdmin(env, dir, nil)

	dir.listFn = func(ctx context.Context) ([]model.User, error) {
		a.Dispose()
		return sampleUsers(), nil
	}
	a.Load()

	if len(a.Users()) != 0 {
		t.Errorf("disposed view should drop the list, got %d users", len(a.Users()))
	}
}

func TestAdmin_Home(t *testing.T) {
	env, out := newTestEnv()
	NewAdmin(env, &mockDirectoryService{}, nil).Home()
	if out.Redirect() != RouteHome {
		t.Errorf("redirect = %q, want %q", out.Redirect(), RouteHome)
	}
}
