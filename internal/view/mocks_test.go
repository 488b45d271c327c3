package view

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/hitoshi/usuarios/internal/model"
	"github.com/hitoshi/usuarios/internal/tokenstore"
)

// --- モック定義 ---

// mockAuthService はAuthServiceのモック実装。
// トークンの保存はtokenstore.MemoryStoreに委譲する。
type mockAuthService struct {
	store         *tokenstore.MemoryStore
	loginFn       func(ctx context.Context, email, password string) (*model.LoginResponse, error)
	userByEmailFn func(ctx context.Context, email string) (*model.User, error)
	tokenErr      error
	loginCalls    int
	detailCalls   []string
}

func newMockAuth() *mockAuthService {
	return &mockAuthService{store: tokenstore.NewMemoryStore()}
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	m.loginCalls++
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return &model.LoginResponse{}, nil
}

func (m *mockAuthService) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.detailCalls = append(m.detailCalls, email)
	if m.userByEmailFn != nil {
		return m.userByEmailFn(ctx, email)
	}
	return &model.User{CorreoElectronico: email, TipoUsuario: model.RoleUser}, nil
}

func (m *mockAuthService) SaveToken(ctx context.Context, token string) error {
	return m.store.Save(ctx, token)
}

func (m *mockAuthService) Token(ctx context.Context) (string, bool, error) {
	if m.tokenErr != nil {
		return "", false, m.tokenErr
	}
	return m.store.Read(ctx)
}

func (m *mockAuthService) Logout(ctx context.Context) error {
	return m.store.Clear(ctx)
}

// mockDirectoryService はDirectoryServiceのモック実装。呼び出し順を記録する。
type mockDirectoryService struct {
	registerFn func(ctx context.Context, u model.User) (*model.User, error)
	listFn     func(ctx context.Context) ([]model.User, error)
	deleteFn   func(ctx context.Context, id int64) (string, error)
	updateFn   func(ctx context.Context, u model.User) (string, error)
	calls      []string
}

func (m *mockDirectoryService) Register(ctx context.Context, u model.User) (*model.User, error) {
	m.calls = append(m.calls, "register")
	if m.registerFn != nil {
		return m.registerFn(ctx, u)
	}
	return &u, nil
}

func (m *mockDirectoryService) List(ctx context.Context) ([]model.User, error) {
	m.calls = append(m.calls, "list")
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockDirectoryService) Delete(ctx context.Context, id int64) (string, error) {
	m.calls = append(m.calls, "delete")
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return "Usuario eliminado correctamente", nil
}

func (m *mockDirectoryService) Update(ctx context.Context, u model.User) (string, error) {
	m.calls = append(m.calls, "update")
	if m.updateFn != nil {
		return m.updateFn(ctx, u)
	}
	return "Usuario actualizado correctamente", nil
}

// mockPhotoService はPhotoServiceのモック実装。
type mockPhotoService struct {
	photoFn  func(ctx context.Context, id int64) ([]byte, string, error)
	uploadFn func(ctx context.Context, id int64, data []byte) (string, error)
}

func (m *mockPhotoService) Photo(ctx context.Context, id int64) ([]byte, string, error) {
	if m.photoFn != nil {
		return m.photoFn(ctx, id)
	}
	return nil, "", nil
}

func (m *mockPhotoService) UploadPhoto(ctx context.Context, id int64, data []byte) (string, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, id, data)
	}
	return "Foto actualizada", nil
}

// mockAccountService はAccountServiceのモック実装。
type mockAccountService struct {
	activateFn func(ctx context.Context, token string) (string, error)
	recoverFn  func(ctx context.Context, email string) (string, error)
	resetFn    func(ctx context.Context, token, password string) (string, error)
	calls      int
}

func (m *mockAccountService) ActivateAccount(ctx context.Context, token string) (string, error) {
	m.calls++
	if m.activateFn != nil {
		return m.activateFn(ctx, token)
	}
	return "Cuenta activada correctamente.", nil
}

func (m *mockAccountService) RequestRecovery(ctx context.Context, email string) (string, error) {
	m.calls++
	if m.recoverFn != nil {
		return m.recoverFn(ctx, email)
	}
	return "Token generado", nil
}

func (m *mockAccountService) ResetPassword(ctx context.Context, token, password string) (string, error) {
	m.calls++
	if m.resetFn != nil {
		return m.resetFn(ctx, token, password)
	}
	return "Contraseña actualizada", nil
}

// recorderMock はLoginRecorderのモック実装。
type recorderMock struct {
	results []string
}

func (r *recorderMock) RecordLogin(result string) {
	r.results = append(r.results, result)
}

// newTestEnv はOutcomeに記録するEnvを生成する。
func newTestEnv() (Env, *Outcome) {
	out := &Outcome{}
	return Env{
		Lifetime:  NewLifetime(context.Background()),
		Notifier:  out,
		Navigator: out,
	}, out
}

// tokenFor はsubを含むテスト用トークンを生成する。
func tokenFor(sub string) string {
	payload, _ := json.Marshal(map[string]string{"sub": sub})
	return "h." + base64.RawURLEncoding.EncodeToString(payload) + ".s"
}
