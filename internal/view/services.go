package view

import (
	"context"

	"github.com/hitoshi/usuarios/internal/model"
)

// AuthService はログインとトークン管理のインターフェース。
// apiclient.AuthClientが実装する。
type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.LoginResponse, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	SaveToken(ctx context.Context, token string) error
	Token(ctx context.Context) (string, bool, error)
	Logout(ctx context.Context) error
}

// DirectoryService は利用者の登録・一覧・削除・更新のインターフェース。
// apiclient.DirectoryClientが実装する。
type DirectoryService interface {
	Register(ctx context.Context, u model.User) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id int64) (string, error)
	Update(ctx context.Context, u model.User) (string, error)
}

// PhotoService はプロフィール写真のインターフェース。
type PhotoService interface {
	Photo(ctx context.Context, id int64) ([]byte, string, error)
	UploadPhoto(ctx context.Context, id int64, data []byte) (string, error)
}

// AccountService はアカウント有効化とパスワード再設定のインターフェース。
type AccountService interface {
	ActivateAccount(ctx context.Context, activationToken string) (string, error)
	RequestRecovery(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, recoveryToken, newPassword string) (string, error)
}

// LoginRecorder はログイン結果を記録する。metrics.MetricsCollectorの部分集合。
type LoginRecorder interface {
	RecordLogin(result string)
}
