package apiclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hitoshi/usuarios/internal/logger"
	"github.com/hitoshi/usuarios/internal/model"
	"github.com/hitoshi/usuarios/internal/tokenstore"
)

// AuthClient はログインと利用者詳細取得を行うクライアント。
// トークンの保存先としてtokenstore.Storeをラップする。
type AuthClient struct {
	transport *Transport
	store     tokenstore.Store
}

// NewAuthClient はAuthClientを生成する。
func NewAuthClient(transport *Transport, store tokenstore.Store) *AuthClient {
	return &AuthClient{transport: transport, store: store}
}

// Login は認証情報をバックエンドに送る。
// トークンは保存しない。保存するかどうかは呼び出し元が判断する。
func (c *AuthClient) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	err := c.transport.doJSON(ctx, call{
		operation: "login",
		method:    http.MethodPost,
		path:      "/login",
	}, model.LoginRequest{CorreoElectronico: email, Contrasena: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserByEmail はメールアドレスで利用者レコードを取得する。
func (c *AuthClient) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return fetchUser(ctx, c.transport, call{
		operation: "detalles",
		method:    http.MethodGet,
		path:      "/detalles",
		query:     url.Values{"email": {email}},
		token:     bearer(ctx, c.transport, c.store),
	})
}

// SaveToken はトークンを保存する。既存のトークンは上書きされる。
func (c *AuthClient) SaveToken(ctx context.Context, token string) error {
	return c.store.Save(ctx, token)
}

// Token は保存済みトークンを返す。
func (c *AuthClient) Token(ctx context.Context) (string, bool, error) {
	return c.store.Read(ctx)
}

// Logout は保存済みトークンを削除する。
func (c *AuthClient) Logout(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// bearer はAuthorizationヘッダーに載せるトークンを返す。
// 送信が無効な場合やトークンがない場合は空文字列。
func bearer(ctx context.Context, t *Transport, store tokenstore.Store) string {
	if !t.attachToken || store == nil {
		return ""
	}
	tok, ok, err := store.Read(ctx)
	if err != nil {
		logger.FromContext(ctx, t.logger).Warn("failed to read token for backend call",
			slog.String("error", err.Error()),
		)
		return ""
	}
	if !ok {
		return ""
	}
	return tok
}

// fetchUser は単一の利用者レコードを取得し、境界で検証する。
func fetchUser(ctx context.Context, t *Transport, c call) (*model.User, error) {
	var u model.User
	if err := t.doJSON(ctx, c, nil, &u); err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid user record: %w", c.operation, err)
	}
	shown := u.ForDisplay()
	return &shown, nil
}
