package apiclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hitoshi/usuarios/internal/logger"
	"github.com/hitoshi/usuarios/internal/model"
	"github.com/hitoshi/usuarios/internal/tokenstore"
)

// ErrMissingID は更新対象のIDがない場合のエラー。
var ErrMissingID = errors.New("idUsuario is required")

// ErrPhotoTooLarge は写真がMaxPhotoBytesを超える場合のエラー。
var ErrPhotoTooLarge = errors.New("photo exceeds size limit")

// DirectoryClient は利用者の登録・一覧・削除・更新を行うクライアント。
type DirectoryClient struct {
	transport *Transport
	store     tokenstore.Store
}

// NewDirectoryClient はDirectoryClientを生成する。
// storeはAuthorizationヘッダー送信が有効な場合にのみ参照する。nilでもよい。
func NewDirectoryClient(transport *Transport, store tokenstore.Store) *DirectoryClient {
	return &DirectoryClient{transport: transport, store: store}
}

func (c *DirectoryClient) token(ctx context.Context) string {
	return bearer(ctx, c.transport, c.store)
}

// Register は新しい利用者を登録し、バックエンドが作成したレコードを返す。
// バックエンドが空の応答を返した場合、レコードはnil。
func (c *DirectoryClient) Register(ctx context.Context, u model.User) (*model.User, error) {
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("registrarUsuario: %w", err)
	}
	if err := u.CheckMarkup(); err != nil {
		return nil, fmt.Errorf("registrarUsuario: %w", err)
	}
	var created model.User
	err := c.transport.doJSON(ctx, call{
		operation: "registrarUsuario",
		method:    http.MethodPost,
		path:      "/registrarUsuario",
		token:     c.token(ctx),
	}, u, &created)
	if err != nil {
		return nil, err
	}
	if created.CorreoElectronico == "" {
		return nil, nil
	}
	shown := created.ForDisplay()
	return &shown, nil
}

// List は全利用者を取得する。
// 検証に失敗したレコードはログに記録して一覧から除外する。
func (c *DirectoryClient) List(ctx context.Context) ([]model.User, error) {
	var raw []model.User
	err := c.transport.doJSON(ctx, call{
		operation: "listar",
		method:    http.MethodGet,
		path:      "/listar",
		token:     c.token(ctx),
	}, nil, &raw)
	if err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(raw))
	for i := range raw {
		if err := raw[i].Validate(); err != nil {
			logger.FromContext(ctx, c.transport.logger).Warn("skipping invalid user record",
				slog.Int64("id", raw[i].ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		users = append(users, raw[i].ForDisplay())
	}
	return users, nil
}

// Delete は利用者を削除し、バックエンドのテキスト応答を返す。
func (c *DirectoryClient) Delete(ctx context.Context, id int64) (string, error) {
	return c.transport.doText(ctx, call{
		operation: "eliminar",
		method:    http.MethodDelete,
		path:      "/eliminar/" + strconv.FormatInt(id, 10),
		token:     c.token(ctx),
	})
}

// Update は利用者レコードを更新し、バックエンドのテキスト応答を返す。
func (c *DirectoryClient) Update(ctx context.Context, u model.User) (string, error) {
	if u.ID == 0 {
		return "", fmt.Errorf("actualizarUsuario: %w", ErrMissingID)
	}
	if err := u.CheckMarkup(); err != nil {
		return "", fmt.Errorf("actualizarUsuario: %w", err)
	}
	payload, err := jsonBody(u)
	if err != nil {
		return "", fmt.Errorf("actualizarUsuario: %w", err)
	}
	return c.transport.doText(ctx, call{
		operation:   "actualizarUsuario",
		method:      http.MethodPut,
		path:        "/actualizarUsuario",
		body:        payload,
		contentType: "application/json",
		token:       c.token(ctx),
	})
}

// UserByID はIDで利用者レコードを取得する。
func (c *DirectoryClient) UserByID(ctx context.Context, id int64) (*model.User, error) {
	return fetchUser(ctx, c.transport, call{
		operation: "usuario",
		method:    http.MethodGet,
		path:      "/" + strconv.FormatInt(id, 10),
		token:     c.token(ctx),
	})
}

// ActivateAccount は有効化トークンでアカウントを有効にする。
func (c *DirectoryClient) ActivateAccount(ctx context.Context, activationToken string) (string, error) {
	return c.transport.doText(ctx, call{
		operation: "activarCuenta",
		method:    http.MethodPut,
		path:      "/activarCuenta",
		query:     url.Values{"token": {activationToken}},
	})
}

// RequestRecovery はパスワード再設定トークンの発行を依頼する。
func (c *DirectoryClient) RequestRecovery(ctx context.Context, email string) (string, error) {
	return c.transport.doText(ctx, call{
		operation: "recuperar",
		method:    http.MethodPost,
		path:      "/recuperar",
		query:     url.Values{"correoElectronico": {email}},
	})
}

// ResetPassword は再設定トークンを使ってパスワードを変更する。
func (c *DirectoryClient) ResetPassword(ctx context.Context, recoveryToken, newPassword string) (string, error) {
	payload, err := jsonBody(model.PasswordResetRequest{
		TokenRecuperacion: recoveryToken,
		NuevaContrasenia:  newPassword,
	})
	if err != nil {
		return "", fmt.Errorf("restablecerContrasenia: %w", err)
	}
	return c.transport.doText(ctx, call{
		operation:   "restablecerContrasenia",
		method:      http.MethodPut,
		path:        "/restablecerContrasenia",
		body:        payload,
		contentType: "application/json",
	})
}

// Photo はプロフィール写真とそのContent-Typeを返す。
func (c *DirectoryClient) Photo(ctx context.Context, id int64) ([]byte, string, error) {
	res, err := c.transport.do(ctx, call{
		operation: "foto",
		method:    http.MethodGet,
		path:      "/" + strconv.FormatInt(id, 10) + "/foto",
		token:     c.token(ctx),
		limit:     MaxPhotoBytes,
	})
	if err != nil {
		return nil, "", err
	}
	contentType := res.contentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return res.body, contentType, nil
}

// UploadPhoto はプロフィール写真をアップロードする。
func (c *DirectoryClient) UploadPhoto(ctx context.Context, id int64, data []byte) (string, error) {
	if int64(len(data)) > MaxPhotoBytes {
		return "", fmt.Errorf("subirFoto: %w", ErrPhotoTooLarge)
	}
	return c.transport.doText(ctx, call{
		operation:   "subirFoto",
		method:      http.MethodPut,
		path:        "/subirFoto/" + strconv.FormatInt(id, 10),
		body:        data,
		contentType: "application/octet-stream",
		token:       c.token(ctx),
	})
}
