// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"
)

// SessionRepository はブラウザセッションごとのトークンスロットの永続化インターフェース。
// 1つのセッションIDに対して保持するトークンは最大1つ。
type SessionRepository interface {
	// SaveToken はセッションのトークンを保存する。既存のトークンは上書きされる。
	SaveToken(ctx context.Context, id, token string, expiresAt time.Time) error
	// FindToken はセッションのトークンを取得する。
	// 存在しないか期限切れの場合はokにfalseを返す。
	FindToken(ctx context.Context, id string) (token string, ok bool, err error)
	// DeleteByID は指定IDのセッションを削除する。存在しない場合もエラーにしない。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
