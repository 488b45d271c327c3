package model

import "time"

// BrowserSession はブラウザセッションごとのトークン格納スロットを表す。
// 1セッションにつき保持できるトークンは最大1つ。
type BrowserSession struct {
	ID        string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
