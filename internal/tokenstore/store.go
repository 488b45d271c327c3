// Package tokenstore はベアラートークンを1つだけ保持するスロットを提供する。
// トークンの構造は検証せず、保存時は既存の値を上書きする。
package tokenstore

import (
	"context"
	"sync"
)

// Store はトークン格納スロットのインターフェース。
// スロットにトークンがあることが「ログイン中」であることと同値になる。
type Store interface {
	// Save はトークンを保存する。既存のトークンは上書きされる。
	Save(ctx context.Context, token string) error
	// Read は保存済みトークンを返す。未保存の場合はokにfalseを返す。
	Read(ctx context.Context) (token string, ok bool, err error)
	// Clear は保存済みトークンを削除する。
	Clear(ctx context.Context) error
}

// MemoryStore はプロセス内の単一スロット。
type MemoryStore struct {
	mu    sync.Mutex
	token string
	set   bool
}

// NewMemoryStore は空のMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save はトークンを保存する。
func (s *MemoryStore) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = true
	return nil
}

// Read は保存済みトークンを返す。
func (s *MemoryStore) Read(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.set, nil
}

// Clear は保存済みトークンを削除する。
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.set = false
	return nil
}

var _ Store = (*MemoryStore)(nil)
