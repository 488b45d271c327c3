package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/usuarios/internal/model"
)

// MemorySessionRepo はプロセス内メモリを使用したセッションリポジトリ。
// 開発環境とテストで使用する。プロセス再起動でトークンは失われる。
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]model.BrowserSession
	now      func() time.Time
}

// NewMemorySessionRepo はMemorySessionRepoを生成する。
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{
		sessions: make(map[string]model.BrowserSession),
		now:      time.Now,
	}
}

// SaveToken はセッションのトークンを保存する。
func (r *MemorySessionRepo) SaveToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	s, exists := r.sessions[id]
	if !exists {
		s = model.BrowserSession{ID: id, CreatedAt: now}
	}
	s.Token = token
	s.ExpiresAt = expiresAt
	s.UpdatedAt = now
	r.sessions[id] = s
	return nil
}

// FindToken はセッションのトークンを取得する。期限切れの場合はokにfalseを返す。
func (r *MemorySessionRepo) FindToken(ctx context.Context, id string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.sessions[id]
	if !exists || !s.ExpiresAt.After(r.now()) {
		return "", false, nil
	}
	return s.Token, true, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *MemorySessionRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

// DeleteExpired は期限切れのセッションを削除する。
func (r *MemorySessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var n int64
	for id, s := range r.sessions {
		if !s.ExpiresAt.After(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len は保持しているセッション数を返す。テスト用。
func (r *MemorySessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// compile-time interface check
var _ SessionRepository = (*MemorySessionRepo)(nil)
