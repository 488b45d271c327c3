package tokenstore

import (
	"context"
	"fmt"
	"time"
)

// SlotRepository はSessionStoreが必要とする永続化インターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SlotRepository interface {
	SaveToken(ctx context.Context, id, token string, expiresAt time.Time) error
	FindToken(ctx context.Context, id string) (string, bool, error)
	DeleteByID(ctx context.Context, id string) error
}

// SessionStore は1つのブラウザセッションに紐づくスロット。
// リクエストごとにセッションIDを束縛して生成する。
type SessionStore struct {
	repo      SlotRepository
	sessionID string
	maxAge    time.Duration
	now       func() time.Time
}

// NewSessionStore はSessionStoreを生成する。
// maxAgeは保存したトークンをスロットに保持する期間。
func NewSessionStore(repo SlotRepository, sessionID string, maxAge time.Duration) *SessionStore {
	return &SessionStore{
		repo:      repo,
		sessionID: sessionID,
		maxAge:    maxAge,
		now:       time.Now,
	}
}

// Save はトークンを保存する。
func (s *SessionStore) Save(ctx context.Context, token string) error {
	if s.sessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	if err := s.repo.SaveToken(ctx, s.sessionID, token, s.now().Add(s.maxAge)); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Read は保存済みトークンを返す。セッションIDがない場合は未保存として扱う。
func (s *SessionStore) Read(ctx context.Context) (string, bool, error) {
	if s.sessionID == "" {
		return "", false, nil
	}
	token, ok, err := s.repo.FindToken(ctx, s.sessionID)
	if err != nil {
		return "", false, fmt.Errorf("failed to read token: %w", err)
	}
	return token, ok, nil
}

// Clear は保存済みトークンを削除する。
func (s *SessionStore) Clear(ctx context.Context) error {
	if s.sessionID == "" {
		return nil
	}
	if err := s.repo.DeleteByID(ctx, s.sessionID); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

var _ Store = (*SessionStore)(nil)
