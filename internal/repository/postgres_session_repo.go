package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// SaveToken はセッションのトークンをUPSERTで保存する。
func (r *PostgresSessionRepo) SaveToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO browser_sessions (id, token, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`,
		id, token, expiresAt, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save session token: %w", err)
	}
	return nil
}

// FindToken は指定IDのセッションのトークンを取得する。期限切れの場合はokにfalseを返す。
func (r *PostgresSessionRepo) FindToken(ctx context.Context, id string) (string, bool, error) {
	var token string
	err := r.db.QueryRowContext(ctx,
		`SELECT token FROM browser_sessions WHERE id = $1 AND expires_at > now()`,
		id,
	).Scan(&token)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to find session token: %w", err)
	}

	return token, true, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *PostgresSessionRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM browser_sessions WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れのセッションを削除する。
func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM browser_sessions WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
