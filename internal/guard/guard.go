// Package guard はルート遷移の可否を判定する。
// トークンの有無のみを見て、有効期限・署名・ロールは確認しない。
package guard

import (
	"context"

	"github.com/hitoshi/usuarios/internal/tokenstore"
)

// Decision はルートガードの判定結果。
type Decision int

const (
	// Deny は遷移を中止する。
	Deny Decision = iota
	// Allow は遷移を許可する。
	Allow
)

// String は判定結果の文字列表現を返す。
func (d Decision) String() string {
	if d == Allow {
		return "ALLOW"
	}
	return "DENY"
}

// Evaluate はトークンストアにトークンがあればAllow、なければDenyを返す。
// 読み取りエラーはトークンなしとして扱う。
func Evaluate(ctx context.Context, store tokenstore.Store) Decision {
	if store == nil {
		return Deny
	}
	_, ok, err := store.Read(ctx)
	if err != nil || !ok {
		return Deny
	}
	return Allow
}
