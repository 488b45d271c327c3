// Package token はベアラートークンからの利用者識別子の取り出しを提供する。
// 署名検証と有効期限の検証は行わない（バックエンドの責務）。
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed はトークンの構造が不正な場合のエラー。
var ErrMalformed = errors.New("token is malformed")

// ErrNoSubject はペイロードにsubが含まれない場合のエラー。
var ErrNoSubject = errors.New("token payload has no subject")

// Claims はトークンのペイロード部。
// subにはメールアドレスが入る。登録済みクレームは必要になった時点でのみ解釈するため、
// expやaudの型が想定外でもsubの取り出しには影響しない。
type Claims struct {
	Subject     string
	TipoUsuario string
	raw         jwt.MapClaims
}

// ExpirationTime はexpクレームを返す。expがない場合はnil。
func (c *Claims) ExpirationTime() (*jwt.NumericDate, error) {
	return c.raw.GetExpirationTime()
}

// segmentDecoder はbase64urlセグメントのデコードに使うパーサー。
var segmentDecoder = jwt.NewParser()

// Decode はトークンの中央セグメントのみをデコードしてClaimsを返す。
// ヘッダーと署名セグメントは参照しない。
func Decode(raw string) (*Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformed, len(parts))
	}

	payload, err := segmentDecoder.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload segment: %v", ErrMalformed, err)
	}

	mc := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &mc); err != nil {
		return nil, fmt.Errorf("%w: payload is not JSON: %v", ErrMalformed, err)
	}

	sub, err := mc.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	role, _ := mc["tipoUsuario"].(string)

	return &Claims{Subject: sub, TipoUsuario: role, raw: mc}, nil
}

// Subject はトークンのsub（メールアドレス）を返す。
func Subject(raw string) (string, error) {
	claims, err := Decode(raw)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrNoSubject
	}
	return claims.Subject, nil
}
