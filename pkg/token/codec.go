package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL は発行するトークンの既定の有効期間。
const DefaultTTL = 30 * time.Minute

// issuer はiss（発行者）クレームに設定する値。
const issuer = "storegate-gateway"

// ErrMissingClaim は署名が正しくてもsubまたはrolが欠けている場合のエラー。
// 認可はこの2つのクレームに依存するため、欠落したトークンは無効として扱う。
var ErrMissingClaim = errors.New("必須クレーム（sub/rol）が不足している")

// Claims はトークンが運ぶクレーム。
// 標準クレームに加えて呼び出し元のロールを持つ。
type Claims struct {
	jwt.RegisteredClaims
	// Role は呼び出し元のロール。ロールゲートでの照合に使用する。
	Role string `json:"rol"`
}

// Codec はアクセストークンの発行と検証を行う。
// 秘密鍵はプロセス起動時に一度だけ設定し、以後は不変として扱う。
// 鍵を差し替えると未失効のトークンはすべて検証に失敗する。
type Codec struct {
	// secret はHMAC署名用の秘密鍵。
	secret []byte
	// ttl は発行するトークンの有効期間。
	ttl time.Duration
}

// NewCodec は新しいCodecを生成する。
// ttlはテストで負値を渡して期限切れトークンを作れるよう、正規化しない。
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue はサブジェクトとロールからHS256署名付きトークンを発行する。
func (c *Codec) Issue(subject, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Verify はトークン文字列を検証し、クレームを返す。
// 署名検証がペイロードの解釈より先に行われるため、未検証のトークンから
// クレームが読まれることはない。失敗理由（改ざん・形式不正・期限切れ）は
// エラーとして区別されるが、外部応答での使い分けは呼び出し側が行う。
// expちょうどの時刻は期限切れとして扱う。
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("トークンの検証に失敗: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("トークンが無効")
	}
	if claims.Subject == "" || claims.Role == "" {
		return nil, ErrMissingClaim
	}
	return claims, nil
}
