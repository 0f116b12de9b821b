package gateway

import (
	"context"
	"crypto/subtle"
	"database/sql"

	"github.com/hiroto/storegate/pkg/middleware"
)

// ロール定義。階層は持たず、エンドポイントごとの明示的な許可集合と
// 完全一致で照合する。
const (
	roleAdmin          = "admin"
	roleMaintainer     = "maintainer"
	roleServiceAccount = "service_account"
)

// credentialRecord は資格情報ストアの1レコード。
type credentialRecord struct {
	// Username はユーザーの識別子。
	Username string
	// Password はユーザーの秘密情報。
	Password string
	// Role はユーザーに割り当てられたロール。
	Role string
}

// credentialStore は読み取り専用の資格情報ストア。
// 起動時に投入されたレコードを参照するのみで、実行中に変更されない。
type credentialStore struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// lookup はユーザー名に対応するレコードを返す。
// 見つからない場合はsql.ErrNoRowsを返す。
func (s *credentialStore) lookup(ctx context.Context, username string) (credentialRecord, error) {
	var rec credentialRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password, role FROM credentials WHERE username = ?`,
		username,
	).Scan(&rec.Username, &rec.Password, &rec.Role)
	if err != nil {
		return credentialRecord{}, err
	}
	return rec, nil
}

// authenticate はユーザー名とパスワードの組を検証する。
// 未知のユーザーとパスワード不一致は区別せず一様にfalseを返す。
// パスワードの比較はタイミング攻撃を避けるため定数時間で行う。
func (s *credentialStore) authenticate(ctx context.Context, username, password string) (middleware.Principal, bool) {
	rec, err := s.lookup(ctx, username)
	if err != nil {
		// 未知のユーザーでも比較時間を揃えるためダミー比較を行う
		subtle.ConstantTimeCompare([]byte(password), []byte(password))
		return middleware.Principal{}, false
	}
	if subtle.ConstantTimeCompare([]byte(rec.Password), []byte(password)) != 1 {
		return middleware.Principal{}, false
	}
	return middleware.Principal{Username: rec.Username, Role: rec.Role}, true
}
