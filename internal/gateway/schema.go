package gateway

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。資格情報はプロセス起動時に投入され、実行中は読み取り専用。
const schema = `
CREATE TABLE IF NOT EXISTS credentials (
    username TEXT PRIMARY KEY,
    password TEXT NOT NULL,
    role TEXT NOT NULL
);
`

// seedCredentials は初期投入する資格情報。
// 実運用のID基盤の代わりとなる検証用レコードであり、
// パスワードを平文で保持している（既知の課題）。
var seedCredentials = []credentialRecord{
	{Username: "javier_thompson", Password: "aONF4d6aNBIxRjlgjBRRzrS", Role: roleAdmin},
	{Username: "ignacio_tapia", Password: "f7rWChmQS1JYfThT", Role: roleMaintainer},
	{Username: "stripe_sa", Password: "dzkQqDL9XZH33YDzhmsf", Role: roleServiceAccount},
}

// initSchema はSQLiteデータベースにスキーマを適用し、資格情報を投入する。
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	for _, c := range seedCredentials {
		if _, err := db.Exec(
			`INSERT OR IGNORE INTO credentials (username, password, role) VALUES (?, ?, ?)`,
			c.Username, c.Password, c.Role,
		); err != nil {
			return fmt.Errorf("資格情報の投入に失敗: %w", err)
		}
	}
	return nil
}
