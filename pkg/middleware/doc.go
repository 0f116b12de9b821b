// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// Bearerトークンの検証（セッション解決）、ロール集合によるアクセス制御、
// リクエストログ、パニックリカバリ、CORS設定を含む。
package middleware
