// Package gateway は認証付きAPIゲートウェイサービスの内部実装を提供する。
//
// ユーザー名とパスワードの認証、署名付きアクセストークンの発行、
// ロールによるアクセス制御、および3つの外部サービス（商品API・
// 中央銀行API・決済API）へのパススルー転送を担当する。
// 外部からアクセス可能な唯一のサービスであり、セキュリティの境界線として
// 機能する。発行済みトークンの状態はサーバー側に保持しない。
package gateway
