// Package token はアクセストークンの発行と検証を提供する。
//
// トークンはHS256で署名されたJWTであり、サブジェクト（ユーザー名）、
// ロール、有効期限を運ぶ。サーバー側にトークンの状態は保持しない。
// 失効リストは存在せず、有効期限のみがトークンの寿命を決める。
package token
