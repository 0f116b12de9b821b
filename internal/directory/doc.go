// Package directory はユーザーディレクトリサービスの内部実装を提供する。
//
// 名前とメールアドレスを持つユーザーの登録・参照・更新・削除と
// 名前による部分一致検索を行う小さなCRUDサービス。
// ゲートウェイとは独立したデモ用途のサービスであり、認証は行わない。
package directory
