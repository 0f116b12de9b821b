// Package upstream は外部サービスへのパススルー呼び出しを行うHTTPクライアントを提供する。
//
// 商品API・中央銀行API・決済APIへの呼び出しパターンを統一する。
// 各呼び出しには上限付きタイムアウトと固定のサービス資格情報ヘッダーが
// 適用され、上流の応答はステータスとボディごと呼び出し元に返される。
// エラーになるのは上流に到達できなかった場合のみ。
package upstream
