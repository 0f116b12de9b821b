// ゲートウェイサービスのエントリポイント。
// ユーザー認証、アクセストークン発行、ロールによるアクセス制御、
// 外部サービス（商品API・中央銀行API・決済API）へのパススルー転送を担当する。
// 外部からアクセス可能な唯一のサービスであり、セキュリティの境界線となる。
package main

import (
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/hiroto/storegate/internal/gateway"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server, err := gateway.NewServer(port, logger)
	if err != nil {
		logger.Fatal("ゲートウェイサーバーの初期化に失敗", zap.Error(err))
	}

	logger.Info("ゲートウェイサービスを起動します", zap.String("port", port))
	if err := server.Run(); err != nil {
		logger.Fatal("ゲートウェイサービスの起動に失敗", zap.Error(err))
	}
}
