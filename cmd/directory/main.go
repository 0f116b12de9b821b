// ユーザーディレクトリサービスのエントリポイント。
// 名前とメールアドレスを持つユーザーのCRUDと検索を提供するデモ用サービス。
package main

import (
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/hiroto/storegate/internal/directory"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("ロガーの初期化に失敗: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8090"
	}

	server, err := directory.NewServer(port, logger)
	if err != nil {
		logger.Fatal("ディレクトリサーバーの初期化に失敗", zap.Error(err))
	}

	logger.Info("ディレクトリサービスを起動します", zap.String("port", port))
	if err := server.Run(); err != nil {
		logger.Fatal("ディレクトリサービスの起動に失敗", zap.Error(err))
	}
}
