package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestRequestLogger はRequestLoggerミドルウェアを検証する。
func TestRequestLogger(t *testing.T) {
	t.Parallel()

	t.Run("メソッド・パス・ステータスがログに記録されること", func(t *testing.T) {
		t.Parallel()

		core, logs := observer.New(zap.InfoLevel)
		router := gin.New()
		router.Use(RequestLogger(zap.New(core)))
		router.GET("/productos", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/productos", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if logs.Len() != 1 {
			t.Fatalf("ログ件数 = %d, want 1", logs.Len())
		}

		entry := logs.All()[0]
		fields := entry.ContextMap()
		if fields["method"] != http.MethodGet {
			t.Errorf("method = %v, want %q", fields["method"], http.MethodGet)
		}
		if fields["path"] != "/productos" {
			t.Errorf("path = %v, want %q", fields["path"], "/productos")
		}
		if fields["status"] != int64(http.StatusOK) {
			t.Errorf("status = %v, want %d", fields["status"], http.StatusOK)
		}
	})

	t.Run("エラー応答でもハンドラのステータスが記録されること", func(t *testing.T) {
		t.Parallel()

		core, logs := observer.New(zap.InfoLevel)
		router := gin.New()
		router.Use(RequestLogger(zap.New(core)))
		router.GET("/missing", func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		})

		req := httptest.NewRequest(http.MethodGet, "/missing", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if logs.Len() != 1 {
			t.Fatalf("ログ件数 = %d, want 1", logs.Len())
		}
		if got := logs.All()[0].ContextMap()["status"]; got != int64(http.StatusNotFound) {
			t.Errorf("status = %v, want %d", got, http.StatusNotFound)
		}
	})
}
