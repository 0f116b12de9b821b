package gateway

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/hiroto/storegate/pkg/middleware"
	"github.com/hiroto/storegate/pkg/token"
	"github.com/hiroto/storegate/pkg/upstream"
)

// Server はゲートウェイサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はSQLiteデータベース接続。
	db *sql.DB
	// store は読み取り専用の資格情報ストア。
	store *credentialStore
	// codec はアクセストークンの発行・検証を行う。
	codec *token.Codec
	// logger は構造化ロガー。
	logger *zap.Logger
	// commerce は商品・在庫APIへのクライアント。
	commerce *upstream.Client
	// bank は中央銀行APIへのクライアント。
	bank *upstream.Client
	// payment は決済APIへのクライアント。
	payment *upstream.Client
	// bankUser / bankPass は中央銀行APIのクエリ資格情報。
	bankUser string
	bankPass string
}

// NewServer は新しいゲートウェイサーバーを生成する。
// SQLiteデータベースの初期化と資格情報の投入を行う。
func NewServer(port string, logger *zap.Logger) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", "/data/gateway.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-key"
	}

	ttl := token.DefaultTTL
	if v := os.Getenv("TOKEN_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("TOKEN_TTL_MINUTESが不正: %q", v)
		}
		ttl = time.Duration(minutes) * time.Minute
	}

	timeout := upstream.DefaultTimeout
	if v := os.Getenv("UPSTREAM_TIMEOUT_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("UPSTREAM_TIMEOUT_SECONDSが不正: %q", v)
		}
		timeout = time.Duration(seconds) * time.Second
	}

	commerce := upstream.New(getEnvOr("COMMERCE_API_URL", "https://ea2p2assets-production.up.railway.app"), timeout)
	commerce.SetHeader("x-authentication", os.Getenv("COMMERCE_API_TOKEN"))

	payment := upstream.New(getEnvOr("PAYMENT_API_URL", "https://api.stripe.com"), timeout)
	payment.SetHeader("Authorization", "Bearer "+os.Getenv("PAYMENT_API_KEY"))

	frontendURL := getEnvOr("FRONTEND_URL", "http://localhost:3000")

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS([]string{frontendURL}))

	s := &Server{
		router:   router,
		port:     port,
		db:       sqlDB,
		store:    &credentialStore{db: sqlDB},
		codec:    token.NewCodec(jwtSecret, ttl),
		logger:   logger,
		commerce: commerce,
		bank:     upstream.New(getEnvOr("BANK_API_URL", "https://si3.bcentral.cl"), timeout),
		payment:  payment,
		bankUser: os.Getenv("BANK_API_USER"),
		bankPass: os.Getenv("BANK_API_PASS"),
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
// ログイン以外のエンドポイントはすべてトークン検証とロールゲートを通る。
func (s *Server) setupRoutes() {
	// 認証エンドポイント（トークン不要）
	s.router.POST("/login", s.handleLogin())

	api := s.router.Group("/api/v1")
	api.Use(middleware.BearerAuth(s.codec, s.logger))
	{
		// カタログ参照と為替：全ロールに開放
		catalog := api.Group("", middleware.RequireRoles(roleAdmin, roleMaintainer, roleServiceAccount))
		{
			catalog.GET("/productos", s.handleCommerceProxy("/data/articulos"))
			catalog.GET("/productos/:id", s.handleCommerceProxyWithParam("/data/articulos/", "id"))
			catalog.GET("/sucursales", s.handleCommerceProxy("/data/sucursales"))
			catalog.GET("/sucursales/:id", s.handleCommerceProxyWithParam("/data/sucursales/", "id"))
			catalog.GET("/vendedores", s.handleCommerceProxy("/data/vendedores"))
			catalog.GET("/vendedores/:id", s.handleCommerceProxyWithParam("/data/vendedores/", "id"))
			catalog.GET("/divisas/buscar", s.handleCurrencySearch())
			catalog.GET("/divisas/convertir", s.handleCurrencyConvert())
		}

		// 販売操作：admin/maintainerのみ
		sales := api.Group("", middleware.RequireRoles(roleAdmin, roleMaintainer))
		{
			sales.PUT("/productos/venta/:id", s.handleRegisterSale())
			sales.POST("/pedidos", s.handleCreateOrder())
		}

		// 決済操作：admin/service_accountのみ
		payments := api.Group("", middleware.RequireRoles(roleAdmin, roleServiceAccount))
		{
			payments.POST("/pagos/intento", s.handleCreatePaymentIntent())
		}
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway"})
	})
}

// handleLogin はユーザー名・パスワードを検証しアクセストークンを発行する
// ハンドラを返す。失敗時は未知のユーザーとパスワード不一致を区別しない。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		principal, ok := s.store.authenticate(c.Request.Context(), username, password)
		if !ok {
			s.logger.Warn("ログイン失敗", zap.String("username", username))
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "ユーザー名またはパスワードが正しくありません",
			})
			return
		}

		accessToken, err := s.codec.Issue(principal.Username, principal.Role)
		if err != nil {
			s.logger.Error("トークン発行に失敗", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "トークンの発行に失敗しました",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token": accessToken,
			"token_type":   "bearer",
		})
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
