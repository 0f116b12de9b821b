package directory

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/hiroto/storegate/pkg/middleware"
)

// Server はユーザーディレクトリサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はSQLiteデータベース接続。
	db *sql.DB
	// logger は構造化ロガー。
	logger *zap.Logger
}

// NewServer は新しいディレクトリサーバーを生成する。
func NewServer(port string, logger *zap.Logger) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", "/data/directory.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))

	s := &Server{
		router: router,
		port:   port,
		db:     sqlDB,
		logger: logger,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	users := s.router.Group("/users")
	{
		users.GET("", s.handleList())
		users.GET("/:id", s.handleGetByID())
		users.POST("", s.handleCreate())
		users.PUT("/:id", s.handleUpdate())
		users.DELETE("/:id", s.handleDelete())
	}

	s.router.GET("/search", s.handleSearch())
	s.router.POST("/login", s.handleLogin())

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "directory"})
	})
}

// user はユーザーのJSON表現。
type user struct {
	// ID はユーザーの一意識別子。
	ID string `json:"id"`
	// Name はユーザーの表示名。
	Name string `json:"name"`
	// Email はユーザーのメールアドレス。
	Email string `json:"email"`
}

// userRequest はユーザー作成・更新リクエストのJSON構造。
type userRequest struct {
	// Name はユーザーの表示名。
	Name string `json:"name" binding:"required"`
	// Email はユーザーのメールアドレス。
	Email string `json:"email" binding:"required,email"`
}

// handleList は全ユーザーを返すハンドラを返す。
func (s *Server) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := s.db.QueryContext(c.Request.Context(),
			`SELECT id, name, email FROM users ORDER BY created_at`)
		if err != nil {
			s.internalError(c, err)
			return
		}
		defer rows.Close()

		users := make([]user, 0)
		for rows.Next() {
			var u user
			if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
				s.internalError(c, err)
				return
			}
			users = append(users, u)
		}
		if err := rows.Err(); err != nil {
			s.internalError(c, err)
			return
		}

		c.JSON(http.StatusOK, users)
	}
}

// handleGetByID は指定IDのユーザーを返すハンドラを返す。
func (s *Server) handleGetByID() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := s.getUser(c, c.Param("id"))
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		if err != nil {
			s.internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// handleCreate はユーザーを登録するハンドラを返す。
func (s *Server) handleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req userRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

		u := user{ID: uuid.New().String(), Name: req.Name, Email: req.Email}
		if _, err := s.db.ExecContext(c.Request.Context(),
			`INSERT INTO users (id, name, email) VALUES (?, ?, ?)`,
			u.ID, u.Name, u.Email,
		); err != nil {
			s.internalError(c, err)
			return
		}

		c.JSON(http.StatusCreated, u)
	}
}

// handleUpdate は指定IDのユーザーを更新するハンドラを返す。
func (s *Server) handleUpdate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req userRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

		id := c.Param("id")
		result, err := s.db.ExecContext(c.Request.Context(),
			`UPDATE users SET name = ?, email = ? WHERE id = ?`,
			req.Name, req.Email, id,
		)
		if err != nil {
			s.internalError(c, err)
			return
		}
		affected, err := result.RowsAffected()
		if err != nil {
			s.internalError(c, err)
			return
		}
		if affected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}

		c.JSON(http.StatusOK, user{ID: id, Name: req.Name, Email: req.Email})
	}
}

// handleDelete は指定IDのユーザーを削除し、削除したユーザーを返すハンドラを返す。
func (s *Server) handleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		u, err := s.getUser(c, id)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		if err != nil {
			s.internalError(c, err)
			return
		}

		if _, err := s.db.ExecContext(c.Request.Context(),
			`DELETE FROM users WHERE id = ?`, id,
		); err != nil {
			s.internalError(c, err)
			return
		}

		c.JSON(http.StatusOK, u)
	}
}

// handleSearch は名前の部分一致でユーザーを検索するハンドラを返す。
// 大文字小文字は区別しない。該当が無い場合は404を返す。
func (s *Server) handleSearch() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("name")
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nameを指定してください"})
			return
		}

		rows, err := s.db.QueryContext(c.Request.Context(),
			`SELECT id, name, email FROM users WHERE name LIKE '%' || ? || '%' COLLATE NOCASE ORDER BY created_at`,
			name,
		)
		if err != nil {
			s.internalError(c, err)
			return
		}
		defer rows.Close()

		results := make([]user, 0)
		for rows.Next() {
			var u user
			if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
				s.internalError(c, err)
				return
			}
			results = append(results, u)
		}
		if err := rows.Err(); err != nil {
			s.internalError(c, err)
			return
		}

		if len(results) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "該当するユーザーが見つかりません"})
			return
		}
		c.JSON(http.StatusOK, results)
	}
}

// handleLogin は名前とメールアドレスの組が登録済みか確認するハンドラを返す。
// デモ用途の簡易ログインであり、トークンは発行しない。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req userRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

		var count int
		if err := s.db.QueryRowContext(c.Request.Context(),
			`SELECT COUNT(*) FROM users WHERE name = ? AND email = ?`,
			req.Name, req.Email,
		).Scan(&count); err != nil {
			s.internalError(c, err)
			return
		}

		if count == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "資格情報が正しくありません"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "ログインに成功しました"})
	}
}

// getUser は指定IDのユーザーを1件取得する。
func (s *Server) getUser(c *gin.Context, id string) (user, error) {
	var u user
	err := s.db.QueryRowContext(c.Request.Context(),
		`SELECT id, name, email FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email)
	return u, err
}

// internalError はデータベース操作の失敗を500応答に変換する。
func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("データベース操作に失敗", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "内部サーバーエラーが発生しました"})
}
